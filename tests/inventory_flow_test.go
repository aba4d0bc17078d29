// Package tests contains integration tests for the inventory ledger
package tests

import (
	"context"
	"math"
	"strconv"
	"testing"

	"github.com/Zarcastral/farmops/app/dto"
	businessflow "github.com/Zarcastral/farmops/business_flow"
	"github.com/Zarcastral/farmops/config"
	"github.com/Zarcastral/farmops/models"
	"github.com/Zarcastral/farmops/repository"
	testingutil "github.com/Zarcastral/farmops/testing"
	"github.com/Zarcastral/farmops/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func actorFor(user *models.User) *businessflow.Actor {
	return &businessflow.Actor{
		UserID:     user.ID,
		Username:   user.Username,
		FullName:   user.FullName(),
		Role:       user.Role.RoleName,
		BarangayID: user.BarangayID,
	}
}

func TestInventoryFlow(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)
		require.NoError(t, fixtures.InsertDefaultRoles())

		stockRepo := repository.NewResourceStockRepository(testDB.DB)
		usageRepo := repository.NewInventoryUsageLogRepository(testDB.DB)
		seqRepo := repository.NewSequenceCounterRepository(testDB.DB)
		activityRepo := repository.NewActivityLogRepository(testDB.DB)
		projectRepo := repository.NewProjectRepository(testDB.DB)

		require.NoError(t, seqRepo.Initialize(context.Background(), utils.AllSequences))

		cacheConfig := &config.CacheConfig{RedisPrefix: "farmops_test"}
		inventoryFlow := businessflow.NewInventoryFlow(
			stockRepo,
			usageRepo,
			seqRepo,
			activityRepo,
			projectRepo,
			nil, // no redis in tests, attribution falls back to the database
			cacheConfig,
			testDB.DB,
		)

		admin, err := fixtures.CreateTestUser(models.RoleAdmin, nil)
		require.NoError(t, err)
		adminActor := actorFor(admin)

		barangay, err := fixtures.CreateTestBarangay()
		require.NoError(t, err)
		farmer, err := fixtures.CreateTestUser(models.RoleFarmer, &barangay.ID)
		require.NoError(t, err)
		farmerActor := actorFor(farmer)

		metadata := businessflow.NewClientMetadata("127.0.0.1", "Test User Agent")
		ctx := context.Background()

		t.Run("RegisterResource", func(t *testing.T) {
			resp, err := inventoryFlow.RegisterResource(ctx, &dto.RegisterResourceRequest{
				Kind:     "fertilizer",
				Category: "Nitrogen",
				Name:     "Urea 46-0-0",
				OwnedBy:  "Admin",
				Quantity: 100,
				Unit:     "kg",
			}, adminActor, metadata)
			require.NoError(t, err)
			require.NotNil(t, resp)

			assert.Equal(t, "fertilizer", resp.Stock.Kind)
			assert.Equal(t, "Urea 46-0-0", resp.Stock.Name)
			assert.Equal(t, float64(100), resp.Stock.CurrentStock)
			assert.Greater(t, resp.Stock.ResourceID, int64(0))
		})

		t.Run("RegisterDuplicateRejected", func(t *testing.T) {
			_, err := inventoryFlow.RegisterResource(ctx, &dto.RegisterResourceRequest{
				Kind:     "fertilizer",
				Category: "Nitrogen",
				Name:     "Urea 46-0-0",
				OwnedBy:  "Admin",
				Quantity: 10,
				Unit:     "kg",
			}, adminActor, metadata)
			require.Error(t, err)
			assert.True(t, businessflow.IsDuplicateResource(err))
		})

		t.Run("RegisterDeniedForFarmer", func(t *testing.T) {
			_, err := inventoryFlow.RegisterResource(ctx, &dto.RegisterResourceRequest{
				Kind:     "equipment",
				Category: "Hand Tools",
				Name:     "Shovel",
				OwnedBy:  "Farmer",
				Quantity: 5,
				Unit:     "pcs",
			}, farmerActor, metadata)
			require.Error(t, err)
			assert.True(t, businessflow.IsAccessDenied(err))
		})

		t.Run("ReplenishAddsQuantity", func(t *testing.T) {
			stock, err := stockRepo.ByKey(ctx, models.ResourceKindFertilizer, "Urea 46-0-0", "Admin")
			require.NoError(t, err)
			require.NotNil(t, stock)

			resp, err := inventoryFlow.Replenish(ctx, &dto.ReplenishStockRequest{
				Kind:       "fertilizer",
				ResourceID: stock.ResourceID,
				Quantity:   50,
			}, adminActor, metadata)
			require.NoError(t, err)

			assert.Equal(t, float64(100), resp.Previous)
			assert.Equal(t, float64(150), resp.Stock.CurrentStock)
		})

		t.Run("ReplenishUnknownResource", func(t *testing.T) {
			_, err := inventoryFlow.Replenish(ctx, &dto.ReplenishStockRequest{
				Kind:       "fertilizer",
				ResourceID: 999999,
				Quantity:   10,
			}, adminActor, metadata)
			require.Error(t, err)
			assert.True(t, businessflow.IsResourceNotFound(err))
		})

		t.Run("ReplenishAppliesMetadataCorrections", func(t *testing.T) {
			reg, err := inventoryFlow.RegisterResource(ctx, &dto.RegisterResourceRequest{
				Kind:     "fertilizer",
				Category: "Nitrgen",
				Name:     "Amonium Sulfate",
				OwnedBy:  "Admin",
				Quantity: 25,
				Unit:     "kg",
			}, adminActor, metadata)
			require.NoError(t, err)

			resp, err := inventoryFlow.Replenish(ctx, &dto.ReplenishStockRequest{
				Kind:       "fertilizer",
				ResourceID: reg.Stock.ResourceID,
				Quantity:   25,
				Category:   "Nitrogen",
				Name:       "Ammonium Sulfate 21-0-0",
			}, adminActor, metadata)
			require.NoError(t, err)

			assert.Equal(t, float64(50), resp.Stock.CurrentStock)
			assert.Equal(t, "Nitrogen", resp.Stock.Category)
			assert.Equal(t, "Ammonium Sulfate 21-0-0", resp.Stock.Name)

			// The correction is persisted, not just echoed
			fresh, err := inventoryFlow.GetStock(ctx, "fertilizer", reg.Stock.ResourceID)
			require.NoError(t, err)
			assert.Equal(t, "Nitrogen", fresh.Stock.Category)
			assert.Equal(t, "Ammonium Sulfate 21-0-0", fresh.Stock.Name)
		})

		t.Run("NonFiniteQuantitiesRejected", func(t *testing.T) {
			stock, err := stockRepo.ByKey(ctx, models.ResourceKindFertilizer, "Urea 46-0-0", "Admin")
			require.NoError(t, err)
			before := stock.CurrentStock

			for _, quantity := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
				_, err := inventoryFlow.Replenish(ctx, &dto.ReplenishStockRequest{
					Kind:       "fertilizer",
					ResourceID: stock.ResourceID,
					Quantity:   quantity,
				}, adminActor, metadata)
				require.Error(t, err)
				assert.True(t, businessflow.IsInvalidQuantity(err))

				// NaN slips past both the positivity and sufficiency
				// comparisons, so it must be rejected explicitly
				_, err = inventoryFlow.Consume(ctx, &dto.ConsumeStockRequest{
					Kind:       "fertilizer",
					ResourceID: stock.ResourceID,
					Quantity:   quantity,
					Status:     "Missing",
					Details:    "Count lost",
				}, farmerActor, metadata)
				require.Error(t, err)
				assert.True(t, businessflow.IsInvalidQuantity(err))
			}

			_, err = inventoryFlow.RegisterResource(ctx, &dto.RegisterResourceRequest{
				Kind:     "equipment",
				Category: "Hand Tools",
				Name:     "Rake",
				OwnedBy:  "Admin",
				Quantity: math.NaN(),
				Unit:     "pcs",
			}, adminActor, metadata)
			require.Error(t, err)
			assert.True(t, businessflow.IsInvalidQuantity(err))

			after, err := stockRepo.ByKey(ctx, models.ResourceKindFertilizer, "Urea 46-0-0", "Admin")
			require.NoError(t, err)
			assert.Equal(t, before, after.CurrentStock)
		})

		t.Run("ConsumeUsedLogsWithoutDeducting", func(t *testing.T) {
			stock, err := stockRepo.ByKey(ctx, models.ResourceKindFertilizer, "Urea 46-0-0", "Admin")
			require.NoError(t, err)

			resp, err := inventoryFlow.Consume(ctx, &dto.ConsumeStockRequest{
				Kind:       "fertilizer",
				ResourceID: stock.ResourceID,
				Quantity:   20,
				Status:     "Used",
			}, farmerActor, metadata)
			require.NoError(t, err)

			// Used items return through their own replenishment cycle
			assert.Equal(t, float64(150), resp.Stock.CurrentStock)
			assert.Equal(t, "Used", resp.UsageLog.Status)
			assert.Equal(t, float64(20), resp.UsageLog.Quantity)
			assert.Equal(t, farmer.FullName(), resp.UsageLog.ActorName)
			assert.Equal(t, utils.GeneralProject, resp.UsageLog.ProjectID)
		})

		t.Run("ConsumeDamagedDeducts", func(t *testing.T) {
			stock, err := stockRepo.ByKey(ctx, models.ResourceKindFertilizer, "Urea 46-0-0", "Admin")
			require.NoError(t, err)

			resp, err := inventoryFlow.Consume(ctx, &dto.ConsumeStockRequest{
				Kind:       "fertilizer",
				ResourceID: stock.ResourceID,
				Quantity:   30,
				Status:     "Damaged",
				Details:    "Bags soaked during storm",
			}, farmerActor, metadata)
			require.NoError(t, err)

			assert.Equal(t, float64(120), resp.Stock.CurrentStock)
			assert.Equal(t, "Damaged", resp.UsageLog.Status)
			assert.Equal(t, "Bags soaked during storm", resp.UsageLog.Details)
		})

		t.Run("ConsumeDamagedRequiresDetails", func(t *testing.T) {
			stock, err := stockRepo.ByKey(ctx, models.ResourceKindFertilizer, "Urea 46-0-0", "Admin")
			require.NoError(t, err)

			_, err = inventoryFlow.Consume(ctx, &dto.ConsumeStockRequest{
				Kind:       "fertilizer",
				ResourceID: stock.ResourceID,
				Quantity:   5,
				Status:     "Damaged",
			}, farmerActor, metadata)
			require.Error(t, err)
			assert.True(t, businessflow.IsMissingDetails(err))
		})

		t.Run("ConsumeBeyondStockRejected", func(t *testing.T) {
			stock, err := stockRepo.ByKey(ctx, models.ResourceKindFertilizer, "Urea 46-0-0", "Admin")
			require.NoError(t, err)
			before := stock.CurrentStock

			_, err = inventoryFlow.Consume(ctx, &dto.ConsumeStockRequest{
				Kind:       "fertilizer",
				ResourceID: stock.ResourceID,
				Quantity:   before + 1,
				Status:     "Missing",
				Details:    "Cannot locate in warehouse",
			}, farmerActor, metadata)
			require.Error(t, err)
			assert.True(t, businessflow.IsInsufficientStock(err))

			// The failed consumption must not change the balance
			after, err := stockRepo.ByKey(ctx, models.ResourceKindFertilizer, "Urea 46-0-0", "Admin")
			require.NoError(t, err)
			assert.Equal(t, before, after.CurrentStock)
		})

		t.Run("ConsumeInvalidStatusRejected", func(t *testing.T) {
			stock, err := stockRepo.ByKey(ctx, models.ResourceKindFertilizer, "Urea 46-0-0", "Admin")
			require.NoError(t, err)

			_, err = inventoryFlow.Consume(ctx, &dto.ConsumeStockRequest{
				Kind:       "fertilizer",
				ResourceID: stock.ResourceID,
				Quantity:   1,
				Status:     "Borrowed",
			}, farmerActor, metadata)
			require.Error(t, err)
			assert.True(t, businessflow.IsInvalidUsageStatus(err))
		})

		t.Run("ConsumeAttributesActiveProject", func(t *testing.T) {
			lead, err := fixtures.CreateTestUser(models.RoleHeadFarmer, &barangay.ID)
			require.NoError(t, err)
			project, err := fixtures.CreateTestProject(barangay.ID, lead.ID)
			require.NoError(t, err)

			stock, err := stockRepo.ByKey(ctx, models.ResourceKindFertilizer, "Urea 46-0-0", "Admin")
			require.NoError(t, err)

			resp, err := inventoryFlow.Consume(ctx, &dto.ConsumeStockRequest{
				Kind:       "fertilizer",
				ResourceID: stock.ResourceID,
				Quantity:   10,
				Status:     "Used",
			}, actorFor(lead), metadata)
			require.NoError(t, err)

			assert.Equal(t, strconv.FormatInt(project.ProjectID, 10), resp.UsageLog.ProjectID)
		})

		t.Run("UsageLogsAreOrderedNewestFirst", func(t *testing.T) {
			resp, err := inventoryFlow.ListUsageLogs(ctx, models.InventoryUsageLogFilter{}, 50, 0)
			require.NoError(t, err)
			require.GreaterOrEqual(t, len(resp.Items), 3)

			for i := 1; i < len(resp.Items); i++ {
				assert.False(t, resp.Items[i-1].Timestamp.Before(resp.Items[i].Timestamp),
					"usage log entries should be returned newest first")
			}
		})

		t.Run("UsageLogFilterByStatus", func(t *testing.T) {
			status := models.UsageStatusDamaged
			resp, err := inventoryFlow.ListUsageLogs(ctx, models.InventoryUsageLogFilter{Status: &status}, 50, 0)
			require.NoError(t, err)
			require.NotEmpty(t, resp.Items)
			for _, item := range resp.Items {
				assert.Equal(t, "Damaged", item.Status)
			}
		})

		t.Run("GetStock", func(t *testing.T) {
			stock, err := stockRepo.ByKey(ctx, models.ResourceKindFertilizer, "Urea 46-0-0", "Admin")
			require.NoError(t, err)

			resp, err := inventoryFlow.GetStock(ctx, "fertilizer", stock.ResourceID)
			require.NoError(t, err)
			assert.Equal(t, stock.ResourceID, resp.Stock.ResourceID)
			assert.Equal(t, stock.CurrentStock, resp.Stock.CurrentStock)
		})

		t.Run("ListByOwnerPartition", func(t *testing.T) {
			_, err := inventoryFlow.RegisterResource(ctx, &dto.RegisterResourceRequest{
				Kind:     "fertilizer",
				Category: "Potassium",
				Name:     "Muriate of Potash",
				OwnedBy:  "Supervisor",
				Quantity: 40,
				Unit:     "kg",
			}, adminActor, metadata)
			require.NoError(t, err)

			resp, err := inventoryFlow.ListByOwner(ctx, "fertilizer", "Supervisor")
			require.NoError(t, err)
			require.Equal(t, int64(1), resp.Total)
			assert.Equal(t, "Muriate of Potash", resp.Items[0].Name)
		})

		t.Run("ExportUsageLogs", func(t *testing.T) {
			filename, data, err := inventoryFlow.ExportUsageLogs(ctx, "")
			require.NoError(t, err)
			assert.NotEmpty(t, filename)
			assert.NotEmpty(t, data)
		})

		t.Run("DeleteResource", func(t *testing.T) {
			reg, err := inventoryFlow.RegisterResource(ctx, &dto.RegisterResourceRequest{
				Kind:     "equipment",
				Category: "Machinery",
				Name:     "Hand Tractor",
				OwnedBy:  "Admin",
				Quantity: 2,
				Unit:     "pcs",
			}, adminActor, metadata)
			require.NoError(t, err)

			err = inventoryFlow.DeleteResource(ctx, "equipment", reg.Stock.ResourceID, adminActor, metadata)
			require.NoError(t, err)

			_, err = inventoryFlow.GetStock(ctx, "equipment", reg.Stock.ResourceID)
			require.Error(t, err)
			assert.True(t, businessflow.IsResourceNotFound(err))
		})

		return nil
	})

	require.NoError(t, err)
}
