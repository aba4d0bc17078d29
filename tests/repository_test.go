// Package tests contains integration tests for the repository layer
package tests

import (
	"context"
	"testing"
	"time"

	"github.com/Zarcastral/farmops/models"
	"github.com/Zarcastral/farmops/repository"
	testingutil "github.com/Zarcastral/farmops/testing"
	"github.com/Zarcastral/farmops/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResourceStockRepository(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)
		stockRepo := repository.NewResourceStockRepository(testDB.DB)
		ctx := context.Background()

		t.Run("ByKeyAndByResourceID", func(t *testing.T) {
			stock, err := fixtures.CreateTestStock(models.ResourceKindFertilizer, "Complete 14-14-14", "Admin", 80)
			require.NoError(t, err)

			byKey, err := stockRepo.ByKey(ctx, models.ResourceKindFertilizer, "Complete 14-14-14", "Admin")
			require.NoError(t, err)
			require.NotNil(t, byKey)
			assert.Equal(t, stock.ID, byKey.ID)

			byID, err := stockRepo.ByResourceID(ctx, models.ResourceKindFertilizer, stock.ResourceID)
			require.NoError(t, err)
			require.NotNil(t, byID)
			assert.Equal(t, stock.ID, byID.ID)

			// Kind is part of the lookup key
			wrongKind, err := stockRepo.ByResourceID(ctx, models.ResourceKindEquipment, stock.ResourceID)
			require.NoError(t, err)
			assert.Nil(t, wrongKind)
		})

		t.Run("OwnerPartitionsAreDistinct", func(t *testing.T) {
			_, err := fixtures.CreateTestStock(models.ResourceKindEquipment, "Sprayer", "Supervisor", 4)
			require.NoError(t, err)
			_, err = fixtures.CreateTestStock(models.ResourceKindEquipment, "Sprayer", "Farmer", 2)
			require.NoError(t, err)

			supervisor, err := stockRepo.ByKey(ctx, models.ResourceKindEquipment, "Sprayer", "Supervisor")
			require.NoError(t, err)
			require.NotNil(t, supervisor)
			assert.Equal(t, float64(4), supervisor.CurrentStock)

			farmer, err := stockRepo.ByKey(ctx, models.ResourceKindEquipment, "Sprayer", "Farmer")
			require.NoError(t, err)
			require.NotNil(t, farmer)
			assert.Equal(t, float64(2), farmer.CurrentStock)

			owned, err := stockRepo.ListByOwner(ctx, models.ResourceKindEquipment, "Supervisor")
			require.NoError(t, err)
			assert.Len(t, owned, 1)
		})

		t.Run("UpdateStock", func(t *testing.T) {
			stock, err := fixtures.CreateTestStock(models.ResourceKindCrop, "Palay Seeds", "", 200)
			require.NoError(t, err)

			stockDate := utils.UTCNow()
			err = stockRepo.UpdateStock(ctx, stock.ID, 260, "kg", stockDate)
			require.NoError(t, err)

			fresh, err := stockRepo.ByID(ctx, stock.ID)
			require.NoError(t, err)
			assert.Equal(t, float64(260), fresh.CurrentStock)
		})

		t.Run("DeleteIsSoft", func(t *testing.T) {
			stock, err := fixtures.CreateTestStock(models.ResourceKindCrop, "Corn Seeds", "", 50)
			require.NoError(t, err)

			err = stockRepo.Delete(ctx, stock.ID)
			require.NoError(t, err)

			gone, err := stockRepo.ByResourceID(ctx, models.ResourceKindCrop, stock.ResourceID)
			require.NoError(t, err)
			assert.Nil(t, gone)

			// The row survives with deleted_at set
			var count int64
			err = testDB.DB.Raw("SELECT COUNT(*) FROM resource_stocks WHERE id = ? AND deleted_at IS NOT NULL", stock.ID).Scan(&count).Error
			require.NoError(t, err)
			assert.Equal(t, int64(1), count)
		})

		return nil
	})

	require.NoError(t, err)
}

func TestUserAndSessionRepositories(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)
		require.NoError(t, fixtures.InsertDefaultRoles())

		userRepo := repository.NewUserRepository(testDB.DB)
		sessionRepo := repository.NewUserSessionRepository(testDB.DB)
		ctx := context.Background()

		t.Run("LookupByUsernameAndEmail", func(t *testing.T) {
			user, err := fixtures.CreateTestUser(models.RoleFarmer, nil)
			require.NoError(t, err)

			byUsername, err := userRepo.ByUsername(ctx, user.Username)
			require.NoError(t, err)
			require.NotNil(t, byUsername)
			assert.Equal(t, user.ID, byUsername.ID)
			assert.Equal(t, models.RoleFarmer, byUsername.Role.RoleName)

			byEmail, err := userRepo.ByEmail(ctx, user.Email)
			require.NoError(t, err)
			require.NotNil(t, byEmail)
			assert.Equal(t, user.ID, byEmail.ID)

			missing, err := userRepo.ByUsername(ctx, "nobody")
			require.NoError(t, err)
			assert.Nil(t, missing)
		})

		t.Run("ListByBarangay", func(t *testing.T) {
			barangay, err := fixtures.CreateTestBarangay()
			require.NoError(t, err)

			_, err = fixtures.CreateTestUser(models.RoleFarmer, &barangay.ID)
			require.NoError(t, err)
			_, err = fixtures.CreateTestUser(models.RoleHeadFarmer, &barangay.ID)
			require.NoError(t, err)

			users, err := userRepo.ListByBarangay(ctx, barangay.ID)
			require.NoError(t, err)
			assert.Len(t, users, 2)
		})

		t.Run("UpdateLastLogin", func(t *testing.T) {
			user, err := fixtures.CreateTestUser(models.RoleFarmer, nil)
			require.NoError(t, err)
			require.Nil(t, user.LastLoginAt)

			at := utils.UTCNow()
			err = userRepo.UpdateLastLogin(ctx, user.ID, at)
			require.NoError(t, err)

			fresh, err := userRepo.ByID(ctx, user.ID)
			require.NoError(t, err)
			require.NotNil(t, fresh.LastLoginAt)
		})

		t.Run("SessionLifecycle", func(t *testing.T) {
			user, err := fixtures.CreateTestUser(models.RoleFarmer, nil)
			require.NoError(t, err)

			session, err := fixtures.CreateTestSession(user.ID)
			require.NoError(t, err)

			byToken, err := sessionRepo.BySessionToken(ctx, session.SessionToken)
			require.NoError(t, err)
			require.NotNil(t, byToken)
			assert.True(t, byToken.IsValid())

			byRefresh, err := sessionRepo.ByRefreshToken(ctx, *session.RefreshToken)
			require.NoError(t, err)
			require.NotNil(t, byRefresh)
			assert.Equal(t, session.ID, byRefresh.ID)

			err = sessionRepo.ExpireSession(ctx, session.ID)
			require.NoError(t, err)

			expired, err := sessionRepo.BySessionToken(ctx, session.SessionToken)
			require.NoError(t, err)
			if expired != nil {
				assert.False(t, expired.IsValid())
			}
		})

		t.Run("ExpireAllUserSessions", func(t *testing.T) {
			user, err := fixtures.CreateTestUser(models.RoleFarmer, nil)
			require.NoError(t, err)

			first, err := fixtures.CreateTestSession(user.ID)
			require.NoError(t, err)
			second, err := fixtures.CreateTestSession(user.ID)
			require.NoError(t, err)

			err = sessionRepo.ExpireAllUserSessions(ctx, user.ID)
			require.NoError(t, err)

			for _, token := range []string{first.SessionToken, second.SessionToken} {
				s, err := sessionRepo.BySessionToken(ctx, token)
				require.NoError(t, err)
				if s != nil {
					assert.False(t, s.IsValid())
				}
			}
		})

		return nil
	})

	require.NoError(t, err)
}

func TestBarangayAndTeamRepositories(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)
		require.NoError(t, fixtures.InsertDefaultRoles())

		barangayRepo := repository.NewBarangayRepository(testDB.DB)
		teamRepo := repository.NewTeamRepository(testDB.DB)
		ctx := context.Background()

		t.Run("BarangayLookupAndReferences", func(t *testing.T) {
			barangay, err := fixtures.CreateTestBarangay()
			require.NoError(t, err)

			byName, err := barangayRepo.ByName(ctx, barangay.Name)
			require.NoError(t, err)
			require.NotNil(t, byName)
			assert.Equal(t, barangay.ID, byName.ID)

			refs, err := barangayRepo.CountReferences(ctx, barangay.ID)
			require.NoError(t, err)
			assert.Equal(t, int64(0), refs)

			// Scoping a user to the barangay makes it referenced
			_, err = fixtures.CreateTestUser(models.RoleFarmer, &barangay.ID)
			require.NoError(t, err)

			refs, err = barangayRepo.CountReferences(ctx, barangay.ID)
			require.NoError(t, err)
			assert.Equal(t, int64(1), refs)
		})

		t.Run("TeamMembership", func(t *testing.T) {
			barangay, err := fixtures.CreateTestBarangay()
			require.NoError(t, err)
			head, err := fixtures.CreateTestUser(models.RoleHeadFarmer, &barangay.ID)
			require.NoError(t, err)
			farmer, err := fixtures.CreateTestUser(models.RoleFarmer, &barangay.ID)
			require.NoError(t, err)

			team, err := fixtures.CreateTestTeam(barangay.ID, head.ID)
			require.NoError(t, err)

			err = teamRepo.AddMember(ctx, team.ID, farmer.ID)
			require.NoError(t, err)

			members, err := teamRepo.ListMembers(ctx, team.ID)
			require.NoError(t, err)
			require.Len(t, members, 1)
			assert.Equal(t, farmer.ID, members[0].FarmerID)

			memberTeam, err := teamRepo.MemberTeam(ctx, farmer.ID)
			require.NoError(t, err)
			require.NotNil(t, memberTeam)
			assert.Equal(t, team.ID, memberTeam.ID)

			err = teamRepo.RemoveMember(ctx, team.ID, farmer.ID)
			require.NoError(t, err)

			memberTeam, err = teamRepo.MemberTeam(ctx, farmer.ID)
			require.NoError(t, err)
			assert.Nil(t, memberTeam)
		})

		return nil
	})

	require.NoError(t, err)
}

func TestHarvestAndFeedbackRepositories(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)
		require.NoError(t, fixtures.InsertDefaultRoles())

		harvestRepo := repository.NewHarvestRepository(testDB.DB)
		feedbackRepo := repository.NewFeedbackRepository(testDB.DB)
		ctx := context.Background()

		barangay, err := fixtures.CreateTestBarangay()
		require.NoError(t, err)
		lead, err := fixtures.CreateTestUser(models.RoleHeadFarmer, &barangay.ID)
		require.NoError(t, err)
		project, err := fixtures.CreateTestProject(barangay.ID, lead.ID)
		require.NoError(t, err)

		t.Run("TotalByCrop", func(t *testing.T) {
			for i, qty := range []float64{120, 80} {
				harvest := &models.Harvest{
					HarvestID:   int64(1000 + i),
					ProjectID:   project.ID,
					CropName:    project.CropName,
					Quantity:    qty,
					Unit:        "kg",
					HarvestDate: utils.UTCNow(),
					RecordedBy:  lead.ID,
				}
				require.NoError(t, harvestRepo.Save(ctx, harvest))
			}

			total, err := harvestRepo.TotalByCrop(ctx, project.CropName)
			require.NoError(t, err)
			assert.Equal(t, float64(200), total)

			none, err := harvestRepo.TotalByCrop(ctx, "Ampalaya")
			require.NoError(t, err)
			assert.Equal(t, float64(0), none)
		})

		t.Run("ListByProjectOrdering", func(t *testing.T) {
			harvests, err := harvestRepo.ListByProject(ctx, project.ID, 10, 0)
			require.NoError(t, err)
			require.Len(t, harvests, 2)
			for i := 1; i < len(harvests); i++ {
				assert.False(t, harvests[i-1].HarvestDate.Before(harvests[i].HarvestDate))
			}
		})

		t.Run("FeedbackAcknowledge", func(t *testing.T) {
			farmer, err := fixtures.CreateTestUser(models.RoleFarmer, &barangay.ID)
			require.NoError(t, err)
			supervisor, err := fixtures.CreateTestUser(models.RoleSupervisor, &barangay.ID)
			require.NoError(t, err)
			task, err := fixtures.CreateTestTask(project.ID, nil)
			require.NoError(t, err)

			feedback := &models.Feedback{
				FeedbackID: 501,
				TaskID:     task.ID,
				FarmerID:   farmer.ID,
				Content:    "Irrigation pump keeps stalling",
				Status:     models.FeedbackStatusPending,
			}
			require.NoError(t, feedbackRepo.Save(ctx, feedback))

			pending, err := feedbackRepo.ListPending(ctx, 10, 0)
			require.NoError(t, err)
			require.Len(t, pending, 1)

			err = feedbackRepo.Acknowledge(ctx, feedback.ID, supervisor.ID, utils.UTCNow())
			require.NoError(t, err)

			fresh, err := feedbackRepo.ByFeedbackID(ctx, feedback.FeedbackID)
			require.NoError(t, err)
			require.NotNil(t, fresh)
			assert.Equal(t, models.FeedbackStatusAcknowledged, fresh.Status)
			require.NotNil(t, fresh.AcknowledgedBy)
			assert.Equal(t, supervisor.ID, *fresh.AcknowledgedBy)
			require.NotNil(t, fresh.AcknowledgedAt)

			pending, err = feedbackRepo.ListPending(ctx, 10, 0)
			require.NoError(t, err)
			assert.Empty(t, pending)
		})

		return nil
	})

	require.NoError(t, err)
}

func TestAttendanceRepository(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)
		require.NoError(t, fixtures.InsertDefaultRoles())

		attendanceRepo := repository.NewAttendanceRepository(testDB.DB)
		ctx := context.Background()

		barangay, err := fixtures.CreateTestBarangay()
		require.NoError(t, err)
		lead, err := fixtures.CreateTestUser(models.RoleHeadFarmer, &barangay.ID)
		require.NoError(t, err)
		farmer, err := fixtures.CreateTestUser(models.RoleFarmer, &barangay.ID)
		require.NoError(t, err)
		project, err := fixtures.CreateTestProject(barangay.ID, lead.ID)
		require.NoError(t, err)
		task, err := fixtures.CreateTestTask(project.ID, nil)
		require.NoError(t, err)

		day := time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC)

		t.Run("OneEntryPerFarmerPerDay", func(t *testing.T) {
			record := &models.AttendanceRecord{
				TaskID:     task.ID,
				FarmerID:   farmer.ID,
				Date:       day,
				Present:    true,
				RecordedBy: lead.ID,
			}
			require.NoError(t, attendanceRepo.Save(ctx, record))

			found, err := attendanceRepo.ByTaskFarmerDate(ctx, task.ID, farmer.ID, day)
			require.NoError(t, err)
			require.NotNil(t, found)
			assert.True(t, found.Present)

			otherDay, err := attendanceRepo.ByTaskFarmerDate(ctx, task.ID, farmer.ID, day.AddDate(0, 0, 1))
			require.NoError(t, err)
			assert.Nil(t, otherDay)
		})

		t.Run("UpdateFlipsPresence", func(t *testing.T) {
			record, err := attendanceRepo.ByTaskFarmerDate(ctx, task.ID, farmer.ID, day)
			require.NoError(t, err)
			require.NotNil(t, record)

			record.Present = false
			remarks := "Went home sick at noon"
			record.Remarks = &remarks
			require.NoError(t, attendanceRepo.Update(ctx, record))

			fresh, err := attendanceRepo.ByTaskFarmerDate(ctx, task.ID, farmer.ID, day)
			require.NoError(t, err)
			require.NotNil(t, fresh)
			assert.False(t, fresh.Present)
			require.NotNil(t, fresh.Remarks)
		})

		t.Run("ListByFarmer", func(t *testing.T) {
			records, err := attendanceRepo.ListByFarmer(ctx, farmer.ID, 10, 0)
			require.NoError(t, err)
			assert.Len(t, records, 1)
		})

		return nil
	})

	require.NoError(t, err)
}
