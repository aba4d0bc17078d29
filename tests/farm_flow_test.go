// Package tests contains integration tests for farm operation workflows
package tests

import (
	"context"
	"testing"
	"time"

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

func TestFarmOperationFlows(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)
		require.NoError(t, fixtures.InsertDefaultRoles())

		barangayRepo := repository.NewBarangayRepository(testDB.DB)
		projectRepo := repository.NewProjectRepository(testDB.DB)
		teamRepo := repository.NewTeamRepository(testDB.DB)
		taskRepo := repository.NewTaskRepository(testDB.DB)
		attendanceRepo := repository.NewAttendanceRepository(testDB.DB)
		harvestRepo := repository.NewHarvestRepository(testDB.DB)
		feedbackRepo := repository.NewFeedbackRepository(testDB.DB)
		userRepo := repository.NewUserRepository(testDB.DB)
		seqRepo := repository.NewSequenceCounterRepository(testDB.DB)
		activityRepo := repository.NewActivityLogRepository(testDB.DB)

		require.NoError(t, seqRepo.Initialize(context.Background(), utils.AllSequences))

		cacheConfig := &config.CacheConfig{RedisPrefix: "farmops_test"}

		barangayFlow := businessflow.NewBarangayFlow(barangayRepo, seqRepo, activityRepo, testDB.DB)
		projectFlow := businessflow.NewProjectFlow(projectRepo, barangayRepo, userRepo, seqRepo, activityRepo, nil, cacheConfig, testDB.DB)
		teamFlow := businessflow.NewTeamFlow(teamRepo, barangayRepo, userRepo, seqRepo, activityRepo, testDB.DB)
		taskFlow := businessflow.NewTaskFlow(taskRepo, projectRepo, teamRepo, seqRepo, activityRepo, testDB.DB)
		attendanceFlow := businessflow.NewAttendanceFlow(attendanceRepo, taskRepo, userRepo, seqRepo, activityRepo, testDB.DB)
		harvestFlow := businessflow.NewHarvestFlow(harvestRepo, projectRepo, teamRepo, seqRepo, activityRepo, testDB.DB)
		feedbackFlow := businessflow.NewFeedbackFlow(feedbackRepo, taskRepo, seqRepo, activityRepo, testDB.DB)

		admin, err := fixtures.CreateTestUser(models.RoleAdmin, nil)
		require.NoError(t, err)
		adminActor := actorFor(admin)
		metadata := businessflow.NewClientMetadata("127.0.0.1", "Test User Agent")
		ctx := context.Background()

		var barangayID int64
		var projectID int64
		var teamID int64
		var taskID int64
		var headFarmer *models.User
		var farmer *models.User

		t.Run("CreateBarangay", func(t *testing.T) {
			resp, err := barangayFlow.Create(ctx, &dto.CreateBarangayRequest{
				Name:         "San Isidro",
				Municipality: "Santa Maria",
				Province:     "Bulacan",
			}, adminActor, metadata)
			require.NoError(t, err)
			assert.Greater(t, resp.BarangayID, int64(0))
			barangayID = resp.BarangayID

			// Names are unique across barangays
			_, err = barangayFlow.Create(ctx, &dto.CreateBarangayRequest{
				Name:         "San Isidro",
				Municipality: "Santa Maria",
				Province:     "Bulacan",
			}, adminActor, metadata)
			require.Error(t, err)
			assert.True(t, businessflow.IsBarangayNameTaken(err))
		})

		t.Run("CreateProject", func(t *testing.T) {
			internal, err := barangayRepo.ByBarangayID(ctx, barangayID)
			require.NoError(t, err)
			headFarmer, err = fixtures.CreateTestUser(models.RoleHeadFarmer, &internal.ID)
			require.NoError(t, err)
			farmer, err = fixtures.CreateTestUser(models.RoleFarmer, &internal.ID)
			require.NoError(t, err)

			start := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
			end := start.AddDate(0, 4, 0)
			resp, err := projectFlow.Create(ctx, &dto.CreateProjectRequest{
				Title:        "Wet Season Rice 2026",
				CropName:     "Rice",
				BarangayID:   barangayID,
				LeadFarmerID: headFarmer.ID,
				StartDate:    start,
				EndDate:      &end,
			}, adminActor, metadata)
			require.NoError(t, err)
			assert.Equal(t, "Ongoing", resp.Status)
			projectID = resp.ProjectID
		})

		t.Run("ProjectDateRangeValidated", func(t *testing.T) {
			start := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
			end := start.AddDate(0, -1, 0)
			_, err := projectFlow.Create(ctx, &dto.CreateProjectRequest{
				Title:        "Backwards Project",
				CropName:     "Rice",
				BarangayID:   barangayID,
				LeadFarmerID: headFarmer.ID,
				StartDate:    start,
				EndDate:      &end,
			}, adminActor, metadata)
			require.Error(t, err)
			assert.True(t, businessflow.IsStartDateAfterEndDate(err))
		})

		t.Run("CreateTeamWithMembers", func(t *testing.T) {
			resp, err := teamFlow.Create(ctx, &dto.CreateTeamRequest{
				TeamName:     "Team Masipag",
				BarangayID:   barangayID,
				HeadFarmerID: headFarmer.ID,
				MemberIDs:    []uint{farmer.ID},
			}, adminActor, metadata)
			require.NoError(t, err)
			teamID = resp.TeamID

			// A farmer belongs to at most one team at a time
			_, err = teamFlow.Create(ctx, &dto.CreateTeamRequest{
				TeamName:     "Team Kasama",
				BarangayID:   barangayID,
				HeadFarmerID: headFarmer.ID,
				MemberIDs:    []uint{farmer.ID},
			}, adminActor, metadata)
			require.Error(t, err)
			assert.True(t, businessflow.IsFarmerAlreadyInTeam(err))
		})

		t.Run("CreateTaskWithSubtasks", func(t *testing.T) {
			resp, err := taskFlow.Create(ctx, &dto.CreateTaskRequest{
				TaskName:  "Land Preparation",
				ProjectID: projectID,
				TeamID:    &teamID,
				Subtasks:  []string{"Plowing", "Harrowing"},
			}, adminActor, metadata)
			require.NoError(t, err)
			assert.Equal(t, "Pending", resp.Status)
			assert.Len(t, resp.Subtasks, 2)
			taskID = resp.TaskID
		})

		t.Run("TaskStatusTransition", func(t *testing.T) {
			resp, err := taskFlow.UpdateStatus(ctx, taskID, &dto.UpdateTaskStatusRequest{Status: "Ongoing"}, adminActor, metadata)
			require.NoError(t, err)
			assert.Equal(t, "Ongoing", resp.Status)

			resp, err = taskFlow.UpdateStatus(ctx, taskID, &dto.UpdateTaskStatusRequest{Status: "Completed"}, adminActor, metadata)
			require.NoError(t, err)
			assert.Equal(t, "Completed", resp.Status)
		})

		t.Run("SubtaskStatusTransition", func(t *testing.T) {
			current, err := taskFlow.Get(ctx, taskID)
			require.NoError(t, err)
			require.NotEmpty(t, current.Subtasks)

			resp, err := taskFlow.UpdateSubtaskStatus(ctx, taskID, current.Subtasks[0].ID,
				&dto.UpdateTaskStatusRequest{Status: "Completed"}, adminActor, metadata)
			require.NoError(t, err)
			assert.Equal(t, "Completed", resp.Subtasks[0].Status)
			require.NotNil(t, resp.Subtasks[0].CompletedAt)
		})

		t.Run("RecordAttendance", func(t *testing.T) {
			day := time.Date(2026, 6, 10, 0, 0, 0, 0, time.UTC)
			resp, err := attendanceFlow.Record(ctx, &dto.RecordAttendanceRequest{
				TaskID:   taskID,
				FarmerID: farmer.ID,
				Date:     day,
				Present:  true,
			}, actorFor(headFarmer), metadata)
			require.NoError(t, err)
			assert.True(t, resp.Present)

			// Re-recording the same day overwrites instead of duplicating
			resp, err = attendanceFlow.Record(ctx, &dto.RecordAttendanceRequest{
				TaskID:   taskID,
				FarmerID: farmer.ID,
				Date:     day,
				Present:  false,
				Remarks:  "Left early",
			}, actorFor(headFarmer), metadata)
			require.NoError(t, err)
			assert.False(t, resp.Present)

			listed, err := attendanceFlow.ListByTask(ctx, taskID, &day)
			require.NoError(t, err)
			assert.Equal(t, int64(1), listed.Total)
		})

		t.Run("RecordHarvest", func(t *testing.T) {
			resp, err := harvestFlow.Record(ctx, &dto.RecordHarvestRequest{
				ProjectID:   projectID,
				TeamID:      &teamID,
				Quantity:    850,
				Unit:        "kg",
				HarvestDate: time.Date(2026, 10, 20, 0, 0, 0, 0, time.UTC),
			}, actorFor(headFarmer), metadata)
			require.NoError(t, err)
			assert.Equal(t, "Rice", resp.CropName)
			assert.Equal(t, float64(850), resp.Quantity)

			summary, err := harvestFlow.SummaryByCrop(ctx, "Rice", "kg")
			require.NoError(t, err)
			assert.Equal(t, float64(850), summary.Total)
		})

		t.Run("FeedbackLifecycle", func(t *testing.T) {
			submitted, err := feedbackFlow.Submit(ctx, &dto.SubmitFeedbackRequest{
				TaskID:  taskID,
				Content: "Irrigation pump keeps stalling",
			}, actorFor(farmer), metadata)
			require.NoError(t, err)
			assert.Equal(t, "Pending", submitted.Status)

			// Regular farmers may not acknowledge
			_, err = feedbackFlow.Acknowledge(ctx, submitted.FeedbackID, actorFor(farmer), metadata)
			require.Error(t, err)
			assert.True(t, businessflow.IsAccessDenied(err))

			acked, err := feedbackFlow.Acknowledge(ctx, submitted.FeedbackID, adminActor, metadata)
			require.NoError(t, err)
			assert.Equal(t, "Acknowledged", acked.Status)

			// Acknowledging twice is rejected
			_, err = feedbackFlow.Acknowledge(ctx, submitted.FeedbackID, adminActor, metadata)
			require.Error(t, err)
			assert.True(t, businessflow.IsFeedbackAlreadyAcknowledged(err))
		})

		t.Run("ClosedProjectRejectsNewWork", func(t *testing.T) {
			_, err := projectFlow.UpdateStatus(ctx, projectID, &dto.UpdateProjectStatusRequest{Status: "Completed"}, adminActor, metadata)
			require.NoError(t, err)

			_, err = taskFlow.Create(ctx, &dto.CreateTaskRequest{
				TaskName:  "Post-season Cleanup",
				ProjectID: projectID,
			}, adminActor, metadata)
			require.Error(t, err)
			assert.True(t, businessflow.IsProjectClosed(err))

			_, err = harvestFlow.Record(ctx, &dto.RecordHarvestRequest{
				ProjectID:   projectID,
				Quantity:    10,
				Unit:        "kg",
				HarvestDate: utils.UTCNow(),
			}, actorFor(headFarmer), metadata)
			require.Error(t, err)
			assert.True(t, businessflow.IsProjectClosed(err))
		})

		t.Run("ReferencedBarangayCannotBeDeleted", func(t *testing.T) {
			err := barangayFlow.Delete(ctx, barangayID, adminActor, metadata)
			require.Error(t, err)
			assert.True(t, businessflow.IsBarangayReferenced(err))
		})

		return nil
	})

	require.NoError(t, err)
}
