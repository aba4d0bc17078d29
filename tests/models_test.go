// Package tests contains unit tests for domain model behavior
package tests

import (
	"testing"
	"time"

	"github.com/Zarcastral/farmops/models"
	"github.com/Zarcastral/farmops/utils"
	"github.com/stretchr/testify/assert"
)

func TestResourceKind(t *testing.T) {
	t.Run("ValidKinds", func(t *testing.T) {
		assert.True(t, models.ValidResourceKind(models.ResourceKindCrop))
		assert.True(t, models.ValidResourceKind(models.ResourceKindFertilizer))
		assert.True(t, models.ValidResourceKind(models.ResourceKindEquipment))
		assert.False(t, models.ValidResourceKind("seeds"))
		assert.False(t, models.ValidResourceKind(""))
	})

	t.Run("SequenceNames", func(t *testing.T) {
		assert.Equal(t, utils.SeqCropTypes, models.ResourceKindCrop.SequenceName())
		assert.Equal(t, utils.SeqFertilizers, models.ResourceKindFertilizer.SequenceName())
		assert.Equal(t, utils.SeqEquipment, models.ResourceKindEquipment.SequenceName())
		assert.Empty(t, models.ResourceKind("seeds").SequenceName())
	})
}

func TestUsageStatus(t *testing.T) {
	t.Run("ValidStatuses", func(t *testing.T) {
		assert.True(t, models.ValidUsageStatus(models.UsageStatusUsed))
		assert.True(t, models.ValidUsageStatus(models.UsageStatusDamaged))
		assert.True(t, models.ValidUsageStatus(models.UsageStatusMissing))
		assert.False(t, models.ValidUsageStatus("Borrowed"))
	})

	t.Run("DetailsRequiredForLoss", func(t *testing.T) {
		assert.False(t, models.UsageStatusUsed.RequiresDetails())
		assert.True(t, models.UsageStatusDamaged.RequiresDetails())
		assert.True(t, models.UsageStatusMissing.RequiresDetails())
	})

	t.Run("OnlyLossDeductsStock", func(t *testing.T) {
		assert.False(t, models.UsageStatusUsed.DeductsStock())
		assert.True(t, models.UsageStatusDamaged.DeductsStock())
		assert.True(t, models.UsageStatusMissing.DeductsStock())
	})
}

func TestRolePermissions(t *testing.T) {
	assert.True(t, models.CanManageInventory(models.RoleAdmin))
	assert.True(t, models.CanManageInventory(models.RoleSupervisor))
	assert.True(t, models.CanManageInventory(models.RoleFarmPresident))
	assert.False(t, models.CanManageInventory(models.RoleHeadFarmer))
	assert.False(t, models.CanManageInventory(models.RoleFarmer))
	assert.False(t, models.CanManageInventory("visitor"))
}

func TestProjectLifecycle(t *testing.T) {
	project := models.Project{Status: models.ProjectStatusOngoing}
	assert.True(t, project.IsOpen())

	project.Status = models.ProjectStatusCompleted
	assert.False(t, project.IsOpen())

	project.Status = models.ProjectStatusCancelled
	assert.False(t, project.IsOpen())
}

func TestUserFullName(t *testing.T) {
	user := models.User{FirstName: "Juan", LastName: "Dela Cruz"}
	assert.Equal(t, "Juan Dela Cruz", user.FullName())
}

func TestUserSessionValidity(t *testing.T) {
	t.Run("ActiveUnexpiredIsValid", func(t *testing.T) {
		session := models.UserSession{
			IsActive:  utils.ToPtr(true),
			ExpiresAt: time.Now().Add(1 * time.Hour),
		}
		assert.False(t, session.IsExpired())
		assert.True(t, session.IsValid())
	})

	t.Run("ExpiredIsInvalid", func(t *testing.T) {
		session := models.UserSession{
			IsActive:  utils.ToPtr(true),
			ExpiresAt: time.Now().Add(-1 * time.Hour),
		}
		assert.True(t, session.IsExpired())
		assert.False(t, session.IsValid())
	})

	t.Run("InactiveIsInvalid", func(t *testing.T) {
		session := models.UserSession{
			IsActive:  utils.ToPtr(false),
			ExpiresAt: time.Now().Add(1 * time.Hour),
		}
		assert.False(t, session.IsValid())
	})
}

func TestActivityLogFailureFlag(t *testing.T) {
	entry := models.ActivityLog{Success: utils.ToPtr(false)}
	assert.True(t, entry.IsFailed())

	entry.Success = utils.ToPtr(true)
	assert.False(t, entry.IsFailed())

	entry.Success = nil
	assert.False(t, entry.IsFailed())
}
