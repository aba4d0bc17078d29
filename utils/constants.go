package utils

import (
	"time"
)

// Token and session time constants
const (
	// AccessTokenTTL is the time-to-live for access tokens (24 hours)
	AccessTokenTTL = 24 * time.Hour

	// RefreshTokenTTL is the time-to-live for refresh tokens (7 days)
	RefreshTokenTTL = 7 * 24 * time.Hour

	// SessionTimeout is the default session timeout (24 hours)
	SessionTimeout = 24 * time.Hour
)

// CORS and security constants
const (
	// CORSMaxAge is the maximum age for CORS preflight requests (24 hours)
	CORSMaxAge = 86400
)

// Inventory constants
const (
	// GeneralProject is the attribution recorded on a usage log entry when the
	// acting farmer has no active project context.
	GeneralProject = "General"

	// ActiveProjectCacheKey is the redis key prefix for a farmer's active project.
	ActiveProjectCacheKey = "farmops:active_project"

	// ActiveProjectCacheTTL bounds how long an active-project entry survives
	// without being refreshed by a project flow.
	ActiveProjectCacheTTL = 12 * time.Hour
)

// Sequence names registered at startup. One counter per entity type that
// carries an external display identifier.
const (
	SeqBarangays    = "barangays"
	SeqCropTypes    = "crop_types"
	SeqFertilizers  = "fertilizers"
	SeqEquipment    = "equipment"
	SeqTeams        = "teams"
	SeqProjects     = "projects"
	SeqTasks        = "tasks"
	SeqHarvests     = "harvests"
	SeqFeedback     = "feedback"
	SeqUsageLogs    = "usage_logs"
	SeqActivityLogs = "activity_logs"
)

// AllSequences lists every counter initialized on application start.
var AllSequences = []string{
	SeqBarangays,
	SeqCropTypes,
	SeqFertilizers,
	SeqEquipment,
	SeqTeams,
	SeqProjects,
	SeqTasks,
	SeqHarvests,
	SeqFeedback,
	SeqUsageLogs,
	SeqActivityLogs,
}
