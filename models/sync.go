package models

import "time"

// StatusChange records one observed transition of a booking's portal status
// between two scrapes. Multiple portal-side transitions between syncs are
// collapsed into a single before/after pair.
type StatusChange struct {
	BookingRecord  `bson:",inline"`
	PreviousStatus BookingStatus `json:"previousStatus" bson:"previousStatus"`
	NewStatus      BookingStatus `json:"newStatus" bson:"newStatus"`
}

// SyncResult is the aggregated outcome of one sync pass. It is constructed
// fresh per call and also drives the notification dispatch.
type SyncResult struct {
	RunID         string          `json:"runId"`
	Success       bool            `json:"success"`
	TotalCount    int             `json:"totalCount"`
	NewBookings   []BookingRecord `json:"newBookings"`
	StatusChanges []StatusChange  `json:"statusChanges"`
	Errors        []string        `json:"errors"`
	SyncedAt      time.Time       `json:"syncedAt"`
}

// SyncStatus describes the engine's current state for the status endpoint.
type SyncStatus struct {
	LastSyncTime *time.Time `json:"lastSyncTime"`
	IsSyncing    bool       `json:"isSyncing"`
	IsLoggedIn   bool       `json:"isLoggedIn"`
}
