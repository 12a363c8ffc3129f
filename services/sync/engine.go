package sync

import (
	"context"
	"errors"
	"fmt"
	stdsync "sync"
	"time"

	snapshotRepo "github.com/SNS-EUGENE/sto-mediacenter-sub001/database/repository/snapshot"
	"github.com/SNS-EUGENE/sto-mediacenter-sub001/models"
	"github.com/SNS-EUGENE/sto-mediacenter-sub001/services/portal"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrAlreadySyncing is returned when a sync is requested while another is in
// progress. The rejected call must not touch the network or the snapshot.
var ErrAlreadySyncing = errors.New("sync already in progress")

// Dispatcher fans classified changes out to the notification channels.
// Dispatch runs after the sync result is final and never affects it.
type Dispatcher interface {
	Dispatch(ctx context.Context, newBookings []models.BookingRecord, statusChanges []models.StatusChange)
}

// SessionChecker reports whether a portal session is currently held.
type SessionChecker interface {
	IsValid() bool
}

// Engine orchestrates a full scrape, diffs it against the last-known status
// snapshot, and drives notification dispatch.
type Engine interface {
	Sync(ctx context.Context, maxRecords int, fetchDetail bool) (*models.SyncResult, error)
	InitializeStatusMap(ctx context.Context) error
	Status() models.SyncStatus
}

// DefaultEngine is the production implementation.
type DefaultEngine struct {
	scraper    portal.Scraper
	sessions   SessionChecker
	snapshots  snapshotRepo.Repository
	dispatcher Dispatcher
	pageSize   int
	logger     *zap.Logger

	mu           stdsync.Mutex
	inProgress   bool
	statusMap    map[string]models.BookingStatus
	lastSyncTime time.Time
}

func NewDefaultEngine(scraper portal.Scraper, sessions SessionChecker, snapshots snapshotRepo.Repository, dispatcher Dispatcher, pageSize int, logger *zap.Logger) *DefaultEngine {
	return &DefaultEngine{
		scraper:    scraper,
		sessions:   sessions,
		snapshots:  snapshots,
		dispatcher: dispatcher,
		pageSize:   pageSize,
		logger:     logger,
	}
}

// InitializeStatusMap seeds the snapshot from durable storage so the first
// sync after a restart does not classify every existing booking as new.
func (e *DefaultEngine) InitializeStatusMap(ctx context.Context) error {
	if e.snapshots == nil {
		return nil
	}
	statuses, err := e.snapshots.Load(ctx)
	if err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.statusMap = statuses
	e.logger.Info("seeded status snapshot from durable store", zap.Int("entries", len(statuses)))
	return nil
}

// Status reports the engine's current state.
func (e *DefaultEngine) Status() models.SyncStatus {
	e.mu.Lock()
	defer e.mu.Unlock()

	status := models.SyncStatus{IsSyncing: e.inProgress}
	if !e.lastSyncTime.IsZero() {
		t := e.lastSyncTime
		status.LastSyncTime = &t
	}
	if e.sessions != nil {
		status.IsLoggedIn = e.sessions.IsValid()
	}
	return status
}

// Sync runs one full scrape-diff-notify pass. At most one sync runs
// process-wide at any time; a concurrent call gets ErrAlreadySyncing. The
// snapshot is only advanced after the scrape is confirmed successful, so a
// failed scrape cannot corrupt the baseline.
func (e *DefaultEngine) Sync(ctx context.Context, maxRecords int, fetchDetail bool) (*models.SyncResult, error) {
	e.mu.Lock()
	if e.inProgress {
		e.mu.Unlock()
		return nil, ErrAlreadySyncing
	}
	e.inProgress = true
	e.mu.Unlock()
	defer func() {
		e.mu.Lock()
		e.inProgress = false
		e.mu.Unlock()
	}()

	list, err := e.scraper.FetchAllBookings(ctx, e.pagesFor(maxRecords))
	if err != nil {
		return nil, err
	}

	bookings := list.Bookings
	if maxRecords > 0 && len(bookings) > maxRecords {
		bookings = bookings[:maxRecords]
	}

	result := &models.SyncResult{
		RunID:      uuid.NewString(),
		Success:    true,
		TotalCount: len(bookings),
		SyncedAt:   time.Now(),
	}

	// Detail fetch failures are per-record, best-effort over the full set.
	if fetchDetail {
		for i := range bookings {
			detail, err := e.scraper.FetchBookingDetail(ctx, bookings[i].ExternalID)
			if err != nil {
				result.Errors = append(result.Errors,
					fmt.Sprintf("detail fetch failed for %s: %v", bookings[i].ExternalID, err))
				continue
			}
			bookings[i].Detail = detail
		}
	}

	// Classification is computed against the snapshot before any mutation in
	// this pass; intermediate portal states between two syncs collapse into
	// one before/after pair.
	e.mu.Lock()
	if e.statusMap == nil {
		e.statusMap = make(map[string]models.BookingStatus)
	}
	for _, b := range bookings {
		previous, seen := e.statusMap[b.ExternalID]
		if !seen {
			result.NewBookings = append(result.NewBookings, b)
		} else if previous != b.Status {
			result.StatusChanges = append(result.StatusChanges, models.StatusChange{
				BookingRecord:  b,
				PreviousStatus: previous,
				NewStatus:      b.Status,
			})
		}
	}
	for _, b := range bookings {
		e.statusMap[b.ExternalID] = b.Status
	}
	e.lastSyncTime = result.SyncedAt
	persisted := make(map[string]models.BookingStatus, len(e.statusMap))
	for id, status := range e.statusMap {
		persisted[id] = status
	}
	e.mu.Unlock()

	// Snapshot durability is best-effort; the in-memory map stays
	// authoritative and is recoverable via InitializeStatusMap.
	if e.snapshots != nil {
		if err := e.snapshots.Save(ctx, persisted); err != nil {
			e.logger.Warn("failed to persist status snapshot", zap.Error(err))
		}
	}

	e.logger.Info("sync completed",
		zap.String("runId", result.RunID),
		zap.Int("total", result.TotalCount),
		zap.Int("new", len(result.NewBookings)),
		zap.Int("changed", len(result.StatusChanges)),
		zap.Int("errors", len(result.Errors)))

	if e.dispatcher != nil && (len(result.NewBookings) > 0 || len(result.StatusChanges) > 0) {
		e.dispatcher.Dispatch(ctx, result.NewBookings, result.StatusChanges)
	}

	return result, nil
}

// pagesFor converts a record bound into a list-page bound.
func (e *DefaultEngine) pagesFor(maxRecords int) int {
	if maxRecords <= 0 || e.pageSize <= 0 {
		return 0 // scraper default
	}
	return (maxRecords + e.pageSize - 1) / e.pageSize
}
