package services

import (
	"context"

	"municipal-reports-service/models"
)

// ReportStore is the durable record store for reports. The database package
// provides the MySQL implementation; tests use in-memory fakes.
type ReportStore interface {
	// GetReport returns the report or (nil, nil) when absent.
	GetReport(ctx context.Context, id int64) (*models.Report, error)

	// UpdateLifecycle writes the report's lifecycle fields (status, assigned
	// office/officer, external maintainer, rejection reason) guarded by the
	// status the caller read. If the row no longer carries expectStatus the
	// write must fail with ErrConflict and leave the row untouched.
	UpdateLifecycle(ctx context.Context, report *models.Report, expectStatus models.Status) error

	// OverrideLifecycle writes lifecycle fields without a status guard. Used
	// only by the administrative override path (seed/import tooling).
	OverrideLifecycle(ctx context.Context, report *models.Report) error

	// CountOpenByOfficer returns, per officer id, the number of reports
	// currently assigned to them whose status is not terminal. Officers with
	// no open reports may be absent from the map.
	CountOpenByOfficer(ctx context.Context, officerIDs []int64) (map[int64]int, error)
}

// OfficeDirectory resolves the officers belonging to a municipal office.
type OfficeDirectory interface {
	// OfficersOf returns the office's officers ordered by ascending id.
	OfficersOf(ctx context.Context, office string) ([]models.Officer, error)
}

// CommentLedger is the append-only comment store for reports.
type CommentLedger interface {
	// Append stores the comment and returns it with id and timestamps set.
	Append(ctx context.Context, comment *models.Comment) (*models.Comment, error)

	// ListByReport returns the report's comments in creation order.
	ListByReport(ctx context.Context, reportID int64) ([]models.Comment, error)
}

// Notifier receives lifecycle and collaboration events for real-time
// delivery. Emission is this service's job; delivery is the dispatcher's.
type Notifier interface {
	StatusChanged(event models.StatusEvent)
	CommentAdded(event models.CommentEvent)
}
