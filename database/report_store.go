package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"municipal-reports-service/mapaggr"
	"municipal-reports-service/models"
	"municipal-reports-service/services"
)

// ReportService handles all report persistence. It implements
// services.ReportStore.
type ReportService struct {
	db *sql.DB
}

// NewReportService creates a new report store instance.
func NewReportService(db *sql.DB) *ReportService {
	return &ReportService{db: db}
}

const reportColumns = `id, title, description, category, latitude, longitude,
	submitter_id, anonymous, status, assigned_office, assigned_officer_id,
	external_maintainer_id, rejection_reason, created_at`

// CreateReport inserts a new report in PENDING_APPROVAL together with its
// photo references.
func (s *ReportService) CreateReport(ctx context.Context, req models.CreateReportRequest, submitterID *int64) (*models.Report, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `
		INSERT INTO reports (title, description, category, latitude, longitude, submitter_id, anonymous, status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		req.Title, req.Description, req.Category, req.Latitude, req.Longitude,
		submitterID, req.Anonymous, models.StatusPendingApproval)
	if err != nil {
		return nil, fmt.Errorf("failed to insert report: %w", err)
	}

	reportID, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get report id: %w", err)
	}

	for _, ref := range req.Photos {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO report_photos (report_id, photo_ref) VALUES (?, ?)`,
			reportID, ref); err != nil {
			return nil, fmt.Errorf("failed to insert photo reference: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit report: %w", err)
	}

	return s.GetReport(ctx, reportID)
}

// GetReport returns the report with its photo references, or (nil, nil)
// when it does not exist.
func (s *ReportService) GetReport(ctx context.Context, id int64) (*models.Report, error) {
	query := `SELECT ` + reportColumns + ` FROM reports WHERE id = ?`

	var report models.Report
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&report.ID,
		&report.Title,
		&report.Description,
		&report.Category,
		&report.Latitude,
		&report.Longitude,
		&report.SubmitterID,
		&report.Anonymous,
		&report.Status,
		&report.AssignedOffice,
		&report.AssignedOfficerID,
		&report.ExternalMaintainerID,
		&report.RejectionReason,
		&report.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get report %d: %w", id, err)
	}

	photos, err := s.getPhotos(ctx, id)
	if err != nil {
		return nil, err
	}
	report.Photos = photos
	return &report, nil
}

func (s *ReportService) getPhotos(ctx context.Context, reportID int64) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT photo_ref FROM report_photos WHERE report_id = ? ORDER BY id`, reportID)
	if err != nil {
		return nil, fmt.Errorf("failed to get photos for report %d: %w", reportID, err)
	}
	defer rows.Close()

	var photos []string
	for rows.Next() {
		var ref string
		if err := rows.Scan(&ref); err != nil {
			return nil, fmt.Errorf("failed to scan photo reference: %w", err)
		}
		photos = append(photos, ref)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating photo references: %w", err)
	}
	return photos, nil
}

// UpdateLifecycle writes the report's lifecycle fields guarded by the
// status the caller read. A guarded update that matches no row means the
// report either vanished or changed under us; the caller gets ErrConflict
// and may retry from scratch.
func (s *ReportService) UpdateLifecycle(ctx context.Context, report *models.Report, expectStatus models.Status) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE reports
		SET status = ?, assigned_office = ?, assigned_officer_id = ?,
		    external_maintainer_id = ?, rejection_reason = ?
		WHERE id = ? AND status = ?`,
		report.Status, report.AssignedOffice, report.AssignedOfficerID,
		report.ExternalMaintainerID, report.RejectionReason,
		report.ID, expectStatus)
	if err != nil {
		return fmt.Errorf("failed to update report %d: %w", report.ID, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected for report %d: %w", report.ID, err)
	}
	if rows == 0 {
		return s.classifyMiss(ctx, report.ID, expectStatus)
	}
	return nil
}

// classifyMiss decides why a guarded update matched nothing. MySQL also
// reports zero affected rows when the new values equal the old ones, so an
// identical row counts as success.
func (s *ReportService) classifyMiss(ctx context.Context, reportID int64, expectStatus models.Status) error {
	var current models.Status
	err := s.db.QueryRowContext(ctx,
		`SELECT status FROM reports WHERE id = ?`, reportID).Scan(&current)
	if err != nil {
		if err == sql.ErrNoRows {
			return services.ErrReportNotFound
		}
		return fmt.Errorf("failed to check report %d: %w", reportID, err)
	}
	if current != expectStatus {
		return services.ErrConflict
	}
	return nil
}

// OverrideLifecycle writes lifecycle fields without a status guard, for the
// administrative override path.
func (s *ReportService) OverrideLifecycle(ctx context.Context, report *models.Report) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE reports
		SET status = ?, assigned_office = ?, assigned_officer_id = ?,
		    external_maintainer_id = ?, rejection_reason = ?
		WHERE id = ?`,
		report.Status, report.AssignedOffice, report.AssignedOfficerID,
		report.ExternalMaintainerID, report.RejectionReason,
		report.ID)
	if err != nil {
		return fmt.Errorf("failed to override report %d: %w", report.ID, err)
	}

	if rows, err := result.RowsAffected(); err == nil && rows == 0 {
		var exists int
		if err := s.db.QueryRowContext(ctx,
			`SELECT 1 FROM reports WHERE id = ?`, report.ID).Scan(&exists); err == sql.ErrNoRows {
			return services.ErrReportNotFound
		}
	}
	return nil
}

// CountOpenByOfficer returns, per officer, the number of reports assigned
// to them in a non-terminal status. Officers without open reports are
// absent from the result.
func (s *ReportService) CountOpenByOfficer(ctx context.Context, officerIDs []int64) (map[int64]int, error) {
	counts := make(map[int64]int)
	if len(officerIDs) == 0 {
		return counts, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(officerIDs)), ", ")
	query := fmt.Sprintf(`
		SELECT assigned_officer_id, COUNT(*)
		FROM reports
		WHERE assigned_officer_id IN (%s)
		  AND status NOT IN ('RESOLVED', 'REJECTED')
		GROUP BY assigned_officer_id`, placeholders)

	args := make([]interface{}, len(officerIDs))
	for i, id := range officerIDs {
		args[i] = id
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to count open reports: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var officerID int64
		var count int
		if err := rows.Scan(&officerID, &count); err != nil {
			return nil, fmt.Errorf("failed to scan open report count: %w", err)
		}
		counts[officerID] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating open report counts: %w", err)
	}
	return counts, nil
}

// ListByOffice returns the reports currently assigned to an office, newest
// first.
func (s *ReportService) ListByOffice(ctx context.Context, office string) ([]models.Report, error) {
	query := `SELECT ` + reportColumns + ` FROM reports WHERE assigned_office = ? ORDER BY id DESC`

	rows, err := s.db.QueryContext(ctx, query, office)
	if err != nil {
		return nil, fmt.Errorf("failed to list reports for office %s: %w", office, err)
	}
	defer rows.Close()

	var reports []models.Report
	for rows.Next() {
		var report models.Report
		if err := rows.Scan(
			&report.ID,
			&report.Title,
			&report.Description,
			&report.Category,
			&report.Latitude,
			&report.Longitude,
			&report.SubmitterID,
			&report.Anonymous,
			&report.Status,
			&report.AssignedOffice,
			&report.AssignedOfficerID,
			&report.ExternalMaintainerID,
			&report.RejectionReason,
			&report.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan report: %w", err)
		}
		reports = append(reports, report)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating reports: %w", err)
	}
	return reports, nil
}

// ListPositions returns the locations of reports inside the viewport for
// map aggregation.
func (s *ReportService) ListPositions(ctx context.Context, vp mapaggr.ViewPort) ([]mapaggr.Point, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT latitude, longitude
		FROM reports
		WHERE latitude > ? AND longitude > ?
		  AND latitude <= ? AND longitude <= ?`,
		vp.LatMin, vp.LonMin, vp.LatMax, vp.LonMax)
	if err != nil {
		return nil, fmt.Errorf("failed to list report positions: %w", err)
	}
	defer rows.Close()

	var points []mapaggr.Point
	for rows.Next() {
		var p mapaggr.Point
		if err := rows.Scan(&p.Lat, &p.Lon); err != nil {
			return nil, fmt.Errorf("failed to scan report position: %w", err)
		}
		points = append(points, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating report positions: %w", err)
	}
	return points, nil
}
