package database

import (
	"context"
	"database/sql"
	"fmt"

	"municipal-reports-service/models"
)

// OfficeService resolves officers per office. It implements
// services.OfficeDirectory.
type OfficeService struct {
	db *sql.DB
}

// NewOfficeService creates a new office directory instance.
func NewOfficeService(db *sql.DB) *OfficeService {
	return &OfficeService{db: db}
}

// OfficersOf returns the office's officers ordered by ascending id. The
// order matters: the assignment resolver breaks load ties by officer id.
func (s *OfficeService) OfficersOf(ctx context.Context, office string) ([]models.Officer, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, office FROM officers WHERE office = ? ORDER BY id`, office)
	if err != nil {
		return nil, fmt.Errorf("failed to list officers of office %s: %w", office, err)
	}
	defer rows.Close()

	var officers []models.Officer
	for rows.Next() {
		var officer models.Officer
		if err := rows.Scan(&officer.ID, &officer.Name, &officer.Office); err != nil {
			return nil, fmt.Errorf("failed to scan officer: %w", err)
		}
		officers = append(officers, officer)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating officers: %w", err)
	}
	return officers, nil
}

// AddOfficer inserts an officer into an office. Used by seed tooling.
func (s *OfficeService) AddOfficer(ctx context.Context, name, office string) (*models.Officer, error) {
	result, err := s.db.ExecContext(ctx,
		`INSERT INTO officers (name, office) VALUES (?, ?)`, name, office)
	if err != nil {
		return nil, fmt.Errorf("failed to insert officer: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get officer id: %w", err)
	}
	return &models.Officer{ID: id, Name: name, Office: office}, nil
}
