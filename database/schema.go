package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/apex/log"
)

// EnsureReportsTable creates the reports table if it doesn't exist.
func EnsureReportsTable(ctx context.Context, db *sql.DB) error {
	query := `
		CREATE TABLE IF NOT EXISTS reports (
			id BIGINT NOT NULL AUTO_INCREMENT,
			title VARCHAR(256) NOT NULL,
			description TEXT NOT NULL,
			category ENUM('ROADS', 'LIGHTING', 'WASTE', 'WATER_SEWER', 'PARKS', 'OTHER') NOT NULL,
			latitude DOUBLE NOT NULL,
			longitude DOUBLE NOT NULL,
			submitter_id BIGINT,
			anonymous BOOLEAN NOT NULL DEFAULT FALSE,
			status ENUM('PENDING_APPROVAL', 'ASSIGNED', 'IN_PROGRESS', 'SUSPENDED', 'RESOLVED', 'REJECTED')
				NOT NULL DEFAULT 'PENDING_APPROVAL',
			assigned_office VARCHAR(64),
			assigned_officer_id BIGINT,
			external_maintainer_id BIGINT,
			rejection_reason TEXT,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (id),
			INDEX status_index (status),
			INDEX officer_index (assigned_officer_id),
			INDEX office_index (assigned_office),
			INDEX latitude_index (latitude),
			INDEX longitude_index (longitude)
		)
	`

	if _, err := db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to create reports table: %w", err)
	}

	log.Info("Reports table ensured")
	return nil
}

// EnsureReportPhotosTable creates the report_photos table if it doesn't
// exist. Photo references are opaque strings owned by the image pipeline.
func EnsureReportPhotosTable(ctx context.Context, db *sql.DB) error {
	query := `
		CREATE TABLE IF NOT EXISTS report_photos (
			id BIGINT NOT NULL AUTO_INCREMENT,
			report_id BIGINT NOT NULL,
			photo_ref VARCHAR(512) NOT NULL,
			PRIMARY KEY (id),
			INDEX report_id_index (report_id),
			FOREIGN KEY (report_id) REFERENCES reports(id) ON DELETE CASCADE
		)
	`

	if _, err := db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to create report_photos table: %w", err)
	}

	log.Info("Report photos table ensured")
	return nil
}

// EnsureCommentsTable creates the comments table if it doesn't exist.
func EnsureCommentsTable(ctx context.Context, db *sql.DB) error {
	query := `
		CREATE TABLE IF NOT EXISTS comments (
			id BIGINT NOT NULL AUTO_INCREMENT,
			report_id BIGINT NOT NULL,
			content TEXT NOT NULL,
			municipality_user_id BIGINT,
			external_maintainer_id BIGINT,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
			PRIMARY KEY (id),
			INDEX report_id_index (report_id),
			FOREIGN KEY (report_id) REFERENCES reports(id) ON DELETE CASCADE
		)
	`

	if _, err := db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to create comments table: %w", err)
	}

	log.Info("Comments table ensured")
	return nil
}

// EnsureOfficersTable creates the officers table if it doesn't exist.
func EnsureOfficersTable(ctx context.Context, db *sql.DB) error {
	query := `
		CREATE TABLE IF NOT EXISTS officers (
			id BIGINT NOT NULL AUTO_INCREMENT,
			name VARCHAR(256) NOT NULL,
			office VARCHAR(64) NOT NULL,
			PRIMARY KEY (id),
			INDEX office_index (office)
		)
	`

	if _, err := db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to create officers table: %w", err)
	}

	log.Info("Officers table ensured")
	return nil
}

// InitSchema ensures all tables used by the service.
func InitSchema(ctx context.Context, db *sql.DB) error {
	if err := EnsureReportsTable(ctx, db); err != nil {
		return err
	}
	if err := EnsureReportPhotosTable(ctx, db); err != nil {
		return err
	}
	if err := EnsureCommentsTable(ctx, db); err != nil {
		return err
	}
	return EnsureOfficersTable(ctx, db)
}
