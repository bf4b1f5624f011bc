package database

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"municipal-reports-service/models"
	"municipal-reports-service/services"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jknair0/beforeeach"
)

var (
	db   *sql.DB
	mock sqlmock.Sqlmock
)

func setUp() {
	db, mock, _ = sqlmock.New()
}

func tearDown() {
	db.Close()
}

var it = beforeeach.Create(setUp, tearDown)

var reportRowColumns = []string{
	"id", "title", "description", "category", "latitude", "longitude",
	"submitter_id", "anonymous", "status", "assigned_office",
	"assigned_officer_id", "external_maintainer_id", "rejection_reason",
	"created_at",
}

func pendingReportRow(id int64) *sqlmock.Rows {
	return sqlmock.NewRows(reportRowColumns).
		AddRow(id, "Overflowing bin", "Bin at the corner", "WASTE", 42.44, 19.26,
			nil, false, "PENDING_APPROVAL", nil, nil, nil, nil, time.Now())
}

func TestGetReport(t *testing.T) {
	it(func() {
		s := NewReportService(db)

		mock.ExpectQuery("SELECT (.+) FROM reports WHERE id = (.+)").
			WithArgs(int64(5)).
			WillReturnRows(pendingReportRow(5))
		mock.ExpectQuery("SELECT photo_ref FROM report_photos WHERE report_id = (.+) ORDER BY id").
			WithArgs(int64(5)).
			WillReturnRows(sqlmock.NewRows([]string{"photo_ref"}).
				AddRow("photos/5/a.jpg").
				AddRow("photos/5/b.jpg"))

		report, err := s.GetReport(context.Background(), 5)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if report == nil {
			t.Fatal("expected a report")
		}
		if report.Status != models.StatusPendingApproval {
			t.Errorf("expected PENDING_APPROVAL, got %s", report.Status)
		}
		if len(report.Photos) != 2 {
			t.Errorf("expected 2 photo refs, got %d", len(report.Photos))
		}
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("unmet expectations: %v", err)
		}
	})
}

func TestGetReportAbsent(t *testing.T) {
	it(func() {
		s := NewReportService(db)

		mock.ExpectQuery("SELECT (.+) FROM reports WHERE id = (.+)").
			WithArgs(int64(404)).
			WillReturnError(sql.ErrNoRows)

		report, err := s.GetReport(context.Background(), 404)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if report != nil {
			t.Errorf("expected nil report, got %+v", report)
		}
	})
}

func TestUpdateLifecycle(t *testing.T) {
	it(func() {
		testCases := []struct {
			name         string
			rowsAffected int64
			checkStatus  string
			checkMissing bool
			expectError  error
		}{
			{
				name:         "guarded update hits",
				rowsAffected: 1,
			},
			{
				name:         "row changed under us",
				rowsAffected: 0,
				checkStatus:  "REJECTED",
				expectError:  services.ErrConflict,
			},
			{
				name:         "row vanished",
				rowsAffected: 0,
				checkMissing: true,
				expectError:  services.ErrReportNotFound,
			},
			{
				name:         "identical values count as success",
				rowsAffected: 0,
				checkStatus:  "PENDING_APPROVAL",
			},
		}

		office := "sanitation"
		officerID := int64(3)
		for _, testCase := range testCases {
			setUp()
			s := NewReportService(db)

			mock.ExpectExec("UPDATE reports SET status = (.+) WHERE id = (.+) AND status = (.+)").
				WithArgs("ASSIGNED", office, officerID, nil, nil, int64(5), "PENDING_APPROVAL").
				WillReturnResult(sqlmock.NewResult(0, testCase.rowsAffected))
			if testCase.rowsAffected == 0 {
				check := mock.ExpectQuery("SELECT status FROM reports WHERE id = (.+)").
					WithArgs(int64(5))
				if testCase.checkMissing {
					check.WillReturnError(sql.ErrNoRows)
				} else {
					check.WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow(testCase.checkStatus))
				}
			}

			report := &models.Report{
				ID:                5,
				Status:            models.StatusAssigned,
				AssignedOffice:    &office,
				AssignedOfficerID: &officerID,
			}
			err := s.UpdateLifecycle(context.Background(), report, models.StatusPendingApproval)
			if !errors.Is(err, testCase.expectError) {
				t.Errorf("%s: expected error %v, got %v", testCase.name, testCase.expectError, err)
			}
			if err := mock.ExpectationsWereMet(); err != nil {
				t.Errorf("%s: unmet expectations: %v", testCase.name, err)
			}
		}
	})
}

func TestOverrideLifecycle(t *testing.T) {
	it(func() {
		s := NewReportService(db)

		reason := "imported as rejected"
		mock.ExpectExec("UPDATE reports SET status = (.+) WHERE id = (.+)").
			WithArgs("REJECTED", nil, nil, nil, reason, int64(8)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		report := &models.Report{
			ID:              8,
			Status:          models.StatusRejected,
			RejectionReason: &reason,
		}
		if err := s.OverrideLifecycle(context.Background(), report); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("unmet expectations: %v", err)
		}
	})
}

func TestCountOpenByOfficer(t *testing.T) {
	it(func() {
		s := NewReportService(db)

		mock.ExpectQuery("SELECT assigned_officer_id, COUNT(.+) FROM reports WHERE assigned_officer_id IN (.+) AND status NOT IN (.+) GROUP BY assigned_officer_id").
			WithArgs(int64(1), int64(2), int64(3)).
			WillReturnRows(sqlmock.NewRows([]string{"assigned_officer_id", "count"}).
				AddRow(1, 4).
				AddRow(3, 1))

		counts, err := s.CountOpenByOfficer(context.Background(), []int64{1, 2, 3})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if counts[1] != 4 || counts[2] != 0 || counts[3] != 1 {
			t.Errorf("unexpected counts: %v", counts)
		}
	})
}

func TestCountOpenByOfficerEmpty(t *testing.T) {
	it(func() {
		s := NewReportService(db)

		counts, err := s.CountOpenByOfficer(context.Background(), nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(counts) != 0 {
			t.Errorf("expected empty counts, got %v", counts)
		}
	})
}

func TestCreateReport(t *testing.T) {
	it(func() {
		s := NewReportService(db)

		mock.ExpectBegin()
		mock.ExpectExec("INSERT INTO reports (.+)").
			WithArgs("Overflowing bin", "Bin at the corner", "WASTE", 42.44, 19.26,
				nil, false, "PENDING_APPROVAL").
			WillReturnResult(sqlmock.NewResult(5, 1))
		mock.ExpectExec("INSERT INTO report_photos (.+)").
			WithArgs(int64(5), "photos/5/a.jpg").
			WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectCommit()
		mock.ExpectQuery("SELECT (.+) FROM reports WHERE id = (.+)").
			WithArgs(int64(5)).
			WillReturnRows(pendingReportRow(5))
		mock.ExpectQuery("SELECT photo_ref FROM report_photos WHERE report_id = (.+) ORDER BY id").
			WithArgs(int64(5)).
			WillReturnRows(sqlmock.NewRows([]string{"photo_ref"}).AddRow("photos/5/a.jpg"))

		report, err := s.CreateReport(context.Background(), models.CreateReportRequest{
			Title:       "Overflowing bin",
			Description: "Bin at the corner",
			Category:    models.CategoryWaste,
			Latitude:    42.44,
			Longitude:   19.26,
			Photos:      []string{"photos/5/a.jpg"},
		}, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if report.ID != 5 {
			t.Errorf("expected report id 5, got %d", report.ID)
		}
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("unmet expectations: %v", err)
		}
	})
}
