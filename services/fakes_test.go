package services

import (
	"context"
	"time"

	"municipal-reports-service/models"
)

// fakeReportStore keeps reports in memory and honors the status-guarded
// update contract.
type fakeReportStore struct {
	reports map[int64]*models.Report
	failGet error
	// staleRead, when set, is served by the next GetReport call to simulate
	// a report changing between read and write.
	staleRead *models.Report
}

func newFakeReportStore(reports ...*models.Report) *fakeReportStore {
	s := &fakeReportStore{reports: make(map[int64]*models.Report)}
	for _, r := range reports {
		s.reports[r.ID] = r
	}
	return s
}

func (s *fakeReportStore) GetReport(_ context.Context, id int64) (*models.Report, error) {
	if s.failGet != nil {
		return nil, s.failGet
	}
	if s.staleRead != nil && s.staleRead.ID == id {
		stale := *s.staleRead
		s.staleRead = nil
		return &stale, nil
	}
	r, ok := s.reports[id]
	if !ok {
		return nil, nil
	}
	cp := *r
	return &cp, nil
}

func (s *fakeReportStore) UpdateLifecycle(_ context.Context, report *models.Report, expectStatus models.Status) error {
	current, ok := s.reports[report.ID]
	if !ok {
		return ErrReportNotFound
	}
	if current.Status != expectStatus {
		return ErrConflict
	}
	cp := *report
	s.reports[report.ID] = &cp
	return nil
}

func (s *fakeReportStore) OverrideLifecycle(_ context.Context, report *models.Report) error {
	if _, ok := s.reports[report.ID]; !ok {
		return ErrReportNotFound
	}
	cp := *report
	s.reports[report.ID] = &cp
	return nil
}

func (s *fakeReportStore) CountOpenByOfficer(_ context.Context, officerIDs []int64) (map[int64]int, error) {
	counts := make(map[int64]int)
	for _, id := range officerIDs {
		for _, r := range s.reports {
			if r.AssignedOfficerID != nil && *r.AssignedOfficerID == id && !r.Status.Terminal() {
				counts[id]++
			}
		}
	}
	return counts, nil
}

// stored returns the report as the store holds it, bypassing the copy that
// GetReport makes.
func (s *fakeReportStore) stored(id int64) *models.Report {
	return s.reports[id]
}

// fakeDirectory maps office -> officers.
type fakeDirectory struct {
	officers map[string][]models.Officer
}

func (d *fakeDirectory) OfficersOf(_ context.Context, office string) ([]models.Officer, error) {
	return d.officers[office], nil
}

// fakeLedger is an in-memory append-only comment list.
type fakeLedger struct {
	comments []models.Comment
	nextID   int64
}

func (l *fakeLedger) Append(_ context.Context, comment *models.Comment) (*models.Comment, error) {
	l.nextID++
	saved := *comment
	saved.ID = l.nextID
	saved.CreatedAt = time.Now()
	saved.UpdatedAt = saved.CreatedAt
	l.comments = append(l.comments, saved)
	return &saved, nil
}

func (l *fakeLedger) ListByReport(_ context.Context, reportID int64) ([]models.Comment, error) {
	var out []models.Comment
	for _, c := range l.comments {
		if c.ReportID == reportID {
			out = append(out, c)
		}
	}
	return out, nil
}

// fakeNotifier records emitted events.
type fakeNotifier struct {
	statusEvents  []models.StatusEvent
	commentEvents []models.CommentEvent
}

func (n *fakeNotifier) StatusChanged(event models.StatusEvent) {
	n.statusEvents = append(n.statusEvents, event)
}

func (n *fakeNotifier) CommentAdded(event models.CommentEvent) {
	n.commentEvents = append(n.commentEvents, event)
}

func pendingReport(id int64, category models.Category) *models.Report {
	return &models.Report{
		ID:          id,
		Title:       "Broken thing",
		Description: "It is broken",
		Category:    category,
		Latitude:    42.44,
		Longitude:   19.26,
		Status:      models.StatusPendingApproval,
		CreatedAt:   time.Now(),
	}
}

func assignedReport(id int64, officerID int64, status models.Status) *models.Report {
	office := "sanitation"
	r := pendingReport(id, models.CategoryWaste)
	r.Status = status
	r.AssignedOffice = &office
	r.AssignedOfficerID = &officerID
	return r
}

func int64ptr(v int64) *int64 { return &v }

func strptr(v string) *string { return &v }
