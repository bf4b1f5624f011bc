package services

import (
	"context"
	"fmt"
	"time"

	"municipal-reports-service/models"

	"github.com/apex/log"
)

// transitions is the lifecycle table: source status -> allowed targets.
// Approval and rejection leave PENDING_APPROVAL; RESOLVED and REJECTED are
// terminal.
var transitions = map[models.Status][]models.Status{
	models.StatusPendingApproval: {models.StatusAssigned, models.StatusRejected},
	models.StatusAssigned:        {models.StatusInProgress},
	models.StatusInProgress:      {models.StatusSuspended, models.StatusResolved},
	models.StatusSuspended:       {models.StatusInProgress, models.StatusResolved},
}

func canTransition(from, to models.Status) bool {
	for _, allowed := range transitions[from] {
		if to == allowed {
			return true
		}
	}
	return false
}

// maintainerAttachable lists the statuses during which an external
// maintainer may be attached to a report.
func maintainerAttachable(s models.Status) bool {
	return s == models.StatusAssigned || s == models.StatusInProgress || s == models.StatusSuspended
}

// LifecycleService validates and applies report status transitions. All
// writes go through the store's status-guarded update, so a report that
// changed between read and write fails with ErrConflict instead of being
// silently overwritten.
type LifecycleService struct {
	reports  ReportStore
	assigner *AssignmentService
	notifier Notifier
}

// NewLifecycleService creates a new lifecycle service instance.
func NewLifecycleService(reports ReportStore, assigner *AssignmentService, notifier Notifier) *LifecycleService {
	return &LifecycleService{reports: reports, assigner: assigner, notifier: notifier}
}

// Approve moves a PENDING_APPROVAL report to ASSIGNED, routing it to the
// office responsible for its category and the least-loaded officer there.
func (s *LifecycleService) Approve(ctx context.Context, reportID int64) (*models.Report, error) {
	report, err := s.getReport(ctx, reportID)
	if err != nil {
		return nil, err
	}
	if !canTransition(report.Status, models.StatusAssigned) {
		return nil, &InvalidTransitionError{From: report.Status, To: models.StatusAssigned}
	}

	office, officerID, err := s.assigner.ResolveOfficer(ctx, report.Category)
	if err != nil {
		return nil, err
	}

	from := report.Status
	report.Status = models.StatusAssigned
	report.AssignedOffice = &office
	report.AssignedOfficerID = &officerID
	if err := s.reports.UpdateLifecycle(ctx, report, from); err != nil {
		return nil, err
	}

	log.Infof("Report %d approved, assigned to office %s officer %d", report.ID, office, officerID)
	s.notifyStatus(report, from)
	return report, nil
}

// Reject moves a PENDING_APPROVAL report to REJECTED. The reason is
// mandatory; a rejected report carries it for as long as it exists.
func (s *LifecycleService) Reject(ctx context.Context, reportID int64, reason string) (*models.Report, error) {
	if reason == "" {
		return nil, NewValidationError("reason", "rejection reason is required")
	}
	report, err := s.getReport(ctx, reportID)
	if err != nil {
		return nil, err
	}
	if !canTransition(report.Status, models.StatusRejected) {
		return nil, &InvalidTransitionError{From: report.Status, To: models.StatusRejected}
	}

	from := report.Status
	report.Status = models.StatusRejected
	report.RejectionReason = &reason
	if err := s.reports.UpdateLifecycle(ctx, report, from); err != nil {
		return nil, err
	}

	log.Infof("Report %d rejected: %s", report.ID, reason)
	s.notifyStatus(report, from)
	return report, nil
}

// ChangeStatus applies a plain transition from the lifecycle table.
// Approval and rejection carry side data and are delegated to their
// dedicated entry points.
func (s *LifecycleService) ChangeStatus(ctx context.Context, reportID int64, target models.Status) (*models.Report, error) {
	if !target.Valid() {
		return nil, NewValidationError("status", fmt.Sprintf("unknown status %s", target))
	}
	if target == models.StatusRejected {
		return nil, NewValidationError("reason", "rejection requires a reason, use the reject operation")
	}
	if target == models.StatusAssigned {
		return s.Approve(ctx, reportID)
	}

	report, err := s.getReport(ctx, reportID)
	if err != nil {
		return nil, err
	}
	if !canTransition(report.Status, target) {
		return nil, &InvalidTransitionError{From: report.Status, To: target}
	}

	from := report.Status
	report.Status = target
	if err := s.reports.UpdateLifecycle(ctx, report, from); err != nil {
		return nil, err
	}

	log.Infof("Report %d moved from %s to %s", report.ID, from, target)
	s.notifyStatus(report, from)
	return report, nil
}

// AttachMaintainer sets the external maintainer on a report. This is an
// auxiliary mutation, not a status transition: the status is unchanged and
// must be ASSIGNED, IN_PROGRESS or SUSPENDED.
func (s *LifecycleService) AttachMaintainer(ctx context.Context, reportID, maintainerID int64) (*models.Report, error) {
	report, err := s.getReport(ctx, reportID)
	if err != nil {
		return nil, err
	}
	if !maintainerAttachable(report.Status) {
		return nil, NewValidationError("status",
			fmt.Sprintf("cannot attach a maintainer to a report in status %s", report.Status))
	}

	report.ExternalMaintainerID = &maintainerID
	if err := s.reports.UpdateLifecycle(ctx, report, report.Status); err != nil {
		return nil, err
	}

	log.Infof("Report %d attached to external maintainer %d", report.ID, maintainerID)
	return report, nil
}

// Override writes lifecycle fields directly, bypassing the transition
// table. It exists for seed and import tooling only and still enforces the
// rejection-reason invariant: REJECTED requires a non-empty reason, any
// other status clears it.
func (s *LifecycleService) Override(ctx context.Context, reportID int64, req models.OverrideRequest) (*models.Report, error) {
	if !req.Status.Valid() {
		return nil, NewValidationError("status", fmt.Sprintf("unknown status %s", req.Status))
	}
	if req.Status == models.StatusRejected && (req.RejectionReason == nil || *req.RejectionReason == "") {
		return nil, NewValidationError("rejection_reason", "rejection reason is required for REJECTED status")
	}

	report, err := s.getReport(ctx, reportID)
	if err != nil {
		return nil, err
	}

	from := report.Status
	report.Status = req.Status
	report.AssignedOffice = req.AssignedOffice
	report.AssignedOfficerID = req.OfficerID
	report.ExternalMaintainerID = req.MaintainerID
	if req.Status == models.StatusRejected {
		report.RejectionReason = req.RejectionReason
	} else {
		report.RejectionReason = nil
	}
	if err := s.reports.OverrideLifecycle(ctx, report); err != nil {
		return nil, err
	}

	log.Warnf("Report %d lifecycle overridden from %s to %s", report.ID, from, report.Status)
	return report, nil
}

func (s *LifecycleService) getReport(ctx context.Context, reportID int64) (*models.Report, error) {
	report, err := s.reports.GetReport(ctx, reportID)
	if err != nil {
		return nil, fmt.Errorf("failed to load report %d: %w", reportID, err)
	}
	if report == nil {
		return nil, ErrReportNotFound
	}
	return report, nil
}

func (s *LifecycleService) notifyStatus(report *models.Report, from models.Status) {
	if s.notifier == nil {
		return
	}
	s.notifier.StatusChanged(models.StatusEvent{
		ReportID:   report.ID,
		FromStatus: from,
		ToStatus:   report.Status,
		OfficerID:  report.AssignedOfficerID,
		Office:     report.AssignedOffice,
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
	})
}
