package services

import (
	"context"
	"fmt"
	"time"

	"municipal-reports-service/models"

	"github.com/apex/log"
)

// CommentService guards the collaboration channel between municipal
// officers and external maintainers and appends authorized comments to the
// report's ledger.
type CommentService struct {
	reports  ReportStore
	ledger   CommentLedger
	notifier Notifier
}

// NewCommentService creates a new comment service instance.
func NewCommentService(reports ReportStore, ledger CommentLedger, notifier Notifier) *CommentService {
	return &CommentService{reports: reports, ledger: ledger, notifier: notifier}
}

// AddComment authorizes and appends a comment.
//
// Municipal officers may comment on any non-resolved report, assigned to
// them or not. An external maintainer may comment only on the report they
// are currently attached to. Nobody comments on a RESOLVED report. A
// REJECTED report stays open for discussion.
func (s *CommentService) AddComment(ctx context.Context, reportID, authorID int64, authorType models.AuthorType, content string) (*models.Comment, error) {
	if content == "" {
		return nil, NewValidationError("content", "comment content is required")
	}

	report, err := s.reports.GetReport(ctx, reportID)
	if err != nil {
		return nil, fmt.Errorf("failed to load report %d: %w", reportID, err)
	}
	if report == nil {
		return nil, ErrReportNotFound
	}

	if report.Status == models.StatusResolved {
		return nil, &ForbiddenError{
			AuthorID:   authorID,
			AuthorType: authorType,
			Reason:     "cannot comment on a resolved report",
		}
	}

	comment := &models.Comment{ReportID: reportID, Content: content}
	switch authorType {
	case models.AuthorMunicipality:
		comment.MunicipalityUserID = &authorID
	case models.AuthorExternalMaintainer:
		if report.ExternalMaintainerID == nil || *report.ExternalMaintainerID != authorID {
			return nil, &ForbiddenError{
				AuthorID:   authorID,
				AuthorType: authorType,
				Reason:     "external maintainers may only comment on reports assigned to them",
			}
		}
		comment.ExternalMaintainerID = &authorID
	default:
		return nil, NewValidationError("author_type", fmt.Sprintf("invalid author type %s", authorType))
	}

	saved, err := s.ledger.Append(ctx, comment)
	if err != nil {
		return nil, fmt.Errorf("failed to append comment to report %d: %w", reportID, err)
	}

	log.Infof("Comment %d appended to report %d by %s %d", saved.ID, reportID, authorType, authorID)
	if s.notifier != nil {
		s.notifier.CommentAdded(models.CommentEvent{
			ReportID:   reportID,
			CommentID:  saved.ID,
			AuthorID:   authorID,
			AuthorType: authorType,
			Timestamp:  time.Now().UTC().Format(time.RFC3339),
		})
	}
	return saved, nil
}

// ListComments returns the report's ledger in creation order.
func (s *CommentService) ListComments(ctx context.Context, reportID int64) ([]models.Comment, error) {
	report, err := s.reports.GetReport(ctx, reportID)
	if err != nil {
		return nil, fmt.Errorf("failed to load report %d: %w", reportID, err)
	}
	if report == nil {
		return nil, ErrReportNotFound
	}
	return s.ledger.ListByReport(ctx, reportID)
}
