package database

import (
	"context"
	"database/sql"
	"fmt"

	"municipal-reports-service/models"
)

// CommentService persists the collaboration ledger. It implements
// services.CommentLedger.
type CommentService struct {
	db *sql.DB
}

// NewCommentService creates a new comment store instance.
func NewCommentService(db *sql.DB) *CommentService {
	return &CommentService{db: db}
}

// Append inserts the comment and returns it with id and timestamps filled
// in. Comments are immutable after creation; there is no update or delete.
func (s *CommentService) Append(ctx context.Context, comment *models.Comment) (*models.Comment, error) {
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO comments (report_id, content, municipality_user_id, external_maintainer_id)
		VALUES (?, ?, ?, ?)`,
		comment.ReportID, comment.Content, comment.MunicipalityUserID, comment.ExternalMaintainerID)
	if err != nil {
		return nil, fmt.Errorf("failed to insert comment: %w", err)
	}

	commentID, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get comment id: %w", err)
	}

	return s.getComment(ctx, commentID)
}

func (s *CommentService) getComment(ctx context.Context, id int64) (*models.Comment, error) {
	var comment models.Comment
	err := s.db.QueryRowContext(ctx, `
		SELECT id, report_id, content, municipality_user_id, external_maintainer_id, created_at, updated_at
		FROM comments WHERE id = ?`, id).Scan(
		&comment.ID,
		&comment.ReportID,
		&comment.Content,
		&comment.MunicipalityUserID,
		&comment.ExternalMaintainerID,
		&comment.CreatedAt,
		&comment.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get comment %d: %w", id, err)
	}
	return &comment, nil
}

// ListByReport returns the report's comments in creation order. The id is
// the secondary sort key so comments created in the same second keep their
// insertion order.
func (s *CommentService) ListByReport(ctx context.Context, reportID int64) ([]models.Comment, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, report_id, content, municipality_user_id, external_maintainer_id, created_at, updated_at
		FROM comments
		WHERE report_id = ?
		ORDER BY created_at, id`, reportID)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments for report %d: %w", reportID, err)
	}
	defer rows.Close()

	var comments []models.Comment
	for rows.Next() {
		var comment models.Comment
		if err := rows.Scan(
			&comment.ID,
			&comment.ReportID,
			&comment.Content,
			&comment.MunicipalityUserID,
			&comment.ExternalMaintainerID,
			&comment.CreatedAt,
			&comment.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan comment: %w", err)
		}
		comments = append(comments, comment)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating comments: %w", err)
	}
	return comments, nil
}
