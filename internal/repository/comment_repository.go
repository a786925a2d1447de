package repository

import (
	"context"
	"database/sql"

	"github.com/siderhub/platform/internal/model"
)

// CommentRepo provides access to lesson comments.  Moderation hides a
// comment by stamping hidden_at instead of deleting the row.
type CommentRepo struct{ DB *sql.DB }

func NewCommentRepo(db *sql.DB) *CommentRepo { return &CommentRepo{DB: db} }

// Create inserts a comment row.
func (r *CommentRepo) Create(ctx context.Context, c model.Comment) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO comments (id, lesson_id, author_id, body) VALUES (?,?,?,?)",
		c.ID, c.LessonID, c.AuthorID, c.Body)
	return err
}

// ListByLesson returns visible comments on a lesson, oldest first.
func (r *CommentRepo) ListByLesson(ctx context.Context, lessonID string) ([]model.Comment, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id, lesson_id, author_id, body, hidden_at, created_at FROM comments WHERE lesson_id=? AND hidden_at IS NULL ORDER BY created_at ASC",
		lessonID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Comment
	for rows.Next() {
		var (
			c      model.Comment
			hidden sql.NullTime
		)
		if err := rows.Scan(&c.ID, &c.LessonID, &c.AuthorID, &c.Body, &hidden, &c.CreatedAt); err != nil {
			return nil, err
		}
		if hidden.Valid {
			t := hidden.Time
			c.HiddenAt = &t
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Hide marks a comment as moderated.  ErrNotFound is returned when the
// comment does not exist or is already hidden.
func (r *CommentRepo) Hide(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE comments SET hidden_at=UTC_TIMESTAMP() WHERE id=? AND hidden_at IS NULL", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
