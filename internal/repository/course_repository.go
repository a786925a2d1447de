package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/siderhub/platform/internal/model"
)

// CourseRepo provides access to the academy tables: courses, lessons and
// per-member lesson progress.
type CourseRepo struct{ DB *sql.DB }

func NewCourseRepo(db *sql.DB) *CourseRepo { return &CourseRepo{DB: db} }

const courseColumns = "id, title, description, cover_url, mentor_id, lesson_count, is_featured, is_recommended, is_published, created_at, updated_at"

// List returns published courses, newest first.
func (r *CourseRepo) List(ctx context.Context, limit, offset int) ([]model.Course, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+courseColumns+" FROM courses WHERE is_published=1 ORDER BY created_at DESC LIMIT ? OFFSET ?",
		limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectCourses(rows)
}

// ListFeatured returns published courses flagged as featured.
func (r *CourseRepo) ListFeatured(ctx context.Context, limit int) ([]model.Course, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+courseColumns+" FROM courses WHERE is_published=1 AND is_featured=1 ORDER BY created_at DESC LIMIT ?", limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectCourses(rows)
}

// ListRecommended returns published courses flagged as recommended.
func (r *CourseRepo) ListRecommended(ctx context.Context, limit int) ([]model.Course, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+courseColumns+" FROM courses WHERE is_published=1 AND is_recommended=1 ORDER BY created_at DESC LIMIT ?", limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectCourses(rows)
}

// GetByID fetches a single course.
func (r *CourseRepo) GetByID(ctx context.Context, id string) (model.Course, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+courseColumns+" FROM courses WHERE id=? LIMIT 1", id)
	c, err := scanCourse(row)
	if err == sql.ErrNoRows {
		return model.Course{}, ErrNotFound
	}
	return c, err
}

// ListLessons returns a course's lessons in position order.
func (r *CourseRepo) ListLessons(ctx context.Context, courseID string) ([]model.Lesson, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id, course_id, title, video_url, position, created_at FROM lessons WHERE course_id=? ORDER BY position ASC", courseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Lesson
	for rows.Next() {
		var (
			l        model.Lesson
			videoURL sql.NullString
		)
		if err := rows.Scan(&l.ID, &l.CourseID, &l.Title, &videoURL, &l.Position, &l.CreatedAt); err != nil {
			return nil, err
		}
		if videoURL.Valid {
			l.VideoURL = &videoURL.String
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// UpsertProgress records how far a member has watched a lesson.  The
// first time percent reaches 100 the completion timestamp is stamped and
// kept on later updates.
func (r *CourseRepo) UpsertProgress(ctx context.Context, userID, lessonID string, percent int, now time.Time) error {
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	var completedAt interface{}
	if percent == 100 {
		completedAt = now
	}
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO lesson_progress (user_id, lesson_id, percent, completed_at) VALUES (?,?,?,?)
         ON DUPLICATE KEY UPDATE percent=VALUES(percent),
         completed_at=COALESCE(completed_at, VALUES(completed_at))`,
		userID, lessonID, percent, completedAt)
	return err
}

func collectCourses(rows *sql.Rows) ([]model.Course, error) {
	var out []model.Course
	for rows.Next() {
		c, err := scanCourse(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func scanCourse(s rowScanner) (model.Course, error) {
	var (
		c        model.Course
		coverURL sql.NullString
	)
	err := s.Scan(&c.ID, &c.Title, &c.Description, &coverURL, &c.MentorID, &c.LessonCount,
		&c.IsFeatured, &c.IsRecommended, &c.IsPublished, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return model.Course{}, err
	}
	if coverURL.Valid {
		c.CoverURL = &coverURL.String
	}
	return c, nil
}
