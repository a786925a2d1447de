package model

import "time"

// Course represents a row in the `courses` table.  Featured and
// recommended flags drive the hub overview sections.
type Course struct {
	ID            string    // courses.id
	Title         string    // courses.title
	Description   string    // courses.description
	CoverURL      *string   // courses.cover_url (nullable)
	MentorID      string    // courses.mentor_id
	LessonCount   int       // courses.lesson_count
	IsFeatured    bool      // courses.is_featured
	IsRecommended bool      // courses.is_recommended
	IsPublished   bool      // courses.is_published
	CreatedAt     time.Time // courses.created_at
	UpdatedAt     time.Time // courses.updated_at
}

// Lesson represents a row in the `lessons` table, ordered within a
// course by Position.
type Lesson struct {
	ID        string    // lessons.id
	CourseID  string    // lessons.course_id
	Title     string    // lessons.title
	VideoURL  *string   // lessons.video_url (nullable)
	Position  int       // lessons.position
	CreatedAt time.Time // lessons.created_at
}

// LessonProgress records how far a member has watched a lesson.  One row
// per user/lesson pair; Percent is clamped to [0,100] and CompletedAt is
// set the first time Percent reaches 100.
type LessonProgress struct {
	UserID      string     // lesson_progress.user_id
	LessonID    string     // lesson_progress.lesson_id
	Percent     int        // lesson_progress.percent
	CompletedAt *time.Time // lesson_progress.completed_at (nullable)
	UpdatedAt   time.Time  // lesson_progress.updated_at
}

// Comment is a member comment attached to a lesson.  Moderation hides a
// comment by setting HiddenAt instead of deleting the row.
type Comment struct {
	ID        string     // comments.id
	LessonID  string     // comments.lesson_id
	AuthorID  string     // comments.author_id
	Body      string     // comments.body
	HiddenAt  *time.Time // comments.hidden_at (nullable)
	CreatedAt time.Time  // comments.created_at
}
