package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/siderhub/platform/internal/middleware"
	"github.com/siderhub/platform/internal/model"
	"github.com/siderhub/platform/internal/repository"
)

// AcademyHandler serves course browsing, lesson progress and comments.
type AcademyHandler struct {
	Courses  *repository.CourseRepo
	Comments *repository.CommentRepo
}

func NewAcademyHandler(courses *repository.CourseRepo, comments *repository.CommentRepo) *AcademyHandler {
	return &AcademyHandler{Courses: courses, Comments: comments}
}

type progressReq struct {
	Percent int `json:"percent"`
}
type commentReq struct {
	Body string `json:"body"`
}

// ListCourses returns published courses with simple pagination.
func (h *AcademyHandler) ListCourses(c echo.Context) error {
	limit := queryInt(c, "limit")
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	offset := queryInt(c, "offset")

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	courses, err := h.Courses.List(ctx, limit, offset)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list courses failed"})
	}
	if courses == nil {
		courses = []model.Course{}
	}
	return c.JSON(http.StatusOK, echo.Map{"courses": courses})
}

// GetCourse returns one course with its lessons in order.
func (h *AcademyHandler) GetCourse(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	course, err := h.Courses.GetByID(ctx, c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "course not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load course failed"})
	}
	lessons, err := h.Courses.ListLessons(ctx, course.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load lessons failed"})
	}
	if lessons == nil {
		lessons = []model.Lesson{}
	}
	return c.JSON(http.StatusOK, echo.Map{"course": course, "lessons": lessons})
}

// UpdateProgress upserts the member's watch progress on a lesson.
func (h *AcademyHandler) UpdateProgress(c echo.Context) error {
	uid, _ := c.Get(middleware.ContextUserID).(string)
	var req progressReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Courses.UpsertProgress(ctx, uid, c.Param("id"), req.Percent, time.Now().UTC()); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "save progress failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

// ListComments returns visible comments on a lesson, oldest first.
func (h *AcademyHandler) ListComments(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	comments, err := h.Comments.ListByLesson(ctx, c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list comments failed"})
	}
	if comments == nil {
		comments = []model.Comment{}
	}
	return c.JSON(http.StatusOK, echo.Map{"comments": comments})
}

// CreateComment posts a comment on a lesson.
func (h *AcademyHandler) CreateComment(c echo.Context) error {
	uid, _ := c.Get(middleware.ContextUserID).(string)
	var req commentReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Body) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "body required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	comment := model.Comment{
		ID:       uuid.NewString(),
		LessonID: c.Param("id"),
		AuthorID: uid,
		Body:     strings.TrimSpace(req.Body),
	}
	if err := h.Comments.Create(ctx, comment); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create comment failed"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"id": comment.ID})
}
