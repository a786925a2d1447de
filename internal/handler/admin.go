package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/siderhub/platform/internal/model"
	"github.com/siderhub/platform/internal/repository"
)

// AdminHandler serves the admin console: banners, member listing and
// comment moderation.
type AdminHandler struct {
	Banners    *repository.BannerRepo
	Users      *repository.UserRepo
	Comments   *repository.CommentRepo
	BcryptCost int
}

func NewAdminHandler(banners *repository.BannerRepo, users *repository.UserRepo, comments *repository.CommentRepo, bcryptCost int) *AdminHandler {
	return &AdminHandler{Banners: banners, Users: users, Comments: comments, BcryptCost: bcryptCost}
}

type createBannerReq struct {
	Title    string     `json:"title"`
	ImageURL string     `json:"image_url"`
	LinkURL  *string    `json:"link_url"`
	Position int        `json:"position"`
	IsActive bool       `json:"is_active"`
	StartsAt *time.Time `json:"starts_at"`
	EndsAt   *time.Time `json:"ends_at"`
}

// ListBanners returns every banner, newest first.
func (h *AdminHandler) ListBanners(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	banners, err := h.Banners.List(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list banners failed"})
	}
	if banners == nil {
		banners = []model.Banner{}
	}
	return c.JSON(http.StatusOK, echo.Map{"banners": banners})
}

// CreateBanner inserts a new banner.
func (h *AdminHandler) CreateBanner(c echo.Context) error {
	var req createBannerReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" || strings.TrimSpace(req.ImageURL) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "title/image_url required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	banner := model.Banner{
		ID:       uuid.NewString(),
		Title:    req.Title,
		ImageURL: strings.TrimSpace(req.ImageURL),
		LinkURL:  req.LinkURL,
		Position: req.Position,
		IsActive: req.IsActive,
		StartsAt: req.StartsAt,
		EndsAt:   req.EndsAt,
	}
	if err := h.Banners.Create(ctx, banner); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create banner failed"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"id": banner.ID})
}

// ListMembers returns users for the admin console, newest first.
func (h *AdminHandler) ListMembers(c echo.Context) error {
	limit := queryInt(c, "limit")
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	offset := queryInt(c, "offset")

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	users, err := h.Users.List(ctx, limit, offset)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list members failed"})
	}
	members := make([]userPart, 0, len(users))
	for _, u := range users {
		members = append(members, toUserPart(u))
	}
	return c.JSON(http.StatusOK, echo.Map{"members": members})
}

type createMemberReq struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	Role        string `json:"role"`
	DisplayName string `json:"display_name"`
}

// CreateMember registers a new account from the admin console.  The
// platform has no self-service signup; admins provision members.
func (h *AdminHandler) CreateMember(c echo.Context) error {
	var req createMemberReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || len(req.Password) < 8 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email and a password of at least 8 characters are required"})
	}
	switch req.Role {
	case "":
		req.Role = model.RoleMember
	case model.RoleMember, model.RoleMentor, model.RoleAdmin, model.RoleSuperAdmin:
	default:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown role"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	id, err := h.Users.Create(ctx, req.Email, req.Password, req.Role, req.DisplayName, h.BcryptCost)
	if err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "email already registered"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create member failed"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"id": id})
}

// HideComment hides a comment as a moderation action.
func (h *AdminHandler) HideComment(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Comments.Hide(ctx, c.Param("id")); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "comment not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "hide comment failed"})
	}
	return c.NoContent(http.StatusNoContent)
}
