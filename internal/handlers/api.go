// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"inkwell/internal/apperr"
	"inkwell/internal/middleware"
	"inkwell/internal/models"
	"inkwell/internal/service"
)

// maxJSONBody caps API request bodies.
const maxJSONBody = 1 << 20

// API implements the JSON endpoints under /api. Callers authenticate
// with a bearer token from POST /api/auth/token.
type API struct {
	svc *Services
}

// NewAPI creates a new API handler group.
func NewAPI(svc *Services) *API {
	return &API{svc: svc}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("failed to encode response", "error", err)
	}
}

// apiError writes err as {"error": ..., "fields": ...}.
func apiError(w http.ResponseWriter, r *http.Request, err error) {
	status := apperr.Status(err)
	if status >= http.StatusInternalServerError {
		slog.Error("api request failed",
			"request_id", chimw.GetReqID(r.Context()),
			"method", r.Method,
			"path", r.URL.Path,
			"error", err,
		)
	}
	body := map[string]any{"error": apperr.Message(err)}
	if fields := fieldErrors(err); fields != nil {
		body["fields"] = fields
	}
	if status == http.StatusUnauthorized {
		w.Header().Set("WWW-Authenticate", `Bearer realm="api"`)
	}
	writeJSON(w, status, body)
}

// decode reads a JSON body into v.
func decode(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody))
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return apperr.Invalid("body", "Request body is empty.")
		}
		return apperr.Invalid("body", "Request body is not valid JSON.")
	}
	return nil
}

// --- Auth ---

type tokenRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Code     string `json:"code"`
}

// IssueToken exchanges credentials for a bearer token.
func (a *API) IssueToken(w http.ResponseWriter, r *http.Request) {
	var req tokenRequest
	if err := decode(w, r, &req); err != nil {
		apiError(w, r, err)
		return
	}
	tok, u, err := a.svc.Users.IssueAPIToken(r.Context(), req.Email, req.Password, req.Code)
	if err != nil {
		apiError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"token":      tok.Token,
		"expires_at": tok.ExpiresAt,
		"user":       u,
	})
}

// Me returns the token's user.
func (a *API) Me(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, middleware.UserFromCtx(r.Context()))
}

// --- Articles ---

// ListArticles returns published articles. Filters: q, category, tag,
// author and page.
func (a *API) ListArticles(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := models.ArticleFilter{
		Search:       strings.TrimSpace(q.Get("q")),
		CategorySlug: q.Get("category"),
		TagSlug:      q.Get("tag"),
		Page:         pageParam(r),
		PerPage:      middleware.SettingsFromCtx(r.Context()).PostsPerPage(),
	}
	if raw := q.Get("author"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			apiError(w, r, apperr.Invalid("author", "Author must be a user id."))
			return
		}
		f.AuthorID = &id
	}
	page, err := a.svc.Articles.ListPublished(r.Context(), f)
	if err != nil {
		apiError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// ManagedArticles returns the articles the caller may edit.
func (a *API) ManagedArticles(w http.ResponseWriter, r *http.Request) {
	f := models.ArticleFilter{
		Status:  models.ArticleStatus(r.URL.Query().Get("status")),
		Page:    pageParam(r),
		PerPage: 25,
	}
	page, err := a.svc.Articles.ListManaged(r.Context(), middleware.UserFromCtx(r.Context()), f)
	if err != nil {
		apiError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// GetArticle returns the article at {ref} (a slug) and counts the view.
func (a *API) GetArticle(w http.ResponseWriter, r *http.Request) {
	art, err := a.svc.Articles.View(r.Context(), middleware.UserFromCtx(r.Context()), chi.URLParam(r, "ref"))
	if err != nil {
		apiError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, art)
}

type articleRequest struct {
	Title         string               `json:"title"`
	Content       string               `json:"content"`
	Excerpt       string               `json:"excerpt"`
	FeaturedImage string               `json:"featured_image"`
	ImageCaption  string               `json:"image_caption"`
	Status        models.ArticleStatus `json:"status"`
	IsFeatured    bool                 `json:"is_featured"`
	CategoryID    *uuid.UUID           `json:"category_id"`
	TagIDs        []uuid.UUID          `json:"tag_ids"`
}

func (req articleRequest) input() service.ArticleInput {
	return service.ArticleInput{
		Title:         req.Title,
		Content:       req.Content,
		Excerpt:       req.Excerpt,
		FeaturedImage: req.FeaturedImage,
		ImageCaption:  req.ImageCaption,
		Status:        req.Status,
		IsFeatured:    req.IsFeatured,
		CategoryID:    req.CategoryID,
		TagIDs:        req.TagIDs,
	}
}

// CreateArticle saves a new article owned by the caller.
func (a *API) CreateArticle(w http.ResponseWriter, r *http.Request) {
	var req articleRequest
	if err := decode(w, r, &req); err != nil {
		apiError(w, r, err)
		return
	}
	art, err := a.svc.Articles.Create(r.Context(), middleware.UserFromCtx(r.Context()), req.input())
	if err != nil {
		apiError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, art)
}

// UpdateArticle replaces the editable fields of article {ref} (an id).
func (a *API) UpdateArticle(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "ref")
	if err != nil {
		apiError(w, r, err)
		return
	}
	var req articleRequest
	if err := decode(w, r, &req); err != nil {
		apiError(w, r, err)
		return
	}
	art, err := a.svc.Articles.Update(r.Context(), middleware.UserFromCtx(r.Context()), id, req.input())
	if err != nil {
		apiError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, art)
}

// PublishArticle publishes article {ref}.
func (a *API) PublishArticle(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "ref")
	if err != nil {
		apiError(w, r, err)
		return
	}
	art, err := a.svc.Articles.Publish(r.Context(), middleware.UserFromCtx(r.Context()), id)
	if err != nil {
		apiError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, art)
}

// DeleteArticle removes article {ref} with its comments.
func (a *API) DeleteArticle(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "ref")
	if err != nil {
		apiError(w, r, err)
		return
	}
	if err := a.svc.Articles.Delete(r.Context(), middleware.UserFromCtx(r.Context()), id); err != nil {
		apiError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- Comments ---

// ArticleComments returns the comment thread of article {ref} (a slug).
func (a *API) ArticleComments(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	viewer := middleware.UserFromCtx(ctx)
	art, err := a.svc.Articles.Lookup(ctx, viewer, chi.URLParam(r, "ref"))
	if err != nil {
		apiError(w, r, err)
		return
	}
	thread, err := a.svc.Comments.Thread(ctx, viewer, art.ID)
	if err != nil {
		apiError(w, r, err)
		return
	}
	if thread == nil {
		thread = []models.Comment{}
	}
	writeJSON(w, http.StatusOK, thread)
}

type commentRequest struct {
	ArticleID uuid.UUID  `json:"article_id"`
	ParentID  *uuid.UUID `json:"parent_id"`
	Content   string     `json:"content"`
}

// CreateComment posts a comment. It is held for moderation when the
// site requires it.
func (a *API) CreateComment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req commentRequest
	if err := decode(w, r, &req); err != nil {
		apiError(w, r, err)
		return
	}
	c, err := a.svc.Comments.Create(ctx, middleware.UserFromCtx(ctx), middleware.SettingsFromCtx(ctx), service.CommentInput{
		ArticleID: req.ArticleID,
		ParentID:  req.ParentID,
		Content:   req.Content,
	})
	if err != nil {
		apiError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

// UpdateComment edits the text of comment {id}.
func (a *API) UpdateComment(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		apiError(w, r, err)
		return
	}
	var req commentRequest
	if err := decode(w, r, &req); err != nil {
		apiError(w, r, err)
		return
	}
	c, err := a.svc.Comments.Update(r.Context(), middleware.UserFromCtx(r.Context()), id, req.Content)
	if err != nil {
		apiError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// DeleteComment removes comment {id}; its replies move up a level.
func (a *API) DeleteComment(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		apiError(w, r, err)
		return
	}
	if _, err := a.svc.Comments.Delete(r.Context(), middleware.UserFromCtx(r.Context()), id); err != nil {
		apiError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- Taxonomy and settings ---

// Categories lists categories with their article counts.
func (a *API) Categories(w http.ResponseWriter, r *http.Request) {
	cats, err := a.svc.Categories.List(r.Context())
	if err != nil {
		apiError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cats)
}

// Tags lists tags.
func (a *API) Tags(w http.ResponseWriter, r *http.Request) {
	tags, err := a.svc.Tags.List(r.Context())
	if err != nil {
		apiError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tags)
}

// Settings returns the public subset of the site settings.
func (a *API) Settings(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, service.PublicSettings(middleware.SettingsFromCtx(r.Context())))
}

// NotFound answers unknown API paths.
func (a *API) NotFound(w http.ResponseWriter, r *http.Request) {
	apiError(w, r, apperr.NotFound("endpoint"))
}
