// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"inkwell/internal/apperr"
	"inkwell/internal/middleware"
	"inkwell/internal/models"
	"inkwell/internal/render"
	"inkwell/internal/roles"
	"inkwell/internal/service"
)

// Contributor serves the authoring panel: the author dashboard, the
// article editor, the media library and comments on the author's
// articles.
type Contributor struct {
	renderer *render.Renderer
	svc      *Services
}

// NewContributor creates the contributor handler group.
func NewContributor(renderer *render.Renderer, svc *Services) *Contributor {
	return &Contributor{renderer: renderer, svc: svc}
}

// Dashboard shows the author's figures and recent articles.
func (c *Contributor) Dashboard(w http.ResponseWriter, r *http.Request) {
	d, err := c.svc.Dashboard.Author(r.Context(), middleware.UserFromCtx(r.Context()))
	if err != nil {
		fail(c.renderer, w, r, err)
		return
	}
	c.renderer.Page(w, r, "contributor_dashboard", &render.PageData{
		Title: "Your writing", Section: "contributor", Data: map[string]any{"Dashboard": d},
	})
}

// listArticles renders the managed article list under base.
func listArticles(rn *render.Renderer, svc *Services, w http.ResponseWriter, r *http.Request, section, base string) {
	f := models.ArticleFilter{
		Status: models.ArticleStatus(r.URL.Query().Get("status")),
		Search: strings.TrimSpace(r.URL.Query().Get("q")),
		Page:   pageParam(r),
	}
	page, err := svc.Articles.ListManaged(r.Context(), middleware.UserFromCtx(r.Context()), f)
	if err != nil {
		fail(rn, w, r, err)
		return
	}
	rn.Page(w, r, "articles", &render.PageData{
		Title:   "Articles",
		Section: section,
		Data:    map[string]any{"Articles": page, "Pager": pagerFor(r, page), "Base": base},
	})
}

// Articles lists the articles the user may edit.
func (c *Contributor) Articles(w http.ResponseWriter, r *http.Request) {
	listArticles(c.renderer, c.svc, w, r, "contributor", "/contributor/articles")
}

// articleInput reads the editor form.
func articleInput(r *http.Request) (service.ArticleInput, error) {
	in := service.ArticleInput{
		Title:         r.PostFormValue("title"),
		Content:       r.PostFormValue("content"),
		Excerpt:       r.PostFormValue("excerpt"),
		FeaturedImage: r.PostFormValue("featured_image"),
		ImageCaption:  r.PostFormValue("image_caption"),
		Status:        models.ArticleStatus(r.PostFormValue("status")),
		IsFeatured:    checked(r, "is_featured"),
	}
	if in.Status == "" {
		in.Status = models.ArticleDraft
	}
	ve := &apperr.ValidationError{}
	cat, err := optionalUUID(r.PostFormValue("category_id"), "category_id")
	if err != nil {
		ve.Add("category_id", "Choose a valid category.")
	}
	in.CategoryID = cat
	tags, err := uuidList(r.PostForm["tags"], "tags")
	if err != nil {
		ve.Add("tags", "Choose valid tags.")
	}
	in.TagIDs = tags
	return in, ve.Err()
}

// inputFrom pre-fills the editor with an existing article.
func inputFrom(a *models.Article) service.ArticleInput {
	return service.ArticleInput{
		Title:         a.Title,
		Content:       a.Content,
		Excerpt:       a.Excerpt,
		FeaturedImage: a.FeaturedImage,
		ImageCaption:  a.ImageCaption,
		Status:        a.Status,
		IsFeatured:    a.IsFeatured,
		CategoryID:    a.CategoryID,
		TagIDs:        a.TagIDs(),
	}
}

// editor renders the article form.
func (c *Contributor) editor(w http.ResponseWriter, r *http.Request, status int, a *models.Article, in service.ArticleInput, errs map[string]string) {
	ctx := r.Context()
	cats, err := c.svc.Categories.List(ctx)
	if err != nil {
		fail(c.renderer, w, r, err)
		return
	}
	tags, err := c.svc.Tags.List(ctx)
	if err != nil {
		fail(c.renderer, w, r, err)
		return
	}
	selected := make(map[string]bool, len(in.TagIDs))
	for _, id := range in.TagIDs {
		selected[id.String()] = true
	}

	title, action := "New article", "/contributor/articles"
	if a != nil {
		title, action = "Edit article", "/contributor/articles/"+a.ID.String()
	}
	c.renderer.PageStatus(w, r, status, "article_form", &render.PageData{
		Title:   title,
		Section: "contributor",
		Errors:  errs,
		Data: map[string]any{
			"Article":    a,
			"Form":       in,
			"Categories": cats,
			"Tags":       tags,
			"TagIDs":     selected,
			"Action":     action,
		},
	})
}

// NewArticle renders an empty editor.
func (c *Contributor) NewArticle(w http.ResponseWriter, r *http.Request) {
	if !middleware.UserFromCtx(r.Context()).Can(roles.CanCreateArticles) {
		fail(c.renderer, w, r, apperr.ErrPermissionDenied)
		return
	}
	c.editor(w, r, http.StatusOK, nil, service.ArticleInput{Status: models.ArticleDraft}, nil)
}

// CreateArticle saves a new article.
func (c *Contributor) CreateArticle(w http.ResponseWriter, r *http.Request) {
	in, err := articleInput(r)
	if err == nil {
		var a *models.Article
		a, err = c.svc.Articles.Create(r.Context(), middleware.UserFromCtx(r.Context()), in)
		if err == nil {
			render.SetFlash(w, "success", "Article saved.")
			http.Redirect(w, r, "/contributor/articles/"+a.ID.String()+"/edit", http.StatusSeeOther)
			return
		}
	}
	if errs := fieldErrors(err); errs != nil {
		c.editor(w, r, http.StatusUnprocessableEntity, nil, in, errs)
		return
	}
	fail(c.renderer, w, r, err)
}

// EditArticle renders the editor for an existing article.
func (c *Contributor) EditArticle(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		fail(c.renderer, w, r, err)
		return
	}
	a, err := c.svc.Articles.Get(r.Context(), middleware.UserFromCtx(r.Context()), id)
	if err != nil {
		fail(c.renderer, w, r, err)
		return
	}
	c.editor(w, r, http.StatusOK, a, inputFrom(a), nil)
}

// UpdateArticle saves changes to an article.
func (c *Contributor) UpdateArticle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor := middleware.UserFromCtx(ctx)
	id, err := idParam(r, "id")
	if err != nil {
		fail(c.renderer, w, r, err)
		return
	}
	in, err := articleInput(r)
	if err == nil {
		_, err = c.svc.Articles.Update(ctx, actor, id, in)
		if err == nil {
			render.SetFlash(w, "success", "Article saved.")
			http.Redirect(w, r, "/contributor/articles/"+id.String()+"/edit", http.StatusSeeOther)
			return
		}
	}
	if errs := fieldErrors(err); errs != nil {
		a, gerr := c.svc.Articles.Get(ctx, actor, id)
		if gerr != nil {
			fail(c.renderer, w, r, gerr)
			return
		}
		c.editor(w, r, http.StatusUnprocessableEntity, a, in, errs)
		return
	}
	fail(c.renderer, w, r, err)
}

// PublishArticle moves a draft to published.
func (c *Contributor) PublishArticle(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		fail(c.renderer, w, r, err)
		return
	}
	a, err := c.svc.Articles.Publish(r.Context(), middleware.UserFromCtx(r.Context()), id)
	if errs := fieldErrors(err); errs != nil {
		render.SetFlash(w, "error", errs["status"])
		http.Redirect(w, r, "/contributor/articles", http.StatusSeeOther)
		return
	}
	if err != nil {
		fail(c.renderer, w, r, err)
		return
	}
	render.SetFlash(w, "success", "“"+a.Title+"” is live.")
	http.Redirect(w, r, "/articles/"+a.Slug, http.StatusSeeOther)
}

// DeleteArticle removes an article and returns to ?next.
func (c *Contributor) DeleteArticle(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		fail(c.renderer, w, r, err)
		return
	}
	if err := c.svc.Articles.Delete(r.Context(), middleware.UserFromCtx(r.Context()), id); err != nil {
		fail(c.renderer, w, r, err)
		return
	}
	render.SetFlash(w, "success", "Article deleted.")
	http.Redirect(w, r, safeNext(r.PostFormValue("next"), "/contributor/articles"), http.StatusSeeOther)
}

// Comments lists comments on the user's articles, or all comments for
// moderators.
func (c *Contributor) Comments(w http.ResponseWriter, r *http.Request) {
	listComments(c.renderer, c.svc, w, r, "contributor", "/contributor/comments")
}

// listComments renders a page of comments filtered by ?approved=.
func listComments(rn *render.Renderer, svc *Services, w http.ResponseWriter, r *http.Request, section, base string) {
	f := models.CommentFilter{Page: pageParam(r)}
	if v, err := strconv.ParseBool(r.URL.Query().Get("approved")); err == nil {
		f.Approved = &v
	}
	page, err := svc.Comments.List(r.Context(), middleware.UserFromCtx(r.Context()), f)
	if err != nil {
		fail(rn, w, r, err)
		return
	}
	rn.Page(w, r, "comments", &render.PageData{
		Title:   "Comments",
		Section: section,
		Data:    map[string]any{"Comments": page, "Pager": pagerFor(r, page), "Base": base},
	})
}

// Media shows the media library and upload form.
func (c *Contributor) Media(w http.ResponseWriter, r *http.Request) {
	c.media(w, r, http.StatusOK, nil)
}

func (c *Contributor) media(w http.ResponseWriter, r *http.Request, status int, errs map[string]string) {
	actor := middleware.UserFromCtx(r.Context())
	items, err := c.svc.Media.List(r.Context(), actor, pageParam(r), 48)
	if err != nil {
		fail(c.renderer, w, r, err)
		return
	}
	c.renderer.PageStatus(w, r, status, "media", &render.PageData{
		Title:   "Media",
		Section: "contributor",
		Errors:  errs,
		Data: map[string]any{
			"Media":  items,
			"Base":   "/contributor/media",
			"Accept": strings.Join(service.AllowedExtensions(actor), ","),
		},
	})
}

// readUpload reads the "file" part of a multipart form, refusing bodies
// above limit.
func readUpload(w http.ResponseWriter, r *http.Request, limit int64) (service.UploadInput, error) {
	// Leave room for the other form fields.
	r.Body = http.MaxBytesReader(w, r.Body, limit+1<<20)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			return service.UploadInput{}, apperr.Invalid("file", "The file is too large.")
		}
		return service.UploadInput{}, apperr.Invalid("file", "Choose a file to upload.")
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		return service.UploadInput{}, apperr.Invalid("file", "Choose a file to upload.")
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, limit+1))
	if err != nil {
		return service.UploadInput{}, apperr.Invalid("file", "The upload could not be read.")
	}
	return service.UploadInput{
		Filename: header.Filename,
		Data:     data,
		AltText:  r.FormValue("alt_text"),
		Caption:  r.FormValue("caption"),
	}, nil
}

// Upload stores a new file.
func (c *Contributor) Upload(w http.ResponseWriter, r *http.Request) {
	in, err := readUpload(w, r, c.svc.Media.MaxBytes())
	if err == nil {
		var m *models.Media
		m, err = c.svc.Media.Upload(r.Context(), middleware.UserFromCtx(r.Context()), in)
		if err == nil {
			render.SetFlash(w, "success", m.OriginalName+" uploaded.")
			http.Redirect(w, r, "/contributor/media", http.StatusSeeOther)
			return
		}
	}
	if errs := fieldErrors(err); errs != nil {
		c.media(w, r, http.StatusUnprocessableEntity, errs)
		return
	}
	fail(c.renderer, w, r, err)
}

// DeleteMedia removes an uploaded file.
func (c *Contributor) DeleteMedia(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		fail(c.renderer, w, r, err)
		return
	}
	if err := c.svc.Media.Delete(r.Context(), middleware.UserFromCtx(r.Context()), id); err != nil {
		fail(c.renderer, w, r, err)
		return
	}
	render.SetFlash(w, "success", "File deleted.")
	http.Redirect(w, r, "/contributor/media", http.StatusSeeOther)
}
