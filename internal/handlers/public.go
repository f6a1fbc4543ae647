// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"inkwell/internal/apperr"
	"inkwell/internal/markdown"
	"inkwell/internal/middleware"
	"inkwell/internal/models"
	"inkwell/internal/render"
	"inkwell/internal/service"
)

// Public serves the reader-facing pages.
type Public struct {
	renderer *render.Renderer
	svc      *Services
	markdown *markdown.Renderer
}

// NewPublic creates the public handler group.
func NewPublic(renderer *render.Renderer, svc *Services, md *markdown.Renderer) *Public {
	return &Public{renderer: renderer, svc: svc, markdown: md}
}

// sidebar loads the category and tag lists shown next to listings. A
// failure only hides the sidebar.
func (p *Public) sidebar(r *http.Request, data map[string]any) {
	if cats, err := p.svc.Categories.List(r.Context()); err == nil {
		data["Categories"] = cats
	} else {
		slog.Warn("sidebar categories failed", "error", err)
	}
	if tags, err := p.svc.Tags.List(r.Context()); err == nil {
		data["Tags"] = tags
	} else {
		slog.Warn("sidebar tags failed", "error", err)
	}
}

// listing renders one page of published articles matching f.
func (p *Public) listing(w http.ResponseWriter, r *http.Request, title string, f models.ArticleFilter, data map[string]any) {
	settings := middleware.SettingsFromCtx(r.Context())
	f.Page = pageParam(r)
	f.PerPage = settings.PostsPerPage()

	page, err := p.svc.Articles.ListPublished(r.Context(), f)
	if err != nil {
		fail(p.renderer, w, r, err)
		return
	}
	data["Articles"] = page
	data["Pager"] = pagerFor(r, page)
	p.sidebar(r, data)

	p.renderer.Page(w, r, "home", &render.PageData{Title: title, Section: "home", Data: data})
}

// Home lists the newest published articles with the featured ones on top
// of the first page.
func (p *Public) Home(w http.ResponseWriter, r *http.Request) {
	data := map[string]any{}
	if pageParam(r) == 1 {
		featured, err := p.svc.Articles.ListPublished(r.Context(), models.ArticleFilter{FeaturedOnly: true, PerPage: 3})
		if err != nil {
			slog.Warn("featured articles failed", "error", err)
		} else {
			data["Featured"] = featured.Items
		}
	}
	p.listing(w, r, "", models.ArticleFilter{}, data)
}

// Search lists published articles whose title or content matches ?q=.
func (p *Public) Search(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	p.listing(w, r, "Search", models.ArticleFilter{Search: q}, map[string]any{
		"Heading": "Results for “" + q + "”",
		"Query":   q,
	})
}

// Category lists the published articles of one category.
func (p *Public) Category(w http.ResponseWriter, r *http.Request) {
	cat, err := p.svc.Categories.BySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		fail(p.renderer, w, r, err)
		return
	}
	p.listing(w, r, cat.Name, models.ArticleFilter{CategorySlug: cat.Slug}, map[string]any{
		"Heading": cat.Name,
	})
}

// Tag lists the published articles carrying one tag.
func (p *Public) Tag(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	tags, err := p.svc.Tags.List(r.Context())
	if err != nil {
		fail(p.renderer, w, r, err)
		return
	}
	var tag *models.Tag
	for i := range tags {
		if tags[i].Slug == slug {
			tag = &tags[i]
			break
		}
	}
	if tag == nil {
		fail(p.renderer, w, r, apperr.NotFound("tag"))
		return
	}
	p.listing(w, r, "#"+tag.Name, models.ArticleFilter{TagSlug: tag.Slug}, map[string]any{
		"Heading": "Tagged " + tag.Name,
	})
}

// Article shows one article with its comment thread.
func (p *Public) Article(w http.ResponseWriter, r *http.Request) {
	p.showArticle(w, r, http.StatusOK, "", nil)
}

func (p *Public) showArticle(w http.ResponseWriter, r *http.Request, status int, draft string, errs map[string]string) {
	ctx := r.Context()
	viewer := middleware.UserFromCtx(ctx)
	settings := middleware.SettingsFromCtx(ctx)

	// Re-rendering a rejected comment form is not a new read.
	lookup := p.svc.Articles.View
	if status != http.StatusOK {
		lookup = p.svc.Articles.Lookup
	}
	a, err := lookup(ctx, viewer, chi.URLParam(r, "slug"))
	if err != nil {
		fail(p.renderer, w, r, err)
		return
	}
	thread, err := p.svc.Comments.Thread(ctx, viewer, a.ID)
	if err != nil {
		fail(p.renderer, w, r, err)
		return
	}

	p.renderer.PageStatus(w, r, status, "article", &render.PageData{
		Title:   a.Title,
		Section: "home",
		Errors:  errs,
		Data: map[string]any{
			"Article":      a,
			"Body":         p.markdown.Article(ctx, a.ID, a.UpdatedAt, a.Content),
			"Comments":     thread,
			"CommentsOpen": settings.CommentsEnabled() && a.IsPublished(),
			"Draft":        draft,
		},
	})
}

// PostComment adds a comment or reply to the article at {slug}.
func (p *Public) PostComment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user := middleware.UserFromCtx(ctx)
	slug := chi.URLParam(r, "slug")

	a, err := p.svc.Articles.Lookup(ctx, user, slug)
	if err != nil {
		fail(p.renderer, w, r, err)
		return
	}
	parentID, err := optionalUUID(r.PostFormValue("parent_id"), "parent_id")
	if err != nil {
		fail(p.renderer, w, r, err)
		return
	}

	content := r.PostFormValue("content")
	c, err := p.svc.Comments.Create(ctx, user, middleware.SettingsFromCtx(ctx), service.CommentInput{
		ArticleID: a.ID,
		ParentID:  parentID,
		Content:   content,
	})
	if errs := fieldErrors(err); errs != nil {
		p.showArticle(w, r, http.StatusUnprocessableEntity, content, errs)
		return
	}
	if err != nil {
		fail(p.renderer, w, r, err)
		return
	}

	if c.IsApproved {
		render.SetFlash(w, "success", "Your comment has been posted.")
	} else {
		render.SetFlash(w, "info", "Your comment is awaiting approval.")
	}
	http.Redirect(w, r, "/articles/"+slug+"#comment-"+c.ID.String(), http.StatusSeeOther)
}

// DeleteComment removes a comment the user wrote, or any comment for
// moderators, then returns to ?next.
func (p *Public) DeleteComment(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		fail(p.renderer, w, r, err)
		return
	}
	c, err := p.svc.Comments.Delete(r.Context(), middleware.UserFromCtx(r.Context()), id)
	if err != nil {
		fail(p.renderer, w, r, err)
		return
	}
	render.SetFlash(w, "success", "Comment deleted.")
	fallback := "/"
	if c.ArticleSlug != "" {
		fallback = "/articles/" + c.ArticleSlug
	}
	http.Redirect(w, r, safeNext(r.PostFormValue("next"), fallback), http.StatusSeeOther)
}

// Author shows a user's public profile and their published articles.
func (p *Public) Author(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := idParam(r, "id")
	if err != nil {
		fail(p.renderer, w, r, err)
		return
	}
	u, err := p.svc.Users.Profile(ctx, middleware.UserFromCtx(ctx), id)
	if err != nil {
		fail(p.renderer, w, r, err)
		return
	}
	page, err := p.svc.Articles.ListPublished(ctx, models.ArticleFilter{
		AuthorID: &u.ID,
		Page:     pageParam(r),
		PerPage:  middleware.SettingsFromCtx(ctx).PostsPerPage(),
	})
	if err != nil {
		fail(p.renderer, w, r, err)
		return
	}
	p.renderer.Page(w, r, "author", &render.PageData{
		Title: u.Name,
		Data:  map[string]any{"Author": u, "Articles": page, "Pager": pagerFor(r, page)},
	})
}

// ContactPage renders the contact form.
func (p *Public) ContactPage(w http.ResponseWriter, r *http.Request) {
	in := service.ContactInput{}
	if u := middleware.UserFromCtx(r.Context()); u != nil {
		in.Name, in.Email = u.Name, u.Email
	}
	p.renderer.Page(w, r, "contact", &render.PageData{
		Title: "Contact", Section: "contact", Data: map[string]any{"Form": in},
	})
}

// ContactSubmit relays a contact message to the site owner.
func (p *Public) ContactSubmit(w http.ResponseWriter, r *http.Request) {
	in := service.ContactInput{
		Name:    r.PostFormValue("name"),
		Email:   r.PostFormValue("email"),
		Subject: r.PostFormValue("subject"),
		Message: r.PostFormValue("message"),
	}
	err := p.svc.Contact.Send(r.Context(), in)
	if errs := fieldErrors(err); errs != nil {
		p.renderer.PageStatus(w, r, http.StatusUnprocessableEntity, "contact", &render.PageData{
			Title: "Contact", Section: "contact", Errors: errs, Data: map[string]any{"Form": in},
		})
		return
	}
	if err != nil {
		fail(p.renderer, w, r, err)
		return
	}
	render.SetFlash(w, "success", "Thanks! Your message has been sent.")
	http.Redirect(w, r, "/contact", http.StatusSeeOther)
}

// NotFound renders the 404 page for unmatched routes.
func (p *Public) NotFound(w http.ResponseWriter, r *http.Request) {
	p.renderer.Error(w, r, http.StatusNotFound, "The page you are looking for does not exist.")
}
