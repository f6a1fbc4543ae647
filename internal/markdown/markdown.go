// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package markdown turns article bodies into HTML using goldmark.
// Raw HTML inside the source is allowed through goldmark and then filtered
// by a bluemonday UGC policy, so every body leaving this package is safe to
// embed in a page.
package markdown

import (
	"bytes"
	"context"
	"html/template"
	"log/slog"
	"regexp"
	"time"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"

	"inkwell/internal/cache"
)

var md = goldmark.New(
	goldmark.WithExtensions(
		extension.GFM,
		extension.Typographer,
		highlighting.NewHighlighting(
			highlighting.WithStyle("monokai"),
			highlighting.WithFormatOptions(),
		),
	),
	goldmark.WithParserOptions(
		parser.WithAutoHeadingID(),
	),
	goldmark.WithRendererOptions(
		html.WithUnsafe(),
	),
)

var (
	classNames = regexp.MustCompile(`^[\w\- ]+$`)
	// Chroma emits inline styles such as "color: #f92672" and "display: flex".
	styleValue = regexp.MustCompile(`(?i)^[#a-z0-9 .-]+$`)
)

var policy = newPolicy()

func newPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowAttrs("class").Matching(classNames).Globally()
	// Vendor prefixes are stripped before matching, so tab-size covers -moz-tab-size.
	p.AllowStyles("color", "background-color", "font-weight", "font-style",
		"text-decoration", "display", "tab-size").
		Matching(styleValue).OnElements("pre", "code", "span")
	p.AllowAttrs("tabindex").Matching(bluemonday.Integer).OnElements("pre")
	// GFM task lists.
	p.AllowAttrs("type").Matching(regexp.MustCompile(`^checkbox$`)).OnElements("input")
	p.AllowAttrs("checked", "disabled").OnElements("input")
	return p
}

// ToHTML converts Markdown source into sanitized HTML.
func ToHTML(source string) (string, error) {
	var buf bytes.Buffer
	if err := md.Convert([]byte(source), &buf); err != nil {
		return "", err
	}
	return policy.Sanitize(buf.String()), nil
}

// Cache is the subset of the render cache the Renderer needs.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, body []byte)
}

// Renderer converts article bodies and memoizes the result per revision.
type Renderer struct {
	cache Cache
}

// NewRenderer returns a Renderer. A nil cache renders on every call.
func NewRenderer(c Cache) *Renderer {
	return &Renderer{cache: c}
}

// Article renders the body of one article revision. On a conversion error
// the source is returned escaped so the page still loads.
func (r *Renderer) Article(ctx context.Context, id uuid.UUID, updatedAt time.Time, source string) template.HTML {
	key := cache.ArticleKey(id, updatedAt)
	if r.cache != nil {
		if body, ok := r.cache.Get(ctx, key); ok {
			return template.HTML(body)
		}
	}

	out, err := ToHTML(source)
	if err != nil {
		slog.Error("markdown render failed", "article_id", id, "error", err)
		return template.HTML(template.HTMLEscapeString(source))
	}

	if r.cache != nil {
		r.cache.Set(ctx, key, []byte(out))
	}
	return template.HTML(out)
}
