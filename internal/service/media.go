// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package service

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"
	"slices"
	"strings"

	"github.com/google/uuid"

	"inkwell/internal/apperr"
	"inkwell/internal/imaging"
	"inkwell/internal/models"
	"inkwell/internal/roles"
	"inkwell/internal/storage"
	"inkwell/internal/validate"
)

// MediaRepository is the persistence the media service needs.
type MediaRepository interface {
	Create(ctx context.Context, m *models.Media) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Media, error)
	List(ctx context.Context, uploader *uuid.UUID, limit, offset int) ([]models.Media, error)
	Delete(ctx context.Context, id uuid.UUID) (*models.Media, error)
}

// Extension allow-lists, mapped to the content type stored for each.
var (
	editorTypes = map[string]string{
		".png":  "image/png",
		".jpg":  "image/jpeg",
		".jpeg": "image/jpeg",
		".gif":  "image/gif",
	}
	adminTypes = map[string]string{
		".svg":  "image/svg+xml",
		".pdf":  "application/pdf",
		".doc":  "application/msword",
		".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	}
)

// AllowedContentType returns the content type stored for a file name, and
// whether the user may upload it.
func AllowedContentType(u *models.User, filename string) (string, bool) {
	ext := strings.ToLower(filepath.Ext(filename))
	if ct, ok := editorTypes[ext]; ok {
		return ct, true
	}
	if u.IsAdmin() {
		ct, ok := adminTypes[ext]
		return ct, ok
	}
	return "", false
}

// AllowedExtensions lists the file extensions u may upload, sorted.
func AllowedExtensions(u *models.User) []string {
	exts := make([]string, 0, len(editorTypes)+len(adminTypes))
	for ext := range editorTypes {
		exts = append(exts, ext)
	}
	if u.IsAdmin() {
		for ext := range adminTypes {
			exts = append(exts, ext)
		}
	}
	slices.Sort(exts)
	return exts
}

// UploadInput is one uploaded file, already read into memory.
type UploadInput struct {
	Filename string
	Data     []byte
	AltText  string
	Caption  string
}

// MediaService stores uploads and their thumbnails.
type MediaService struct {
	media    MediaRepository
	backend  storage.Backend
	maxBytes int64
	activity ActivityRecorder
	now      clock
}

// NewMediaService wires the media service. activity may be nil.
func NewMediaService(media MediaRepository, backend storage.Backend, maxBytes int64, activity ActivityRecorder) *MediaService {
	if activity == nil {
		activity = nopRecorder{}
	}
	if maxBytes <= 0 {
		maxBytes = 8 << 20
	}
	return &MediaService{media: media, backend: backend, maxBytes: maxBytes, activity: activity}
}

// MaxBytes returns the upload size limit.
func (s *MediaService) MaxBytes() int64 { return s.maxBytes }

func (s *MediaService) resolveURLs(m *models.Media) {
	m.URL = s.backend.URL(m.StorageKey)
	if m.ThumbKey != nil {
		m.ThumbURL = s.backend.URL(*m.ThumbKey)
	}
}

// Upload validates and stores a file. Raster images also get a thumbnail.
func (s *MediaService) Upload(ctx context.Context, actor *models.User, in UploadInput) (*models.Media, error) {
	if err := require(actor, roles.CanUploadFiles); err != nil {
		return nil, err
	}

	name := filepath.Base(strings.ReplaceAll(in.Filename, `\`, "/"))
	ct, ok := AllowedContentType(actor, name)
	if !ok {
		return nil, apperr.Invalid("file", "This file type is not allowed.")
	}
	if len(in.Data) == 0 {
		return nil, apperr.Invalid("file", "The file is empty.")
	}
	if int64(len(in.Data)) > s.maxBytes {
		return nil, apperr.Invalid("file", fmt.Sprintf("The file is larger than %d MB.", s.maxBytes>>20))
	}
	if imaging.Decodable(ct) && http.DetectContentType(in.Data) != ct {
		return nil, apperr.Invalid("file", "The file content does not match its extension.")
	}
	in.AltText = strings.TrimSpace(in.AltText)
	in.Caption = strings.TrimSpace(in.Caption)
	if msg := validate.MaxLen("Alt text", in.AltText, validate.MaxCaptionLen); msg != "" {
		return nil, apperr.Invalid("alt_text", msg)
	}
	if msg := validate.MaxLen("Caption", in.Caption, validate.MaxCaptionLen); msg != "" {
		return nil, apperr.Invalid("caption", msg)
	}

	ext := strings.ToLower(filepath.Ext(name))
	key := storage.NewKey(ext, s.now.now())
	if err := s.backend.Put(ctx, key, ct, bytes.NewReader(in.Data), int64(len(in.Data))); err != nil {
		return nil, apperr.Storage("store upload", err)
	}
	stored := []string{key}

	m := &models.Media{
		Filename:     filepath.Base(key),
		OriginalName: name,
		ContentType:  ct,
		SizeBytes:    int64(len(in.Data)),
		StorageKey:   key,
		AltText:      in.AltText,
		Caption:      in.Caption,
		UploaderID:   actor.ID,
	}

	if imaging.Decodable(ct) {
		thumb, err := imaging.MakeThumbnail(in.Data, imaging.ThumbWidth)
		if err != nil {
			slog.Warn("thumbnail generation failed", "key", key, "error", err)
		} else {
			tk := storage.ThumbKey(key, thumb.Ext)
			if err := s.backend.Put(ctx, tk, thumb.ContentType, bytes.NewReader(thumb.Data), int64(len(thumb.Data))); err != nil {
				slog.Warn("thumbnail upload failed", "key", tk, "error", err)
			} else {
				m.ThumbKey = &tk
				stored = append(stored, tk)
			}
		}
	}

	if err := s.media.Create(ctx, m); err != nil {
		s.removeObjects(ctx, stored...)
		return nil, err
	}
	s.resolveURLs(m)
	record(ctx, s.activity, actor, "upload", "media", m.ID, m.OriginalName)
	return m, nil
}

func (s *MediaService) removeObjects(ctx context.Context, keys ...string) {
	for _, k := range keys {
		if err := s.backend.Delete(ctx, k); err != nil {
			slog.Warn("failed to delete stored object", "key", k, "error", err)
		}
	}
}

// List returns one page of uploads: every file for admins, otherwise the
// actor's own.
func (s *MediaService) List(ctx context.Context, actor *models.User, page, perPage int) ([]models.Media, error) {
	if err := require(actor, roles.CanUploadFiles); err != nil {
		return nil, err
	}
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 24
	}
	var uploader *uuid.UUID
	if !actor.IsAdmin() {
		id := actor.ID
		uploader = &id
	}
	items, err := s.media.List(ctx, uploader, perPage, (page-1)*perPage)
	if err != nil {
		return nil, err
	}
	for i := range items {
		s.resolveURLs(&items[i])
	}
	return items, nil
}

// Delete removes an upload and its stored objects. Uploaders may delete
// their own files; admins may delete any.
func (s *MediaService) Delete(ctx context.Context, actor *models.User, id uuid.UUID) error {
	if err := requireUser(actor); err != nil {
		return err
	}
	m, err := s.media.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if m == nil {
		return apperr.NotFound("file")
	}
	if !actor.IsAdmin() && !(actor.Is(m.UploaderID) && actor.Can(roles.CanUploadFiles)) {
		return apperr.Denied("you may not delete this file")
	}
	if _, err := s.media.Delete(ctx, id); err != nil {
		return err
	}
	keys := []string{m.StorageKey}
	if m.ThumbKey != nil {
		keys = append(keys, *m.ThumbKey)
	}
	s.removeObjects(ctx, keys...)
	record(ctx, s.activity, actor, "delete", "media", m.ID, m.OriginalName)
	return nil
}
