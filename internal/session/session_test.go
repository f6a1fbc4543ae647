// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package session

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

func testStore(t *testing.T, opts Options) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewStore(client, opts), mr
}

func sessionCookie(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range w.Result().Cookies() {
		if c.Name == CookieName {
			return c
		}
	}
	t.Fatal("session cookie not set")
	return nil
}

func TestSessionCreateAndGet(t *testing.T) {
	store, _ := testStore(t, Options{})
	ctx := context.Background()
	w := httptest.NewRecorder()

	data := &Data{UserID: uuid.New()}
	id, err := store.Create(ctx, w, data)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if len(id) != idLength*2 {
		t.Errorf("id length = %d", len(id))
	}

	c := sessionCookie(t, w)
	if !c.HttpOnly {
		t.Error("expected HttpOnly cookie")
	}
	if c.MaxAge != int(DefaultTTL.Seconds()) {
		t.Errorf("MaxAge = %d", c.MaxAge)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(c)
	got, err := store.Get(ctx, req)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got == nil || got.UserID != data.UserID {
		t.Fatalf("Get = %+v", got)
	}
	if got.CreatedAt.IsZero() {
		t.Error("expected CreatedAt to be set")
	}
}

func TestSessionRememberUsesLongerTTL(t *testing.T) {
	store, mr := testStore(t, Options{TTL: time.Hour, RememberTTL: 48 * time.Hour})
	w := httptest.NewRecorder()

	id, err := store.Create(context.Background(), w, &Data{UserID: uuid.New(), Remember: true})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if got := mr.TTL(keyPrefix + id); got != 48*time.Hour {
		t.Errorf("TTL = %v", got)
	}
	if c := sessionCookie(t, w); c.MaxAge != int((48 * time.Hour).Seconds()) {
		t.Errorf("MaxAge = %d", c.MaxAge)
	}
}

func TestSessionExpires(t *testing.T) {
	store, mr := testStore(t, Options{TTL: time.Minute})
	ctx := context.Background()
	w := httptest.NewRecorder()
	store.Create(ctx, w, &Data{UserID: uuid.New()})

	mr.FastForward(2 * time.Minute)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(sessionCookie(t, w))
	got, err := store.Get(ctx, req)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != nil {
		t.Error("expected expired session to be nil")
	}
}

func TestSessionGetNoCookie(t *testing.T) {
	store, _ := testStore(t, Options{})
	got, err := store.Get(context.Background(), httptest.NewRequest(http.MethodGet, "/", nil))
	if err != nil || got != nil {
		t.Errorf("Get = %v, %v", got, err)
	}
}

func TestSessionGetUnknownID(t *testing.T) {
	store, _ := testStore(t, Options{})
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: "nonexistent"})

	got, err := store.Get(context.Background(), req)
	if err != nil || got != nil {
		t.Errorf("Get = %v, %v", got, err)
	}
}

func TestSessionGetCorruptPayload(t *testing.T) {
	store, mr := testStore(t, Options{})
	mr.Set(keyPrefix+"bad", "{not json")

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: "bad"})
	if _, err := store.Get(context.Background(), req); err == nil {
		t.Error("expected unmarshal error")
	}
}

func TestSessionUpdate(t *testing.T) {
	store, _ := testStore(t, Options{})
	ctx := context.Background()
	w := httptest.NewRecorder()

	data := &Data{UserID: uuid.New(), TOTPPending: true}
	store.Create(ctx, w, data)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(sessionCookie(t, w))

	data.TOTPPending = false
	if err := store.Update(ctx, req, data); err != nil {
		t.Fatalf("Update: %v", err)
	}

	got, _ := store.Get(ctx, req)
	if got == nil || got.TOTPPending {
		t.Errorf("expected TOTPPending cleared, got %+v", got)
	}
}

func TestSessionUpdateNoCookie(t *testing.T) {
	store, _ := testStore(t, Options{})
	err := store.Update(context.Background(), httptest.NewRequest(http.MethodGet, "/", nil), &Data{})
	if !errors.Is(err, ErrNoSession) {
		t.Errorf("err = %v, want ErrNoSession", err)
	}
}

func TestSessionDestroy(t *testing.T) {
	store, _ := testStore(t, Options{})
	ctx := context.Background()
	w := httptest.NewRecorder()
	store.Create(ctx, w, &Data{UserID: uuid.New()})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(sessionCookie(t, w))

	w2 := httptest.NewRecorder()
	if err := store.Destroy(ctx, w2, req); err != nil {
		t.Fatalf("Destroy: %v", err)
	}
	if c := sessionCookie(t, w2); c.MaxAge != -1 {
		t.Errorf("MaxAge = %d, want -1", c.MaxAge)
	}

	got, _ := store.Get(ctx, req)
	if got != nil {
		t.Error("expected nil after destroy")
	}
}

func TestSessionDestroyNoCookie(t *testing.T) {
	store, _ := testStore(t, Options{})
	err := store.Destroy(context.Background(), httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	if err != nil {
		t.Errorf("Destroy: %v", err)
	}
}

func TestSessionSecureCookie(t *testing.T) {
	store, _ := testStore(t, Options{Secure: true})
	w := httptest.NewRecorder()
	store.Create(context.Background(), w, &Data{UserID: uuid.New()})

	if !sessionCookie(t, w).Secure {
		t.Error("expected Secure cookie")
	}
}
