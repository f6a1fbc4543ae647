// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package render

import (
	"encoding/base64"
	"net/http"
	"strings"
)

const flashCookie = "inkwell_flash"

// SetFlash queues a message for the next page the browser loads. It is
// typically called right before a redirect.
func SetFlash(w http.ResponseWriter, typ, msg string) {
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookie,
		Value:    base64.RawURLEncoding.EncodeToString([]byte(typ + "\x00" + msg)),
		Path:     "/",
		MaxAge:   60,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// takeFlash reads and clears the pending flash, if any.
func takeFlash(w http.ResponseWriter, r *http.Request) (Flash, bool) {
	c, err := r.Cookie(flashCookie)
	if err != nil {
		return Flash{}, false
	}
	http.SetCookie(w, &http.Cookie{Name: flashCookie, Path: "/", MaxAge: -1})

	raw, err := base64.RawURLEncoding.DecodeString(c.Value)
	if err != nil {
		return Flash{}, false
	}
	typ, msg, ok := strings.Cut(string(raw), "\x00")
	if !ok || msg == "" {
		return Flash{}, false
	}
	switch typ {
	case "success", "error", "warning", "info":
	default:
		typ = "info"
	}
	return Flash{Type: typ, Message: msg}, true
}
