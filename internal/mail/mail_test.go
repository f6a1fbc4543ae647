// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package mail

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestLogSenderSend(t *testing.T) {
	var buf bytes.Buffer
	s := NewLogSender(slog.New(slog.NewTextHandler(&buf, nil)))

	err := s.Send(context.Background(), Message{
		To:      "reader@example.com",
		Subject: "Reset your password",
		Body:    "https://example.com/reset-password/abc",
	})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}

	out := buf.String()
	for _, want := range []string{"mail sent", "reader@example.com", "Reset your password", "reset-password/abc"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q: %s", want, out)
		}
	}
}

func TestLogSenderRequiresRecipient(t *testing.T) {
	s := NewLogSender(nil)
	if err := s.Send(context.Background(), Message{Subject: "x"}); err == nil {
		t.Error("expected error without recipient")
	}
}
