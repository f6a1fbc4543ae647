// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package service

import (
	"context"
	"strings"
	"testing"
)

func TestContactSend(t *testing.T) {
	mailer := &memMailer{}
	svc := NewContactService(mailer, "editor@example.com")

	err := svc.Send(context.Background(), ContactInput{
		Name:    "Grace Hopper",
		Email:   "grace@example.com",
		Subject: " Hello ",
		Message: "I found a bug in your moth trap.",
	})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if len(mailer.sent) != 1 {
		t.Fatalf("sent %d", len(mailer.sent))
	}
	msg := mailer.sent[0]
	if msg.To != "editor@example.com" || msg.ReplyTo != "grace@example.com" || msg.Subject != "[Contact] Hello" {
		t.Errorf("message = %+v", msg)
	}
	if !strings.Contains(msg.Body, "moth trap") {
		t.Errorf("body = %q", msg.Body)
	}
}

func TestContactValidation(t *testing.T) {
	tests := []struct {
		name  string
		in    ContactInput
		field string
	}{
		{"name", ContactInput{Name: "", Email: "a@example.com", Subject: "Hi", Message: "Long enough message"}, "name"},
		{"email", ContactInput{Name: "Ann", Email: "a@", Subject: "Hi", Message: "Long enough message"}, "email"},
		{"subject", ContactInput{Name: "Ann", Email: "a@example.com", Subject: " ", Message: "Long enough message"}, "subject"},
		{"message", ContactInput{Name: "Ann", Email: "a@example.com", Subject: "Hi", Message: "short"}, "message"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mailer := &memMailer{}
			err := NewContactService(mailer, "editor@example.com").Send(context.Background(), tt.in)
			assertField(t, err, tt.field)
			if len(mailer.sent) != 0 {
				t.Error("nothing should be sent")
			}
		})
	}
}
