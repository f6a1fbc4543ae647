// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package service

import (
	"context"
	"fmt"
	"strings"

	"inkwell/internal/apperr"
	"inkwell/internal/mail"
	"inkwell/internal/validate"
)

// ContactInput is the public contact form.
type ContactInput struct {
	Name    string
	Email   string
	Subject string
	Message string
}

// ContactService relays contact-form messages to the site owner.
type ContactService struct {
	mailer mail.Sender
	to     string
}

// NewContactService returns a ContactService delivering to address to.
func NewContactService(mailer mail.Sender, to string) *ContactService {
	return &ContactService{mailer: mailer, to: to}
}

// Send validates the form and mails it.
func (s *ContactService) Send(ctx context.Context, in ContactInput) error {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	in.Subject = strings.TrimSpace(in.Subject)
	in.Message = strings.TrimSpace(in.Message)

	ve := &apperr.ValidationError{}
	if msg := validate.Name(in.Name); msg != "" {
		ve.Add("name", msg)
	}
	if msg := validate.Email(in.Email); msg != "" {
		ve.Add("email", msg)
	}
	if in.Subject == "" {
		ve.Add("subject", "Subject is required.")
	} else if msg := validate.MaxLen("Subject", in.Subject, validate.MaxCaptionLen); msg != "" {
		ve.Add("subject", msg)
	}
	if l := len([]rune(in.Message)); l < 10 || l > 5000 {
		ve.Add("message", "Message must be between 10 and 5000 characters.")
	}
	if err := ve.Err(); err != nil {
		return err
	}

	return s.mailer.Send(ctx, mail.Message{
		To:      s.to,
		ReplyTo: in.Email,
		Subject: "[Contact] " + in.Subject,
		Body:    fmt.Sprintf("From: %s <%s>\n\n%s\n", in.Name, in.Email, in.Message),
	})
}
