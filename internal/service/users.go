// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pquerna/otp/totp"
	qrcode "github.com/skip2/go-qrcode"

	"inkwell/internal/apperr"
	"inkwell/internal/mail"
	"inkwell/internal/models"
	"inkwell/internal/roles"
	"inkwell/internal/token"
	"inkwell/internal/validate"
)

type invalidCredentials struct{}

func (invalidCredentials) Error() string        { return "invalid email or password" }
func (invalidCredentials) Is(target error) bool { return target == apperr.ErrAuthenticationRequired }

// ErrInvalidCredentials is returned for an unknown email or a wrong
// password. It matches apperr.ErrAuthenticationRequired.
var ErrInvalidCredentials error = invalidCredentials{}

// UserRepository is the persistence the account service needs.
type UserRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	List(ctx context.Context, page, perPage int) ([]models.User, int, error)
	Create(ctx context.Context, u *models.User, password string) error
	Update(ctx context.Context, u *models.User) error
	SetPassword(ctx context.Context, id uuid.UUID, password string) error
	CheckPassword(u *models.User, password string) bool
	TouchLogin(ctx context.Context, id uuid.UUID, at time.Time) error
	SetTOTPSecret(ctx context.Context, id uuid.UUID, secret string) error
	EnableTOTP(ctx context.Context, id uuid.UUID) error
	ResetTOTP(ctx context.Context, id uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// AuthorshipCounter counts the articles a user has written.
type AuthorshipCounter interface {
	CountByAuthor(ctx context.Context, authorID uuid.UUID) (int, error)
}

// UserConfig holds account-flow settings.
type UserConfig struct {
	BaseURL     string
	Issuer      string // shown in authenticator apps
	ResetTTL    time.Duration
	APITokenTTL time.Duration
}

// UserService implements registration, sign-in and account management.
type UserService struct {
	users    UserRepository
	authored AuthorshipCounter
	tokens   *token.Manager
	mailer   mail.Sender
	activity ActivityRecorder
	cfg      UserConfig
	now      clock
}

// NewUserService wires the account service. activity may be nil.
func NewUserService(users UserRepository, authored AuthorshipCounter, tokens *token.Manager, mailer mail.Sender, activity ActivityRecorder, cfg UserConfig) *UserService {
	if activity == nil {
		activity = nopRecorder{}
	}
	if cfg.ResetTTL <= 0 {
		cfg.ResetTTL = time.Hour
	}
	if cfg.APITokenTTL <= 0 {
		cfg.APITokenTTL = time.Hour
	}
	if cfg.Issuer == "" {
		cfg.Issuer = "Inkwell"
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &UserService{
		users:    users,
		authored: authored,
		tokens:   tokens,
		mailer:   mailer,
		activity: activity,
		cfg:      cfg,
	}
}

// RegisterInput is the public sign-up form.
type RegisterInput struct {
	Name        string
	Email       string
	Password    string
	Confirm     string
	AcceptTerms bool
}

func validatePasswordPair(ve *apperr.ValidationError, field, password, confirm string) {
	if msg := validate.Password(password); msg != "" {
		ve.Add(field, msg)
	}
	if password != confirm {
		ve.Add("confirm_password", "Passwords do not match.")
	}
}

// emailTaken reports whether email belongs to an account other than self.
func (s *UserService) emailTaken(ctx context.Context, email string, self uuid.UUID) (bool, error) {
	existing, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return false, err
	}
	return existing != nil && existing.ID != self, nil
}

// Register creates a viewer account.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)

	ve := &apperr.ValidationError{}
	if msg := validate.Name(in.Name); msg != "" {
		ve.Add("name", msg)
	}
	if msg := validate.Email(in.Email); msg != "" {
		ve.Add("email", msg)
	}
	validatePasswordPair(ve, "password", in.Password, in.Confirm)
	if !in.AcceptTerms {
		ve.Add("terms", "You must accept the terms to register.")
	}
	if err := ve.Err(); err != nil {
		return nil, err
	}

	taken, err := s.emailTaken(ctx, in.Email, uuid.Nil)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, apperr.Conflict("an account with this email already exists")
	}

	u := &models.User{Name: in.Name, Email: in.Email, Role: roles.Viewer, IsActive: true}
	if err := s.users.Create(ctx, u, in.Password); err != nil {
		return nil, err
	}
	record(ctx, s.activity, u, "register", "user", u.ID, u.Email)
	return u, nil
}

// Authenticate checks an email and password. Accounts with two-factor
// enabled still need CompleteTOTP before they count as signed in.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	u, err := s.users.FindByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return nil, err
	}
	if u == nil || !s.users.CheckPassword(u, password) {
		return nil, ErrInvalidCredentials
	}
	if !u.IsActive {
		return nil, apperr.Denied("this account has been deactivated")
	}
	if !u.TOTPEnabled {
		s.touch(ctx, u)
	}
	return u, nil
}

func (s *UserService) touch(ctx context.Context, u *models.User) {
	now := s.now.now()
	if err := s.users.TouchLogin(ctx, u.ID, now); err != nil {
		slog.Warn("failed to record login", "user_id", u.ID, "error", err)
		return
	}
	u.LastLoginAt = &now
	record(ctx, s.activity, u, "login", "user", u.ID, u.Email)
}

// CompleteTOTP finishes a sign-in for an account with two-factor enabled.
func (s *UserService) CompleteTOTP(ctx context.Context, userID uuid.UUID, code string) (*models.User, error) {
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u == nil || !u.IsActive {
		return nil, apperr.ErrAuthenticationRequired
	}
	if !u.TOTPEnabled || u.TOTPSecret == nil {
		return nil, apperr.Invalid("code", "Two-factor authentication is not enabled for this account.")
	}
	if !totp.Validate(strings.TrimSpace(code), *u.TOTPSecret) {
		return nil, apperr.Invalid("code", "Invalid verification code.")
	}
	s.touch(ctx, u)
	return u, nil
}

// APIToken is a signed bearer token and its expiry.
type APIToken struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// IssueAPIToken signs an API token for valid credentials. Accounts with
// two-factor enabled must supply a current code.
func (s *UserService) IssueAPIToken(ctx context.Context, email, password, code string) (*APIToken, *models.User, error) {
	u, err := s.Authenticate(ctx, email, password)
	if err != nil {
		return nil, nil, err
	}
	if u.TOTPEnabled {
		if u.TOTPSecret == nil || !totp.Validate(strings.TrimSpace(code), *u.TOTPSecret) {
			return nil, nil, ErrInvalidCredentials
		}
		s.touch(ctx, u)
	}
	if !u.Can(roles.CanAccessAPI) {
		return nil, nil, apperr.Denied("API access is not allowed for this account")
	}
	tok, exp, err := s.tokens.Issue(u.ID.String(), token.PurposeAPI, s.cfg.APITokenTTL)
	if err != nil {
		return nil, nil, fmt.Errorf("issue api token: %w", err)
	}
	return &APIToken{Token: tok, ExpiresAt: exp}, u, nil
}

// Get returns the user with id, or NotFound.
func (s *UserService) Get(ctx context.Context, id uuid.UUID) (*models.User, error) {
	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, apperr.NotFound("user")
	}
	return u, nil
}

// Profile returns an active user's public profile.
func (s *UserService) Profile(ctx context.Context, viewer *models.User, id uuid.UUID) (*models.User, error) {
	if err := require(viewer, roles.CanViewProfiles); err != nil {
		return nil, err
	}
	u, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !u.IsActive && !viewer.Can(roles.CanManageUsers) {
		return nil, apperr.NotFound("user")
	}
	return u, nil
}

// ProfileInput is the self-service profile form.
type ProfileInput struct {
	Name     string
	Bio      string
	Avatar   string
	Website  string
	Twitter  string
	LinkedIn string
	GitHub   string
}

// UpdateProfile edits the actor's own profile.
func (s *UserService) UpdateProfile(ctx context.Context, actor *models.User, in ProfileInput) (*models.User, error) {
	if err := require(actor, roles.CanEditOwnProfile); err != nil {
		return nil, err
	}

	in.Name = strings.TrimSpace(in.Name)
	in.Bio = strings.TrimSpace(in.Bio)
	ve := &apperr.ValidationError{}
	if msg := validate.Name(in.Name); msg != "" {
		ve.Add("name", msg)
	}
	if msg := validate.MaxLen("Bio", in.Bio, validate.MaxBioLen); msg != "" {
		ve.Add("bio", msg)
	}
	urls := []struct {
		field string
		value *string
	}{
		{"avatar", &in.Avatar},
		{"website", &in.Website},
		{"twitter", &in.Twitter},
		{"linkedin", &in.LinkedIn},
		{"github", &in.GitHub},
	}
	for _, f := range urls {
		*f.value = strings.TrimSpace(*f.value)
		if f.field == "avatar" && strings.HasPrefix(*f.value, "/") {
			continue
		}
		if msg := validate.URL(*f.value); msg != "" {
			ve.Add(f.field, msg)
		}
	}
	if err := ve.Err(); err != nil {
		return nil, err
	}

	u := *actor
	u.Name, u.Bio, u.Avatar = in.Name, in.Bio, in.Avatar
	u.Website, u.Twitter, u.LinkedIn, u.GitHub = in.Website, in.Twitter, in.LinkedIn, in.GitHub
	if err := s.users.Update(ctx, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// ChangePassword replaces the actor's password after checking the current one.
func (s *UserService) ChangePassword(ctx context.Context, actor *models.User, current, next, confirm string) error {
	if err := requireUser(actor); err != nil {
		return err
	}
	ve := &apperr.ValidationError{}
	if !s.users.CheckPassword(actor, current) {
		ve.Add("current_password", "Current password is incorrect.")
	}
	validatePasswordPair(ve, "new_password", next, confirm)
	if err := ve.Err(); err != nil {
		return err
	}
	if err := s.users.SetPassword(ctx, actor.ID, next); err != nil {
		return err
	}
	record(ctx, s.activity, actor, "change_password", "user", actor.ID, "")
	return nil
}

// resetFingerprint ties a reset token to the password it replaces, so the
// link stops working once it has been used.
func resetFingerprint(u *models.User) string {
	sum := sha256.Sum256([]byte(u.PasswordHash))
	return hex.EncodeToString(sum[:8])
}

// RequestPasswordReset mails a reset link if email belongs to an active
// account. Unknown addresses are accepted silently.
func (s *UserService) RequestPasswordReset(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)
	if msg := validate.Email(email); msg != "" {
		return apperr.Invalid("email", msg)
	}
	u, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return err
	}
	if u == nil || !u.IsActive {
		slog.Info("password reset requested for unknown account")
		return nil
	}

	subject := u.ID.String() + "." + resetFingerprint(u)
	tok, _, err := s.tokens.Issue(subject, token.PurposePasswordReset, s.cfg.ResetTTL)
	if err != nil {
		return fmt.Errorf("issue reset token: %w", err)
	}

	link := s.cfg.BaseURL + "/reset-password/" + tok
	return s.mailer.Send(ctx, mail.Message{
		To:      u.Email,
		Subject: "Reset your password",
		Body: fmt.Sprintf("Hello %s,\n\nUse the link below to choose a new password. It expires in %s.\n\n%s\n",
			u.Name, s.cfg.ResetTTL, link),
	})
}

func errResetLink() error {
	return apperr.Invalid("token", "This reset link is invalid or has expired.")
}

// resetUser resolves a reset token to its user.
func (s *UserService) resetUser(ctx context.Context, tok string) (*models.User, error) {
	subject, err := s.tokens.Verify(tok, token.PurposePasswordReset)
	if err != nil {
		return nil, errResetLink()
	}
	idPart, fp, ok := strings.Cut(subject, ".")
	if !ok {
		return nil, errResetLink()
	}
	id, err := uuid.Parse(idPart)
	if err != nil {
		return nil, errResetLink()
	}
	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil || !u.IsActive || resetFingerprint(u) != fp {
		return nil, errResetLink()
	}
	return u, nil
}

// CheckResetToken reports whether a reset link is still usable.
func (s *UserService) CheckResetToken(ctx context.Context, tok string) error {
	_, err := s.resetUser(ctx, tok)
	return err
}

// ResetPassword sets a new password using a mailed reset token.
func (s *UserService) ResetPassword(ctx context.Context, tok, password, confirm string) error {
	u, err := s.resetUser(ctx, tok)
	if err != nil {
		return err
	}
	ve := &apperr.ValidationError{}
	validatePasswordPair(ve, "password", password, confirm)
	if err := ve.Err(); err != nil {
		return err
	}
	if err := s.users.SetPassword(ctx, u.ID, password); err != nil {
		return err
	}
	record(ctx, s.activity, u, "reset_password", "user", u.ID, "")
	return nil
}

// List returns one page of accounts for the admin panel.
func (s *UserService) List(ctx context.Context, actor *models.User, page, perPage int) (models.Page[models.User], error) {
	if err := require(actor, roles.CanManageUsers); err != nil {
		return models.Page[models.User]{}, err
	}
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}
	items, total, err := s.users.List(ctx, page, perPage)
	if err != nil {
		return models.Page[models.User]{}, err
	}
	return models.Page[models.User]{Items: items, Page: page, PerPage: perPage, Total: total}, nil
}

// AdminUserInput is the admin create/edit form. Password may be empty on
// edit to keep the current one.
type AdminUserInput struct {
	Name     string
	Email    string
	Password string
	Role     roles.Role
	IsActive bool
}

func (in *AdminUserInput) validate(requirePassword bool) error {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	ve := &apperr.ValidationError{}
	if msg := validate.Name(in.Name); msg != "" {
		ve.Add("name", msg)
	}
	if msg := validate.Email(in.Email); msg != "" {
		ve.Add("email", msg)
	}
	if requirePassword || in.Password != "" {
		if msg := validate.Password(in.Password); msg != "" {
			ve.Add("password", msg)
		}
	}
	if !roles.Valid(in.Role) {
		ve.Add("role", "Choose a valid role.")
	}
	return ve.Err()
}

// Create adds an account from the admin panel.
func (s *UserService) Create(ctx context.Context, actor *models.User, in AdminUserInput) (*models.User, error) {
	if err := require(actor, roles.CanManageUsers); err != nil {
		return nil, err
	}
	if in.Role == "" {
		in.Role = roles.Viewer
	}
	if in.Role != roles.Viewer && !actor.Can(roles.CanAssignRoles) {
		return nil, apperr.Denied("you may not assign roles")
	}
	if err := in.validate(true); err != nil {
		return nil, err
	}
	taken, err := s.emailTaken(ctx, in.Email, uuid.Nil)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, apperr.Conflict("an account with this email already exists")
	}

	u := &models.User{Name: in.Name, Email: in.Email, Role: in.Role, IsActive: in.IsActive}
	if err := s.users.Create(ctx, u, in.Password); err != nil {
		return nil, err
	}
	record(ctx, s.activity, actor, "create", "user", u.ID, u.Email)
	return u, nil
}

// Update edits an account from the admin panel. Admins cannot demote or
// deactivate themselves.
func (s *UserService) Update(ctx context.Context, actor *models.User, id uuid.UUID, in AdminUserInput) (*models.User, error) {
	if err := require(actor, roles.CanManageUsers); err != nil {
		return nil, err
	}
	u, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Role == "" {
		in.Role = u.Role
	}
	if in.Role != u.Role && !actor.Can(roles.CanAssignRoles) {
		return nil, apperr.Denied("you may not assign roles")
	}
	if err := in.validate(false); err != nil {
		return nil, err
	}
	if actor.Is(id) && (in.Role != u.Role || !in.IsActive) {
		return nil, apperr.Invalid("role", "You cannot change your own role or deactivate yourself.")
	}
	taken, err := s.emailTaken(ctx, in.Email, u.ID)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, apperr.Conflict("an account with this email already exists")
	}

	u.Name, u.Email, u.Role, u.IsActive = in.Name, in.Email, in.Role, in.IsActive
	if err := s.users.Update(ctx, u); err != nil {
		return nil, err
	}
	if in.Password != "" {
		if err := s.users.SetPassword(ctx, u.ID, in.Password); err != nil {
			return nil, err
		}
	}
	record(ctx, s.activity, actor, "update", "user", u.ID, u.Email)
	return u, nil
}

// Delete removes an account. Accounts that still author articles cannot
// be deleted; their comments and uploads go with them.
func (s *UserService) Delete(ctx context.Context, actor *models.User, id uuid.UUID) error {
	if err := require(actor, roles.CanManageUsers); err != nil {
		return err
	}
	if actor.Is(id) {
		return apperr.Invalid("user", "You cannot delete your own account.")
	}
	u, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	n, err := s.authored.CountByAuthor(ctx, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return apperr.Conflict(fmt.Sprintf("%s still authors %d article(s); delete or reassign them first", u.Name, n))
	}
	if err := s.users.Delete(ctx, id); err != nil {
		return err
	}
	record(ctx, s.activity, actor, "delete", "user", u.ID, u.Email)
	return nil
}

// TOTPSetup is a freshly generated secret and its QR code.
type TOTPSetup struct {
	Secret string
	URL    string
	QRPNG  []byte
}

// SetupTOTP generates and stores a new secret for the actor. Two-factor
// stays off until EnableTOTP confirms a code.
func (s *UserService) SetupTOTP(ctx context.Context, actor *models.User) (*TOTPSetup, error) {
	if err := requireUser(actor); err != nil {
		return nil, err
	}
	if actor.TOTPEnabled {
		return nil, apperr.Conflict("two-factor authentication is already enabled")
	}
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      s.cfg.Issuer,
		AccountName: actor.Email,
	})
	if err != nil {
		return nil, fmt.Errorf("generate totp secret: %w", err)
	}
	if err := s.users.SetTOTPSecret(ctx, actor.ID, key.Secret()); err != nil {
		return nil, err
	}
	png, err := qrcode.Encode(key.URL(), qrcode.Medium, 256)
	if err != nil {
		return nil, fmt.Errorf("encode totp qr: %w", err)
	}
	return &TOTPSetup{Secret: key.Secret(), URL: key.URL(), QRPNG: png}, nil
}

// EnableTOTP turns two-factor on once the actor proves they hold the secret.
func (s *UserService) EnableTOTP(ctx context.Context, actor *models.User, code string) error {
	if err := requireUser(actor); err != nil {
		return err
	}
	u, err := s.Get(ctx, actor.ID)
	if err != nil {
		return err
	}
	if u.TOTPSecret == nil {
		return apperr.Invalid("code", "Start two-factor setup first.")
	}
	if !totp.Validate(strings.TrimSpace(code), *u.TOTPSecret) {
		return apperr.Invalid("code", "Invalid verification code.")
	}
	if err := s.users.EnableTOTP(ctx, u.ID); err != nil {
		return err
	}
	record(ctx, s.activity, actor, "enable_2fa", "user", u.ID, "")
	return nil
}

// DisableTOTP turns two-factor off for the actor after checking a code.
func (s *UserService) DisableTOTP(ctx context.Context, actor *models.User, code string) error {
	if err := requireUser(actor); err != nil {
		return err
	}
	if !actor.TOTPEnabled || actor.TOTPSecret == nil {
		return apperr.Invalid("code", "Two-factor authentication is not enabled.")
	}
	if !totp.Validate(strings.TrimSpace(code), *actor.TOTPSecret) {
		return apperr.Invalid("code", "Invalid verification code.")
	}
	if err := s.users.ResetTOTP(ctx, actor.ID); err != nil {
		return err
	}
	record(ctx, s.activity, actor, "disable_2fa", "user", actor.ID, "")
	return nil
}

// ResetTOTP clears another user's two-factor setup, for lost devices.
func (s *UserService) ResetTOTP(ctx context.Context, actor *models.User, id uuid.UUID) error {
	if err := require(actor, roles.CanManageUsers); err != nil {
		return err
	}
	u, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.users.ResetTOTP(ctx, u.ID); err != nil {
		return err
	}
	record(ctx, s.activity, actor, "reset_2fa", "user", u.ID, u.Email)
	return nil
}

// IsInvalidCredentials reports whether err is a failed sign-in.
func IsInvalidCredentials(err error) bool {
	return errors.Is(err, ErrInvalidCredentials)
}
