package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	tokens "github.com/NordCoder/goodcookie/internal/auth"
	domainauth "github.com/NordCoder/goodcookie/internal/domain/auth"
	"github.com/NordCoder/goodcookie/internal/domain/notification"
	"github.com/NordCoder/goodcookie/internal/domain/user"
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials  = errors.New("incorrect username or password")
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
	ErrResetTokenNotFound  = errors.New("invalid password reset token")
	ErrResetTokenExpired   = errors.New("password reset token expired")
	ErrUnknownEmail        = errors.New("no user associated with that email")
	ErrInvalidInput        = errors.New("invalid input")
)

// Transactor runs fn in one unit of work; postgres and memory adapters satisfy it.
type Transactor interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type Config struct {
	BcryptCost      int
	RefreshTTL      time.Duration
	ResetTTL        time.Duration
	CallbackURLBase string
	Now             func() time.Time
}

// AuthResult is returned by Login and Renew.
type AuthResult struct {
	AccessToken  string
	RefreshToken string
	Username     string
	ExpiresAt    time.Time
}

type Usecase struct {
	users    user.Repo
	refresh  domainauth.RefreshTokenRepo
	reset    *ResetCoordinator
	notifier notification.ResetNotifier
	tx       Transactor
	codec    *tokens.Codec
	cfg      Config

	dummyHash []byte
}

func NewUsecase(
	users user.Repo,
	refresh domainauth.RefreshTokenRepo,
	resets domainauth.ResetTokenRepo,
	notifier notification.ResetNotifier,
	tx Transactor,
	codec *tokens.Codec,
	cfg Config,
) (*Usecase, error) {
	if cfg.Now == nil {
		cfg.Now = func() time.Time { return time.Now().UTC() }
	}
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = bcrypt.DefaultCost
	}
	// compared against when the username is unknown so both failure paths cost one bcrypt run
	dummy, err := bcrypt.GenerateFromPassword([]byte("goodcookie-dummy-password"), cfg.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("dummy hash: %w", err)
	}
	return &Usecase{
		users:     users,
		refresh:   refresh,
		reset:     NewResetCoordinator(users, resets, cfg.ResetTTL, cfg.Now),
		notifier:  notifier,
		tx:        tx,
		codec:     codec,
		cfg:       cfg,
		dummyHash: dummy,
	}, nil
}

func (u *Usecase) Register(ctx context.Context, username, password, email string) (*user.User, error) {
	err := validation.Errors{
		"username": validation.Validate(username, validation.Required),
		"password": validation.Validate(password, validation.Required),
		"email":    validation.Validate(email, validation.Required, is.Email),
	}.Filter()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	taken, err := u.users.ExistsByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, &user.ConflictError{Field: user.FieldUsername}
	}
	taken, err = u.users.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, &user.ConflictError{Field: user.FieldEmail}
	}

	hash, err := u.hash(password)
	if err != nil {
		return nil, err
	}
	nu := &user.User{Username: username, Email: email, PasswordHash: hash}
	// a concurrent insert still surfaces as *user.ConflictError from the store
	if err := u.users.Create(ctx, nu); err != nil {
		return nil, err
	}
	registrations.Inc()
	return nu, nil
}

func (u *Usecase) Login(ctx context.Context, username, password string) (AuthResult, error) {
	rec, err := u.users.FindByUsername(ctx, username)
	if err != nil {
		if !errors.Is(err, user.ErrNotFound) {
			return AuthResult{}, err
		}
		_ = bcrypt.CompareHashAndPassword(u.dummyHash, []byte(password))
		loginAttempts.WithLabelValues("rejected").Inc()
		return AuthResult{}, ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(rec.PasswordHash), []byte(password)) != nil {
		loginAttempts.WithLabelValues("rejected").Inc()
		return AuthResult{}, ErrInvalidCredentials
	}

	access, err := u.codec.Issue(rec.Username)
	if err != nil {
		return AuthResult{}, err
	}
	raw, err := tokens.GenerateRawToken(tokens.DefaultTokenBytes)
	if err != nil {
		return AuthResult{}, fmt.Errorf("gen refresh: %w", err)
	}
	now := u.cfg.Now()
	rt := &domainauth.RefreshToken{
		UserID:    rec.ID,
		Username:  rec.Username,
		TokenHash: tokens.HashToken(raw),
		IssuedAt:  now,
	}
	if u.cfg.RefreshTTL > 0 {
		rt.ExpiresAt = now.Add(u.cfg.RefreshTTL)
	}
	if err := u.refresh.Create(ctx, rt); err != nil {
		return AuthResult{}, fmt.Errorf("save refresh: %w", err)
	}
	loginAttempts.WithLabelValues("ok").Inc()

	return AuthResult{
		AccessToken:  access.Token,
		RefreshToken: raw,
		Username:     rec.Username,
		ExpiresAt:    access.ExpiresAt,
	}, nil
}

// UpdatePassword re-hashes and stores the password. The caller has already
// established the right to change it.
func (u *Usecase) UpdatePassword(ctx context.Context, target *user.User, newPassword string) error {
	if err := validation.Validate(newPassword, validation.Required); err != nil {
		return fmt.Errorf("%w: password: %v", ErrInvalidInput, err)
	}
	hash, err := u.hash(newPassword)
	if err != nil {
		return err
	}
	target.PasswordHash = hash
	return u.users.Update(ctx, target)
}

// Renew issues a fresh access token for the owner of raw. The renewal
// credential itself is returned unchanged.
func (u *Usecase) Renew(ctx context.Context, raw, username string) (AuthResult, error) {
	if raw == "" {
		return AuthResult{}, ErrInvalidRefreshToken
	}
	rec, err := u.refresh.FindByToken(ctx, tokens.HashToken(raw))
	if err != nil {
		if errors.Is(err, domainauth.ErrTokenNotFound) {
			return AuthResult{}, ErrInvalidRefreshToken
		}
		return AuthResult{}, err
	}
	if rec.Expired(u.cfg.Now()) {
		return AuthResult{}, ErrInvalidRefreshToken
	}
	if username != "" && username != rec.Username {
		return AuthResult{}, ErrInvalidRefreshToken
	}

	access, err := u.codec.Issue(rec.Username)
	if err != nil {
		return AuthResult{}, err
	}
	return AuthResult{
		AccessToken:  access.Token,
		RefreshToken: raw,
		Username:     rec.Username,
		ExpiresAt:    access.ExpiresAt,
	}, nil
}

func (u *Usecase) Revoke(ctx context.Context, raw string) error {
	if raw == "" {
		return nil
	}
	return u.refresh.DeleteByToken(ctx, tokens.HashToken(raw))
}

// ForgotPassword stores a reset credential and enqueues its notification in
// the same transaction.
func (u *Usecase) ForgotPassword(ctx context.Context, email string) error {
	if err := validation.Validate(email, validation.Required, is.Email); err != nil {
		return fmt.Errorf("%w: email: %v", ErrInvalidInput, err)
	}
	rec, err := u.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return ErrUnknownEmail
		}
		return err
	}

	return u.tx.WithTx(ctx, func(ctx context.Context) error {
		raw, t, err := u.reset.Issue(ctx, rec)
		if err != nil {
			return err
		}
		return u.notifier.NotifyPasswordReset(ctx, notification.PasswordReset{
			RecipientEmail:  rec.Email,
			Username:        rec.Username,
			ResetToken:      raw,
			CallbackURLBase: u.cfg.CallbackURLBase,
			ExpiresAt:       t.ExpiresAt,
		})
	})
}

// ValidateResetToken succeeds while raw is usable. An expired credential is
// deleted and reported as ErrResetTokenExpired.
func (u *Usecase) ValidateResetToken(ctx context.Context, raw string) error {
	ok, err := u.reset.Validate(ctx, raw)
	if err != nil {
		return err
	}
	if !ok {
		if err := u.reset.Consume(ctx, raw); err != nil {
			return err
		}
		return ErrResetTokenExpired
	}
	return nil
}

// ResetPassword claims raw and sets a new password for its owner in one
// transaction. A failed update restores the credential; an expired one stays
// deleted and yields ErrResetTokenExpired.
func (u *Usecase) ResetPassword(ctx context.Context, raw, newPassword string) error {
	if newPassword == "" {
		return ErrInvalidInput
	}
	expired := false
	err := u.tx.WithTx(ctx, func(ctx context.Context) error {
		t, err := u.reset.Claim(ctx, raw)
		if err != nil {
			return err
		}
		if !t.Valid(u.cfg.Now()) {
			expired = true
			return nil
		}
		owner, err := u.users.FindByID(ctx, t.UserID)
		if err != nil {
			return err
		}
		return u.UpdatePassword(ctx, owner, newPassword)
	})
	if err != nil {
		return err
	}
	if expired {
		return ErrResetTokenExpired
	}
	return nil
}

func (u *Usecase) hash(password string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(password), u.cfg.BcryptCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(h), nil
}
