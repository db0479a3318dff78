package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrMalformed        = errors.New("malformed token")
	ErrInvalidSignature = errors.New("invalid token signature")
	ErrExpired          = errors.New("token expired")

	ErrEmptySecret  = errors.New("signing secret must not be empty")
	ErrEmptySubject = errors.New("token subject must not be empty")
	ErrInvalidTTL   = errors.New("access token lifetime must be positive")
)

// timePrecision is the resolution of iat/exp on the wire. Whole seconds would
// shorten a lifetime by up to 1s or stretch it past the configured value.
const timePrecision = time.Millisecond

func init() { jwt.TimePrecision = timePrecision }

type Config struct {
	Secret    []byte
	AccessTTL time.Duration
	Now       func() time.Time
}

// AccessToken is a signed, self-contained credential. It is never persisted.
type AccessToken struct {
	Token     string
	Subject   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Codec issues and verifies HS256 access tokens. Secret and lifetime are
// fixed at construction; a Codec is safe for concurrent use.
type Codec struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
	parser *jwt.Parser
}

func NewCodec(cfg Config) (*Codec, error) {
	if len(cfg.Secret) == 0 {
		return nil, ErrEmptySecret
	}
	if cfg.AccessTTL <= 0 {
		return nil, ErrInvalidTTL
	}
	if cfg.Now == nil {
		cfg.Now = func() time.Time { return time.Now().UTC() }
	}
	secret := make([]byte, len(cfg.Secret))
	copy(secret, cfg.Secret)

	c := &Codec{secret: secret, ttl: cfg.AccessTTL, now: cfg.Now}
	c.parser = jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	return c, nil
}

func (c *Codec) TTL() time.Duration { return c.ttl }

func (c *Codec) Issue(subject string) (AccessToken, error) {
	if subject == "" {
		return AccessToken{}, ErrEmptySubject
	}
	iat := c.now().Truncate(timePrecision)
	exp := iat.Add(c.ttl)

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(iat),
		ExpiresAt: jwt.NewNumericDate(exp),
	})
	signed, err := t.SignedString(c.secret)
	if err != nil {
		return AccessToken{}, fmt.Errorf("sign access token: %w", err)
	}
	return AccessToken{Token: signed, Subject: subject, IssuedAt: iat, ExpiresAt: exp}, nil
}

// Verify checks structure, signature and expiry and returns the subject.
// Errors are one of ErrMalformed, ErrInvalidSignature or ErrExpired.
func (c *Codec) Verify(token string) (string, error) {
	var claims jwt.RegisteredClaims
	_, err := c.parser.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return c.secret, nil
	})
	if err != nil {
		return "", classify(err)
	}
	if claims.Subject == "" {
		return "", ErrMalformed
	}
	return claims.Subject, nil
}

func classify(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed):
		return ErrMalformed
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return ErrInvalidSignature
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrExpired
	default:
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
}

