package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	tokens "github.com/NordCoder/goodcookie/internal/auth"
	domainauth "github.com/NordCoder/goodcookie/internal/domain/auth"
	"github.com/NordCoder/goodcookie/internal/domain/user"
	"github.com/NordCoder/goodcookie/internal/obs"
	"go.uber.org/zap"
)

type ctxKey int

const principalKey ctxKey = 1

func WithPrincipal(ctx context.Context, p domainauth.Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

func PrincipalFromCtx(ctx context.Context) (domainauth.Principal, bool) {
	p, ok := ctx.Value(principalKey).(domainauth.Principal)
	return p, ok
}

type AuthenticatorOpts struct {
	Logger     *zap.Logger
	HeaderName string
	Prefix     string
}

// Authenticator resolves the bearer token of a request into a Principal.
// Requests without a token pass through unauthenticated; requests with a
// token that fails verification are answered with 401 and go no further.
type Authenticator struct {
	codec  *tokens.Codec
	users  user.Repo
	log    *zap.Logger
	header string
	prefix string
}

func NewAuthenticator(codec *tokens.Codec, users user.Repo, o AuthenticatorOpts) *Authenticator {
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	if o.HeaderName == "" {
		o.HeaderName = "Authorization"
	}
	if o.Prefix == "" {
		o.Prefix = "Bearer"
	}
	return &Authenticator{
		codec:  codec,
		users:  users,
		log:    o.Logger,
		header: o.HeaderName,
		prefix: o.Prefix + " ",
	}
}

func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := r.Header.Get(a.header)
		if !strings.HasPrefix(raw, a.prefix) {
			next.ServeHTTP(w, r)
			return
		}

		subject, err := a.codec.Verify(strings.TrimPrefix(raw, a.prefix))
		if err != nil {
			a.reject(w, r, rejectReason(err), err)
			return
		}
		u, err := a.users.FindByUsername(r.Context(), subject)
		if err != nil {
			reason := "identity_lookup"
			if errors.Is(err, user.ErrNotFound) {
				reason = "unknown_subject"
			}
			a.reject(w, r, reason, err)
			return
		}

		ctx := WithPrincipal(r.Context(), domainauth.NewPrincipal(u.Username))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (a *Authenticator) reject(w http.ResponseWriter, r *http.Request, reason string, err error) {
	authRejected.WithLabelValues(reason).Inc()
	obs.WithTrace(r.Context(), a.log).Info("request rejected",
		zap.String("reason", reason), zap.String("path", r.URL.Path), zap.Error(err))
	writeMessage(w, http.StatusUnauthorized, "Unauthorized")
}

func rejectReason(err error) string {
	switch {
	case errors.Is(err, tokens.ErrExpired):
		return "expired"
	case errors.Is(err, tokens.ErrInvalidSignature):
		return "invalid_signature"
	default:
		return "malformed"
	}
}

// RequireAuthority answers 401 when no principal is attached and 403 when it
// lacks authority.
func RequireAuthority(authority domainauth.Authority, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, ok := PrincipalFromCtx(r.Context())
		if !ok {
			writeMessage(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		if !p.HasAuthority(authority) {
			writeMessage(w, http.StatusForbidden, "Forbidden")
			return
		}
		next.ServeHTTP(w, r)
	})
}
