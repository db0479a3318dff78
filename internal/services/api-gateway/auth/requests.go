package auth

import (
	"errors"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
)

type registerRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Email    string `json:"email"`
}

func (r registerRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Username, validation.Required),
		validation.Field(&r.Password, validation.Required),
		validation.Field(&r.Email, validation.Required, is.Email),
	)
}

// loginRequest is not validated: empty credentials fail like wrong ones.
type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (loginRequest) Validate() error { return nil }

// refreshRequest is shared by renew and logout.
type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
	Username     string `json:"username"`
}

func (r refreshRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.RefreshToken, validation.Required),
	)
}

type forgotRequest struct {
	Email string `json:"email"`
}

func (r forgotRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
	)
}

type updatePasswordRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"newPassword"`
}

func (r updatePasswordRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Token, validation.Required),
		validation.Field(&r.NewPassword, validation.Required),
	)
}

// fieldErrors flattens ozzo's per-field errors for the response body.
func fieldErrors(err error) map[string]string {
	var fe validation.Errors
	if !errors.As(err, &fe) {
		return map[string]string{"body": err.Error()}
	}
	out := make(map[string]string, len(fe))
	for field, e := range fe {
		out[field] = e.Error()
	}
	return out
}
