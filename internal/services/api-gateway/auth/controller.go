package auth

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	domainauth "github.com/NordCoder/goodcookie/internal/domain/auth"
	"github.com/NordCoder/goodcookie/internal/domain/user"
	"github.com/NordCoder/goodcookie/internal/obs"
	validation "github.com/go-ozzo/ozzo-validation"
	"go.uber.org/zap"
)

const BasePath = "/api/auth"

type Server struct {
	log *zap.Logger
	uc  *Usecase
}

func NewServer(log *zap.Logger, uc *Usecase) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{log: log, uc: uc}
}

// Register mounts the auth routes on mux.
func (s *Server) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST "+BasePath+"/register", s.register)
	mux.HandleFunc("POST "+BasePath+"/login", s.login)
	mux.HandleFunc("POST "+BasePath+"/refresh/token", s.renew)
	mux.HandleFunc("POST "+BasePath+"/logout", s.logout)
	mux.HandleFunc("POST "+BasePath+"/forgot", s.forgot)
	mux.HandleFunc("POST "+BasePath+"/validatePasswordToken/{token}", s.validateResetToken)
	mux.HandleFunc("PUT "+BasePath+"/updatePassword", s.updatePassword)
	mux.Handle("GET "+BasePath+"/me", RequireAuthority(domainauth.AuthorityUser, http.HandlerFunc(s.me)))
}

type authResponse struct {
	AuthenticationToken string    `json:"authenticationToken"`
	RefreshToken        string    `json:"refreshToken"`
	ExpiresAt           time.Time `json:"expiresAt"`
	Username            string    `json:"username"`
}

type messageResponse struct {
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
	// Errors maps request fields to their validation failure.
	Errors map[string]string `json:"errors,omitempty"`
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decode(w, r, &req) {
		return
	}
	if _, err := s.uc.Register(r.Context(), req.Username, req.Password, req.Email); err != nil {
		var ce *user.ConflictError
		if errors.As(err, &ce) {
			writeJSON(w, http.StatusConflict, messageResponse{Message: conflictMessage(ce.Field), Field: ce.Field})
			return
		}
		s.fail(w, r, err)
		return
	}
	s.log.Info("auth.register", zap.String("username", req.Username))
	writeMessage(w, http.StatusOK, "User registration successful.")
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decode(w, r, &req) {
		return
	}
	res, err := s.uc.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toAuthResponse(res))
}

func (s *Server) renew(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if !decode(w, r, &req) {
		return
	}
	res, err := s.uc.Renew(r.Context(), req.RefreshToken, req.Username)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toAuthResponse(res))
}

func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if !decode(w, r, &req) {
		return
	}
	if err := s.uc.Revoke(r.Context(), req.RefreshToken); err != nil {
		s.fail(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, "Refresh Token Deleted Successfully.")
}

func (s *Server) forgot(w http.ResponseWriter, r *http.Request) {
	var req forgotRequest
	if !decode(w, r, &req) {
		return
	}
	if err := s.uc.ForgotPassword(r.Context(), req.Email); err != nil {
		s.fail(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, "Email Sent.")
}

func (s *Server) validateResetToken(w http.ResponseWriter, r *http.Request) {
	if err := s.uc.ValidateResetToken(r.Context(), r.PathValue("token")); err != nil {
		s.fail(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, "Valid Token.")
}

func (s *Server) updatePassword(w http.ResponseWriter, r *http.Request) {
	var req updatePasswordRequest
	if !decode(w, r, &req) {
		return
	}
	if err := s.uc.ResetPassword(r.Context(), req.Token, req.NewPassword); err != nil {
		s.fail(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, "Password Updated Successfully.")
}

func (s *Server) me(w http.ResponseWriter, r *http.Request) {
	p, _ := PrincipalFromCtx(r.Context())
	writeJSON(w, http.StatusOK, p)
}

// fail maps use case errors onto statuses. Anything unrecognised is logged
// and answered with 500.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
	case errors.Is(err, ErrInvalidCredentials):
		writeMessage(w, http.StatusUnauthorized, "Incorrect username or password")
	case errors.Is(err, ErrInvalidRefreshToken):
		writeMessage(w, http.StatusBadRequest, "Invalid RefreshToken")
	case errors.Is(err, ErrUnknownEmail):
		writeMessage(w, http.StatusBadRequest, "No user associated with that email found.")
	case errors.Is(err, ErrResetTokenNotFound):
		writeMessage(w, http.StatusNotFound, "Invalid Password Reset Token")
	case errors.Is(err, ErrResetTokenExpired):
		writeMessage(w, http.StatusBadRequest, "Token Expired.")
	default:
		obs.WithTrace(r.Context(), s.log).Error("auth request failed",
			zap.String("path", r.URL.Path), zap.Error(err))
		writeMessage(w, http.StatusInternalServerError, "Internal error")
	}
}

func conflictMessage(field string) string {
	if field == user.FieldEmail {
		return "Email already in use."
	}
	return "Username already exists."
}

func toAuthResponse(res AuthResult) authResponse {
	return authResponse{
		AuthenticationToken: res.AccessToken,
		RefreshToken:        res.RefreshToken,
		ExpiresAt:           res.ExpiresAt,
		Username:            res.Username,
	}
}

// decode reads a JSON body into v and runs v's validation rules. Either
// failure is answered with 400.
func decode(w http.ResponseWriter, r *http.Request, v validation.Validatable) bool {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<16)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	if err := v.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, messageResponse{Message: "Invalid request body", Errors: fieldErrors(err)})
		return false
	}
	return true
}

func writeMessage(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, messageResponse{Message: msg})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
