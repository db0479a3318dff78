package auth

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	loginAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "auth_login_attempts_total",
		Help: "Login attempts by result.",
	}, []string{"result"})
	registrations = promauto.NewCounter(prometheus.CounterOpts{
		Name: "auth_registrations_total",
		Help: "Successful registrations.",
	})
	resetIssued = promauto.NewCounter(prometheus.CounterOpts{
		Name: "auth_reset_tokens_issued_total",
		Help: "Password reset credentials issued.",
	})
	authRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "auth_requests_rejected_total",
		Help: "Requests rejected by the authenticator, by reason.",
	}, []string{"reason"})
)
