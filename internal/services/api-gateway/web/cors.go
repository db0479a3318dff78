// Package web holds the browser-facing wrappers of the api-gateway HTTP surface.
package web

import (
	"net/http"
	"net/url"
	"time"

	"github.com/rs/cors"
)

type CORSConfig struct {
	AllowedOrigins []string
	MaxAge         time.Duration
}

// OriginOf returns scheme://host of raw, or "" when raw is not an absolute URL.
func OriginOf(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ""
	}
	return u.Scheme + "://" + u.Host
}

// CORS lets the frontend origins call next with credentials. The Authorization
// header is exposed so the client can read a reissued access token.
func CORS(cfg CORSConfig, next http.Handler) http.Handler {
	maxAge := cfg.MaxAge
	if maxAge <= 0 {
		maxAge = time.Hour
	}
	return cors.New(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{
			http.MethodGet, http.MethodHead, http.MethodPost, http.MethodPut,
			http.MethodPatch, http.MethodDelete, http.MethodOptions,
		},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{"Authorization"},
		AllowCredentials: true,
		MaxAge:           int(maxAge / time.Second),
	}).Handler(next)
}
