// Package web holds the shared JSON response helpers and the session cookie
// plumbing used by every handler package.
package web

import (
	"encoding/json"
	"net/http"
)

// SessionCookie is the name of the HTTP-only cookie carrying the session token.
const SessionCookie = "access_token"

// sessionCookieMaxAge matches the token lifetime.
const sessionCookieMaxAge = 3600

// errorEnvelope is the single shape every failing request returns.
type errorEnvelope struct {
	Success    bool   `json:"success"`
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
}

// JSON writes v as a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// Error writes the normalized error envelope. All handler failures go
// through here; handlers never format error bodies themselves.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, errorEnvelope{Success: false, StatusCode: status, Message: message})
}

// SetSessionCookie attaches the signed session token to the response.
func SetSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
		MaxAge:   sessionCookieMaxAge,
	})
}

// ClearSessionCookie expires the session cookie. The token itself stays
// valid until its embedded expiry; there is no server-side revocation.
func ClearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
		MaxAge:   -1,
	})
}
