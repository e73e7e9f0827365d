package handlers

import (
	"net/http"
	"os"
)

var allowedOrigins = map[string]bool{
	"https://myapp.com":     true,
	"https://dev.myapp.com": true,
	"http://localhost:3000": true,
	"http://127.0.0.1:3000": true,
}

// CheckOrigin guards the websocket upgrade; any origin is accepted in dev.
func CheckOrigin(r *http.Request) bool {
	if os.Getenv("APP_ENV") == "dev" {
		return true
	}
	origin := r.Header.Get("Origin")
	return allowedOrigins[origin]
}
