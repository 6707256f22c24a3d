package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Laza-adina/drsp-vak/internal/auth"
)

func loginRequest(password string) *http.Request {
	body, _ := json.Marshal(LoginRequest{Password: password})
	return httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewReader(body))
}

func TestLoginWithHashedPassword(t *testing.T) {
	hash, err := auth.HashPassword("s3cret")
	if err != nil {
		t.Fatalf("hashing password: %v", err)
	}

	cfg := auth.Config{
		JWTSecret:         "test-secret",
		AdminPasswordHash: hash,
		TokenDuration:     time.Hour,
	}
	h := NewAuthHandler(cfg, discardLogger())

	rec := httptest.NewRecorder()
	h.Login(rec, loginRequest("s3cret"))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	var resp LoginResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	userID, err := auth.ValidateToken(resp.Token, cfg.JWTSecret)
	if err != nil {
		t.Fatalf("issued token does not validate: %v", err)
	}
	if userID != "admin" {
		t.Errorf("userID = %q, want admin", userID)
	}
}

func TestLoginHashTakesPrecedenceOverPlaintext(t *testing.T) {
	hash, err := auth.HashPassword("hashed-pw")
	if err != nil {
		t.Fatalf("hashing password: %v", err)
	}

	cfg := auth.Config{
		JWTSecret:         "test-secret",
		AdminPassword:     "plaintext-pw",
		AdminPasswordHash: hash,
		TokenDuration:     time.Hour,
	}
	h := NewAuthHandler(cfg, discardLogger())

	rec := httptest.NewRecorder()
	h.Login(rec, loginRequest("plaintext-pw"))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("plaintext accepted despite configured hash: status = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.Login(rec, loginRequest("hashed-pw"))
	if rec.Code != http.StatusOK {
		t.Errorf("hashed credential rejected: status = %d", rec.Code)
	}
}

func TestLoginPlaintextFallback(t *testing.T) {
	cfg := auth.Config{
		JWTSecret:     "test-secret",
		AdminPassword: "legacy-pw",
		TokenDuration: time.Hour,
	}
	h := NewAuthHandler(cfg, discardLogger())

	rec := httptest.NewRecorder()
	h.Login(rec, loginRequest("legacy-pw"))
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	hash, err := auth.HashPassword("s3cret")
	if err != nil {
		t.Fatalf("hashing password: %v", err)
	}

	cfg := auth.Config{
		JWTSecret:         "test-secret",
		AdminPasswordHash: hash,
		TokenDuration:     time.Hour,
	}
	h := NewAuthHandler(cfg, discardLogger())

	rec := httptest.NewRecorder()
	h.Login(rec, loginRequest("wrong"))

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}
