package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"github.com/quasarhq/quasar-backend/models"
)

const testSecret = "test-secret"

func mintToken(t *testing.T, secret string) string {
	t.Helper()
	claims := models.CustomClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		ID:       "17",
		Username: "alice",
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatal(err)
	}
	return token
}

func TestJWTValidationAcceptsSignedToken(t *testing.T) {
	var got *models.CustomClaims
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = r.Context().Value(AuthInfoKey).(*models.CustomClaims)
	})

	handler := JWTValidation(testSecret)(next)
	req := httptest.NewRequest(http.MethodGet, "/player/17", nil)
	req.Header.Set("Authorization", "Bearer "+mintToken(t, testSecret))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if got == nil || got.Username != "alice" || got.ID != "17" {
		t.Fatalf("claims not propagated: %+v", got)
	}
}

func TestJWTValidationRejectsBadTokens(t *testing.T) {
	cases := []struct {
		name   string
		header string
	}{
		{"missing token", ""},
		{"garbage token", "Bearer not-a-token"},
		{"wrong signing key", "Bearer " + mintToken(t, "some-other-secret")},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			called := false
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				called = true
			})

			handler := JWTValidation(testSecret)(next)
			req := httptest.NewRequest(http.MethodGet, "/player/17", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != http.StatusUnauthorized {
				t.Fatalf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
			}
			if called {
				t.Fatal("handler ran with an invalid token")
			}
		})
	}
}
