package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestRequestID(t *testing.T) {
	var captured string
	handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = RequestIDFromContext(r.Context())
	}))

	t.Run("generates_when_absent", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.NotEmpty(t, captured)
		assert.Equal(t, captured, rec.Header().Get("X-Request-ID"))
	})

	t.Run("reuses_incoming_header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Request-ID", "req-42")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, "req-42", captured)
		assert.Equal(t, "req-42", rec.Header().Get("X-Request-ID"))
	})
}

func signHS256(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func TestHS256Validator(t *testing.T) {
	validator, err := NewHS256Validator("test-secret")
	require.NoError(t, err)
	ctx := t.Context()

	t.Run("valid_token", func(t *testing.T) {
		token := signHS256(t, "test-secret", jwt.MapClaims{
			"sub":   "user-1",
			"iss":   "speechcraft",
			"aud":   "speechcraft-api",
			"email": "u@example.com",
			"exp":   time.Now().Add(time.Hour).Unix(),
		})
		claims, err := validator.Validate(ctx, token)
		require.NoError(t, err)
		assert.Equal(t, "user-1", claims.Subject)
		assert.Equal(t, "speechcraft", claims.Issuer)
		assert.Equal(t, []string{"speechcraft-api"}, claims.Audience)
		require.NotNil(t, claims.Email)
		assert.Equal(t, "u@example.com", *claims.Email)
	})

	t.Run("wrong_secret", func(t *testing.T) {
		token := signHS256(t, "other-secret", jwt.MapClaims{"sub": "user-1"})
		_, err := validator.Validate(ctx, token)
		assert.Error(t, err)
	})

	t.Run("expired_token", func(t *testing.T) {
		token := signHS256(t, "test-secret", jwt.MapClaims{
			"sub": "user-1",
			"exp": time.Now().Add(-time.Hour).Unix(),
		})
		_, err := validator.Validate(ctx, token)
		assert.Error(t, err)
	})

	t.Run("empty_secret_rejected", func(t *testing.T) {
		_, err := NewHS256Validator("")
		assert.Error(t, err)
	})
}

func TestAuthenticator(t *testing.T) {
	validator, err := NewHS256Validator("test-secret")
	require.NoError(t, err)

	var gotUser string
	handler := Authenticator(validator)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser, _ = UserFromContext(r.Context())
	}))

	t.Run("valid_bearer", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+signHS256(t, "test-secret", jwt.MapClaims{
			"sub": "user-1",
			"exp": time.Now().Add(time.Hour).Unix(),
		}))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "user-1", gotUser)
	})

	t.Run("missing_header", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("garbage_token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer not-a-jwt")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestRateLimiter(t *testing.T) {
	store := NewLimiterStore(RateLimitConfig{RequestsPerSecond: 1, Burst: 2})
	handler := RateLimiter(store, 2)(okHandler())

	send := func(addr string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = addr
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	rec := send("10.0.0.1:1234")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "2", rec.Header().Get("X-RateLimit-Limit"))

	assert.Equal(t, http.StatusOK, send("10.0.0.1:1234").Code)

	// Burst exhausted.
	rec = send("10.0.0.1:1234")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))

	// Other clients are unaffected.
	assert.Equal(t, http.StatusOK, send("10.0.0.2:1234").Code)
}

func TestLimiterStore_SweepAndReset(t *testing.T) {
	store := NewLimiterStore(RateLimitConfig{RequestsPerSecond: 1, Burst: 1})

	store.Limiter("a")
	store.Limiter("b")
	require.Equal(t, 2, store.Len())

	// Nothing is idle yet.
	assert.Equal(t, 0, store.Sweep(time.Minute))
	assert.Equal(t, 2, store.Len())

	// With a zero idle allowance everything is stale.
	assert.Equal(t, 2, store.Sweep(-time.Second))
	assert.Equal(t, 0, store.Len())

	store.Limiter("a")
	store.Reset()
	assert.Equal(t, 0, store.Len())

	t.Run("limiter_state_survives_between_calls", func(t *testing.T) {
		first := store.Limiter("c")
		second := store.Limiter("c")
		assert.Same(t, first, second)
	})
}
