package middleware

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/phrazzld/chemlab-api/internal/api/shared"
	"github.com/phrazzld/chemlab-api/internal/mocks"
	"github.com/phrazzld/chemlab-api/internal/platform/logger"
	"github.com/phrazzld/chemlab-api/internal/service/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTraceMiddleware(t *testing.T) {
	var buf bytes.Buffer
	base := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	var seenTrace string
	handler := NewTraceMiddleware(base)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenTrace = shared.GetTraceID(r.Context())
		logger.FromContext(r.Context()).Info("inside")
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/lab", nil))

	require.NotEmpty(t, seenTrace)
	assert.Contains(t, buf.String(), `"msg":"request started"`)
	assert.Contains(t, buf.String(), `"trace_id":"`+seenTrace+`"`)
}

func TestAuthenticate(t *testing.T) {
	learnerID := uuid.New()

	tests := []struct {
		name       string
		header     string
		validate   func(ctx context.Context, token string) (*auth.Claims, error)
		wantStatus int
	}{
		{name: "missing_header", header: "", wantStatus: http.StatusUnauthorized},
		{name: "wrong_scheme", header: "Basic abc", wantStatus: http.StatusUnauthorized},
		{name: "too_many_parts", header: "Bearer a b", wantStatus: http.StatusUnauthorized},
		{
			name:   "expired",
			header: "Bearer expired",
			validate: func(context.Context, string) (*auth.Claims, error) {
				return nil, auth.ErrExpiredToken
			},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:   "invalid",
			header: "Bearer forged",
			validate: func(context.Context, string) (*auth.Claims, error) {
				return nil, auth.ErrInvalidToken
			},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:   "unexpected_error",
			header: "Bearer token",
			validate: func(context.Context, string) (*auth.Claims, error) {
				return nil, errors.New("keystore offline")
			},
			wantStatus: http.StatusInternalServerError,
		},
		{
			name:   "valid",
			header: "Bearer good",
			validate: func(_ context.Context, token string) (*auth.Claims, error) {
				if token != "good" {
					return nil, auth.ErrInvalidToken
				}
				return &auth.Claims{LearnerID: learnerID}, nil
			},
			wantStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			jwtSvc := &mocks.MockJWTService{ValidateTokenFn: tt.validate}
			var got uuid.UUID
			handler := NewAuthMiddleware(jwtSvc).Authenticate(http.HandlerFunc(
				func(w http.ResponseWriter, r *http.Request) {
					id, ok := GetLearnerID(r)
					require.True(t, ok)
					got = id
				}))

			req := httptest.NewRequest(http.MethodGet, "/api/progress", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantStatus == http.StatusOK {
				assert.Equal(t, learnerID, got)
			}
		})
	}
}

func TestGetLearnerID_Missing(t *testing.T) {
	_, ok := GetLearnerID(httptest.NewRequest(http.MethodGet, "/", nil))
	assert.False(t, ok)
}
