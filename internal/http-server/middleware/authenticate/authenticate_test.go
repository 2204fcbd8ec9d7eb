package authenticate

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"ClipRate/entity"
	"ClipRate/internal/lib/api/cont"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAuth struct{}

func (stubAuth) AuthenticateByToken(token string) (*entity.UserAuth, error) {
	if token != "valid-token" {
		return nil, fmt.Errorf("api key not found")
	}
	return &entity.UserAuth{Username: "alice", Token: token}, nil
}

func serve(t *testing.T, header string) (*httptest.ResponseRecorder, *bool) {
	t.Helper()

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	reached := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reached = true
		user := cont.GetUser(r.Context())
		require.NotNil(t, user)
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/videos", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	New(log, stubAuth{})(next).ServeHTTP(rec, req)
	return rec, &reached
}

func TestAuthenticate(t *testing.T) {
	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantNext   bool
	}{
		{name: "valid bearer token", header: "Bearer valid-token", wantStatus: http.StatusOK, wantNext: true},
		{name: "missing header", header: "", wantStatus: http.StatusUnauthorized},
		{name: "bearer without token", header: "Bearer", wantStatus: http.StatusUnauthorized},
		{name: "bearer with empty token", header: "Bearer ", wantStatus: http.StatusUnauthorized},
		{name: "wrong scheme", header: "Basic dXNlcjpwYXNz", wantStatus: http.StatusUnauthorized},
		{name: "unknown token", header: "Bearer nope", wantStatus: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, reached := serve(t, tt.header)
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantNext, *reached)
		})
	}
}
