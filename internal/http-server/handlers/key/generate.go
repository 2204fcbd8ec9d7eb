package key

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"ClipRate/internal/lib/api/response"
	"ClipRate/internal/lib/sl"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
)

// Core defines the key operations the handlers need.
type Core interface {
	GenerateApiKey(username string) (string, error)
}

type GenerateRequest struct {
	Username string `json:"username"`
}

// Generate creates (or returns the existing) API key for a username.
func Generate(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mod := sl.Module("http.handlers.key")

		logger := log.With(
			mod,
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		if handler == nil {
			logger.Error("key service not available")
			render.JSON(w, r, response.Error("key service not available"))
			return
		}

		var req GenerateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.Error("failed to decode request body", sl.Err(err))
			render.JSON(w, r, response.Error("Invalid request body"))
			return
		}

		username := strings.TrimSpace(req.Username)
		if username == "" {
			render.JSON(w, r, response.Error("no username provided"))
			return
		}

		key, err := handler.GenerateApiKey(username)
		if err != nil {
			logger.Error("failed to generate api key", sl.Err(err))
			render.JSON(w, r, response.Error("Failed to generate key"))
			return
		}

		logger.Debug("api key generated", slog.String("username", username))
		render.JSON(w, r, response.Ok(map[string]string{"key": key}))
	}
}
