package video

import (
	"log/slog"
	"net/http"

	"ClipRate/internal/lib/api/response"
	"ClipRate/internal/lib/sl"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
)

// List returns the full video table with aggregates as JSON.
func List(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mod := sl.Module("http.handlers.video")

		logger := log.With(
			mod,
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		if handler == nil {
			logger.Error("rating service not available")
			render.JSON(w, r, response.Error("rating service not available"))
			return
		}

		videos, err := handler.AllVideos(r.Context())
		if err != nil {
			logger.Error("failed to read videos", sl.Err(err))
			render.JSON(w, r, response.Error("Failed to read videos"))
			return
		}

		logger.Debug("videos listed", slog.Int("count", len(videos)))
		render.JSON(w, r, response.Ok(videos))
	}
}
