package video

import (
	"fmt"
	"log/slog"
	"net/http"

	"ClipRate/internal/lib/api/response"
	"ClipRate/internal/lib/sl"
	"ClipRate/internal/service/export"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
)

// Export streams the table snapshot as a CSV download.
func Export(log *slog.Logger, handler Core) http.HandlerFunc {
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

		data, err := export.BuildCSV(videos)
		if err != nil {
			logger.Error("failed to build csv", sl.Err(err))
			render.JSON(w, r, response.Error("Failed to build export"))
			return
		}

		logger.Info("table exported", slog.Int("videos", len(videos)))

		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.Filename))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
	}
}
