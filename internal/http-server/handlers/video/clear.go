package video

import (
	"log/slog"
	"net/http"

	"ClipRate/internal/lib/api/cont"
	"ClipRate/internal/lib/api/response"
	"ClipRate/internal/lib/sl"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
)

// Clear truncates the video table. The route is only reachable through
// the authenticate middleware, so a principal is always present here.
func Clear(log *slog.Logger, handler Core) http.HandlerFunc {
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

		user := cont.GetUser(r.Context())
		if user != nil {
			logger = logger.With(slog.String("user", user.Username))
		}

		if err := handler.ClearAll(r.Context()); err != nil {
			logger.Error("failed to clear videos", sl.Err(err))
			render.JSON(w, r, response.Error("Failed to clear videos"))
			return
		}

		logger.Info("videos cleared")
		render.JSON(w, r, response.Ok(nil))
	}
}
