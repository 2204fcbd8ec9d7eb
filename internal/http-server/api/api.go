package api

import (
	"ClipRate/internal/config"
	"ClipRate/internal/http-server/handlers/errors"
	"ClipRate/internal/http-server/handlers/key"
	"ClipRate/internal/http-server/handlers/video"
	"ClipRate/internal/http-server/middleware/authenticate"
	"ClipRate/internal/http-server/middleware/timeout"
	"ClipRate/internal/lib/sl"
	"ClipRate/internal/ws"
	"fmt"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"log/slog"
	"net"
	"net/http"
)

type Server struct {
	conf       *config.Config
	httpServer *http.Server
	log        *slog.Logger
}

// Handler bundles the service interfaces the API exposes.
type Handler interface {
	authenticate.Authenticate
	ws.Authenticator
	video.Core
	key.Core
}

func New(conf *config.Config, log *slog.Logger, handler Handler, hub *ws.Hub) error {

	server := Server{
		conf: conf,
		log:  log.With(sl.Module("api.server")),
	}

	router := chi.NewRouter()
	router.Use(timeout.Timeout(5))
	router.Use(middleware.RequestID)
	router.Use(middleware.Recoverer)
	router.Use(render.SetContentType(render.ContentTypeJSON))

	router.NotFound(errors.NotFound(log))
	router.MethodNotAllowed(errors.NotAllowed(log))

	router.Route("/api/v1", func(v1 chi.Router) {
		// WebSocket endpoint authenticates by query token itself;
		// everything else goes through the bearer-token middleware.
		v1.Get("/ws", func(w http.ResponseWriter, r *http.Request) {
			ws.ServeWs(hub, handler, log, w, r)
		})

		v1.Group(func(g chi.Router) {
			g.Use(authenticate.New(log, handler))

			g.Route("/videos", func(r chi.Router) {
				r.Get("/", video.List(log, handler))
				r.Get("/export", video.Export(log, handler))
				r.Delete("/", video.Clear(log, handler))
			})
			g.Route("/key", func(r chi.Router) {
				r.Post("/new", key.Generate(log, handler))
			})
		})
	})

	httpLog := slog.NewLogLogger(log.Handler(), slog.LevelError)
	server.httpServer = &http.Server{
		Handler:  router,
		ErrorLog: httpLog,
	}

	serverAddress := fmt.Sprintf("%s:%s", conf.Listen.BindIP, conf.Listen.Port)
	listener, err := net.Listen("tcp", serverAddress)
	if err != nil {
		return err
	}

	server.log.Info("starting api server", slog.String("address", serverAddress))

	return server.httpServer.Serve(listener)
}
