package main

import (
	"ClipRate/bot"
	"ClipRate/bot/chat"
	"ClipRate/bot/workflows/mainmenu"
	"ClipRate/entity"
	"ClipRate/internal/config"
	repository "ClipRate/internal/database"
	"ClipRate/internal/http-server/api"
	"ClipRate/internal/lib/logger"
	"ClipRate/internal/lib/sl"
	"ClipRate/internal/service/auth"
	"ClipRate/internal/service/rating"
	"ClipRate/internal/ws"
	"context"
	"flag"
	"log/slog"
	"time"
)

// coreHandler aggregates the services behind the HTTP API.
type coreHandler struct {
	auth   *auth.Service
	rating *rating.Service
}

func (h *coreHandler) AuthenticateByToken(token string) (*entity.UserAuth, error) {
	return h.auth.AuthenticateByToken(token)
}

func (h *coreHandler) ValidateToken(token string) (string, error) {
	return h.auth.ValidateToken(token)
}

func (h *coreHandler) GenerateApiKey(username string) (string, error) {
	return h.auth.GenerateApiKey(username)
}

func (h *coreHandler) AllVideos(ctx context.Context) ([]entity.Video, error) {
	return h.rating.AllVideos(ctx)
}

func (h *coreHandler) ClearAll(ctx context.Context) error {
	return h.rating.ClearAll(ctx)
}

func main() {

	configPath := flag.String("conf", "config.yml", "path to config file")
	logPath := flag.String("log", "/var/log/", "path to log file directory")
	flag.Parse()

	conf := config.MustLoad(*configPath)
	lg := logger.SetupLogger(conf.Env, *logPath)

	lg.Info("starting cliprate", slog.String("config", *configPath), slog.String("env", conf.Env))
	lg.Debug("debug messages enabled")

	db, err := repository.NewMongoClient(conf, lg)
	if err != nil {
		lg.Error("mongo client", sl.Err(err))
		return
	}
	if db == nil {
		lg.Error("mongo is disabled in config, nothing to run against")
		return
	}
	if err := db.WaitReady(conf.Mongo.ConnectRetries, 3*time.Second); err != nil {
		lg.Error("mongo not reachable", sl.Err(err))
		return
	}
	lg.With(
		slog.String("host", conf.Mongo.Host),
		slog.String("port", conf.Mongo.Port),
		slog.String("database", conf.Mongo.Database),
	).Info("mongo client initialized")

	authService := auth.NewAuthService(conf, lg)
	authService.SetRepository(db)

	ratingService := rating.NewService(conf, lg)
	ratingService.SetRepository(db)

	hub := ws.NewHub(lg.With(sl.Module("ws")))
	go hub.Run()
	ratingService.SetListener(hub)

	// Sessions are ephemeral by default; Mongo-backed state is opt-in for
	// deployments that want flows to survive restarts.
	var stateStorage chat.ChatStateStorage
	if conf.Mongo.PersistSessions {
		stateStorage = chat.NewMongoChatStateStorage(db)
	} else {
		stateStorage = chat.NewMemoryChatStateStorage()
	}

	engine := chat.NewChatEngine(stateStorage, lg.With(sl.Module("chat-engine")))
	engine.RegisterWorkflow(mainmenu.NewMainMenuWorkflow(ratingService))

	if conf.Telegram.Enabled {
		notifyChatId := int64(0)
		if len(conf.Telegram.AdminIds) > 0 {
			notifyChatId = conf.Telegram.AdminIds[0]
		}

		rateBot, err := bot.NewRateBot(conf.Telegram.BotName, conf.Telegram.ApiKey, notifyChatId, lg)
		if err != nil {
			lg.Error("failed to initialize telegram bot", sl.Err(err))
			return
		}
		rateBot.SetWorkflowEngine(engine)
		rateBot.SetAuthService(authService)
		rateBot.SetRatingService(ratingService)

		// Forward warnings and errors to the admin chat.
		lg = logger.SetupTelegramHandler(lg, rateBot, slog.LevelWarn)
		lg.With(
			slog.String("bot_name", conf.Telegram.BotName),
		).Info("telegram bot initialized")

		go func() {
			if err := rateBot.Start(); err != nil {
				lg.Error("telegram bot error", sl.Err(err))
			}
		}()
	}

	handler := &coreHandler{
		auth:   authService,
		rating: ratingService,
	}

	// *** blocking start with http server ***
	err = api.New(conf, lg, handler, hub)
	if err != nil {
		lg.Error("server start", sl.Err(err))
		return
	}
	lg.Error("service stopped")
}
