package bot

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"ClipRate/bot/chat"
	"ClipRate/bot/chat/telegram"
	"ClipRate/bot/workflows/mainmenu"
	"ClipRate/entity"
	"ClipRate/internal/lib/sl"
	"ClipRate/internal/service/export"

	tgbotapi "github.com/PaulSonOfLars/gotgbot/v2"
	"github.com/PaulSonOfLars/gotgbot/v2/ext"
	"github.com/PaulSonOfLars/gotgbot/v2/ext/handlers"
	"github.com/PaulSonOfLars/gotgbot/v2/ext/handlers/filters/message"
)

// Platform name used as the chat state key prefix.
const platform = "telegram"

// Admin callback data for the clear-table confirmation.
const (
	clearConfirm = "clr:yes"
	clearCancel  = "clr:no"
)

const msgDenied = "⛔ You are not allowed to do that."

// AuthService defines the capability check for privileged commands.
type AuthService interface {
	IsAdmin(telegramId int64) bool
}

// RatingService defines the admin-facing store operations the bot needs.
type RatingService interface {
	AllVideos(ctx context.Context) ([]entity.Video, error)
	ClearAll(ctx context.Context) error
}

// RateBot is the Telegram bot for submitting and rating videos.
type RateBot struct {
	log           *slog.Logger
	api           *tgbotapi.Bot
	botUsername   string
	notifyChatId  int64
	engine        *chat.ChatEngine
	messenger     chat.Messenger
	authService   AuthService
	ratingService RatingService
}

// NewRateBot creates a new bot instance.
func NewRateBot(botName, apiKey string, notifyChatId int64, log *slog.Logger) (*RateBot, error) {
	bot := &RateBot{
		log:          log.With(sl.Module("ratebot")),
		botUsername:  botName,
		notifyChatId: notifyChatId,
	}

	api, err := tgbotapi.NewBot(apiKey, nil)
	if err != nil {
		return nil, fmt.Errorf("creating api instance: %v", err)
	}
	bot.api = api
	bot.messenger = telegram.NewMessenger(api)

	return bot, nil
}

// SetWorkflowEngine sets the chat engine for the bot.
func (b *RateBot) SetWorkflowEngine(engine *chat.ChatEngine) {
	b.engine = engine
}

// SetAuthService sets the capability check service.
func (b *RateBot) SetAuthService(authService AuthService) {
	b.authService = authService
}

// SetRatingService sets the rating service for admin commands.
func (b *RateBot) SetRatingService(ratingService RatingService) {
	b.ratingService = ratingService
}

// Start begins polling for updates and handling them.
func (b *RateBot) Start() error {
	dispatcher := ext.NewDispatcher(&ext.DispatcherOpts{
		Error: func(bot *tgbotapi.Bot, ctx *ext.Context, err error) ext.DispatcherAction {
			log.Println("an error occurred while handling update:", err.Error())
			return ext.DispatcherActionNoop
		},
		MaxRoutines: ext.DefaultMaxRoutines,
	})
	updater := ext.NewUpdater(dispatcher, nil)

	dispatcher.AddHandler(handlers.NewCommand("start", b.handleStart))
	dispatcher.AddHandler(handlers.NewCommand("download", b.handleDownload))
	dispatcher.AddHandler(handlers.NewCommand("clear_table", b.handleClear))
	dispatcher.AddHandler(handlers.NewCallback(b.clearCallbackFilter, b.handleClearCallback))
	dispatcher.AddHandler(handlers.NewCallback(b.workflowCallbackFilter, b.handleCallback))
	dispatcher.AddHandler(handlers.NewMessage(message.Text, b.handleMessage))

	err := updater.StartPolling(b.api, &ext.PollingOpts{
		DropPendingUpdates: true,
		GetUpdatesOpts: &tgbotapi.GetUpdatesOpts{
			Timeout: 9,
			RequestOpts: &tgbotapi.RequestOpts{
				Timeout: time.Second * 10,
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to start polling: %w", err)
	}

	b.log.Info("rate bot started", slog.String("username", b.botUsername))

	// Idle, to keep updates coming in
	updater.Idle()

	return nil
}

// SendMessage delivers a notification to the admin chat. Used by the
// logger's Telegram handler.
func (b *RateBot) SendMessage(msg string) {
	if b.notifyChatId == 0 {
		return
	}
	_, err := b.api.SendMessage(b.notifyChatId, msg, nil)
	if err != nil {
		b.log.Warn("sending admin notification", sl.Err(err))
	}
}

// workflowCallbackFilter filters callbacks that belong to workflows.
func (b *RateBot) workflowCallbackFilter(cq *tgbotapi.CallbackQuery) bool {
	return chat.IsWorkflowCallback(cq.Data)
}

// clearCallbackFilter filters the clear-table confirmation callbacks.
func (b *RateBot) clearCallbackFilter(cq *tgbotapi.CallbackQuery) bool {
	return strings.HasPrefix(cq.Data, "clr:")
}

// handleStart handles the /start command.
func (b *RateBot) handleStart(bot *tgbotapi.Bot, ctx *ext.Context) error {
	if b.engine == nil {
		b.log.Warn("workflow engine not initialized")
		return nil
	}

	userID := strconv.FormatInt(ctx.EffectiveUser.Id, 10)
	chatID := strconv.FormatInt(ctx.EffectiveChat.Id, 10)

	err := b.engine.StartWorkflow(context.Background(), b.messenger, platform, userID, chatID, mainmenu.WorkflowID)
	if err != nil {
		b.log.Error("failed to start workflow",
			slog.String("user_id", userID),
			sl.Err(err),
		)
		return err
	}

	return nil
}

// handleCallback handles inline keyboard callbacks for workflows.
func (b *RateBot) handleCallback(bot *tgbotapi.Bot, ctx *ext.Context) error {
	if b.engine == nil {
		return nil
	}

	// Stop the spinner regardless of what the workflow does.
	_, _ = ctx.CallbackQuery.Answer(bot, nil)

	userID := strconv.FormatInt(ctx.EffectiveUser.Id, 10)
	chatID := strconv.FormatInt(ctx.EffectiveChat.Id, 10)
	data := ctx.CallbackQuery.Data

	err := b.engine.HandleCallback(context.Background(), b.messenger, platform, userID, chatID, data)
	if err != nil {
		b.log.Error("workflow callback error",
			slog.String("user_id", userID),
			slog.String("data", data),
			sl.Err(err),
		)
	}
	return err
}

// handleMessage handles text messages for workflows.
func (b *RateBot) handleMessage(bot *tgbotapi.Bot, ctx *ext.Context) error {
	if b.engine == nil {
		return nil
	}

	userID := strconv.FormatInt(ctx.EffectiveUser.Id, 10)
	chatID := strconv.FormatInt(ctx.EffectiveChat.Id, 10)

	err := b.engine.HandleMessage(context.Background(), b.messenger, platform, userID, chatID, ctx.EffectiveMessage.Text)
	if err != nil {
		b.log.Error("workflow message error",
			slog.String("user_id", userID),
			sl.Err(err),
		)
	}
	return err
}

// handleDownload handles the admin /download command: a CSV snapshot of
// the whole table, delivered as a document.
func (b *RateBot) handleDownload(bot *tgbotapi.Bot, ctx *ext.Context) error {
	userID := ctx.EffectiveUser.Id
	chatID := strconv.FormatInt(ctx.EffectiveChat.Id, 10)

	if b.authService == nil || !b.authService.IsAdmin(userID) {
		return b.messenger.SendText(chatID, msgDenied)
	}

	videos, err := b.ratingService.AllVideos(context.Background())
	if err != nil {
		b.log.Error("export failed", sl.Err(err))
		return b.messenger.SendText(chatID, "Export failed. Please try again.")
	}

	data, err := export.BuildCSV(videos)
	if err != nil {
		b.log.Error("building csv", sl.Err(err))
		return b.messenger.SendText(chatID, "Export failed. Please try again.")
	}

	b.log.Info("table exported",
		slog.Int64("admin_id", userID),
		slog.Int("videos", len(videos)),
	)

	return b.messenger.SendFile(chatID, chat.FileMessage{
		Filename: export.Filename,
		Caption:  fmt.Sprintf("%d video(s)", len(videos)),
		Reader:   bytes.NewReader(data),
	})
}

// handleClear handles the admin /clear_table command with a confirmation
// prompt before anything is deleted.
func (b *RateBot) handleClear(bot *tgbotapi.Bot, ctx *ext.Context) error {
	userID := ctx.EffectiveUser.Id
	chatID := strconv.FormatInt(ctx.EffectiveChat.Id, 10)

	if b.authService == nil || !b.authService.IsAdmin(userID) {
		return b.messenger.SendText(chatID, msgDenied)
	}

	return b.messenger.SendInlineOptions(chatID,
		"This deletes every video and all ratings. Are you sure?",
		[]chat.InlineButton{
			{Text: "Yes, clear it", Data: clearConfirm},
			{Text: "Cancel", Data: clearCancel},
		})
}

// handleClearCallback completes or cancels the clear-table confirmation.
func (b *RateBot) handleClearCallback(bot *tgbotapi.Bot, ctx *ext.Context) error {
	userID := ctx.EffectiveUser.Id
	chatID := strconv.FormatInt(ctx.EffectiveChat.Id, 10)

	_, _ = ctx.CallbackQuery.Answer(bot, nil)

	// The buttons may be pressed by anyone who can see the chat;
	// re-check the capability before acting.
	if b.authService == nil || !b.authService.IsAdmin(userID) {
		return b.messenger.SendText(chatID, msgDenied)
	}

	if ctx.CallbackQuery.Data != clearConfirm {
		return b.messenger.SendText(chatID, "Cancelled.")
	}

	if err := b.ratingService.ClearAll(context.Background()); err != nil {
		b.log.Error("clearing table", sl.Err(err))
		return b.messenger.SendText(chatID, "Clearing failed. Please try again.")
	}

	b.log.Info("table cleared", slog.Int64("admin_id", userID))
	return b.messenger.SendText(chatID, "Table cleared 🗑")
}
