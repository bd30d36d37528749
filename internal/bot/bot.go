// Package bot is the Telegram side: it registers subscribers via commands and
// delivers listing notifications.
package bot

import (
	"context"
	"fmt"
	"log/slog"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"golang.org/x/time/rate"

	"avito_bot/internal/model"
	"avito_bot/internal/storage"
)

type telegramAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// Bot handles user commands and sends listing notifications.
type Bot struct {
	api     telegramAPI
	store   storage.Storage
	limiter *rate.Limiter
	log     *slog.Logger
}

// New creates a Bot with the given Telegram token and storage.
func New(token string, store storage.Storage, log *slog.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create bot api: %w", err)
	}

	return &Bot{
		api:   api,
		store: store,
		// Telegram allows roughly 30 messages/sec overall; stay under it.
		limiter: rate.NewLimiter(rate.Limit(20), 1),
		log:     log,
	}, nil
}

// Run starts the bot's long-polling loop, blocking until ctx is cancelled.
func (b *Bot) Run(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return
		case update := <-updates:
			if update.Message == nil || !update.Message.IsCommand() {
				continue
			}
			b.handleCommand(ctx, update.Message)
		}
	}
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	cmd := msg.Command()

	b.log.Debug("command", "cmd", cmd, "chat_id", chatID)

	switch cmd {
	case "start":
		b.handleStart(ctx, chatID)
	case "help":
		b.reply(chatID, helpText)
	default:
		b.reply(chatID, "Неизвестная команда. Используйте /help.")
	}
}

func (b *Bot) handleStart(ctx context.Context, chatID int64) {
	if err := b.store.AddSubscriber(ctx, chatID); err != nil {
		b.log.Error("add subscriber", "chat_id", chatID, "error", err)
		b.reply(chatID, "Не удалось оформить подписку, попробуйте ещё раз.")
		return
	}
	b.reply(chatID, welcomeText)
}

// SendListing delivers a new-listing notification to one chat.
func (b *Bot) SendListing(chatID int64, l model.Listing) {
	b.send(chatID, FormatListing(l))
}

// SendRestartNotice warns a chat that the process restarted and recently seen
// listings may be announced again.
func (b *Bot) SendRestartNotice(chatID int64) {
	b.send(chatID, restartText)
}

func (b *Bot) reply(chatID int64, text string) {
	b.send(chatID, text)
}

func (b *Bot) send(chatID int64, text string) {
	if err := b.limiter.Wait(context.Background()); err != nil {
		return
	}

	msg := tgbotapi.NewMessage(chatID, text)
	msg.DisableWebPagePreview = true
	if _, err := b.api.Send(msg); err != nil {
		b.log.Error("send message", "chat_id", chatID, "error", err)
	}
}
