// Package bot wires the command handlers to Telegram.
package bot

import (
	"context"
	"fmt"
	"time"

	"weather-bot/dispatch"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

// Bot is a Telegram long-polling bot that also acts as the dispatcher's Sender
type Bot struct {
	tele   *tele.Bot
	logger *zap.SugaredLogger
	ctx    context.Context
	cancel context.CancelFunc
}

// New connects to Telegram with the given token
func New(token string, logger *zap.SugaredLogger) (*Bot, error) {
	ctx, cancel := context.WithCancel(context.Background())
	b := &Bot{
		logger: logger,
		ctx:    ctx,
		cancel: cancel,
	}

	tb, err := tele.NewBot(tele.Settings{
		Token:  token,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
		OnError: func(err error, c tele.Context) {
			if c != nil && c.Chat() != nil {
				logger.Errorw("telegram handler error", "chat_id", c.Chat().ID, "error", err)
				return
			}
			logger.Errorw("telegram error", "error", err)
		},
	})
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}
	b.tele = tb
	return b, nil
}

// Send delivers a plain text message to a chat
func (b *Bot) Send(ctx context.Context, chatID int64, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := b.tele.Send(tele.ChatID(chatID), text); err != nil {
		return fmt.Errorf("telegram send: %w", err)
	}
	return nil
}

// Register binds the /start, /forecast and /stop commands
func (b *Bot) Register(h *Handlers) {
	b.tele.Handle("/start", func(c tele.Context) error {
		reply, err := h.Start(c.Chat().ID)
		if err != nil {
			return err
		}
		return c.Send(reply)
	})

	b.tele.Handle("/forecast", func(c tele.Context) error {
		h.Forecast(b.ctx, c.Chat().ID)
		return nil
	})

	b.tele.Handle("/stop", func(c tele.Context) error {
		return c.Send(h.Stop(c.Chat().ID))
	})
}

// Start polls Telegram for updates; it blocks until Stop is called
func (b *Bot) Start() {
	b.logger.Infow("bot running", "username", b.tele.Me.Username)
	b.tele.Start()
}

// Stop ends polling and cancels in-flight sends
func (b *Bot) Stop() {
	b.cancel()
	b.tele.Stop()
}

var _ dispatch.Sender = (*Bot)(nil)
