package bot

import (
	"context"
	"fmt"

	"weather-bot/dispatch"

	"go.uber.org/zap"
)

// Replies sent by the command handlers
const (
	StartedReply      = "Weather bot started! You will receive daily updates."
	StoppedReply      = "Daily updates stopped."
	NotSubscribedText = "You are not subscribed to daily updates."
)

// Forecaster sends the reports of every configured city to a chat
type Forecaster interface {
	SendForecasts(ctx context.Context, chatID int64) dispatch.Result
}

// Subscriptions manages the daily push per chat
type Subscriptions interface {
	Subscribe(chatID int64) error
	Unsubscribe(chatID int64) bool
}

// Handlers implements the bot commands independently of the Telegram client
type Handlers struct {
	forecaster    Forecaster
	subscriptions Subscriptions
	logger        *zap.SugaredLogger
}

// NewHandlers creates the command handlers
func NewHandlers(forecaster Forecaster, subscriptions Subscriptions, logger *zap.SugaredLogger) *Handlers {
	return &Handlers{
		forecaster:    forecaster,
		subscriptions: subscriptions,
		logger:        logger,
	}
}

// Start subscribes the chat to the daily push and returns the reply text
func (h *Handlers) Start(chatID int64) (string, error) {
	h.logger.Infow("received /start", "chat_id", chatID)
	if err := h.subscriptions.Subscribe(chatID); err != nil {
		return "", fmt.Errorf("subscribe chat %d: %w", chatID, err)
	}
	return StartedReply, nil
}

// Forecast sends the current reports to the chat
func (h *Handlers) Forecast(ctx context.Context, chatID int64) dispatch.Result {
	h.logger.Infow("received /forecast", "chat_id", chatID)
	return h.forecaster.SendForecasts(ctx, chatID)
}

// Stop removes the chat's daily push and returns the reply text
func (h *Handlers) Stop(chatID int64) string {
	h.logger.Infow("received /stop", "chat_id", chatID)
	if !h.subscriptions.Unsubscribe(chatID) {
		return NotSubscribedText
	}
	return StoppedReply
}

// DailyJob is the scheduler callback: the same send loop as /forecast
func (h *Handlers) DailyJob(ctx context.Context, chatID int64) {
	h.forecaster.SendForecasts(ctx, chatID)
}
