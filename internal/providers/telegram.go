package providers

import (
	"context"
	"fmt"

	"github.com/go-telegram/bot"
	botmodels "github.com/go-telegram/bot/models"
	"golang.org/x/time/rate"
	"telemetry-service/internal/config"
	"telemetry-service/internal/models"
)

// Telegram posts alert messages to a single configured chat.
type Telegram struct {
	bot     *bot.Bot
	chatID  string
	limiter *rate.Limiter
}

func NewTelegram(cfg config.Config) (*Telegram, error) {
	if !cfg.TelegramEnabled() {
		return nil, fmt.Errorf("missing Telegram configuration: TELEGRAM_BOT_TOKEN or TELEGRAM_CHAT_ID is empty")
	}
	b, err := bot.New(cfg.Telegram.BotToken,
		bot.WithSkipGetMe(),
		bot.WithServerURL(cfg.Telegram.ServerURL),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Telegram bot: %w", err)
	}
	perSecond := cfg.Telegram.RatePerSecond
	return &Telegram{
		bot:     b,
		chatID:  cfg.Telegram.ChatID,
		limiter: rate.NewLimiter(rate.Limit(float64(perSecond)), perSecond),
	}, nil
}

func (t *Telegram) Name() string { return "telegram" }

// Send makes a single delivery attempt.
func (t *Telegram) Send(ctx context.Context, alert models.Alert) error {
	if err := t.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("telegram rate limit exceeded: %w", err)
	}
	params := &bot.SendMessageParams{
		ChatID:    t.chatID,
		Text:      alert.Message,
		ParseMode: botmodels.ParseModeHTML,
	}
	if _, err := t.bot.SendMessage(ctx, params); err != nil {
		return fmt.Errorf("failed to send Telegram message to chat_id %s: %w", t.chatID, err)
	}
	return nil
}
