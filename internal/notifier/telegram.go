package notifier

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// maxMessageLen is Telegram's limit for one text message.
const maxMessageLen = 4096

// Sender is the part of the bot API used for outgoing messages.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// TelegramNotifier sends HTML messages via the Telegram Bot API.
type TelegramNotifier struct {
	ChatID int64
	bot    Sender
	api    *tgbotapi.BotAPI // nil when built from a bare Sender
	logger zerolog.Logger
}

// NewTelegramNotifier authenticates the bot, with optional proxy support.
func NewTelegramNotifier(botToken string, chatID int64, proxyURL string) (*TelegramNotifier, error) {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	client := &http.Client{Timeout: 60 * time.Second, Transport: transport}
	api, err := tgbotapi.NewBotAPIWithClient(botToken, tgbotapi.APIEndpoint, client)
	if err != nil {
		return nil, fmt.Errorf("telegram auth: %w", err)
	}
	n := NewTelegramNotifierWithSender(api, chatID)
	n.api = api
	n.logger.Info().Str("bot", api.Self.UserName).Msg("telegram authorized")
	return n, nil
}

// NewTelegramNotifierWithSender wraps an existing sender.
func NewTelegramNotifierWithSender(s Sender, chatID int64) *TelegramNotifier {
	return &TelegramNotifier{
		ChatID: chatID,
		bot:    s,
		logger: log.With().Str("component", "telegram").Logger(),
	}
}

// Send sends a message to the configured chat.
func (t *TelegramNotifier) Send(text string) error {
	return t.SendTo(t.ChatID, text)
}

// SendTo sends text to chatID, split into chunks that fit one message.
func (t *TelegramNotifier) SendTo(chatID int64, text string) error {
	for _, chunk := range splitMessage(text, maxMessageLen) {
		msg := tgbotapi.NewMessage(chatID, chunk)
		msg.ParseMode = tgbotapi.ModeHTML
		msg.DisableWebPagePreview = true
		if _, err := t.bot.Send(msg); err != nil {
			return fmt.Errorf("send message: %w", err)
		}
	}
	return nil
}

// SendWithRetry sends a message with exponential backoff retry.
func (t *TelegramNotifier) SendWithRetry(ctx context.Context, text string, maxRetries int) error {
	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = time.Second
	eb.MaxElapsedTime = 2 * time.Minute
	policy := backoff.WithContext(backoff.WithMaxRetries(eb, uint64(maxRetries)), ctx)

	attempt := 0
	err := backoff.RetryNotify(func() error {
		attempt++
		return t.Send(text)
	}, policy, func(err error, wait time.Duration) {
		t.logger.Warn().Err(err).Int("attempt", attempt).Dur("retry_in", wait).Msg("telegram send failed")
	})
	if err != nil {
		return fmt.Errorf("send after %d attempts: %w", attempt, err)
	}
	return nil
}

// splitMessage cuts text on line boundaries so each part is at most limit bytes.
func splitMessage(text string, limit int) []string {
	if len(text) <= limit {
		return []string{text}
	}
	var parts []string
	var cur strings.Builder
	for _, line := range strings.SplitAfter(text, "\n") {
		for len(line) > limit {
			if cur.Len() > 0 {
				parts = append(parts, cur.String())
				cur.Reset()
			}
			parts = append(parts, line[:limit])
			line = line[limit:]
		}
		if cur.Len()+len(line) > limit {
			parts = append(parts, cur.String())
			cur.Reset()
		}
		cur.WriteString(line)
	}
	if cur.Len() > 0 {
		parts = append(parts, cur.String())
	}
	return parts
}
