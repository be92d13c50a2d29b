package notifier

import (
	"context"
	"errors"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// CommandHandler is called when a user command is received. command is the
// lower-cased name without the leading slash or bot mention; args holds the
// remaining words.
type CommandHandler func(ctx context.Context, command string, args []string) string

// ParseCommand splits "/analyze@MyBot tcs" into ("analyze", ["tcs"]).
// Plain text without a slash yields an empty command.
func ParseCommand(text string) (string, []string) {
	fields := strings.Fields(strings.TrimSpace(text))
	if len(fields) == 0 || !strings.HasPrefix(fields[0], "/") {
		return "", nil
	}
	cmd := strings.TrimPrefix(fields[0], "/")
	if i := strings.IndexByte(cmd, '@'); i >= 0 {
		cmd = cmd[:i]
	}
	return strings.ToLower(cmd), fields[1:]
}

// HandleUpdate runs handler for a message update and replies in the same chat.
func (t *TelegramNotifier) HandleUpdate(ctx context.Context, update tgbotapi.Update, handler CommandHandler) {
	if update.Message == nil || update.Message.Text == "" {
		return
	}
	cmd, args := ParseCommand(update.Message.Text)
	if cmd == "" {
		return
	}
	t.logger.Info().Str("command", cmd).Strs("args", args).Int64("chat", update.Message.Chat.ID).Msg("received command")
	reply := handler(ctx, cmd, args)
	if reply == "" {
		return
	}
	if err := t.SendTo(update.Message.Chat.ID, reply); err != nil {
		t.logger.Error().Err(err).Msg("send reply")
	}
}

// StartPolling begins long-polling for Telegram commands. Blocks until ctx is cancelled.
func (t *TelegramNotifier) StartPolling(ctx context.Context, handler CommandHandler) error {
	if t.api == nil {
		return errors.New("polling requires a bot API client")
	}
	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = 30
	updates := t.api.GetUpdatesChan(cfg)

	for {
		select {
		case <-ctx.Done():
			t.api.StopReceivingUpdates()
			t.logger.Info().Msg("telegram polling stopped")
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			go t.HandleUpdate(ctx, update, handler)
		}
	}
}
