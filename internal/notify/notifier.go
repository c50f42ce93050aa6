package notify

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

// Notifier mirrors the toast boundary of the old site: a title plus a
// description, fire and forget.
type Notifier interface {
	Notify(title, description string)
}

// LogNotifier writes notifications to the application log. It is the default
// sink and always present so the core never checks for a nil notifier.
type LogNotifier struct {
	logger *zerolog.Logger
}

func NewLogNotifier(logger *zerolog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Notify(title, description string) {
	n.logger.Info().Str("title", title).Str("description", description).Msg("notification")
}

// TelegramNotifier pushes notifications to the admin chat.
type TelegramNotifier struct {
	bot    *tgbotapi.BotAPI
	chatID int64
	logger *zerolog.Logger
}

func NewTelegramNotifier(token string, chatID int64, logger *zerolog.Logger) (*TelegramNotifier, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}

	logger.Info().Str("bot", bot.Self.UserName).Msg("telegram notifier ready")
	return &TelegramNotifier{bot: bot, chatID: chatID, logger: logger}, nil
}

func (n *TelegramNotifier) Notify(title, description string) {
	msg := tgbotapi.NewMessage(n.chatID, fmt.Sprintf("*%s*\n%s", title, description))
	msg.ParseMode = tgbotapi.ModeMarkdown

	// Доставка не гарантируется, ошибку только логируем
	if _, err := n.bot.Send(msg); err != nil {
		n.logger.Error().Err(err).Str("title", title).Msg("telegram notify failed")
	}
}

// MultiNotifier fans a notification out to every sink.
type MultiNotifier struct {
	sinks []Notifier
}

func NewMultiNotifier(sinks ...Notifier) *MultiNotifier {
	out := make([]Notifier, 0, len(sinks))
	for _, s := range sinks {
		if s != nil {
			out = append(out, s)
		}
	}
	return &MultiNotifier{sinks: out}
}

func (n *MultiNotifier) Notify(title, description string) {
	for _, s := range n.sinks {
		s.Notify(title, description)
	}
}
