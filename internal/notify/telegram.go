// Package notify — уведомления админам в телеграм-канал. Без токена
// работает как заглушка.
package notify

import (
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"educrm/internal/models"
	"educrm/internal/observability"
	"educrm/internal/sales"
)

type Telegram struct {
	bot    *tgbotapi.BotAPI
	chatID int64
	log    *zap.SugaredLogger
}

// New возвращает nil при пустом токене; вызывающие обязаны это
// переживать.
func New(token string, chatID int64, log *zap.SugaredLogger) (*Telegram, error) {
	if token == "" || chatID == 0 {
		return nil, nil
	}
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram bot: %w", err)
	}
	return &Telegram{bot: bot, chatID: chatID, log: log}, nil
}

func (t *Telegram) ProposalStaged(table string, id, actorID int64) {
	t.send(fmt.Sprintf("Отложенная правка: %s #%d от воркера #%d ждёт подтверждения.", table, id, actorID))
}

func (t *Telegram) ConsultationSold(c *models.Consultation, r *sales.Result) {
	msg := fmt.Sprintf("Продажа: %s (курс #%d)", c.StudentName, c.CourseID)
	if r != nil && r.Group != nil {
		msg += fmt.Sprintf(", группа %q", r.Group.Name)
	}
	t.send(msg)
}

func (t *Telegram) send(text string) {
	_, err := t.bot.Send(tgbotapi.NewMessage(t.chatID, text))
	if err != nil {
		if isSystemErr(err) {
			observability.CaptureErr(err)
		}
		t.log.Warnw("телеграм-уведомление не ушло", "err", err)
	}
}

// Считаем системными: 5xx, 429, timeout. 400-ки и типичные
// телеграм-валидации в Sentry не шлём.
func isSystemErr(err error) bool {
	s := err.Error()
	return strings.Contains(s, "429") || strings.Contains(s, "502") ||
		strings.Contains(s, "503") || strings.Contains(s, "timeout")
}
