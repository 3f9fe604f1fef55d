package bot

import (
	"context"
	"errors"
	"fmt"
	"time"

	"weekly-planner/internal/model"
	"weekly-planner/internal/notify"
)

// Name implements notify.Sink.
func (b *Bot) Name() string { return "telegram" }

// Send implements notify.Sink. Users without a linked chat are skipped.
func (b *Bot) Send(ctx context.Context, n notify.Notification) error {
	user, err := b.userRepo.FindByID(ctx, n.UserID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil
		}
		return err
	}
	if user.TelegramChatID == nil {
		return nil
	}
	return b.sendText(*user.TelegramChatID, formatNotification(n, b.loc))
}

func formatNotification(n notify.Notification, loc *time.Location) string {
	title := escape(payloadString(n.Payload, "title"))
	switch n.Kind {
	case notify.KindAssigned:
		return fmt.Sprintf("📌 New task assigned to you: <b>%s</b>", title)
	case notify.KindReminder:
		due := payloadString(n.Payload, "dueAt")
		if ts, err := time.Parse(time.RFC3339, due); err == nil {
			due = ts.In(loc).Format("Mon 2006-01-02 15:04")
		}
		return fmt.Sprintf("⏰ Reminder: <b>%s</b> is due %s", title, escape(due))
	case notify.KindGenerated:
		if week := payloadString(n.Payload, "weekStart"); week != "" {
			return fmt.Sprintf("♻️ Recurring task <b>%s</b> scheduled for the week of %s", title, escape(week))
		}
		return fmt.Sprintf("✅ %s", title)
	default:
		return fmt.Sprintf("🔔 %s", title)
	}
}

func payloadString(payload map[string]any, key string) string {
	v, ok := payload[key]
	if !ok || v == nil {
		return ""
	}
	return fmt.Sprint(v)
}
