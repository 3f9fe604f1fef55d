package bot

import (
	"context"
	"errors"
	"fmt"
	"html"
	"log"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"weekly-planner/internal/calendar"
	"weekly-planner/internal/model"
	"weekly-planner/internal/render"
	"weekly-planner/internal/repository"
	"weekly-planner/internal/service"
)

const (
	cbCompletePrefix = "complete:"
)

const (
	iconPending    = "🟢"
	iconInProgress = "⏳"
	iconCompleted  = "✅"
	iconHigh       = "🔴"
)

// messenger is the part of the Telegram API the bot writes through.
type messenger interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// Bot aggregates Telegram API with services.
type Bot struct {
	api       *tgbotapi.BotAPI
	out       messenger
	userRepo  *repository.UserRepository
	taskSvc   *service.TaskService
	reportSvc *service.ReportService
	loc       *time.Location
	now       func() time.Time
}

func New(token string, userRepo *repository.UserRepository, taskSvc *service.TaskService, reportSvc *service.ReportService, loc *time.Location) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create bot api: %w", err)
	}

	log.Printf("[info] bot authorized on account %s", api.Self.UserName)

	if loc == nil {
		loc = time.Local
	}
	return &Bot{
		api:       api,
		out:       api,
		userRepo:  userRepo,
		taskSvc:   taskSvc,
		reportSvc: reportSvc,
		loc:       loc,
		now:       time.Now,
	}, nil
}

// Start begins polling updates until ctx is cancelled.
func (b *Bot) Start(ctx context.Context) error {
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60
	updates := b.api.GetUpdatesChan(updateConfig)

	log.Println("[info] start polling updates")

	go func() {
		<-ctx.Done()
		b.api.StopReceivingUpdates()
	}()

	for update := range updates {
		switch {
		case update.CallbackQuery != nil:
			if err := b.handleCallback(ctx, update.CallbackQuery); err != nil {
				log.Printf("handle callback: %v", err)
			}
		case update.Message != nil:
			if update.Message.Chat == nil || !update.Message.Chat.IsPrivate() {
				continue
			}
			if err := b.handleMessage(ctx, update.Message); err != nil {
				log.Printf("handle message: %v", err)
			}
		}
	}

	return nil
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) error {
	if msg.From == nil {
		return nil
	}
	if !msg.IsCommand() {
		return b.sendText(msg.Chat.ID, "I only understand commands. Try /help.")
	}

	log.Printf("[info] command from %d: /%s %s", msg.From.ID, msg.Command(), msg.CommandArguments())
	switch msg.Command() {
	case "start":
		return b.handleStart(ctx, msg)
	case "help":
		return b.handleHelp(msg)
	case "report":
		return b.handleReport(ctx, msg)
	case "week":
		return b.handleWeek(ctx, msg)
	case "done":
		return b.handleDone(ctx, msg)
	default:
		return b.sendText(msg.Chat.ID, "Unknown command. See /help.")
	}
}

// handleStart links the chat to the team member with the given email.
func (b *Bot) handleStart(ctx context.Context, msg *tgbotapi.Message) error {
	email := strings.ToLower(strings.TrimSpace(msg.CommandArguments()))
	if email == "" {
		name := strings.TrimSpace(msg.From.FirstName)
		if name == "" {
			name = "there"
		}
		return b.sendText(msg.Chat.ID, fmt.Sprintf(
			"👋 Hi, %s!\n<b>I keep your team's weekly plan in sight.</b>\n\n"+
				"Link this chat with your planner account:\n/start &lt;your email&gt;",
			escape(name),
		))
	}

	user, err := b.userRepo.LinkTelegram(ctx, email, msg.Chat.ID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return b.sendText(msg.Chat.ID, "No team member uses that email. Ask an admin to add you first.")
		}
		return err
	}
	log.Printf("[info] telegram chat linked user=%s", user.ID)
	return b.sendText(msg.Chat.ID, fmt.Sprintf("✅ Linked to <b>%s</b>. You will get assignments and reminders here.", escape(user.Name)))
}

func (b *Bot) handleHelp(msg *tgbotapi.Message) error {
	text := "ℹ️ <b>Commands</b>\n" +
		"• /start &lt;email&gt; - link this chat to your account\n" +
		"• /week [YYYY-MM-DD] - tasks of the week, tap to complete\n" +
		"• /report [YYYY-MM-DD] - weekly report summary\n" +
		"• /done &lt;task id&gt; - mark a task completed"
	return b.sendText(msg.Chat.ID, text)
}

func (b *Bot) handleReport(ctx context.Context, msg *tgbotapi.Message) error {
	raw := strings.TrimSpace(msg.CommandArguments())
	if raw == "" {
		raw = b.now().In(b.loc).Format(calendar.DateLayout)
	}
	report, err := b.reportSvc.BuildReport(ctx, raw)
	if err != nil {
		var verr *model.ValidationError
		if errors.As(err, &verr) {
			return b.sendText(msg.Chat.ID, "Use a date like /report 2023-10-02.")
		}
		return b.sendText(msg.Chat.ID, fmt.Sprintf("Could not build the report: %s", escape(err.Error())))
	}
	return b.sendMarkdown(msg.Chat.ID, render.Text(report))
}

func (b *Bot) handleWeek(ctx context.Context, msg *tgbotapi.Message) error {
	weekStart, tasks, err := b.taskSvc.ListWeek(ctx, msg.CommandArguments())
	if err != nil {
		var verr *model.ValidationError
		if errors.As(err, &verr) {
			return b.sendText(msg.Chat.ID, "Use a date like /week 2023-10-02.")
		}
		return b.sendText(msg.Chat.ID, fmt.Sprintf("Could not load tasks: %s", escape(err.Error())))
	}

	text := formatWeek(weekStart, tasks, b.loc)
	keyboard, ok := completeKeyboard(tasks)
	if !ok {
		return b.sendText(msg.Chat.ID, text)
	}
	return b.sendWithReplyMarkup(msg.Chat.ID, text, keyboard)
}

func (b *Bot) handleDone(ctx context.Context, msg *tgbotapi.Message) error {
	id := strings.TrimSpace(msg.CommandArguments())
	if id == "" {
		return b.sendText(msg.Chat.ID, "Give the task id: /done &lt;id&gt;")
	}
	return b.completeTask(ctx, msg.Chat.ID, id)
}

func (b *Bot) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) error {
	if cb == nil || cb.From == nil || cb.Message == nil {
		return nil
	}

	if _, err := b.out.Request(tgbotapi.NewCallback(cb.ID, "")); err != nil {
		log.Printf("callback ack: %v", err)
	}
	if !strings.HasPrefix(cb.Data, cbCompletePrefix) {
		return nil
	}
	log.Printf("[info] callback complete user=%d task=%s", cb.From.ID, strings.TrimPrefix(cb.Data, cbCompletePrefix))
	return b.completeTask(ctx, cb.Message.Chat.ID, strings.TrimPrefix(cb.Data, cbCompletePrefix))
}

func (b *Bot) completeTask(ctx context.Context, chatID int64, id string) error {
	status := model.StatusCompleted
	task, err := b.taskSvc.UpdateTask(ctx, id, service.TaskUpdate{Status: &status})
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return b.sendText(chatID, "Task not found.")
		}
		return b.sendText(chatID, fmt.Sprintf("Error: %s", escape(err.Error())))
	}
	log.Printf("[info] task completed via telegram id=%s", task.ID)
	return b.sendText(chatID, fmt.Sprintf("✅ Task «%s» completed.", escape(task.Title)))
}

// SendWeeklyReports sends last week's summary to every linked chat.
func (b *Bot) SendWeeklyReports(ctx context.Context) error {
	users, err := b.userRepo.ListAll(ctx)
	if err != nil {
		return err
	}
	lastWeek := calendar.Date(b.now().In(b.loc)).AddDate(0, 0, -7)
	report, err := b.reportSvc.Build(ctx, lastWeek)
	if err != nil {
		return err
	}
	text := render.Text(report)

	for _, user := range users {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if user.TelegramChatID == nil {
			continue
		}
		if err := b.sendMarkdown(*user.TelegramChatID, text); err != nil {
			log.Printf("send weekly report to %s: %v", user.ID, err)
		}
	}
	return nil
}

func (b *Bot) sendText(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	_, err := b.out.Send(msg)
	return err
}

// sendMarkdown falls back to plain text when Telegram rejects the markup, which happens
// for task titles with unbalanced markers.
func (b *Bot) sendMarkdown(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	if _, err := b.out.Send(msg); err == nil {
		return nil
	}
	msg.ParseMode = ""
	_, err := b.out.Send(msg)
	return err
}

func (b *Bot) sendWithReplyMarkup(chatID int64, text string, markup interface{}) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = markup
	_, err := b.out.Send(msg)
	return err
}

func completeKeyboard(tasks []model.Task) (tgbotapi.InlineKeyboardMarkup, bool) {
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, task := range tasks {
		if task.IsCompleted() {
			continue
		}
		label := fmt.Sprintf("%s %s", iconCompleted, shortTitle(task.Title, 32))
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label, cbCompletePrefix+task.ID),
		))
	}
	if len(rows) == 0 {
		return tgbotapi.InlineKeyboardMarkup{}, false
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...), true
}

func formatWeek(weekStart time.Time, tasks []model.Task, loc *time.Location) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("📋 <b>Week of %s</b>\n\n", weekStart.Format(calendar.DateLayout)))
	if len(tasks) == 0 {
		b.WriteString("No tasks planned for this week.")
		return b.String()
	}
	for _, task := range tasks {
		b.WriteString(formatTask(task, loc))
	}
	return strings.TrimSpace(b.String())
}

func formatTask(task model.Task, loc *time.Location) string {
	var b strings.Builder
	icon := iconPending
	switch task.Status {
	case model.StatusInProgress:
		icon = iconInProgress
	case model.StatusCompleted:
		icon = iconCompleted
	}
	b.WriteString(fmt.Sprintf("%s <b>%s</b>", icon, escape(task.Title)))
	if task.Priority == model.PriorityHigh {
		b.WriteString(" " + iconHigh)
	}
	b.WriteByte('\n')
	b.WriteString(fmt.Sprintf("   ⏰ Due: %s\n", task.DueAt.In(loc).Format("Mon 2006-01-02 15:04")))
	if len(task.Assignees) > 0 {
		names := make([]string, 0, len(task.Assignees))
		for _, u := range task.Assignees {
			names = append(names, escape(u.Name))
		}
		b.WriteString(fmt.Sprintf("   👥 %s\n", strings.Join(names, ", ")))
	}
	b.WriteString(fmt.Sprintf("   🆔 <code>%s</code>\n", task.ID))
	b.WriteByte('\n')
	return b.String()
}

func shortTitle(title string, maxLen int) string {
	clean := strings.TrimSpace(strings.ReplaceAll(title, "\n", " "))
	runes := []rune(clean)
	if len(runes) <= maxLen {
		return clean
	}
	if maxLen <= 1 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-1]) + "…"
}

func escape(s string) string {
	return html.EscapeString(s)
}
