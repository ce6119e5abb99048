package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	"trackit/internal/config"
	"trackit/internal/model"
	"trackit/internal/service"
	"trackit/internal/store"
)

type conversationStage int

const (
	stageNone conversationStage = iota
	stageName
	stagePoints
	stageRecurring
)

const (
	cbTogglePrefix = "toggle:"
	cbDeletePrefix = "delete:"
	cbDayPrefix    = "day:"
)

type conversationState struct {
	stage conversationStage
	input service.TaskInput
}

type confirmationRequest struct {
	taskID uint
	day    model.Date
}

// Bot aggregates Telegram API with services.
type Bot struct {
	api           *tgbotapi.BotAPI
	taskSvc       *service.TaskService
	reminderSvc   *service.ReminderService
	selector      *service.Selector[int64]
	config        *config.Config
	log           logrus.FieldLogger
	conversations map[int64]*conversationState
	confirmations map[int64]confirmationRequest
	reportChatID  int64
	mu            sync.Mutex
}

func New(cfg *config.Config, taskSvc *service.TaskService, reminderSvc *service.ReminderService, log logrus.FieldLogger) (*Bot, error) {
	if err := cfg.RequireTelegram(); err != nil {
		return nil, err
	}
	api, err := tgbotapi.NewBotAPI(cfg.TelegramToken)
	if err != nil {
		return nil, fmt.Errorf("create bot api: %w", err)
	}

	log.WithField("account", api.Self.UserName).Info("bot authorized")

	return &Bot{
		api:           api,
		taskSvc:       taskSvc,
		reminderSvc:   reminderSvc,
		selector:      service.NewSelector[int64](),
		config:        cfg,
		log:           log,
		conversations: make(map[int64]*conversationState),
		confirmations: make(map[int64]confirmationRequest),
		reportChatID:  cfg.TelegramChatID,
	}, nil
}

// Start begins polling updates until ctx is cancelled.
func (b *Bot) Start(ctx context.Context) error {
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60
	updates := b.api.GetUpdatesChan(updateConfig)

	b.log.Info("start polling updates")

	go func() {
		<-ctx.Done()
		b.api.StopReceivingUpdates()
	}()

	for update := range updates {
		switch {
		case update.CallbackQuery != nil:
			if err := b.handleCallback(ctx, update.CallbackQuery); err != nil {
				b.log.WithError(err).Error("handle callback")
			}
		case update.Message != nil:
			if update.Message.Chat == nil || !update.Message.Chat.IsPrivate() {
				continue
			}
			if err := b.handleMessage(ctx, update.Message); err != nil {
				b.log.WithError(err).Error("handle message")
			}
		}
	}

	return ctx.Err()
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) error {
	if msg.From == nil {
		return nil
	}

	if !msg.IsCommand() && isCancelDialogInput(msg.Text) {
		b.clearConversation(msg.From.ID)
		b.clearConfirmation(msg.From.ID)
		return b.sendText(msg.Chat.ID, "⏪ Cancelled.")
	}

	if !msg.IsCommand() {
		if handled, err := b.handleMenuAlias(ctx, msg); handled {
			return err
		}
	}

	if msg.IsCommand() {
		b.log.WithFields(logrus.Fields{"chat_id": msg.Chat.ID, "command": msg.Command()}).Debug("command received")
		return b.handleCommand(ctx, msg)
	}

	if pending, ok := b.getConfirmation(msg.From.ID); ok {
		return b.handleConfirmationResponse(ctx, msg, pending)
	}

	if b.hasConversation(msg.From.ID) {
		return b.handleConversation(ctx, msg)
	}

	return b.sendText(msg.Chat.ID, "I did not get that. Send /newtask to add a task or /help for the command list.")
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) error {
	args := strings.TrimSpace(msg.CommandArguments())
	switch msg.Command() {
	case "start":
		return b.handleStart(msg)
	case "help":
		return b.sendText(msg.Chat.ID, helpText)
	case "tasks":
		day := b.selectedDay(msg.Chat.ID)
		if args != "" {
			parsed, err := model.ParseDate(args)
			if err != nil {
				return b.sendText(msg.Chat.ID, "Use the date format <code>2024-01-31</code>.")
			}
			day = parsed
		}
		return b.sendDay(ctx, msg.Chat.ID, day)
	case "date":
		day, err := model.ParseDate(args)
		if err != nil {
			return b.sendText(msg.Chat.ID, "Use /date <code>2024-01-31</code>.")
		}
		return b.sendDay(ctx, msg.Chat.ID, day)
	case "today":
		return b.sendDay(ctx, msg.Chat.ID, b.today())
	case "prev":
		return b.sendDay(ctx, msg.Chat.ID, b.selectedDay(msg.Chat.ID).AddDays(-1))
	case "next":
		return b.sendDay(ctx, msg.Chat.ID, b.selectedDay(msg.Chat.ID).AddDays(1))
	case "newtask":
		return b.startNewTaskConversation(msg)
	case "complete":
		return b.handleSetCompleted(ctx, msg, true)
	case "undo":
		return b.handleSetCompleted(ctx, msg, false)
	case "edit":
		return b.handleEdit(ctx, msg)
	case "delete":
		return b.handleDelete(ctx, msg)
	case "stats":
		return b.handleStats(ctx, msg.Chat.ID)
	case "report":
		return b.handleReport(ctx, msg.Chat.ID)
	case "cancel":
		b.clearConversation(msg.From.ID)
		b.clearConfirmation(msg.From.ID)
		return b.sendText(msg.Chat.ID, "⏪ Cancelled.")
	default:
		return b.sendText(msg.Chat.ID, "Unknown command. See /help.")
	}
}

const helpText = "ℹ️ <b>Commands</b>\n" +
	"• /tasks [date]: tasks for the selected day (or the given one)\n" +
	"• /today, /prev, /next: move between days\n" +
	"• /date &lt;YYYY-MM-DD&gt;: jump to a day\n" +
	"• /newtask: add a task for the selected day\n" +
	"• /complete &lt;id&gt; and /undo &lt;id&gt;: change completion\n" +
	"• /edit &lt;id&gt; &lt;points&gt; &lt;name&gt;: rename and re-score a task\n" +
	"• /delete &lt;id&gt;: delete a task\n" +
	"• /stats: points history\n" +
	"• /report: today's report\n" +
	"• /cancel: cancel the current input"

func (b *Bot) handleStart(msg *tgbotapi.Message) error {
	b.mu.Lock()
	if b.reportChatID == 0 {
		b.reportChatID = msg.Chat.ID
	}
	b.mu.Unlock()

	name := strings.TrimSpace(msg.From.FirstName)
	if name == "" {
		name = "there"
	}
	text := fmt.Sprintf("👋 Hi, %s!\n<b>I track your daily tasks and the points you earn.</b>\n\n%s", escape(name), helpText)
	return b.sendText(msg.Chat.ID, text)
}

func (b *Bot) handleReport(ctx context.Context, chatID int64) error {
	text, err := b.reminderSvc.DailySummary(ctx, b.today())
	if err != nil {
		return b.sendText(chatID, fmt.Sprintf("Could not build the report: %s", escape(err.Error())))
	}
	return b.sendText(chatID, text)
}

func (b *Bot) handleStats(ctx context.Context, chatID int64) error {
	analytics, err := b.taskSvc.Analytics(ctx)
	if err != nil {
		return b.sendText(chatID, fmt.Sprintf("Could not load analytics: %s", escape(err.Error())))
	}
	return b.sendText(chatID, formatStats(analytics, statsDays))
}

func (b *Bot) startNewTaskConversation(msg *tgbotapi.Message) error {
	day := b.selectedDay(msg.Chat.ID)
	b.setConversation(msg.From.ID, &conversationState{stage: stageName, input: service.TaskInput{Date: day}})
	text := fmt.Sprintf("🆕 New task for %s.\n<b>Step 1:</b> what is it called?", formatDayTitle(day))
	return b.sendWithReplyMarkup(msg.Chat.ID, text, cancelKeyboard())
}

func (b *Bot) handleConversation(ctx context.Context, msg *tgbotapi.Message) error {
	state := b.getConversation(msg.From.ID)
	if state == nil {
		return nil
	}

	text := strings.TrimSpace(msg.Text)
	switch state.stage {
	case stageName:
		name, err := service.ValidateName(text)
		if err != nil {
			return b.sendWithReplyMarkup(msg.Chat.ID, "The name cannot be empty. What is the task called?", cancelKeyboard())
		}
		state.input.Name = name
		state.stage = stagePoints
		return b.sendWithReplyMarkup(msg.Chat.ID, "🎯 How many points is it worth? (steps of 0.5)", pointsKeyboard())
	case stagePoints:
		points, err := parsePoints(text)
		if err != nil {
			return b.sendWithReplyMarkup(msg.Chat.ID, "Points must be a positive multiple of 0.5, for example 1 or 2.5.", pointsKeyboard())
		}
		state.input.Points = points
		state.stage = stageRecurring
		return b.sendWithReplyMarkup(msg.Chat.ID, "🔁 Repeat it every day from this date on?", yesNoKeyboard())
	case stageRecurring:
		switch strings.ToLower(text) {
		case "yes", "y", strings.ToLower(btnYes):
			state.input.Recurring = true
		case "no", "n", "-", strings.ToLower(btnNo):
			state.input.Recurring = false
		default:
			return b.sendWithReplyMarkup(msg.Chat.ID, "Tap «Yes» or «No».", yesNoKeyboard())
		}
		input := state.input
		b.clearConversation(msg.From.ID)
		return b.finishTaskCreation(ctx, msg.Chat.ID, input)
	default:
		b.clearConversation(msg.From.ID)
		return b.sendText(msg.Chat.ID, "Input reset. Start again with /newtask.")
	}
}

func (b *Bot) finishTaskCreation(ctx context.Context, chatID int64, input service.TaskInput) error {
	task, err := b.taskSvc.CreateTask(ctx, input)
	if err != nil {
		return b.sendTextWithRemove(chatID, fmt.Sprintf("Could not save the task: %s", escape(err.Error())))
	}

	base := task.Base()
	var summary strings.Builder
	summary.WriteString("✅ <b>Task saved</b>\n")
	summary.WriteString(fmt.Sprintf("• <b>ID:</b> %d\n", base.ID))
	summary.WriteString(fmt.Sprintf("• <b>Name:</b> %s\n", escape(base.Name)))
	summary.WriteString(fmt.Sprintf("• <b>Points:</b> %s\n", service.FormatPoints(base.Points)))
	if tmpl, ok := task.(model.Template); ok {
		summary.WriteString(fmt.Sprintf("• <b>Repeats:</b> daily from %s\n", tmpl.StartDate))
	}
	if err := b.sendTextWithRemove(chatID, strings.TrimSpace(summary.String())); err != nil {
		return err
	}
	return b.sendDay(ctx, chatID, input.Date)
}

func (b *Bot) handleSetCompleted(ctx context.Context, msg *tgbotapi.Message, completed bool) error {
	taskID, err := parseTaskID(msg.CommandArguments(), "")
	if err != nil {
		return b.sendText(msg.Chat.ID, fmt.Sprintf("Give the task ID: /%s 12", msg.Command()))
	}
	inst, err := b.taskSvc.SetCompleted(ctx, taskID, completed)
	if err != nil {
		return b.sendText(msg.Chat.ID, describeError(err))
	}
	if completed {
		return b.sendText(msg.Chat.ID, fmt.Sprintf("✅ «%s» done, +%s pts.", escape(inst.Name), service.FormatPoints(inst.Points)))
	}
	return b.sendText(msg.Chat.ID, fmt.Sprintf("↩️ «%s» is open again.", escape(inst.Name)))
}

func (b *Bot) handleEdit(ctx context.Context, msg *tgbotapi.Message) error {
	taskID, points, name, err := parseEditArgs(msg.CommandArguments())
	if err != nil {
		return b.sendText(msg.Chat.ID, "Use /edit &lt;id&gt; &lt;points&gt; &lt;name&gt;, for example /edit 12 1.5 Read a chapter")
	}
	if err := b.taskSvc.UpdateDetails(ctx, taskID, name, points); err != nil {
		return b.sendText(msg.Chat.ID, describeError(err))
	}
	return b.sendText(msg.Chat.ID, fmt.Sprintf("✏️ Task #%d is now «%s» (%s pts).", taskID, escape(strings.TrimSpace(name)), service.FormatPoints(points)))
}

// handleDelete asks for confirmation before deleting.
func (b *Bot) handleDelete(ctx context.Context, msg *tgbotapi.Message) error {
	taskID, err := parseTaskID(msg.CommandArguments(), "")
	if err != nil {
		return b.sendText(msg.Chat.ID, "Give the task ID: /delete 12")
	}
	return b.askDeleteConfirmation(ctx, msg.Chat.ID, msg.From, taskID)
}

func (b *Bot) handleConfirmationResponse(ctx context.Context, msg *tgbotapi.Message, req confirmationRequest) error {
	text := strings.TrimSpace(msg.Text)
	switch {
	case isConfirmInput(text):
		b.clearConfirmation(msg.From.ID)
		return b.deleteTaskAndRefresh(ctx, msg.Chat.ID, req)
	case isCancelInput(text):
		b.clearConfirmation(msg.From.ID)
		return b.sendText(msg.Chat.ID, "Kept the task.")
	default:
		return b.sendWithReplyMarkup(msg.Chat.ID, "Confirm or cancel the deletion.", confirmKeyboard())
	}
}

// SendDailyReport sends today's report to the configured chat, or to the chat that last
// used /start.
func (b *Bot) SendDailyReport(ctx context.Context) error {
	b.mu.Lock()
	chatID := b.reportChatID
	b.mu.Unlock()
	if chatID == 0 {
		b.log.Debug("no report chat yet, skipping daily report")
		return nil
	}

	text, err := b.reminderSvc.DailySummary(ctx, b.today())
	if err != nil {
		return fmt.Errorf("build daily report: %w", err)
	}
	if err := b.sendText(chatID, text); err != nil {
		return fmt.Errorf("send daily report: %w", err)
	}
	return nil
}

// sendDay selects day for the chat, materializes and lists it, and renders the result
// unless a newer selection arrived in the meantime.
func (b *Bot) sendDay(ctx context.Context, chatID int64, day model.Date) error {
	ticket := b.selector.Select(ctx, chatID, day)
	defer b.selector.Release(ticket)

	tasks, err := b.taskSvc.EnsureAndListTasks(ticket.Context(), day)
	if !ticket.Current() {
		b.log.WithFields(logrus.Fields{"chat_id": chatID, "date": day.String()}).Debug("dropping superseded day view")
		return nil
	}
	if err != nil {
		return b.sendText(chatID, fmt.Sprintf("Could not load tasks for %s: %s", day, escape(err.Error())))
	}

	progress := b.taskSvc.ComputeProgress(tasks)
	msg := tgbotapi.NewMessage(chatID, formatDay(day, tasks, progress))
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = dayKeyboard(day, tasks)
	_, err = b.api.Send(msg)
	return err
}

func (b *Bot) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) error {
	if cb == nil || cb.From == nil || cb.Message == nil {
		return nil
	}

	if _, err := b.api.Request(tgbotapi.NewCallback(cb.ID, "")); err != nil {
		b.log.WithError(err).Warn("callback ack")
	}

	chatID := cb.Message.Chat.ID
	data := cb.Data
	switch {
	case strings.HasPrefix(data, cbTogglePrefix):
		taskID, err := parseTaskID(data, cbTogglePrefix)
		if err != nil {
			return nil
		}
		return b.toggleAndRefresh(ctx, chatID, taskID)
	case strings.HasPrefix(data, cbDeletePrefix):
		taskID, err := parseTaskID(data, cbDeletePrefix)
		if err != nil {
			return nil
		}
		return b.askDeleteConfirmation(ctx, chatID, cb.From, taskID)
	case strings.HasPrefix(data, cbDayPrefix):
		day, err := model.ParseDate(strings.TrimPrefix(data, cbDayPrefix))
		if err != nil {
			return nil
		}
		return b.sendDay(ctx, chatID, day)
	default:
		return nil
	}
}

func (b *Bot) toggleAndRefresh(ctx context.Context, chatID int64, taskID uint) error {
	task, err := b.taskSvc.GetTask(ctx, taskID)
	if err != nil {
		return b.sendText(chatID, describeError(err))
	}
	inst, ok := task.(model.Instance)
	if !ok {
		return b.sendText(chatID, describeError(service.ErrTemplateHasNoCompletion))
	}
	if _, err := b.taskSvc.SetCompleted(ctx, taskID, !inst.Completed); err != nil {
		return b.sendText(chatID, describeError(err))
	}
	return b.sendDay(ctx, chatID, inst.Date)
}

func (b *Bot) askDeleteConfirmation(ctx context.Context, chatID int64, from *tgbotapi.User, taskID uint) error {
	task, err := b.taskSvc.GetTask(ctx, taskID)
	if err != nil {
		return b.sendText(chatID, describeError(err))
	}

	base := task.Base()
	req := confirmationRequest{taskID: base.ID, day: b.selectedDay(chatID)}
	text := fmt.Sprintf("Delete «%s» (#%d)?", escape(base.Name), base.ID)
	switch t := task.(type) {
	case model.Template:
		text += "\nIt stops repeating. Tasks already created from it stay."
	case model.Instance:
		req.day = t.Date
		if t.FromTemplate() {
			text += "\nIt is removed for this day only and will not come back."
		}
	}
	b.setConfirmation(from.ID, req)
	return b.sendWithReplyMarkup(chatID, text, confirmKeyboard())
}

func (b *Bot) deleteTaskAndRefresh(ctx context.Context, chatID int64, req confirmationRequest) error {
	mode, err := b.taskSvc.DeleteTask(ctx, req.taskID)
	if err != nil {
		return b.sendTextWithRemove(chatID, describeError(err))
	}

	text := fmt.Sprintf("🗑 Task #%d deleted.", req.taskID)
	if mode == service.DeleteSoft {
		text = fmt.Sprintf("🗑 Task #%d removed for this day.", req.taskID)
	}
	if err := b.sendTextWithRemove(chatID, text); err != nil {
		return err
	}
	return b.sendDay(ctx, chatID, req.day)
}

func (b *Bot) handleMenuAlias(ctx context.Context, msg *tgbotapi.Message) (bool, error) {
	text := strings.TrimSpace(strings.ToLower(msg.Text))
	switch text {
	case strings.ToLower(menuLabelNewTask):
		return true, b.startNewTaskConversation(msg)
	case strings.ToLower(menuLabelToday):
		return true, b.sendDay(ctx, msg.Chat.ID, b.today())
	case strings.ToLower(menuLabelStats):
		return true, b.handleStats(ctx, msg.Chat.ID)
	case strings.ToLower(menuLabelHelp):
		return true, b.sendText(msg.Chat.ID, helpText)
	default:
		return false, nil
	}
}

func (b *Bot) today() model.Date {
	return model.DateOf(time.Now().In(b.config.Location))
}

func (b *Bot) selectedDay(chatID int64) model.Date {
	if day, ok := b.selector.Selected(chatID); ok {
		return day
	}
	return b.today()
}

func (b *Bot) sendText(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = mainMenuKeyboard()
	_, err := b.api.Send(msg)
	return err
}

func (b *Bot) sendTextWithRemove(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = tgbotapi.NewRemoveKeyboard(true)
	_, err := b.api.Send(msg)
	return err
}

func (b *Bot) sendWithReplyMarkup(chatID int64, text string, markup interface{}) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = markup
	_, err := b.api.Send(msg)
	return err
}

func (b *Bot) getConfirmation(userID int64) (confirmationRequest, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	req, ok := b.confirmations[userID]
	return req, ok
}

func (b *Bot) setConfirmation(userID int64, req confirmationRequest) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.confirmations[userID] = req
}

func (b *Bot) clearConfirmation(userID int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.confirmations, userID)
}

func (b *Bot) setConversation(userID int64, state *conversationState) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.conversations[userID] = state
}

func (b *Bot) getConversation(userID int64) *conversationState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.conversations[userID]
}

func (b *Bot) hasConversation(userID int64) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.conversations[userID]
	return ok
}

func (b *Bot) clearConversation(userID int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.conversations, userID)
}

// describeError turns service errors into a user-facing line.
func describeError(err error) string {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return "Task not found."
	case errors.Is(err, service.ErrTemplateHasNoCompletion):
		return "Recurring templates cannot be completed; complete the task for a specific day."
	case errors.Is(err, service.ErrValidation):
		return escape(strings.TrimPrefix(err.Error(), service.ErrValidation.Error()+": "))
	case errors.Is(err, store.ErrUnavailable):
		return "The task store is unavailable right now, try again later."
	default:
		return fmt.Sprintf("Error: %s", escape(err.Error()))
	}
}

func parseTaskID(data, prefix string) (uint, error) {
	raw := strings.TrimSpace(strings.TrimPrefix(data, prefix))
	value, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, err
	}
	return uint(value), nil
}

func parsePoints(raw string) (float64, error) {
	points, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(raw), ",", "."), 64)
	if err != nil {
		return 0, err
	}
	if err := service.ValidatePoints(points); err != nil {
		return 0, err
	}
	return points, nil
}

// parseEditArgs splits "<id> <points> <name...>".
func parseEditArgs(args string) (uint, float64, string, error) {
	fields := strings.Fields(args)
	if len(fields) < 3 {
		return 0, 0, "", fmt.Errorf("expected id, points and name")
	}
	taskID, err := parseTaskID(fields[0], "")
	if err != nil {
		return 0, 0, "", err
	}
	points, err := parsePoints(fields[1])
	if err != nil {
		return 0, 0, "", err
	}
	return taskID, points, strings.Join(fields[2:], " "), nil
}
