package telegram

import (
	"context"
	"fmt"
	"html"
	"log/slog"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/opsbot/opsbot/internal/auth"
	"github.com/opsbot/opsbot/internal/session"
	"github.com/opsbot/opsbot/internal/systems"
)

const (
	simulateCmd = "simulate"
	reloadCmd   = "reload"
)

const helpText = `Ask me anything about your system status!

/status [filter] - systems and quick stats
/simulate - simulate system updates
/reload - reload systems from the source file
/history - last answers
/reset - forget this chat's state

Try: "Which servers are down?" or "Any service with memory usage over 80%?"`

type Bot struct {
	api      *tgbotapi.BotAPI
	s        sender
	authSvc  *auth.Service
	sessions *session.Manager
}

func New(botToken string, authSvc *auth.Service, sessions *session.Manager) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, fmt.Errorf("connect telegram: %w", err)
	}
	return &Bot{
		api:      api,
		s:        botAPISender{api: api},
		authSvc:  authSvc,
		sessions: sessions,
	}, nil
}

// Start polls for updates until ctx is cancelled.
func (b *Bot) Start(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)
	slog.Info("telegram bot started", "username", b.api.Self.UserName)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			if update.Message != nil {
				b.handleIncomingMessage(ctx, update.Message)
				continue
			}
			if update.CallbackQuery != nil {
				b.handleCallback(update.CallbackQuery)
			}
		}
	}
}

func sessionID(chatID int64) string {
	return "tg:" + strconv.FormatInt(chatID, 10)
}

func (b *Bot) handleIncomingMessage(ctx context.Context, msg *tgbotapi.Message) {
	if msg.From == nil || !b.authSvc.IsAllowed(msg.From.ID) {
		var uid int64
		if msg.From != nil {
			uid = msg.From.ID
		}
		slog.Warn("unauthorized telegram access", "user_id", uid, "chat_id", msg.Chat.ID)
		b.sendMessage(msg.Chat.ID, "Access denied.")
		return
	}

	sess := b.sessions.Get(sessionID(msg.Chat.ID))

	if msg.IsCommand() {
		switch msg.Command() {
		case "start", "help":
			b.sendMessage(msg.Chat.ID, helpText)
		case "status":
			b.sendStatus(msg.Chat.ID, sess, msg.CommandArguments())
		case simulateCmd:
			sess.Mutate()
			b.sendStatus(msg.Chat.ID, sess, "")
		case reloadCmd:
			b.reload(msg.Chat.ID, sess)
		case "history":
			b.sendMessage(msg.Chat.ID, formatHistory(sess.Recent(session.RecentLimit)))
		case "reset":
			b.sessions.Reset(sess.ID)
			b.sendMessage(msg.Chat.ID, "State reset.")
		default:
			b.sendMessage(msg.Chat.ID, helpText)
		}
		return
	}

	slog.Info("telegram question", "chat_id", msg.Chat.ID, "question", msg.Text)
	entry, ok := sess.Ask(ctx, msg.Text)
	if !ok {
		return
	}
	b.sendMessage(msg.Chat.ID, entry.Response)
}

func (b *Bot) handleCallback(cb *tgbotapi.CallbackQuery) {
	if cb.Message == nil || cb.From == nil || !b.authSvc.IsAllowed(cb.From.ID) {
		return
	}
	chatID := cb.Message.Chat.ID
	sess := b.sessions.Get(sessionID(chatID))
	switch cb.Data {
	case simulateCmd:
		sess.Mutate()
		b.sendStatus(chatID, sess, "")
	case reloadCmd:
		b.reload(chatID, sess)
	}
}

func (b *Bot) reload(chatID int64, sess *session.Session) {
	if err := sess.Reload(); err != nil {
		slog.Error("reload failed", "session", sess.ID, "error", err)
		b.sendMessage(chatID, "Reload failed: "+err.Error())
		return
	}
	b.sendStatus(chatID, sess, "")
}

func (b *Bot) sendStatus(chatID int64, sess *session.Session, query string) {
	reg := sess.Registry()
	text := formatStatus(systems.Filter(reg, query), systems.Summarize(reg))

	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Simulate updates", simulateCmd),
			tgbotapi.NewInlineKeyboardButtonData("Reload", reloadCmd),
		),
	)
	if _, err := b.s.Send(msg); err != nil {
		slog.Error("failed to send status", "chat_id", chatID, "error", err)
	}
}

func (b *Bot) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.s.Send(msg); err != nil {
		slog.Error("failed to send message", "chat_id", chatID, "error", err)
	}
}

func formatStatus(shown systems.Registry, sum systems.Summary) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "<b>Running:</b> %d  <b>Stopped:</b> %d\n", sum.Running, sum.Stopped)
	fmt.Fprintf(&sb, "<b>Avg CPU:</b> %s  <b>Avg Memory:</b> %s\n\n", sum.AvgCPURunning, sum.AvgMemoryRunning)
	sb.WriteString("<pre>")
	sb.WriteString(html.EscapeString(systems.Table(shown)))
	sb.WriteString("</pre>")
	return sb.String()
}

func formatHistory(entries []session.ChatEntry) string {
	if len(entries) == 0 {
		return "No questions asked yet."
	}
	var sb strings.Builder
	for i, e := range entries {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		fmt.Fprintf(&sb, "Q: %s\nA: %s", e.Question, e.Response)
	}
	return sb.String()
}
