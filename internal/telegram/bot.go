// Package telegram connects the command router to the Telegram Bot API using
// long polling.
package telegram

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"

	"github.com/dmitrijs2005/debtkeeper/internal/logging"
	"github.com/dmitrijs2005/debtkeeper/internal/router"
)

// BotAPI is the part of *tgbotapi.BotAPI the bot uses.
type BotAPI interface {
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Connector creates a fresh API client for each polling session.
type Connector func() (BotAPI, error)

// Handler is implemented by *router.Router.
type Handler interface {
	Handle(ctx context.Context, actor, text string) (router.Reply, bool)
}

// Options tunes the polling supervisor.
type Options struct {
	PollTimeout  time.Duration
	RestartDelay time.Duration
	// OnServing, when set, is told whether a polling session is active.
	OnServing func(bool)
}

var errUpdatesClosed = errors.New("updates channel closed")

// Bot polls Telegram and feeds each update to a Handler.
type Bot struct {
	connect   Connector
	handler   Handler
	directory *Directory
	logger    logging.Logger
	opts      Options
}

func New(connect Connector, h Handler, l logging.Logger, opts Options) *Bot {
	return &Bot{
		connect:   connect,
		handler:   h,
		directory: NewDirectory(),
		logger:    l.With("module", "telegram"),
		opts:      opts,
	}
}

// Run polls until ctx is done. When a session ends with an error, it is
// logged and a new session starts after RestartDelay.
func (b *Bot) Run(ctx context.Context) error {
	for {
		err := b.session(ctx)
		if ctx.Err() != nil {
			return nil
		}

		b.logger.Error(ctx, "polling stopped, restarting", "error", err, "delay", b.opts.RestartDelay.String())

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(b.opts.RestartDelay):
		}
	}
}

func (b *Bot) session(ctx context.Context) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic in polling loop: %v", p)
		}
	}()

	api, err := b.connect()
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}

	u := tgbotapi.NewUpdate(0)
	u.Timeout = int(b.opts.PollTimeout.Seconds())
	updates := api.GetUpdatesChan(u)
	defer api.StopReceivingUpdates()

	b.setServing(true)
	defer b.setServing(false)

	b.logger.Info(ctx, "polling started")

	for {
		select {
		case <-ctx.Done():
			b.logger.Info(ctx, "polling stopped")
			return nil
		case upd, ok := <-updates:
			if !ok {
				return errUpdatesClosed
			}
			b.HandleUpdate(ctx, api, upd)
		}
	}
}

func (b *Bot) setServing(ok bool) {
	if b.opts.OnServing != nil {
		b.opts.OnServing(ok)
	}
}

// HandleUpdate processes one update. A panic while handling it is logged and
// answered with a generic failure text; it never stops polling.
func (b *Bot) HandleUpdate(ctx context.Context, api BotAPI, upd tgbotapi.Update) {
	msg := upd.Message
	if msg == nil || msg.From == nil || msg.Chat == nil {
		return
	}

	actor := Identity(msg.From)
	ctx = logging.ContextWith(ctx, "request_id", uuid.NewString(), "actor", actor, "chat_id", msg.Chat.ID)

	defer func() {
		if p := recover(); p != nil {
			b.logger.Error(ctx, "panic while handling update", "panic", fmt.Sprint(p), "stack", string(debug.Stack()))
			b.send(ctx, api, tgbotapi.NewMessage(msg.Chat.ID, router.GenericFailure))
		}
	}()

	if actor == "" {
		b.logger.Warn(ctx, "update without sender identity")
		return
	}
	if msg.Chat.IsPrivate() {
		b.directory.Remember(actor, msg.Chat.ID)
	}

	reply, ok := b.handler.Handle(ctx, actor, msg.Text)
	if !ok {
		return
	}
	b.logger.Debug(ctx, "command handled", "text", msg.Text)

	out := tgbotapi.NewMessage(msg.Chat.ID, reply.Text)
	if reply.ShowMenu {
		out.ReplyMarkup = menuKeyboard()
	}
	b.send(ctx, api, out)

	for _, n := range reply.Notices {
		chatID, known := b.directory.Lookup(n.To)
		if !known {
			b.logger.Debug(ctx, "notice skipped, chat unknown", "to", n.To)
			continue
		}
		b.send(ctx, api, tgbotapi.NewMessage(chatID, n.Text))
	}
}

func (b *Bot) send(ctx context.Context, api BotAPI, c tgbotapi.Chattable) {
	if _, err := api.Send(c); err != nil {
		b.logger.Warn(ctx, "send failed", "error", err)
	}
}

// Identity is the user's handle, or the first name for users without one.
func Identity(u *tgbotapi.User) string {
	if u.UserName != "" {
		return u.UserName
	}
	return u.FirstName
}

func menuKeyboard() tgbotapi.ReplyKeyboardMarkup {
	buttons := make([]tgbotapi.KeyboardButton, 0, len(router.MenuCommands))
	for _, c := range router.MenuCommands {
		buttons = append(buttons, tgbotapi.NewKeyboardButton(c))
	}
	kb := tgbotapi.NewReplyKeyboard(tgbotapi.NewKeyboardButtonRow(buttons...))
	kb.ResizeKeyboard = true
	return kb
}
