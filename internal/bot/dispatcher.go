package bot

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/open-builders/satchat-backend/internal/common/logger"
	"github.com/open-builders/satchat-backend/internal/domain/account"
	"github.com/open-builders/satchat-backend/internal/service/telegram"
)

// Sender delivers replies to the chat.
type Sender interface {
	SendMessage(ctx context.Context, chatID int64, text string, replyTo int64) (*telegram.Message, error)
}

// Dispatcher routes updates to Bot handlers and sends the replies.
// Updates run on their own goroutines, at most limit at a time.
type Dispatcher struct {
	bot         *Bot
	sender      Sender
	botUsername string
	timeout     time.Duration
	slots       *semaphore.Weighted
	inflight    sync.WaitGroup
}

func NewDispatcher(bot *Bot, sender Sender, botUsername string, timeout time.Duration, limit int) *Dispatcher {
	if limit <= 0 {
		limit = 1
	}
	return &Dispatcher{
		bot:         bot,
		sender:      sender,
		botUsername: botUsername,
		timeout:     timeout,
		slots:       semaphore.NewWeighted(int64(limit)),
	}
}

// SetBotUsername sets the name used to filter "/cmd@name" commands.
func (d *Dispatcher) SetBotUsername(name string) { d.botUsername = name }

// Submit starts handling u in the background and returns as soon as a slot is free.
// done, if set, runs after u has been handled. When ctx ends before a slot frees up,
// u is not handled and ctx's error is returned.
func (d *Dispatcher) Submit(ctx context.Context, u telegram.Update, done func()) error {
	if err := d.slots.Acquire(ctx, 1); err != nil {
		return err
	}
	d.inflight.Add(1)
	go func() {
		defer d.inflight.Done()
		defer d.slots.Release(1)
		d.HandleUpdate(ctx, u)
		if done != nil {
			done()
		}
	}()
	return nil
}

// Wait blocks until every submitted update has been handled.
func (d *Dispatcher) Wait() { d.inflight.Wait() }

// HandleUpdate processes one update. Panics are recovered and logged.
func (d *Dispatcher) HandleUpdate(ctx context.Context, u telegram.Update) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error().
				Int64("update_id", u.UpdateID).
				Str("panic", fmt.Sprint(r)).
				Bytes("stack", debug.Stack()).
				Msg("Update handler panicked")
		}
	}()

	msg := u.Message
	if msg == nil || msg.From == nil || msg.From.IsBot || msg.Text == "" {
		return
	}
	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	reply := d.route(ctx, msg)
	if reply == "" {
		return
	}
	if _, err := d.sender.SendMessage(ctx, msg.Chat.ID, reply, msg.MessageID); err != nil {
		logger.Warn().Err(err).
			Int64("update_id", u.UpdateID).
			Int64("chat_id", msg.Chat.ID).
			Msg("Failed to send reply")
	}
}

func (d *Dispatcher) route(ctx context.Context, msg *telegram.Message) string {
	p := account.Profile{
		ID:        msg.From.ID,
		Username:  msg.From.Username,
		FirstName: msg.From.FirstName,
		LastName:  msg.From.LastName,
	}
	if !IsCommand(msg.Text) {
		ref := account.MessageRef{ChatID: msg.Chat.ID, MessageID: msg.MessageID}
		return d.bot.OnTextMessage(ctx, p, msg.Text, ref)
	}

	cmd, ok := ParseCommand(msg.Text, d.botUsername)
	if !ok {
		return ""
	}
	logger.Debug().Str("command", cmd.Name).Int64("user_id", p.ID).Int64("chat_id", msg.Chat.ID).Msg("Command received")
	switch cmd.Name {
	case "start":
		return d.bot.OnStartCommand(ctx, p)
	case "balance":
		return d.bot.OnBalanceQuery(ctx, p.ID)
	case "linkwallet":
		return d.bot.OnLinkWalletCommand(ctx, p.ID, cmd.Args)
	case "claim":
		return d.bot.OnClaimCommand(ctx, p.ID)
	case "help":
		return d.bot.OnHelpCommand(ctx, p.ID)
	case "addkeyword":
		return d.bot.OnAddKeywordCommand(ctx, p.ID, cmd.Args)
	case "setcap":
		return d.bot.OnSetCapCommand(ctx, p.ID, cmd.Args)
	default:
		return ""
	}
}
