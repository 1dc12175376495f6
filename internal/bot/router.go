// Package bot routes inbound chat messages to command handlers and the
// dialog state machine, and drives the long-poll update loop.
package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/cemck/siddy/internal/dialog"
	"github.com/cemck/siddy/internal/naming"
	"github.com/cemck/siddy/internal/store"
	"github.com/cemck/siddy/internal/telegram"
)

// Sender is the outbound half of the gateway. Implemented by
// telegram.Client.
type Sender interface {
	SendMessage(ctx context.Context, chatID int64, text string) error
	SendVoice(ctx context.Context, chatID int64, payload []byte) error
}

// VoiceStore is the read side of the store the stateless commands need.
// Implemented by store.Store.
type VoiceStore interface {
	Find(name string) (store.Record, error)
	Payload(rec store.Record) ([]byte, error)
	List() []store.Entry
}

// Router dispatches one inbound update at a time: stateless commands
// directly, everything stateful through the dialog machine keyed by the
// sending user.
type Router struct {
	gw     Sender
	voices VoiceStore
	dialog *dialog.Machine
	logger *slog.Logger
}

// NewRouter wires a Router.
func NewRouter(gw Sender, voices VoiceStore, machine *dialog.Machine) *Router {
	return &Router{gw: gw, voices: voices, dialog: machine, logger: slog.Default()}
}

// HandleUpdate processes a single update to completion. Only the failure to
// deliver a reply is returned; user-input failures are answered in chat.
func (r *Router) HandleUpdate(ctx context.Context, upd telegram.Update) error {
	msg := upd.Message
	if msg == nil || msg.From == nil {
		return nil
	}

	if cmd, args, ok := parseCommand(msg.Text); ok {
		return r.handleCommand(ctx, msg, cmd, args)
	}
	if msg.Voice != nil {
		return r.handleVoiceMessage(ctx, msg)
	}
	if msg.Text != "" {
		return r.handleTextMessage(ctx, msg)
	}
	return r.nudgeIfActive(ctx, msg)
}

// parseCommand splits "/voice  some name" into ("voice", "some name"). The
// optional @BotName suffix Telegram appends in groups is stripped.
func parseCommand(text string) (cmd, args string, ok bool) {
	if !strings.HasPrefix(text, "/") {
		return "", "", false
	}
	head, rest, _ := strings.Cut(text[1:], " ")
	head, _, _ = strings.Cut(head, "@")
	if head == "" {
		return "", "", false
	}
	return strings.ToLower(head), strings.TrimSpace(rest), true
}

func (r *Router) handleCommand(ctx context.Context, msg *telegram.Message, cmd, args string) error {
	switch cmd {
	case "start":
		return r.gw.SendMessage(ctx, msg.Chat.ID, replyStart)
	case "help":
		return r.gw.SendMessage(ctx, msg.Chat.ID, replyHelp)
	case "voice":
		return r.handleVoiceCommand(ctx, msg, args)
	case "listvoices":
		return r.handleListVoices(ctx, msg)
	case "newvoice":
		if replaced := r.dialog.Begin(msg.From.ID); replaced {
			return r.gw.SendMessage(ctx, msg.Chat.ID, replyNewVoiceRestart)
		}
		return r.gw.SendMessage(ctx, msg.Chat.ID, replyNewVoice)
	case "cancel":
		if had := r.dialog.Cancel(msg.From.ID); had {
			r.logger.Info("user canceled the conversation", "user", msg.From.FirstName)
			return r.gw.SendMessage(ctx, msg.Chat.ID, replyCancel)
		}
		return r.gw.SendMessage(ctx, msg.Chat.ID, replyNothingToCancel)
	default:
		r.logger.Debug("ignoring unknown command", "command", cmd)
		return nil
	}
}

func (r *Router) handleVoiceCommand(ctx context.Context, msg *telegram.Message, args string) error {
	if args == "" {
		return r.gw.SendMessage(ctx, msg.Chat.ID, replyMissingName)
	}
	name := naming.Normalize(args)

	rec, err := r.voices.Find(name)
	if errors.Is(err, store.ErrNotFound) {
		return r.gw.SendMessage(ctx, msg.Chat.ID, replyVoiceNotFound(name))
	}
	if err != nil {
		r.logger.Error("voice lookup failed", "name", name, "error", err)
		return r.gw.SendMessage(ctx, msg.Chat.ID, replySomethingWrong)
	}

	payload, err := r.voices.Payload(rec)
	if err != nil {
		r.logger.Error("voice payload read failed", "name", name, "error", err)
		return r.gw.SendMessage(ctx, msg.Chat.ID, replySomethingWrong)
	}

	return r.gw.SendVoice(ctx, msg.Chat.ID, payload)
}

func (r *Router) handleListVoices(ctx context.Context, msg *telegram.Message) error {
	entries := r.voices.List()
	if len(entries) == 0 {
		return r.gw.SendMessage(ctx, msg.Chat.ID, replyNoVoices)
	}

	lines := make([]string, len(entries))
	for i, e := range entries {
		lines[i] = fmt.Sprintf("%s - %s", e.Name, e.AuthorHandle)
	}
	return r.gw.SendMessage(ctx, msg.Chat.ID, replyVoiceList(strings.Join(lines, "\n")))
}

func (r *Router) handleTextMessage(ctx context.Context, msg *telegram.Message) error {
	name, err := r.dialog.SubmitName(msg.From.ID, msg.Text)
	switch {
	case errors.Is(err, dialog.ErrNoSession):
		// Free text outside a dialog is not for us.
		return nil
	case errors.Is(err, dialog.ErrWrongStage):
		return r.gw.SendMessage(ctx, msg.Chat.ID, replyExpectingVoice)
	case errors.Is(err, naming.ErrNameTaken):
		return r.gw.SendMessage(ctx, msg.Chat.ID, replyNameTaken(name))
	case errors.Is(err, naming.ErrEmptyName):
		return r.gw.SendMessage(ctx, msg.Chat.ID, replyEmptyName)
	case errors.Is(err, naming.ErrInvalidName):
		return r.gw.SendMessage(ctx, msg.Chat.ID, replyInvalidName)
	case err != nil:
		r.logger.Error("name submission failed", "error", err)
		return r.gw.SendMessage(ctx, msg.Chat.ID, replySomethingWrong)
	}
	return r.gw.SendMessage(ctx, msg.Chat.ID, replyNameAccepted(msg.From.FirstName, name))
}

func (r *Router) handleVoiceMessage(ctx context.Context, msg *telegram.Message) error {
	clip := dialog.Clip{FileID: msg.Voice.FileID, MediaID: msg.Voice.FileUniqueID}
	name, err := r.dialog.SubmitVoice(ctx, msg.From.ID, msg.From.Handle(), clip)
	switch {
	case errors.Is(err, dialog.ErrNoSession):
		return nil
	case errors.Is(err, dialog.ErrWrongStage):
		return r.gw.SendMessage(ctx, msg.Chat.ID, replyExpectingName)
	case err != nil:
		r.logger.Error("voice capture failed", "name", name, "error", err)
		return r.gw.SendMessage(ctx, msg.Chat.ID, replySomethingWrong)
	}
	return r.gw.SendMessage(ctx, msg.Chat.ID, replyVoiceSaved(name))
}

// nudgeIfActive handles message kinds the bot has no use for (stickers,
// photos, ...). Mid-dialog the user gets pointed at what's expected;
// otherwise the message is ignored.
func (r *Router) nudgeIfActive(ctx context.Context, msg *telegram.Message) error {
	stage, ok := r.dialog.StageOf(msg.From.ID)
	if !ok {
		return nil
	}
	if stage == dialog.AwaitingVoice {
		return r.gw.SendMessage(ctx, msg.Chat.ID, replyExpectingVoice)
	}
	return r.gw.SendMessage(ctx, msg.Chat.ID, replyExpectingName)
}
