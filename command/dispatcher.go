// Package command recognizes command messages and routes them to handlers.
package command

import (
	"errors"
	"fmt"
	log "log/slog"
	"reflect"
	"strings"
	"time"
	"unicode"

	"discord-blog/chat"
	"discord-blog/eventloop"

	"github.com/bwmarrin/discordgo"
)

// Key selects a handler: reply commands and standalone commands live in
// separate tables.
type Key struct {
	Reply bool
	Name  Name
}

// Invocation is a single run of a command.
type Invocation struct {
	Message *discordgo.Message
	// Parent is the message replied to. It is nil for standalone commands.
	Parent *discordgo.Message
}

// Handler runs a command. A returned error is reported to the invoking user.
type Handler func(inv *Invocation) error

// Dispatcher routes command messages to handlers.
type Dispatcher struct {
	channel     chat.Channel
	deleteDelay time.Duration
	handlers    map[Key]Handler
}

// NewDispatcher creates a dispatcher answering through channel. Recognized
// command messages are deleted after deleteDelay.
func NewDispatcher(channel chat.Channel, deleteDelay time.Duration, handlers map[Key]Handler) *Dispatcher {
	table := make(map[Key]Handler, len(handlers))
	for k, h := range handlers {
		table[k] = h
	}
	return &Dispatcher{channel: channel, deleteDelay: deleteDelay, handlers: table}
}

// Parse returns the command word of text. Text containing whitespace is
// never a command.
func Parse(text string) (Name, bool) {
	word := strings.ToLower(strings.TrimSpace(text))
	if word == "" || strings.ContainsFunc(word, unicode.IsSpace) {
		return "", false
	}
	return Name(word), true
}

// FailureText is the reply sent when a command handler fails.
func FailureText(err error) string {
	return fmt.Sprintf("ERROR: failed to run command (%s: %v)", ErrorType(err), err)
}

// ErrorType names the concrete type of err, looking through fmt.Errorf
// wrapping.
func ErrorType(err error) string {
	for {
		t := reflect.TypeOf(err)
		if t.Kind() == reflect.Pointer {
			t = t.Elem()
		}
		inner := errors.Unwrap(err)
		if t.PkgPath() != "fmt" || inner == nil {
			break
		}
		err = inner
	}
	return strings.TrimPrefix(fmt.Sprintf("%T", err), "*")
}

// Dispatch runs the command in m, if any, and reports whether m was a
// command. Unknown reply commands count as handled.
func (d *Dispatcher) Dispatch(m *discordgo.Message) bool {
	reply := chat.IsReply(m)
	name, ok := Parse(chat.Text(m))
	var handler Handler
	if ok {
		handler, ok = d.handlers[Key{Reply: reply, Name: name}]
	}
	if !ok {
		if !reply {
			return false
		}
		log.Info("unknown reply command", "message_id", m.ID, "command", name)
		d.reply(m, fmt.Sprintf("ERROR: unknown reply action '%s'", strings.ToLower(chat.Text(m))))
		d.cleanup(m)
		return true
	}
	defer d.cleanup(m)

	inv := &Invocation{Message: m}
	if reply {
		parent, err := d.channel.Message(m.MessageReference.MessageID)
		if err != nil {
			log.Warn("failed to fetch replied message", "message_id", m.ID, "parent", m.MessageReference.MessageID, "err", err)
			d.reply(m, FailureText(err))
			return true
		}
		inv.Parent = parent
	}

	log.Info("running command", "command", name, "reply", reply, "author", chat.AuthorID(m))
	if err := eventloop.Protect(func() error { return handler(inv) }); err != nil {
		log.Error("command failed", "command", name, "message_id", m.ID, "err", err)
		d.reply(m, FailureText(err))
	}
	return true
}

func (d *Dispatcher) reply(m *discordgo.Message, content string) {
	if _, err := d.channel.Reply(m, content, d.deleteDelay); err != nil {
		log.Warn("failed to reply", "message_id", m.ID, "err", err)
	}
}

func (d *Dispatcher) cleanup(m *discordgo.Message) {
	if err := d.channel.Delete(m.ID, d.deleteDelay); err != nil {
		log.Warn("failed to delete command message", "message_id", m.ID, "err", err)
	}
}
