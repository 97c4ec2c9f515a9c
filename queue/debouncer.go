// Package queue batches incoming chat messages until the channel goes quiet.
package queue

import (
	"cmp"
	log "log/slog"
	"slices"
	"strconv"
	"sync"
	"time"

	"discord-blog/chat"
	"discord-blog/eventloop"

	"github.com/bwmarrin/discordgo"
)

// Processor handles one message of a drained batch.
type Processor func(m *discordgo.Message) error

// Reporter is told about a message whose processing failed.
type Reporter func(m *discordgo.Message, err error)

// Finisher runs after a message was processed and any failure reported.
type Finisher func(m *discordgo.Message)

type entry struct {
	msg *discordgo.Message
	seq uint64
}

// Debouncer buffers messages and processes them as one ordered batch once no
// new message has arrived for the configured delay.
type Debouncer struct {
	slot       *eventloop.Slot
	delay      time.Duration
	blankFirst bool
	process    Processor
	report     Reporter
	finish     Finisher

	mu      sync.Mutex
	seq     uint64
	pending []entry
}

// Options configures a Debouncer.
type Options struct {
	Delay time.Duration
	// BlankFirst puts an author's messages without text ahead of their
	// captioned messages.
	BlankFirst bool
	Process    Processor
	Report     Reporter
	Finish     Finisher
}

// New creates a debouncer draining onto loop through a slot named "messages".
func New(loop *eventloop.Loop, opts Options) *Debouncer {
	return &Debouncer{
		slot:       loop.NewSlot("messages"),
		delay:      opts.Delay,
		blankFirst: opts.BlankFirst,
		process:    opts.Process,
		report:     opts.Report,
		finish:     opts.Finish,
	}
}

// Push buffers m and restarts the quiescence timer. Safe to call from any
// goroutine.
func (d *Debouncer) Push(m *discordgo.Message) {
	d.mu.Lock()
	d.seq++
	d.pending = append(d.pending, entry{msg: m, seq: d.seq})
	n := len(d.pending)
	d.mu.Unlock()

	log.Debug("queued message", "message_id", m.ID, "author", chat.AuthorID(m), "pending", n)
	d.slot.Arm(d.delay, d.Drain)
}

// Len returns the number of buffered messages.
func (d *Debouncer) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.pending)
}

// Drain processes every buffered message in batch order. It runs on the
// event loop when the timer fires; messages pushed while a batch is being
// processed wait for the next batch.
func (d *Debouncer) Drain() {
	d.mu.Lock()
	batch := d.pending
	d.pending = nil
	d.mu.Unlock()

	if len(batch) == 0 {
		return
	}
	sortEntries(batch, d.blankFirst)
	log.Debug("processing message batch", "size", len(batch))
	for _, e := range batch {
		if err := d.processOne(e.msg); err != nil {
			log.Error("failed to process message", "message_id", e.msg.ID, "author", chat.AuthorID(e.msg), "err", err)
			if d.report != nil {
				d.report(e.msg, err)
			}
		}
		if d.finish != nil {
			d.finish(e.msg)
		}
	}
}

func (d *Debouncer) processOne(m *discordgo.Message) error {
	return eventloop.Protect(func() error { return d.process(m) })
}

// Order returns msgs in the order a batch containing them is processed:
// grouped by author, then blank before captioned (or the reverse when
// blankFirst is false), then by message timestamp. Ties keep input order.
func Order(msgs []*discordgo.Message, blankFirst bool) []*discordgo.Message {
	entries := make([]entry, len(msgs))
	for i, m := range msgs {
		entries[i] = entry{msg: m, seq: uint64(i)}
	}
	sortEntries(entries, blankFirst)
	out := make([]*discordgo.Message, len(entries))
	for i, e := range entries {
		out[i] = e.msg
	}
	return out
}

func sortEntries(entries []entry, blankFirst bool) {
	slices.SortFunc(entries, func(a, b entry) int {
		if c := compareIDs(chat.AuthorID(a.msg), chat.AuthorID(b.msg)); c != 0 {
			return c
		}
		if c := cmp.Compare(textRank(a.msg, blankFirst), textRank(b.msg, blankFirst)); c != 0 {
			return c
		}
		if c := a.msg.Timestamp.Compare(b.msg.Timestamp); c != 0 {
			return c
		}
		return cmp.Compare(a.seq, b.seq)
	})
}

// compareIDs orders snowflake ids numerically. Ids that are not numbers sort
// after numeric ones, as strings.
func compareIDs(a, b string) int {
	na, errA := strconv.ParseUint(a, 10, 64)
	nb, errB := strconv.ParseUint(b, 10, 64)
	switch {
	case errA == nil && errB == nil:
		return cmp.Compare(na, nb)
	case errA == nil:
		return -1
	case errB == nil:
		return 1
	}
	return cmp.Compare(a, b)
}

func textRank(m *discordgo.Message, blankFirst bool) int {
	hasText := chat.Text(m) != ""
	if hasText == blankFirst {
		return 1
	}
	return 0
}
