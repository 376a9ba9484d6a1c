// Package notify turns a backup log into a delivered Telegram report.
package notify

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"backupnotify/internal/report"
)

// ErrDelivery marks a run where at least one part failed to send.
var ErrDelivery = errors.New("delivery failed")

// Sink is the outbound transport: one message per call, in order.
type Sink interface {
	Send(ctx context.Context, text string) error
}

type Options struct {
	// Title overrides the report header title.
	Title string
	// MaxLength is the chunk limit. Zero means the default.
	MaxLength int
	// Now supplies the header timestamp. Zero value means time.Now.
	Now func() time.Time
}

type Notifier struct {
	sink Sink
	log  zerolog.Logger
	opt  Options
}

func New(sink Sink, log zerolog.Logger, opt Options) *Notifier {
	if opt.MaxLength <= 0 {
		opt.MaxLength = report.MaxMessageLength
	}
	if opt.Now == nil {
		opt.Now = time.Now
	}
	return &Notifier{sink: sink, log: log, opt: opt}
}

// SendReport formats the log, splits it into parts and sends every part
// strictly in order. A failed part is logged and does not stop the rest;
// already-sent parts are never retracted and nothing is retried. The run
// fails as a whole when any part failed.
func (n *Notifier) SendReport(ctx context.Context, logText, sourceLabel string) error {
	msg := report.Format(logText, sourceLabel, n.opt.Title, n.opt.Now())
	parts := report.NumberParts(report.Chunk(msg, n.opt.MaxLength))

	failed := 0
	for i, part := range parts {
		if err := n.sink.Send(ctx, part); err != nil {
			failed++
			n.log.Error().Err(err).
				Int("part", i+1).
				Int("parts", len(parts)).
				Str("log", sourceLabel).
				Msg("failed to send message part")
		}
	}
	if failed > 0 {
		return fmt.Errorf("%w: %d of %d parts", ErrDelivery, failed, len(parts))
	}

	n.log.Info().
		Int("parts", len(parts)).
		Str("log", sourceLabel).
		Str("status", report.Classify(logText).String()).
		Msg("notification sent")
	return nil
}
