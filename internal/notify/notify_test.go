package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

type fakeSink struct {
	sent   []string
	failOn map[int]error // 1-indexed call number -> error
	calls  int
}

func (f *fakeSink) Send(_ context.Context, text string) error {
	f.calls++
	if err := f.failOn[f.calls]; err != nil {
		return err
	}
	f.sent = append(f.sent, text)
	return nil
}

func fixedNow() time.Time {
	return time.Date(2026, 8, 27, 3, 0, 0, 0, time.UTC)
}

func TestSendReportSingleMessage(t *testing.T) {
	t.Parallel()
	sink := &fakeSink{}
	n := New(sink, zerolog.Nop(), Options{Now: fixedNow})

	if err := n.SendReport(context.Background(), "Backup Completed Successfully\n", "daily.log"); err != nil {
		t.Fatalf("SendReport: %v", err)
	}
	if len(sink.sent) != 1 {
		t.Fatalf("sent %d messages, want 1", len(sink.sent))
	}
	msg := sink.sent[0]
	if strings.Contains(msg, "Part ") {
		t.Fatalf("single message must not carry a part prefix:\n%s", msg)
	}
	if !strings.Contains(msg, "✅ <b>Status: SUCCESS</b>") || !strings.Contains(msg, "📋 Log: daily.log") {
		t.Fatalf("unexpected message:\n%s", msg)
	}
}

func TestSendReportSplitsAndNumbers(t *testing.T) {
	t.Parallel()
	sink := &fakeSink{}
	n := New(sink, zerolog.Nop(), Options{MaxLength: 400, Now: fixedNow})

	var logLines []string
	for i := 0; i < 60; i++ {
		logLines = append(logLines, fmt.Sprintf("processed batch %02d without incident", i))
	}
	err := n.SendReport(context.Background(), strings.Join(logLines, "\n"), "big.log")
	if err != nil {
		t.Fatalf("SendReport: %v", err)
	}
	if len(sink.sent) < 3 {
		t.Fatalf("expected >= 3 parts, got %d", len(sink.sent))
	}
	for i, msg := range sink.sent {
		want := fmt.Sprintf("📄 Part %d/%d\n\n", i+1, len(sink.sent))
		if !strings.HasPrefix(msg, want) {
			t.Fatalf("part %d prefix = %q, want %q", i+1, msg[:len(want)], want)
		}
	}
}

func TestSendReportContinuesPastFailure(t *testing.T) {
	t.Parallel()
	sink := &fakeSink{failOn: map[int]error{2: errors.New("boom")}}
	n := New(sink, zerolog.Nop(), Options{MaxLength: 400, Now: fixedNow})

	var logLines []string
	for i := 0; i < 60; i++ {
		logLines = append(logLines, fmt.Sprintf("line %02d with enough padding to force splitting", i))
	}
	err := n.SendReport(context.Background(), strings.Join(logLines, "\n"), "big.log")
	if !errors.Is(err, ErrDelivery) {
		t.Fatalf("error = %v, want ErrDelivery", err)
	}
	// Every part must have been attempted despite the failure in the middle.
	if sink.calls < 3 {
		t.Fatalf("expected >= 3 attempts, got %d", sink.calls)
	}
	if len(sink.sent) != sink.calls-1 {
		t.Fatalf("exactly one part should have failed: %d attempts, %d delivered", sink.calls, len(sink.sent))
	}
}

func TestSendReportAllPartsFail(t *testing.T) {
	t.Parallel()
	sink := &fakeSink{failOn: map[int]error{1: errors.New("down")}}
	n := New(sink, zerolog.Nop(), Options{Now: fixedNow})

	err := n.SendReport(context.Background(), "short log", "s.log")
	if !errors.Is(err, ErrDelivery) {
		t.Fatalf("error = %v, want ErrDelivery", err)
	}
	if len(sink.sent) != 0 {
		t.Fatalf("nothing should have been delivered")
	}
}
