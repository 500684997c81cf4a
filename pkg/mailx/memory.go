package mailx

import (
	"context"
	"log/slog"
	"strconv"
	"sync"
	"sync/atomic"
)

// LogSender writes messages to the logger instead of sending them. It is the
// driver used in development.
type LogSender struct {
	Logger *slog.Logger
	seq    atomic.Uint64
}

func (s *LogSender) Send(ctx context.Context, msg Message) (Result, error) {
	id := "log-" + strconv.FormatUint(s.seq.Add(1), 10)
	s.Logger.InfoContext(ctx, "mail not sent (log driver)",
		slog.String("to", msg.To),
		slog.String("subject", msg.Subject),
		slog.String("message_id", id),
		slog.String("text", msg.Text),
	)
	return Result{MessageID: id, Driver: "log"}, nil
}

// CaptureSender records messages in memory. Fail, when set, is returned for
// every send.
type CaptureSender struct {
	mu   sync.Mutex
	msgs []Message
	fail error
}

// SetFailure makes subsequent sends fail with err; nil restores success.
func (s *CaptureSender) SetFailure(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fail = err
}

func (s *CaptureSender) Send(_ context.Context, msg Message) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.fail != nil {
		return Result{Driver: "capture"}, &DeliveryError{Driver: "capture", Reason: s.fail.Error(), Err: s.fail}
	}
	s.msgs = append(s.msgs, msg)
	return Result{MessageID: "capture-" + strconv.Itoa(len(s.msgs)), Driver: "capture"}, nil
}

// Messages returns a copy of everything sent so far.
func (s *CaptureSender) Messages() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Message, len(s.msgs))
	copy(out, s.msgs)
	return out
}

// Last returns the most recent message sent to addr.
func (s *CaptureSender) Last(addr string) (Message, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(s.msgs) - 1; i >= 0; i-- {
		if s.msgs[i].To == addr {
			return s.msgs[i], true
		}
	}
	return Message{}, false
}
