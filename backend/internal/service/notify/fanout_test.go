/*
 * @Author: NEFU AB-IN
 * @Date: 2025-10-20 16:08:02
 * @FilePath: \shiftcash-bot\backend\internal\service\notify\fanout_test.go
 * @LastEditTime: 2025-10-20 16:08:07
 */
package notify_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"shiftcash-bot/backend/internal/domain/shift"
	"shiftcash-bot/backend/internal/service/notify"

	"go.uber.org/zap"
)

type recordingSender struct {
	mu     sync.Mutex
	sent   []int64
	failOn map[int64]bool
}

func (s *recordingSender) SendReport(_ context.Context, recipient int64, _ shift.Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failOn[recipient] {
		return fmt.Errorf("recipient %d blocked the bot", recipient)
	}
	s.sent = append(s.sent, recipient)
	return nil
}

type recordingCopier struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (c *recordingCopier) CopyReport(context.Context, shift.Report) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	return c.err
}

func TestDeliver_CountsOnlySuccesses(t *testing.T) {
	sender := &recordingSender{failOn: map[int64]bool{2: true}}
	fanout := notify.NewFanout(sender, nil, zap.NewNop().Sugar())

	delivered := fanout.Deliver(context.Background(), shift.Report{}, []int64{1, 2, 3})

	if delivered != 2 {
		t.Fatalf("delivered = %d, want 2", delivered)
	}
	if len(sender.sent) != 2 {
		t.Fatalf("sent to %d recipients, want 2", len(sender.sent))
	}
}

func TestDeliver_OneFailureDoesNotStopOthers(t *testing.T) {
	sender := &recordingSender{failOn: map[int64]bool{1: true}}
	fanout := notify.NewFanout(sender, nil, zap.NewNop().Sugar())

	recipients := []int64{1, 2, 3, 4, 5}
	delivered := fanout.Deliver(context.Background(), shift.Report{}, recipients)

	if delivered != 4 {
		t.Fatalf("delivered = %d, want 4", delivered)
	}
}

func TestDeliver_EmptyRecipients(t *testing.T) {
	sender := &recordingSender{}
	fanout := notify.NewFanout(sender, nil, zap.NewNop().Sugar())

	if got := fanout.Deliver(context.Background(), shift.Report{}, nil); got != 0 {
		t.Fatalf("delivered = %d, want 0", got)
	}
	if len(sender.sent) != 0 {
		t.Fatalf("no send expected, got %d", len(sender.sent))
	}
}

func TestDeliver_CopierFailureDoesNotAffectCount(t *testing.T) {
	sender := &recordingSender{}
	copier := &recordingCopier{err: fmt.Errorf("smtp down")}
	fanout := notify.NewFanout(sender, []notify.Copier{copier}, zap.NewNop().Sugar())

	delivered := fanout.Deliver(context.Background(), shift.Report{}, []int64{1, 2})

	if delivered != 2 {
		t.Fatalf("delivered = %d, want 2", delivered)
	}
	if copier.calls != 1 {
		t.Fatalf("copier called %d times, want 1", copier.calls)
	}
}
