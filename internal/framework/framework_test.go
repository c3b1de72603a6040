package framework

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/bitleak/lmstfy/client"

	"rbx/logicore/pkg/config"
	"rbx/logicore/pkg/lmstfyx"
	"rbx/logicore/pkg/logger"
)

type fakeSource struct {
	mu      sync.Mutex
	pending []*Message
	acked   []string
}

func (f *fakeSource) Consume(queue string, timeout, ttr time.Duration) (*Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.pending) == 0 {
		time.Sleep(time.Millisecond)
		return nil, nil
	}
	msg := f.pending[0]
	f.pending = f.pending[1:]
	return msg, nil
}

func (f *fakeSource) Ack(queue, jobID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.acked = append(f.acked, jobID)
	return nil
}

func (f *fakeSource) ackedIDs() map[string]bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	ids := make(map[string]bool, len(f.acked))
	for _, id := range f.acked {
		ids[id] = true
	}
	return ids
}

func TestProcessorAckPolicy(t *testing.T) {
	src := &fakeSource{}
	actions := map[string]lmstfyx.JobRespStatus{
		"ok":      lmstfyx.JobRespStatusSuccess,
		"bad":     lmstfyx.JobRespStatusBury,
		"flaky":   lmstfyx.JobRespStatusRelease,
		"nilresp": -1,
	}
	proc := func(ctx context.Context, job *client.Job) *lmstfyx.JobResp {
		a := actions[job.ID]
		if a < 0 {
			return nil
		}
		return &lmstfyx.JobResp{Action: a}
	}

	p := NewProcessor(&ProcessorConfig{Concurrency: 2, Timeout: time.Second}, proc, src, logger.NewNop())
	in := make(chan *Message, len(actions))
	for id := range actions {
		in <- &Message{ID: id, Queue: "q"}
	}

	if err := p.Start(context.Background(), in); err != nil {
		t.Fatalf("start: %v", err)
	}
	// 关闭后 drain 剩余消息
	p.SignalShutdown()
	p.Wait()

	acked := src.ackedIDs()
	if !acked["ok"] || !acked["bad"] {
		t.Fatalf("success and non-retryable failures must be acked: %v", acked)
	}
	if acked["flaky"] || acked["nilresp"] {
		t.Fatalf("retryable failures must not be acked: %v", acked)
	}
}

func TestSubscriberForwardsUntilStopped(t *testing.T) {
	src := &fakeSource{pending: []*Message{{ID: "1"}, {ID: "2"}, {ID: "3"}}}
	s := NewSubscriber(&SubscriberConfig{QueueName: "q", Concurrency: 1}, src, logger.NewNop())

	out := make(chan *Message, 3)
	if err := s.Start(context.Background(), out); err != nil {
		t.Fatalf("start: %v", err)
	}

	got := make([]string, 0, 3)
	deadline := time.After(2 * time.Second)
	for len(got) < 3 {
		select {
		case msg := <-out:
			got = append(got, msg.ID)
		case <-deadline:
			t.Fatalf("timed out, got %v", got)
		}
	}

	s.Stop()
	s.Wait()

	if got[0] != "1" || got[2] != "3" {
		t.Fatalf("unexpected order: %v", got)
	}
}

func TestChainStopsOnFirstError(t *testing.T) {
	var calls []string
	step := func(name string, err error) Step {
		return Step{Name: name, Run: func(context.Context) error {
			calls = append(calls, name)
			return err
		}}
	}
	boom := errors.New("boom")

	err := NewChain(step("decode", nil), step("compute", boom), step("publish", nil)).Run(context.Background())

	var se *StepError
	if !errors.As(err, &se) || se.Step != "compute" {
		t.Fatalf("expected StepError for compute, got %v", err)
	}
	if !errors.Is(err, boom) {
		t.Fatalf("original error must be preserved")
	}
	if len(calls) != 2 {
		t.Fatalf("chain should stop after failing step, calls=%v", calls)
	}
}

func TestChainHonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ran := false
	err := NewChain(Step{Name: "decode", Run: func(context.Context) error { ran = true; return nil }}).Run(ctx)
	if ran || !errors.Is(err, context.Canceled) {
		t.Fatalf("cancelled chain should not run steps: ran=%v err=%v", ran, err)
	}
}

func TestConfigDefaults(t *testing.T) {
	w := config.WorkerConfig{
		QueueName:  "rate_quote",
		Subscriber: config.SubscriberConfig{TTR: 5 * time.Second},
		Processor:  config.ProcessorConfig{Timeout: time.Minute},
	}

	sub := NewSubscriberConfig(w)
	if sub.Concurrency != 1 || sub.Timeout != defaultConsumeTimeout || sub.ErrorBackoff != defaultErrorBackoff {
		t.Fatalf("unexpected subscriber defaults: %+v", sub)
	}

	proc := NewProcessorConfig(w)
	if proc.Concurrency != 1 {
		t.Fatalf("unexpected processor concurrency: %d", proc.Concurrency)
	}
	if proc.Timeout != 5*time.Second {
		t.Fatalf("processing timeout should be capped by TTR, got %v", proc.Timeout)
	}
}
