package worker

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/bitleak/lmstfy/client"

	"rbx/logicore/internal/framework"
	"rbx/logicore/pkg/config"
	"rbx/logicore/pkg/lmstfyx"
	"rbx/logicore/pkg/logger"
)

type queueSource struct {
	mu      sync.Mutex
	pending []*framework.Message
	acked   []string
}

func (q *queueSource) Consume(queue string, timeout, ttr time.Duration) (*framework.Message, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.pending) == 0 {
		time.Sleep(time.Millisecond)
		return nil, nil
	}
	msg := q.pending[0]
	q.pending = q.pending[1:]
	return msg, nil
}

func (q *queueSource) Ack(queue, jobID string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.acked = append(q.acked, jobID)
	return nil
}

func (q *queueSource) ackCount() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.acked)
}

func TestManagerProcessesAndShutsDown(t *testing.T) {
	src := &queueSource{pending: []*framework.Message{
		{ID: "j1", Queue: "rate_quote"},
		{ID: "j2", Queue: "rate_quote"},
	}}

	var mu sync.Mutex
	seen := map[string]bool{}
	done := make(chan struct{})
	proc := func(ctx context.Context, job *client.Job) *lmstfyx.JobResp {
		mu.Lock()
		seen[job.ID] = true
		if len(seen) == 2 {
			close(done)
		}
		mu.Unlock()
		return &lmstfyx.JobResp{Action: lmstfyx.JobRespStatusSuccess}
	}

	cfg := &config.Config{Workers: []config.WorkerConfig{{
		Name:       "rate_quote_worker",
		QueueName:  "rate_quote",
		Subscriber: config.SubscriberConfig{Threads: 1},
		Processor:  config.ProcessorConfig{Threads: 2, BufferSize: 4, Timeout: time.Second},
	}}}

	cleaned := false
	mgr := newManager(context.Background(), cfg, src, proc, func() { cleaned = true }, logger.NewNop())

	startErr := make(chan error, 1)
	go func() { startErr <- mgr.Start() }()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("jobs were not processed")
	}

	mgr.Shutdown()
	mgr.Shutdown() // 重复调用无副作用

	select {
	case err := <-startErr:
		if err != nil {
			t.Fatalf("start returned error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("Start did not return after Shutdown")
	}

	if src.ackCount() != 2 {
		t.Fatalf("expected 2 acks, got %d", src.ackCount())
	}
	if !cleaned {
		t.Fatalf("cleanup should run on shutdown")
	}
}
