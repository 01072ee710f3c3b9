package workerpool

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestPool_SubmitWaitCollectsResults(t *testing.T) {
	ctx := context.Background()
	p := New(ctx, 3, 2, func(_ context.Context, n int) (int, error) {
		if n < 0 {
			return 0, errors.New("negative")
		}
		return n * n, nil
	})

	inputs := []int{1, 2, 3, -1, 4}
	results := make(chan Result[int, int], len(inputs))
	for _, n := range inputs {
		if err := p.SubmitWait(ctx, n, results); err != nil {
			t.Fatalf("SubmitWait(%d) error = %v", n, err)
		}
	}
	p.Drain()
	close(results)

	sum, failures := 0, 0
	for r := range results {
		if r.Err != nil {
			failures++
			continue
		}
		sum += r.Value
	}
	if sum != 1+4+9+16 {
		t.Errorf("sum = %d, want 30", sum)
	}
	if failures != 1 {
		t.Errorf("failures = %d, want 1", failures)
	}
}

func TestPool_SubmitFullQueue(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	release := make(chan struct{})
	p := New(ctx, 1, 1, func(_ context.Context, _ int) (struct{}, error) {
		<-release
		return struct{}{}, nil
	})

	// One job is picked up by the worker, one waits in the queue.
	if !p.Submit(1) {
		t.Fatal("Submit(1) = false, want true")
	}
	deadline := time.Now().Add(time.Second)
	for p.QueueLen() != 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if !p.Submit(2) {
		t.Fatal("Submit(2) = false, want true")
	}
	if p.Submit(3) {
		t.Error("Submit(3) on full queue = true, want false")
	}
	if p.QueueCap() != 1 {
		t.Errorf("QueueCap() = %d, want 1", p.QueueCap())
	}

	close(release)
	p.Drain()

	if p.Submit(4) {
		t.Error("Submit() after Drain = true, want false")
	}
	if err := p.SubmitWait(ctx, 5, nil); !errors.Is(err, ErrClosed) {
		t.Errorf("SubmitWait() after Drain = %v, want ErrClosed", err)
	}
}

func TestPool_CancelStopsWorkers(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	p := New(ctx, 2, 10, func(_ context.Context, n int) (int, error) {
		return n, nil
	})
	cancel()

	done := make(chan struct{})
	go func() {
		p.Drain()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Drain() did not return after cancel")
	}
}

func TestPool_SubmitWaitHonoursContext(t *testing.T) {
	block := make(chan struct{})
	defer close(block)

	p := New(context.Background(), 1, 0, func(_ context.Context, _ int) (int, error) {
		<-block
		return 0, nil
	})

	results := make(chan Result[int, int], 2)
	if err := p.SubmitWait(context.Background(), 1, results); err != nil {
		t.Fatalf("SubmitWait(1) error = %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := p.SubmitWait(ctx, 2, results); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("SubmitWait(2) = %v, want DeadlineExceeded", err)
	}
}
