package jobs

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/yuqie6/SkillSynth/internal/eventbus"
)

func TestPoolSubmitDoesNotBlockCaller(t *testing.T) {
	p := NewPool(Options{Workers: 1, Timeout: time.Second})
	release := make(chan struct{})

	start := time.Now()
	for i := 0; i < 5; i++ {
		p.Submit("test", func(ctx context.Context) error {
			<-release
			return nil
		})
	}
	if time.Since(start) > 100*time.Millisecond {
		t.Fatalf("Submit blocked the caller")
	}
	close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := p.Close(ctx); err != nil {
		t.Fatalf("Close error: %v", err)
	}
}

func TestPoolBoundsConcurrency(t *testing.T) {
	p := NewPool(Options{Workers: 2, Timeout: time.Second})
	var running, peak atomic.Int32

	for i := 0; i < 8; i++ {
		p.Submit("test", func(ctx context.Context) error {
			n := running.Add(1)
			for {
				old := peak.Load()
				if n <= old || peak.CompareAndSwap(old, n) {
					break
				}
			}
			time.Sleep(20 * time.Millisecond)
			running.Add(-1)
			return nil
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := p.Close(ctx); err != nil {
		t.Fatalf("Close error: %v", err)
	}
	if peak.Load() > 2 {
		t.Fatalf("peak concurrency = %d, want <= 2", peak.Load())
	}
}

func TestPoolSwallowsFailuresAndPanics(t *testing.T) {
	hub := eventbus.NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	events := hub.Subscribe(ctx, 8)

	reg := prometheus.NewRegistry()
	p := NewPool(Options{Workers: 2, Timeout: time.Second, Hub: hub, Registerer: reg})
	p.Submit("fail", func(ctx context.Context) error { return errors.New("remote down") })
	p.Submit("panic", func(ctx context.Context) error { panic("boom") })

	closeCtx, closeCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer closeCancel()
	if err := p.Close(closeCtx); err != nil {
		t.Fatalf("Close error: %v", err)
	}

	failed := 0
	for i := 0; i < 2; i++ {
		select {
		case evt := <-events:
			if evt.Type == eventbus.TypeSyncFailed && evt.JobID != "" {
				failed++
			}
		case <-time.After(time.Second):
			t.Fatalf("missing event %d", i)
		}
	}
	if failed != 2 {
		t.Fatalf("failed events = %d, want 2", failed)
	}
	if got := testutil.ToFloat64(p.jobsTotal.WithLabelValues("fail", "failed")); got != 1 {
		t.Fatalf("failed counter = %v, want 1", got)
	}
}

func TestPoolJobTimeout(t *testing.T) {
	p := NewPool(Options{Workers: 1, Timeout: 20 * time.Millisecond})
	var sawDeadline atomic.Bool
	p.Submit("slow", func(ctx context.Context) error {
		<-ctx.Done()
		sawDeadline.Store(errors.Is(ctx.Err(), context.DeadlineExceeded))
		return ctx.Err()
	})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := p.Close(ctx); err != nil {
		t.Fatalf("Close error: %v", err)
	}
	if !sawDeadline.Load() {
		t.Fatalf("job context did not time out")
	}
}

func TestPoolDropsAfterClose(t *testing.T) {
	p := NewPool(Options{Workers: 1})
	_ = p.Close(context.Background())

	var ran atomic.Bool
	p.Submit("late", func(ctx context.Context) error {
		ran.Store(true)
		return nil
	})
	time.Sleep(20 * time.Millisecond)
	if ran.Load() {
		t.Fatalf("job ran after Close")
	}
	if got := testutil.ToFloat64(p.jobsTotal.WithLabelValues("late", "dropped")); got != 1 {
		t.Fatalf("dropped counter = %v, want 1", got)
	}
}

func TestPoolSubmitRacingClose(t *testing.T) {
	p := NewPool(Options{Workers: 2, Timeout: time.Second})
	const n = 200

	var submitters sync.WaitGroup
	start := make(chan struct{})
	for i := 0; i < n; i++ {
		submitters.Add(1)
		go func() {
			defer submitters.Done()
			<-start
			p.Submit("race", func(ctx context.Context) error { return nil })
		}()
	}

	close(start)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := p.Close(ctx); err != nil {
		t.Fatalf("Close error: %v", err)
	}
	submitters.Wait()

	// Close 返回后，每个任务要么已执行完，要么被丢弃
	ok := testutil.ToFloat64(p.jobsTotal.WithLabelValues("race", "succeeded"))
	dropped := testutil.ToFloat64(p.jobsTotal.WithLabelValues("race", "dropped"))
	if ok+dropped != n {
		t.Fatalf("succeeded=%v dropped=%v, want sum %d", ok, dropped, n)
	}
}
