package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"golang.org/x/sync/semaphore"

	"github.com/yuqie6/SkillSynth/internal/eventbus"
)

// Options 后台任务池配置
type Options struct {
	Workers    int           // 并发上限
	Timeout    time.Duration // 单个任务超时
	Hub        *eventbus.Hub
	Registerer prometheus.Registerer // 为空时使用独立 registry
}

// Pool 有界的 fire-and-forget 任务池
// 提交方拿不到任何句柄，失败只体现在日志/指标/事件里，不重试
type Pool struct {
	sem     *semaphore.Weighted
	timeout time.Duration
	hub     *eventbus.Hub
	wg      sync.WaitGroup
	mu      sync.Mutex // 保护 closed，并保证 wg.Add 发生在 Close 的 wg.Wait 之前
	closed  bool

	jobsTotal   *prometheus.CounterVec
	jobDuration *prometheus.HistogramVec
}

// NewPool 创建任务池
func NewPool(opts Options) *Pool {
	if opts.Workers <= 0 {
		opts.Workers = 4
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 15 * time.Second
	}
	reg := opts.Registerer
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	factory := promauto.With(reg)

	return &Pool{
		sem:     semaphore.NewWeighted(int64(opts.Workers)),
		timeout: opts.Timeout,
		hub:     opts.Hub,
		jobsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "skillsynth_sync_jobs_total",
			Help: "Background sync jobs by kind and result",
		}, []string{"kind", "result"}),
		jobDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "skillsynth_sync_job_duration_seconds",
			Help:    "Background sync job duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"kind"}),
	}
}

// Submit 投递任务后立即返回，任务在独立 goroutine 中执行
func (p *Pool) Submit(kind string, job func(ctx context.Context) error) {
	if job == nil {
		return
	}
	id := uuid.NewString()
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		p.finish(kind, id, "dropped", fmt.Errorf("任务池已关闭"))
		return
	}
	p.wg.Add(1)
	p.mu.Unlock()

	go func() {
		defer p.wg.Done()

		// 不可取消：一旦投递就等到有空位为止
		_ = p.sem.Acquire(context.Background(), 1)
		defer p.sem.Release(1)

		start := time.Now()
		err := p.run(job)
		p.jobDuration.WithLabelValues(kind).Observe(time.Since(start).Seconds())

		if err != nil {
			p.finish(kind, id, "failed", err)
			return
		}
		p.finish(kind, id, "succeeded", nil)
	}()
}

func (p *Pool) run(job func(ctx context.Context) error) (err error) {
	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("任务 panic: %v", r)
		}
	}()
	return job(ctx)
}

func (p *Pool) finish(kind, id, result string, err error) {
	p.jobsTotal.WithLabelValues(kind, result).Inc()

	evt := eventbus.Event{JobID: id, Kind: kind}
	switch result {
	case "succeeded":
		evt.Type = eventbus.TypeSyncSucceeded
		slog.Debug("后台同步完成", "job_id", id, "kind", kind)
	case "dropped":
		evt.Type = eventbus.TypeSyncDropped
		evt.Error = err.Error()
		slog.Warn("后台同步被丢弃", "job_id", id, "kind", kind, "error", err)
	default:
		evt.Type = eventbus.TypeSyncFailed
		evt.Error = err.Error()
		slog.Warn("后台同步失败", "job_id", id, "kind", kind, "error", err)
	}
	p.hub.Publish(evt)
}

// Close 停止接收新任务，并在 ctx 到期前等待在途任务
// 超时后返回 ctx.Err()，剩余任务随进程退出被丢弃
func (p *Pool) Close(ctx context.Context) error {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		slog.Warn("等待后台同步超时，在途任务将被丢弃")
		return ctx.Err()
	}
}
