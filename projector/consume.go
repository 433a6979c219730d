package projector

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v5"

	"zenthra/eventlog"
	"zenthra/events"
)

// Delivery 是從 stream 收到的一筆事件，處理完畢後必須 Done 或 Fail
type Delivery interface {
	Payload() events.Envelope
	Done(ctx context.Context) error
	Fail(ctx context.Context, failErr error) error
}

// Consume 持續套用 deliveries 直到 ctx 結束或 channel 關閉
//
// ctx 結束時正在處理的事件會完成後才返回，等待區中的事件不會被確認，
// 重新啟動後由 pending 訊息與 checkpoint 接續。
// 只有格式錯誤的事件會 Fail；資料庫暫時無法使用時會以遞增的間隔重試同一筆事件，
// 不會確認也不會送往 dead letter。
func Consume[D Delivery](ctx context.Context, p *Projector, deliveries <-chan D) error {
	p.logger.Info("start consuming events")
	defer p.logger.Info("stop consuming events")
	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-deliveries:
			if !ok {
				return nil
			}
			p.handle(ctx, d)
		}
	}
}

func (p *Projector) handle(ctx context.Context, d Delivery) {
	env := d.Payload()
	applyCtx := context.WithoutCancel(ctx)

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.options.retryInterval
	b.MaxInterval = p.options.maxInterval
	for attempt := 1; ; attempt++ {
		outcome, err := p.apply(applyCtx, deferredEvent{env: env, done: d.Done, fail: d.Fail})
		switch {
		case err == nil:
			if outcome == Deferred {
				return
			}
			if err := d.Done(applyCtx); err != nil {
				p.logger.Error("applied but fail to ack message", slog.String("seq", env.Seq.String()), slog.Any("error", err))
			}
			return
		case errors.Is(err, ErrMalformedEvent):
			p.logger.Warn("dead letter malformed event", slog.String("seq", env.Seq.String()), slog.Any("error", err))
			if err := d.Fail(applyCtx, err); err != nil {
				p.logger.Error("fail to fail message", slog.String("seq", env.Seq.String()), slog.Any("error", err))
			}
			return
		}

		wait := b.NextBackOff()
		p.logger.Error("fail to apply event, retry later",
			slog.String("seq", env.Seq.String()),
			slog.Int("attempt", attempt),
			slog.Duration("after", wait),
			slog.Any("error", err),
		)
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			// 保持未確認，重新啟動後由 pending 訊息重送
			p.logger.Warn("stop retrying event, leave it pending", slog.String("seq", env.Seq.String()))
			return
		case <-timer.C:
		}
	}
}

type replayOptions struct {
	from      *events.Sequence
	pageSize  int
	fromStart bool
}

type ReplayOption func(*replayOptions)

// WithReplayFrom 從指定序號之後開始重播
func WithReplayFrom(seq events.Sequence) ReplayOption {
	return func(o *replayOptions) {
		o.from = &seq
	}
}

// WithReplayFromStart 忽略 checkpoint，從 log 開頭重播
func WithReplayFromStart() ReplayOption {
	return func(o *replayOptions) {
		o.fromStart = true
	}
}

// WithReplayPageSize 設置每次讀取的事件數量
func WithReplayPageSize(size int) ReplayOption {
	return func(o *replayOptions) {
		o.pageSize = size
	}
}

// ReplayStats 是一次重播的統計
type ReplayStats struct {
	Applied    int
	Duplicates int
	Deferred   int
	Skipped    int
	Last       events.Sequence
}

// Replay 依序讀取 reader 直到沒有更多事件，預設從 checkpoint 接續
func (p *Projector) Replay(ctx context.Context, reader eventlog.Reader, opts ...ReplayOption) (ReplayStats, error) {
	const op = "Projector.Replay"
	options := replayOptions{pageSize: 256}
	for _, opt := range opts {
		opt(&options)
	}

	var stats ReplayStats
	switch {
	case options.from != nil:
		stats.Last = *options.from
	case options.fromStart:
	default:
		checkpoint, err := p.Checkpoint(ctx)
		if err != nil {
			return stats, fmt.Errorf("[%s] Fail to resume from checkpoint, err=%w", op, err)
		}
		stats.Last = checkpoint
	}
	p.logger.Info("start replay", slog.String("after", stats.Last.String()))

	for {
		page, err := reader.Read(ctx, stats.Last, options.pageSize)
		if err != nil {
			return stats, fmt.Errorf("[%s] Fail to read event log, after=%s, err=%w", op, stats.Last, err)
		}
		if len(page) == 0 {
			break
		}
		advanced := false
		for _, env := range page {
			outcome, err := p.Apply(ctx, env)
			if err != nil && !errors.Is(err, ErrMalformedEvent) {
				return stats, fmt.Errorf("[%s] Fail to apply event, seq=%s, err=%w", op, env.Seq, err)
			}
			switch outcome {
			case Applied:
				stats.Applied++
			case Duplicate:
				stats.Duplicates++
			case Deferred:
				stats.Deferred++
			case Skipped:
				stats.Skipped++
			}
			if stats.Last.Less(env.Seq) {
				stats.Last = env.Seq
				advanced = true
			}
		}
		if !advanced {
			return stats, fmt.Errorf("[%s] Fail to advance replay cursor, after=%s", op, stats.Last)
		}
	}

	p.logger.Info("replay finished",
		slog.Int("applied", stats.Applied),
		slog.Int("duplicates", stats.Duplicates),
		slog.Int("deferred", stats.Deferred),
		slog.Int("skipped", stats.Skipped),
		slog.String("last", stats.Last.String()),
	)
	return stats, nil
}
