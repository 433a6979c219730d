package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	redisAdapter "zenthra/adapters/redis"
)

// Locker 讓同一個拍賣的指令依序執行
//
// Lock 回傳的 context 在鎖遺失時會被取消，呼叫端必須呼叫 unlock 釋放。
type Locker interface {
	Lock(ctx context.Context, auctionID uint64) (context.Context, func(), error)
}

// LocalLocker 是行程內以拍賣 id 分開的互斥鎖
type LocalLocker struct {
	mu    sync.Mutex
	slots map[uint64]*lockSlot
}

type lockSlot struct {
	ch   chan struct{}
	refs int
}

func NewLocalLocker() *LocalLocker {
	return &LocalLocker{slots: make(map[uint64]*lockSlot)}
}

func (l *LocalLocker) Lock(ctx context.Context, auctionID uint64) (context.Context, func(), error) {
	l.mu.Lock()
	slot, ok := l.slots[auctionID]
	if !ok {
		slot = &lockSlot{ch: make(chan struct{}, 1)}
		l.slots[auctionID] = slot
	}
	slot.refs++
	l.mu.Unlock()

	select {
	case slot.ch <- struct{}{}:
	case <-ctx.Done():
		l.release(auctionID, slot, false)
		return nil, nil, ctx.Err()
	}

	var once sync.Once
	return ctx, func() {
		once.Do(func() { l.release(auctionID, slot, true) })
	}, nil
}

func (l *LocalLocker) release(auctionID uint64, slot *lockSlot, held bool) {
	if held {
		<-slot.ch
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	slot.refs--
	if slot.refs == 0 {
		delete(l.slots, auctionID)
	}
}

type redisLockerOptions struct {
	logger    *slog.Logger
	keyPrefix string
	mutexOpts []redisAdapter.AutoRenewMutexOption
}

type RedisLockerOption func(*redisLockerOptions)

// WithRedisLockerLogger 設置日誌記錄器
func WithRedisLockerLogger(logger *slog.Logger) RedisLockerOption {
	return func(o *redisLockerOptions) {
		o.logger = logger
	}
}

// WithRedisLockerKeyPrefix 設置鎖的 key 前綴
func WithRedisLockerKeyPrefix(prefix string) RedisLockerOption {
	return func(o *redisLockerOptions) {
		o.keyPrefix = prefix
	}
}

// WithRedisLockerMutexOptions 設置每把鎖的續期與重試參數
func WithRedisLockerMutexOptions(opts ...redisAdapter.AutoRenewMutexOption) RedisLockerOption {
	return func(o *redisLockerOptions) {
		o.mutexOpts = opts
	}
}

// RedisLocker 以 redsync 的自動續期鎖在多個實例間互斥
type RedisLocker struct {
	client  *redis.Client
	logger  *slog.Logger
	options redisLockerOptions
}

func NewRedisLocker(client *redis.Client, opts ...RedisLockerOption) *RedisLocker {
	options := redisLockerOptions{
		logger: slog.Default(),
		mutexOpts: []redisAdapter.AutoRenewMutexOption{
			redisAdapter.WithAutoRenewMutexRetryDelay(20 * time.Millisecond),
		},
	}
	for _, opt := range opts {
		opt(&options)
	}
	return &RedisLocker{
		client:  client,
		logger:  options.logger.With(slog.String("caller", "RedisLocker")),
		options: options,
	}
}

func (l *RedisLocker) Lock(ctx context.Context, auctionID uint64) (context.Context, func(), error) {
	key := fmt.Sprintf("%sauction:%d:lock", l.options.keyPrefix, auctionID)
	mutex := redisAdapter.NewAutoRenewMutex(l.client, key, l.options.mutexOpts...)
	lockCtx, err := mutex.Lock(ctx)
	if err != nil {
		return nil, nil, err
	}

	var once sync.Once
	return lockCtx, func() {
		once.Do(func() {
			if ok, err := mutex.Unlock(); !ok || err != nil {
				l.logger.Warn("fail to release auction lock",
					slog.Uint64("auctionId", auctionID),
					slog.Any("error", err),
				)
			}
		})
	}, nil
}
