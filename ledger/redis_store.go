package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/redis/go-redis/v9"
	"github.com/samber/lo"

	redisAdapter "zenthra/adapters/redis"
	"zenthra/events"
)

const DefaultEventStream = "ledger:events"

type redisStoreOptions struct {
	logger    *slog.Logger
	keyPrefix string
	stream    string
}

type RedisStoreOption func(*redisStoreOptions)

// WithRedisStoreLogger 設置日誌記錄器
func WithRedisStoreLogger(logger *slog.Logger) RedisStoreOption {
	return func(o *redisStoreOptions) {
		o.logger = logger
	}
}

// WithRedisStoreKeyPrefix 設置所有 key 的前綴
func WithRedisStoreKeyPrefix(prefix string) RedisStoreOption {
	return func(o *redisStoreOptions) {
		o.keyPrefix = prefix
	}
}

// WithRedisStoreStream 設置 event log 的 stream 名稱，不含前綴
func WithRedisStoreStream(stream string) RedisStoreOption {
	return func(o *redisStoreOptions) {
		o.stream = stream
	}
}

// RedisStore 將拍賣狀態保存在 redis，並以 CommitScript 同時寫入 event log
type RedisStore struct {
	client  *redis.Client
	logger  *slog.Logger
	options redisStoreOptions
}

var _ Store = (*RedisStore)(nil)

func NewRedisStore(client *redis.Client, opts ...RedisStoreOption) (*RedisStore, error) {
	if client == nil {
		return nil, errors.New("redis client cannot be nil")
	}
	options := redisStoreOptions{
		logger: slog.Default(),
		stream: DefaultEventStream,
	}
	for _, opt := range opts {
		opt(&options)
	}
	return &RedisStore{
		client:  client,
		logger:  options.logger.With(slog.String("caller", "RedisStore")),
		options: options,
	}, nil
}

// Stream 回傳 event log 的完整 stream 名稱
func (s *RedisStore) Stream() string {
	return s.options.keyPrefix + s.options.stream
}

func (s *RedisStore) auctionKey(id uint64) string {
	return fmt.Sprintf("%sauction:%d", s.options.keyPrefix, id)
}

func (s *RedisStore) bidsKey(id uint64) string {
	return fmt.Sprintf("%sauction:%d:bids", s.options.keyPrefix, id)
}

func (s *RedisStore) indexKey(kind IndexKind, identity string) string {
	return fmt.Sprintf("%sindex:%s:%s", s.options.keyPrefix, kind, identity)
}

func transient(err error) error {
	return fmt.Errorf("%w: %w", ErrTransientStore, err)
}

func (s *RedisStore) NextAuctionID(ctx context.Context) (uint64, error) {
	const op = "RedisStore.NextAuctionID"
	id, err := s.client.Incr(ctx, s.options.keyPrefix+"ledger:auction-seq").Uint64()
	if err != nil {
		return 0, fmt.Errorf("[%s] Fail to allocate auction id, err=%w", op, transient(err))
	}
	return id, nil
}

func (s *RedisStore) Load(ctx context.Context, id uint64) (Record, error) {
	const op = "RedisStore.Load"
	values, err := s.client.HGetAll(ctx, s.auctionKey(id)).Result()
	if err != nil {
		return Record{}, fmt.Errorf("[%s] Fail to load auction, id=%d, err=%w", op, id, transient(err))
	}
	if len(values) == 0 {
		return Record{}, fmt.Errorf("%w: id=%d", ErrNotFound, id)
	}
	version, err := strconv.ParseUint(values["version"], 10, 64)
	if err != nil {
		return Record{}, fmt.Errorf("[%s] Fail to parse version, id=%d, err=%w", op, id, err)
	}
	auction, err := redisAdapter.DecodeData[Auction](values["data"])
	if err != nil {
		return Record{}, fmt.Errorf("[%s] Fail to decode auction, id=%d, err=%w", op, id, err)
	}
	return Record{Auction: auction, Version: version}, nil
}

func (s *RedisStore) Commit(ctx context.Context, change Change) ([]events.Envelope, error) {
	const op = "RedisStore.Commit"
	id := change.Auction.ID

	data, err := redisAdapter.EncodeData(change.Auction)
	if err != nil {
		return nil, fmt.Errorf("[%s] Fail to encode auction, id=%d, err=%w", op, id, err)
	}
	bidData := ""
	if change.Bid != nil {
		if bidData, err = redisAdapter.EncodeData(*change.Bid); err != nil {
			return nil, fmt.Errorf("[%s] Fail to encode bid, id=%d, err=%w", op, id, err)
		}
	}

	keys := []string{
		s.auctionKey(id),
		s.bidsKey(id),
		s.options.keyPrefix + "ledger:tx-seq",
		s.Stream(),
	}
	keys = append(keys, lo.Map(lo.Uniq(change.Index), func(e IndexEntry, _ int) string {
		return s.indexKey(e.Kind, e.Identity)
	})...)

	ts := strconv.FormatInt(change.Time.UnixNano(), 10)
	args := []any{change.ExpectedVersion, data, id, bidData, len(change.Events)}
	for _, payload := range change.Events {
		encoded, err := events.EncodePayload(payload)
		if err != nil {
			return nil, fmt.Errorf("[%s] Fail to encode event, id=%d, kind=%s, err=%w", op, id, payload.Kind(), err)
		}
		args = append(args, string(payload.Kind()), ts, encoded)
	}

	tx, err := CommitScript.Run(ctx, s.client, keys, args...).Int64()
	if err != nil {
		return nil, fmt.Errorf("[%s] Fail to run commit script, id=%d, err=%w", op, id, transient(err))
	}
	if tx == -1 {
		return nil, fmt.Errorf("[%s] Fail to commit auction, id=%d, err=%w", op, id, ErrVersionConflict)
	}

	envs := make([]events.Envelope, len(change.Events))
	for i, payload := range change.Events {
		envs[i] = events.Envelope{
			Seq:       events.Sequence{Tx: uint64(tx), Idx: uint32(i)},
			AuctionID: id,
			Timestamp: change.Time,
			Payload:   payload,
		}
	}
	s.logger.Debug("auction committed",
		slog.Uint64("auctionId", id),
		slog.Int64("tx", tx),
		slog.Int("events", len(envs)),
	)
	return envs, nil
}

func (s *RedisStore) Bids(ctx context.Context, id uint64) ([]Bid, error) {
	const op = "RedisStore.Bids"
	values, err := s.client.LRange(ctx, s.bidsKey(id), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("[%s] Fail to load bids, id=%d, err=%w", op, id, transient(err))
	}
	bids := make([]Bid, 0, len(values))
	for _, v := range values {
		bid, err := redisAdapter.DecodeData[Bid](v)
		if err != nil {
			return nil, fmt.Errorf("[%s] Fail to decode bid, id=%d, err=%w", op, id, err)
		}
		bids = append(bids, bid)
	}
	return bids, nil
}

func (s *RedisStore) Index(ctx context.Context, kind IndexKind, identity string) ([]uint64, error) {
	const op = "RedisStore.Index"
	members, err := s.client.ZRange(ctx, s.indexKey(kind, identity), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("[%s] Fail to load index, kind=%s, err=%w", op, kind, transient(err))
	}
	ids := make([]uint64, 0, len(members))
	for _, m := range members {
		id, err := strconv.ParseUint(m, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("[%s] Fail to parse index member %q, err=%w", op, m, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
