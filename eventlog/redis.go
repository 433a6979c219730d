package eventlog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"github.com/redis/go-redis/v9"

	"zenthra/events"
)

type redisLogOptions struct {
	logger     *slog.Logger
	skipBroken bool
}

type RedisLogOption func(*redisLogOptions)

// WithRedisLogLogger 設置日誌記錄器
func WithRedisLogLogger(logger *slog.Logger) RedisLogOption {
	return func(o *redisLogOptions) {
		o.logger = logger
	}
}

// WithRedisLogSkipBroken 設置遇到無法解析的 entry 時只回傳序號而不是回傳錯誤
func WithRedisLogSkipBroken(skip bool) RedisLogOption {
	return func(o *redisLogOptions) {
		o.skipBroken = skip
	}
}

// RedisLog 以 XRANGE 讀取 ledger 寫入的 stream，entry id 就是事件序號
type RedisLog struct {
	client  *redis.Client
	stream  string
	logger  *slog.Logger
	options redisLogOptions
}

func NewRedisLog(client *redis.Client, stream string, opts ...RedisLogOption) (*RedisLog, error) {
	if client == nil {
		return nil, errors.New("redis client cannot be nil")
	}
	if stream == "" {
		return nil, errors.New("stream cannot be empty")
	}
	options := redisLogOptions{
		logger:     slog.Default(),
		skipBroken: true,
	}
	for _, opt := range opts {
		opt(&options)
	}
	return &RedisLog{
		client:  client,
		stream:  stream,
		logger:  options.logger.With(slog.String("caller", "RedisLog"), slog.String("stream", stream)),
		options: options,
	}, nil
}

// Read 回傳 after 之後最多 limit 筆事件
//
// 整頁都是無法轉成序號的 entry 時會從最後一筆之後繼續讀，
// 只有 stream 真正讀完才會回傳空的一頁。
func (l *RedisLog) Read(ctx context.Context, after events.Sequence, limit int) ([]events.Envelope, error) {
	const op = "RedisLog.Read"
	if limit <= 0 {
		return nil, ErrInvalidLimit
	}

	start := "-"
	if !after.IsZero() {
		start = after.Next().String()
	}
	for {
		messages, err := l.client.XRangeN(ctx, l.stream, start, "+", int64(limit)).Result()
		if err != nil {
			return nil, fmt.Errorf("[%s] Fail to read stream, start=%s, err=%w", op, start, err)
		}
		out, err := l.decode(messages)
		if err != nil {
			return nil, fmt.Errorf("[%s] Fail to decode entry, err=%w", op, err)
		}
		if len(out) > 0 || len(messages) < limit {
			return out, nil
		}
		last := messages[len(messages)-1].ID
		if start, err = nextEntryID(last); err != nil {
			return nil, fmt.Errorf("[%s] Fail to advance past entry, id=%s, err=%w", op, last, err)
		}
	}
}

func (l *RedisLog) decode(messages []redis.XMessage) ([]events.Envelope, error) {
	out := make([]events.Envelope, 0, len(messages))
	for _, message := range messages {
		env, err := events.FromMessage(message.Values)
		if err == nil && env.Seq.String() != message.ID {
			err = fmt.Errorf("%w: entry id %s does not match sequence %s", events.ErrMalformedEvent, message.ID, env.Seq)
		}
		if err != nil {
			if !l.options.skipBroken {
				return nil, fmt.Errorf("id=%s, err=%w", message.ID, err)
			}
			// 只保留序號，讓下游判定為 malformed 並略過，讀取位置仍然可以前進
			seq, seqErr := events.ParseSequence(message.ID)
			if seqErr != nil {
				l.logger.Error("skip entry with foreign id", slog.String("messageId", message.ID), slog.Any("error", err))
				continue
			}
			l.logger.Warn("malformed entry", slog.String("messageId", message.ID), slog.Any("error", err))
			out = append(out, events.Envelope{Seq: seq})
			continue
		}
		out = append(out, env)
	}
	return out, nil
}

// nextEntryID 回傳緊接在 id 之後的 stream entry id
func nextEntryID(id string) (string, error) {
	msPart, seqPart, ok := strings.Cut(id, "-")
	if !ok {
		return "", fmt.Errorf("invalid entry id %q", id)
	}
	ms, err := strconv.ParseUint(msPart, 10, 64)
	if err != nil {
		return "", fmt.Errorf("invalid entry id %q: %w", id, err)
	}
	seq, err := strconv.ParseUint(seqPart, 10, 64)
	if err != nil {
		return "", fmt.Errorf("invalid entry id %q: %w", id, err)
	}
	if seq == math.MaxUint64 {
		return strconv.FormatUint(ms+1, 10) + "-0", nil
	}
	return msPart + "-" + strconv.FormatUint(seq+1, 10), nil
}
