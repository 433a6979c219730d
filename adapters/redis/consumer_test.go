package redis

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestNewConsumer(t *testing.T) {
	client, _, cleanup := setupTest(t)
	defer cleanup()

	tests := []struct {
		name    string
		client  *redis.Client
		stream  string
		opts    []ConsumerOption[TestMessage]
		wantErr bool
		errMsg  string
	}{
		{
			name:   "valid configuration",
			client: client,
			stream: "test-stream",
		},
		{
			name:    "nil client",
			stream:  "test-stream",
			wantErr: true,
			errMsg:  "redis client cannot be nil",
		},
		{
			name:    "empty stream",
			client:  client,
			wantErr: true,
			errMsg:  "stream cannot be empty",
		},
		{
			name:   "with all options",
			client: client,
			stream: "test-stream",
			opts: []ConsumerOption[TestMessage]{
				WithConsumerLogger[TestMessage](slog.Default()),
				WithConsumerBufferSize[TestMessage](200),
				WithConsumerBlockTimeout[TestMessage](2 * time.Second),
				WithConsumerStartID[TestMessage]("0"),
				WithConsumerParseFunc[TestMessage](func(m map[string]any) (TestMessage, error) {
					return TestMessage{}, nil
				}),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			consumer, err := NewConsumer(tt.client, tt.stream, tt.opts...)
			if tt.wantErr {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
				assert.Nil(t, consumer)
				return
			}
			assert.NoError(t, err)
			assert.NotNil(t, consumer)
		})
	}
}

func publishTestMessages(t *testing.T, client *redis.Client, stream string, messages ...TestMessage) {
	t.Helper()
	for _, m := range messages {
		values, err := DefaultParseToMessage(m)
		require.NoError(t, err)
		require.NoError(t, client.XAdd(context.Background(), &redis.XAddArgs{Stream: stream, Values: values}).Err())
	}
}

func receive[T any](t *testing.T, ch <-chan T) T {
	t.Helper()
	select {
	case v, ok := <-ch:
		require.True(t, ok, "channel closed")
		return v
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for message")
	}
	var zero T
	return zero
}

func TestConsumer_Subscribe(t *testing.T) {
	t.Run("reads existing entries from start id", func(t *testing.T) {
		defer goleak.VerifyNone(t, goleak.IgnoreCurrent())
		client, _, cleanup := setupMiniredis(t)
		defer cleanup()

		publishTestMessages(t, client, "test-stream",
			TestMessage{ID: "1", Data: "a"},
			TestMessage{ID: "2", Data: "b"},
		)

		consumer, err := NewConsumer[TestMessage](client, "test-stream",
			WithConsumerStartID[TestMessage]("0"),
			WithConsumerBlockTimeout[TestMessage](50*time.Millisecond),
		)
		require.NoError(t, err)
		consumer.Start()
		defer consumer.Close()

		ch := consumer.Subscribe()
		assert.Equal(t, "1", receive(t, ch).ID)
		assert.Equal(t, "2", receive(t, ch).ID)

		publishTestMessages(t, client, "test-stream", TestMessage{ID: "3", Data: "c"})
		assert.Equal(t, "3", receive(t, ch).ID)
	})

	t.Run("unparsable entries are skipped", func(t *testing.T) {
		defer goleak.VerifyNone(t, goleak.IgnoreCurrent())
		client, _, cleanup := setupMiniredis(t)
		defer cleanup()

		require.NoError(t, client.XAdd(context.Background(), &redis.XAddArgs{
			Stream: "test-stream",
			Values: map[string]any{"data": "not-msgpack"},
		}).Err())
		publishTestMessages(t, client, "test-stream", TestMessage{ID: "ok"})

		consumer, err := NewConsumer[TestMessage](client, "test-stream",
			WithConsumerStartID[TestMessage]("0"),
			WithConsumerBlockTimeout[TestMessage](50*time.Millisecond),
		)
		require.NoError(t, err)
		consumer.Start()
		defer consumer.Close()

		assert.Equal(t, "ok", receive(t, consumer.Subscribe()).ID)
	})

	t.Run("channel is closed after close", func(t *testing.T) {
		defer goleak.VerifyNone(t, goleak.IgnoreCurrent())
		client, _, cleanup := setupMiniredis(t)
		defer cleanup()

		consumer, err := NewConsumer[TestMessage](client, "test-stream",
			WithConsumerBlockTimeout[TestMessage](50*time.Millisecond),
		)
		require.NoError(t, err)
		consumer.Start()
		consumer.Start()
		ch := consumer.Subscribe()
		consumer.Close()
		consumer.Close()

		_, ok := <-ch
		assert.False(t, ok)
	})

	t.Run("fetch error keeps consumer alive", func(t *testing.T) {
		defer goleak.VerifyNone(t)
		client, mock, cleanup := setupTest(t)
		defer cleanup()
		mock.MatchExpectationsInOrder(false)

		mock.ExpectXRead(&redis.XReadArgs{
			Streams: []string{"test-stream", "$"},
			Count:   100,
			Block:   10 * time.Millisecond,
		}).SetErr(errors.New("connection refused"))

		consumer, err := NewConsumer[TestMessage](client, "test-stream",
			WithConsumerBlockTimeout[TestMessage](10*time.Millisecond),
		)
		require.NoError(t, err)
		consumer.Start()
		time.Sleep(5 * time.Millisecond)
		consumer.Close()
	})
}
