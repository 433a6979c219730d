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

func TestNewProducer(t *testing.T) {
	tests := []struct {
		name    string
		client  *redis.Client
		stream  string
		opts    []ProducerOption[TestMessage]
		wantErr bool
		errMsg  string
	}{
		{
			name:   "valid configuration",
			client: redis.NewClient(&redis.Options{}),
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
			client:  redis.NewClient(&redis.Options{}),
			wantErr: true,
			errMsg:  "stream cannot be empty",
		},
		{
			name:   "with custom options",
			client: redis.NewClient(&redis.Options{}),
			stream: "test-stream",
			opts: []ProducerOption[TestMessage]{
				WithProducerLogger[TestMessage](slog.Default()),
				WithProducerBufferSize[TestMessage](200),
				WithProducerMaxLen[TestMessage](1000),
				WithProducerParseFunc[TestMessage](func(msg TestMessage) (map[string]any, error) {
					return map[string]any{"id": msg.ID}, nil
				}),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer goleak.VerifyNone(t)

			producer, err := NewProducer[TestMessage](tt.client, tt.stream, tt.opts...)
			if tt.wantErr {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
				assert.Nil(t, producer)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, producer)
				producer.Close()
			}

			if tt.client != nil {
				tt.client.Close()
			}
		})
	}
}

func TestProducer_Publish(t *testing.T) {
	t.Run("messages are appended in order", func(t *testing.T) {
		defer goleak.VerifyNone(t, goleak.IgnoreCurrent())
		client, _, cleanup := setupMiniredis(t)
		defer cleanup()

		producer, err := NewProducer[TestMessage](client, "test-stream")
		require.NoError(t, err)
		producer.Start()
		defer producer.Close()

		for _, id := range []string{"1", "2", "3"} {
			require.NoError(t, producer.Publish(TestMessage{ID: id, Data: "payload-" + id}))
		}

		var messages []redis.XMessage
		require.Eventually(t, func() bool {
			messages, err = client.XRange(context.Background(), "test-stream", "-", "+").Result()
			return err == nil && len(messages) == 3
		}, 2*time.Second, 20*time.Millisecond)

		for i, id := range []string{"1", "2", "3"} {
			got, err := DefaultParseFromMessage[TestMessage](messages[i].Values)
			require.NoError(t, err)
			assert.Equal(t, id, got.ID)
		}
	})

	t.Run("publish before start", func(t *testing.T) {
		defer goleak.VerifyNone(t)
		client, _, cleanup := setupTest(t)
		defer cleanup()

		producer, err := NewProducer[TestMessage](client, "test-stream")
		require.NoError(t, err)
		assert.ErrorIs(t, producer.Publish(TestMessage{ID: "1"}), ErrProducerClosed)
	})

	t.Run("publish after close", func(t *testing.T) {
		defer goleak.VerifyNone(t)
		client, _, cleanup := setupTest(t)
		defer cleanup()

		producer, err := NewProducer[TestMessage](client, "test-stream")
		require.NoError(t, err)
		producer.Start()
		producer.Close()
		producer.Close()
		assert.ErrorIs(t, producer.Publish(TestMessage{ID: "1"}), ErrProducerClosed)
	})

	t.Run("parse error is returned to caller", func(t *testing.T) {
		defer goleak.VerifyNone(t)
		client, _, cleanup := setupTest(t)
		defer cleanup()

		parseErr := errors.New("cannot encode")
		producer, err := NewProducer[TestMessage](client, "test-stream",
			WithProducerParseFunc[TestMessage](func(TestMessage) (map[string]any, error) {
				return nil, parseErr
			}),
		)
		require.NoError(t, err)
		producer.Start()
		defer producer.Close()

		assert.ErrorIs(t, producer.Publish(TestMessage{ID: "1"}), parseErr)
	})
}
