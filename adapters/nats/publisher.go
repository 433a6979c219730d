package nats

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/vmihailenco/msgpack/v5"
)

var ErrInvalidSubject = errors.New("invalid subject token")

// IConn 是發布所需的最小連線介面，*nats.Conn 即滿足
type IConn interface {
	Publish(subject string, data []byte) error
}

// Connect 建立會無限重連的 nats 連線
func Connect(url, name string, logger *slog.Logger) (*nats.Conn, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("caller", "NatsConn"))
	conn, err := nats.Connect(url,
		nats.Name(name),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			logger.Warn("nats disconnected", slog.Any("error", err))
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			logger.Info("nats reconnected", slog.String("url", c.ConnectedUrl()))
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("fail to connect to nats, err=%w", err)
	}
	return conn, nil
}

type publisherOptions struct {
	logger *slog.Logger
}

type PublisherOption func(*publisherOptions)

// WithPublisherLogger 設置日誌記錄器
func WithPublisherLogger(logger *slog.Logger) PublisherOption {
	return func(o *publisherOptions) {
		o.logger = logger
	}
}

// Publisher 把訊息以 msgpack 編碼後發布到 <prefix>.<key>
type Publisher[T any] struct {
	conn   IConn
	prefix string
	logger *slog.Logger
}

func NewPublisher[T any](conn IConn, prefix string, opts ...PublisherOption) (*Publisher[T], error) {
	if conn == nil {
		return nil, errors.New("nats connection cannot be nil")
	}
	if err := validToken(prefix, true); err != nil {
		return nil, fmt.Errorf("invalid prefix %q: %w", prefix, err)
	}
	options := publisherOptions{logger: slog.Default()}
	for _, opt := range opts {
		opt(&options)
	}
	return &Publisher[T]{
		conn:   conn,
		prefix: prefix,
		logger: options.logger.With(slog.String("caller", "NatsPublisher"), slog.String("prefix", prefix)),
	}, nil
}

// Subject 回傳 key 對應的 subject
func (p *Publisher[T]) Subject(key string) string {
	return p.prefix + "." + key
}

func (p *Publisher[T]) Publish(key string, data T) error {
	if err := validToken(key, false); err != nil {
		return fmt.Errorf("invalid key %q: %w", key, err)
	}
	payload, err := msgpack.Marshal(data)
	if err != nil {
		return fmt.Errorf("fail to encode message, err=%w", err)
	}
	subject := p.Subject(key)
	if err := p.conn.Publish(subject, payload); err != nil {
		return fmt.Errorf("fail to publish message, subject=%s, err=%w", subject, err)
	}
	p.logger.Debug("message published", slog.String("subject", subject), slog.Int("size", len(payload)))
	return nil
}

// Decode 解析 Publisher 發布的訊息
func Decode[T any](msg *nats.Msg) (T, error) {
	var data T
	if msg == nil || len(msg.Data) == 0 {
		return data, errors.New("empty message")
	}
	if err := msgpack.Unmarshal(msg.Data, &data); err != nil {
		return data, fmt.Errorf("fail to decode message, subject=%s, err=%w", msg.Subject, err)
	}
	return data, nil
}

// validToken 檢查 subject 片段，prefix 可以包含 '.'
func validToken(s string, allowDot bool) error {
	if s == "" || strings.ContainsAny(s, " \t\r\n*>") {
		return ErrInvalidSubject
	}
	if !allowDot && strings.Contains(s, ".") {
		return ErrInvalidSubject
	}
	if strings.HasPrefix(s, ".") || strings.HasSuffix(s, ".") || strings.Contains(s, "..") {
		return ErrInvalidSubject
	}
	return nil
}
