package sse

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	redisAdapter "zenthra/adapters/redis"
)

type connectionManagerOptions[T any] struct {
	logger     *slog.Logger
	bufferSize int
	subscriber redisAdapter.IConsumer[PublishRequest[T]]
	publisher  redisAdapter.IProducer[PublishRequest[T]]
}

type ConnectionManagerOption[T any] func(*connectionManagerOptions[T])

// WithLogger 設置日誌記錄器
func WithLogger[T any](logger *slog.Logger) ConnectionManagerOption[T] {
	return func(o *connectionManagerOptions[T]) {
		o.logger = logger
	}
}

// WithBufferSize 設置每個訂閱者的緩衝大小
func WithBufferSize[T any](size int) ConnectionManagerOption[T] {
	return func(o *connectionManagerOptions[T]) {
		o.bufferSize = size
	}
}

// WithSubscriber 設置訊息來源，通常是讀取 Redis Stream 的 consumer
func WithSubscriber[T any](subscriber redisAdapter.IConsumer[PublishRequest[T]]) ConnectionManagerOption[T] {
	return func(o *connectionManagerOptions[T]) {
		o.subscriber = subscriber
	}
}

// WithPublisher 設置 Publish 的去處，未設置時只在本機廣播
func WithPublisher[T any](publisher redisAdapter.IProducer[PublishRequest[T]]) ConnectionManagerOption[T] {
	return func(o *connectionManagerOptions[T]) {
		o.publisher = publisher
	}
}

// connectionManager 管理多個 SSE 頻道的訂閱與發布。
// 訊息來源與去處都可以是 Redis Stream，讓多個服務實例能夠協同運作。
type connectionManager[T any] struct {
	logger *slog.Logger

	mu     sync.RWMutex   // 保護 active 和 channels 的讀寫
	wg     sync.WaitGroup // 用於等待所有 goroutine 完成
	active bool           // 標記 manager 是否正在運作中

	channels map[string]IChannel[T] // 儲存所有活躍的頻道
	options  connectionManagerOptions[T]
}

// NewConnectionManager 建立一個新的連線管理器。
func NewConnectionManager[T any](opts ...ConnectionManagerOption[T]) (IConnectionManager[T], error) {
	options := connectionManagerOptions[T]{
		logger:     slog.Default(),
		bufferSize: 16,
	}
	for _, opt := range opts {
		opt(&options)
	}
	if options.subscriber == nil && options.publisher != nil {
		return nil, errors.New("publisher requires a subscriber")
	}

	return &connectionManager[T]{
		logger:   options.logger.With(slog.String("caller", "ConnectionManager")),
		channels: make(map[string]IChannel[T]),
		active:   true,
		options:  options,
	}, nil
}

// Start 啟動連線管理器，開始處理訊息的接收與廣播。
// 應在呼叫其他方法前先呼叫此方法。
func (cm *connectionManager[T]) Start() {
	if cm.options.subscriber == nil {
		return
	}
	if cm.options.publisher != nil {
		cm.options.publisher.Start()
	}
	cm.options.subscriber.Start()

	// 啟動訊息處理的 goroutine
	cm.wg.Add(1)
	go func() {
		defer cm.wg.Done()
		for msg := range cm.options.subscriber.Subscribe() {
			cm.broadcast(msg)
		}
	}()
}

func (cm *connectionManager[T]) broadcast(msg PublishRequest[T]) {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	channel, ok := cm.channels[msg.Channel]
	if !ok {
		return
	}
	if dropped := channel.Broadcast(msg.Message); dropped > 0 {
		cm.logger.Warn("drop message for slow subscribers",
			slog.String("channel", msg.Channel),
			slog.Int("dropped", dropped),
		)
	}
}

// Done 停止連線管理器的運作。
func (cm *connectionManager[T]) Done() {
	cm.mu.Lock()
	if !cm.active {
		cm.mu.Unlock()
		return
	}
	cm.active = false
	cm.mu.Unlock()

	if cm.options.publisher != nil {
		cm.options.publisher.Close()
	}
	if cm.options.subscriber != nil {
		cm.options.subscriber.Close()
	}
	cm.wg.Wait()

	cm.mu.Lock()
	defer cm.mu.Unlock()
	for _, channel := range cm.channels {
		channel.UnsubscribeAll()
	}
	clear(cm.channels)
}

// Subscribe 訂閱指定的頻道。
// channelName: 要訂閱的頻道名稱
// 返回: 用於接收訊息的唯讀通道，以及可能的錯誤
func (cm *connectionManager[T]) Subscribe(channelName string) (<-chan T, error) {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	if !cm.active {
		return nil, context.Canceled
	}

	c, ok := cm.channels[channelName]
	if !ok {
		c = NewChannel[T](cm.options.bufferSize)
		cm.channels[channelName] = c
	}
	return c.Subscribe(), nil
}

// Publish 發布訊息到指定的頻道。
// 設置了 publisher 時訊息會經過 Redis Stream，由所有實例的 subscriber 收到後廣播。
func (cm *connectionManager[T]) Publish(channelName string, data T) error {
	cm.mu.RLock()
	active := cm.active
	cm.mu.RUnlock()
	if !active {
		return context.Canceled
	}

	request := PublishRequest[T]{Channel: channelName, Message: data}
	if cm.options.publisher != nil {
		return cm.options.publisher.Publish(request)
	}
	cm.broadcast(request)
	return nil
}

// Unsubscribe 取消訂閱指定的頻道。
func (cm *connectionManager[T]) Unsubscribe(channelName string, ch <-chan T) {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	c, ok := cm.channels[channelName]
	if !ok {
		return
	}

	c.Unsubscribe(ch)
	if c.IsIdle() {
		delete(cm.channels, channelName)
	}
}
