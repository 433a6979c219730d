package redis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	ErrConsumerClosed = errors.New("consumer is closed")
)

// Message 封裝消息和ack所需資料
type Message[T any] struct {
	Data T

	client     *redis.Client
	done       bool
	messageID  string
	stream     string
	group      string
	deadLetter string

	raw map[string]any
}

// Payload 回傳解析後的資料
func (m *Message[T]) Payload() T {
	return m.Data
}

// ID 回傳 stream entry id
func (m *Message[T]) ID() string {
	return m.messageID
}

// Done 確認消息已處理完成
func (m *Message[T]) Done(ctx context.Context) error {
	const op = "Message.Done"
	if m.done {
		return nil
	}
	err := m.client.XAck(ctx, m.stream, m.group, m.messageID).Err()
	if err != nil {
		return fmt.Errorf("[%s] failed to ack message: %w", op, err)
	}
	m.done = true
	return nil
}

// Fail 將消息移到 dead letter stream 後 ack
func (m *Message[T]) Fail(ctx context.Context, failErr error) error {
	const op = "Message.Fail"
	if m.done {
		return nil
	}

	values := make(map[string]any, len(m.raw)+2)
	for k, v := range m.raw {
		values[k] = v
	}
	values["origin_id"] = m.messageID
	if failErr != nil {
		values["error"] = failErr.Error()
	}
	err := m.client.XAdd(ctx, &redis.XAddArgs{
		Stream: m.deadLetter,
		Values: values,
	}).Err()
	if err != nil {
		return fmt.Errorf("[%s] failed to move message to dead letter queue: %w", op, err)
	}

	err = m.client.XAck(ctx, m.stream, m.group, m.messageID).Err()
	if err != nil {
		return fmt.Errorf("[%s] failed to ack failed message: %w", op, err)
	}
	m.done = true
	return nil
}

type GroupConsumer[T any] struct {
	client        *redis.Client
	stream        string
	group         string
	consumer      string
	downStream    chan *Message[T]
	cancelFunc    context.CancelFunc
	wg            sync.WaitGroup
	closed        bool
	logger        *slog.Logger
	mutex         IAutoRenewMutex
	pendingMsgIds []string
	options       groupConsumerOptions[T]
}

type groupConsumerOptions[T any] struct {
	logger         *slog.Logger
	parseFunc      func(map[string]any) (T, error)
	bufferSize     int
	blockTimeout   time.Duration
	mutex          IAutoRenewMutex
	startID        string
	deadLetter     string
	strictOrdering bool // 嚴格順序模式
}

type GroupConsumerOption[T any] func(*groupConsumerOptions[T])

// WithGroupConsumerLogger 設置日誌記錄器
func WithGroupConsumerLogger[T any](logger *slog.Logger) GroupConsumerOption[T] {
	return func(o *groupConsumerOptions[T]) {
		o.logger = logger
	}
}

// WithGroupConsumerParseFunc 設置消息解析函數
func WithGroupConsumerParseFunc[T any](fn func(map[string]any) (T, error)) GroupConsumerOption[T] {
	return func(o *groupConsumerOptions[T]) {
		o.parseFunc = fn
	}
}

// WithGroupConsumerBufferSize 設置下游channel的緩衝大小
func WithGroupConsumerBufferSize[T any](size int) GroupConsumerOption[T] {
	return func(o *groupConsumerOptions[T]) {
		o.bufferSize = size
	}
}

// WithGroupConsumerBlockTimeout 設置阻塞讀取超時時間
func WithGroupConsumerBlockTimeout[T any](d time.Duration) GroupConsumerOption[T] {
	return func(o *groupConsumerOptions[T]) {
		o.blockTimeout = d
	}
}

// WithGroupConsumerMutex 注入mutex (主要用於測試)
func WithGroupConsumerMutex[T any](mutex IAutoRenewMutex) GroupConsumerOption[T] {
	return func(o *groupConsumerOptions[T]) {
		o.mutex = mutex
	}
}

// WithGroupConsumerStartID 設置 group 不存在時建立 group 的起始位置，預設 "0" 從頭讀取
func WithGroupConsumerStartID[T any](id string) GroupConsumerOption[T] {
	return func(o *groupConsumerOptions[T]) {
		o.startID = id
	}
}

// WithGroupConsumerDeadLetterStream 設置 dead letter stream，預設為 <stream>:dead-letter
func WithGroupConsumerDeadLetterStream[T any](stream string) GroupConsumerOption[T] {
	return func(o *groupConsumerOptions[T]) {
		o.deadLetter = stream
	}
}

// WithGroupConsumerStrictOrdering 設置是否使用嚴格順序模式
func WithGroupConsumerStrictOrdering[T any](strict bool) GroupConsumerOption[T] {
	return func(o *groupConsumerOptions[T]) {
		o.strictOrdering = strict
	}
}

func NewGroupConsumer[T any](
	client *redis.Client,
	stream, group, consumer string,
	opts ...GroupConsumerOption[T],
) (IGroupConsumer[T], error) {
	if client == nil {
		return nil, errors.New("redis client cannot be nil")
	}
	if stream == "" || group == "" || consumer == "" {
		return nil, errors.New("stream, group and consumer cannot be empty")
	}

	options := groupConsumerOptions[T]{
		logger:         slog.Default(),
		parseFunc:      DefaultParseFromMessage[T],
		bufferSize:     1,
		blockTimeout:   time.Second,
		startID:        "0",
		deadLetter:     stream + ":dead-letter",
		strictOrdering: false,
	}
	for _, opt := range opts {
		opt(&options)
	}

	gc := &GroupConsumer[T]{
		logger:   options.logger.With(slog.String("caller", "GroupConsumer"), slog.String("stream", stream), slog.String("group", group), slog.String("consumer", consumer)),
		client:   client,
		stream:   stream,
		group:    group,
		consumer: consumer,
		closed:   true,
		options:  options,
	}

	// 只在嚴格順序模式下設置mutex
	if options.strictOrdering {
		if options.mutex != nil {
			gc.mutex = options.mutex
		} else {
			gc.mutex = NewAutoRenewMutex(client, fmt.Sprintf("lock:%s:%s", stream, group), WithAutoRenewMutexSkipLockError(true))
		}
	}

	return gc, nil
}

func (s *GroupConsumer[T]) Start() error {
	if !s.closed {
		return nil
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.downStream = make(chan *Message[T], s.options.bufferSize)
	s.cancelFunc = cancel
	s.closed = false
	s.logger.Info("starting group consumer")

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer s.logger.Info("group consumer goroutine stopped")
		defer close(s.downStream)

		locked := false
		defer func() {
			if locked {
				s.mutex.Unlock()
			}
		}()

		for {
			if ctx.Err() != nil {
				return
			}
			workloadContext := ctx

			// 如果是嚴格順序模式下，會先拿鎖，然後再處理消息
			if s.options.strictOrdering {
				var err error
				// workloadContext在嚴格順序模式下會被修改成帶鎖狀態的child context，可以接收到鎖的釋放信號
				workloadContext, err = s.mutex.Lock(ctx)
				if err != nil {
					if errors.Is(err, context.Canceled) {
						return
					}
					s.logger.Error("failed to acquire lock", slog.Any("error", err))
					s.wait(ctx)
					continue
				}
				locked = true
			}
			err := s.messagesWorkflow(workloadContext)
			if s.options.strictOrdering {
				// 鎖可能已經遺失，釋放後在下一輪重新競爭
				s.mutex.Unlock()
				locked = false
			}
			if err == nil {
				continue
			}
			// 如果是context.Canceled，且是因為外部context取消，則退出循環
			if errors.Is(err, context.Canceled) && ctx.Err() != nil {
				return
			}
			if s.options.strictOrdering && errors.Is(err, context.Canceled) {
				s.logger.Error("lock context cancelled, stopping current processing, restarting group consumer")
			} else {
				s.logger.Error("error processing messages, stopping current processing, restarting group consumer", slog.Any("error", err))
				s.wait(ctx)
			}
		}
	}()

	return nil
}

// Subscribe 訂閱Stream，返回Message通道
func (s *GroupConsumer[T]) Subscribe() <-chan *Message[T] {
	return s.downStream
}

func (s *GroupConsumer[T]) Close() error {
	if s.closed {
		return nil
	}
	s.logger.Info("closing group consumer")
	s.closed = true
	s.cancelFunc()

	s.wg.Wait()
	s.logger.Info("group consumer closed gracefully")
	return nil
}

func (s *GroupConsumer[T]) wait(ctx context.Context) {
	select {
	case <-ctx.Done():
	case <-time.After(s.options.blockTimeout):
	}
}

// ensureGroup 建立 consumer group，已存在時忽略
func (s *GroupConsumer[T]) ensureGroup(ctx context.Context) error {
	err := s.client.XGroupCreateMkStream(ctx, s.stream, s.group, s.options.startID).Err()
	if err != nil && !strings.HasPrefix(err.Error(), "BUSYGROUP") {
		return fmt.Errorf("error creating consumer group: %w", err)
	}
	return nil
}

// messagesWorkflow 處理消息的工作流程
func (s *GroupConsumer[T]) messagesWorkflow(ctx context.Context) error {
	if err := s.ensureGroup(ctx); err != nil {
		return err
	}
	if s.options.strictOrdering {
		if err := s.fetchPendingMessageIds(ctx); err != nil {
			s.logger.Error("initial pending messages fetch failed", slog.Any("error", err))
			return err
		}
	}
	for {
		message, err := s.fetchNextMessage(ctx)
		if err != nil {
			if errors.Is(err, redis.Nil) {
				continue
			}
			if ctx.Err() != nil {
				return context.Canceled
			}
			s.logger.Error("fetch message error", slog.Any("error", err))
			if strings.HasPrefix(err.Error(), "NOGROUP") {
				return err
			}
			// 其他的錯誤一般是server跟redis之間的通訊異常，稍後重試即可
			s.wait(ctx)
			continue
		}
		data, err := s.options.parseFunc(message.Values)
		if err != nil {
			// 解析失敗不會因為重試就成功，先將消息移動到dead-letter，系統繼續處理下一條消息
			s.logger.Error("failed to parse message",
				slog.String("messageId", message.ID),
				slog.Any("error", err),
			)
			if deadLetterErr := s.moveToDeadLetter(ctx, message, err); deadLetterErr != nil {
				s.logger.Error("error moving message to dead letter",
					slog.String("messageId", message.ID),
					slog.Any("error", deadLetterErr),
				)
				// 移動失敗時訊息會以pending的形式留在stream中
				// WARN: 嚴格順序模式下會在下一輪優先處理，非嚴格順序模式下需要手動處理
				return deadLetterErr
			}
			continue
		}
		msg := &Message[T]{
			Data:       data,
			messageID:  message.ID,
			stream:     s.stream,
			group:      s.group,
			deadLetter: s.options.deadLetter,
			client:     s.client,
			raw:        message.Values,
		}
		if err := s.moveToDownStream(ctx, msg); err != nil {
			// 只有可能是context.Canceled，訊息會以pending的形式留在stream中
			s.logger.Warn("message left pending",
				slog.String("messageId", message.ID),
				slog.Any("error", err),
			)
			return err
		}
	}
}

func (s *GroupConsumer[T]) fetchPendingMessageIds(ctx context.Context) error {
	s.pendingMsgIds = make([]string, 0, 100)
	lastId := "-"

	for {
		pending, err := s.client.XPendingExt(ctx, &redis.XPendingExtArgs{
			Stream: s.stream,
			Group:  s.group,
			Start:  lastId,
			End:    "+",
			Count:  100,
		}).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				break
			}
			return fmt.Errorf("error getting pending messages: %w", err)
		}
		if len(pending) == 0 {
			break
		}

		for _, p := range pending {
			// XPENDING 的範圍包含起點，跳過上一頁的最後一筆
			if p.ID == lastId {
				continue
			}
			s.pendingMsgIds = append(s.pendingMsgIds, p.ID)
		}
		lastId = pending[len(pending)-1].ID

		if len(pending) < 100 {
			break
		}
	}

	s.logger.Info("fetched all pending message IDs",
		slog.Int("count", len(s.pendingMsgIds)))
	return nil
}

func (s *GroupConsumer[T]) fetchNextMessage(ctx context.Context) (redis.XMessage, error) {
	if len(s.pendingMsgIds) > 0 {
		id := s.pendingMsgIds[0]
		messages, err := s.client.XRangeN(ctx, s.stream, id, id, 1).Result()
		if err != nil {
			return redis.XMessage{}, err
		}
		s.pendingMsgIds = s.pendingMsgIds[1:]
		if len(messages) == 0 {
			// 訊息已經被裁切，只剩下 pending 紀錄
			s.logger.Warn("pending message no longer exists, acking", slog.String("messageId", id))
			if err := s.client.XAck(ctx, s.stream, s.group, id).Err(); err != nil {
				return redis.XMessage{}, err
			}
			return redis.XMessage{}, redis.Nil
		}
		return messages[0], nil
	}

	streams, err := s.client.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    s.group,
		Consumer: s.consumer,
		Streams:  []string{s.stream, ">"},
		Count:    1,
		Block:    s.options.blockTimeout,
	}).Result()
	if err != nil {
		return redis.XMessage{}, err
	}
	if len(streams) == 0 || len(streams[0].Messages) == 0 {
		return redis.XMessage{}, redis.Nil
	}
	return streams[0].Messages[0], nil
}

func (s *GroupConsumer[T]) moveToDeadLetter(ctx context.Context, message redis.XMessage, cause error) error {
	values := make(map[string]any, len(message.Values)+2)
	for k, v := range message.Values {
		values[k] = v
	}
	values["origin_id"] = message.ID
	values["error"] = cause.Error()

	err := s.client.XAdd(ctx, &redis.XAddArgs{
		Stream: s.options.deadLetter,
		Values: values,
	}).Err()
	if err != nil {
		return fmt.Errorf("failed to move message to dead letter queue: %w", err)
	}

	return s.client.XAck(ctx, s.stream, s.group, message.ID).Err()
}

// moveToDownStream 處理發送消息到下游channel
func (s *GroupConsumer[T]) moveToDownStream(ctx context.Context, message *Message[T]) error {
	if ctx.Err() != nil {
		return context.Canceled
	}
	select {
	case <-ctx.Done():
		return context.Canceled
	case s.downStream <- message:
		return nil
	}
}
