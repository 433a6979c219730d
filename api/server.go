package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"

	natsAdapter "zenthra/adapters/nats"
	redisAdapter "zenthra/adapters/redis"
	"zenthra/adapters/sse"
	"zenthra/api/openapi"
	"zenthra/eventlog"
	"zenthra/events"
	"zenthra/ledger"
	"zenthra/models"
	"zenthra/projector"
	"zenthra/query"
)

const defaultKeepAliveInterval = 30 * time.Second

type ServerImpl struct {
	ledger        *ledger.Ledger
	query         *query.Service
	projector     *projector.Projector
	verifier      *TokenVerifier
	sseManager    sse.IConnectionManager[openapi.AuctionEvent]
	groupConsumer redisAdapter.IGroupConsumer[events.Envelope]
	eventLog      eventlog.Reader
	rebuild       bool
	redisClient   *redis.Client
	natsConn      *nats.Conn
	db            *gorm.DB
	logger        *slog.Logger
	keepAlive     time.Duration

	wg         sync.WaitGroup
	cancelFunc context.CancelFunc
}

func NewServer(config ServerConfig) (*ServerImpl, error) {
	const op = "NewServer"
	logger := slog.Default()

	verifier, err := NewTokenVerifier(config.Auth)
	if err != nil {
		return nil, fmt.Errorf("[%s] Fail to create token verifier, err=%w", op, err)
	}

	// 初始化資料庫連線
	dsn := fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable&search_path=%s", config.DB.User, config.DB.Password, config.DB.Host, config.DB.Port, config.DB.Database, config.DB.Schema)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		TranslateError: true,
		NamingStrategy: schema.NamingStrategy{
			TablePrefix: config.DB.Schema + ".",
		},
	})
	if err != nil {
		return nil, fmt.Errorf("[%s] Fail to connect to database, err=%w", op, err)
	}
	if config.DB.AutoMigrate {
		if err := db.AutoMigrate(models.All()...); err != nil {
			return nil, fmt.Errorf("[%s] Fail to migrate database, err=%w", op, err)
		}
	}

	// 初始化Redis連線
	redisClient := redis.NewClient(&redis.Options{
		Addr:     config.Redis.Addr,
		Password: config.Redis.Password,
		DB:       config.Redis.DB,
	})

	// 初始化ledger
	storeOpts := []ledger.RedisStoreOption{
		ledger.WithRedisStoreLogger(logger),
		ledger.WithRedisStoreKeyPrefix(config.Redis.KeyPrefix),
	}
	if config.Redis.StreamKeys.Events != "" {
		storeOpts = append(storeOpts, ledger.WithRedisStoreStream(config.Redis.StreamKeys.Events))
	}
	store, err := ledger.NewRedisStore(redisClient, storeOpts...)
	if err != nil {
		return nil, fmt.Errorf("[%s] Fail to create ledger store, err=%w", op, err)
	}
	ledgerOpts := []ledger.Option{
		ledger.WithLogger(logger),
		ledger.WithLocker(ledger.NewRedisLocker(
			redisClient,
			ledger.WithRedisLockerLogger(logger),
			ledger.WithRedisLockerKeyPrefix(config.Redis.KeyPrefix+"lock:auction:"),
		)),
	}
	if config.Ledger.LockTimeout > 0 {
		ledgerOpts = append(ledgerOpts, ledger.WithLockTimeout(config.Ledger.LockTimeout))
	}
	if config.Ledger.RetryTries > 0 {
		ledgerOpts = append(ledgerOpts, ledger.WithRetryTries(config.Ledger.RetryTries))
	}
	if config.Ledger.RetryInterval > 0 {
		ledgerOpts = append(ledgerOpts, ledger.WithRetryInterval(config.Ledger.RetryInterval))
	}
	l, err := ledger.New(store, ledgerOpts...)
	if err != nil {
		return nil, fmt.Errorf("[%s] Fail to create ledger, err=%w", op, err)
	}

	// 初始化查詢服務
	q, err := query.New(db, query.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("[%s] Fail to create query service, err=%w", op, err)
	}

	// 初始化SSE管理器，更新經過Redis Stream廣播到所有實例
	sseStream := config.Redis.KeyPrefix + config.Redis.StreamKeys.SSE
	sseProducer, err := redisAdapter.NewProducer[sse.PublishRequest[openapi.AuctionEvent]](
		redisClient,
		sseStream,
		redisAdapter.WithProducerLogger[sse.PublishRequest[openapi.AuctionEvent]](logger),
		redisAdapter.WithProducerMaxLen[sse.PublishRequest[openapi.AuctionEvent]](10000),
	)
	if err != nil {
		return nil, fmt.Errorf("[%s] Fail to create sse producer, err=%w", op, err)
	}
	sseConsumer, err := redisAdapter.NewConsumer[sse.PublishRequest[openapi.AuctionEvent]](
		redisClient,
		sseStream,
		redisAdapter.WithConsumerLogger[sse.PublishRequest[openapi.AuctionEvent]](logger),
	)
	if err != nil {
		return nil, fmt.Errorf("[%s] Fail to create sse consumer, err=%w", op, err)
	}
	sseOpts := []sse.ConnectionManagerOption[openapi.AuctionEvent]{
		sse.WithLogger[openapi.AuctionEvent](logger),
		sse.WithSubscriber(sseConsumer),
		sse.WithPublisher[openapi.AuctionEvent](sseProducer),
	}
	if config.SSE.BufferSize > 0 {
		sseOpts = append(sseOpts, sse.WithBufferSize[openapi.AuctionEvent](config.SSE.BufferSize))
	}
	sseManager, err := sse.NewConnectionManager(sseOpts...)
	if err != nil {
		return nil, fmt.Errorf("[%s] Fail to create sse connection manager, err=%w", op, err)
	}

	// 初始化nats
	notifiers := []projector.Notifier{SSENotifier(sseManager)}
	var natsConn *nats.Conn
	if config.NATS.URL != "" {
		natsConn, err = natsAdapter.Connect(config.NATS.URL, "zenthra-"+config.ID, logger)
		if err != nil {
			return nil, fmt.Errorf("[%s] Fail to connect to nats, err=%w", op, err)
		}
		publisher, err := natsAdapter.NewPublisher[projector.Update](
			natsConn,
			config.NATS.SubjectPrefix,
			natsAdapter.WithPublisherLogger(logger),
		)
		if err != nil {
			natsConn.Close()
			return nil, fmt.Errorf("[%s] Fail to create nats publisher, err=%w", op, err)
		}
		notifiers = append(notifiers, NATSNotifier(publisher))
	}

	// 初始化projector與group consumer
	projectorOpts := append(projectorOptions(config.Projector),
		projector.WithLogger(logger),
		projector.WithStream(store.Stream()),
		projector.WithNotifiers(notifiers...),
	)
	p, err := projector.New(db, projectorOpts...)
	if err != nil {
		return nil, fmt.Errorf("[%s] Fail to create projector, err=%w", op, err)
	}
	groupConsumer, err := redisAdapter.NewGroupConsumer(
		redisClient,
		store.Stream(),
		config.Redis.ConsumerGroup,
		config.ID,
		redisAdapter.WithGroupConsumerLogger[events.Envelope](logger),
		redisAdapter.WithGroupConsumerParseFunc(events.FromMessage),
		redisAdapter.WithGroupConsumerStrictOrdering[events.Envelope](true),
	)
	if err != nil {
		return nil, fmt.Errorf("[%s] Fail to create group consumer, err=%w", op, err)
	}

	eventLog, err := eventlog.NewRedisLog(redisClient, store.Stream(), eventlog.WithRedisLogLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("[%s] Fail to create event log reader, err=%w", op, err)
	}

	impl := newServerImpl(l, q, p, verifier, sseManager, logger)
	impl.groupConsumer = groupConsumer
	impl.eventLog = eventLog
	impl.rebuild = config.Projector.Rebuild
	impl.redisClient = redisClient
	impl.natsConn = natsConn
	impl.db = db
	if config.SSE.KeepAliveInterval > 0 {
		impl.keepAlive = config.SSE.KeepAliveInterval
	}
	return impl, nil
}

func newServerImpl(
	l *ledger.Ledger,
	q *query.Service,
	p *projector.Projector,
	verifier *TokenVerifier,
	sseManager sse.IConnectionManager[openapi.AuctionEvent],
	logger *slog.Logger,
) *ServerImpl {
	return &ServerImpl{
		ledger:     l,
		query:      q,
		projector:  p,
		verifier:   verifier,
		sseManager: sseManager,
		logger:     logger.With(slog.String("caller", "Server")),
		keepAlive:  defaultKeepAliveInterval,
	}
}

// projectorOptions 把設定中非零的欄位轉成 projector 選項
func projectorOptions(config ProjectorConfig) []projector.Option {
	var opts []projector.Option
	if config.DeferWindow > 0 {
		opts = append(opts, projector.WithDeferWindow(config.DeferWindow))
	}
	if config.RetryTries > 0 {
		opts = append(opts, projector.WithRetryTries(config.RetryTries))
	}
	if config.RetryInterval > 0 {
		opts = append(opts, projector.WithRetryInterval(config.RetryInterval))
	}
	if config.MaxRetryInterval > 0 {
		opts = append(opts, projector.WithMaxRetryInterval(config.MaxRetryInterval))
	}
	return opts
}

// SSENotifier 把投影更新推送到拍賣對應的 SSE 頻道
func SSENotifier(manager sse.IConnectionManager[openapi.AuctionEvent]) projector.Notifier {
	return projector.NotifierFunc(func(_ context.Context, update projector.Update) error {
		return manager.Publish(strconv.FormatUint(update.AuctionID, 10), fromUpdate(update))
	})
}

// NATSNotifier 把投影更新發布到 <prefix>.<auctionId>
func NATSNotifier(publisher *natsAdapter.Publisher[projector.Update]) projector.Notifier {
	return projector.NotifierFunc(func(_ context.Context, update projector.Update) error {
		return publisher.Publish(strconv.FormatUint(update.AuctionID, 10), update)
	})
}

func (impl *ServerImpl) Start() error {
	const op = "Start"
	// 啟動sse connection manager
	impl.sseManager.Start()
	if impl.rebuild && impl.eventLog != nil {
		if err := impl.Rebuild(context.Background()); err != nil {
			return fmt.Errorf("[%s] Fail to rebuild projection, err=%w", op, err)
		}
	}
	if impl.groupConsumer == nil {
		return nil
	}
	// 啟動group consumer
	if err := impl.groupConsumer.Start(); err != nil {
		return fmt.Errorf("[%s] Fail to start group consumer, err=%w", op, err)
	}
	// 啟動一個worker將ledger事件投影到資料庫
	ctx, cancel := context.WithCancel(context.Background())
	impl.cancelFunc = cancel
	impl.logger.Info("Start projection worker")
	impl.wg.Add(1)
	go func() {
		defer impl.wg.Done()
		defer impl.logger.Info("Projection worker stopped")
		if err := projector.Consume(ctx, impl.projector, impl.groupConsumer.Subscribe()); err != nil {
			impl.logger.Error("Projection worker failed", slog.Any("error", err))
		}
	}()
	return nil
}

// Rebuild 清空投影後從 event log 開頭重播
func (impl *ServerImpl) Rebuild(ctx context.Context) error {
	const op = "Rebuild"
	if err := impl.projector.Reset(ctx); err != nil {
		return fmt.Errorf("[%s] Fail to reset projection, err=%w", op, err)
	}
	stats, err := impl.projector.Replay(ctx, impl.eventLog, projector.WithReplayFromStart())
	if err != nil {
		return fmt.Errorf("[%s] Fail to replay event log, err=%w", op, err)
	}
	impl.logger.Info("Projection rebuilt",
		slog.Int("applied", stats.Applied),
		slog.Int("deferred", stats.Deferred),
		slog.Int("skipped", stats.Skipped),
		slog.String("last", stats.Last.String()),
	)
	return nil
}

func (impl *ServerImpl) Close() {
	// 關閉group consumer
	if impl.groupConsumer != nil {
		if err := impl.groupConsumer.Close(); err != nil {
			impl.logger.Error("Fail to close group consumer", slog.Any("error", err))
		}
	}
	// 關閉worker
	if impl.cancelFunc != nil {
		impl.cancelFunc()
	}
	impl.wg.Wait()
	// 關閉sse connection manager
	impl.sseManager.Done()
	if impl.natsConn != nil {
		if err := impl.natsConn.Drain(); err != nil && !errors.Is(err, nats.ErrConnectionClosed) {
			impl.logger.Error("Fail to drain nats connection", slog.Any("error", err))
		}
	}
	if impl.redisClient != nil {
		if err := impl.redisClient.Close(); err != nil {
			impl.logger.Error("Fail to close redis client", slog.Any("error", err))
		}
	}
	if impl.db != nil {
		if sqlDB, err := impl.db.DB(); err == nil {
			sqlDB.Close()
		}
	}
}

// GinServerOptions 回傳註冊 openapi 路由時使用的驗證 middleware 與參數錯誤處理
func (impl *ServerImpl) GinServerOptions() openapi.GinServerOptions {
	return openapi.GinServerOptions{
		Middlewares:  []openapi.MiddlewareFunc{impl.AuthMiddleware()},
		ErrorHandler: ParamErrorHandler,
	}
}
