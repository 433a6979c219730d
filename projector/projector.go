// Package projector 把 ledger 的事件轉成讀取端的資料表。
//
// 每個事件的效果、已套用序號與 checkpoint 在同一個資料庫交易中提交，
// 重複的事件會被略過，因此可以從空資料庫重播完整的 event log，
// 也可以和其他實例同時消費同一個 stream。
package projector

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"zenthra/events"
	"zenthra/models"
)

const DefaultStream = "ledger:events"

var (
	// ErrMalformedEvent 事件缺少必要欄位或種類無法辨識
	ErrMalformedEvent = events.ErrMalformedEvent
	// ErrDeferralOverflow 等待中的事件超過上限而被移出
	ErrDeferralOverflow = errors.New("deferred event evicted")

	errAuctionMissing = errors.New("auction not projected yet")
)

// Outcome 是套用單一事件的結果
type Outcome int

const (
	Applied Outcome = iota
	Duplicate
	Deferred
	Skipped
)

func (o Outcome) String() string {
	switch o {
	case Applied:
		return "applied"
	case Duplicate:
		return "duplicate"
	case Deferred:
		return "deferred"
	case Skipped:
		return "skipped"
	}
	return fmt.Sprintf("Outcome(%d)", int(o))
}

type projectorOptions struct {
	logger        *slog.Logger
	stream        string
	notifiers     []Notifier
	deferWindow   int
	retryTries    uint
	retryInterval time.Duration
	maxInterval   time.Duration
	deadLetter    func(ctx context.Context, env events.Envelope, cause error) error
}

type Option func(*projectorOptions)

// WithLogger 設置日誌記錄器
func WithLogger(logger *slog.Logger) Option {
	return func(o *projectorOptions) {
		o.logger = logger
	}
}

// WithStream 設置 checkpoint 所屬的 stream 名稱
func WithStream(stream string) Option {
	return func(o *projectorOptions) {
		o.stream = stream
	}
}

// WithNotifiers 設置事件套用後要通知的對象
func WithNotifiers(notifiers ...Notifier) Option {
	return func(o *projectorOptions) {
		o.notifiers = append(o.notifiers, notifiers...)
	}
}

// WithDeferWindow 設置亂序事件最多可以等待的數量
func WithDeferWindow(size int) Option {
	return func(o *projectorOptions) {
		o.deferWindow = size
	}
}

// WithRetryTries 設置資料庫暫時性錯誤的最大嘗試次數
func WithRetryTries(tries uint) Option {
	return func(o *projectorOptions) {
		o.retryTries = tries
	}
}

// WithRetryInterval 設置第一次重試前的等待時間
func WithRetryInterval(d time.Duration) Option {
	return func(o *projectorOptions) {
		o.retryInterval = d
	}
}

// WithMaxRetryInterval 設置資料庫無法使用時，消費迴圈兩次重試之間的最長等待時間
func WithMaxRetryInterval(d time.Duration) Option {
	return func(o *projectorOptions) {
		o.maxInterval = d
	}
}

// WithDeadLetter 設置重播時被移出等待區的事件要送往的地方
func WithDeadLetter(fn func(ctx context.Context, env events.Envelope, cause error) error) Option {
	return func(o *projectorOptions) {
		o.deadLetter = fn
	}
}

type Projector struct {
	db       *gorm.DB
	logger   *slog.Logger
	mu       sync.Mutex
	deferred []deferredEvent
	options  projectorOptions
}

type deferredEvent struct {
	env  events.Envelope
	done func(ctx context.Context) error
	fail func(ctx context.Context, cause error) error
}

func New(db *gorm.DB, opts ...Option) (*Projector, error) {
	if db == nil {
		return nil, errors.New("db cannot be nil")
	}
	options := projectorOptions{
		logger:        slog.Default(),
		stream:        DefaultStream,
		deferWindow:   256,
		retryTries:    5,
		retryInterval: 50 * time.Millisecond,
		maxInterval:   5 * time.Second,
	}
	for _, opt := range opts {
		opt(&options)
	}
	if options.retryTries == 0 {
		options.retryTries = 1
	}
	return &Projector{
		db:      db,
		logger:  options.logger.With(slog.String("caller", "Projector"), slog.String("stream", options.stream)),
		options: options,
	}, nil
}

// Apply 套用單一事件
//
// 無法辨識的事件回傳 Skipped 與 ErrMalformedEvent；
// 拍賣尚未投影時事件會放進等待區並回傳 Deferred。
func (p *Projector) Apply(ctx context.Context, env events.Envelope) (Outcome, error) {
	return p.apply(ctx, deferredEvent{env: env})
}

func (p *Projector) apply(ctx context.Context, item deferredEvent) (Outcome, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	outcome, err := p.applyOne(ctx, item.env)
	if err != nil {
		return outcome, err
	}
	switch outcome {
	case Deferred:
		p.deferLocked(ctx, item)
	case Applied:
		p.drainLocked(ctx)
	}
	return outcome, nil
}

func (p *Projector) applyOne(ctx context.Context, env events.Envelope) (Outcome, error) {
	const op = "Projector.Apply"
	if err := env.Validate(); err != nil {
		p.logger.Warn("skip malformed event", slog.String("seq", env.Seq.String()), slog.Any("error", err))
		return Skipped, fmt.Errorf("[%s] Fail to validate event, err=%w", op, err)
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.options.retryInterval
	update, err := backoff.Retry(ctx, func() (*Update, error) {
		update, err := p.commit(ctx, env)
		if err != nil && (errors.Is(err, errAuctionMissing) || errors.Is(err, ErrMalformedEvent) || ctx.Err() != nil) {
			return nil, backoff.Permanent(err)
		}
		return update, err
	},
		backoff.WithBackOff(b),
		backoff.WithMaxTries(p.options.retryTries),
		backoff.WithNotify(func(err error, d time.Duration) {
			p.logger.Warn("retrying event", slog.String("seq", env.Seq.String()), slog.Duration("after", d), slog.Any("error", err))
		}),
	)
	switch {
	case errors.Is(err, errAuctionMissing):
		p.logger.Debug("defer event until auction is projected",
			slog.String("seq", env.Seq.String()),
			slog.Uint64("auctionId", env.AuctionID),
		)
		return Deferred, nil
	case err != nil:
		return 0, fmt.Errorf("[%s] Fail to apply event, seq=%s, err=%w", op, env.Seq, err)
	case update == nil:
		p.logger.Debug("skip duplicate event", slog.String("seq", env.Seq.String()))
		return Duplicate, nil
	}

	p.logger.Debug("event applied",
		slog.String("seq", env.Seq.String()),
		slog.String("kind", string(env.Kind())),
		slog.Uint64("auctionId", env.AuctionID),
	)
	p.notify(ctx, *update)
	return Applied, nil
}

// commit 在單一交易中寫入事件效果，重複事件回傳 nil
func (p *Projector) commit(ctx context.Context, env events.Envelope) (*Update, error) {
	var update *Update
	err := p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		applied := models.AppliedEvent{
			Tx:        env.Seq.Tx,
			Idx:       env.Seq.Idx,
			Kind:      string(env.Kind()),
			AuctionID: env.AuctionID,
			AppliedAt: time.Now().UTC(),
		}
		result := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&applied)
		if result.Error != nil {
			return fmt.Errorf("fail to record applied event, err=%w", result.Error)
		}
		if result.RowsAffected == 0 {
			return nil
		}

		u := Update{Seq: env.Seq, Kind: env.Kind(), AuctionID: env.AuctionID, Time: env.Timestamp}
		var err error
		switch payload := env.Payload.(type) {
		case events.AuctionCreated:
			err = p.applyCreated(tx, payload, &u)
		case events.BidPlaced:
			err = p.applyBid(tx, env.Seq, payload, &u)
		case events.AuctionCompleted:
			err = p.applyCompleted(tx, payload, &u)
		default:
			return fmt.Errorf("%w: unknown payload %T", ErrMalformedEvent, env.Payload)
		}
		if err != nil {
			return err
		}
		if err := p.advanceCheckpoint(tx, env.Seq); err != nil {
			return err
		}
		update = &u
		return nil
	})
	if err != nil {
		return nil, err
	}
	return update, nil
}

func (p *Projector) applyCreated(tx *gorm.DB, e events.AuctionCreated, u *Update) error {
	var count int64
	if result := tx.Model(&models.Auction{}).Where("id = ?", e.AuctionID).Count(&count); result.Error != nil {
		return fmt.Errorf("fail to check auction, err=%w", result.Error)
	}
	if count > 0 {
		p.logger.Warn("auction already projected", slog.Uint64("auctionId", e.AuctionID))
		return p.loadAuction(tx, e.AuctionID, u)
	}

	auction := models.Auction{
		ID:                e.AuctionID,
		ItemName:          e.ItemName,
		ItemImageURL:      e.ItemImageURL,
		Creator:           e.Creator,
		StartingBid:       e.StartingBid,
		CurrentHighestBid: e.StartingBid,
		CreatedTime:       e.CreatedTime.UTC(),
		EndTime:           e.EndTime.UTC(),
		IsActive:          true,
	}
	if result := tx.Create(&auction); result.Error != nil {
		return fmt.Errorf("fail to create auction, err=%w", result.Error)
	}
	u.Auction = auction
	return nil
}

func (p *Projector) applyBid(tx *gorm.DB, seq events.Sequence, e events.BidPlaced, u *Update) error {
	auction, err := p.findAuction(tx, e.AuctionID)
	if err != nil {
		return err
	}

	bid := models.Bid{
		Tx:           seq.Tx,
		Idx:          seq.Idx,
		AuctionID:    e.AuctionID,
		Bidder:       e.Bidder,
		Amount:       e.Amount,
		Timestamp:    e.Timestamp.UTC(),
		IsHighestBid: e.IsHighestBid,
	}
	if result := tx.Create(&bid); result.Error != nil {
		return fmt.Errorf("fail to create bid, err=%w", result.Error)
	}

	updates := map[string]any{"bid_count": gorm.Expr("bid_count + 1")}
	auction.BidCount++
	// 只在金額更高時更新，避免亂序的出價覆蓋最高價
	if e.Amount > auction.CurrentHighestBid {
		updates["current_highest_bid"] = e.Amount
		updates["highest_bidder"] = e.Bidder
		auction.CurrentHighestBid = e.Amount
		auction.HighestBidder = e.Bidder
	}
	if result := tx.Model(&models.Auction{ID: e.AuctionID}).Updates(updates); result.Error != nil {
		return fmt.Errorf("fail to update auction, err=%w", result.Error)
	}
	u.Auction = auction
	u.Bid = &bid
	return nil
}

func (p *Projector) applyCompleted(tx *gorm.DB, e events.AuctionCompleted, u *Update) error {
	auction, err := p.findAuction(tx, e.AuctionID)
	if err != nil {
		return err
	}

	completed := e.CompletedTime.UTC()
	updates := map[string]any{
		"is_active":      false,
		"is_completed":   true,
		"winner":         e.Winner,
		"final_price":    e.FinalPrice,
		"completed_time": completed,
	}
	auction.IsActive = false
	auction.IsCompleted = true
	auction.Winner = e.Winner
	auction.FinalPrice = e.FinalPrice
	auction.CompletedTime = &completed
	// 出價事件還沒到時以結標價為準
	if e.Winner != events.NoWinner && e.FinalPrice > auction.CurrentHighestBid {
		updates["current_highest_bid"] = e.FinalPrice
		updates["highest_bidder"] = e.Winner
		auction.CurrentHighestBid = e.FinalPrice
		auction.HighestBidder = e.Winner
	}
	if result := tx.Model(&models.Auction{ID: e.AuctionID}).Updates(updates); result.Error != nil {
		return fmt.Errorf("fail to complete auction, err=%w", result.Error)
	}
	u.Auction = auction
	return nil
}

func (p *Projector) findAuction(tx *gorm.DB, id uint64) (models.Auction, error) {
	var auction models.Auction
	if result := tx.Where("id = ?", id).Take(&auction); result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return auction, errAuctionMissing
		}
		return auction, fmt.Errorf("fail to find auction, err=%w", result.Error)
	}
	return auction, nil
}

func (p *Projector) loadAuction(tx *gorm.DB, id uint64, u *Update) error {
	auction, err := p.findAuction(tx, id)
	if err != nil {
		return err
	}
	u.Auction = auction
	return nil
}

func (p *Projector) advanceCheckpoint(tx *gorm.DB, seq events.Sequence) error {
	var checkpoint models.ProjectionCheckpoint
	result := tx.Where("stream = ?", p.options.stream).Limit(1).Find(&checkpoint)
	if result.Error != nil {
		return fmt.Errorf("fail to load checkpoint, err=%w", result.Error)
	}
	current := events.Sequence{Tx: checkpoint.Tx, Idx: checkpoint.Idx}
	if result.RowsAffected > 0 && !current.Less(seq) {
		return nil
	}
	checkpoint = models.ProjectionCheckpoint{
		Stream:    p.options.stream,
		Tx:        seq.Tx,
		Idx:       seq.Idx,
		UpdatedAt: time.Now().UTC(),
	}
	if result := tx.Save(&checkpoint); result.Error != nil {
		return fmt.Errorf("fail to save checkpoint, err=%w", result.Error)
	}
	return nil
}

// deferLocked 把事件放進等待區，同一序號只保留最新的一份
func (p *Projector) deferLocked(ctx context.Context, item deferredEvent) {
	for i, d := range p.deferred {
		if d.env.Seq == item.env.Seq {
			p.deferred[i] = item
			return
		}
	}
	p.deferred = append(p.deferred, item)
	for len(p.deferred) > p.options.deferWindow {
		evicted := p.deferred[0]
		p.deferred = p.deferred[1:]
		p.logger.Warn("evict deferred event",
			slog.String("seq", evicted.env.Seq.String()),
			slog.Uint64("auctionId", evicted.env.AuctionID),
		)
		p.evict(ctx, evicted)
	}
}

func (p *Projector) evict(ctx context.Context, item deferredEvent) {
	cause := fmt.Errorf("%w: auction %d never projected", ErrDeferralOverflow, item.env.AuctionID)
	fail := item.fail
	if fail == nil && p.options.deadLetter != nil {
		fail = func(ctx context.Context, cause error) error {
			return p.options.deadLetter(ctx, item.env, cause)
		}
	}
	if fail == nil {
		return
	}
	if err := fail(ctx, cause); err != nil {
		p.logger.Error("fail to dead letter evicted event", slog.String("seq", item.env.Seq.String()), slog.Any("error", err))
	}
}

// drainLocked 在成功套用後重試等待區，直到沒有進展為止
func (p *Projector) drainLocked(ctx context.Context) {
	for progressed := true; progressed && len(p.deferred) > 0; {
		progressed = false
		pending := p.deferred
		p.deferred = nil
		for i, item := range pending {
			outcome, err := p.applyOne(ctx, item.env)
			switch {
			case err != nil && ctx.Err() != nil:
				p.deferred = append(p.deferred, pending[i:]...)
				return
			case errors.Is(err, ErrMalformedEvent):
				p.logger.Warn("dead letter malformed deferred event", slog.String("seq", item.env.Seq.String()), slog.Any("error", err))
				if item.fail != nil {
					if err := item.fail(ctx, err); err != nil {
						p.logger.Error("fail to fail deferred event", slog.Any("error", err))
					}
				}
			case err != nil:
				// 暫時性錯誤不確認也不送往 dead letter，留在等待區等下一次成功套用後再試
				p.logger.Error("fail to apply deferred event, keep it deferred", slog.String("seq", item.env.Seq.String()), slog.Any("error", err))
				p.deferred = append(p.deferred, item)
			case outcome == Deferred:
				p.deferred = append(p.deferred, item)
			default:
				progressed = progressed || outcome == Applied
				if item.done != nil {
					if err := item.done(ctx); err != nil {
						p.logger.Error("fail to ack deferred event", slog.String("seq", item.env.Seq.String()), slog.Any("error", err))
					}
				}
			}
		}
	}
}

// Pending 回傳等待區中的事件數量
func (p *Projector) Pending() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.deferred)
}

// Checkpoint 回傳目前已套用的最大序號，尚未套用任何事件時為零值
func (p *Projector) Checkpoint(ctx context.Context) (events.Sequence, error) {
	const op = "Projector.Checkpoint"
	var checkpoint models.ProjectionCheckpoint
	result := p.db.WithContext(ctx).Where("stream = ?", p.options.stream).Limit(1).Find(&checkpoint)
	if result.Error != nil {
		return events.Sequence{}, fmt.Errorf("[%s] Fail to load checkpoint, err=%w", op, result.Error)
	}
	if result.RowsAffected == 0 {
		return events.Sequence{}, nil
	}
	return events.Sequence{Tx: checkpoint.Tx, Idx: checkpoint.Idx}, nil
}

// Reset 清空所有投影資料，之後可以從頭重播
func (p *Projector) Reset(ctx context.Context) error {
	const op = "Projector.Reset"
	p.mu.Lock()
	defer p.mu.Unlock()

	err := p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, model := range []any{&models.Bid{}, &models.Auction{}, &models.AppliedEvent{}} {
			if result := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(model); result.Error != nil {
				return result.Error
			}
		}
		return tx.Where("stream = ?", p.options.stream).Delete(&models.ProjectionCheckpoint{}).Error
	})
	if err != nil {
		return fmt.Errorf("[%s] Fail to reset projection, err=%w", op, err)
	}
	p.deferred = nil
	p.logger.Info("projection reset")
	return nil
}
