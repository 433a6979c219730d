// Package ledger 是拍賣狀態的唯一權威來源。
//
// 每個指令在拍賣鎖內執行：載入目前紀錄、檢查商業規則、產生新的狀態與事件，
// 最後交由 Store 以版本檢查原子提交。商業規則錯誤直接回傳，
// 版本衝突與暫時性錯誤會以指數退避重試。
package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/microcosm-cc/bluemonday"

	"zenthra/events"
)

type ledgerOptions struct {
	logger        *slog.Logger
	clock         func() time.Time
	locker        Locker
	retryTries    uint
	retryInterval time.Duration
	lockTimeout   time.Duration
}

type Option func(*ledgerOptions)

// WithLogger 設置日誌記錄器
func WithLogger(logger *slog.Logger) Option {
	return func(o *ledgerOptions) {
		o.logger = logger
	}
}

// WithClock 設置時間來源
func WithClock(clock func() time.Time) Option {
	return func(o *ledgerOptions) {
		o.clock = clock
	}
}

// WithLocker 設置拍賣鎖，預設為 LocalLocker
func WithLocker(locker Locker) Option {
	return func(o *ledgerOptions) {
		o.locker = locker
	}
}

// WithRetryTries 設置暫時性錯誤的最大嘗試次數
func WithRetryTries(tries uint) Option {
	return func(o *ledgerOptions) {
		o.retryTries = tries
	}
}

// WithRetryInterval 設置第一次重試前的等待時間
func WithRetryInterval(d time.Duration) Option {
	return func(o *ledgerOptions) {
		o.retryInterval = d
	}
}

// WithLockTimeout 設置等待拍賣鎖的上限
func WithLockTimeout(d time.Duration) Option {
	return func(o *ledgerOptions) {
		o.lockTimeout = d
	}
}

type Ledger struct {
	store    Store
	sanitize *bluemonday.Policy
	logger   *slog.Logger
	options  ledgerOptions
}

func New(store Store, opts ...Option) (*Ledger, error) {
	if store == nil {
		return nil, errors.New("store cannot be nil")
	}
	options := ledgerOptions{
		logger:        slog.Default(),
		clock:         time.Now,
		retryTries:    5,
		retryInterval: 20 * time.Millisecond,
		lockTimeout:   5 * time.Second,
	}
	for _, opt := range opts {
		opt(&options)
	}
	if options.locker == nil {
		options.locker = NewLocalLocker()
	}
	if options.retryTries == 0 {
		options.retryTries = 1
	}
	return &Ledger{
		store:    store,
		sanitize: bluemonday.StrictPolicy(),
		logger:   options.logger.With(slog.String("caller", "Ledger")),
		options:  options,
	}, nil
}

type CreateAuctionInput struct {
	ItemName     string
	ItemImageURL string
	StartingBid  uint64
	Duration     time.Duration
	Creator      string
}

// CreateAuction 建立拍賣並回傳新的拍賣 id
func (l *Ledger) CreateAuction(ctx context.Context, input CreateAuctionInput) (uint64, error) {
	const op = "Ledger.CreateAuction"
	itemName := strings.TrimSpace(l.sanitize.Sanitize(input.ItemName))
	switch {
	case itemName == "":
		return 0, fmt.Errorf("[%s] Fail to validate input, err=%w: item name is required", op, ErrInvalidInput)
	case input.StartingBid == 0:
		return 0, fmt.Errorf("[%s] Fail to validate input, err=%w: starting bid must be positive", op, ErrInvalidInput)
	case input.Duration <= 0:
		return 0, fmt.Errorf("[%s] Fail to validate input, err=%w: duration must be positive", op, ErrInvalidInput)
	case input.Creator == "":
		return 0, fmt.Errorf("[%s] Fail to validate input, err=%w: creator is required", op, ErrInvalidInput)
	}

	// id 在重試迴圈外配置，重試時不會浪費序號
	id, err := retry(ctx, l, op, func() (uint64, error) {
		return l.store.NextAuctionID(ctx)
	})
	if err != nil {
		return 0, fmt.Errorf("[%s] Fail to allocate auction id, err=%w", op, err)
	}

	_, err = retry(ctx, l, op, func() ([]events.Envelope, error) {
		now := l.options.clock().UTC()
		auction := Auction{
			ID:                id,
			ItemName:          itemName,
			ItemImageURL:      strings.TrimSpace(input.ItemImageURL),
			Creator:           input.Creator,
			StartingBid:       input.StartingBid,
			CurrentHighestBid: input.StartingBid,
			CreatedTime:       now,
			EndTime:           now.Add(input.Duration),
			IsActive:          true,
		}
		return l.store.Commit(ctx, Change{
			Auction: auction,
			Events: []events.Payload{events.AuctionCreated{
				AuctionID:    id,
				Creator:      auction.Creator,
				ItemName:     auction.ItemName,
				ItemImageURL: auction.ItemImageURL,
				StartingBid:  auction.StartingBid,
				CreatedTime:  auction.CreatedTime,
				EndTime:      auction.EndTime,
			}},
			Index: []IndexEntry{{Kind: IndexCreator, Identity: auction.Creator}},
			Time:  now,
		})
	})
	if err != nil {
		return 0, fmt.Errorf("[%s] Fail to commit auction, id=%d, err=%w", op, id, err)
	}

	l.logger.Info("auction created",
		slog.Uint64("auctionId", id),
		slog.String("creator", input.Creator),
		slog.Uint64("startingBid", input.StartingBid),
	)
	return id, nil
}

// PlaceBid 對拍賣出價，金額必須嚴格高於目前最高價
func (l *Ledger) PlaceBid(ctx context.Context, auctionID, amount uint64, bidder string) error {
	const op = "Ledger.PlaceBid"
	if bidder == "" {
		return fmt.Errorf("[%s] Fail to validate input, err=%w: bidder is required", op, ErrInvalidInput)
	}

	err := l.mutate(ctx, op, auctionID, func(a Auction, now time.Time) (Change, error) {
		switch {
		case a.IsCompleted:
			return Change{}, ErrAlreadyCompleted
		case amount == 0:
			return Change{}, fmt.Errorf("%w: bid amount must be positive", ErrInvalidInput)
		case a.Expired(now):
			return Change{}, ErrAuctionExpired
		case bidder == a.Creator:
			return Change{}, ErrSelfBidForbidden
		case amount <= a.CurrentHighestBid:
			return Change{}, fmt.Errorf("%w: amount=%d, current=%d", ErrBidTooLow, amount, a.CurrentHighestBid)
		}

		a.CurrentHighestBid = amount
		a.HighestBidder = bidder
		a.BidCount++
		bid := Bid{
			AuctionID:    a.ID,
			Bidder:       bidder,
			Amount:       amount,
			Timestamp:    now,
			IsHighestBid: true,
		}
		return Change{
			Auction: a,
			Bid:     &bid,
			Events: []events.Payload{events.BidPlaced{
				AuctionID:    a.ID,
				Bidder:       bidder,
				Amount:       amount,
				Timestamp:    now,
				IsHighestBid: true,
			}},
			Index: []IndexEntry{{Kind: IndexBidder, Identity: bidder}},
			Time:  now,
		}, nil
	})
	if err != nil {
		return err
	}

	l.logger.Info("bid placed",
		slog.Uint64("auctionId", auctionID),
		slog.String("bidder", bidder),
		slog.Uint64("amount", amount),
	)
	return nil
}

// FinalizeAuction 結標，結束時間之前只有建立者可以提前結標
func (l *Ledger) FinalizeAuction(ctx context.Context, auctionID uint64, requester string) error {
	const op = "Ledger.FinalizeAuction"
	var winner string
	var price uint64

	err := l.mutate(ctx, op, auctionID, func(a Auction, now time.Time) (Change, error) {
		if a.IsCompleted {
			return Change{}, ErrAlreadyCompleted
		}
		if !a.Expired(now) && (requester == "" || requester != a.Creator) {
			return Change{}, ErrUnauthorized
		}

		// 沒有出價時視為流標
		winner, price = events.NoWinner, 0
		if a.BidCount > 0 {
			winner, price = a.HighestBidder, a.CurrentHighestBid
		}
		a.IsActive = false
		a.IsCompleted = true
		a.Winner = winner
		a.FinalPrice = price
		a.CompletedTime = now

		change := Change{
			Auction: a,
			Events: []events.Payload{events.AuctionCompleted{
				AuctionID:     a.ID,
				Winner:        winner,
				FinalPrice:    price,
				CompletedTime: now,
			}},
			Time: now,
		}
		if winner != events.NoWinner {
			change.Index = []IndexEntry{{Kind: IndexWinner, Identity: winner}}
		}
		return change, nil
	})
	if err != nil {
		return err
	}

	l.logger.Info("auction finalized",
		slog.Uint64("auctionId", auctionID),
		slog.String("requester", requester),
		slog.String("winner", winner),
		slog.Uint64("finalPrice", price),
	)
	return nil
}

// GetAuction 讀取權威狀態
func (l *Ledger) GetAuction(ctx context.Context, auctionID uint64) (Auction, error) {
	const op = "Ledger.GetAuction"
	record, err := l.store.Load(ctx, auctionID)
	if err != nil {
		return Auction{}, fmt.Errorf("[%s] Fail to load auction, id=%d, err=%w", op, auctionID, err)
	}
	return record.Auction, nil
}

// ListBids 依出價順序回傳出價紀錄
func (l *Ledger) ListBids(ctx context.Context, auctionID uint64) ([]Bid, error) {
	const op = "Ledger.ListBids"
	if _, err := l.store.Load(ctx, auctionID); err != nil {
		return nil, fmt.Errorf("[%s] Fail to load auction, id=%d, err=%w", op, auctionID, err)
	}
	bids, err := l.store.Bids(ctx, auctionID)
	if err != nil {
		return nil, fmt.Errorf("[%s] Fail to load bids, id=%d, err=%w", op, auctionID, err)
	}
	return bids, nil
}

func (l *Ledger) ListAuctionsByCreator(ctx context.Context, identity string) ([]uint64, error) {
	return l.listByIndex(ctx, IndexCreator, identity)
}

func (l *Ledger) ListAuctionsByBidder(ctx context.Context, identity string) ([]uint64, error) {
	return l.listByIndex(ctx, IndexBidder, identity)
}

func (l *Ledger) ListAuctionsByWinner(ctx context.Context, identity string) ([]uint64, error) {
	return l.listByIndex(ctx, IndexWinner, identity)
}

func (l *Ledger) listByIndex(ctx context.Context, kind IndexKind, identity string) ([]uint64, error) {
	const op = "Ledger.listByIndex"
	if identity == "" {
		return []uint64{}, nil
	}
	ids, err := l.store.Index(ctx, kind, identity)
	if err != nil {
		return nil, fmt.Errorf("[%s] Fail to load index, kind=%s, err=%w", op, kind, err)
	}
	return ids, nil
}

// mutate 在拍賣鎖內載入紀錄並提交 decide 產生的變更
func (l *Ledger) mutate(
	ctx context.Context,
	op string,
	auctionID uint64,
	decide func(a Auction, now time.Time) (Change, error),
) error {
	_, err := retry(ctx, l, op, func() ([]events.Envelope, error) {
		heldCtx, unlock, err := l.lock(ctx, auctionID)
		if err != nil {
			return nil, err
		}
		defer unlock()

		record, err := l.store.Load(heldCtx, auctionID)
		if err != nil {
			return nil, err
		}
		now := l.options.clock().UTC()
		change, err := decide(record.Auction, now)
		if err != nil {
			return nil, err
		}
		change.ExpectedVersion = record.Version
		return l.store.Commit(heldCtx, change)
	})
	if err != nil {
		return fmt.Errorf("[%s] Fail to apply command, id=%d, err=%w", op, auctionID, err)
	}
	return nil
}

// lock 只限制等待鎖的時間，取得後的 context 不受 lockTimeout 影響
func (l *Ledger) lock(ctx context.Context, auctionID uint64) (context.Context, func(), error) {
	waitCtx, cancel := context.WithCancel(ctx)
	timer := time.AfterFunc(l.options.lockTimeout, cancel)

	heldCtx, unlock, err := l.options.locker.Lock(waitCtx, auctionID)
	if err != nil {
		timer.Stop()
		cancel()
		if ctx.Err() != nil {
			return nil, nil, ctx.Err()
		}
		if errors.Is(err, context.Canceled) {
			return nil, nil, fmt.Errorf("%w: id=%d", ErrLockTimeout, auctionID)
		}
		return nil, nil, err
	}
	timer.Stop()
	return heldCtx, func() {
		unlock()
		cancel()
	}, nil
}

// retry 以指數退避重試 fn，商業規則錯誤與 context 結束時立即停止
func retry[T any](ctx context.Context, l *Ledger, op string, fn func() (T, error)) (T, error) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = l.options.retryInterval
	b.MaxInterval = 20 * l.options.retryInterval

	result, err := backoff.Retry(ctx, func() (T, error) {
		result, err := fn()
		if err != nil && (IsBusinessError(err) || ctx.Err() != nil) {
			return result, backoff.Permanent(err)
		}
		return result, err
	},
		backoff.WithBackOff(b),
		backoff.WithMaxTries(l.options.retryTries),
		backoff.WithNotify(func(err error, d time.Duration) {
			l.logger.Warn("retrying command",
				slog.String("op", op),
				slog.Duration("after", d),
				slog.Any("error", err),
			)
		}),
	)
	if err == nil {
		return result, nil
	}
	var zero T
	if IsBusinessError(err) || ctx.Err() != nil || errors.Is(err, ErrTransientStore) {
		return zero, err
	}
	return zero, fmt.Errorf("%w: %w", ErrTransientStore, err)
}
