package projector

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"zenthra/eventlog"
	"zenthra/events"
	"zenthra/ledger"
	"zenthra/models"
)

func TestMain(m *testing.M) {
	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
	goleak.VerifyTestMain(m)
}

var baseTime = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+uuid.NewString()+"?mode=memory&cache=shared"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Discard,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(models.All()...))
	return db
}

func setupProjector(t *testing.T, opts ...Option) (*Projector, *gorm.DB) {
	t.Helper()
	db := setupDB(t)
	p, err := New(db, append([]Option{WithRetryInterval(time.Millisecond)}, opts...)...)
	require.NoError(t, err)
	return p, db
}

func created(tx uint64, auctionID uint64, startingBid uint64) events.Envelope {
	return events.Envelope{
		Seq:       events.Sequence{Tx: tx},
		AuctionID: auctionID,
		Timestamp: baseTime,
		Payload: events.AuctionCreated{
			AuctionID:   auctionID,
			Creator:     "alice",
			ItemName:    "Lamp",
			StartingBid: startingBid,
			CreatedTime: baseTime,
			EndTime:     baseTime.Add(time.Hour),
		},
	}
}

func bid(tx uint64, auctionID uint64, bidder string, amount uint64) events.Envelope {
	ts := baseTime.Add(time.Duration(tx) * time.Second)
	return events.Envelope{
		Seq:       events.Sequence{Tx: tx},
		AuctionID: auctionID,
		Timestamp: ts,
		Payload: events.BidPlaced{
			AuctionID:    auctionID,
			Bidder:       bidder,
			Amount:       amount,
			Timestamp:    ts,
			IsHighestBid: true,
		},
	}
}

func completed(tx uint64, auctionID uint64, winner string, price uint64) events.Envelope {
	ts := baseTime.Add(2 * time.Hour)
	return events.Envelope{
		Seq:       events.Sequence{Tx: tx},
		AuctionID: auctionID,
		Timestamp: ts,
		Payload: events.AuctionCompleted{
			AuctionID:     auctionID,
			Winner:        winner,
			FinalPrice:    price,
			CompletedTime: ts,
		},
	}
}

func loadAuction(t *testing.T, db *gorm.DB, id uint64) models.Auction {
	t.Helper()
	var auction models.Auction
	require.NoError(t, db.Where("id = ?", id).Take(&auction).Error)
	return auction
}

func applyAll(t *testing.T, p *Projector, envs ...events.Envelope) []Outcome {
	t.Helper()
	outcomes := make([]Outcome, 0, len(envs))
	for _, env := range envs {
		outcome, err := p.Apply(context.Background(), env)
		require.NoError(t, err)
		outcomes = append(outcomes, outcome)
	}
	return outcomes
}

func TestProjector_Apply(t *testing.T) {
	p, db := setupProjector(t)

	outcomes := applyAll(t, p,
		created(1, 1, 100),
		bid(2, 1, "bob", 150),
		bid(3, 1, "carol", 180),
		completed(4, 1, "carol", 180),
	)
	assert.Equal(t, []Outcome{Applied, Applied, Applied, Applied}, outcomes)

	auction := loadAuction(t, db, 1)
	assert.Equal(t, "Lamp", auction.ItemName)
	assert.Equal(t, uint64(100), auction.StartingBid)
	assert.Equal(t, uint64(180), auction.CurrentHighestBid)
	assert.Equal(t, "carol", auction.HighestBidder)
	assert.Equal(t, uint64(2), auction.BidCount)
	assert.False(t, auction.IsActive)
	assert.True(t, auction.IsCompleted)
	assert.Equal(t, "carol", auction.Winner)
	assert.Equal(t, uint64(180), auction.FinalPrice)
	require.NotNil(t, auction.CompletedTime)
	assert.True(t, baseTime.Add(2*time.Hour).Equal(*auction.CompletedTime))

	var bids []models.Bid
	require.NoError(t, db.Order("tx, idx").Find(&bids).Error)
	require.Len(t, bids, 2)
	assert.Equal(t, "bob", bids[0].Bidder)
	assert.Equal(t, uint64(3), bids[1].Tx)

	checkpoint, err := p.Checkpoint(context.Background())
	require.NoError(t, err)
	assert.Equal(t, events.Sequence{Tx: 4}, checkpoint)
}

func TestProjector_Idempotence(t *testing.T) {
	p, db := setupProjector(t)
	log := []events.Envelope{
		created(1, 1, 100),
		bid(2, 1, "bob", 150),
		completed(3, 1, "bob", 150),
	}
	applyAll(t, p, log...)
	before := loadAuction(t, db, 1)

	outcomes := applyAll(t, p, log...)
	assert.Equal(t, []Outcome{Duplicate, Duplicate, Duplicate}, outcomes)

	after := loadAuction(t, db, 1)
	assert.Equal(t, before.BidCount, after.BidCount)
	assert.Equal(t, before.CurrentHighestBid, after.CurrentHighestBid)

	var count int64
	require.NoError(t, db.Model(&models.Bid{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
	require.NoError(t, db.Model(&models.AppliedEvent{}).Count(&count).Error)
	assert.Equal(t, int64(3), count)
}

func TestProjector_DuplicateCreate(t *testing.T) {
	p, db := setupProjector(t)
	applyAll(t, p, created(1, 1, 100))

	// 不同序號但相同 id 的建立事件只記錄不覆蓋
	again := created(2, 1, 999)
	outcome, err := p.Apply(context.Background(), again)
	require.NoError(t, err)
	assert.Equal(t, Applied, outcome)
	assert.Equal(t, uint64(100), loadAuction(t, db, 1).StartingBid)
}

func TestProjector_OutOfOrderBids(t *testing.T) {
	p, db := setupProjector(t)
	applyAll(t, p,
		created(1, 1, 100),
		bid(3, 1, "carol", 200),
		bid(2, 1, "bob", 150),
	)

	auction := loadAuction(t, db, 1)
	assert.Equal(t, uint64(200), auction.CurrentHighestBid)
	assert.Equal(t, "carol", auction.HighestBidder)
	assert.Equal(t, uint64(2), auction.BidCount)

	// checkpoint 不會倒退
	checkpoint, err := p.Checkpoint(context.Background())
	require.NoError(t, err)
	assert.Equal(t, events.Sequence{Tx: 3}, checkpoint)
}

func TestProjector_CompletedBeforeBids(t *testing.T) {
	p, db := setupProjector(t)
	applyAll(t, p,
		created(1, 1, 100),
		completed(4, 1, "carol", 200),
		bid(2, 1, "bob", 150),
	)
	auction := loadAuction(t, db, 1)
	assert.Equal(t, uint64(200), auction.CurrentHighestBid)
	assert.Equal(t, "carol", auction.HighestBidder)
	assert.True(t, auction.IsCompleted)
}

func TestProjector_Deferred(t *testing.T) {
	var mu sync.Mutex
	var updates []Update
	p, db := setupProjector(t, WithNotifiers(NotifierFunc(func(_ context.Context, u Update) error {
		mu.Lock()
		defer mu.Unlock()
		updates = append(updates, u)
		return nil
	})))

	outcomes := applyAll(t, p, bid(2, 1, "bob", 150), completed(3, 1, "bob", 150))
	assert.Equal(t, []Outcome{Deferred, Deferred}, outcomes)
	assert.Equal(t, 2, p.Pending())

	outcomes = applyAll(t, p, created(1, 1, 100))
	assert.Equal(t, []Outcome{Applied}, outcomes)
	assert.Equal(t, 0, p.Pending())

	auction := loadAuction(t, db, 1)
	assert.True(t, auction.IsCompleted)
	assert.Equal(t, "bob", auction.Winner)
	assert.Equal(t, uint64(1), auction.BidCount)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, updates, 3)
	assert.Equal(t, events.KindAuctionCreated, updates[0].Kind)
	assert.Equal(t, events.KindBidPlaced, updates[1].Kind)
	require.NotNil(t, updates[1].Bid)
	assert.Equal(t, uint64(150), updates[1].Bid.Amount)
	assert.Equal(t, events.KindAuctionCompleted, updates[2].Kind)
	assert.True(t, updates[2].Auction.IsCompleted)
}

func TestProjector_DeferralOverflow(t *testing.T) {
	var evicted []events.Sequence
	p, _ := setupProjector(t,
		WithDeferWindow(2),
		WithDeadLetter(func(_ context.Context, env events.Envelope, cause error) error {
			assert.ErrorIs(t, cause, ErrDeferralOverflow)
			evicted = append(evicted, env.Seq)
			return nil
		}),
	)
	applyAll(t, p, bid(2, 1, "a", 10), bid(3, 1, "b", 20), bid(2, 1, "a", 10), bid(4, 1, "c", 30))

	assert.Equal(t, []events.Sequence{{Tx: 2}}, evicted)
	assert.Equal(t, 2, p.Pending())
}

func TestProjector_Malformed(t *testing.T) {
	p, _ := setupProjector(t)
	tests := []struct {
		name string
		env  events.Envelope
	}{
		{"沒有 payload", events.Envelope{Seq: events.Sequence{Tx: 1}, AuctionID: 1}},
		{"沒有序號", events.Envelope{AuctionID: 1, Payload: events.BidPlaced{AuctionID: 1, Bidder: "b", Amount: 1}}},
		{"拍賣 id 不一致", events.Envelope{Seq: events.Sequence{Tx: 1}, AuctionID: 2, Payload: events.BidPlaced{AuctionID: 1, Bidder: "b", Amount: 1}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			outcome, err := p.Apply(context.Background(), tt.env)
			assert.ErrorIs(t, err, ErrMalformedEvent)
			assert.Equal(t, Skipped, outcome)
		})
	}
}

func TestProjector_Replay(t *testing.T) {
	ctx := context.Background()
	store := ledger.NewMemoryStore()
	l, err := ledger.New(store, ledger.WithClock(func() time.Time { return baseTime }))
	require.NoError(t, err)

	first, err := l.CreateAuction(ctx, ledger.CreateAuctionInput{ItemName: "Lamp", StartingBid: 100, Duration: time.Hour, Creator: "alice"})
	require.NoError(t, err)
	second, err := l.CreateAuction(ctx, ledger.CreateAuctionInput{ItemName: "Chair", StartingBid: 10, Duration: time.Hour, Creator: "bob"})
	require.NoError(t, err)
	require.NoError(t, l.PlaceBid(ctx, first, 150, "bob"))
	require.NoError(t, l.PlaceBid(ctx, second, 20, "carol"))
	require.NoError(t, l.PlaceBid(ctx, first, 160, "carol"))
	require.NoError(t, l.FinalizeAuction(ctx, first, "alice"))

	p, db := setupProjector(t)
	stats, err := p.Replay(ctx, store, WithReplayPageSize(2))
	require.NoError(t, err)
	assert.Equal(t, 6, stats.Applied)
	assert.Equal(t, events.Sequence{Tx: 6}, stats.Last)

	snapshot := func() ([]models.Auction, []models.Bid) {
		var auctions []models.Auction
		var bids []models.Bid
		require.NoError(t, db.Order("id").Omit("updated_at").Find(&auctions).Error)
		require.NoError(t, db.Order("tx, idx").Find(&bids).Error)
		for i := range auctions {
			auctions[i].UpdatedAt = time.Time{}
		}
		return auctions, bids
	}
	auctions, bids := snapshot()
	require.Len(t, auctions, 2)
	assert.Equal(t, "carol", auctions[0].Winner)
	assert.Equal(t, uint64(160), auctions[0].FinalPrice)
	assert.Len(t, bids, 3)

	// 從 checkpoint 接續時沒有新事件
	stats, err = p.Replay(ctx, store)
	require.NoError(t, err)
	assert.Equal(t, ReplayStats{Last: events.Sequence{Tx: 6}}, stats)

	// 從頭重播全部都是重複事件，狀態不變
	stats, err = p.Replay(ctx, store, WithReplayFromStart())
	require.NoError(t, err)
	assert.Equal(t, 6, stats.Duplicates)
	againAuctions, againBids := snapshot()
	assert.Equal(t, auctions, againAuctions)
	assert.Equal(t, bids, againBids)

	// 重置後重建出相同的狀態
	require.NoError(t, p.Reset(ctx))
	checkpoint, err := p.Checkpoint(ctx)
	require.NoError(t, err)
	assert.True(t, checkpoint.IsZero())
	stats, err = p.Replay(ctx, store)
	require.NoError(t, err)
	assert.Equal(t, 6, stats.Applied)
	rebuiltAuctions, rebuiltBids := snapshot()
	assert.Equal(t, auctions, rebuiltAuctions)
	assert.Equal(t, bids, rebuiltBids)

	// 從指定位置開始
	require.NoError(t, p.Reset(ctx))
	stats, err = p.Replay(ctx, store, WithReplayFrom(events.Sequence{Tx: 2}))
	require.NoError(t, err)
	assert.Equal(t, 0, stats.Applied)
	assert.Equal(t, 4, stats.Deferred)
	assert.Equal(t, 4, p.Pending())
}

func TestProjector_ReplaySkipsMalformed(t *testing.T) {
	ctx := context.Background()
	log := eventlog.NewMemoryLog()
	require.NoError(t, log.Append(
		created(1, 1, 100),
		events.Envelope{Seq: events.Sequence{Tx: 2}},
		bid(3, 1, "bob", 150),
	))

	p, db := setupProjector(t)
	stats, err := p.Replay(ctx, log)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Applied)
	assert.Equal(t, 1, stats.Skipped)
	assert.Equal(t, uint64(150), loadAuction(t, db, 1).CurrentHighestBid)
}

func TestProjector_ReplayReadError(t *testing.T) {
	p, _ := setupProjector(t)
	readErr := errors.New("connection refused")
	_, err := p.Replay(context.Background(), eventlog.ReaderFunc(func(context.Context, events.Sequence, int) ([]events.Envelope, error) {
		return nil, readErr
	}))
	assert.ErrorIs(t, err, readErr)
}

func TestProjector_NotifierError(t *testing.T) {
	p, db := setupProjector(t, WithNotifiers(NotifierFunc(func(context.Context, Update) error {
		return errors.New("subscriber gone")
	})))
	outcomes := applyAll(t, p, created(1, 1, 100))
	assert.Equal(t, []Outcome{Applied}, outcomes)
	assert.Equal(t, uint64(100), loadAuction(t, db, 1).CurrentHighestBid)
}
