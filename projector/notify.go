package projector

import (
	"context"
	"log/slog"
	"time"

	"zenthra/events"
	"zenthra/models"
)

// Update 是事件套用後的投影快照
type Update struct {
	Seq       events.Sequence `msgpack:"seq"`
	Kind      events.Kind     `msgpack:"kind"`
	AuctionID uint64          `msgpack:"auction_id"`
	Time      time.Time       `msgpack:"time"`
	Auction   models.Auction  `msgpack:"auction"`
	// 只有 BidPlaced 才有
	Bid *models.Bid `msgpack:"bid,omitempty"`
}

// Notifier 接收投影更新，錯誤只會被記錄，不影響事件套用
type Notifier interface {
	Notify(ctx context.Context, update Update) error
}

type NotifierFunc func(ctx context.Context, update Update) error

func (f NotifierFunc) Notify(ctx context.Context, update Update) error {
	return f(ctx, update)
}

func (p *Projector) notify(ctx context.Context, update Update) {
	for _, notifier := range p.options.notifiers {
		if err := notifier.Notify(ctx, update); err != nil {
			p.logger.Warn("fail to notify update",
				slog.String("seq", update.Seq.String()),
				slog.Uint64("auctionId", update.AuctionID),
				slog.Any("error", err),
			)
		}
	}
}
