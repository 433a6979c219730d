package ledger

import (
	"context"
	"time"

	"zenthra/events"
)

// Auction 是 ledger 中拍賣的權威狀態
type Auction struct {
	ID                uint64    `msgpack:"id"`
	ItemName          string    `msgpack:"item_name"`
	ItemImageURL      string    `msgpack:"item_image_url"`
	Creator           string    `msgpack:"creator"`
	StartingBid       uint64    `msgpack:"starting_bid"`
	CurrentHighestBid uint64    `msgpack:"current_highest_bid"`
	HighestBidder     string    `msgpack:"highest_bidder"`
	BidCount          uint64    `msgpack:"bid_count"`
	CreatedTime       time.Time `msgpack:"created_time"`
	EndTime           time.Time `msgpack:"end_time"`
	IsActive          bool      `msgpack:"is_active"`
	IsCompleted       bool      `msgpack:"is_completed"`
	// 結標後才有意義，沒有出價時為 events.NoWinner
	Winner        string    `msgpack:"winner"`
	FinalPrice    uint64    `msgpack:"final_price"`
	CompletedTime time.Time `msgpack:"completed_time"`
}

// Expired 判斷在 now 時是否已經超過結束時間
func (a Auction) Expired(now time.Time) bool {
	return now.After(a.EndTime)
}

// Bid 是一筆成功的出價，建立後不會再修改
type Bid struct {
	AuctionID    uint64    `msgpack:"auction_id"`
	Bidder       string    `msgpack:"bidder"`
	Amount       uint64    `msgpack:"amount"`
	Timestamp    time.Time `msgpack:"timestamp"`
	IsHighestBid bool      `msgpack:"is_highest_bid"`
}

// IndexKind 身分索引的種類
type IndexKind string

const (
	IndexCreator IndexKind = "creator"
	IndexBidder  IndexKind = "bidder"
	IndexWinner  IndexKind = "winner"
)

type IndexEntry struct {
	Kind     IndexKind
	Identity string
}

// Record 是從 store 載入的拍賣與其版本
type Record struct {
	Auction Auction
	Version uint64
}

// Change 是一次原子提交的內容
type Change struct {
	Auction Auction
	// 0 代表新建立的拍賣
	ExpectedVersion uint64
	Bid             *Bid
	Events          []events.Payload
	Index           []IndexEntry
	Time            time.Time
}

// Store 保存 ledger 的權威狀態與 event log
//
// Commit 必須原子地寫入拍賣、出價紀錄、索引與事件，並依提交順序分配事件序號。
// 版本不符時回傳 ErrVersionConflict，找不到拍賣時 Load 回傳 ErrNotFound。
type Store interface {
	NextAuctionID(ctx context.Context) (uint64, error)
	Load(ctx context.Context, id uint64) (Record, error)
	Commit(ctx context.Context, change Change) ([]events.Envelope, error)
	Bids(ctx context.Context, id uint64) ([]Bid, error)
	Index(ctx context.Context, kind IndexKind, identity string) ([]uint64, error)
}
