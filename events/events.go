// Package events 定義寫入拍賣 event log 的領域事件
//
// 每個事件都是固定型別的 payload，包在 Envelope 中。Envelope 的 Sequence
// 是事件的穩定識別: 產生事件的 ledger 交易序號，加上事件在該交易中的位置。
package events

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Kind 事件種類
type Kind string

const (
	KindAuctionCreated   Kind = "AuctionCreated"
	KindBidPlaced        Kind = "BidPlaced"
	KindAuctionCompleted Kind = "AuctionCompleted"
)

// NoWinner 是沒有任何出價時結標的得標者
const NoWinner = ""

var (
	ErrMalformedEvent = errors.New("malformed event")
)

// Sequence 是事件在 log 中的唯一且全序的識別
type Sequence struct {
	Tx  uint64 `msgpack:"tx" json:"tx"`
	Idx uint32 `msgpack:"idx" json:"idx"`
}

// ParseSequence 解析 "<tx>-<idx>" 格式的序號，與 Redis stream 的 entry id 相同
func ParseSequence(s string) (Sequence, error) {
	txPart, idxPart, ok := strings.Cut(s, "-")
	if !ok {
		return Sequence{}, fmt.Errorf("invalid sequence %q", s)
	}
	tx, err := strconv.ParseUint(txPart, 10, 64)
	if err != nil {
		return Sequence{}, fmt.Errorf("invalid sequence %q: %w", s, err)
	}
	idx, err := strconv.ParseUint(idxPart, 10, 32)
	if err != nil {
		return Sequence{}, fmt.Errorf("invalid sequence %q: %w", s, err)
	}
	return Sequence{Tx: tx, Idx: uint32(idx)}, nil
}

func (s Sequence) String() string {
	return strconv.FormatUint(s.Tx, 10) + "-" + strconv.FormatUint(uint64(s.Idx), 10)
}

// IsZero 判斷是否為尚未套用任何事件的起點
func (s Sequence) IsZero() bool {
	return s.Tx == 0 && s.Idx == 0
}

// Less 判斷 s 是否排在 o 之前
func (s Sequence) Less(o Sequence) bool {
	if s.Tx != o.Tx {
		return s.Tx < o.Tx
	}
	return s.Idx < o.Idx
}

// Next 回傳緊接在 s 之後的最小序號
func (s Sequence) Next() Sequence {
	return Sequence{Tx: s.Tx, Idx: s.Idx + 1}
}

// Payload 只由三種事件 payload 實作
type Payload interface {
	Kind() Kind
	Auction() uint64
	isPayload()
}

// AuctionCreated 拍賣建立
type AuctionCreated struct {
	AuctionID    uint64    `msgpack:"auction_id"`
	Creator      string    `msgpack:"creator"`
	ItemName     string    `msgpack:"item_name"`
	ItemImageURL string    `msgpack:"item_image_url"`
	StartingBid  uint64    `msgpack:"starting_bid"`
	CreatedTime  time.Time `msgpack:"created_time"`
	EndTime      time.Time `msgpack:"end_time"`
}

// BidPlaced 出價成功
type BidPlaced struct {
	AuctionID    uint64    `msgpack:"auction_id"`
	Bidder       string    `msgpack:"bidder"`
	Amount       uint64    `msgpack:"amount"`
	Timestamp    time.Time `msgpack:"timestamp"`
	IsHighestBid bool      `msgpack:"is_highest_bid"`
}

// AuctionCompleted 拍賣結標
type AuctionCompleted struct {
	AuctionID     uint64    `msgpack:"auction_id"`
	Winner        string    `msgpack:"winner"`
	FinalPrice    uint64    `msgpack:"final_price"`
	CompletedTime time.Time `msgpack:"completed_time"`
}

func (AuctionCreated) Kind() Kind   { return KindAuctionCreated }
func (BidPlaced) Kind() Kind        { return KindBidPlaced }
func (AuctionCompleted) Kind() Kind { return KindAuctionCompleted }

func (e AuctionCreated) Auction() uint64   { return e.AuctionID }
func (e BidPlaced) Auction() uint64        { return e.AuctionID }
func (e AuctionCompleted) Auction() uint64 { return e.AuctionID }

func (AuctionCreated) isPayload()   {}
func (BidPlaced) isPayload()        {}
func (AuctionCompleted) isPayload() {}

// Envelope 是寫入 event log 的單筆事件
type Envelope struct {
	Seq       Sequence
	AuctionID uint64
	Timestamp time.Time
	Payload   Payload
}

// Kind 回傳事件種類，payload 為空時回傳空字串
func (e Envelope) Kind() Kind {
	if e.Payload == nil {
		return ""
	}
	return e.Payload.Kind()
}

// Validate 檢查事件是否具備重建狀態所需的欄位
func (e Envelope) Validate() error {
	if e.Seq.IsZero() {
		return fmt.Errorf("%w: missing sequence", ErrMalformedEvent)
	}
	if e.Payload == nil {
		return fmt.Errorf("%w: missing payload, seq=%s", ErrMalformedEvent, e.Seq)
	}
	if e.AuctionID == 0 || e.Payload.Auction() != e.AuctionID {
		return fmt.Errorf("%w: auction id mismatch, seq=%s", ErrMalformedEvent, e.Seq)
	}
	switch p := e.Payload.(type) {
	case AuctionCreated:
		if p.ItemName == "" || p.Creator == "" || p.StartingBid == 0 || !p.EndTime.After(p.CreatedTime) {
			return fmt.Errorf("%w: invalid AuctionCreated payload, seq=%s", ErrMalformedEvent, e.Seq)
		}
	case BidPlaced:
		if p.Bidder == "" || p.Amount == 0 {
			return fmt.Errorf("%w: invalid BidPlaced payload, seq=%s", ErrMalformedEvent, e.Seq)
		}
	case AuctionCompleted:
		if p.Winner != NoWinner && p.FinalPrice == 0 {
			return fmt.Errorf("%w: invalid AuctionCompleted payload, seq=%s", ErrMalformedEvent, e.Seq)
		}
	default:
		return fmt.Errorf("%w: unknown payload %T, seq=%s", ErrMalformedEvent, e.Payload, e.Seq)
	}
	return nil
}
