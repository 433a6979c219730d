package api

import (
	"github.com/samber/lo"

	"zenthra/api/openapi"
	"zenthra/ledger"
	"zenthra/models"
	"zenthra/projector"
)

func fromLedgerAuction(a ledger.Auction) openapi.Auction {
	resp := openapi.Auction{
		Id:                a.ID,
		ItemName:          a.ItemName,
		ItemImageUrl:      a.ItemImageURL,
		Creator:           a.Creator,
		StartingBid:       a.StartingBid,
		CurrentHighestBid: a.CurrentHighestBid,
		HighestBidder:     a.HighestBidder,
		BidCount:          a.BidCount,
		CreatedTime:       a.CreatedTime,
		EndTime:           a.EndTime,
		IsActive:          a.IsActive,
		IsCompleted:       a.IsCompleted,
		Winner:            a.Winner,
		FinalPrice:        a.FinalPrice,
	}
	if a.IsCompleted {
		resp.CompletedTime = lo.ToPtr(a.CompletedTime)
	}
	return resp
}

func fromLedgerBid(b ledger.Bid) openapi.Bid {
	return openapi.Bid{
		AuctionId:    b.AuctionID,
		Bidder:       b.Bidder,
		Amount:       b.Amount,
		Timestamp:    b.Timestamp,
		IsHighestBid: b.IsHighestBid,
	}
}

func fromLedgerBids(bids []ledger.Bid) []openapi.Bid {
	return lo.Map(bids, func(b ledger.Bid, _ int) openapi.Bid {
		return fromLedgerBid(b)
	})
}

func fromModelAuction(a models.Auction) openapi.Auction {
	return openapi.Auction{
		Id:                a.ID,
		ItemName:          a.ItemName,
		ItemImageUrl:      a.ItemImageURL,
		Creator:           a.Creator,
		StartingBid:       a.StartingBid,
		CurrentHighestBid: a.CurrentHighestBid,
		HighestBidder:     a.HighestBidder,
		BidCount:          a.BidCount,
		CreatedTime:       a.CreatedTime,
		EndTime:           a.EndTime,
		IsActive:          a.IsActive,
		IsCompleted:       a.IsCompleted,
		Winner:            a.Winner,
		FinalPrice:        a.FinalPrice,
		CompletedTime:     a.CompletedTime,
	}
}

func fromModelBid(b models.Bid) openapi.Bid {
	return openapi.Bid{
		AuctionId:    b.AuctionID,
		Bidder:       b.Bidder,
		Amount:       b.Amount,
		Timestamp:    b.Timestamp,
		IsHighestBid: b.IsHighestBid,
	}
}

// lo.Map 對 nil 也回傳空 slice，序列化後是 [] 而不是 null
func fromModelAuctions(auctions []models.Auction) []openapi.Auction {
	return lo.Map(auctions, func(a models.Auction, _ int) openapi.Auction {
		return fromModelAuction(a)
	})
}

func fromModelBids(bids []models.Bid) []openapi.Bid {
	return lo.Map(bids, func(b models.Bid, _ int) openapi.Bid {
		return fromModelBid(b)
	})
}

// fromUpdate 把投影更新轉成推送給 SSE 客戶端的事件
func fromUpdate(u projector.Update) openapi.AuctionEvent {
	event := openapi.AuctionEvent{
		Seq:       u.Seq.String(),
		Kind:      string(u.Kind),
		AuctionId: u.AuctionID,
		Time:      u.Time,
		Auction:   fromModelAuction(u.Auction),
	}
	if u.Bid != nil {
		event.Bid = lo.ToPtr(fromModelBid(*u.Bid))
	}
	return event
}
