package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"

	"zenthra/api/openapi"
	"zenthra/ledger"
	"zenthra/models"
	"zenthra/query"
)

var _ openapi.StrictServerInterface = (*ServerImpl)(nil)

var errInvalidAuctionID = errors.New("invalid auction id")

func unknownRole(role openapi.Role) openapi.Error {
	return openapi.Error{Message: fmt.Sprintf("unknown role %q", role)}
}

func invalidID() openapi.Error {
	return openapi.Error{Message: errInvalidAuctionID.Error()}
}

func message(err error) openapi.Error {
	return openapi.Error{Message: err.Error()}
}

// Create an auction
// (POST /auctions)
func (impl *ServerImpl) PostAuction(ctx context.Context, request openapi.PostAuctionRequestObject) (openapi.PostAuctionResponseObject, error) {
	const op = "PostAuction"
	body := request.Body
	if body.DurationSeconds > math.MaxInt64/uint64(time.Second) {
		return openapi.PostAuction400JSONResponse{Message: "duration too long"}, nil
	}
	id, err := impl.ledger.CreateAuction(ctx, ledger.CreateAuctionInput{
		ItemName:     body.ItemName,
		ItemImageURL: lo.FromPtr(body.ItemImageUrl),
		StartingBid:  body.StartingBid,
		Duration:     time.Duration(body.DurationSeconds) * time.Second,
		Creator:      identityFrom(ctx),
	})
	switch {
	case err == nil:
	case errors.Is(err, ledger.ErrInvalidInput):
		return openapi.PostAuction400JSONResponse(message(err)), nil
	case isUnavailable(err):
		return openapi.PostAuction503JSONResponse(unavailable), nil
	default:
		return nil, fmt.Errorf("[%s] Fail to create auction, err=%w", op, err)
	}
	return openapi.PostAuction201JSONResponse{
		Body:    openapi.CreateAuctionResponse{AuctionId: id},
		Headers: openapi.PostAuction201ResponseHeaders{Location: fmt.Sprintf("/auctions/%d", id)},
	}, nil
}

// Place a bid
// (POST /auctions/{id}/bids)
func (impl *ServerImpl) PostAuctionBid(ctx context.Context, request openapi.PostAuctionBidRequestObject) (openapi.PostAuctionBidResponseObject, error) {
	const op = "PostAuctionBid"
	if request.Id == 0 {
		return openapi.PostAuctionBid400JSONResponse(invalidID()), nil
	}
	err := impl.ledger.PlaceBid(ctx, request.Id, request.Body.Amount, identityFrom(ctx))
	if err == nil {
		var auction ledger.Auction
		auction, err = impl.ledger.GetAuction(ctx, request.Id)
		if err == nil {
			return openapi.PostAuctionBid200JSONResponse(fromLedgerAuction(auction)), nil
		}
	}
	switch {
	case errors.Is(err, ledger.ErrInvalidInput):
		return openapi.PostAuctionBid400JSONResponse(message(err)), nil
	case errors.Is(err, ledger.ErrSelfBidForbidden):
		return openapi.PostAuctionBid403JSONResponse(message(err)), nil
	case errors.Is(err, ledger.ErrNotFound):
		return openapi.PostAuctionBid404JSONResponse(message(err)), nil
	case errors.Is(err, ledger.ErrBidTooLow), errors.Is(err, ledger.ErrAlreadyCompleted):
		return openapi.PostAuctionBid409JSONResponse(message(err)), nil
	case errors.Is(err, ledger.ErrAuctionExpired):
		return openapi.PostAuctionBid410JSONResponse(message(err)), nil
	case isUnavailable(err):
		return openapi.PostAuctionBid503JSONResponse(unavailable), nil
	}
	return nil, fmt.Errorf("[%s] Fail to place bid, err=%w", op, err)
}

// Finalize an auction
// (POST /auctions/{id}/finalize)
func (impl *ServerImpl) PostAuctionFinalize(ctx context.Context, request openapi.PostAuctionFinalizeRequestObject) (openapi.PostAuctionFinalizeResponseObject, error) {
	const op = "PostAuctionFinalize"
	if request.Id == 0 {
		return openapi.PostAuctionFinalize400JSONResponse(invalidID()), nil
	}
	err := impl.ledger.FinalizeAuction(ctx, request.Id, identityFrom(ctx))
	if err == nil {
		var auction ledger.Auction
		auction, err = impl.ledger.GetAuction(ctx, request.Id)
		if err == nil {
			return openapi.PostAuctionFinalize200JSONResponse(fromLedgerAuction(auction)), nil
		}
	}
	switch {
	case errors.Is(err, ledger.ErrInvalidInput):
		return openapi.PostAuctionFinalize400JSONResponse(message(err)), nil
	case errors.Is(err, ledger.ErrUnauthorized):
		return openapi.PostAuctionFinalize403JSONResponse(message(err)), nil
	case errors.Is(err, ledger.ErrNotFound):
		return openapi.PostAuctionFinalize404JSONResponse(message(err)), nil
	case errors.Is(err, ledger.ErrAlreadyCompleted):
		return openapi.PostAuctionFinalize409JSONResponse(message(err)), nil
	case isUnavailable(err):
		return openapi.PostAuctionFinalize503JSONResponse(unavailable), nil
	}
	return nil, fmt.Errorf("[%s] Fail to finalize auction, err=%w", op, err)
}

// Get an auction from the ledger
// (GET /ledger/auctions/{id})
func (impl *ServerImpl) GetLedgerAuction(ctx context.Context, request openapi.GetLedgerAuctionRequestObject) (openapi.GetLedgerAuctionResponseObject, error) {
	const op = "GetLedgerAuction"
	if request.Id == 0 {
		return openapi.GetLedgerAuction400JSONResponse(invalidID()), nil
	}
	auction, err := impl.ledger.GetAuction(ctx, request.Id)
	switch {
	case err == nil:
		return openapi.GetLedgerAuction200JSONResponse(fromLedgerAuction(auction)), nil
	case errors.Is(err, ledger.ErrInvalidInput):
		return openapi.GetLedgerAuction400JSONResponse(message(err)), nil
	case errors.Is(err, ledger.ErrNotFound):
		return openapi.GetLedgerAuction404JSONResponse(message(err)), nil
	case isUnavailable(err):
		return openapi.GetLedgerAuction503JSONResponse(unavailable), nil
	}
	return nil, fmt.Errorf("[%s] Fail to get auction, err=%w", op, err)
}

// List bids from the ledger
// (GET /ledger/auctions/{id}/bids)
func (impl *ServerImpl) GetLedgerAuctionBids(ctx context.Context, request openapi.GetLedgerAuctionBidsRequestObject) (openapi.GetLedgerAuctionBidsResponseObject, error) {
	const op = "GetLedgerAuctionBids"
	if request.Id == 0 {
		return openapi.GetLedgerAuctionBids400JSONResponse(invalidID()), nil
	}
	bids, err := impl.ledger.ListBids(ctx, request.Id)
	switch {
	case err == nil:
		return openapi.GetLedgerAuctionBids200JSONResponse(fromLedgerBids(bids)), nil
	case errors.Is(err, ledger.ErrInvalidInput):
		return openapi.GetLedgerAuctionBids400JSONResponse(message(err)), nil
	case errors.Is(err, ledger.ErrNotFound):
		return openapi.GetLedgerAuctionBids404JSONResponse(message(err)), nil
	case isUnavailable(err):
		return openapi.GetLedgerAuctionBids503JSONResponse(unavailable), nil
	}
	return nil, fmt.Errorf("[%s] Fail to list bids, err=%w", op, err)
}

// List auction ids related to a user from the ledger
// (GET /ledger/users/{identity}/auctions)
func (impl *ServerImpl) GetLedgerUserAuctions(ctx context.Context, request openapi.GetLedgerUserAuctionsRequestObject) (openapi.GetLedgerUserAuctionsResponseObject, error) {
	const op = "GetLedgerUserAuctions"
	var (
		ids []uint64
		err error
	)
	switch role := lo.FromPtrOr(request.Params.Role, openapi.Creator); role {
	case openapi.Creator:
		ids, err = impl.ledger.ListAuctionsByCreator(ctx, request.Identity)
	case openapi.Bidder:
		ids, err = impl.ledger.ListAuctionsByBidder(ctx, request.Identity)
	case openapi.Winner:
		ids, err = impl.ledger.ListAuctionsByWinner(ctx, request.Identity)
	default:
		return openapi.GetLedgerUserAuctions400JSONResponse(unknownRole(role)), nil
	}
	switch {
	case err == nil:
		return openapi.GetLedgerUserAuctions200JSONResponse{AuctionIds: lo.Ternary(ids == nil, []uint64{}, ids)}, nil
	case errors.Is(err, ledger.ErrInvalidInput):
		return openapi.GetLedgerUserAuctions400JSONResponse(message(err)), nil
	case isUnavailable(err):
		return openapi.GetLedgerUserAuctions503JSONResponse(unavailable), nil
	}
	return nil, fmt.Errorf("[%s] Fail to list auctions, err=%w", op, err)
}

// List projected auctions
// (GET /auctions)
func (impl *ServerImpl) GetAuctions(ctx context.Context, request openapi.GetAuctionsRequestObject) (openapi.GetAuctionsResponseObject, error) {
	const op = "GetAuctions"
	params := request.Params
	order := lo.FromPtr(params.Order)
	if order != "" && order != openapi.Asc && order != openapi.Desc {
		return openapi.GetAuctions400JSONResponse{Message: fmt.Sprintf("unknown order %q", order)}, nil
	}
	page, err := impl.query.ListAuctions(
		ctx,
		query.Filter{
			Status:        query.Status(lo.FromPtr(params.Status)),
			Creator:       lo.FromPtr(params.Creator),
			NameContains:  lo.FromPtr(params.Q),
			EndsAfter:     params.EndsAfter,
			CreatedAfter:  params.CreatedAfter,
			MinCurrentBid: params.MinCurrentBid,
			MaxCurrentBid: params.MaxCurrentBid,
		},
		query.Sort{Key: query.SortKey(lo.FromPtr(params.Sort)), Desc: order == openapi.Desc},
		query.Page{Offset: lo.FromPtr(params.Offset), Limit: lo.FromPtr(params.Limit)},
	)
	switch {
	case err == nil:
	case errors.Is(err, query.ErrInvalidQuery):
		return openapi.GetAuctions400JSONResponse(message(err)), nil
	default:
		return nil, fmt.Errorf("[%s] Fail to list auctions, err=%w", op, err)
	}
	return openapi.GetAuctions200JSONResponse{
		Items:  fromModelAuctions(page.Items),
		Total:  page.Total,
		Offset: page.Offset,
		Limit:  page.Limit,
	}, nil
}

// Get a projected auction
// (GET /auctions/{id})
func (impl *ServerImpl) GetAuction(ctx context.Context, request openapi.GetAuctionRequestObject) (openapi.GetAuctionResponseObject, error) {
	const op = "GetAuction"
	if request.Id == 0 {
		return openapi.GetAuction400JSONResponse(invalidID()), nil
	}
	auction, err := impl.query.GetAuction(ctx, request.Id)
	switch {
	case err == nil:
		return openapi.GetAuction200JSONResponse(fromModelAuction(auction)), nil
	case errors.Is(err, query.ErrInvalidQuery):
		return openapi.GetAuction400JSONResponse(message(err)), nil
	case errors.Is(err, query.ErrNotFound):
		return openapi.GetAuction404JSONResponse(message(err)), nil
	}
	return nil, fmt.Errorf("[%s] Fail to get auction, err=%w", op, err)
}

// List projected bids
// (GET /auctions/{id}/bids)
func (impl *ServerImpl) GetAuctionBids(ctx context.Context, request openapi.GetAuctionBidsRequestObject) (openapi.GetAuctionBidsResponseObject, error) {
	const op = "GetAuctionBids"
	if request.Id == 0 {
		return openapi.GetAuctionBids400JSONResponse(invalidID()), nil
	}
	sort := lo.FromPtr(request.Params.Sort)
	if sort != "" && sort != openapi.Amount {
		return openapi.GetAuctionBids400JSONResponse{Message: fmt.Sprintf("unknown sort %q", sort)}, nil
	}
	bids, err := impl.query.ListBidsForAuction(ctx, request.Id, sort == openapi.Amount)
	switch {
	case err == nil:
		return openapi.GetAuctionBids200JSONResponse(fromModelBids(bids)), nil
	case errors.Is(err, query.ErrInvalidQuery):
		return openapi.GetAuctionBids400JSONResponse(message(err)), nil
	case errors.Is(err, query.ErrNotFound):
		return openapi.GetAuctionBids404JSONResponse(message(err)), nil
	}
	return nil, fmt.Errorf("[%s] Fail to list bids, err=%w", op, err)
}

// List projected auctions related to a user
// (GET /users/{identity}/auctions)
func (impl *ServerImpl) GetUserAuctions(ctx context.Context, request openapi.GetUserAuctionsRequestObject) (openapi.GetUserAuctionsResponseObject, error) {
	const op = "GetUserAuctions"
	var (
		auctions []models.Auction
		err      error
	)
	switch role := lo.FromPtrOr(request.Params.Role, openapi.Creator); role {
	case openapi.Creator:
		auctions, err = impl.query.ListAuctionsByCreator(ctx, request.Identity)
	case openapi.Bidder:
		auctions, err = impl.query.ListAuctionsByBidder(ctx, request.Identity)
	case openapi.Winner:
		auctions, err = impl.query.ListAuctionsByWinner(ctx, request.Identity)
	default:
		return openapi.GetUserAuctions400JSONResponse(unknownRole(role)), nil
	}
	switch {
	case err == nil:
		return openapi.GetUserAuctions200JSONResponse(fromModelAuctions(auctions)), nil
	case errors.Is(err, query.ErrInvalidQuery):
		return openapi.GetUserAuctions400JSONResponse(message(err)), nil
	}
	return nil, fmt.Errorf("[%s] Fail to list auctions, err=%w", op, err)
}

// Get a user's dashboard
// (GET /users/{identity}/dashboard)
func (impl *ServerImpl) GetUserDashboard(ctx context.Context, request openapi.GetUserDashboardRequestObject) (openapi.GetUserDashboardResponseObject, error) {
	const op = "GetUserDashboard"
	dashboard, err := impl.query.Dashboard(ctx, request.Identity)
	switch {
	case err == nil:
		return openapi.GetUserDashboard200JSONResponse{
			Created: fromModelAuctions(dashboard.Created),
			Bidding: fromModelAuctions(dashboard.Bidding),
			Won:     fromModelAuctions(dashboard.Won),
		}, nil
	case errors.Is(err, query.ErrInvalidQuery):
		return openapi.GetUserDashboard400JSONResponse(message(err)), nil
	}
	return nil, fmt.Errorf("[%s] Fail to load dashboard, err=%w", op, err)
}

// Subscribe to live updates of an auction
// (GET /auctions/{id}/events)
func (impl *ServerImpl) GetAuctionEvents(ctx context.Context, request openapi.GetAuctionEventsRequestObject) (openapi.GetAuctionEventsResponseObject, error) {
	const op = "GetAuctionEvents"
	c, ok := ctx.(*gin.Context)
	if !ok {
		return nil, fmt.Errorf("[%s] Fail to get gin context", op)
	}
	if request.Id == 0 {
		return openapi.GetAuctionEvents400JSONResponse(invalidID()), nil
	}
	// 檢查拍賣是否存在以及是否已經結標
	auction, err := impl.query.GetAuction(ctx, request.Id)
	switch {
	case err == nil:
	case errors.Is(err, query.ErrNotFound):
		return openapi.GetAuctionEvents404JSONResponse(message(err)), nil
	default:
		return nil, fmt.Errorf("[%s] Fail to get auction, err=%w", op, err)
	}
	if auction.IsCompleted {
		return openapi.GetAuctionEvents410JSONResponse(message(ledger.ErrAuctionExpired)), nil
	}
	channel := strconv.FormatUint(request.Id, 10)
	ch, err := impl.sseManager.Subscribe(channel)
	if err != nil {
		impl.logger.Error("fail to subscribe to auction events", slog.String("channel", channel), slog.Any("error", err))
		return openapi.GetAuctionEvents503JSONResponse(unavailable), nil
	}
	defer impl.sseManager.Unsubscribe(channel, ch)

	// SSE請求合法，開始初始化串流
	w := c.Writer
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	w.Flush()

	keepAlive := time.NewTicker(impl.keepAlive)
	defer keepAlive.Stop()
	for {
		select {
		case <-c.Request.Context().Done():
			return openapi.GetAuctionEvents200Response{}, nil
		case event, ok := <-ch:
			if !ok {
				return openapi.GetAuctionEvents200Response{}, nil
			}
			c.SSEvent(event.Kind, event)
			w.Flush()
			// 結標後不會再有更新
			if event.Auction.IsCompleted {
				return openapi.GetAuctionEvents200Response{}, nil
			}
		// 一段時間沒有事件就發送註解，確保瀏覽器和代理不會斷開連線
		case <-keepAlive.C:
			if _, err := w.WriteString(": keep-alive\n\n"); err != nil {
				return openapi.GetAuctionEvents200Response{}, nil
			}
			w.Flush()
		}
	}
}
