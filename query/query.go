// Package query 是投影資料的唯讀查詢層，結果可能落後於 ledger。
package query

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"zenthra/models"
)

const (
	DefaultLimit = 20
	MaxLimit     = 100
)

var (
	ErrNotFound     = errors.New("auction not found")
	ErrInvalidQuery = errors.New("invalid query")
)

type Status string

const (
	StatusAny       Status = ""
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
)

type SortKey string

const (
	SortCreatedTime SortKey = "createdTime"
	SortEndTime     SortKey = "endTime"
	SortStartingBid SortKey = "startingBid"
	SortCurrentBid  SortKey = "currentBid"
	SortItemName    SortKey = "itemName"
)

var sortColumns = map[SortKey]string{
	SortCreatedTime: "created_time",
	SortEndTime:     "end_time",
	SortStartingBid: "starting_bid",
	SortCurrentBid:  "current_highest_bid",
	SortItemName:    "item_name",
}

// Filter 所有條件以 AND 組合，零值代表不篩選
type Filter struct {
	Status        Status
	Creator       string
	NameContains  string
	EndsAfter     *time.Time
	CreatedAfter  *time.Time
	MinCurrentBid *uint64
	MaxCurrentBid *uint64
}

type Sort struct {
	Key  SortKey
	Desc bool
}

type Page struct {
	Offset int
	Limit  int
}

type AuctionPage struct {
	Items  []models.Auction
	Total  int64
	Offset int
	Limit  int
}

// Dashboard 是使用者相關的拍賣
type Dashboard struct {
	Created []models.Auction
	Bidding []models.Auction
	Won     []models.Auction
}

type serviceOptions struct {
	logger *slog.Logger
}

type Option func(*serviceOptions)

// WithLogger 設置日誌記錄器
func WithLogger(logger *slog.Logger) Option {
	return func(o *serviceOptions) {
		o.logger = logger
	}
}

type Service struct {
	db     *gorm.DB
	logger *slog.Logger
}

func New(db *gorm.DB, opts ...Option) (*Service, error) {
	if db == nil {
		return nil, errors.New("db cannot be nil")
	}
	options := serviceOptions{logger: slog.Default()}
	for _, opt := range opts {
		opt(&options)
	}
	return &Service{
		db:     db,
		logger: options.logger.With(slog.String("caller", "QueryService")),
	}, nil
}

func (s *Service) GetAuction(ctx context.Context, id uint64) (models.Auction, error) {
	const op = "GetAuction"
	var auction models.Auction
	if result := s.db.WithContext(ctx).Where("id = ?", id).Take(&auction); result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return auction, fmt.Errorf("[%s] Fail to find auction, id=%d, err=%w", op, id, ErrNotFound)
		}
		return auction, fmt.Errorf("[%s] Fail to find auction, id=%d, err=%w", op, id, result.Error)
	}
	return auction, nil
}

// ListAuctions 依條件查詢拍賣，排序相同時以 id 遞增排列
func (s *Service) ListAuctions(ctx context.Context, filter Filter, sort Sort, page Page) (AuctionPage, error) {
	const op = "ListAuctions"
	if page.Offset < 0 || page.Limit < 0 {
		return AuctionPage{}, fmt.Errorf("[%s] Fail to validate page, err=%w: negative offset or limit", op, ErrInvalidQuery)
	}
	if page.Limit == 0 {
		page.Limit = DefaultLimit
	}
	page.Limit = min(page.Limit, MaxLimit)

	if sort.Key == "" {
		sort.Key = SortCreatedTime
	}
	column, ok := sortColumns[sort.Key]
	if !ok {
		return AuctionPage{}, fmt.Errorf("[%s] Fail to validate sort, err=%w: unknown sort key %q", op, ErrInvalidQuery, sort.Key)
	}

	query := s.db.WithContext(ctx).Model(&models.Auction{})
	//  - status
	switch filter.Status {
	case StatusAny:
	case StatusActive:
		query = query.Where("is_active = ?", true)
	case StatusCompleted:
		query = query.Where("is_completed = ?", true)
	default:
		return AuctionPage{}, fmt.Errorf("[%s] Fail to validate filter, err=%w: unknown status %q", op, ErrInvalidQuery, filter.Status)
	}
	//  - creator
	if filter.Creator != "" {
		query = query.Where("creator = ?", filter.Creator)
	}
	//  - name
	if name := strings.TrimSpace(filter.NameContains); name != "" {
		query = query.Where(`LOWER(item_name) LIKE ? ESCAPE '\'`, "%"+escapeLike(strings.ToLower(name))+"%")
	}
	//  - time
	if filter.EndsAfter != nil {
		query = query.Where("end_time > ?", filter.EndsAfter.UTC())
	}
	if filter.CreatedAfter != nil {
		query = query.Where("created_time > ?", filter.CreatedAfter.UTC())
	}
	//  - current bid
	if filter.MinCurrentBid != nil {
		query = query.Where("current_highest_bid >= ?", *filter.MinCurrentBid)
	}
	if filter.MaxCurrentBid != nil {
		query = query.Where("current_highest_bid <= ?", *filter.MaxCurrentBid)
	}

	var total int64
	if result := query.Session(&gorm.Session{}).Count(&total); result.Error != nil {
		return AuctionPage{}, fmt.Errorf("[%s] Fail to count auctions, err=%w", op, result.Error)
	}

	var auctions []models.Auction
	result := query.
		Order(clause.OrderBy{Columns: []clause.OrderByColumn{
			{Column: clause.Column{Name: column}, Desc: sort.Desc},
			{Column: clause.Column{Name: "id"}, Desc: false},
		}}).
		Offset(page.Offset).
		Limit(page.Limit).
		Find(&auctions)
	if result.Error != nil {
		return AuctionPage{}, fmt.Errorf("[%s] Fail to list auctions, err=%w", op, result.Error)
	}
	return AuctionPage{Items: auctions, Total: total, Offset: page.Offset, Limit: page.Limit}, nil
}

// ListBidsForAuction 預設依出價順序，byAmountDesc 時依金額由高到低
func (s *Service) ListBidsForAuction(ctx context.Context, id uint64, byAmountDesc bool) ([]models.Bid, error) {
	const op = "ListBidsForAuction"
	if _, err := s.GetAuction(ctx, id); err != nil {
		return nil, fmt.Errorf("[%s] Fail to find auction, err=%w", op, err)
	}
	query := s.db.WithContext(ctx).Where("auction_id = ?", id)
	if byAmountDesc {
		query = query.Order("amount DESC")
	}
	bids := []models.Bid{}
	if result := query.Order("tx").Order("idx").Find(&bids); result.Error != nil {
		return nil, fmt.Errorf("[%s] Fail to list bids, id=%d, err=%w", op, id, result.Error)
	}
	return bids, nil
}

func (s *Service) ListAuctionsByCreator(ctx context.Context, identity string) ([]models.Auction, error) {
	return s.listWhere(ctx, "ListAuctionsByCreator", identity, "creator = ?", identity)
}

// ListAuctionsByWinner 流標的拍賣不會出現在任何人的結果中
func (s *Service) ListAuctionsByWinner(ctx context.Context, identity string) ([]models.Auction, error) {
	return s.listWhere(ctx, "ListAuctionsByWinner", identity, "is_completed = ? AND winner = ?", true, identity)
}

// ListAuctionsByBidder 回傳曾經出價過的拍賣，每個拍賣只出現一次
func (s *Service) ListAuctionsByBidder(ctx context.Context, identity string) ([]models.Auction, error) {
	bidders := s.db.Model(&models.Bid{}).Select("auction_id").Where("bidder = ?", identity)
	return s.listWhere(ctx, "ListAuctionsByBidder", identity, "id IN (?)", bidders)
}

func (s *Service) listWhere(ctx context.Context, op, identity string, query string, args ...any) ([]models.Auction, error) {
	auctions := []models.Auction{}
	if identity == "" {
		return auctions, nil
	}
	if result := s.db.WithContext(ctx).Where(query, args...).Order("id").Find(&auctions); result.Error != nil {
		return nil, fmt.Errorf("[%s] Fail to list auctions, err=%w", op, result.Error)
	}
	return auctions, nil
}

// Dashboard 彙整使用者建立、參與出價與得標的拍賣
func (s *Service) Dashboard(ctx context.Context, identity string) (Dashboard, error) {
	const op = "Dashboard"
	var dashboard Dashboard
	var err error
	if dashboard.Created, err = s.ListAuctionsByCreator(ctx, identity); err != nil {
		return Dashboard{}, fmt.Errorf("[%s] Fail to build dashboard, err=%w", op, err)
	}
	if dashboard.Bidding, err = s.ListAuctionsByBidder(ctx, identity); err != nil {
		return Dashboard{}, fmt.Errorf("[%s] Fail to build dashboard, err=%w", op, err)
	}
	if dashboard.Won, err = s.ListAuctionsByWinner(ctx, identity); err != nil {
		return Dashboard{}, fmt.Errorf("[%s] Fail to build dashboard, err=%w", op, err)
	}
	return dashboard, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
