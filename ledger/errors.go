package ledger

import "errors"

// 商業規則的錯誤不會重試，直接回傳給呼叫端
var (
	ErrInvalidInput     = errors.New("invalid input")
	ErrNotFound         = errors.New("auction not found")
	ErrAuctionExpired   = errors.New("auction has ended")
	ErrSelfBidForbidden = errors.New("creator cannot bid on own auction")
	ErrBidTooLow        = errors.New("bid amount must be greater than current highest bid")
	ErrAlreadyCompleted = errors.New("auction already completed")
	ErrUnauthorized     = errors.New("auction still active or unauthorized")
)

// 基礎設施錯誤，會在 Ledger 內部重試
var (
	ErrTransientStore  = errors.New("transient store failure")
	ErrVersionConflict = errors.New("auction version conflict")
	ErrLockTimeout     = errors.New("timed out waiting for auction lock")
)

// IsBusinessError 判斷是否為確定性的商業規則錯誤
func IsBusinessError(err error) bool {
	for _, target := range []error{
		ErrInvalidInput,
		ErrNotFound,
		ErrAuctionExpired,
		ErrSelfBidForbidden,
		ErrBidTooLow,
		ErrAlreadyCompleted,
		ErrUnauthorized,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
