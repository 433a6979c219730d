// Package eventlog 提供 ledger event log 的讀取端
package eventlog

import (
	"context"
	"errors"

	"zenthra/events"
)

var (
	ErrInvalidLimit = errors.New("limit must be positive")
)

// Reader 依序讀取 after 之後的事件，最多 limit 筆，沒有更多事件時回傳空切片
type Reader interface {
	Read(ctx context.Context, after events.Sequence, limit int) ([]events.Envelope, error)
}

// ReaderFunc 讓一般函數可以作為 Reader 使用
type ReaderFunc func(ctx context.Context, after events.Sequence, limit int) ([]events.Envelope, error)

func (f ReaderFunc) Read(ctx context.Context, after events.Sequence, limit int) ([]events.Envelope, error) {
	return f(ctx, after, limit)
}
