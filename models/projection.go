package models

import (
	"time"
)

// AppliedEvent 記錄已套用過的事件序號，用於去重
type AppliedEvent struct {
	Tx        uint64 `gorm:"primaryKey;autoIncrement:false"`
	Idx       uint32 `gorm:"primaryKey;autoIncrement:false"`
	Kind      string `gorm:"size:64;not null"`
	AuctionID uint64 `gorm:"not null"`
	AppliedAt time.Time
}

// ProjectionCheckpoint 每個 stream 已套用的最大序號
type ProjectionCheckpoint struct {
	Stream    string `gorm:"primaryKey;size:255"`
	Tx        uint64 `gorm:"not null"`
	Idx       uint32 `gorm:"not null"`
	UpdatedAt time.Time
}

// All 回傳需要建立的所有資料表，順序即為建立順序
func All() []any {
	return []any{
		&Auction{},
		&Bid{},
		&AppliedEvent{},
		&ProjectionCheckpoint{},
	}
}
