package models

import (
	"time"
)

// Bid 代表一筆已套用的出價事件
// 以事件序號作為主鍵，同一事件不會寫入兩次
type Bid struct {
	Tx           uint64    `gorm:"primaryKey;autoIncrement:false"`
	Idx          uint32    `gorm:"primaryKey;autoIncrement:false"`
	AuctionID    uint64    `gorm:"not null;index"`
	Bidder       string    `gorm:"size:255;not null;index"`
	Amount       uint64    `gorm:"not null"`
	Timestamp    time.Time `gorm:"not null"`
	IsHighestBid bool      `gorm:"not null"`
}
