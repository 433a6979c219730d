package models

import (
	"time"
)

// Auction 是拍賣在讀取端的投影
// 由 projector 依事件寫入，查詢服務只讀取
type Auction struct {
	ID                uint64     `gorm:"primaryKey;autoIncrement:false"`
	ItemName          string     `gorm:"size:255;not null;index"`
	ItemImageURL      string     `gorm:"size:2048;not null;default:''"`
	Creator           string     `gorm:"size:255;not null;index"`
	StartingBid       uint64     `gorm:"not null"`
	CurrentHighestBid uint64     `gorm:"not null;index"`
	HighestBidder     string     `gorm:"size:255;not null;default:''"`
	BidCount          uint64     `gorm:"not null;default:0"`
	CreatedTime       time.Time  `gorm:"not null;index"`
	EndTime           time.Time  `gorm:"not null;index"`
	IsActive          bool       `gorm:"not null;index"`
	IsCompleted       bool       `gorm:"not null"`
	Winner            string     `gorm:"size:255;not null;default:'';index"`
	FinalPrice        uint64     `gorm:"not null;default:0"`
	CompletedTime     *time.Time
	UpdatedAt         time.Time

	// 外鍵關聯
	Bids []Bid `gorm:"constraint:OnDelete:CASCADE"`
}
