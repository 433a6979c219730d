package api

import (
	"crypto/ed25519"
	"time"
)

type ServerConfig struct {
	// ID 是此實例的名稱，作為 consumer group 中的 consumer 名稱
	ID     string
	Auth   AuthConfig
	DB     DBConfig
	Redis  RedisConfig
	NATS   NATSConfig
	Ledger    LedgerConfig
	Projector ProjectorConfig
	SSE       SSEConfig
}

type AuthConfig struct {
	PublicKey ed25519.PublicKey
	Issuer    string
	Audience  string
}

type DBConfig struct {
	User        string
	Password    string
	Host        string
	Port        int
	Database    string
	Schema      string
	AutoMigrate bool
}

type RedisConfig struct {
	Addr          string
	Password      string
	DB            int
	KeyPrefix     string
	ConsumerGroup string

	StreamKeys RedisStreamKeys
}

type RedisStreamKeys struct {
	Events string
	SSE    string
}

// NATSConfig URL 為空時不啟用 nats 轉發
type NATSConfig struct {
	URL           string
	SubjectPrefix string
}

type LedgerConfig struct {
	LockTimeout   time.Duration
	RetryTries    uint
	RetryInterval time.Duration
}

// ProjectorConfig Rebuild 為 true 時啟動前會清空投影並從 event log 開頭重播
// RetryTries 與 RetryInterval 控制單一事件遇到資料庫錯誤時的重試，
// MaxRetryInterval 是重試用盡後消費迴圈持續重試的最長間隔
type ProjectorConfig struct {
	Rebuild          bool
	DeferWindow      int
	RetryTries       uint
	RetryInterval    time.Duration
	MaxRetryInterval time.Duration
}

type SSEConfig struct {
	BufferSize        int
	KeepAliveInterval time.Duration
}
