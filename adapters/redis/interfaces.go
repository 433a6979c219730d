//go:generate mockgen -package=redis -destination=mock.go -source=interfaces.go

package redis

import (
	"context"
)

// IProducer 將資料非同步寫入 stream
type IProducer[T any] interface {
	Start()
	Publish(data T) error
	Close()
}

// IGroupConsumer 以 consumer group 讀取 stream，每則訊息需要明確 ack
type IGroupConsumer[T any] interface {
	Start() error
	Subscribe() <-chan *Message[T]
	Close() error
}

// IConsumer 以廣播方式讀取 stream，不需要 ack
type IConsumer[T any] interface {
	Start()
	Subscribe() <-chan T
	Close()
}

// IMessage 是 group consumer 交給下游的單則訊息
type IMessage[T any] interface {
	Payload() T
	Done(ctx context.Context) error
	Fail(ctx context.Context, failErr error) error
}

// IAutoRenewMutex 自動續期的分散式鎖
type IAutoRenewMutex interface {
	Lock(ctx context.Context) (context.Context, error)
	Unlock() (bool, error)
	Valid() bool
}
