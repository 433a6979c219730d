package events

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

// stream entry 的欄位名稱
const (
	FieldKind    = "kind"
	FieldTx      = "tx"
	FieldIdx     = "idx"
	FieldAuction = "auction"
	FieldTime    = "ts"
	FieldData    = "data"
)

// EncodePayload 將 payload 以 msgpack 序列化後做 base64 編碼
func EncodePayload(p Payload) (string, error) {
	if p == nil {
		return "", fmt.Errorf("%w: nil payload", ErrMalformedEvent)
	}
	bytes, err := msgpack.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("msgpack marshal error: %w", err)
	}
	return base64.StdEncoding.EncodeToString(bytes), nil
}

// DecodePayload 依照事件種類還原 payload
func DecodePayload(kind Kind, data string) (Payload, error) {
	bytes, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return nil, fmt.Errorf("%w: base64 decode error: %v", ErrMalformedEvent, err)
	}
	switch kind {
	case KindAuctionCreated:
		var p AuctionCreated
		if err := msgpack.Unmarshal(bytes, &p); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
		}
		return p, nil
	case KindBidPlaced:
		var p BidPlaced
		if err := msgpack.Unmarshal(bytes, &p); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
		}
		return p, nil
	case KindAuctionCompleted:
		var p AuctionCompleted
		if err := msgpack.Unmarshal(bytes, &p); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
		}
		return p, nil
	default:
		return nil, fmt.Errorf("%w: unknown kind %q", ErrMalformedEvent, kind)
	}
}

// ToMessage 將事件轉換成 stream entry 的欄位
func ToMessage(e Envelope) (map[string]any, error) {
	data, err := EncodePayload(e.Payload)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		FieldKind:    string(e.Kind()),
		FieldTx:      strconv.FormatUint(e.Seq.Tx, 10),
		FieldIdx:     strconv.FormatUint(uint64(e.Seq.Idx), 10),
		FieldAuction: strconv.FormatUint(e.AuctionID, 10),
		FieldTime:    strconv.FormatInt(e.Timestamp.UnixNano(), 10),
		FieldData:    data,
	}, nil
}

// FromMessage 將 stream entry 的欄位還原成事件，任何欄位缺漏或格式錯誤都回傳 ErrMalformedEvent
func FromMessage(message map[string]any) (Envelope, error) {
	field := func(name string) (string, error) {
		v, ok := message[name].(string)
		if !ok {
			return "", fmt.Errorf("%w: field %q not found or invalid type", ErrMalformedEvent, name)
		}
		return v, nil
	}
	number := func(name string, bitSize int) (uint64, error) {
		v, err := field(name)
		if err != nil {
			return 0, err
		}
		n, err := strconv.ParseUint(v, 10, bitSize)
		if err != nil {
			return 0, fmt.Errorf("%w: field %q: %v", ErrMalformedEvent, name, err)
		}
		return n, nil
	}

	kind, err := field(FieldKind)
	if err != nil {
		return Envelope{}, err
	}
	tx, err := number(FieldTx, 64)
	if err != nil {
		return Envelope{}, err
	}
	idx, err := number(FieldIdx, 32)
	if err != nil {
		return Envelope{}, err
	}
	auctionID, err := number(FieldAuction, 64)
	if err != nil {
		return Envelope{}, err
	}
	ts, err := field(FieldTime)
	if err != nil {
		return Envelope{}, err
	}
	nanos, err := strconv.ParseInt(ts, 10, 64)
	if err != nil {
		return Envelope{}, fmt.Errorf("%w: field %q: %v", ErrMalformedEvent, FieldTime, err)
	}
	data, err := field(FieldData)
	if err != nil {
		return Envelope{}, err
	}
	payload, err := DecodePayload(Kind(kind), data)
	if err != nil {
		return Envelope{}, err
	}
	return Envelope{
		Seq:       Sequence{Tx: tx, Idx: uint32(idx)},
		AuctionID: auctionID,
		Timestamp: time.Unix(0, nanos).UTC(),
		Payload:   payload,
	}, nil
}
