package redis

import (
	"encoding/base64"
	"errors"
	"fmt"
	"reflect"

	"github.com/vmihailenco/msgpack/v5"
)

const dataField = "data"

var (
	ErrPointerType = errors.New("pointer type is not allowed")
	ErrEmptyData   = errors.New("data field is empty")
)

// DefaultParseToMessage 將 struct 以 msgpack 序列化並 base64 編碼後放進 data 欄位
func DefaultParseToMessage[T any](data T) (map[string]any, error) {
	encoded, err := EncodeData(data)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		dataField: encoded,
	}, nil
}

// DefaultParseFromMessage 從 data 欄位還原 struct，空訊息回傳零值
func DefaultParseFromMessage[T any](message map[string]any) (T, error) {
	var result T
	if reflect.TypeOf(result) != nil && reflect.TypeOf(result).Kind() == reflect.Ptr {
		return result, ErrPointerType
	}
	if len(message) == 0 {
		return result, nil
	}

	dataStr, ok := message[dataField].(string)
	if !ok {
		return result, fmt.Errorf("data field not found or invalid type")
	}
	return DecodeData[T](dataStr)
}

// EncodeData 將值序列化為可以直接存進 redis 的字串
func EncodeData[T any](data T) (string, error) {
	if reflect.TypeOf(data) != nil && reflect.TypeOf(data).Kind() == reflect.Ptr {
		return "", ErrPointerType
	}
	bytes, err := msgpack.Marshal(data)
	if err != nil {
		return "", fmt.Errorf("msgpack marshal error: %w", err)
	}
	return base64.StdEncoding.EncodeToString(bytes), nil
}

// DecodeData 是 EncodeData 的反向操作
func DecodeData[T any](data string) (T, error) {
	var result T
	if data == "" {
		return result, ErrEmptyData
	}
	bytes, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return result, fmt.Errorf("base64 decode error: %w", err)
	}
	if err := msgpack.Unmarshal(bytes, &result); err != nil {
		return result, fmt.Errorf("msgpack unmarshal error: %w", err)
	}
	return result, nil
}
