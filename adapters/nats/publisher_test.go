package nats

import (
	"errors"
	"testing"

	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type published struct {
	subject string
	data    []byte
}

type fakeConn struct {
	messages []published
	err      error
}

func (c *fakeConn) Publish(subject string, data []byte) error {
	if c.err != nil {
		return c.err
	}
	c.messages = append(c.messages, published{subject: subject, data: data})
	return nil
}

type update struct {
	AuctionID uint64 `msgpack:"auction_id"`
	Amount    uint64 `msgpack:"amount"`
}

func TestPublisher(t *testing.T) {
	conn := &fakeConn{}
	publisher, err := NewPublisher[update](conn, "zenthra.auctions")
	require.NoError(t, err)

	require.NoError(t, publisher.Publish("42", update{AuctionID: 42, Amount: 150}))
	require.Len(t, conn.messages, 1)
	assert.Equal(t, "zenthra.auctions.42", conn.messages[0].subject)

	decoded, err := Decode[update](&nats.Msg{Subject: conn.messages[0].subject, Data: conn.messages[0].data})
	require.NoError(t, err)
	assert.Equal(t, update{AuctionID: 42, Amount: 150}, decoded)
}

func TestPublisher_InvalidSubject(t *testing.T) {
	conn := &fakeConn{}
	for _, prefix := range []string{"", "a b", "a.*", "a.>", ".a", "a.", "a..b"} {
		_, err := NewPublisher[update](conn, prefix)
		assert.ErrorIs(t, err, ErrInvalidSubject, prefix)
	}

	publisher, err := NewPublisher[update](conn, "auctions")
	require.NoError(t, err)
	for _, key := range []string{"", "1.2", "*", ">"} {
		assert.ErrorIs(t, publisher.Publish(key, update{}), ErrInvalidSubject, key)
	}
	assert.Empty(t, conn.messages)

	_, err = NewPublisher[update](nil, "auctions")
	assert.Error(t, err)
}

func TestPublisher_ConnError(t *testing.T) {
	connErr := nats.ErrConnectionClosed
	publisher, err := NewPublisher[update](&fakeConn{err: connErr}, "auctions")
	require.NoError(t, err)
	assert.ErrorIs(t, publisher.Publish("1", update{}), connErr)
}

func TestDecode(t *testing.T) {
	_, err := Decode[update](nil)
	assert.Error(t, err)
	_, err = Decode[update](&nats.Msg{Subject: "auctions.1"})
	assert.Error(t, err)
	_, err = Decode[update](&nats.Msg{Subject: "auctions.1", Data: []byte{0xc1}})
	assert.Error(t, err)
	assert.False(t, errors.Is(err, ErrInvalidSubject))
}
