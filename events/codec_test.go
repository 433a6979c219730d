package events

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromMessage(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	created := AuctionCreated{
		AuctionID:   7,
		Creator:     "lsk-creator",
		ItemName:    "Lamp",
		StartingBid: 100,
		CreatedTime: now,
		EndTime:     now.Add(time.Hour),
	}
	message, err := ToMessage(Envelope{
		Seq:       Sequence{Tx: 3, Idx: 0},
		AuctionID: 7,
		Timestamp: now,
		Payload:   created,
	})
	require.NoError(t, err)

	tests := []struct {
		name    string
		mutate  func(map[string]any)
		wantErr bool
	}{
		{
			name:   "valid message",
			mutate: func(map[string]any) {},
		},
		{
			name:    "unknown kind",
			mutate:  func(m map[string]any) { m[FieldKind] = "OwnershipTransferred" },
			wantErr: true,
		},
		{
			name:    "missing tx",
			mutate:  func(m map[string]any) { delete(m, FieldTx) },
			wantErr: true,
		},
		{
			name:    "broken payload",
			mutate:  func(m map[string]any) { m[FieldData] = "!!not-base64!!" },
			wantErr: true,
		},
		{
			name:    "payload of another kind",
			mutate:  func(m map[string]any) { m[FieldKind] = string(KindBidPlaced); m[FieldData] = "gA==" },
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := make(map[string]any, len(message))
			for k, v := range message {
				m[k] = v
			}
			tt.mutate(m)

			got, err := FromMessage(m)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrMalformedEvent)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, Sequence{Tx: 3, Idx: 0}, got.Seq)
			assert.Equal(t, uint64(7), got.AuctionID)
			assert.True(t, now.Equal(got.Timestamp))
		})
	}
}

func TestFromMessage_RoundTripPayload(t *testing.T) {
	now := time.Now().UTC()
	bid := BidPlaced{AuctionID: 2, Bidder: "lsk-bidder", Amount: 150, Timestamp: now, IsHighestBid: true}

	message, err := ToMessage(Envelope{Seq: Sequence{Tx: 9, Idx: 1}, AuctionID: 2, Timestamp: now, Payload: bid})
	require.NoError(t, err)

	got, err := FromMessage(message)
	require.NoError(t, err)
	decoded, ok := got.Payload.(BidPlaced)
	require.True(t, ok)
	assert.Equal(t, bid.Bidder, decoded.Bidder)
	assert.Equal(t, bid.Amount, decoded.Amount)
	assert.True(t, bid.Timestamp.Equal(decoded.Timestamp))
	assert.True(t, decoded.IsHighestBid)
	assert.NoError(t, got.Validate())
}

func TestEnvelope_Validate(t *testing.T) {
	now := time.Now().UTC()
	tests := []struct {
		name string
		env  Envelope
		ok   bool
	}{
		{
			name: "zero sequence",
			env:  Envelope{AuctionID: 1, Payload: BidPlaced{AuctionID: 1, Bidder: "b", Amount: 1}},
		},
		{
			name: "auction mismatch",
			env:  Envelope{Seq: Sequence{Tx: 1}, AuctionID: 2, Payload: BidPlaced{AuctionID: 1, Bidder: "b", Amount: 1}},
		},
		{
			name: "end before creation",
			env: Envelope{Seq: Sequence{Tx: 1}, AuctionID: 1, Payload: AuctionCreated{
				AuctionID: 1, Creator: "c", ItemName: "n", StartingBid: 1, CreatedTime: now, EndTime: now,
			}},
		},
		{
			name: "completion without winner",
			env:  Envelope{Seq: Sequence{Tx: 1}, AuctionID: 1, Payload: AuctionCompleted{AuctionID: 1, Winner: NoWinner}},
			ok:   true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.env.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrMalformedEvent)
			}
		})
	}
}

func TestSequence(t *testing.T) {
	seq, err := ParseSequence("12-3")
	require.NoError(t, err)
	assert.Equal(t, Sequence{Tx: 12, Idx: 3}, seq)
	assert.Equal(t, "12-3", seq.String())
	assert.True(t, seq.Less(seq.Next()))
	assert.True(t, Sequence{Tx: 11, Idx: 9}.Less(seq))

	_, err = ParseSequence("12")
	assert.Error(t, err)
	_, err = ParseSequence("x-1")
	assert.Error(t, err)
}
