package ledger

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/samber/lo"

	"zenthra/eventlog"
	"zenthra/events"
)

// MemoryStore 是行程內的 Store，同時也是可以重播的 event log
type MemoryStore struct {
	mu        sync.RWMutex
	auctionID uint64
	tx        uint64
	records   map[uint64]Record
	bids      map[uint64][]Bid
	index     map[IndexKind]map[string]map[uint64]struct{}
	log       *eventlog.MemoryLog
}

var _ Store = (*MemoryStore)(nil)
var _ eventlog.Reader = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[uint64]Record),
		bids:    make(map[uint64][]Bid),
		index:   make(map[IndexKind]map[string]map[uint64]struct{}),
		log:     eventlog.NewMemoryLog(),
	}
}

func (s *MemoryStore) NextAuctionID(ctx context.Context) (uint64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.auctionID++
	return s.auctionID, nil
}

func (s *MemoryStore) Load(ctx context.Context, id uint64) (Record, error) {
	if err := ctx.Err(); err != nil {
		return Record{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.records[id]
	if !ok {
		return Record{}, fmt.Errorf("%w: id=%d", ErrNotFound, id)
	}
	return record, nil
}

func (s *MemoryStore) Commit(ctx context.Context, change Change) ([]events.Envelope, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	id := change.Auction.ID
	current, exists := s.records[id]
	if change.ExpectedVersion == 0 && exists {
		return nil, fmt.Errorf("%w: auction %d already exists", ErrVersionConflict, id)
	}
	if change.ExpectedVersion != 0 && (!exists || current.Version != change.ExpectedVersion) {
		return nil, fmt.Errorf("%w: auction %d expected version %d", ErrVersionConflict, id, change.ExpectedVersion)
	}

	s.tx++
	envs := make([]events.Envelope, len(change.Events))
	for i, payload := range change.Events {
		envs[i] = events.Envelope{
			Seq:       events.Sequence{Tx: s.tx, Idx: uint32(i)},
			AuctionID: id,
			Timestamp: change.Time,
			Payload:   payload,
		}
	}
	if err := s.log.Append(envs...); err != nil {
		s.tx--
		return nil, fmt.Errorf("%w: %v", ErrTransientStore, err)
	}

	s.records[id] = Record{Auction: change.Auction, Version: change.ExpectedVersion + 1}
	if change.Bid != nil {
		s.bids[id] = append(s.bids[id], *change.Bid)
	}
	for _, entry := range change.Index {
		byIdentity, ok := s.index[entry.Kind]
		if !ok {
			byIdentity = make(map[string]map[uint64]struct{})
			s.index[entry.Kind] = byIdentity
		}
		ids, ok := byIdentity[entry.Identity]
		if !ok {
			ids = make(map[uint64]struct{})
			byIdentity[entry.Identity] = ids
		}
		ids[id] = struct{}{}
	}
	return envs, nil
}

func (s *MemoryStore) Bids(ctx context.Context, id uint64) ([]Bid, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.bids[id]), nil
}

func (s *MemoryStore) Index(ctx context.Context, kind IndexKind, identity string) ([]uint64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := lo.Keys(s.index[kind][identity])
	slices.Sort(ids)
	return ids, nil
}

// Read 讓 MemoryStore 可以直接作為 projector 的重播來源
func (s *MemoryStore) Read(ctx context.Context, after events.Sequence, limit int) ([]events.Envelope, error) {
	return s.log.Read(ctx, after, limit)
}
