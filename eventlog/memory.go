package eventlog

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"zenthra/events"
)

// MemoryLog 是只能附加的記憶體 event log
type MemoryLog struct {
	mu      sync.RWMutex
	entries []events.Envelope
}

func NewMemoryLog() *MemoryLog {
	return &MemoryLog{}
}

// Append 附加事件，序號必須嚴格遞增
func (l *MemoryLog) Append(envs ...events.Envelope) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	last := events.Sequence{}
	if n := len(l.entries); n > 0 {
		last = l.entries[n-1].Seq
	}
	for _, env := range envs {
		if !last.Less(env.Seq) {
			return fmt.Errorf("sequence %s is not after %s", env.Seq, last)
		}
		last = env.Seq
	}
	l.entries = append(l.entries, envs...)
	return nil
}

func (l *MemoryLog) Read(ctx context.Context, after events.Sequence, limit int) ([]events.Envelope, error) {
	if limit <= 0 {
		return nil, ErrInvalidLimit
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	l.mu.RLock()
	defer l.mu.RUnlock()

	start := sort.Search(len(l.entries), func(i int) bool {
		return after.Less(l.entries[i].Seq)
	})
	end := min(start+limit, len(l.entries))
	out := make([]events.Envelope, end-start)
	copy(out, l.entries[start:end])
	return out, nil
}

// Len 回傳目前事件數量
func (l *MemoryLog) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}
