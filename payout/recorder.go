package payout

import (
	"sync"

	"github.com/bitfsorg/libroyalty-go/royalty"
)

// Recorder is an in-memory TransferSink that keeps every submitted transfer
// and the running total received per principal.
type Recorder struct {
	mu        sync.RWMutex
	transfers []royalty.Transfer
	received  map[royalty.Principal]uint64
}

// Compile-time interface check.
var _ royalty.TransferSink = (*Recorder)(nil)

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{received: make(map[royalty.Principal]uint64)}
}

// Submit records t.
func (r *Recorder) Submit(t royalty.Transfer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.transfers = append(r.transfers, t)
	r.received[t.To] += t.Amount
	return nil
}

// Transfers returns a copy of all recorded transfers in submission order.
func (r *Recorder) Transfers() []royalty.Transfer {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]royalty.Transfer, len(r.transfers))
	copy(result, r.transfers)
	return result
}

// Received returns the total amount transferred to p.
func (r *Recorder) Received(p royalty.Principal) uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.received[p]
}
