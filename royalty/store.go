package royalty

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrReadOnlyTx indicates a write attempted inside a View transaction.
var ErrReadOnlyTx = errors.New("royalty: write in read-only transaction")

// RecipientSlot is a recipient record together with its slot index.
type RecipientSlot struct {
	Index uint64
	Recipient
}

// TierSlot is a tier record together with its tier index.
type TierSlot struct {
	Index uint64
	Tier
}

// Store persists ledger state. Every ledger operation runs inside exactly one
// Update (or View) call; if fn returns an error none of its writes apply.
type Store interface {
	// View runs fn in a read-only transaction.
	View(fn func(tx StoreTx) error) error

	// Update runs fn in a read-write transaction.
	Update(fn func(tx StoreTx) error) error

	// Close releases the store's resources.
	Close() error
}

// StoreTx reads and writes the five ledger maps within one transaction.
type StoreTx interface {
	// Params returns the global parameters singleton.
	Params() (*Params, error)

	// PutParams replaces the global parameters singleton.
	PutParams(p *Params) error

	// Agreement returns the agreement with the given id, or ErrNotFound.
	Agreement(id uint64) (*Agreement, error)

	// PutAgreement stores a by its ID, overwriting any previous value.
	PutAgreement(a *Agreement) error

	// Recipient returns the recipient at key, or ErrNotFound.
	Recipient(key SlotKey) (*Recipient, error)

	// PutRecipient stores r at key, overwriting any previous value.
	PutRecipient(key SlotKey, r *Recipient) error

	// Recipients returns all recipients of an agreement ordered by slot index.
	Recipients(agreementID uint64) ([]RecipientSlot, error)

	// Tier returns the tier at key, or ErrNotFound.
	Tier(key SlotKey) (*Tier, error)

	// PutTier stores t at key, overwriting any previous value.
	PutTier(key SlotKey, t *Tier) error

	// Tiers returns all tiers of an agreement ordered by tier index.
	Tiers(agreementID uint64) ([]TierSlot, error)

	// Update returns the latest update record of an agreement, or ErrNotFound.
	Update(agreementID uint64) (*UpdateRecord, error)

	// PutUpdate replaces the update record of an agreement.
	PutUpdate(agreementID uint64, u *UpdateRecord) error
}

type memState struct {
	params     *Params
	agreements map[uint64]Agreement
	recipients map[SlotKey]Recipient
	tiers      map[SlotKey]Tier
	updates    map[uint64]UpdateRecord
}

func newMemState() *memState {
	return &memState{
		agreements: make(map[uint64]Agreement),
		recipients: make(map[SlotKey]Recipient),
		tiers:      make(map[SlotKey]Tier),
		updates:    make(map[uint64]UpdateRecord),
	}
}

// MemStore is an in-memory implementation of Store.
type MemStore struct {
	mu    sync.RWMutex
	state *memState
}

// Compile-time interface check.
var _ Store = (*MemStore)(nil)

// NewMemStore creates an in-memory store seeded with params.
func NewMemStore(params Params) *MemStore {
	s := newMemState()
	s.params = &params
	return &MemStore{state: s}
}

// View runs fn against a read-only snapshot.
func (s *MemStore) View(fn func(tx StoreTx) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(&memTx{base: s.state})
}

// Update runs fn with staged writes that are merged only if fn succeeds.
func (s *MemStore) Update(fn func(tx StoreTx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &memTx{base: s.state, pending: newMemState()}
	if err := fn(tx); err != nil {
		return err
	}
	tx.commit()
	return nil
}

// Close is a no-op for the in-memory store.
func (s *MemStore) Close() error { return nil }

type memTx struct {
	base    *memState
	pending *memState // nil for read-only transactions
}

func (t *memTx) writable() error {
	if t.pending == nil {
		return ErrReadOnlyTx
	}
	return nil
}

func (t *memTx) commit() {
	if t.pending.params != nil {
		t.base.params = t.pending.params
	}
	for k, v := range t.pending.agreements {
		t.base.agreements[k] = v
	}
	for k, v := range t.pending.recipients {
		t.base.recipients[k] = v
	}
	for k, v := range t.pending.tiers {
		t.base.tiers[k] = v
	}
	for k, v := range t.pending.updates {
		t.base.updates[k] = v
	}
}

func (t *memTx) Params() (*Params, error) {
	p := t.base.params
	if t.pending != nil && t.pending.params != nil {
		p = t.pending.params
	}
	if p == nil {
		return nil, fmt.Errorf("%w: parameters", ErrNotFound)
	}
	return p.clone(), nil
}

func (t *memTx) PutParams(p *Params) error {
	if err := t.writable(); err != nil {
		return err
	}
	t.pending.params = p.clone()
	return nil
}

func (t *memTx) Agreement(id uint64) (*Agreement, error) {
	if t.pending != nil {
		if a, ok := t.pending.agreements[id]; ok {
			return &a, nil
		}
	}
	a, ok := t.base.agreements[id]
	if !ok {
		return nil, fmt.Errorf("%w: agreement %d", ErrNotFound, id)
	}
	return &a, nil
}

func (t *memTx) PutAgreement(a *Agreement) error {
	if err := t.writable(); err != nil {
		return err
	}
	t.pending.agreements[a.ID] = *a
	return nil
}

func (t *memTx) Recipient(key SlotKey) (*Recipient, error) {
	if t.pending != nil {
		if r, ok := t.pending.recipients[key]; ok {
			return &r, nil
		}
	}
	r, ok := t.base.recipients[key]
	if !ok {
		return nil, fmt.Errorf("%w: recipient %d/%d", ErrNotFound, key.AgreementID, key.Index)
	}
	return &r, nil
}

func (t *memTx) PutRecipient(key SlotKey, r *Recipient) error {
	if err := t.writable(); err != nil {
		return err
	}
	t.pending.recipients[key] = *r
	return nil
}

func (t *memTx) Recipients(agreementID uint64) ([]RecipientSlot, error) {
	merged := make(map[uint64]Recipient)
	for k, v := range t.base.recipients {
		if k.AgreementID == agreementID {
			merged[k.Index] = v
		}
	}
	if t.pending != nil {
		for k, v := range t.pending.recipients {
			if k.AgreementID == agreementID {
				merged[k.Index] = v
			}
		}
	}
	result := make([]RecipientSlot, 0, len(merged))
	for idx, r := range merged {
		result = append(result, RecipientSlot{Index: idx, Recipient: r})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Index < result[j].Index })
	return result, nil
}

func (t *memTx) Tier(key SlotKey) (*Tier, error) {
	if t.pending != nil {
		if tier, ok := t.pending.tiers[key]; ok {
			return &tier, nil
		}
	}
	tier, ok := t.base.tiers[key]
	if !ok {
		return nil, fmt.Errorf("%w: tier %d/%d", ErrNotFound, key.AgreementID, key.Index)
	}
	return &tier, nil
}

func (t *memTx) PutTier(key SlotKey, tier *Tier) error {
	if err := t.writable(); err != nil {
		return err
	}
	t.pending.tiers[key] = *tier
	return nil
}

func (t *memTx) Tiers(agreementID uint64) ([]TierSlot, error) {
	merged := make(map[uint64]Tier)
	for k, v := range t.base.tiers {
		if k.AgreementID == agreementID {
			merged[k.Index] = v
		}
	}
	if t.pending != nil {
		for k, v := range t.pending.tiers {
			if k.AgreementID == agreementID {
				merged[k.Index] = v
			}
		}
	}
	result := make([]TierSlot, 0, len(merged))
	for idx, tier := range merged {
		result = append(result, TierSlot{Index: idx, Tier: tier})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Index < result[j].Index })
	return result, nil
}

func (t *memTx) Update(agreementID uint64) (*UpdateRecord, error) {
	if t.pending != nil {
		if u, ok := t.pending.updates[agreementID]; ok {
			return &u, nil
		}
	}
	u, ok := t.base.updates[agreementID]
	if !ok {
		return nil, fmt.Errorf("%w: update record for agreement %d", ErrNotFound, agreementID)
	}
	return &u, nil
}

func (t *memTx) PutUpdate(agreementID uint64, u *UpdateRecord) error {
	if err := t.writable(); err != nil {
		return err
	}
	t.pending.updates[agreementID] = *u
	return nil
}
