package royalty

import "fmt"

// AddRecipient stores a payout recipient in a slot of agreement id,
// overwriting whatever the slot held. The creator may not name itself.
func (l *Ledger) AddRecipient(call Call, id uint64, recipient Principal, percentage, slot uint64) error {
	return l.mutate("add-recipient", call, func(tx StoreTx) error {
		if _, err := creatorAgreement(tx, call, id); err != nil {
			return err
		}
		if recipient == call.Caller {
			return fmt.Errorf("%w: creator cannot be its own recipient", ErrInvalidRecipient)
		}
		if percentage == 0 || percentage > BasisPoints {
			return fmt.Errorf("%w: %d", ErrInvalidPercentage, percentage)
		}
		return tx.PutRecipient(SlotKey{AgreementID: id, Index: slot}, &Recipient{
			Recipient:  recipient,
			Percentage: percentage,
		})
	})
}

// AddTier stores a threshold rate at tierIndex of agreement id, overwriting
// whatever the tier held.
func (l *Ledger) AddTier(call Call, id, tierIndex, threshold, rate uint64) error {
	return l.mutate("add-tier", call, func(tx StoreTx) error {
		if _, err := creatorAgreement(tx, call, id); err != nil {
			return err
		}
		if tierIndex == 0 {
			return ErrInvalidTier
		}
		if threshold == 0 {
			return ErrInvalidThreshold
		}
		p, err := tx.Params()
		if err != nil {
			return err
		}
		if !p.RateInBand(rate) {
			return fmt.Errorf("%w: %d not in [%d, %d]", ErrInvalidRate, rate, p.MinRate, p.MaxRate)
		}
		return tx.PutTier(SlotKey{AgreementID: id, Index: tierIndex}, &Tier{
			Threshold: threshold,
			Rate:      rate,
		})
	})
}

// Recipient returns the recipient stored at key.
func (l *Ledger) Recipient(key SlotKey) (*Recipient, error) {
	var r *Recipient
	err := l.store.View(func(tx StoreTx) error {
		var err error
		r, err = tx.Recipient(key)
		return err
	})
	return r, err
}

// Recipients lists the recipients of agreement id by slot index.
func (l *Ledger) Recipients(id uint64) ([]RecipientSlot, error) {
	var slots []RecipientSlot
	err := l.store.View(func(tx StoreTx) error {
		if _, err := tx.Agreement(id); err != nil {
			return err
		}
		var err error
		slots, err = tx.Recipients(id)
		return err
	})
	return slots, err
}

// Tier returns the tier stored at key.
func (l *Ledger) Tier(key SlotKey) (*Tier, error) {
	var t *Tier
	err := l.store.View(func(tx StoreTx) error {
		var err error
		t, err = tx.Tier(key)
		return err
	})
	return t, err
}

// Tiers lists the tiers of agreement id by tier index.
func (l *Ledger) Tiers(id uint64) ([]TierSlot, error) {
	var tiers []TierSlot
	err := l.store.View(func(tx StoreTx) error {
		if _, err := tx.Agreement(id); err != nil {
			return err
		}
		var err error
		tiers, err = tx.Tiers(id)
		return err
	})
	return tiers, err
}
