package royalty

// LastUpdate returns the most recent amendment of agreement id. Only
// UpdateRoyalty writes audit records, and each write replaces the previous.
func (l *Ledger) LastUpdate(id uint64) (*UpdateRecord, error) {
	var u *UpdateRecord
	err := l.store.View(func(tx StoreTx) error {
		if _, err := tx.Agreement(id); err != nil {
			return err
		}
		var err error
		u, err = tx.Update(id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return u, nil
}
