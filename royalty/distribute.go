package royalty

import (
	"fmt"
	"math/bits"
)

// ComputePayout returns floor(saleAmount * rate / 10000). The product is
// formed in 128 bits so no intermediate value overflows or rounds.
func ComputePayout(saleAmount, rate uint64) (uint64, error) {
	hi, lo := bits.Mul64(saleAmount, rate)
	if hi >= BasisPoints {
		return 0, fmt.Errorf("%w: %d * %d", ErrPayoutOverflow, saleAmount, rate)
	}
	q, _ := bits.Div64(hi, lo, BasisPoints)
	return q, nil
}

// DistributeRoyalty computes the payout owed on a sale under agreement id,
// submits a transfer from the caller to the creator, and returns the payout.
// The agreement's flat rate applies; recipients and tiers are not consulted.
func (l *Ledger) DistributeRoyalty(call Call, id, saleAmount uint64) (uint64, error) {
	var transfer Transfer
	err := l.serialize("distribute-royalty", call, func() error {
		// Distribution writes nothing, so a read transaction suffices and
		// the transfer is emitted only after it has closed.
		err := l.store.View(func(tx StoreTx) error {
			a, err := tx.Agreement(id)
			if err != nil {
				return err
			}
			if call.Height >= a.Expiration {
				return fmt.Errorf("%w: agreement %d expired at %d", ErrExpired, id, a.Expiration)
			}
			if saleAmount == 0 {
				return ErrInvalidSaleAmount
			}
			payout, err := ComputePayout(saleAmount, a.Rate)
			if err != nil {
				return err
			}
			transfer = Transfer{
				AgreementID: id,
				Amount:      payout,
				From:        call.Caller,
				To:          a.Creator,
			}
			return nil
		})
		if err != nil {
			return err
		}
		if err := l.sink.Submit(transfer); err != nil {
			return fmt.Errorf("royalty: submit transfer: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	l.metrics.distributions.Inc()
	l.metrics.payoutTotal.Add(float64(transfer.Amount))
	l.logger.Info("royalty distributed",
		"id", id,
		"sale", saleAmount,
		"payout", transfer.Amount,
		"to", string(transfer.To),
	)
	return transfer.Amount, nil
}
