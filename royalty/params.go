package royalty

import "fmt"

// Defaults applied by DefaultParams.
const (
	DefaultMaxAgreements = 1000
	DefaultMinRate       = 100
	DefaultMaxRate       = 2000
	DefaultPaymentAsset  = "SP000000000000000000002Q6VF78.payments"
)

// Params is the global parameter singleton. Only the ledger mutates it, and
// after an authority is set.
type Params struct {
	NextID        uint64
	MaxAgreements uint64
	MinRate       uint64
	MaxRate       uint64
	Authority     *Principal // nil until SetAuthority
	PaymentAsset  string
}

// DefaultParams returns the parameters of a freshly deployed ledger.
func DefaultParams() Params {
	return Params{
		MaxAgreements: DefaultMaxAgreements,
		MinRate:       DefaultMinRate,
		MaxRate:       DefaultMaxRate,
		PaymentAsset:  DefaultPaymentAsset,
	}
}

// HasAuthority reports whether the authority has been set.
func (p *Params) HasAuthority() bool {
	return p.Authority != nil
}

// RateInBand reports whether rate lies within [MinRate, MaxRate].
func (p *Params) RateInBand(rate uint64) bool {
	return rate >= p.MinRate && rate <= p.MaxRate
}

// Validate checks the structural invariants of p.
func (p *Params) Validate() error {
	if p.MinRate >= p.MaxRate {
		return fmt.Errorf("%w: min %d must be below max %d", ErrInvalidRateBound, p.MinRate, p.MaxRate)
	}
	if p.MaxRate > BasisPoints {
		return fmt.Errorf("%w: max %d exceeds %d", ErrInvalidMaxRate, p.MaxRate, BasisPoints)
	}
	if p.PaymentAsset == "" {
		return ErrInvalidPaymentAsset
	}
	return nil
}

func (p *Params) clone() *Params {
	c := *p
	if p.Authority != nil {
		a := *p.Authority
		c.Authority = &a
	}
	return &c
}

// SetAuthority sets the global authority. It succeeds only once.
func (l *Ledger) SetAuthority(call Call, authority Principal) error {
	return l.mutate("set-authority", call, func(tx StoreTx) error {
		p, err := tx.Params()
		if err != nil {
			return err
		}
		if p.HasAuthority() {
			return fmt.Errorf("%w: %s", ErrAlreadySet, *p.Authority)
		}
		if authority == "" {
			return ErrInvalidPrincipal
		}
		p.Authority = &authority
		return tx.PutParams(p)
	})
}

// SetMinRate lowers or raises the lower bound of the global rate band.
func (l *Ledger) SetMinRate(call Call, rate uint64) error {
	return l.mutate("set-min-rate", call, func(tx StoreTx) error {
		p, err := requireAuthority(tx)
		if err != nil {
			return err
		}
		if rate >= p.MaxRate {
			return fmt.Errorf("%w: min %d must be below max %d", ErrInvalidRateBound, rate, p.MaxRate)
		}
		p.MinRate = rate
		return tx.PutParams(p)
	})
}

// SetMaxRate lowers or raises the upper bound of the global rate band.
func (l *Ledger) SetMaxRate(call Call, rate uint64) error {
	return l.mutate("set-max-rate", call, func(tx StoreTx) error {
		p, err := requireAuthority(tx)
		if err != nil {
			return err
		}
		if rate <= p.MinRate {
			return fmt.Errorf("%w: max %d must be above min %d", ErrInvalidMaxRate, rate, p.MinRate)
		}
		if rate > BasisPoints {
			return fmt.Errorf("%w: max %d exceeds %d", ErrInvalidMaxRate, rate, BasisPoints)
		}
		p.MaxRate = rate
		return tx.PutParams(p)
	})
}

// SetPaymentAsset replaces the payment asset reference.
func (l *Ledger) SetPaymentAsset(call Call, asset string) error {
	return l.mutate("set-payment-asset", call, func(tx StoreTx) error {
		p, err := requireAuthority(tx)
		if err != nil {
			return err
		}
		if asset == "" {
			return ErrInvalidPaymentAsset
		}
		p.PaymentAsset = asset
		return tx.PutParams(p)
	})
}

// Params returns a snapshot of the global parameters.
func (l *Ledger) Params() (*Params, error) {
	var p *Params
	err := l.store.View(func(tx StoreTx) error {
		var err error
		p, err = tx.Params()
		return err
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

// requireAuthority loads the parameters and fails with ErrNotAuthorized if no
// authority is set.
func requireAuthority(tx StoreTx) (*Params, error) {
	p, err := tx.Params()
	if err != nil {
		return nil, err
	}
	if !p.HasAuthority() {
		return nil, fmt.Errorf("%w: no authority set", ErrNotAuthorized)
	}
	return p, nil
}
