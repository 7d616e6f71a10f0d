package royalty

import (
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// LedgerConfig configures a Ledger.
type LedgerConfig struct {
	Store        Store        // required
	Sink         TransferSink // required; receives distribution payouts
	Logger       *slog.Logger
	PromRegistry prometheus.Registerer
}

// Ledger is the royalty validation-and-mutation engine. Operations are
// serialized; each one either applies all of its writes or none.
type Ledger struct {
	mu      sync.Mutex
	store   Store
	sink    TransferSink
	logger  *slog.Logger
	metrics struct {
		created       prometheus.Counter
		updated       prometheus.Counter
		distributions prometheus.Counter
		payoutTotal   prometheus.Counter
		rejected      *prometheus.CounterVec
	}
}

// NewLedger creates a ledger over cfg.Store.
func NewLedger(cfg LedgerConfig) (*Ledger, error) {
	if cfg.Store == nil {
		return nil, fmt.Errorf("%w: store", ErrNilParam)
	}
	if cfg.Sink == nil {
		return nil, fmt.Errorf("%w: transfer sink", ErrNilParam)
	}
	l := &Ledger{
		store:  cfg.Store,
		sink:   cfg.Sink,
		logger: cfg.Logger,
	}
	if l.logger == nil {
		l.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	l.logger = l.logger.With("component", "royalty")

	promautoFactory := promauto.With(cfg.PromRegistry)
	l.metrics.created = promautoFactory.NewCounter(prometheus.CounterOpts{
		Name: "royalty_agreements_created_total",
		Help: "total royalty agreements created",
	})
	l.metrics.updated = promautoFactory.NewCounter(prometheus.CounterOpts{
		Name: "royalty_agreements_updated_total",
		Help: "total royalty agreement amendments",
	})
	l.metrics.distributions = promautoFactory.NewCounter(prometheus.CounterOpts{
		Name: "royalty_distributions_total",
		Help: "total successful royalty distributions",
	})
	l.metrics.payoutTotal = promautoFactory.NewCounter(prometheus.CounterOpts{
		Name: "royalty_payout_amount_total",
		Help: "sum of all distributed payout amounts",
	})
	l.metrics.rejected = promautoFactory.NewCounterVec(prometheus.CounterOpts{
		Name: "royalty_operations_rejected_total",
		Help: "rejected ledger operations by error kind",
	}, []string{"op", "kind"})
	return l, nil
}

// mutate runs fn in one store write transaction on behalf of call.
func (l *Ledger) mutate(op string, call Call, fn func(tx StoreTx) error) error {
	return l.serialize(op, call, func() error {
		return l.store.Update(fn)
	})
}

// serialize runs exec under the ledger lock on behalf of call and records
// the outcome.
func (l *Ledger) serialize(op string, call Call, exec func() error) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	var err error
	if call.Caller == "" {
		err = fmt.Errorf("%w: empty caller", ErrInvalidPrincipal)
	} else {
		err = exec()
	}
	if err != nil {
		l.reject(op, call, err)
		return err
	}
	l.logger.Debug("operation applied",
		"op", op,
		"caller", string(call.Caller),
		"height", call.Height,
	)
	return nil
}

func (l *Ledger) reject(op string, call Call, err error) {
	kind := KindOf(err)
	l.metrics.rejected.WithLabelValues(op, kind.String()).Inc()
	l.logger.Debug("operation rejected",
		"op", op,
		"caller", string(call.Caller),
		"height", call.Height,
		"kind", kind.String(),
		"error", err,
	)
}

// CreateRoyalty stores a new agreement owned by the caller and returns its id.
// Checks run in a fixed order and the first failure is returned.
func (l *Ledger) CreateRoyalty(call Call, req CreateRequest) (uint64, error) {
	var id uint64
	err := l.mutate("create-royalty", call, func(tx StoreTx) error {
		p, err := tx.Params()
		if err != nil {
			return err
		}
		if p.NextID >= p.MaxAgreements {
			return fmt.Errorf("%w: limit %d", ErrCapacityExceeded, p.MaxAgreements)
		}
		if req.AssetID == 0 {
			return ErrInvalidAssetID
		}
		if !p.RateInBand(req.Rate) {
			return fmt.Errorf("%w: %d not in [%d, %d]", ErrInvalidRate, req.Rate, p.MinRate, p.MaxRate)
		}
		if req.Expiration < call.Height {
			return fmt.Errorf("%w: %d below height %d", ErrInvalidExpiration, req.Expiration, call.Height)
		}
		if !req.Currency.Valid() {
			return fmt.Errorf("%w: %q", ErrInvalidCurrency, req.Currency)
		}
		if !p.HasAuthority() {
			return ErrAuthorityNotVerified
		}

		id = p.NextID
		if err := tx.PutAgreement(&Agreement{
			ID:         id,
			AssetID:    req.AssetID,
			Creator:    call.Caller,
			Rate:       req.Rate,
			Expiration: req.Expiration,
			Active:     true,
			Currency:   req.Currency,
			MinRate:    req.MinRate,
			MaxRate:    req.MaxRate,
		}); err != nil {
			return err
		}
		p.NextID++
		return tx.PutParams(p)
	})
	if err != nil {
		return 0, err
	}
	l.metrics.created.Inc()
	l.logger.Info("royalty created", "id", id, "asset", req.AssetID, "creator", string(call.Caller))
	return id, nil
}

// UpdateRoyalty amends the rate and expiration of an agreement and replaces
// its audit record. Only the creator may update.
func (l *Ledger) UpdateRoyalty(call Call, id, rate, expiration uint64) error {
	err := l.mutate("update-royalty", call, func(tx StoreTx) error {
		a, err := creatorAgreement(tx, call, id)
		if err != nil {
			return err
		}
		p, err := tx.Params()
		if err != nil {
			return err
		}
		if !p.RateInBand(rate) {
			return fmt.Errorf("%w: %d not in [%d, %d]", ErrInvalidRate, rate, p.MinRate, p.MaxRate)
		}
		if expiration < call.Height {
			return fmt.Errorf("%w: %d below height %d", ErrInvalidExpiration, expiration, call.Height)
		}

		a.Rate = rate
		a.Expiration = expiration
		if err := tx.PutAgreement(a); err != nil {
			return err
		}
		return tx.PutUpdate(id, &UpdateRecord{
			Rate:       rate,
			Expiration: expiration,
			Height:     call.Height,
			Updater:    call.Caller,
		})
	})
	if err != nil {
		return err
	}
	l.metrics.updated.Inc()
	return nil
}

// RoyaltyCount returns the number of agreements ever created.
func (l *Ledger) RoyaltyCount() (uint64, error) {
	p, err := l.Params()
	if err != nil {
		return 0, err
	}
	return p.NextID, nil
}

// Agreement returns the agreement with the given id.
func (l *Ledger) Agreement(id uint64) (*Agreement, error) {
	var a *Agreement
	err := l.store.View(func(tx StoreTx) error {
		var err error
		a, err = tx.Agreement(id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return a, nil
}

// creatorAgreement loads agreement id and checks that the caller created it.
func creatorAgreement(tx StoreTx, call Call, id uint64) (*Agreement, error) {
	a, err := tx.Agreement(id)
	if err != nil {
		return nil, err
	}
	if a.Creator != call.Caller {
		return nil, fmt.Errorf("%w: %s is not the creator of agreement %d", ErrNotAuthorized, call.Caller, id)
	}
	return a, nil
}
