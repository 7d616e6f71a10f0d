package royalty

import "errors"

var (
	// ErrNotAuthorized indicates the caller may not perform the operation.
	ErrNotAuthorized = errors.New("royalty: not authorized")

	// ErrAuthorityNotVerified indicates no global authority has been set.
	ErrAuthorityNotVerified = errors.New("royalty: authority not verified")

	// ErrAlreadySet indicates the authority was already initialized.
	ErrAlreadySet = errors.New("royalty: authority already set")

	// ErrInvalidAssetID indicates a zero asset id.
	ErrInvalidAssetID = errors.New("royalty: invalid asset id")

	// ErrInvalidRate indicates a rate outside the global rate band.
	ErrInvalidRate = errors.New("royalty: invalid royalty rate")

	// ErrInvalidRateBound indicates a min rate at or above the max rate.
	ErrInvalidRateBound = errors.New("royalty: invalid rate bound")

	// ErrInvalidMaxRate indicates a max rate at or below the min rate, or
	// above 10000 basis points.
	ErrInvalidMaxRate = errors.New("royalty: invalid max rate")

	// ErrInvalidExpiration indicates an expiration below the current height.
	ErrInvalidExpiration = errors.New("royalty: invalid expiration")

	// ErrInvalidCurrency indicates an unsupported currency.
	ErrInvalidCurrency = errors.New("royalty: invalid currency")

	// ErrInvalidRecipient indicates the creator tried to name itself as recipient.
	ErrInvalidRecipient = errors.New("royalty: invalid recipient")

	// ErrInvalidPercentage indicates a percentage outside (0, 10000].
	ErrInvalidPercentage = errors.New("royalty: invalid percentage")

	// ErrInvalidTier indicates a zero tier index.
	ErrInvalidTier = errors.New("royalty: invalid tier")

	// ErrInvalidThreshold indicates a zero tier threshold.
	ErrInvalidThreshold = errors.New("royalty: invalid threshold")

	// ErrInvalidSaleAmount indicates a zero sale amount.
	ErrInvalidSaleAmount = errors.New("royalty: invalid sale amount")

	// ErrInvalidPrincipal indicates an empty identity where one is required.
	ErrInvalidPrincipal = errors.New("royalty: invalid principal")

	// ErrInvalidPaymentAsset indicates an empty payment asset reference.
	ErrInvalidPaymentAsset = errors.New("royalty: invalid payment asset")

	// ErrNotFound indicates the agreement (or one of its records) does not exist.
	ErrNotFound = errors.New("royalty: not found")

	// ErrCapacityExceeded indicates the global agreement cap was reached.
	ErrCapacityExceeded = errors.New("royalty: max royalties exceeded")

	// ErrExpired indicates distribution at or past the agreement's expiration.
	ErrExpired = errors.New("royalty: royalty expired")

	// ErrPayoutOverflow indicates a payout that does not fit in 64 bits.
	ErrPayoutOverflow = errors.New("royalty: payout overflow")

	// ErrNilParam indicates a required parameter is nil.
	ErrNilParam = errors.New("royalty: required parameter is nil")
)

// Kind classifies ledger errors.
type Kind int

const (
	KindUnknown Kind = iota
	KindNotAuthorized
	KindAuthorityNotVerified
	KindAlreadySet
	KindInvalidAssetID
	KindInvalidRate
	KindInvalidRateBound
	KindInvalidMaxRate
	KindInvalidExpiration
	KindInvalidCurrency
	KindInvalidRecipient
	KindInvalidPercentage
	KindInvalidTier
	KindInvalidThreshold
	KindInvalidSaleAmount
	KindInvalidPrincipal
	KindInvalidPaymentAsset
	KindNotFound
	KindCapacityExceeded
	KindExpired
	KindPayoutOverflow
)

type kindInfo struct {
	err  error
	name string
	code uint32
}

// Codes follow the numeric error codes of the on-chain royalty contract.
var kinds = map[Kind]kindInfo{
	KindNotAuthorized:        {ErrNotAuthorized, "not-authorized", 100},
	KindInvalidAssetID:       {ErrInvalidAssetID, "invalid-asset-id", 101},
	KindInvalidRate:          {ErrInvalidRate, "invalid-rate", 102},
	KindInvalidSaleAmount:    {ErrInvalidSaleAmount, "invalid-sale-amount", 103},
	KindInvalidPrincipal:     {ErrInvalidPrincipal, "invalid-principal", 104},
	KindNotFound:             {ErrNotFound, "not-found", 105},
	KindInvalidRecipient:     {ErrInvalidRecipient, "invalid-recipient", 106},
	KindInvalidPercentage:    {ErrInvalidPercentage, "invalid-percentage", 107},
	KindInvalidPaymentAsset:  {ErrInvalidPaymentAsset, "invalid-payment-asset", 108},
	KindInvalidExpiration:    {ErrInvalidExpiration, "invalid-expiration", 109},
	KindExpired:              {ErrExpired, "expired", 110},
	KindAlreadySet:           {ErrAlreadySet, "already-set", 111},
	KindAuthorityNotVerified: {ErrAuthorityNotVerified, "authority-not-verified", 112},
	KindInvalidRateBound:     {ErrInvalidRateBound, "invalid-rate-bound", 113},
	KindInvalidMaxRate:       {ErrInvalidMaxRate, "invalid-max-rate", 114},
	KindPayoutOverflow:       {ErrPayoutOverflow, "payout-overflow", 115},
	KindInvalidCurrency:      {ErrInvalidCurrency, "invalid-currency", 116},
	KindCapacityExceeded:     {ErrCapacityExceeded, "capacity-exceeded", 118},
	KindInvalidTier:          {ErrInvalidTier, "invalid-tier", 119},
	KindInvalidThreshold:     {ErrInvalidThreshold, "invalid-threshold", 120},
}

// KindOf returns the kind of err, or KindUnknown for store and sink failures.
func KindOf(err error) Kind {
	if err == nil {
		return KindUnknown
	}
	for k, info := range kinds {
		if errors.Is(err, info.err) {
			return k
		}
	}
	return KindUnknown
}

// Code returns the numeric contract error code for k, or 0 if k is unknown.
func (k Kind) Code() uint32 {
	return kinds[k].code
}

// String returns a short label for k, suitable for metrics.
func (k Kind) String() string {
	if info, ok := kinds[k]; ok {
		return info.name
	}
	return "unknown"
}
