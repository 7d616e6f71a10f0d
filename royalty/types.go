package royalty

// BasisPoints is the rate denominator: 10000 basis points equal 100%.
const BasisPoints = 10000

// Principal identifies a caller, creator, recipient or authority.
type Principal string

// Currency is the settlement currency of an agreement.
type Currency string

const (
	CurrencySTX  Currency = "STX"
	CurrencyCURA Currency = "CURA"
)

// Valid reports whether c is one of the supported currencies.
func (c Currency) Valid() bool {
	return c == CurrencySTX || c == CurrencyCURA
}

// Call carries the per-call inputs supplied by the host: who is calling and
// at which block height.
type Call struct {
	Caller Principal
	Height uint64
}

// Agreement is one royalty configuration tied to an asset and its creator.
type Agreement struct {
	ID         uint64
	AssetID    uint64
	Creator    Principal
	Rate       uint64 // basis points
	Expiration uint64 // block height; distribution requires Height < Expiration
	Active     bool
	Currency   Currency
	MinRate    uint64 // per-agreement band, stored only
	MaxRate    uint64
}

// SlotKey addresses a recipient or tier record under an agreement.
type SlotKey struct {
	AgreementID uint64
	Index       uint64
}

// Recipient is a fractional payout recipient stored in a slot.
type Recipient struct {
	Recipient  Principal
	Percentage uint64 // basis points, (0, 10000]
}

// Tier is a threshold-based rate stored in a tier slot.
type Tier struct {
	Threshold uint64
	Rate      uint64
}

// UpdateRecord is the most recent amendment to an agreement.
type UpdateRecord struct {
	Rate       uint64
	Expiration uint64
	Height     uint64
	Updater    Principal
}

// Transfer is the payout instruction emitted by a distribution. The core never
// moves funds; the host applies it through a TransferSink.
type Transfer struct {
	AgreementID uint64
	Amount      uint64
	From        Principal
	To          Principal
}

// TransferSink executes emitted transfer instructions.
type TransferSink interface {
	Submit(t Transfer) error
}

// CreateRequest holds the arguments of CreateRoyalty.
type CreateRequest struct {
	AssetID    uint64
	Rate       uint64
	Expiration uint64
	Currency   Currency
	MinRate    uint64
	MaxRate    uint64
}
