package payout

import (
	"encoding/binary"
	"fmt"
	"sync"

	"github.com/bsv-blockchain/go-sdk/script"
	"github.com/bsv-blockchain/go-sdk/transaction"
	"github.com/bsv-blockchain/go-sdk/transaction/template/p2pkh"

	"github.com/bitfsorg/libroyalty-go/royalty"
)

const (
	// DustLimit is the minimum P2PKH output value in satoshis.
	DustLimit = uint64(546)

	// MemoFlag prefixes the OP_RETURN memo of every payout transaction.
	MemoFlag = "royalty"
)

// Payout is an unsigned payout transaction built for one transfer. The host
// funds, signs and broadcasts it.
type Payout struct {
	Transfer royalty.Transfer
	Tx       *transaction.Transaction
}

// TxBuilder is a TransferSink that turns each transfer into an unsigned BSV
// transaction paying the recipient, queued until the host drains it.
// Principals must be base58 P2PKH addresses.
type TxBuilder struct {
	mu      sync.Mutex
	pending []*Payout
}

// Compile-time interface check.
var _ royalty.TransferSink = (*TxBuilder)(nil)

// NewTxBuilder creates an empty builder.
func NewTxBuilder() *TxBuilder {
	return &TxBuilder{}
}

// Submit builds the payout transaction for t and queues it.
func (b *TxBuilder) Submit(t royalty.Transfer) error {
	tx, err := BuildPayoutTx(t)
	if err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.pending = append(b.pending, &Payout{Transfer: t, Tx: tx})
	return nil
}

// Drain returns the queued payouts and empties the queue.
func (b *TxBuilder) Drain() []*Payout {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := b.pending
	b.pending = nil
	return out
}

// ValidateAddress checks that p is a P2PKH address.
func ValidateAddress(p royalty.Principal) error {
	if _, err := script.NewAddressFromString(string(p)); err != nil {
		return fmt.Errorf("%w: %q: %w", ErrInvalidAddress, p, err)
	}
	return nil
}

// BuildPayoutTx creates an unsigned transaction with two outputs:
//
//	output 0: P2PKH paying t.Amount to t.To
//	output 1: OP_FALSE OP_RETURN "royalty" <agreement_id_8> <from>
func BuildPayoutTx(t royalty.Transfer) (*transaction.Transaction, error) {
	if t.Amount < DustLimit {
		return nil, fmt.Errorf("%w: %d < %d", ErrDustPayout, t.Amount, DustLimit)
	}
	addr, err := script.NewAddressFromString(string(t.To))
	if err != nil {
		return nil, fmt.Errorf("%w: recipient %q: %w", ErrInvalidAddress, t.To, err)
	}
	lockScript, err := p2pkh.Lock(addr)
	if err != nil {
		return nil, fmt.Errorf("%w: P2PKH lock: %w", ErrScriptBuild, err)
	}
	memo, err := BuildMemoScript(t)
	if err != nil {
		return nil, err
	}

	tx := transaction.NewTransaction()
	tx.AddOutput(&transaction.TransactionOutput{
		Satoshis:      t.Amount,
		LockingScript: lockScript,
	})
	tx.AddOutput(&transaction.TransactionOutput{
		Satoshis:      0,
		LockingScript: memo,
	})
	return tx, nil
}

// BuildMemoScript creates the OP_RETURN memo identifying the agreement and
// payer of a transfer.
func BuildMemoScript(t royalty.Transfer) (*script.Script, error) {
	id := make([]byte, 8)
	binary.BigEndian.PutUint64(id, t.AgreementID)

	s := &script.Script{}
	*s = append(*s, script.Op0, script.OpRETURN)
	for _, push := range [][]byte{[]byte(MemoFlag), id, []byte(t.From)} {
		if err := s.AppendPushData(push); err != nil {
			return nil, fmt.Errorf("%w: OP_RETURN push data: %w", ErrScriptBuild, err)
		}
	}
	return s, nil
}
