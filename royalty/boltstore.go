package royalty

import (
	"bytes"
	"encoding/binary"
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"

	"go.etcd.io/bbolt"
)

var (
	bucketParams     = []byte("params")
	bucketAgreements = []byte("agreements")
	bucketRecipients = []byte("recipients")
	bucketTiers      = []byte("tiers")
	bucketUpdates    = []byte("updates")

	paramsKey = []byte("global")
)

// BoltStore persists ledger state in a bbolt database.
type BoltStore struct {
	db *bbolt.DB
}

// Compile-time interface check.
var _ Store = (*BoltStore)(nil)

// OpenBoltStore opens or creates the database at dbPath. A new database is
// seeded with params; an existing one keeps its stored parameters.
// The parent directory is created if it does not exist.
func OpenBoltStore(dbPath string, params Params) (*BoltStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0700); err != nil {
		return nil, fmt.Errorf("royalty: create directory: %w", err)
	}
	db, err := bbolt.Open(dbPath, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("royalty: open bolt db: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, name := range [][]byte{bucketParams, bucketAgreements, bucketRecipients, bucketTiers, bucketUpdates} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return fmt.Errorf("boltstore: create bucket %q: %w", name, err)
			}
		}
		pb := tx.Bucket(bucketParams)
		if pb.Get(paramsKey) != nil {
			return nil
		}
		data, err := encodeGob(&params)
		if err != nil {
			return fmt.Errorf("boltstore: encode params: %w", err)
		}
		return pb.Put(paramsKey, data)
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("royalty: init buckets: %w", err)
	}

	return &BoltStore{db: db}, nil
}

// Close closes the underlying database.
func (s *BoltStore) Close() error { return s.db.Close() }

// View runs fn in a bbolt read transaction.
func (s *BoltStore) View(fn func(tx StoreTx) error) error {
	return s.db.View(func(btx *bbolt.Tx) error {
		return fn(&boltTx{tx: btx})
	})
}

// Update runs fn in a bbolt read-write transaction; bbolt rolls back all
// writes if fn returns an error.
func (s *BoltStore) Update(fn func(tx StoreTx) error) error {
	return s.db.Update(func(btx *bbolt.Tx) error {
		return fn(&boltTx{tx: btx})
	})
}

// idKey encodes an id as an 8-byte big-endian key for sorted storage.
func idKey(id uint64) []byte {
	k := make([]byte, 8)
	binary.BigEndian.PutUint64(k, id)
	return k
}

// slotKey encodes a SlotKey as agreement id followed by index, both
// big-endian, so all slots of one agreement share the idKey prefix.
func slotKey(key SlotKey) []byte {
	k := make([]byte, 16)
	binary.BigEndian.PutUint64(k[0:8], key.AgreementID)
	binary.BigEndian.PutUint64(k[8:16], key.Index)
	return k
}

// encodeGob serializes a value using gob encoding.
func encodeGob(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// decodeGob deserializes gob-encoded data into a value.
func decodeGob(data []byte, v interface{}) error {
	return gob.NewDecoder(bytes.NewReader(data)).Decode(v)
}

type boltTx struct {
	tx *bbolt.Tx
}

func (t *boltTx) writable() error {
	if !t.tx.Writable() {
		return ErrReadOnlyTx
	}
	return nil
}

func (t *boltTx) get(bucket, key []byte, v interface{}, what string) error {
	data := t.tx.Bucket(bucket).Get(key)
	if data == nil {
		return fmt.Errorf("%w: %s", ErrNotFound, what)
	}
	if err := decodeGob(data, v); err != nil {
		return fmt.Errorf("boltstore: decode %s: %w", what, err)
	}
	return nil
}

func (t *boltTx) put(bucket, key []byte, v interface{}, what string) error {
	if err := t.writable(); err != nil {
		return err
	}
	data, err := encodeGob(v)
	if err != nil {
		return fmt.Errorf("boltstore: encode %s: %w", what, err)
	}
	if err := t.tx.Bucket(bucket).Put(key, data); err != nil {
		return fmt.Errorf("boltstore: put %s: %w", what, err)
	}
	return nil
}

func (t *boltTx) Params() (*Params, error) {
	var p Params
	if err := t.get(bucketParams, paramsKey, &p, "parameters"); err != nil {
		return nil, err
	}
	return &p, nil
}

func (t *boltTx) PutParams(p *Params) error {
	return t.put(bucketParams, paramsKey, p, "parameters")
}

func (t *boltTx) Agreement(id uint64) (*Agreement, error) {
	var a Agreement
	if err := t.get(bucketAgreements, idKey(id), &a, fmt.Sprintf("agreement %d", id)); err != nil {
		return nil, err
	}
	return &a, nil
}

func (t *boltTx) PutAgreement(a *Agreement) error {
	return t.put(bucketAgreements, idKey(a.ID), a, "agreement")
}

func (t *boltTx) Recipient(key SlotKey) (*Recipient, error) {
	var r Recipient
	what := fmt.Sprintf("recipient %d/%d", key.AgreementID, key.Index)
	if err := t.get(bucketRecipients, slotKey(key), &r, what); err != nil {
		return nil, err
	}
	return &r, nil
}

func (t *boltTx) PutRecipient(key SlotKey, r *Recipient) error {
	return t.put(bucketRecipients, slotKey(key), r, "recipient")
}

func (t *boltTx) Recipients(agreementID uint64) ([]RecipientSlot, error) {
	var slots []RecipientSlot
	err := t.scan(bucketRecipients, agreementID, func(index uint64, data []byte) error {
		var r Recipient
		if err := decodeGob(data, &r); err != nil {
			return fmt.Errorf("boltstore: decode recipient: %w", err)
		}
		slots = append(slots, RecipientSlot{Index: index, Recipient: r})
		return nil
	})
	return slots, err
}

func (t *boltTx) Tier(key SlotKey) (*Tier, error) {
	var tier Tier
	what := fmt.Sprintf("tier %d/%d", key.AgreementID, key.Index)
	if err := t.get(bucketTiers, slotKey(key), &tier, what); err != nil {
		return nil, err
	}
	return &tier, nil
}

func (t *boltTx) PutTier(key SlotKey, tier *Tier) error {
	return t.put(bucketTiers, slotKey(key), tier, "tier")
}

func (t *boltTx) Tiers(agreementID uint64) ([]TierSlot, error) {
	var tiers []TierSlot
	err := t.scan(bucketTiers, agreementID, func(index uint64, data []byte) error {
		var tier Tier
		if err := decodeGob(data, &tier); err != nil {
			return fmt.Errorf("boltstore: decode tier: %w", err)
		}
		tiers = append(tiers, TierSlot{Index: index, Tier: tier})
		return nil
	})
	return tiers, err
}

// scan visits every slot of agreementID in index order.
func (t *boltTx) scan(bucket []byte, agreementID uint64, fn func(index uint64, data []byte) error) error {
	prefix := idKey(agreementID)
	c := t.tx.Bucket(bucket).Cursor()
	for k, v := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, v = c.Next() {
		if len(k) != 16 {
			continue
		}
		if err := fn(binary.BigEndian.Uint64(k[8:16]), v); err != nil {
			return err
		}
	}
	return nil
}

func (t *boltTx) Update(agreementID uint64) (*UpdateRecord, error) {
	var u UpdateRecord
	what := fmt.Sprintf("update record for agreement %d", agreementID)
	if err := t.get(bucketUpdates, idKey(agreementID), &u, what); err != nil {
		return nil, err
	}
	return &u, nil
}

func (t *boltTx) PutUpdate(agreementID uint64, u *UpdateRecord) error {
	return t.put(bucketUpdates, idKey(agreementID), u, "update record")
}
