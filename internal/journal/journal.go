package journal

import (
	"fmt"
	"time"

	"github.com/cockroachdb/pebble"
	"github.com/cockroachdb/pebble/vfs"
	"github.com/pkg/errors"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/tcfw/bbnode/pkg/withdraw"
)

var (
	ErrAlreadySubmitted = errors.New("withdrawal already submitted on-chain")
)

// Journal records which withdrawals have been settled on-chain so a
// manual retry after a crash or error cannot double-submit.
type Journal struct {
	db *pebble.DB
}

// Submission is the stored record for one settled withdrawal.
type Submission struct {
	TxHash      string    `msgpack:"h"`
	SubmittedAt time.Time `msgpack:"t"`
}

func Open(path string) (*Journal, error) {
	db, err := pebble.Open(path, &pebble.Options{})
	if err != nil {
		return nil, errors.Wrap(err, "opening journal store")
	}

	return &Journal{db: db}, nil
}

// OpenMem backs the journal with an in-memory filesystem; state is
// lost on close.
func OpenMem() (*Journal, error) {
	db, err := pebble.Open("", &pebble.Options{FS: vfs.NewMem()})
	if err != nil {
		return nil, errors.Wrap(err, "opening in-memory journal")
	}

	return &Journal{db: db}, nil
}

func (j *Journal) Close() error {
	return j.db.Close()
}

func storeKey(k withdraw.Key) []byte {
	return []byte(fmt.Sprintf("wd/%d/%d/%s", k.Currency, k.Nonce, k.TXID))
}

// Submission returns the stored record for k, or nil if the withdrawal
// has not been settled.
func (j *Journal) Submission(k withdraw.Key) (*Submission, error) {
	v, closer, err := j.db.Get(storeKey(k))
	if err == pebble.ErrNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "reading journal")
	}
	defer closer.Close()

	s := &Submission{}
	if err := msgpack.Unmarshal(v, s); err != nil {
		return nil, errors.Wrap(err, "decoding journal record")
	}

	return s, nil
}

// Submitted reports whether k already settled.
func (j *Journal) Submitted(k withdraw.Key) (bool, error) {
	s, err := j.Submission(k)
	if err != nil {
		return false, err
	}

	return s != nil, nil
}

// Record marks k as settled. Recording an already-settled withdrawal
// fails with ErrAlreadySubmitted.
func (j *Journal) Record(k withdraw.Key, txHash string) error {
	existing, err := j.Submission(k)
	if err != nil {
		return err
	}
	if existing != nil {
		return errors.Wrapf(ErrAlreadySubmitted, "tx %s", existing.TxHash)
	}

	b, err := msgpack.Marshal(&Submission{TxHash: txHash, SubmittedAt: time.Now().UTC()})
	if err != nil {
		return errors.Wrap(err, "encoding journal record")
	}

	if err := j.db.Set(storeKey(k), b, pebble.Sync); err != nil {
		return errors.Wrap(err, "writing journal")
	}

	return nil
}
