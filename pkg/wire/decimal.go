package wire

import (
	"bytes"

	"github.com/cockroachdb/apd/v3"
	"github.com/pkg/errors"
)

// Decimal carries exchange amounts with exact decimal semantics. Its
// JSON form is always a plain-notation number so the node derives the
// same bytes the signature was computed over.
type Decimal struct {
	apd.Decimal
}

func NewDecimal(s string) (*Decimal, error) {
	v, _, err := apd.NewFromString(s)
	if err != nil {
		return nil, errors.Wrap(err, "parsing decimal")
	}

	return &Decimal{*v}, nil
}

func MustDecimal(s string) *Decimal {
	d, err := NewDecimal(s)
	if err != nil {
		panic(err)
	}

	return d
}

func (d *Decimal) MarshalJSON() ([]byte, error) {
	return []byte(d.Text('f')), nil
}

func (d *Decimal) UnmarshalJSON(b []byte) error {
	b = bytes.Trim(b, `"`)

	v, _, err := apd.NewFromString(string(b))
	if err != nil {
		return errors.Wrap(err, "parsing decimal")
	}

	d.Decimal = *v

	return nil
}
