package wire

import (
	"bytes"
	"encoding/json"
	"strconv"

	"github.com/pkg/errors"
)

// Message types understood by the node. The wire protocol carries no
// per-request correlation identifier; responses are matched on Type
// alone.
const (
	TypeSubscribeMarketsByFilter = "SubscribeMarketsByFilter"
	TypeSubscribeBalance         = "SubscribeBalance"
	TypeCurrencyIssuance         = "CurrencyIssuance"
	TypeOrderAlteration          = "OrderAlteration"
	TypeTransfer                 = "Transfer"
	TypeGetBurnValidations       = "GetBurnValidations"
)

// Envelope is the JSON frame exchanged with the node in both
// directions. State is only ever set by the node.
type Envelope struct {
	Type          string          `json:"Type"`
	Data          json.RawMessage `json:"Data,omitempty"`
	SignatureUser string          `json:"SignatureUser,omitempty"`
	UserID        int64           `json:"UserID,omitempty"`
	NodeID        int64           `json:"NodeID,omitempty"`
	Nonce         int64           `json:"Nonce,omitempty"`
	State         string          `json:"State,omitempty"`
}

// NewEnvelope builds a request frame around an already-canonicalized
// payload.
func NewEnvelope(typ string, data *Payload) (*Envelope, error) {
	env := &Envelope{Type: typ}

	if data != nil {
		b, err := data.Bytes()
		if err != nil {
			return nil, errors.Wrap(err, "serializing payload")
		}
		env.Data = b
	}

	return env, nil
}

// FlexInt tolerates the node emitting numeric fields as either JSON
// numbers or quoted strings.
type FlexInt int64

func (f *FlexInt) UnmarshalJSON(b []byte) error {
	b = bytes.Trim(b, `"`)

	v, err := strconv.ParseInt(string(b), 10, 64)
	if err != nil {
		return errors.Wrap(err, "parsing numeric field")
	}

	*f = FlexInt(v)

	return nil
}

func (f FlexInt) Int64() int64 {
	return int64(f)
}

// BurnValidation is one validator's attestation that an outstanding
// withdrawal is authorized, delivered via GetBurnValidations.
type BurnValidation struct {
	Cur                FlexInt  `json:"Cur"`
	ValidatorID        FlexInt  `json:"ValidatorID"`
	Amount             *Decimal `json:"Amount"`
	Nonce              FlexInt  `json:"Nonce"`
	TXID               string   `json:"TXID"`
	SignatureValidator string   `json:"SignatureValidator"`
}

// DecodeBurnValidations unpacks the Data field of a GetBurnValidations
// response.
func DecodeBurnValidations(data json.RawMessage) ([]BurnValidation, error) {
	var vs []BurnValidation
	if err := json.Unmarshal(data, &vs); err != nil {
		return nil, errors.Wrap(err, "decoding burn validations")
	}

	return vs, nil
}
