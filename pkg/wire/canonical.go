package wire

import (
	"bytes"
	"encoding/json"
	"sort"
	"strconv"
	"strings"

	"github.com/cockroachdb/apd/v3"
	"github.com/pkg/errors"
)

// Payload is an ordered field mapping whose serialization always lists
// keys in ascending lexical order with minimal separators. The node
// re-derives the exact same bytes to verify the user signature, so two
// logically equal payloads must serialize identically.
type Payload struct {
	keys   []string
	values map[string]interface{}
}

func NewPayload() *Payload {
	return &Payload{values: map[string]interface{}{}}
}

// BuildPayload canonicalizes an arbitrary field mapping, recursing into
// nested mappings with the same ordering rule.
func BuildPayload(fields map[string]interface{}) (*Payload, error) {
	p := NewPayload()

	for k, v := range fields {
		if err := p.Set(k, v); err != nil {
			return nil, err
		}
	}

	return p, nil
}

// Set adds a field, keeping the key set sorted. Keys are normalized by
// trimming surrounding whitespace; a post-normalization collision is
// rejected rather than silently overwritten.
func (p *Payload) Set(key string, value interface{}) error {
	k := strings.TrimSpace(key)
	if k == "" {
		return errors.Wrap(ErrMalformedField, "empty field name")
	}

	if _, ok := p.values[k]; ok {
		return errors.Wrapf(ErrMalformedField, "field %q collides after normalization", key)
	}

	v, err := normalize(value)
	if err != nil {
		return errors.Wrapf(err, "field %q", key)
	}

	i := sort.SearchStrings(p.keys, k)
	p.keys = append(p.keys, "")
	copy(p.keys[i+1:], p.keys[i:])
	p.keys[i] = k
	p.values[k] = v

	return nil
}

func (p *Payload) Get(key string) (interface{}, bool) {
	v, ok := p.values[key]
	return v, ok
}

func (p *Payload) Len() int {
	return len(p.keys)
}

// Bytes returns the canonical serialization used both as the signing
// pre-image and as the wire Data field.
func (p *Payload) Bytes() ([]byte, error) {
	buf := &bytes.Buffer{}
	if err := p.appendTo(buf); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

func (p *Payload) MarshalJSON() ([]byte, error) {
	return p.Bytes()
}

func (p *Payload) appendTo(buf *bytes.Buffer) error {
	buf.WriteByte('{')

	for i, k := range p.keys {
		if i > 0 {
			buf.WriteByte(',')
		}

		kb, err := json.Marshal(k)
		if err != nil {
			return errors.Wrap(err, "encoding field name")
		}

		buf.Write(kb)
		buf.WriteByte(':')

		if err := writeValue(buf, p.values[k]); err != nil {
			return errors.Wrapf(err, "field %q", k)
		}
	}

	buf.WriteByte('}')

	return nil
}

// normalize validates a field value, converting supported inputs to the
// small closed set of canonical value types.
func normalize(value interface{}) (interface{}, error) {
	switch v := value.(type) {
	case string, bool:
		return v, nil
	case int:
		return int64(v), nil
	case int32:
		return int64(v), nil
	case int64:
		return v, nil
	case uint:
		return int64(v), nil
	case uint32:
		return int64(v), nil
	case uint64:
		return int64(v), nil
	case *apd.Decimal:
		return &Decimal{*v}, nil
	case apd.Decimal:
		return &Decimal{v}, nil
	case Decimal:
		return &v, nil
	case *Decimal:
		return v, nil
	case *Payload:
		return v, nil
	case map[string]interface{}:
		return BuildPayload(v)
	case []interface{}:
		out := make([]interface{}, 0, len(v))
		for _, e := range v {
			n, err := normalize(e)
			if err != nil {
				return nil, err
			}
			out = append(out, n)
		}
		return out, nil
	case float32, float64:
		// binary floats format differently across platforms; amounts
		// must arrive as Decimal
		return nil, errors.Wrapf(ErrMalformedField, "float value %v not permitted", v)
	default:
		return nil, errors.Wrapf(ErrMalformedField, "unsupported value type %T", v)
	}
}

func writeValue(buf *bytes.Buffer, value interface{}) error {
	switch v := value.(type) {
	case string:
		b, err := json.Marshal(v)
		if err != nil {
			return err
		}
		buf.Write(b)
	case bool:
		buf.WriteString(strconv.FormatBool(v))
	case int64:
		buf.WriteString(strconv.FormatInt(v, 10))
	case *Decimal:
		buf.WriteString(v.Text('f'))
	case *Payload:
		return v.appendTo(buf)
	case []interface{}:
		buf.WriteByte('[')
		for i, e := range v {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeValue(buf, e); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	default:
		return errors.Wrapf(ErrMalformedField, "unsupported value type %T", v)
	}

	return nil
}
