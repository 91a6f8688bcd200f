package product

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/example/varsha-shop/internal/apperror"
	"gopkg.in/yaml.v3"
)

var ErrInvalidPrice = apperror.Validation("price must be a non-negative number")

// OptionalPrice decodes a price field that may be a number, a numeric
// string, an empty string or null. Set records whether the key was present
// at all; Value is nil for "price on request".
type OptionalPrice struct {
	Set   bool
	Value *float64
}

// PriceOf returns a present, concrete price.
func PriceOf(v float64) OptionalPrice {
	return OptionalPrice{Set: true, Value: &v}
}

// OnRequest returns a present price that clears any existing one.
func OnRequest() OptionalPrice {
	return OptionalPrice{Set: true}
}

func (p *OptionalPrice) UnmarshalJSON(data []byte) error {
	p.Set = true
	p.Value = nil

	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}

	raw := string(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return ErrInvalidPrice
		}
		raw = strings.TrimSpace(s)
		if raw == "" {
			return nil
		}
	}

	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return ErrInvalidPrice
	}
	p.Value = &v
	return nil
}

func (p OptionalPrice) MarshalJSON() ([]byte, error) {
	if p.Value == nil {
		return []byte("null"), nil
	}
	return json.Marshal(*p.Value)
}

// UnmarshalYAML accepts the same forms as UnmarshalJSON so seed files can
// be written in either format.
func (p *OptionalPrice) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return ErrInvalidPrice
	}
	if node.Tag == "!!null" {
		p.Set = true
		p.Value = nil
		return nil
	}
	data, err := json.Marshal(node.Value)
	if err != nil {
		return ErrInvalidPrice
	}
	return p.UnmarshalJSON(data)
}
