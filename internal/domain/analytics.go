package domain

import (
	"bytes"
	"encoding/json"
	"math"
)

// CorrelationMatrix is a square correlation matrix over Assets.
// Undefined coefficients are NaN and encode as null.
type CorrelationMatrix struct {
	Assets []string
	Values [][]float64
}

// Get returns the coefficient for the pair (a, b).
func (m CorrelationMatrix) Get(a, b string) (float64, bool) {
	i, j := indexOf(m.Assets, a), indexOf(m.Assets, b)
	if i < 0 || j < 0 {
		return 0, false
	}
	return m.Values[i][j], true
}

// MarshalJSON encodes the matrix as {"assets": [...], "values": [[...]]}.
func (m CorrelationMatrix) MarshalJSON() ([]byte, error) {
	values := make([][]*float64, len(m.Values))
	for i, row := range m.Values {
		values[i] = make([]*float64, len(row))
		for j, v := range row {
			values[i][j] = nullable(v)
		}
	}
	return json.Marshal(struct {
		Assets []string     `json:"assets"`
		Values [][]*float64 `json:"values"`
	}{Assets: m.Assets, Values: values})
}

// VolatilityVector holds annualized volatility per asset.
type VolatilityVector struct {
	Assets []string
	Values []float64
}

// Get returns the volatility of asset.
func (v VolatilityVector) Get(asset string) (float64, bool) {
	i := indexOf(v.Assets, asset)
	if i < 0 {
		return 0, false
	}
	return v.Values[i], true
}

// MarshalJSON encodes the vector as an object keyed by asset, in asset order.
func (v VolatilityVector) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, asset := range v.Assets {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(asset)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(nullable(v.Values[i]))
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func nullable(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

func indexOf(items []string, s string) int {
	for i, item := range items {
		if item == s {
			return i
		}
	}
	return -1
}
