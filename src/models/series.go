package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// MonthKey is the reserved key of a MonthlySeriesPoint. Every other key is a category.
const MonthKey = "month"

// CategoryValue is one category's value inside a MonthlySeriesPoint.
type CategoryValue struct {
	Category string
	Value    float64
}

// MonthlySeriesPoint maps a month to a dynamic set of per-category values.
// Values keep the order in which the categories appear in the payload.
type MonthlySeriesPoint struct {
	Month  string
	Values []CategoryValue
}

// GrowthBreakdown holds one monthly series per stock type (EQUITY, ETF).
type GrowthBreakdown map[string][]MonthlySeriesPoint

// UnmarshalJSON decodes an object such as {"month":"Jan-24","AAPL":0.1,"MSFT":null}
// keeping key order. Null values decode as 0.
func (p *MonthlySeriesPoint) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("monthly series point: expected object, got %v", tok)
	}

	point := MonthlySeriesPoint{}
	seen := make(map[string]int)
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("monthly series point: unexpected key %v", keyTok)
		}

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("monthly series point: key %q: %w", key, err)
		}

		if key == MonthKey {
			if err := json.Unmarshal(raw, &point.Month); err != nil {
				return fmt.Errorf("monthly series point: month: %w", err)
			}
			continue
		}

		value, err := decodeNullableFloat(raw)
		if err != nil {
			return fmt.Errorf("monthly series point: key %q: %w", key, err)
		}
		// A repeated key overwrites in place, the way a JSON object would.
		if idx, dup := seen[key]; dup {
			point.Values[idx].Value = value
			continue
		}
		seen[key] = len(point.Values)
		point.Values = append(point.Values, CategoryValue{Category: key, Value: value})
	}

	if _, err := dec.Token(); err != nil {
		return err
	}
	*p = point
	return nil
}

// MarshalJSON writes the month first, then the categories in order.
func (p MonthlySeriesPoint) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	month, err := json.Marshal(p.Month)
	if err != nil {
		return nil, err
	}
	buf.WriteString(`"` + MonthKey + `":`)
	buf.Write(month)
	for _, v := range p.Values {
		key, err := json.Marshal(v.Category)
		if err != nil {
			return nil, err
		}
		buf.WriteByte(',')
		buf.Write(key)
		buf.WriteByte(':')
		buf.WriteString(strconv.FormatFloat(v.Value, 'g', -1, 64))
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Get returns the value for a category and whether it was present.
func (p MonthlySeriesPoint) Get(category string) (float64, bool) {
	for _, v := range p.Values {
		if v.Category == category {
			return v.Value, true
		}
	}
	return 0, false
}

func decodeNullableFloat(raw json.RawMessage) (float64, error) {
	if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return 0, nil
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return 0, err
	}
	return n.Float64()
}
