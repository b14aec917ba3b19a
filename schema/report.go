package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// RawReport is one assembly report exactly as the metadata API returned it.
// Every nested path is optional; lookups on missing paths yield NoData.
type RawReport map[string]any

// Path walks nested objects by key and returns the leaf value.
func (r RawReport) Path(keys ...string) Value {
	var cur any = map[string]any(r)
	for _, k := range keys {
		obj, ok := cur.(map[string]any)
		if !ok {
			return NoData
		}
		cur, ok = obj[k]
		if !ok {
			return NoData
		}
	}
	return ValueOf(cur)
}

// Object returns the nested object at the given path, if there is one.
func (r RawReport) Object(keys ...string) (map[string]any, bool) {
	v := r.Path(keys...)
	obj, ok := v.Raw().(map[string]any)
	return obj, ok
}

// LookupResult is the outcome of a single metadata lookup.
type LookupResult struct {
	Success    bool        `json:"success"`
	StatusText string      `json:"status_text,omitempty"`
	TotalCount int         `json:"total_count"`
	Reports    []RawReport `json:"reports"`
}

// lookupPayload mirrors the dataset_report response body.
type lookupPayload struct {
	Reports    []RawReport `json:"reports"`
	TotalCount Value       `json:"total_count"`
}

// DecodeLookupResult parses a successful dataset_report body.
// Numbers are kept as json.Number so large lengths survive intact.
func DecodeLookupResult(data []byte) (LookupResult, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var payload lookupPayload
	if err := dec.Decode(&payload); err != nil {
		return LookupResult{}, fmt.Errorf("failed to decode dataset report: %w", err)
	}
	total := 0
	if n, ok := payload.TotalCount.Integer(); ok {
		total = int(n)
	}
	return LookupResult{
		Success:    true,
		TotalCount: total,
		Reports:    payload.Reports,
	}, nil
}
