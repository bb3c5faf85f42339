package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
)

// Status is the recorded availability of a brand in a ZIP.
type Status string

const (
	StatusAvailable   Status = "available"
	StatusUnavailable Status = "unavailable"
)

// Table maps brand → ZIP → status. The zero value is not usable; call NewTable.
type Table map[Brand]map[string]Status

// NewTable returns a table with an empty entry for every brand.
func NewTable() Table {
	t := make(Table, len(Brands))
	for _, b := range Brands {
		t[b] = make(map[string]Status)
	}
	return t
}

// Set records status for (brand, zip), overwriting any earlier value.
func (t Table) Set(b Brand, zip string, s Status) {
	m, ok := t[b]
	if !ok {
		m = make(map[string]Status)
		t[b] = m
	}
	m[zip] = s
}

// Status returns the recorded status for (brand, zip).
func (t Table) Status(b Brand, zip string) (Status, bool) {
	s, ok := t[b][zip]
	return s, ok && s != ""
}

// ZIPs returns every ZIP recorded for any brand, sorted ascending.
func (t Table) ZIPs() []string {
	seen := make(map[string]struct{})
	for _, m := range t {
		for zip := range m {
			seen[zip] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for zip := range seen {
		out = append(out, zip)
	}
	sort.Strings(out)
	return out
}

// Len returns the number of (brand, zip) pairs.
func (t Table) Len() int {
	n := 0
	for _, m := range t {
		n += len(m)
	}
	return n
}

// MarshalTable serializes t as the availability artifact: one key per brand,
// sorted keys, two-space indent. Equal tables always produce equal bytes.
func MarshalTable(t Table) ([]byte, error) {
	out := NewTable()
	for b, m := range t {
		for zip, s := range m {
			out.Set(b, zip, s)
		}
	}
	data, err := json.MarshalIndent(map[Brand]map[string]Status(out), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal availability table: %w", err)
	}
	return data, nil
}

// UnmarshalTable parses an availability artifact. Brands missing from the
// document get empty entries.
func UnmarshalTable(data []byte) (Table, error) {
	var raw map[Brand]map[string]Status
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse availability table: %w", err)
	}
	t := NewTable()
	for b, m := range raw {
		for zip, s := range m {
			t.Set(b, zip, s)
		}
	}
	return t, nil
}

// Fingerprint is a stable content hash of an artifact, used to version caches.
func Fingerprint(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:8])
}
