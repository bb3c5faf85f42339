package domain

import (
	"slices"
	"time"
)

// Record is one (brand, zip) availability fact as published downstream.
type Record struct {
	Brand       Brand     `json:"brand"`
	ZIP         string    `json:"zip"`
	Status      Status    `json:"status"`
	PublishedAt time.Time `json:"-"`
}

// Key is the message key for the record.
func (r Record) Key() string { return string(r.Brand) + ":" + r.ZIP }

// Records flattens the table into records ordered by brand, then ZIP.
func Records(t Table, at time.Time) []Record {
	out := make([]Record, 0, t.Len())
	for _, b := range Brands {
		zips := make([]string, 0, len(t[b]))
		for zip := range t[b] {
			zips = append(zips, zip)
		}
		slices.Sort(zips)
		for _, zip := range zips {
			out = append(out, Record{Brand: b, ZIP: zip, Status: t[b][zip], PublishedAt: at})
		}
	}
	return out
}
