package domain

import (
	"slices"
	"strconv"
	"strings"
)

// Partition splits a brand's ZIPs by status.
type Partition struct {
	Available   []string `json:"available"`
	Unavailable []string `json:"unavailable"`
}

// PartitionBrand returns the brand's available and unavailable ZIPs, each
// sorted by numeric value. Unknown brands and brands with no entries yield
// two empty lists. Statuses other than available/unavailable are skipped.
func PartitionBrand(t Table, b Brand) Partition {
	p := Partition{Available: []string{}, Unavailable: []string{}}
	for zip, s := range t[b] {
		switch s {
		case StatusAvailable:
			p.Available = append(p.Available, zip)
		case StatusUnavailable:
			p.Unavailable = append(p.Unavailable, zip)
		}
	}
	SortZIPs(p.Available)
	SortZIPs(p.Unavailable)
	return p
}

// SortZIPs sorts ZIP codes by numeric value. Non-numeric values sort after
// numeric ones; ties fall back to the string so the order is total.
func SortZIPs(zips []string) {
	slices.SortFunc(zips, compareZIP)
}

func compareZIP(a, b string) int {
	na, errA := strconv.Atoi(a)
	nb, errB := strconv.Atoi(b)
	switch {
	case errA == nil && errB == nil && na != nb:
		if na < nb {
			return -1
		}
		return 1
	case errA == nil && errB != nil:
		return -1
	case errA != nil && errB == nil:
		return 1
	}
	return strings.Compare(a, b)
}
