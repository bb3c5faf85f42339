package domain

import (
	"sort"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPartitionBrand_Example(t *testing.T) {
	table := NewTable()
	table.Set(BrandHWC, "43201", StatusAvailable)
	table.Set(BrandHWC, "43085", StatusUnavailable)
	table.Set(BrandHWC, "43123", StatusAvailable)

	p := PartitionBrand(table, BrandHWC)
	assert.Equal(t, []string{"43123", "43201"}, p.Available)
	assert.Equal(t, []string{"43085"}, p.Unavailable)
}

func TestPartitionBrand_Empty(t *testing.T) {
	table := NewTable()

	p := PartitionBrand(table, BrandTCA)
	assert.NotNil(t, p.Available)
	assert.NotNil(t, p.Unavailable)
	assert.Empty(t, p.Available)
	assert.Empty(t, p.Unavailable)

	p = PartitionBrand(table, Brand("nope"))
	assert.Empty(t, p.Available)
	assert.Empty(t, p.Unavailable)
}

func TestPartitionBrand_DisjointAndComplete(t *testing.T) {
	table := NewTable()
	zips := []string{"43235", "05000", "43004", "10000", "43201", "43085", "43017", "43110"}
	for i, zip := range zips {
		s := StatusAvailable
		if i%3 == 0 {
			s = StatusUnavailable
		}
		table.Set(BrandMSQ, zip, s)
	}

	p := PartitionBrand(table, BrandMSQ)

	union := append(append([]string{}, p.Available...), p.Unavailable...)
	seen := make(map[string]bool)
	for _, zip := range union {
		require.False(t, seen[zip], "zip %s in both partitions", zip)
		seen[zip] = true
	}
	sort.Strings(union)
	want := append([]string{}, zips...)
	sort.Strings(want)
	assert.Equal(t, want, union)

	for _, part := range [][]string{p.Available, p.Unavailable} {
		for i := 1; i < len(part); i++ {
			prev, _ := strconv.Atoi(part[i-1])
			cur, _ := strconv.Atoi(part[i])
			assert.LessOrEqual(t, prev, cur)
		}
	}
}

func TestPartitionBrand_SkipsUnexpectedStatus(t *testing.T) {
	table := NewTable()
	table.Set(BrandMSE, "43201", Status("pending"))
	table.Set(BrandMSE, "43085", StatusAvailable)

	p := PartitionBrand(table, BrandMSE)
	assert.Equal(t, []string{"43085"}, p.Available)
	assert.Empty(t, p.Unavailable)
}

func TestSortZIPs(t *testing.T) {
	zips := []string{"43201", "abc", "05000", "43085", "5000", "10000"}
	SortZIPs(zips)
	assert.Equal(t, []string{"05000", "5000", "10000", "43085", "43201", "abc"}, zips)
}
