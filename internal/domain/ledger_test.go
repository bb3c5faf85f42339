package domain

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testZIPColumbus     = "43201"
	testZIPWorthington  = "43085"
	exampleLedger       = "43201: Columbus\nHWC - Available\nMSE - Unavailable\n43085: Worthington\nHWC - Unavailable\n"
	exampleLedgerOutput = `{
  "hwc": {
    "43085": "unavailable",
    "43201": "available"
  },
  "mse": {
    "43201": "unavailable"
  },
  "msq": {},
  "tca": {}
}`
)

func scan(t *testing.T, ledger string) Extraction {
	t.Helper()
	ext, err := ScanLedger(strings.NewReader(ledger))
	require.NoError(t, err)
	return ext
}

func TestScanLedger_Example(t *testing.T) {
	ext := scan(t, exampleLedger)

	want := Table{
		BrandHWC: {testZIPColumbus: StatusAvailable, testZIPWorthington: StatusUnavailable},
		BrandMSE: {testZIPColumbus: StatusUnavailable},
		BrandMSQ: {},
		BrandTCA: {},
	}
	if diff := cmp.Diff(want, ext.Table); diff != "" {
		t.Errorf("table mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, []string{testZIPWorthington, testZIPColumbus}, ext.ZIPs)
	assert.Empty(t, ext.Diagnostics)
	assert.Equal(t, 2, ext.Counts[LineHeader])
	assert.Equal(t, 3, ext.Counts[LineStatus])

	data, err := MarshalTable(ext.Table)
	require.NoError(t, err)
	assert.Equal(t, exampleLedgerOutput, string(data))
}

func TestScanLedger_StatusBeforeHeaderIsDropped(t *testing.T) {
	ext := scan(t, "HWC - Available\n43201: Columbus\nMSE - Available\n")

	assert.Empty(t, ext.Table[BrandHWC])
	assert.Equal(t, StatusAvailable, ext.Table[BrandMSE][testZIPColumbus])
	require.Len(t, ext.Diagnostics, 1)
	assert.Equal(t, 1, ext.Diagnostics[0].Line)
	assert.Contains(t, ext.Diagnostics[0].Reason, "before any ZIP header")
}

func TestScanLedger_LastWriteWins(t *testing.T) {
	ext := scan(t, "43201:\nHWC - Available\nHWC - Unavailable\n")
	assert.Equal(t, StatusUnavailable, ext.Table[BrandHWC][testZIPColumbus])

	ext = scan(t, "43201:\nHWC - Unavailable\n43085:\nTCA - Available\n43201:\nHWC - Available\n")
	assert.Equal(t, StatusAvailable, ext.Table[BrandHWC][testZIPColumbus])
	assert.Equal(t, []string{testZIPWorthington, testZIPColumbus}, ext.ZIPs, "duplicate headers collapse")
}

func TestScanLedger_Matching(t *testing.T) {
	tests := []struct {
		name   string
		line   string
		brand  Brand
		status Status
	}{
		{"canonical", "HWC - Available", BrandHWC, StatusAvailable},
		{"lower case", "msq - unavailable", BrandMSQ, StatusUnavailable},
		{"no spaces", "TCA-Unavailable", BrandTCA, StatusUnavailable},
		{"extra spaces", "  MSE   -   AVAILABLE  ", BrandMSE, StatusAvailable},
		{"trailing text", "HWC - Available (since March)", BrandHWC, StatusAvailable},
		{"crlf", "MSQ - Available\r", BrandMSQ, StatusAvailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ext := scan(t, "43201: Columbus\n"+tt.line+"\n")
			assert.Equal(t, tt.status, ext.Table[tt.brand][testZIPColumbus])
			assert.Equal(t, 1, ext.Table.Len())
		})
	}
}

func TestScanLedger_IgnoredLines(t *testing.T) {
	tests := []struct {
		name string
		line string
	}{
		{"blank", ""},
		{"note", "call before visiting"},
		{"four digit zip", "4320: Columbus"},
		{"zip without colon", "43201 Columbus"},
		{"unknown brand", "XYZ - Available"},
		{"unknown status", "HWC - Maybe"},
		{"partial status word", "HWC - Availability"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ext := scan(t, "43085: Worthington\n"+tt.line+"\n")
			assert.Zero(t, ext.Table.Len())
			assert.Equal(t, []string{testZIPWorthington}, ext.ZIPs)
		})
	}
}

func TestScanLedger_CRLFMatchesLF(t *testing.T) {
	lf := scan(t, exampleLedger)
	crlf := scan(t, strings.ReplaceAll(exampleLedger, "\n", "\r\n"))
	assert.Equal(t, lf.Table, crlf.Table)
	assert.Equal(t, lf.ZIPs, crlf.ZIPs)
}

func TestScanLedger_OversizedLineIgnored(t *testing.T) {
	notes := "# notes " + strings.Repeat("x", 2<<20)
	ledger := "43201: Columbus\nHWC - Available\n" + notes + "\nMSE - Unavailable\n"

	ext, err := ScanLedger(strings.NewReader(ledger))
	require.NoError(t, err)

	assert.Equal(t, StatusAvailable, ext.Table[BrandHWC]["43201"])
	assert.Equal(t, StatusUnavailable, ext.Table[BrandMSE]["43201"])
	assert.Equal(t, 1, ext.Counts[LineIgnored])
	assert.Empty(t, ext.Diagnostics)
}

func TestScanLedger_NoTrailingNewline(t *testing.T) {
	ext := scan(t, "43201: Columbus\nHWC - Available")
	assert.Equal(t, StatusAvailable, ext.Table[BrandHWC]["43201"])
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("disk gone") }

func TestScanLedger_ReadError(t *testing.T) {
	_, err := ScanLedger(failingReader{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read ledger")
}

func TestScanLedger_Idempotent(t *testing.T) {
	ledger := exampleLedger + "43123: Grove City\nTCA - Available\nMSQ - Unavailable\n"

	first, err := MarshalTable(scan(t, ledger).Table)
	require.NoError(t, err)
	second, err := MarshalTable(scan(t, ledger).Table)
	require.NoError(t, err)

	assert.True(t, bytes.Equal(first, second))
}

func TestScanLedger_PairsFollowTheirHeader(t *testing.T) {
	ledger := "MSE - Available\n" +
		"43201: Columbus\nHWC - Available\n" +
		"43085: Worthington\nMSE - Unavailable\nnotes\nTCA - Available\n"
	ext := scan(t, ledger)

	var s LedgerScanner
	current := ""
	expected := NewTable()
	for _, raw := range strings.Split(ledger, "\n") {
		line := s.Scan(raw)
		if line.Kind == LineHeader {
			current = line.ZIP
		}
		if line.Kind == LineStatus {
			require.Equal(t, current, line.ZIP)
			expected.Set(line.Brand, line.ZIP, line.Status)
		}
	}
	assert.Equal(t, expected, ext.Table)
	assert.Empty(t, ext.Table[BrandMSE][testZIPColumbus])
	assert.Equal(t, StatusUnavailable, ext.Table[BrandMSE][testZIPWorthington])
}

func TestLedgerScanner_States(t *testing.T) {
	var s LedgerScanner

	l := s.Scan("HWC - Available")
	assert.Equal(t, LineOrphan, l.Kind)
	assert.Empty(t, l.ZIP)

	l = s.Scan("43201: Columbus")
	assert.Equal(t, LineHeader, l.Kind)
	assert.Equal(t, testZIPColumbus, l.ZIP)

	l = s.Scan("hwc - available")
	assert.Equal(t, LineStatus, l.Kind)
	assert.Equal(t, BrandHWC, l.Brand)
	assert.Equal(t, StatusAvailable, l.Status)
	assert.Equal(t, testZIPColumbus, l.ZIP)
	assert.Equal(t, 3, l.Number)

	l = s.Scan("XYZ - Available")
	assert.Equal(t, LineMalformed, l.Kind)
	assert.Contains(t, l.Reason, `unknown brand code "XYZ"`)

	l = s.Scan("MSE - Pending")
	assert.Equal(t, LineMalformed, l.Kind)
	assert.Contains(t, l.Reason, `unknown status "Pending"`)

	l = s.Scan("just a note")
	assert.Equal(t, LineIgnored, l.Kind)
	assert.Equal(t, "ignored", l.Kind.String())
}

func TestExtraction_Strict(t *testing.T) {
	ext := scan(t, exampleLedger)
	require.NoError(t, ext.Strict())

	ext = scan(t, "43201:\nXYZ - Available\nHWC - Available\n")
	err := ext.Strict()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrStrictLedger))
	assert.Contains(t, err.Error(), "line 2")
	assert.Equal(t, StatusAvailable, ext.Table[BrandHWC][testZIPColumbus], "valid lines still scanned")
}

func TestUnmarshalTable_FillsMissingBrands(t *testing.T) {
	table, err := UnmarshalTable([]byte(`{"hwc":{"43201":"available"}}`))
	require.NoError(t, err)

	for _, b := range Brands {
		assert.NotNil(t, table[b], "brand %s", b)
	}
	assert.Equal(t, StatusAvailable, table[BrandHWC][testZIPColumbus])

	_, err = UnmarshalTable([]byte(`not json`))
	require.Error(t, err)
}

func TestTable_ZIPs(t *testing.T) {
	table := scan(t, exampleLedger+"43123:\nTCA - Available\n").Table
	assert.Equal(t, []string{"43085", "43123", "43201"}, table.ZIPs())
	assert.Equal(t, 4, table.Len())
}

func TestFingerprint(t *testing.T) {
	a := Fingerprint([]byte(exampleLedgerOutput))
	b := Fingerprint([]byte(exampleLedgerOutput))
	c := Fingerprint([]byte("{}"))
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Len(t, a, 16)
}
