package domain

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strings"
)

var (
	// zipHeaderRe matches a section header, e.g. "43201: Columbus" -> "43201".
	zipHeaderRe = regexp.MustCompile(`^(\d{5}):`)

	// brandStatusRe matches a status entry, e.g. "HWC - Available" -> HWC, Available.
	brandStatusRe = regexp.MustCompile(`(?i)^(HWC|MSE|MSQ|TCA)\s*-\s*(Available|Unavailable)`)

	// entryShapeRe matches anything that looks like "<word> - <word>".
	entryShapeRe = regexp.MustCompile(`^([A-Za-z]+)\s*-\s*([A-Za-z]+)`)
)

var (
	// ErrLedgerMissing is returned when the ledger file does not exist.
	ErrLedgerMissing = errors.New("ledger not found")

	// ErrStrictLedger is returned by Extraction.Strict when diagnostics exist.
	ErrStrictLedger = errors.New("ledger has malformed entries")
)

// LineKind classifies a scanned ledger line.
type LineKind int

const (
	LineIgnored LineKind = iota
	LineHeader
	LineStatus
	LineOrphan
	LineMalformed
)

func (k LineKind) String() string {
	switch k {
	case LineHeader:
		return "header"
	case LineStatus:
		return "status"
	case LineOrphan:
		return "orphan"
	case LineMalformed:
		return "malformed"
	default:
		return "ignored"
	}
}

// Line is the scanner's verdict on one ledger line.
type Line struct {
	Number int
	Kind   LineKind
	Text   string
	ZIP    string
	Brand  Brand
	Status Status
	Reason string // set for orphan and malformed lines
}

type scanState int

const (
	outsideZIP scanState = iota
	insideZIP
)

// LedgerScanner is a two-state line scanner. Outside a section, status lines
// are orphans; a header enters (or switches) the section for its ZIP.
type LedgerScanner struct {
	state scanState
	zip   string
	n     int
}

// Scan classifies the next ledger line and advances the scanner state.
func (s *LedgerScanner) Scan(raw string) Line {
	s.n++
	text := strings.TrimSpace(raw)
	line := Line{Number: s.n, Text: text}

	if m := zipHeaderRe.FindStringSubmatch(text); m != nil {
		s.state = insideZIP
		s.zip = m[1]
		line.Kind = LineHeader
		line.ZIP = m[1]
		return line
	}

	if m := brandStatusRe.FindStringSubmatch(text); m != nil {
		line.Brand = Brand(strings.ToLower(m[1]))
		line.Status = Status(strings.ToLower(m[2]))
		if s.state == outsideZIP {
			line.Kind = LineOrphan
			line.Reason = "status line before any ZIP header"
			return line
		}
		line.Kind = LineStatus
		line.ZIP = s.zip
		return line
	}

	if m := entryShapeRe.FindStringSubmatch(text); m != nil {
		line.Kind = LineMalformed
		if _, err := ParseBrand(m[1]); err != nil {
			line.Reason = fmt.Sprintf("unknown brand code %q", m[1])
		} else {
			line.Reason = fmt.Sprintf("unknown status %q", m[2])
		}
		line.ZIP = s.zip
		return line
	}

	line.Kind = LineIgnored
	return line
}

// Diagnostic describes a ledger line that was skipped for a reason worth reporting.
type Diagnostic struct {
	Line   int
	Text   string
	Reason string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("line %d: %s: %q", d.Line, d.Reason, d.Text)
}

// Extraction is the result of scanning a whole ledger.
type Extraction struct {
	Table       Table
	ZIPs        []string // unique header ZIPs, sorted ascending
	Diagnostics []Diagnostic
	Counts      map[LineKind]int
}

// Strict returns an error wrapping ErrStrictLedger if any diagnostics were recorded.
func (e Extraction) Strict() error {
	if len(e.Diagnostics) == 0 {
		return nil
	}
	msgs := make([]string, len(e.Diagnostics))
	for i, d := range e.Diagnostics {
		msgs[i] = d.String()
	}
	return fmt.Errorf("%w (%d): %s", ErrStrictLedger, len(msgs), strings.Join(msgs, "; "))
}

// ScanLedger reads a ledger and builds the availability table and header ZIP list.
// It only fails on read errors; malformed content is reported as diagnostics.
func ScanLedger(r io.Reader) (Extraction, error) {
	ext := Extraction{
		Table:  NewTable(),
		Counts: make(map[LineKind]int),
	}
	zips := make(map[string]struct{})

	var s LedgerScanner
	// Lines have no length limit; an oversized note is just an ignored line.
	br := bufio.NewReader(r)
	for {
		raw, err := br.ReadString('\n')
		if raw != "" {
			line := s.Scan(raw)
			ext.Counts[line.Kind]++

			switch line.Kind {
			case LineHeader:
				zips[line.ZIP] = struct{}{}
			case LineStatus:
				ext.Table.Set(line.Brand, line.ZIP, line.Status)
			case LineOrphan, LineMalformed:
				ext.Diagnostics = append(ext.Diagnostics, Diagnostic{
					Line:   line.Number,
					Text:   line.Text,
					Reason: line.Reason,
				})
			}
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return Extraction{}, fmt.Errorf("read ledger: %w", err)
		}
	}

	ext.ZIPs = make([]string, 0, len(zips))
	for zip := range zips {
		ext.ZIPs = append(ext.ZIPs, zip)
	}
	sort.Strings(ext.ZIPs)
	return ext, nil
}
