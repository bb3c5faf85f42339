// Package domain models the brand-coverage ledger and the availability queries
// built on top of it.
//
// # Data Source
//
// Availability is curated by hand in a plain-text ledger (refined.txt). Each ZIP
// code opens a section and the lines that follow record whether each brand
// services that ZIP:
//
//	43201: Columbus
//	HWC - Available
//	MSE - Unavailable
//	43085: Worthington
//	HWC - Unavailable
//
// # Ledger Conventions
//
// ZIP header:
//
//	"<5 digits>:<free text>"  →  e.g. "43201: Columbus"
//	The text after the colon is ignored. A header moves the scanner into the
//	section for that ZIP; it never records availability by itself.
//
// Brand status:
//
//	"<BRAND> - <Available|Unavailable>"  →  e.g. "mse-unavailable"
//	Brand codes are HWC, MSE, MSQ and TCA. Matching is case-insensitive,
//	whitespace around the dash is optional and trailing text is ignored.
//	Codes and statuses are stored lower-cased.
//
// Everything else (blank lines, notes, malformed entries) is skipped. A status
// line seen before the first header has no ZIP to attach to and is dropped.
// When the same brand appears twice under one ZIP the later line wins.
//
// Lines are trimmed before matching, so CRLF and LF ledgers scan identically.
// See [LedgerScanner].
//
// # Strictness
//
// The scanner reports lines shaped like a status entry ("<word> - <word>")
// that name an unknown brand or status, and status lines outside any section,
// as [Diagnostic] values. Lenient runs log them; strict runs refuse to write
// output. See [Extraction.Strict].
//
// # Paint Model
//
// Availability maps onto three map styles:
//
//	available   → green fill (#4caf50, 35% opacity)
//	unavailable → red fill   (#e53935, 35% opacity)
//	unknown     → grey outline, no fill
//
// Unknown covers both ZIPs the ledger never mentions for a brand and the
// state where no brand is selected. See [Lookup] and [StyleFor].
package domain
