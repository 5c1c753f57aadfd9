// Package dns provides DNS protocol parsing, encoding, and packet manipulation.
//
// Standards Compliance:
//
// This package implements the subset of the DNS protocol needed by a stub
// resolver that speaks to recursive and authoritative nameservers:
//
//   - RFC 1035: Domain Names - Implementation and Specification (core DNS protocol)
//   - RFC 1996: DNS NOTIFY (opcode only)
//   - RFC 2136: Dynamic Updates (opcodes, rcodes and the NONE class)
//   - RFC 2782: SRV records
//   - RFC 2845: Secret Key Transaction Authentication (TSIG)
//   - RFC 2915: NAPTR records
//   - RFC 3596: DNS Extensions to Support IPv6 (AAAA records)
//
// Type-Oriented Design:
//
// Each DNS record type is represented by an explicit type (IPRecord, MXRecord,
// SOARecord, ...) rather than a generic struct. Parsing goes through a static
// type registry; types without a registered codec decode into OpaqueRecord.
// Records are built once by their codec and are not mutated afterwards.
//
// Error Handling:
//
// All errors are wrapped with context using fmt.Errorf("...: %w", err).
// Decoding failures wrap ErrFormat; encoding failures caused by invalid values
// wrap ErrValue.
package dns

import "errors"

var (
	// ErrFormat marks malformed wire data: short headers, truncated sections,
	// compression pointer loops, rdata length mismatches.
	ErrFormat = errors.New("dns format error")

	// ErrValue marks values that cannot be encoded (label longer than 63
	// octets, names longer than 255 octets, invalid addresses).
	ErrValue = errors.New("dns value error")

	// ErrTSIG marks a response whose transaction signature is missing or
	// does not verify.
	ErrTSIG = errors.New("tsig verification failed")
)
