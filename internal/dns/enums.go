package dns

import (
	"strconv"
	"strings"
)

// DNS header flags and masks (RFC 1035 Section 4.1.1)
//
// The DNS header contains a 16-bit flags field with the following layout:
//
//	+--+--+--+--+--+--+--+--+--+--+--+--+--+--+--+--+
//	|QR|   Opcode  |AA|TC|RD|RA| Z|AD|CD|   RCODE   |
//	+--+--+--+--+--+--+--+--+--+--+--+--+--+--+--+--+
//	 15 14 13 12 11 10  9  8  7  6  5  4  3  2  1  0
//
// The high byte carries QR, Opcode, AA, TC and RD; the low byte carries RA
// and RCODE. Z, AD and CD are preserved but never interpreted here.
const (
	QRFlag     uint16 = 0x8000 // Query/Response: 1 = response, 0 = query
	OpcodeMask uint16 = 0x7800 // Bits 14-11: operation type (use >> 11 to extract)
	AAFlag     uint16 = 0x0400 // Authoritative Answer
	TCFlag     uint16 = 0x0200 // Truncation: message was truncated
	RDFlag     uint16 = 0x0100 // Recursion Desired
	RAFlag     uint16 = 0x0080 // Recursion Available
	ZFlag      uint16 = 0x0040 // Reserved (must be zero in queries)
	ADFlag     uint16 = 0x0020 // Authenticated Data (DNSSEC)
	CDFlag     uint16 = 0x0010 // Checking Disabled (DNSSEC)
	RCodeMask  uint16 = 0x000F // Bits 3-0: response code

	opcodeShift = 11
)

// Size limits from RFC 1035 Section 2.3.4 and 4.2.1.
const (
	MaxLabelLength = 63  // octets in a single label
	MaxNameLength  = 255 // octets in an encoded name, including length bytes
	MaxUDPSize     = 512 // largest message sent over UDP without EDNS
)

// RecordType represents DNS resource record types.
type RecordType uint16

const (
	TypeUnknown RecordType = 0 // sentinel for unrecognized mnemonics
	TypeA       RecordType = 1
	TypeNS      RecordType = 2
	TypeMD      RecordType = 3
	TypeMF      RecordType = 4
	TypeCNAME   RecordType = 5
	TypeSOA     RecordType = 6
	TypeMB      RecordType = 7
	TypeMG      RecordType = 8
	TypeMR      RecordType = 9
	TypeNULL    RecordType = 10
	TypeWKS     RecordType = 11
	TypePTR     RecordType = 12
	TypeHINFO   RecordType = 13
	TypeMINFO   RecordType = 14
	TypeMX      RecordType = 15
	TypeTXT     RecordType = 16
	TypeRP      RecordType = 17
	TypeAFSDB   RecordType = 18
	TypeX25     RecordType = 19
	TypeISDN    RecordType = 20
	TypeRT      RecordType = 21
	TypeNSAP    RecordType = 22
	TypeNSAPPTR RecordType = 23
	TypeSIG     RecordType = 24
	TypeKEY     RecordType = 25
	TypePX      RecordType = 26
	TypeGPOS    RecordType = 27
	TypeAAAA    RecordType = 28
	TypeLOC     RecordType = 29
	TypeNXT     RecordType = 30
	TypeEID     RecordType = 31
	TypeNIMLOC  RecordType = 32
	TypeSRV     RecordType = 33
	TypeATMA    RecordType = 34
	TypeNAPTR   RecordType = 35
	TypeUINFO   RecordType = 100
	TypeUID     RecordType = 101
	TypeGID     RecordType = 102
	TypeUNSPEC  RecordType = 103
	TypeTSIG    RecordType = 250
	TypeIXFR    RecordType = 251
	TypeAXFR    RecordType = 252
	TypeMAILB   RecordType = 253
	TypeMAILA   RecordType = 254
	TypeANY     RecordType = 255
)

var typeNames = map[RecordType]string{
	TypeA: "A", TypeNS: "NS", TypeMD: "MD", TypeMF: "MF", TypeCNAME: "CNAME",
	TypeSOA: "SOA", TypeMB: "MB", TypeMG: "MG", TypeMR: "MR", TypeNULL: "NULL",
	TypeWKS: "WKS", TypePTR: "PTR", TypeHINFO: "HINFO", TypeMINFO: "MINFO",
	TypeMX: "MX", TypeTXT: "TXT", TypeRP: "RP", TypeAFSDB: "AFSDB",
	TypeX25: "X25", TypeISDN: "ISDN", TypeRT: "RT", TypeNSAP: "NSAP",
	TypeNSAPPTR: "NSAP_PTR", TypeSIG: "SIG", TypeKEY: "KEY", TypePX: "PX",
	TypeGPOS: "GPOS", TypeAAAA: "AAAA", TypeLOC: "LOC", TypeNXT: "NXT",
	TypeEID: "EID", TypeNIMLOC: "NIMLOC", TypeSRV: "SRV", TypeATMA: "ATMA",
	TypeNAPTR: "NAPTR", TypeUINFO: "UINFO", TypeUID: "UID", TypeGID: "GID",
	TypeUNSPEC: "UNSPEC", TypeTSIG: "TSIG", TypeIXFR: "IXFR", TypeAXFR: "AXFR",
	TypeMAILB: "MAILB", TypeMAILA: "MAILA", TypeANY: "ANY",
}

var typeValues = invert(typeNames)

// String returns the mnemonic, or TYPEnnn (RFC 3597) for unmapped values.
func (t RecordType) String() string {
	if s, ok := typeNames[t]; ok {
		return s
	}
	return "TYPE" + strconv.Itoa(int(t))
}

// ParseRecordType maps a mnemonic ("MX"), an RFC 3597 name ("TYPE15") or a
// decimal string ("15") to a RecordType. Unrecognized input yields TypeUnknown.
func ParseRecordType(s string) RecordType {
	return RecordType(parseMnemonic(s, "TYPE", typeValues))
}

// RecordClass represents DNS resource record classes.
type RecordClass uint16

const (
	ClassUnknown RecordClass = 0 // sentinel for unrecognized mnemonics
	ClassIN      RecordClass = 1
	ClassCH      RecordClass = 3
	ClassHS      RecordClass = 4
	ClassNONE    RecordClass = 254 // RFC 2136
	ClassANY     RecordClass = 255
)

var classNames = map[RecordClass]string{
	ClassIN: "IN", ClassCH: "CH", ClassHS: "HS", ClassNONE: "NONE", ClassANY: "ANY",
}

var classValues = invert(classNames)

// String returns the mnemonic, or CLASSnnn for unmapped values.
func (c RecordClass) String() string {
	if s, ok := classNames[c]; ok {
		return s
	}
	return "CLASS" + strconv.Itoa(int(c))
}

// ParseRecordClass maps a mnemonic, CLASSnnn or decimal string to a
// RecordClass. Unrecognized input yields ClassUnknown.
func ParseRecordClass(s string) RecordClass {
	return RecordClass(parseMnemonic(s, "CLASS", classValues))
}

// Opcode is the 4-bit operation code carried in the header.
type Opcode uint8

const (
	OpcodeQuery  Opcode = 0
	OpcodeIQuery Opcode = 1
	OpcodeStatus Opcode = 2
	OpcodeNotify Opcode = 4 // RFC 1996
	OpcodeUpdate Opcode = 5 // RFC 2136

	// OpcodeUnknown is returned by ParseOpcode for unrecognized names.
	// It lies outside the 4-bit wire range.
	OpcodeUnknown Opcode = 0xFF
)

var opcodeNames = map[Opcode]string{
	OpcodeQuery: "QUERY", OpcodeIQuery: "IQUERY", OpcodeStatus: "STATUS",
	OpcodeNotify: "NOTIFY", OpcodeUpdate: "UPDATE",
}

var opcodeValues = invert(opcodeNames)

func (o Opcode) String() string {
	if s, ok := opcodeNames[o]; ok {
		return s
	}
	return "OPCODE" + strconv.Itoa(int(o))
}

// ParseOpcode maps a mnemonic to an Opcode, or OpcodeUnknown.
func ParseOpcode(s string) Opcode {
	if o, ok := opcodeValues[strings.ToUpper(strings.TrimSpace(s))]; ok {
		return o
	}
	return OpcodeUnknown
}

// RCode represents DNS response codes (RFC 1035, RFC 2136).
type RCode uint16

const (
	RCodeNoError  RCode = 0  // No error
	RCodeFormErr  RCode = 1  // Format error: query malformed
	RCodeServFail RCode = 2  // Server failure: internal error
	RCodeNXDomain RCode = 3  // Non-existent domain
	RCodeNotImp   RCode = 4  // Not implemented: unsupported query type
	RCodeRefused  RCode = 5  // Query refused by policy
	RCodeYXDomain RCode = 6  // Name exists when it should not
	RCodeYXRRSet  RCode = 7  // RR set exists when it should not
	RCodeNXRRSet  RCode = 8  // RR set that should exist does not
	RCodeNotAuth  RCode = 9  // Server not authoritative for zone
	RCodeNotZone  RCode = 10 // Name not contained in zone

	// RCodeUnknown is returned by ParseRCode for unrecognized names.
	RCodeUnknown RCode = 0xFFFF
)

var rcodeNames = map[RCode]string{
	RCodeNoError: "NOERROR", RCodeFormErr: "FORMERR", RCodeServFail: "SERVFAIL",
	RCodeNXDomain: "NXDOMAIN", RCodeNotImp: "NOTIMP", RCodeRefused: "REFUSED",
	RCodeYXDomain: "YXDOMAIN", RCodeYXRRSet: "YXRRSET", RCodeNXRRSet: "NXRRSET",
	RCodeNotAuth: "NOTAUTH", RCodeNotZone: "NOTZONE",
}

var rcodeValues = invert(rcodeNames)

func (r RCode) String() string {
	if s, ok := rcodeNames[r]; ok {
		return s
	}
	return "RCODE" + strconv.Itoa(int(r))
}

// ParseRCode maps a mnemonic to an RCode, or RCodeUnknown.
func ParseRCode(s string) RCode {
	if r, ok := rcodeValues[strings.ToUpper(strings.TrimSpace(s))]; ok {
		return r
	}
	return RCodeUnknown
}

// RCodeFromFlags extracts the response code from the DNS header flags.
// The RCODE occupies the low 4 bits of the flags field.
func RCodeFromFlags(flags uint16) RCode {
	return RCode(flags & RCodeMask)
}

func invert[K comparable](m map[K]string) map[string]K {
	out := make(map[string]K, len(m))
	for k, v := range m {
		out[v] = k
	}
	return out
}

// parseMnemonic resolves s against names, then the RFC 3597 generic form
// (prefix followed by digits), then plain digits. It returns 0 on failure.
func parseMnemonic[K ~uint16](s, prefix string, names map[string]K) uint16 {
	s = strings.ToUpper(strings.TrimSpace(s))
	if v, ok := names[s]; ok {
		return uint16(v)
	}
	s = strings.TrimPrefix(s, prefix)
	n, err := strconv.ParseUint(s, 10, 16)
	if err != nil {
		return 0
	}
	return uint16(n)
}
