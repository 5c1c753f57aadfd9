package dns

import (
	"fmt"
	"net/netip"
)

// IPRecord represents a DNS A or AAAA record containing an IP address.
// The Type is determined by the address family (IPv4 → TypeA, IPv6 → TypeAAAA);
// IPv4-mapped IPv6 addresses stay AAAA.
type IPRecord struct {
	H    RRHeader
	Addr netip.Addr
}

// NewIPRecord creates a new IP record (A or AAAA based on address type).
func NewIPRecord(h RRHeader, addr netip.Addr) *IPRecord {
	return &IPRecord{H: h, Addr: addr}
}

// NewAAAARecord parses an IPv6 address in any valid textual form, expanded
// or compressed, and returns an AAAA record.
func NewAAAARecord(h RRHeader, text string) (*IPRecord, error) {
	addr, err := ParseIPv6(text)
	if err != nil {
		return nil, err
	}
	return &IPRecord{H: h, Addr: addr}, nil
}

// Type returns TypeA for IPv4 addresses, TypeAAAA for IPv6.
func (r *IPRecord) Type() RecordType {
	if r.Addr.Is4() {
		return TypeA
	}
	return TypeAAAA
}

// Header returns the record header.
func (r *IPRecord) Header() RRHeader { return r.H }

// MarshalRData marshals the IP address to wire format.
func (r *IPRecord) MarshalRData(_ *Compressor, _ int) ([]byte, error) {
	if !r.Addr.IsValid() {
		return nil, fmt.Errorf("%w: invalid IP address", ErrValue)
	}
	return r.Addr.AsSlice(), nil
}

// RDataString renders dotted-quad for A and RFC 5952 text for AAAA.
func (r *IPRecord) RDataString() string {
	if !r.Addr.IsValid() {
		return "; no data"
	}
	if r.Addr.Is4() {
		return r.Addr.String()
	}
	return FormatIPv6(r.Addr.As16())
}

func (r *IPRecord) String() string { return FormatRecord(r) }

// parseIPRData parses A or AAAA record RDATA from wire format.
func parseIPRData(h RRHeader, rt RecordType, rd rdata) (Record, error) {
	want := 4
	if rt == TypeAAAA {
		want = 16
	}
	if rd.len() != want {
		return nil, fmt.Errorf("%w: %s record must be %d bytes (RFC 1035 §3.4.1), got %d", ErrFormat, rt, want, rd.len())
	}
	addr, _ := netip.AddrFromSlice(rd.msg[rd.start:rd.end])
	return &IPRecord{H: h, Addr: addr}, nil
}
