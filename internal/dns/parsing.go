package dns

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/jroosing/mailprobe/internal/helpers"
)

// MaxTCPMessageSize is the largest message a 2-byte TCP length prefix can frame.
const MaxTCPMessageSize = 65535

// ErrMismatch reports a well-formed message that does not answer the query
// it was read for.
var ErrMismatch = errors.New("response does not match query")

// MatchesQuery reports whether raw bytes look like a response to the query
// with the given id: at least a full header, QR set and the same id. It does
// not parse the rest of the message.
func MatchesQuery(msg []byte, id uint16) bool {
	if len(msg) < HeaderSize {
		return false
	}
	return binary.BigEndian.Uint16(msg[0:2]) == id && isResponse(binary.BigEndian.Uint16(msg[2:4]))
}

// IsTruncated checks if a DNS response has the TC (Truncation) flag set.
// This indicates the message was truncated and should be retried over TCP.
func IsTruncated(msg []byte) bool {
	if len(msg) < 4 {
		return false
	}
	flags := binary.BigEndian.Uint16(msg[2:4])
	return (flags & TCFlag) != 0
}

// ParseResponse parses msg and checks it against the query it answers.
//
// Returns an error if:
//   - Message exceeds MaxTCPMessageSize or is malformed (ErrFormat)
//   - QR flag is clear or the transaction id differs (ErrMismatch)
//   - The response carries questions but not as many as the query
func ParseResponse(msg []byte, query Packet) (Packet, error) {
	if len(msg) > MaxTCPMessageSize {
		return Packet{}, fmt.Errorf("%w: message too large (%d bytes)", ErrFormat, len(msg))
	}
	p, err := ParsePacket(msg)
	if err != nil {
		return Packet{}, err
	}
	if err := validateResponse(query, p); err != nil {
		return Packet{}, err
	}
	return p, nil
}

// isResponse checks if the QR flag is set (indicating a response packet).
func isResponse(flags uint16) bool {
	return (flags & QRFlag) != 0
}

// validateResponse checks id, QR and question count. Continuation messages
// of a zone transfer carry no question section, so zero questions pass.
func validateResponse(query, resp Packet) error {
	if !isResponse(resp.Header.Flags) {
		return fmt.Errorf("%w: QR flag not set", ErrMismatch)
	}
	if resp.Header.ID != query.Header.ID {
		return fmt.Errorf("%w: id %d, expected %d", ErrMismatch, resp.Header.ID, query.Header.ID)
	}
	if n := len(resp.Questions); n != 0 && n != len(query.Questions) {
		return fmt.Errorf("%w: %d questions, expected %d", ErrMismatch, n, len(query.Questions))
	}
	return nil
}

// BuildErrorResponse constructs a DNS error response packet.
// It preserves the transaction ID, opcode and RD flag from the request,
// sets the QR flag (response), and applies the given response code.
//
// The response includes the original question section but no answer records.
func BuildErrorResponse(req Packet, rcode RCode) Packet {
	h := Header{
		ID:      req.Header.ID,
		Flags:   buildResponseFlags(req.Header.Flags, rcode),
		QDCount: helpers.ClampIntToUint16(len(req.Questions)),
	}
	return Packet{Header: h, Questions: req.Questions}
}

// BuildResponse answers req with the given records and NOERROR.
func BuildResponse(req Packet, answers ...Record) Packet {
	p := BuildErrorResponse(req, RCodeNoError)
	p.Answers = answers
	p.Header.ANCount = helpers.ClampIntToUint16(len(answers))
	return p
}

// buildResponseFlags constructs the flags field for a response.
//
// Flag construction:
//  1. Set QR flag (bit 15) to mark as response
//  2. Preserve opcode and RD flag (bit 8) from request
//  3. Clear existing RCODE and set new rcode in bits 3-0
func buildResponseFlags(reqFlags uint16, rcode RCode) uint16 {
	flags := QRFlag | reqFlags&(OpcodeMask|RDFlag)
	return (flags &^ RCodeMask) | uint16(rcode)&RCodeMask
}
