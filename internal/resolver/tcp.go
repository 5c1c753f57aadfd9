package resolver

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"net"
	"time"

	"golang.org/x/sys/unix"

	"github.com/jroosing/mailprobe/internal/dns"
	"github.com/jroosing/mailprobe/internal/helpers"
)

// aLongTimeAgo is a deadline that has already passed.
var aLongTimeAgo = time.Unix(1, 0)

// sendTCP tries the nameservers one after another. Each gets a single
// attempt on a cached or new connection; the first complete, parseable
// response wins.
func (r *Resolver) sendTCP(ctx context.Context, ex exchange) (dns.Packet, error) {
	if len(r.nameservers) == 0 {
		r.fail(ErrNoNameservers)
		return dns.Packet{}, ErrNoNameservers
	}

	var lastErr error
	for _, ns := range r.nameservers {
		if ctx.Err() != nil {
			return dns.Packet{}, ctx.Err()
		}
		addr := r.addr(ns)
		r.log.Debug("send_tcp", "server", addr, "bytes", len(ex.wire))

		msg, err := r.exchangeTCP(ctx, addr, ex.wire)
		if err != nil {
			r.log.Debug("send_tcp failed", "server", addr, "err", err)
			lastErr = err
			continue
		}
		resp, err := r.decode(msg, ex, true)
		if err != nil {
			r.log.Debug("discarding response", "server", addr, "err", err)
			lastErr = err
			continue
		}
		r.answered(&resp, ns, len(msg))
		return resp, nil
	}

	err := fmt.Errorf("%w: %w", ErrConnFailed, lastErr)
	r.fail(err)
	return dns.Packet{}, err
}

// exchangeTCP writes one framed message and reads one framed reply over
// the cached connection for addr. A cached connection the peer has since
// closed is replaced once; any other failure drops the connection.
func (r *Resolver) exchangeTCP(ctx context.Context, addr string, wire []byte) ([]byte, error) {
	conn, cached, err := r.tcpConn(ctx, addr)
	if err != nil {
		return nil, err
	}
	msg, err := r.roundTrip(ctx, conn, wire)
	if err != nil && cached && isStale(err) {
		r.dropConn(addr)
		if conn, _, err = r.tcpConn(ctx, addr); err != nil {
			return nil, err
		}
		msg, err = r.roundTrip(ctx, conn, wire)
	}
	if err != nil {
		r.dropConn(addr)
		return nil, err
	}
	return msg, nil
}

// isStale reports errors that mean the peer closed an idle connection.
func isStale(err error) bool {
	return errors.Is(err, io.EOF) || errors.Is(err, unix.ECONNRESET) || errors.Is(err, unix.EPIPE)
}

func (r *Resolver) roundTrip(ctx context.Context, conn net.Conn, wire []byte) ([]byte, error) {
	stop := watchContext(ctx, conn)
	defer stop()
	_ = conn.SetDeadline(r.deadline())
	if err := writeMsg(conn, wire); err != nil {
		return nil, err
	}
	return readMsg(conn)
}

// tcpConn returns the cached connection for addr or dials a new one.
func (r *Resolver) tcpConn(ctx context.Context, addr string) (net.Conn, bool, error) {
	if c, ok := r.conns[addr]; ok {
		return c, true, nil
	}
	c, err := r.dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, false, fmt.Errorf("dial %s: %w", addr, err)
	}
	r.conns[addr] = c
	return c, false, nil
}

func (r *Resolver) dropConn(addr string) {
	if c, ok := r.conns[addr]; ok {
		_ = c.Close()
		delete(r.conns, addr)
	}
}

// watchContext forces pending I/O on conn to fail once ctx is done. The
// returned function stops the watch.
func watchContext(ctx context.Context, conn net.Conn) func() bool {
	return context.AfterFunc(ctx, func() {
		_ = conn.SetDeadline(aLongTimeAgo)
	})
}

// writeMsg writes a DNS message with its 2-byte big-endian length prefix
// (RFC 1035 Section 4.2.2).
func writeMsg(w io.Writer, msg []byte) error {
	if len(msg) > dns.MaxTCPMessageSize {
		return fmt.Errorf("%w: message of %d bytes cannot be framed", dns.ErrValue, len(msg))
	}
	buf := make([]byte, 2, 2+len(msg))
	binary.BigEndian.PutUint16(buf, helpers.ClampIntToUint16(len(msg)))
	buf = append(buf, msg...)
	_, err := w.Write(buf)
	return err
}

// readMsg reads exactly one length-prefixed DNS message. A zero length or a
// short read is an error.
func readMsg(rd io.Reader) ([]byte, error) {
	var prefix [2]byte
	if _, err := io.ReadFull(rd, prefix[:]); err != nil {
		return nil, fmt.Errorf("read length: %w", err)
	}
	n := int(binary.BigEndian.Uint16(prefix[:]))
	if n == 0 {
		return nil, fmt.Errorf("%w: zero length message", dns.ErrFormat)
	}
	msg := make([]byte, n)
	if got, err := io.ReadFull(rd, msg); err != nil {
		return nil, fmt.Errorf("expected %d bytes, received %d: %w", n, got, err)
	}
	return msg, nil
}
