package resolver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"

	"github.com/jroosing/mailprobe/internal/dns"
)

// ZoneTransfer is an AXFR session on its own TCP connection. Records are
// pulled one at a time with Next; the session ends after the closing SOA.
type ZoneTransfer struct {
	r      *Resolver
	ex     exchange
	conn   net.Conn
	server string

	queue    []dns.Record
	soaCount int
	messages int
	err      error
}

// StartZoneTransfer sends an AXFR query for zone to the first nameserver
// that accepts a connection. Zone transfers always use TCP.
func (r *Resolver) StartZoneTransfer(ctx context.Context, zone string, class dns.RecordClass) (*ZoneTransfer, error) {
	r.log.Debug("axfr_start", "zone", zone, "class", class)
	if len(r.nameservers) == 0 {
		r.fail(ErrNoNameservers)
		return nil, ErrNoNameservers
	}

	q := dns.NewQuery(r.ids.Next(), dns.Question{Name: strings.TrimSuffix(zone, "."), Type: dns.TypeAXFR, Class: class})
	ex, err := r.prepare(q)
	if err != nil {
		r.fail(err)
		return nil, err
	}

	var lastErr error
	for _, ns := range r.nameservers {
		addr := r.addr(ns)
		r.log.Debug("axfr_start", "server", addr)
		conn, err := r.dialer.DialContext(ctx, "tcp", addr)
		if err != nil {
			lastErr = err
			continue
		}
		_ = conn.SetDeadline(r.deadline())
		if err := writeMsg(conn, ex.wire); err != nil {
			_ = conn.Close()
			lastErr = err
			continue
		}
		return &ZoneTransfer{r: r, ex: ex, conn: conn, server: ns}, nil
	}

	err = fmt.Errorf("%w: %w", ErrConnFailed, lastErr)
	r.fail(err)
	return nil, err
}

// Server is the nameserver the transfer is reading from.
func (z *ZoneTransfer) Server() string { return z.server }

// Next returns the next record of the zone. It returns the bare io.EOF
// after the closing SOA has been consumed. Any other error ends the session; the
// records already returned must then be treated as an incomplete zone.
func (z *ZoneTransfer) Next(ctx context.Context) (dns.Record, error) {
	for len(z.queue) == 0 {
		if z.err != nil {
			return nil, z.err
		}
		if z.conn == nil {
			return nil, io.EOF
		}
		if err := z.fill(ctx); err != nil {
			z.abort(err)
			return nil, z.err
		}
	}
	rec := z.queue[0]
	z.queue = z.queue[1:]
	return rec, nil
}

// fill reads the next message of the transfer into the queue. Only the
// first SOA is queued; the second one completes the transfer.
func (z *ZoneTransfer) fill(ctx context.Context) error {
	stop := watchContext(ctx, z.conn)
	defer stop()
	_ = z.conn.SetDeadline(z.r.deadline())

	msg, err := readMsg(z.conn)
	if err != nil {
		if errors.Is(err, dns.ErrFormat) || errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			// %v: a short read must not satisfy errors.Is(err, io.EOF).
			return fmt.Errorf("truncated zone transfer: %v", err)
		}
		return err
	}
	resp, err := z.r.decode(msg, z.ex, z.messages == 0)
	if err != nil {
		return err
	}
	z.messages++
	if rc := resp.Header.RCode(); rc != dns.RCodeNoError {
		return fmt.Errorf("errorcode %s returned", rc)
	}
	if len(resp.Answers) == 0 {
		return errors.New("truncated zone transfer: message without answers")
	}
	if z.messages == 1 {
		z.r.answered(&resp, z.server, len(msg))
	}

	for _, rr := range resp.Answers {
		if rr.Type() == dns.TypeSOA {
			z.soaCount++
			if z.soaCount >= 2 {
				continue
			}
		}
		z.queue = append(z.queue, rr)
	}
	if z.soaCount >= 2 {
		z.r.log.Debug("axfr complete", "server", z.server, "messages", z.messages)
		_ = z.conn.Close()
		z.conn = nil
	}
	return nil
}

func (z *ZoneTransfer) abort(err error) {
	z.err = fmt.Errorf("%w: %w", ErrZoneTransfer, err)
	z.r.fail(z.err)
	z.queue = nil
	_ = z.Close()
}

// Close ends the session and releases its connection.
func (z *ZoneTransfer) Close() error {
	if z.conn == nil {
		return nil
	}
	err := z.conn.Close()
	z.conn = nil
	return err
}

// AXFR transfers a whole zone. On failure the records received before the
// error are returned along with it; they do not form a complete zone.
func (r *Resolver) AXFR(ctx context.Context, zone string, class dns.RecordClass) ([]dns.Record, error) {
	z, err := r.StartZoneTransfer(ctx, zone, class)
	if err != nil {
		return nil, err
	}
	defer z.Close()

	var records []dns.Record
	for {
		rr, err := z.Next(ctx)
		if err == io.EOF {
			return records, nil
		}
		if err != nil {
			return records, err
		}
		records = append(records, rr)
	}
}

// AXFROld performs a transfer as a single TCP exchange and returns the one
// response message. Only servers that fit the whole zone into one message
// work with it.
func (r *Resolver) AXFROld(ctx context.Context, zone string, class dns.RecordClass) (dns.Packet, error) {
	r.log.Debug("axfr_start", "zone", zone, "class", class, "style", "old")
	if len(r.nameservers) == 0 {
		r.fail(ErrNoNameservers)
		return dns.Packet{}, ErrNoNameservers
	}
	q := dns.NewQuery(r.ids.Next(), dns.Question{Name: strings.TrimSuffix(zone, "."), Type: dns.TypeAXFR, Class: class})
	ex, err := r.prepare(q)
	if err != nil {
		r.fail(err)
		return dns.Packet{}, err
	}
	return r.sendTCP(ctx, ex)
}
