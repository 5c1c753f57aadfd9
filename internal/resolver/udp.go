package resolver

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"golang.org/x/sys/unix"

	"github.com/jroosing/mailprobe/internal/dns"
	"github.com/jroosing/mailprobe/internal/helpers"
)

// udpPeer is one connected datagram socket.
type udpPeer struct {
	server string
	conn   net.Conn
	dead   bool
}

// datagram is what a socket reader hands back to sendUDP.
type datagram struct {
	peer int
	data []byte
	err  error
}

// sendUDP sends the query to every nameserver over its own socket and waits
// for the first matching response.
//
// Each retry round walks the live sockets in order: the query is (re)sent on
// the socket, then sendUDP waits up to retrans*2^round/live for a response
// on any socket. Responses that are not a response to this query (QR clear,
// other id, unparseable, bad signature) are discarded. A socket whose peer
// refuses the datagram is dropped from later rounds.
func (r *Resolver) sendUDP(ctx context.Context, ex exchange) (dns.Packet, error) {
	peers := r.openUDP(ctx)
	if len(peers) == 0 {
		r.fail(ErrNoNameservers)
		return dns.Packet{}, ErrNoNameservers
	}

	done := make(chan struct{})
	results := make(chan datagram, len(peers))
	defer func() {
		close(done)
		for _, p := range peers {
			_ = p.conn.Close()
		}
	}()
	for i, p := range peers {
		go r.readUDP(i, p.conn, results, done)
	}

	live := len(peers)
	for round := range r.cfg.Retry {
		for k := range peers {
			if peers[k].dead {
				continue
			}
			// The first round waits the full retrans on each server; later
			// rounds double it and share it among the live servers.
			wait := r.cfg.Retrans
			if round > 0 {
				wait = (r.cfg.Retrans << round) / time.Duration(live)
			}
			wait = helpers.AtLeast(wait, r.minWait)
			r.log.Debug("send_udp", "server", peers[k].server, "bytes", len(ex.wire), "timeout", wait)
			if _, err := peers[k].conn.Write(ex.wire); err != nil {
				r.log.Debug("send error", "server", peers[k].server, "err", err)
			}

			resp, ok, err := r.awaitUDP(ctx, ex, peers, k, &live, wait, results)
			if err != nil || ok {
				return resp, err
			}
			if live == 0 {
				r.fail(ErrConnFailed)
				return dns.Packet{}, fmt.Errorf("%w: every nameserver refused the query", ErrConnFailed)
			}
		}
	}
	r.fail(ErrTimeout)
	return dns.Packet{}, ErrTimeout
}

// awaitUDP waits for a valid response until wait expires or the socket of
// peer k is found dead.
func (r *Resolver) awaitUDP(
	ctx context.Context,
	ex exchange,
	peers []udpPeer,
	k int,
	live *int,
	wait time.Duration,
	results <-chan datagram,
) (dns.Packet, bool, error) {
	timer := time.NewTimer(wait)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			r.fail(ctx.Err())
			return dns.Packet{}, false, ctx.Err()
		case <-timer.C:
			r.log.Debug("query timed out", "server", peers[k].server)
			return dns.Packet{}, false, nil
		case d := <-results:
			p := &peers[d.peer]
			if d.err != nil {
				if !p.dead {
					p.dead = true
					*live--
				}
				if errors.Is(d.err, unix.ECONNREFUSED) {
					r.log.Debug("connection refused", "server", p.server)
				} else {
					r.log.Debug("no data could be read", "server", p.server, "err", d.err)
				}
				if d.peer == k || *live == 0 {
					return dns.Packet{}, false, nil
				}
				continue
			}
			if !dns.MatchesQuery(d.data, ex.query.Header.ID) {
				r.log.Debug("discarding datagram that does not answer the query", "server", p.server)
				continue
			}
			resp, err := r.decode(d.data, ex, true)
			if err != nil {
				r.log.Debug("discarding response", "server", p.server, "err", err)
				continue
			}
			r.answered(&resp, p.server, len(d.data))
			return resp, true, nil
		}
	}
}

// openUDP connects one socket per nameserver. Servers that cannot be
// connected are skipped.
func (r *Resolver) openUDP(ctx context.Context) []udpPeer {
	peers := make([]udpPeer, 0, len(r.nameservers))
	for _, ns := range r.nameservers {
		c, err := r.dialer.DialContext(ctx, "udp", r.addr(ns))
		if err != nil {
			r.log.Debug("udp socket failed", "server", ns, "err", err)
			continue
		}
		peers = append(peers, udpPeer{server: ns, conn: c})
	}
	return peers
}

// readUDP forwards datagrams from c until a read fails. The first error is
// forwarded too, after which the reader exits.
func (r *Resolver) readUDP(peer int, c net.Conn, out chan<- datagram, done <-chan struct{}) {
	for {
		buf := r.bufs.Get()
		n, err := c.Read(*buf)
		d := datagram{peer: peer, err: err}
		if err == nil {
			d.data = bytes.Clone((*buf)[:n])
		}
		r.bufs.Put(buf)

		select {
		case out <- d:
		case <-done:
			return
		}
		if err != nil {
			return
		}
	}
}
