// Package resolver implements a stub DNS resolver: it builds queries from a
// config.ResolverConfig, sends them to the configured nameservers over UDP
// or TCP, and drives AXFR zone transfers.
//
// Transport selection:
//   - UDP by default; one connected socket per nameserver, multiplexed
//   - TCP when usevc is set or the query is larger than 512 bytes
//   - TCP retry when a UDP answer is truncated, unless igntc is set
//
// A Resolver is not safe for concurrent use. It caches open TCP connections
// and remembers the outcome of its last exchange.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/jroosing/mailprobe/internal/config"
	"github.com/jroosing/mailprobe/internal/dns"
	"github.com/jroosing/mailprobe/internal/logging"
	"github.com/jroosing/mailprobe/internal/pool"
)

var (
	// ErrNoNameservers is returned when no nameserver is configured or none
	// could be reached at the socket level. No query is transmitted.
	ErrNoNameservers = errors.New("no nameservers")

	// ErrTimeout is returned when every UDP retry round expired without a
	// matching response.
	ErrTimeout = errors.New("query timed out")

	// ErrConnFailed is returned when every nameserver failed at the
	// transport level.
	ErrConnFailed = errors.New("connection failed")

	// ErrNoAnswer marks an ordinary negative answer: the exchange worked
	// but the answer section is empty.
	ErrNoAnswer = errors.New("no answer")

	// ErrZoneTransfer is returned when a zone transfer is aborted.
	ErrZoneTransfer = errors.New("zone transfer failed")
)

const (
	udpRecvSize = 4096
	minUDPWait  = time.Second
)

// Option configures a Resolver.
type Option func(*Resolver)

// WithLogger sets the logger used for per-exchange debug records.
func WithLogger(l *slog.Logger) Option {
	return func(r *Resolver) { r.log = l }
}

// WithIDGenerator shares a transaction id sequence between resolvers.
func WithIDGenerator(g *dns.IDGenerator) Option {
	return func(r *Resolver) { r.ids = g }
}

// WithTSIG signs every outgoing query with key and requires signed
// responses.
func WithTSIG(key dns.TSIGKey) Option {
	return func(r *Resolver) { r.tsig = &key }
}

// WithClock replaces time.Now for TSIG signing and verification.
func WithClock(now func() time.Time) Option {
	return func(r *Resolver) { r.now = now }
}

// WithBootstrap sets the resolver used by SetNameservers to look up
// nameserver host names.
func WithBootstrap(b *Resolver) Option {
	return func(r *Resolver) { r.bootstrap = b }
}

// Resolver sends queries to the nameservers of its configuration.
type Resolver struct {
	cfg         config.ResolverConfig
	nameservers []string

	log       *slog.Logger
	ids       *dns.IDGenerator
	tsig      *dns.TSIGKey
	now       func() time.Time
	bufs      *pool.Buffers
	dialer    net.Dialer
	bootstrap *Resolver
	minWait   time.Duration

	conns map[string]net.Conn

	lastErr    string
	answerFrom string
	answerSize int
}

// New returns a resolver for cfg. The configuration is copied.
func New(cfg config.ResolverConfig, opts ...Option) *Resolver {
	r := &Resolver{
		cfg:         cfg,
		nameservers: append([]string(nil), cfg.Nameservers...),
		log:         logging.Discard(),
		now:         time.Now,
		bufs:        pool.NewBuffers(udpRecvSize),
		minWait:     minUDPWait,
		conns:       map[string]net.Conn{},
	}
	if r.cfg.Port == 0 {
		r.cfg.Port = config.DefaultPort
	}
	if r.cfg.Retry <= 0 {
		r.cfg.Retry = 1
	}
	if r.cfg.Retrans <= 0 {
		r.cfg.Retrans = config.DefaultRetrans
	}
	r.dialer.Timeout = r.cfg.TCPTimeout
	for _, opt := range opts {
		opt(r)
	}
	if r.ids == nil {
		r.ids = dns.NewRandomIDGenerator()
	}
	return r
}

// FromConfig builds a resolver from a loaded configuration, parsing the
// TSIG key when one is configured.
func FromConfig(cfg config.ResolverConfig, opts ...Option) (*Resolver, error) {
	if cfg.TSIG.KeyName != "" {
		key, err := dns.ParseTSIGKey(cfg.TSIG.KeyName, cfg.TSIG.Algorithm, cfg.TSIG.Secret)
		if err != nil {
			return nil, fmt.Errorf("tsig key: %w", err)
		}
		opts = append([]Option{WithTSIG(key)}, opts...)
	}
	return New(cfg, opts...), nil
}

// Close closes every cached TCP connection.
func (r *Resolver) Close() error {
	var errs []error
	for addr, c := range r.conns {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
		delete(r.conns, addr)
	}
	return errors.Join(errs...)
}

// Nameservers returns the current nameserver list.
func (r *Resolver) Nameservers() []string {
	return append([]string(nil), r.nameservers...)
}

// LastError describes the outcome of the last exchange: the response code
// mnemonic after an answer, or the failure text otherwise.
func (r *Resolver) LastError() string { return r.lastErr }

// AnswerFrom is the nameserver that produced the last answer.
func (r *Resolver) AnswerFrom() string { return r.answerFrom }

// AnswerSize is the wire size of the last answer.
func (r *Resolver) AnswerSize() int { return r.answerSize }

// String dumps the resolver state.
func (r *Resolver) String() string {
	c := r.cfg
	c.Nameservers = r.nameservers
	return c.String()
}

// Query looks up name and returns the response when its answer section is
// non-empty. A negative answer returns the response together with an error
// wrapping ErrNoAnswer.
func (r *Resolver) Query(ctx context.Context, name string, qtype dns.RecordType, qclass dns.RecordClass) (dns.Packet, error) {
	resp, err := r.RawQuery(ctx, name, qtype, qclass)
	if err != nil {
		return dns.Packet{}, err
	}
	if len(resp.Answers) == 0 {
		return resp, fmt.Errorf("%w: %s", ErrNoAnswer, resp.Header.RCode())
	}
	return resp, nil
}

// RawQuery looks up name and returns whatever the nameserver answered. A
// name without dots gets the default domain appended when defnames is set;
// a dotted quad becomes a PTR query in in-addr.arpa.
func (r *Resolver) RawQuery(ctx context.Context, name string, qtype dns.RecordType, qclass dns.RecordClass) (dns.Packet, error) {
	if !strings.Contains(name, ".") && r.cfg.DefNames && r.cfg.Domain != "" {
		name += "." + r.cfg.Domain
	}
	if rev, ok := reverseName(name); ok {
		name, qtype = rev, dns.TypePTR
	}
	r.log.Debug("query", "name", name, "type", qtype, "class", qclass)
	q := dns.NewQuery(r.ids.Next(), dns.Question{Name: strings.TrimSuffix(name, "."), Type: qtype, Class: qclass})
	return r.Send(ctx, q)
}

// Search resolves name through the search list. A name with a dot is tried
// as given first; a name without a trailing dot is then tried with every
// search suffix when dnsrch is set; a name without any dot is finally tried
// as an absolute name. The first response with answers wins.
func (r *Resolver) Search(ctx context.Context, name string, qtype dns.RecordType, qclass dns.RecordClass) (dns.Packet, error) {
	if rev, ok := reverseName(name); ok {
		name, qtype = rev, dns.TypePTR
	}

	var lastErr error
	try := func(n string) (dns.Packet, bool) {
		r.log.Debug("search", "name", n, "type", qtype, "class", qclass)
		resp, err := r.Query(ctx, n, qtype, qclass)
		if err != nil {
			lastErr = err
			return dns.Packet{}, false
		}
		return resp, true
	}

	if strings.Contains(name, ".") {
		if resp, ok := try(name); ok {
			return resp, nil
		}
	}
	if !strings.HasSuffix(name, ".") && r.cfg.DNSSearch {
		for _, suffix := range r.cfg.SearchList {
			if ctx.Err() != nil {
				return dns.Packet{}, ctx.Err()
			}
			if resp, ok := try(name + "." + suffix); ok {
				return resp, nil
			}
		}
	}
	if !strings.Contains(name, ".") {
		if resp, ok := try(name + "."); ok {
			return resp, nil
		}
	}
	if lastErr == nil {
		lastErr = ErrNoAnswer
	}
	return dns.Packet{}, lastErr
}

// Send transmits q and returns the parsed response. The recursion desired
// flag is taken from the configuration. Truncated UDP answers are retried
// over TCP unless igntc is set.
func (r *Resolver) Send(ctx context.Context, q dns.Packet) (dns.Packet, error) {
	if len(r.nameservers) == 0 {
		r.fail(ErrNoNameservers)
		r.log.Debug("send: no nameservers")
		return dns.Packet{}, ErrNoNameservers
	}

	ex, err := r.prepare(q)
	if err != nil {
		r.fail(err)
		return dns.Packet{}, err
	}
	if r.cfg.UseVC || len(ex.wire) > dns.MaxUDPSize {
		return r.sendTCP(ctx, ex)
	}

	resp, err := r.sendUDP(ctx, ex)
	if err == nil && resp.Header.Truncated() && !r.cfg.IgnoreTC {
		r.log.Debug("packet truncated: retrying using TCP")
		return r.sendTCP(ctx, ex)
	}
	return resp, err
}

// exchange is one query ready for the wire.
type exchange struct {
	query      dns.Packet
	wire       []byte
	requestMAC []byte
}

// prepare applies the recursion flag, signs the query when a key is set
// and serializes it.
func (r *Resolver) prepare(q dns.Packet) (exchange, error) {
	q.Header.SetRecursionDesired(r.cfg.Recurse)
	ex := exchange{query: q}
	if r.tsig != nil {
		signed, err := dns.SignTSIG(q, *r.tsig, nil, r.now())
		if err != nil {
			return exchange{}, fmt.Errorf("sign query: %w", err)
		}
		ex.query = signed
		ex.requestMAC = signed.Additionals[len(signed.Additionals)-1].(*dns.TSIGRecord).MAC
	}
	wire, err := ex.query.Marshal()
	if err != nil {
		return exchange{}, fmt.Errorf("marshal query: %w", err)
	}
	ex.wire = wire
	return ex, nil
}

// decode parses msg as the answer to ex, checking the signature when the
// resolver signs its queries.
func (r *Resolver) decode(msg []byte, ex exchange, verify bool) (dns.Packet, error) {
	resp, err := dns.ParseResponse(msg, ex.query)
	if err != nil {
		return dns.Packet{}, err
	}
	if r.tsig != nil && verify {
		if _, err := dns.VerifyTSIG(msg, *r.tsig, ex.requestMAC, r.now()); err != nil {
			return dns.Packet{}, err
		}
	}
	return resp, nil
}

// answered records a successful exchange.
func (r *Resolver) answered(resp *dns.Packet, from string, size int) {
	r.lastErr = resp.Header.RCode().String()
	r.answerFrom = from
	r.answerSize = size
	resp.AnswerFrom = from
	resp.AnswerSize = size
	r.log.Debug("answer from", "server", from, "bytes", size, "rcode", r.lastErr)
}

func (r *Resolver) fail(err error) {
	r.lastErr = err.Error()
}

func (r *Resolver) addr(ns string) string {
	return net.JoinHostPort(ns, strconv.Itoa(r.cfg.Port))
}

// deadline bounds a TCP exchange by the tcp timeout. Zero means no limit.
func (r *Resolver) deadline() time.Time {
	if r.cfg.TCPTimeout <= 0 {
		return time.Time{}
	}
	return time.Now().Add(r.cfg.TCPTimeout)
}

// reverseName maps a dotted quad to its in-addr.arpa name.
func reverseName(name string) (string, bool) {
	parts := strings.Split(name, ".")
	if len(parts) != 4 {
		return "", false
	}
	for _, p := range parts {
		if p == "" || strings.Trim(p, "0123456789") != "" {
			return "", false
		}
	}
	return parts[3] + "." + parts[2] + "." + parts[1] + "." + parts[0] + ".in-addr.arpa.", true
}
