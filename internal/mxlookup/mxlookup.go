// Package mxlookup resolves the mail exchangers of a domain. The operating
// system resolver is asked first when enabled; the built-in resolver is
// used when it is disabled or fails.
package mxlookup

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"slices"
	"strings"

	"github.com/jroosing/mailprobe/internal/dns"
	"github.com/jroosing/mailprobe/internal/logging"
)

// ErrNoMX is returned when a domain has no MX records.
var ErrNoMX = errors.New("no mail exchangers")

// Source names where a result came from.
type Source string

const (
	SourcePlatform Source = "platform"
	SourceResolver Source = "resolver"
)

// Host is one mail exchanger.
type Host struct {
	Host       string `json:"host"`
	Preference uint16 `json:"preference"`
}

// Result is the MX list of a domain, lowest preference first.
type Result struct {
	Domain string `json:"domain"`
	Source Source `json:"source"`
	Hosts  []Host `json:"hosts"`
}

// Querier is the part of resolver.Resolver used for the fallback lookup.
type Querier interface {
	Query(ctx context.Context, name string, qtype dns.RecordType, qclass dns.RecordClass) (dns.Packet, error)
}

// PlatformFunc looks up MX records with the operating system resolver.
type PlatformFunc func(ctx context.Context, domain string) ([]*net.MX, error)

// Option configures a Lookup.
type Option func(*Lookup)

// WithPlatform enables the platform lookup. A nil fn uses
// net.DefaultResolver.
func WithPlatform(fn PlatformFunc) Option {
	return func(l *Lookup) {
		if fn == nil {
			fn = net.DefaultResolver.LookupMX
		}
		l.platform = fn
	}
}

// WithLogger sets the logger.
func WithLogger(log *slog.Logger) Option {
	return func(l *Lookup) { l.log = log }
}

// Lookup finds mail exchangers.
type Lookup struct {
	resolver Querier
	platform PlatformFunc
	log      *slog.Logger
}

// New returns a Lookup that falls back to q.
func New(q Querier, opts ...Option) *Lookup {
	l := &Lookup{resolver: q, log: logging.Discard()}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Lookup returns the mail exchangers of domain sorted by preference.
// Exchangers with equal preference keep the order they were received in.
func (l *Lookup) Lookup(ctx context.Context, domain string) (Result, error) {
	domain = dns.NormalizeName(domain)
	if domain == "" {
		return Result{}, fmt.Errorf("empty domain: %w", dns.ErrValue)
	}

	if l.platform != nil {
		mxs, err := l.platform(ctx, domain)
		if err == nil && len(mxs) > 0 {
			hosts := make([]Host, 0, len(mxs))
			for _, mx := range mxs {
				hosts = append(hosts, Host{Host: strings.TrimSuffix(mx.Host, "."), Preference: mx.Pref})
			}
			return sorted(domain, SourcePlatform, hosts), nil
		}
		l.log.Debug("platform mx lookup failed, using resolver", "domain", domain, "err", err)
	}

	if l.resolver == nil {
		return Result{}, fmt.Errorf("%s: %w", domain, ErrNoMX)
	}
	resp, err := l.resolver.Query(ctx, domain, dns.TypeMX, dns.ClassIN)
	if err != nil {
		return Result{}, fmt.Errorf("mx %s: %w", domain, err)
	}
	var hosts []Host
	for _, rr := range resp.Answers {
		if mx, ok := rr.(*dns.MXRecord); ok {
			hosts = append(hosts, Host{Host: mx.Exchange, Preference: mx.Preference})
		}
	}
	if len(hosts) == 0 {
		return Result{}, fmt.Errorf("%s: %w", domain, ErrNoMX)
	}
	return sorted(domain, SourceResolver, hosts), nil
}

func sorted(domain string, src Source, hosts []Host) Result {
	slices.SortStableFunc(hosts, func(a, b Host) int { return cmp.Compare(a.Preference, b.Preference) })
	return Result{Domain: domain, Source: src, Hosts: hosts}
}
