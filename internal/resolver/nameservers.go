package resolver

import (
	"context"
	"errors"
	"fmt"
	"net/netip"
	"slices"
	"strings"

	"github.com/jroosing/mailprobe/internal/dns"
)

// SetNameservers replaces the nameserver list. Addresses are used as
// given; host names are looked up with the bootstrap resolver (a copy of
// this resolver's original configuration unless WithBootstrap was used),
// following CNAMEs in the answer to the final A records. Duplicates are
// dropped. When nothing usable results the current list is kept.
//
// The returned error joins the failed host name lookups.
func (r *Resolver) SetNameservers(ctx context.Context, servers ...string) ([]string, error) {
	var (
		addrs []string
		errs  []error
		boot  *Resolver
	)
	for _, ns := range servers {
		if a, err := netip.ParseAddr(ns); err == nil {
			addrs = appendUnique(addrs, a.String())
			continue
		}
		if boot == nil {
			boot = r.bootstrapResolver()
		}
		resp, err := boot.Search(ctx, ns, dns.TypeA, dns.ClassIN)
		if err != nil {
			errs = append(errs, fmt.Errorf("nameserver %s: %w", ns, err))
			continue
		}
		for _, a := range cnameAddrs(boot.candidateNames(ns), resp) {
			addrs = appendUnique(addrs, a)
		}
	}
	if boot != nil && boot != r.bootstrap {
		_ = boot.Close()
	}
	if len(addrs) > 0 {
		r.nameservers = addrs
	}
	return r.Nameservers(), errors.Join(errs...)
}

func (r *Resolver) bootstrapResolver() *Resolver {
	if r.bootstrap != nil {
		return r.bootstrap
	}
	return New(r.cfg, WithLogger(r.log), WithIDGenerator(r.ids))
}

// candidateNames lists the owner names a lookup of ns may answer for:
// ns itself when it has a dot, else ns under each search suffix, or under
// the local domain when the search list is empty, then ns as an absolute
// name.
func (r *Resolver) candidateNames(ns string) []string {
	if strings.Contains(ns, ".") {
		return []string{ns}
	}
	var names []string
	for _, suffix := range r.cfg.SearchList {
		names = append(names, ns+"."+suffix)
	}
	if len(names) == 0 && r.cfg.Domain != "" {
		names = append(names, ns+"."+r.cfg.Domain)
	}
	return append(names, ns)
}

// cnameAddrs collects the A addresses in resp owned by one of names,
// extending names with every CNAME target met along the way.
func cnameAddrs(names []string, resp dns.Packet) []string {
	var addrs []string
	for _, rr := range resp.Answers {
		owner := rr.Header().Name
		if !slices.ContainsFunc(names, func(n string) bool { return dns.EqualNames(n, owner) }) {
			continue
		}
		switch rec := rr.(type) {
		case *dns.NameRecord:
			if rec.T == dns.TypeCNAME {
				names = append(names, rec.Target)
			}
		case *dns.IPRecord:
			if rec.Addr.Is4() {
				addrs = append(addrs, rec.Addr.String())
			}
		}
	}
	return addrs
}

func appendUnique(list []string, v string) []string {
	if slices.Contains(list, v) {
		return list
	}
	return append(list, v)
}
