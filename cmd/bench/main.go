package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/jroosing/mailprobe/internal/config"
	"github.com/jroosing/mailprobe/internal/dns"
	"github.com/jroosing/mailprobe/internal/resolver"
)

func main() {
	var (
		server      = flag.String("server", "127.0.0.1", "Nameserver address")
		port        = flag.Int("port", 53, "Nameserver port")
		name        = flag.String("name", "example.com", "Query name")
		qtype       = flag.String("type", "A", "Query type")
		concurrency = flag.Int("concurrency", 50, "Number of concurrent workers")
		requests    = flag.Int("requests", 5000, "Total number of requests")
		retrans     = flag.Duration("retrans", 2*time.Second, "Per-round UDP wait")
		useVC       = flag.Bool("tcp", false, "Query over TCP")
	)
	flag.Parse()

	cfg, err := config.Load(config.LoadOptions{
		NoSystem: true,
		Overrides: map[string]string{
			"nameservers": *server,
			"port":        strconv.Itoa(*port),
			"retrans":     retrans.String(),
			"retry":       "1",
			"usevc":       strconv.FormatBool(*useVC),
		},
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "bench: %v\n", err)
		os.Exit(1)
	}
	t := dns.ParseRecordType(*qtype)
	if t == dns.TypeUnknown {
		fmt.Fprintf(os.Stderr, "bench: unknown type %q\n", *qtype)
		os.Exit(2)
	}

	conc := max(*concurrency, 1)
	total := max(*requests, 1)
	per := total / conc
	rem := total % conc

	lat := make([]float64, 0, total)
	var (
		latMu  sync.Mutex
		failed int
	)
	ids := dns.NewRandomIDGenerator()
	ctx := context.Background()

	t0 := time.Now()
	var wg sync.WaitGroup
	for i := range conc {
		n := per
		if i < rem {
			n++
		}
		if n <= 0 {
			continue
		}
		wg.Add(1)
		go func(num int) {
			defer wg.Done()
			// A resolver is not safe for concurrent use: one per worker.
			r := resolver.New(cfg.Resolver, resolver.WithIDGenerator(ids))
			defer r.Close()
			for range num {
				start := time.Now()
				_, err := r.RawQuery(ctx, *name, t, dns.ClassIN)
				ms := float64(time.Since(start).Microseconds()) / 1000.0
				latMu.Lock()
				if err != nil {
					failed++
				} else {
					lat = append(lat, ms)
				}
				latMu.Unlock()
			}
		}(n)
	}
	wg.Wait()
	elapsed := time.Since(t0).Seconds()

	if len(lat) == 0 {
		fmt.Printf("no successful requests (%d failed)\n", failed)
		return
	}
	sort.Float64s(lat)
	qps := float64(len(lat)) / elapsed

	fmt.Printf("server=%s:%d name=%q type=%s concurrency=%d ok=%d failed=%d\n", *server, *port, *name, t, conc, len(lat), failed)
	fmt.Printf("elapsed_s=%.3f qps=%.1f\n", elapsed, qps)
	fmt.Printf("latency_ms p50=%.3f p95=%.3f p99=%.3f min=%.3f max=%.3f\n",
		percentile(lat, 50), percentile(lat, 95), percentile(lat, 99), lat[0], lat[len(lat)-1])
}

func percentile(sorted []float64, p int) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 100 {
		return sorted[len(sorted)-1]
	}
	idx := int(float64(len(sorted))*float64(p)/100.0) - 1
	idx = min(max(idx, 0), len(sorted)-1)
	return sorted[idx]
}
