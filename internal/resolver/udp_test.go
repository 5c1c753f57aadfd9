package resolver

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jroosing/mailprobe/internal/dns"
)

func TestUDP_MismatchedIDTimesOut(t *testing.T) {
	s := startServer(t, "127.0.0.1", 0)
	s.onUDP(func(_ []byte, q dns.Packet) [][]byte {
		other := q
		other.Header.ID++
		b, _ := dns.BuildResponse(other, aRecord(q.Questions[0].Name, "192.0.2.1")).Marshal()
		return [][]byte{b}
	})
	cfg := testConfig(s.port, "127.0.0.1")
	cfg.Retry = 2
	cfg.Retrans = 60 * time.Millisecond
	r := newTestResolver(cfg)

	start := time.Now()
	_, err := r.Query(t.Context(), "example.com", dns.TypeA, dns.ClassIN)
	require.ErrorIs(t, err, ErrTimeout)
	assert.Equal(t, "query timed out", err.Error())
	assert.Equal(t, "query timed out", r.LastError())
	assert.GreaterOrEqual(t, time.Since(start), 150*time.Millisecond, "waits through both rounds")
	assert.Equal(t, int32(2), s.udpQueries.Load(), "query is resent every round")
}

func TestUDP_IgnoresQueriesEchoedBack(t *testing.T) {
	s := startServer(t, "127.0.0.1", 0)
	s.onUDP(func(raw []byte, q dns.Packet) [][]byte {
		good, _ := dns.BuildResponse(q, aRecord(q.Questions[0].Name, "192.0.2.9")).Marshal()
		return [][]byte{raw, {0xde, 0xad}, good}
	})
	r := newTestResolver(testConfig(s.port, "127.0.0.1"))

	resp, err := r.Query(t.Context(), "example.com", dns.TypeA, dns.ClassIN)
	require.NoError(t, err)
	assert.Equal(t, "192.0.2.9", resp.Answers[0].RDataString())
}

func TestUDP_SecondServerAnswers(t *testing.T) {
	silent := startServer(t, "127.0.0.1", 0)
	s := startServer(t, "127.0.0.2", silent.port)
	s.onUDP(answerA("192.0.2.2"))

	cfg := testConfig(s.port, "127.0.0.1", "127.0.0.2")
	cfg.Retrans = 100 * time.Millisecond
	r := newTestResolver(cfg)

	resp, err := r.Query(t.Context(), "example.com", dns.TypeA, dns.ClassIN)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.2", resp.AnswerFrom)
	assert.Equal(t, int32(1), silent.udpQueries.Load())
	assert.Equal(t, int32(1), s.udpQueries.Load())
}

func TestUDP_FirstRoundWaitsFullRetransPerServer(t *testing.T) {
	silent := startServer(t, "127.0.0.1", 0)
	s := startServer(t, "127.0.0.2", silent.port)
	s.onUDP(answerA("192.0.2.2"))

	cfg := testConfig(s.port, "127.0.0.1", "127.0.0.2")
	cfg.Retrans = 300 * time.Millisecond
	r := newTestResolver(cfg)

	start := time.Now()
	resp, err := r.Query(t.Context(), "example.com", dns.TypeA, dns.ClassIN)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.2", resp.AnswerFrom)
	assert.GreaterOrEqual(t, time.Since(start), 280*time.Millisecond,
		"the silent server gets the whole retrans, not a share of it")
}

func TestUDP_RefusedByEveryServer(t *testing.T) {
	s := startServer(t, "127.0.0.1", 0)
	port := s.port
	s.close()

	cfg := testConfig(port, "127.0.0.1")
	cfg.Retry = 3
	cfg.Retrans = 2 * time.Second
	r := newTestResolver(cfg)

	start := time.Now()
	_, err := r.Query(t.Context(), "example.com", dns.TypeA, dns.ClassIN)
	require.ErrorIs(t, err, ErrConnFailed)
	assert.Less(t, time.Since(start), time.Second, "refusal does not wait out the rounds")
}

func TestSend_TruncatedRetriesOverTCP(t *testing.T) {
	s := startServer(t, "127.0.0.1", 0)
	s.onUDP(func(_ []byte, q dns.Packet) [][]byte {
		resp := dns.BuildResponse(q)
		resp.Header.SetTruncated(true)
		b, _ := resp.Marshal()
		return [][]byte{b}
	})
	s.onTCP(framed(answerA("192.0.2.44")))
	r := newTestResolver(testConfig(s.port, "127.0.0.1"))
	defer r.Close()

	resp, err := r.Query(t.Context(), "big.example.com", dns.TypeA, dns.ClassIN)
	require.NoError(t, err)
	assert.False(t, resp.Header.Truncated())
	assert.Equal(t, "192.0.2.44", resp.Answers[0].RDataString())
	assert.Equal(t, int32(1), s.udpQueries.Load())
	assert.Equal(t, int32(1), s.tcpQueries.Load())
}

func TestSend_IgnoreTCKeepsTruncatedAnswer(t *testing.T) {
	s := startServer(t, "127.0.0.1", 0)
	s.onUDP(func(_ []byte, q dns.Packet) [][]byte {
		resp := dns.BuildResponse(q, aRecord(q.Questions[0].Name, "192.0.2.1"))
		resp.Header.SetTruncated(true)
		b, _ := resp.Marshal()
		return [][]byte{b}
	})
	cfg := testConfig(s.port, "127.0.0.1")
	cfg.IgnoreTC = true
	r := newTestResolver(cfg)

	resp, err := r.Query(t.Context(), "big.example.com", dns.TypeA, dns.ClassIN)
	require.NoError(t, err)
	assert.True(t, resp.Header.Truncated())
	assert.Equal(t, int32(0), s.tcpQueries.Load())
}
