package resolver

import (
	"bytes"
	"encoding/binary"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jroosing/mailprobe/internal/dns"
)

func TestFraming(t *testing.T) {
	var buf bytes.Buffer
	msg := []byte{0x12, 0x34, 0x01, 0x00}
	require.NoError(t, writeMsg(&buf, msg))
	assert.Equal(t, []byte{0x00, 0x04, 0x12, 0x34, 0x01, 0x00}, buf.Bytes())

	got, err := readMsg(&buf)
	require.NoError(t, err)
	assert.Equal(t, msg, got)

	_, err = readMsg(bytes.NewReader([]byte{0x00}))
	require.ErrorIs(t, err, io.ErrUnexpectedEOF)

	_, err = readMsg(bytes.NewReader([]byte{0x00, 0x10, 0x01, 0x02}))
	require.ErrorIs(t, err, io.ErrUnexpectedEOF)
	assert.Contains(t, err.Error(), "expected 16 bytes, received 2")

	_, err = readMsg(bytes.NewReader([]byte{0x00, 0x00}))
	require.ErrorIs(t, err, dns.ErrFormat)

	require.ErrorIs(t, writeMsg(io.Discard, make([]byte, dns.MaxTCPMessageSize+1)), dns.ErrValue)
}

func TestSend_UseVCReusesConnection(t *testing.T) {
	s := startServer(t, "127.0.0.1", 0)
	s.onTCP(framed(answerA("192.0.2.5")))
	cfg := testConfig(s.port, "127.0.0.1")
	cfg.UseVC = true
	r := newTestResolver(cfg)
	defer r.Close()

	for range 3 {
		resp, err := r.Query(t.Context(), "example.com", dns.TypeA, dns.ClassIN)
		require.NoError(t, err)
		assert.Equal(t, "127.0.0.1", resp.AnswerFrom)
	}
	assert.Equal(t, int32(0), s.udpQueries.Load())
	assert.Equal(t, int32(3), s.tcpQueries.Load())
	assert.Equal(t, int32(1), s.accepted.Load(), "one cached connection")
	assert.Len(t, r.conns, 1)

	require.NoError(t, r.Close())
	assert.Empty(t, r.conns)
}

func TestSend_LargeQueryUsesTCP(t *testing.T) {
	s := startServer(t, "127.0.0.1", 0)
	s.onTCP(framed(func(_ []byte, q dns.Packet) [][]byte {
		b, _ := dns.BuildResponse(dns.Packet{Header: q.Header, Questions: q.Questions}, aRecord("big.example", "192.0.2.8")).Marshal()
		return [][]byte{b}
	}))
	r := newTestResolver(testConfig(s.port, "127.0.0.1"))
	defer r.Close()

	q := dns.NewQuery(99, dns.Question{Name: "big.example", Type: dns.TypeA, Class: dns.ClassIN})
	for i := range 5 {
		txt := &dns.TXTRecord{H: dns.NewRRHeader("pad.example", dns.ClassIN, 0), Text: []string{string(bytes.Repeat([]byte{'a' + byte(i)}, 200))}}
		q.Additionals = append(q.Additionals, txt)
	}
	resp, err := r.Send(t.Context(), q)
	require.NoError(t, err)
	assert.Len(t, resp.Answers, 1)
	assert.Equal(t, int32(0), s.udpQueries.Load())
}

func TestSend_StaleCachedConnectionIsReplaced(t *testing.T) {
	s := startServer(t, "127.0.0.1", 0)
	s.onTCP(func(raw []byte, q dns.Packet) [][]byte {
		out := framed(answerA("192.0.2.6"))(raw, q)
		return append(out, closeConn)
	})
	cfg := testConfig(s.port, "127.0.0.1")
	cfg.UseVC = true
	r := newTestResolver(cfg)
	defer r.Close()

	for range 2 {
		_, err := r.Query(t.Context(), "example.com", dns.TypeA, dns.ClassIN)
		require.NoError(t, err)
	}
	assert.Equal(t, int32(2), s.accepted.Load())
}

func TestSend_TCPShortReadMovesToNextServer(t *testing.T) {
	broken := startServer(t, "127.0.0.1", 0)
	broken.onTCP(func(_ []byte, _ dns.Packet) [][]byte {
		short := binary.BigEndian.AppendUint16(nil, 100)
		return [][]byte{append(short, 1, 2, 3), closeConn}
	})
	good := startServer(t, "127.0.0.2", broken.port)
	good.onTCP(framed(answerA("192.0.2.3")))

	cfg := testConfig(broken.port, "127.0.0.1", "127.0.0.2")
	cfg.UseVC = true
	r := newTestResolver(cfg)
	defer r.Close()

	resp, err := r.Query(t.Context(), "example.com", dns.TypeA, dns.ClassIN)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.2", resp.AnswerFrom)
	assert.Equal(t, int32(1), broken.tcpQueries.Load(), "the broken server is not retried")
	assert.NotContains(t, r.conns, r.addr("127.0.0.1"))
}

func TestSend_TCPAllServersFail(t *testing.T) {
	s := startServer(t, "127.0.0.1", 0)
	s.onTCP(func(_ []byte, _ dns.Packet) [][]byte { return [][]byte{closeConn} })
	cfg := testConfig(s.port, "127.0.0.1")
	cfg.UseVC = true
	r := newTestResolver(cfg)

	_, err := r.Query(t.Context(), "example.com", dns.TypeA, dns.ClassIN)
	require.ErrorIs(t, err, ErrConnFailed)
	assert.Contains(t, r.LastError(), "connection failed")
}

func TestSend_TSIGSignedExchange(t *testing.T) {
	key, err := dns.ParseTSIGKey("xfr.example", dns.HMACSHA256, "c2VjcmV0LXNlY3JldC1zZWNyZXQ=")
	require.NoError(t, err)

	s := startServer(t, "127.0.0.1", 0)
	s.onTCP(framed(func(raw []byte, q dns.Packet) [][]byte {
		rec, err := dns.VerifyTSIG(raw, key, nil, time.Now())
		if err != nil {
			return nil
		}
		unsigned := dns.Packet{Header: q.Header, Questions: q.Questions}
		resp := dns.BuildResponse(unsigned, aRecord(q.Questions[0].Name, "192.0.2.77"))
		signed, err := dns.SignTSIG(resp, key, rec.MAC, time.Now())
		if err != nil {
			return nil
		}
		b, _ := signed.Marshal()
		return [][]byte{b}
	}))
	cfg := testConfig(s.port, "127.0.0.1")
	cfg.UseVC = true
	r := newTestResolver(cfg, WithTSIG(key))
	defer r.Close()

	resp, err := r.Query(t.Context(), "example.com", dns.TypeA, dns.ClassIN)
	require.NoError(t, err, "server only answers correctly signed queries")
	assert.Equal(t, "192.0.2.77", resp.Answers[0].RDataString())
	require.Len(t, resp.Additionals, 1)
	assert.Equal(t, dns.TypeTSIG, resp.Additionals[0].Type())
}

func TestSend_TSIGRejectsUnsignedResponse(t *testing.T) {
	key, err := dns.ParseTSIGKey("xfr.example", dns.HMACMD5, "c2VjcmV0")
	require.NoError(t, err)

	s := startServer(t, "127.0.0.1", 0)
	s.onTCP(framed(func(_ []byte, q dns.Packet) [][]byte {
		unsigned := dns.Packet{Header: q.Header, Questions: q.Questions}
		b, _ := dns.BuildResponse(unsigned, aRecord(q.Questions[0].Name, "192.0.2.1")).Marshal()
		return [][]byte{b}
	}))
	cfg := testConfig(s.port, "127.0.0.1")
	cfg.UseVC = true
	r := newTestResolver(cfg, WithTSIG(key))
	defer r.Close()

	_, err = r.Query(t.Context(), "example.com", dns.TypeA, dns.ClassIN)
	require.ErrorIs(t, err, ErrConnFailed)
	require.ErrorIs(t, err, dns.ErrTSIG)
}
