package database

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jroosing/mailprobe/internal/dns"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "archive.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func sampleZone() []dns.Record {
	soa := &dns.SOARecord{
		H:     dns.NewRRHeader("example.com", dns.ClassIN, 3600),
		MName: "ns1.example.com", RName: "hostmaster.example.com",
		Serial: 2024060101, Refresh: 7200, Retry: 900, Expire: 1209600, Minimum: 300,
	}
	return []dns.Record{
		soa,
		dns.NewMXRecord(dns.NewRRHeader("example.com", dns.ClassIN, 3600), 10, "mail.example.com"),
		dns.NewNSRecord(dns.NewRRHeader("example.com", dns.ClassIN, 3600), "ns1.example.com"),
	}
}

func TestOpen_AppliesMigrationsOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "archive.db")
	db, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, db.Health())
	v, err := db.SchemaVersion()
	require.NoError(t, err)
	assert.Equal(t, uint(1), v)
	require.NoError(t, db.Close())

	db, err = Open(path)
	require.NoError(t, err, "reopening an up to date database is not an error")
	defer db.Close()
	v, err = db.SchemaVersion()
	require.NoError(t, err)
	assert.Equal(t, uint(1), v)
}

func TestNewTransfer(t *testing.T) {
	started := time.Now().Add(-time.Second)
	tr := NewTransfer("Example.COM.", dns.ClassIN, "192.0.2.53", started, sampleZone(), nil)
	assert.Equal(t, "example.com", tr.Zone)
	assert.Equal(t, "IN", tr.Class)
	assert.True(t, tr.Complete)
	assert.Empty(t, tr.Error)
	assert.Equal(t, uint32(2024060101), tr.Serial)
	assert.Equal(t, 3, tr.RecordCount)
	assert.Equal(t, TransferRecord{Name: "example.com", TTL: 3600, Class: "IN", Type: "MX", RData: "10 mail.example.com."}, tr.Records[1])

	failed := NewTransfer("example.com", dns.ClassIN, "192.0.2.53", started, sampleZone()[:1], errors.New("zone transfer failed: errorcode REFUSED returned"))
	assert.False(t, failed.Complete)
	assert.Contains(t, failed.Error, "REFUSED")
	assert.Equal(t, 1, failed.RecordCount)
}

func TestSaveAndGetTransfer(t *testing.T) {
	db := openTestDB(t)
	ctx := t.Context()

	tr := NewTransfer("example.com", dns.ClassIN, "192.0.2.53", time.Now(), sampleZone(), nil)
	id, err := db.SaveTransfer(ctx, tr)
	require.NoError(t, err)
	assert.Positive(t, id)

	got, err := db.GetTransfer(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, id, got.ID)
	assert.Equal(t, "example.com", got.Zone)
	assert.Equal(t, "192.0.2.53", got.Server)
	assert.True(t, got.Complete)
	assert.Equal(t, tr.Serial, got.Serial)
	assert.Equal(t, tr.StartedAt.UnixMilli(), got.StartedAt.UnixMilli())
	assert.Equal(t, tr.Records, got.Records, "records keep transfer order")

	_, err = db.GetTransfer(ctx, id+100)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestListTransfers(t *testing.T) {
	db := openTestDB(t)
	ctx := t.Context()
	base := time.Now().Add(-time.Hour)

	for i, zone := range []string{"example.com", "example.org", "example.com"} {
		tr := NewTransfer(zone, dns.ClassIN, "192.0.2.53", base.Add(time.Duration(i)*time.Minute), sampleZone(), nil)
		_, err := db.SaveTransfer(ctx, tr)
		require.NoError(t, err)
	}

	all, err := db.ListTransfers(ctx, "", 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, int64(3), all[0].ID, "newest first")
	assert.Nil(t, all[0].Records)
	assert.Equal(t, 3, all[0].RecordCount)

	com, err := db.ListTransfers(ctx, "EXAMPLE.com.", 0)
	require.NoError(t, err)
	assert.Len(t, com, 2)

	limited, err := db.ListTransfers(ctx, "", 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)

	none, err := db.ListTransfers(ctx, "example.net", 0)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestDeleteTransfer(t *testing.T) {
	db := openTestDB(t)
	ctx := t.Context()

	id, err := db.SaveTransfer(ctx, NewTransfer("example.com", dns.ClassIN, "192.0.2.53", time.Now(), sampleZone(), nil))
	require.NoError(t, err)
	require.NoError(t, db.DeleteTransfer(ctx, id))

	_, err = db.GetTransfer(ctx, id)
	require.ErrorIs(t, err, ErrNotFound)
	require.ErrorIs(t, db.DeleteTransfer(ctx, id), ErrNotFound)

	var orphans int
	require.NoError(t, db.conn.QueryRow("SELECT COUNT(*) FROM transfer_records").Scan(&orphans))
	assert.Zero(t, orphans, "records are removed with their transfer")
}
