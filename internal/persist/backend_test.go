package persist

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// backendContract exercises the behaviour every backend must share.
func backendContract(t *testing.T, b Backend) {
	t.Helper()
	ctx := context.Background()

	_, err := b.Load(ctx)
	require.ErrorIs(t, err, ErrNoSnapshot)

	require.NoError(t, b.Save(ctx, []byte(`{"students":[]}`)))
	got, err := b.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, `{"students":[]}`, string(got))

	// Save replaces, never appends
	require.NoError(t, b.Save(ctx, []byte(`{"students":[1]}`)))
	got, err = b.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, `{"students":[1]}`, string(got))
}

func TestSQLite_Contract(t *testing.T) {
	b, err := OpenSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { b.Close() })

	backendContract(t, b)
}

func TestSQLite_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	ctx := context.Background()

	b1, err := OpenSQLite(path)
	require.NoError(t, err)
	require.NoError(t, b1.Save(ctx, []byte("snapshot-1")))
	require.NoError(t, b1.Close())

	b2, err := OpenSQLite(path)
	require.NoError(t, err)
	defer b2.Close()

	got, err := b2.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "snapshot-1", string(got))

	var version int
	require.NoError(t, b2.DB().QueryRow("PRAGMA user_version").Scan(&version))
	assert.Equal(t, schemaVersion, version)

	var size int
	require.NoError(t, b2.DB().QueryRow("SELECT bytes FROM snapshots WHERE name = ?", DefaultSnapshotName).Scan(&size))
	assert.Equal(t, len("snapshot-1"), size)
}

func TestSQLite_Pragmas(t *testing.T) {
	b, err := OpenSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	defer b.Close()

	var mode string
	require.NoError(t, b.DB().QueryRow("PRAGMA journal_mode").Scan(&mode))
	assert.Equal(t, "wal", mode)
}

func TestSQLite_FreshFileStampedAtBaseline(t *testing.T) {
	b, err := OpenSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	defer b.Close()

	var version, timeout int
	require.NoError(t, b.DB().QueryRow("PRAGMA user_version").Scan(&version))
	assert.Equal(t, 1, version)
	require.NoError(t, b.DB().QueryRow("PRAGMA busy_timeout").Scan(&timeout))
	assert.Equal(t, 5000, timeout)
}

func TestSQLite_RejectsNewerSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	b, err := OpenSQLite(path)
	require.NoError(t, err)
	_, err = b.DB().Exec("PRAGMA user_version = 7")
	require.NoError(t, err)
	require.NoError(t, b.Close())

	_, err = OpenSQLite(path)
	require.ErrorIs(t, err, ErrSchemaTooNew)
	assert.Contains(t, err.Error(), "v7")
}

func TestSQLite_InvalidPath(t *testing.T) {
	_, err := OpenSQLite("/nonexistent/dir/test.db")
	assert.Error(t, err)
}

func TestSQLite_CloseNilDB(t *testing.T) {
	s := &SQLite{}
	assert.NoError(t, s.Close())
}

func TestFile_Contract(t *testing.T) {
	backendContract(t, NewFile(filepath.Join(t.TempDir(), "data.json")))
}

func TestFile_LeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	b := NewFile(filepath.Join(dir, "data.json"))
	require.NoError(t, b.Save(context.Background(), []byte("{}")))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "data.json", entries[0].Name())
}

func TestFile_SaveIntoMissingDirectoryFails(t *testing.T) {
	b := NewFile(filepath.Join(t.TempDir(), "missing", "data.json"))
	assert.Error(t, b.Save(context.Background(), []byte("{}")))
}

func TestRedis_Contract(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	b := NewRedis(client, "")
	t.Cleanup(func() { b.Close() })

	backendContract(t, b)
	assert.True(t, mr.Exists(DefaultRedisKey))
}

func TestOpenRedis_PingsServer(t *testing.T) {
	mr := miniredis.RunT(t)

	b, err := OpenRedis(context.Background(), mr.Addr(), "custom:key")
	require.NoError(t, err)
	defer b.Close()

	require.NoError(t, b.Save(context.Background(), []byte("x")))
	v, err := mr.Get("custom:key")
	require.NoError(t, err)
	assert.Equal(t, "x", v)
}

func TestOpenRedis_RequiresAddress(t *testing.T) {
	_, err := OpenRedis(context.Background(), "", "")
	assert.Error(t, err)
}

func TestMemory_Contract(t *testing.T) {
	backendContract(t, NewMemory())
}

func TestMemory_FailSaves(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	boom := errors.New("boom")

	m.FailSaves(boom)
	assert.ErrorIs(t, m.Save(ctx, []byte("x")), boom)
	assert.Equal(t, 0, m.Saves())

	m.FailSaves(nil)
	require.NoError(t, m.Save(ctx, []byte("x")))
	assert.Equal(t, 1, m.Saves())
}

func TestOpen_SelectsBackend(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	b, err := Open(ctx, KindSQLite, Options{Path: filepath.Join(dir, "x.db")})
	require.NoError(t, err)
	assert.IsType(t, &SQLite{}, b)
	b.Close()

	b, err = Open(ctx, KindFile, Options{Path: filepath.Join(dir, "x.json")})
	require.NoError(t, err)
	assert.IsType(t, &File{}, b)

	b, err = Open(ctx, KindMemory, Options{})
	require.NoError(t, err)
	assert.IsType(t, &Memory{}, b)

	_, err = Open(ctx, KindSQLite, Options{})
	assert.Error(t, err)

	_, err = Open(ctx, Kind("postgres"), Options{})
	assert.ErrorContains(t, err, "unknown backend")
}
