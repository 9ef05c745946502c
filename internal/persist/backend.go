package persist

import (
	"context"
	"errors"
	"fmt"
)

// ErrNoSnapshot is returned by Load when the backend holds no snapshot yet.
var ErrNoSnapshot = errors.New("no snapshot stored")

// Backend persists the serialized snapshot.
type Backend interface {
	// Load returns the last saved blob, or ErrNoSnapshot.
	Load(ctx context.Context) ([]byte, error)

	// Save replaces the stored blob with data.
	Save(ctx context.Context, data []byte) error

	// Close releases the backend's resources.
	Close() error
}

// Kind names a backend implementation.
type Kind string

const (
	KindSQLite Kind = "sqlite"
	KindFile   Kind = "file"
	KindRedis  Kind = "redis"
	KindMemory Kind = "memory"
)

// Kinds lists the selectable backends.
var Kinds = []Kind{KindSQLite, KindFile, KindRedis, KindMemory}

// Options configures Open.
type Options struct {
	// Path is the SQLite database or JSON file path.
	Path string

	// RedisAddr and RedisKey locate the snapshot for the Redis backend.
	RedisAddr string
	RedisKey  string
}

// Open creates the backend of the given kind.
func Open(ctx context.Context, kind Kind, opts Options) (Backend, error) {
	switch kind {
	case KindSQLite:
		if opts.Path == "" {
			return nil, fmt.Errorf("open sqlite backend: database path is required")
		}
		return OpenSQLite(opts.Path)
	case KindFile:
		if opts.Path == "" {
			return nil, fmt.Errorf("open file backend: file path is required")
		}
		return NewFile(opts.Path), nil
	case KindRedis:
		return OpenRedis(ctx, opts.RedisAddr, opts.RedisKey)
	case KindMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown backend %q: must be one of %v", kind, Kinds)
	}
}
