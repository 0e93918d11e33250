package filestore

import (
	"context"
	"errors"
	"fmt"
	"io"
	mathrand "math/rand"
	"strings"
	"sync"
	"time"

	"github.com/frahmantamala/admin-dashboard/internal"
	"github.com/oklog/ulid/v2"
)

var ErrNotFound = errors.New("filestore: object not found")

// Store keeps uploaded report files.
type Store interface {
	Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}

var (
	entropyMu sync.Mutex
	entropy   = ulid.Monotonic(mathrand.New(mathrand.NewSource(time.Now().UnixNano())), 0)
)

// NewKey returns a sortable object key scoped to the organization, e.g.
// org/12/01J9Z3....pdf
func NewKey(organizationID int64, ext string) string {
	entropyMu.Lock()
	id := ulid.MustNew(ulid.Timestamp(time.Now()), entropy).String()
	entropyMu.Unlock()

	ext = strings.TrimPrefix(strings.ToLower(ext), ".")
	return fmt.Sprintf("org/%d/%s.%s", organizationID, id, ext)
}

// New builds the store selected by cfg.Driver.
func New(ctx context.Context, cfg internal.StorageConfig) (Store, error) {
	switch cfg.Driver {
	case internal.StorageDriverS3:
		return NewS3Store(ctx, cfg)
	case internal.StorageDriverLocal, "":
		return NewLocalStore(cfg.LocalDir)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}
