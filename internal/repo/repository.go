package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/hamed0406/uptimeengine/internal/domain"
)

var (
	ErrNotFound      = errors.New("record not found")
	ErrAlreadyExists = errors.New("record already exists")
)

// RecordStore is durable per-collection document storage keyed by id.
// Implementations must be safe for concurrent use: Create fails with
// ErrAlreadyExists instead of overwriting and Update fails with ErrNotFound
// instead of creating.
type RecordStore interface {
	Create(ctx context.Context, collection, id string, rec domain.Record) error
	Read(ctx context.Context, collection, id string) (domain.Record, error)
	Update(ctx context.Context, collection, id string, rec domain.Record) error
	Delete(ctx context.Context, collection, id string) error
	List(ctx context.Context, collection string) ([]string, error)
}

// Encode and Decode fix the on-disk representation shared by every backend,
// so a record read back always carries JSON-decoded values.
func Encode(rec domain.Record) ([]byte, error) {
	b, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("encode record: %w", err)
	}
	return b, nil
}

func Decode(b []byte) (domain.Record, error) {
	var rec domain.Record
	if err := json.Unmarshal(b, &rec); err != nil {
		return nil, fmt.Errorf("decode record: %w", err)
	}
	if rec == nil {
		rec = domain.Record{}
	}
	return rec, nil
}
