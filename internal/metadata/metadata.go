// Package metadata defines the file metadata provider contract and the
// concurrent resolver that fans out per-file lookups.
package metadata

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// ErrNotFound indicates the provider has no file for the requested id.
// Resolution swallows it and drops the id from the result.
var ErrNotFound = errors.New("metadata: file not found")

// FileMetadata is the metadata requested for every file id. All fields are
// required; a missing field downstream is a provider contract violation.
type FileMetadata struct {
	Name         string
	ViewURL      string
	MIMEType     string
	ModifiedTime string
}

// Provider fetches metadata for a single file id.
type Provider interface {
	GetFileMetadata(ctx context.Context, id string) (*FileMetadata, error)
}

// Resolve fetches metadata for every id concurrently, one request per id.
// The result preserves input order and omits ids the provider reports as
// not found. Any other provider error aborts the whole resolution.
func Resolve(ctx context.Context, provider Provider, ids []string) ([]FileMetadata, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	results := make([]*FileMetadata, len(ids))
	errs := make([]error, len(ids))

	var wg sync.WaitGroup
	for i, id := range ids {
		wg.Add(1)
		go func(i int, id string) {
			defer wg.Done()
			meta, err := provider.GetFileMetadata(ctx, id)
			if err != nil {
				if errors.Is(err, ErrNotFound) {
					return
				}
				errs[i] = fmt.Errorf("metadata: resolving %s: %w", id, err)
				return
			}
			results[i] = meta
		}(i, id)
	}
	wg.Wait()

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}

	resolved := make([]FileMetadata, 0, len(ids))
	for _, meta := range results {
		if meta != nil {
			resolved = append(resolved, *meta)
		}
	}
	return resolved, nil
}
