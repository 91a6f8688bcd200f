package store

import (
	"context"

	"github.com/example/varsha-shop/internal/model"
)

// DocumentStoreInterface is what services depend on: whole-document load
// and save. There is no read-modify-write transaction; two requests that
// load the same snapshot and both save will keep only the later write.
type DocumentStoreInterface interface {
	Load(ctx context.Context) (*model.Document, error)
	Save(ctx context.Context, doc *model.Document) error
}

// Backend persists the raw document bytes.
type Backend interface {
	// Read returns the stored bytes, or exists=false when nothing is stored yet.
	Read(ctx context.Context) (raw []byte, exists bool, err error)

	// Write replaces the stored bytes atomically: a concurrent Read sees
	// either the old or the new document, never a partial one.
	Write(ctx context.Context, raw []byte) error

	// Backup keeps a copy of raw somewhere outside the live document and
	// returns where it went.
	Backup(ctx context.Context, raw []byte) (location string, err error)
}
