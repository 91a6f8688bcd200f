package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/example/varsha-shop/internal/model"
)

var (
	ErrClosed = errors.New("document store is closed")

	// ErrIncompatibleDocument means the stored bytes are a well-formed JSON
	// object whose values do not fit the document types. It is left untouched.
	ErrIncompatibleDocument = errors.New("stored document does not match the expected shape")
)

type writeRequest struct {
	ctx  context.Context
	data []byte
	done chan error
}

// DocumentStore serialises every write through one writer goroutine.
// Save calls are applied in the order the writer receives them, and each
// caller returns only once its own write has landed.
type DocumentStore struct {
	backend Backend

	writes    chan writeRequest
	quit      chan struct{}
	stopped   chan struct{}
	closeOnce sync.Once
}

// NewDocumentStore starts the writer for backend. Call Close to stop it.
func NewDocumentStore(backend Backend) *DocumentStore {
	s := &DocumentStore{
		backend: backend,
		writes:  make(chan writeRequest),
		quit:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
	go s.run()
	return s
}

func (s *DocumentStore) run() {
	defer close(s.stopped)
	for {
		select {
		case req := <-s.writes:
			req.done <- s.backend.Write(req.ctx, req.data)
		case <-s.quit:
			return
		}
	}
}

// Close stops the writer after any write in progress finishes.
func (s *DocumentStore) Close() error {
	s.closeOnce.Do(func() { close(s.quit) })
	<-s.stopped
	return nil
}

// Load reads the whole document. A missing document is created empty; an
// unparsable one, or one whose top level is not an object, is backed up and
// replaced by the empty shape.
func (s *DocumentStore) Load(ctx context.Context) (*model.Document, error) {
	raw, exists, err := s.backend.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}

	if !exists {
		doc := model.NewDocument()
		if err := s.Save(ctx, doc); err != nil {
			return nil, fmt.Errorf("initialise document: %w", err)
		}
		return doc, nil
	}

	var doc model.Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		if json.Valid(raw) && isObject(raw) {
			return nil, fmt.Errorf("%w: %v", ErrIncompatibleDocument, err)
		}
		return s.reset(ctx, raw, err)
	}
	if !isObject(raw) {
		return s.reset(ctx, raw, errors.New("top level is not an object"))
	}
	doc.Normalize()
	return &doc, nil
}

func isObject(raw []byte) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '{'
}

// reset handles a corrupted document. The caller never sees the corruption;
// it only fails if the raw bytes could not be preserved first.
func (s *DocumentStore) reset(ctx context.Context, raw []byte, parseErr error) (*model.Document, error) {
	location, err := s.backend.Backup(ctx, raw)
	if err != nil {
		return nil, fmt.Errorf("back up corrupted document: %w", err)
	}
	log.Printf("[Store] Document unparsable (%v), backed up to %s and reset", parseErr, location)

	doc := model.NewDocument()
	if err := s.Save(ctx, doc); err != nil {
		return nil, fmt.Errorf("reset document: %w", err)
	}
	return doc, nil
}

// Save writes the whole document.
func (s *DocumentStore) Save(ctx context.Context, doc *model.Document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}

	req := writeRequest{ctx: ctx, data: data, done: make(chan error, 1)}
	select {
	case s.writes <- req:
	case <-s.quit:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}

	if err := <-req.done; err != nil {
		return fmt.Errorf("write document: %w", err)
	}
	return nil
}

// Backup copies the currently stored bytes, if any, through the backend.
func (s *DocumentStore) Backup(ctx context.Context) (string, error) {
	raw, exists, err := s.backend.Read(ctx)
	if err != nil {
		return "", fmt.Errorf("read document: %w", err)
	}
	if !exists {
		return "", errors.New("no document stored yet")
	}
	return s.backend.Backup(ctx, raw)
}
