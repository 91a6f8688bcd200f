package store

import (
	"context"
	"errors"
	"fmt"
	"log"
)

// Backend kinds accepted by OpenBackend.
const (
	KindFile     = "file"
	KindPostgres = "postgres"
	KindDynamo   = "dynamodb"
)

// OpenOptions carries the settings each backend kind needs.
type OpenOptions struct {
	Kind           string
	Path           string
	DatabaseURL    string
	DynamoTable    string
	DynamoEndpoint string
}

// OpenBackend builds the backend named by opts.Kind. The returned release
// func closes whatever connection the backend holds.
func OpenBackend(ctx context.Context, opts OpenOptions) (Backend, func() error, error) {
	noop := func() error { return nil }

	switch opts.Kind {
	case KindFile:
		b, err := NewFileBackend(opts.Path)
		if err != nil {
			return nil, nil, err
		}
		log.Printf("[Store] Using file %s", b.Path())
		return b, noop, nil

	case KindPostgres:
		db, err := ConnectPostgres(opts.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("connect postgres: %w", err)
		}
		b, err := NewPostgresBackend(ctx, db, DefaultDocumentName)
		if err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		log.Println("[Store] Using PostgreSQL document table")
		return b, db.Close, nil

	case KindDynamo:
		if opts.DynamoTable == "" {
			return nil, nil, errors.New("dynamodb table name is required")
		}
		client, err := ConnectDynamo(ctx, opts.DynamoEndpoint)
		if err != nil {
			return nil, nil, err
		}
		log.Printf("[Store] Using DynamoDB table %s", opts.DynamoTable)
		return NewDynamoBackend(client, opts.DynamoTable, DefaultDocumentName), noop, nil

	default:
		return nil, nil, fmt.Errorf("unknown datastore %q", opts.Kind)
	}
}
