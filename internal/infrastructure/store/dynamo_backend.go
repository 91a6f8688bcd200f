package store

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// DynamoAPI is the subset of the DynamoDB client the backend calls.
type DynamoAPI interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
}

// dynamoDocument is the item layout. The table's partition key is "name".
type dynamoDocument struct {
	Name      string `dynamodbav:"name"`
	Body      string `dynamodbav:"body"`
	UpdatedAt string `dynamodbav:"updated_at"`
}

// DynamoBackend stores the whole document as one item. Backups are extra
// items in the same table keyed "<name>#backup#<unix-millis>". An item is
// capped at 400 KB, which bounds the catalogue and order history this
// backend can hold.
type DynamoBackend struct {
	client DynamoAPI
	table  string
	name   string
	now    func() time.Time
}

func NewDynamoBackend(client DynamoAPI, table, name string) *DynamoBackend {
	return &DynamoBackend{client: client, table: table, name: name, now: time.Now}
}

func (b *DynamoBackend) Read(ctx context.Context) ([]byte, bool, error) {
	result, err := b.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(b.table),
		Key:            b.key(b.name),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, false, fmt.Errorf("failed to get document: %w", err)
	}
	if result.Item == nil {
		return nil, false, nil
	}

	var doc dynamoDocument
	if err := attributevalue.UnmarshalMap(result.Item, &doc); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal document item: %w", err)
	}
	return []byte(doc.Body), true, nil
}

// Write overwrites the item unconditionally; a single PutItem is atomic.
func (b *DynamoBackend) Write(ctx context.Context, raw []byte) error {
	return b.put(ctx, b.name, raw)
}

func (b *DynamoBackend) Backup(ctx context.Context, raw []byte) (string, error) {
	name := fmt.Sprintf("%s#backup#%d", b.name, b.now().UnixMilli())
	if err := b.put(ctx, name, raw); err != nil {
		return "", err
	}
	return b.table + "/" + name, nil
}

func (b *DynamoBackend) put(ctx context.Context, name string, raw []byte) error {
	av, err := attributevalue.MarshalMap(dynamoDocument{
		Name:      name,
		Body:      string(raw),
		UpdatedAt: b.now().UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal document item: %w", err)
	}

	_, err = b.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(b.table),
		Item:      av,
	})
	if err != nil {
		return fmt.Errorf("failed to put document: %w", err)
	}
	return nil
}

func (b *DynamoBackend) key(name string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"name": &types.AttributeValueMemberS{Value: name},
	}
}

// ConnectDynamo builds a client from the default AWS credential chain. A
// non-empty endpoint points it at DynamoDB Local or another emulator.
func ConnectDynamo(ctx context.Context, endpoint string) (*dynamodb.Client, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return dynamodb.NewFromConfig(cfg, func(o *dynamodb.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	}), nil
}
