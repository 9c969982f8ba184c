// Package dynamodb implements the identity and attendance repositories on
// DynamoDB, including on-demand table creation.
package dynamodb

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	pkgerrors "attendance-backend/pkg/errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"
)

// DynamoDBAPI is the subset of the DynamoDB client the repositories use
type DynamoDBAPI interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	TransactWriteItems(ctx context.Context, params *dynamodb.TransactWriteItemsInput, optFns ...func(*dynamodb.Options)) (*dynamodb.TransactWriteItemsOutput, error)
	CreateTable(ctx context.Context, params *dynamodb.CreateTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.CreateTableOutput, error)
	dynamodb.QueryAPIClient
	dynamodb.ScanAPIClient
	dynamodb.DescribeTableAPIClient
}

// IndexSchema describes a global secondary index
type IndexSchema struct {
	Name         string
	PartitionKey string
	SortKey      string
}

// TableSchema describes a table with string keys
type TableSchema struct {
	Name         string
	PartitionKey string
	SortKey      string
	Indexes      []IndexSchema
}

// PeopleSchema is the identity table: one item per face ID
func PeopleSchema(table string) TableSchema {
	return TableSchema{Name: table, PartitionKey: attrRekognitionID}
}

// AttendanceSchema is the attendance table. dateIndex, when set, adds a GSI
// keyed on date for report reads.
func AttendanceSchema(table, dateIndex string) TableSchema {
	schema := TableSchema{Name: table, PartitionKey: attrEmployeeID, SortKey: attrTimestamp}
	if dateIndex != "" {
		schema.Indexes = append(schema.Indexes, IndexSchema{
			Name:         dateIndex,
			PartitionKey: attrDate,
			SortKey:      attrTimestamp,
		})
	}
	return schema
}

// TableProvisioner creates tables on first use
type TableProvisioner struct {
	client      DynamoDBAPI
	logger      *zap.Logger
	waitTimeout time.Duration
}

// NewTableProvisioner creates a provisioner
func NewTableProvisioner(client DynamoDBAPI, logger *zap.Logger) *TableProvisioner {
	return &TableProvisioner{
		client:      client,
		logger:      logger,
		waitTimeout: 2 * time.Minute,
	}
}

// EnsureTable creates the table with on-demand capacity if it is absent and
// waits until it is active. A table that already exists is success.
func (p *TableProvisioner) EnsureTable(ctx context.Context, schema TableSchema) error {
	describe := &dynamodb.DescribeTableInput{TableName: aws.String(schema.Name)}

	_, err := p.client.DescribeTable(ctx, describe)
	if err == nil {
		p.logger.Debug("Table already exists", zap.String("table", schema.Name))
		return nil
	}

	var notFound *types.ResourceNotFoundException
	if !errors.As(err, &notFound) {
		return pkgerrors.NewDatabaseError("DescribeTable", err)
	}

	p.logger.Info("Creating DynamoDB table", zap.String("table", schema.Name))

	if _, err := p.client.CreateTable(ctx, createTableInput(schema)); err != nil {
		var inUse *types.ResourceInUseException
		if !errors.As(err, &inUse) {
			return pkgerrors.NewDatabaseError("CreateTable", err)
		}
		p.logger.Info("Table is being created by another caller", zap.String("table", schema.Name))
	}

	waiter := dynamodb.NewTableExistsWaiter(p.client)
	if err := waiter.Wait(ctx, describe, p.waitTimeout); err != nil {
		return fmt.Errorf("waiting for table %s: %w", schema.Name, err)
	}

	p.logger.Info("Table created and ready", zap.String("table", schema.Name))
	return nil
}

func createTableInput(schema TableSchema) *dynamodb.CreateTableInput {
	defined := map[string]bool{}
	var attrs []types.AttributeDefinition
	define := func(name string) {
		if name == "" || defined[name] {
			return
		}
		defined[name] = true
		attrs = append(attrs, types.AttributeDefinition{
			AttributeName: aws.String(name),
			AttributeType: types.ScalarAttributeTypeS,
		})
	}

	define(schema.PartitionKey)
	define(schema.SortKey)

	input := &dynamodb.CreateTableInput{
		TableName:   aws.String(schema.Name),
		KeySchema:   keySchema(schema.PartitionKey, schema.SortKey),
		BillingMode: types.BillingModePayPerRequest,
	}

	for _, idx := range schema.Indexes {
		define(idx.PartitionKey)
		define(idx.SortKey)
		input.GlobalSecondaryIndexes = append(input.GlobalSecondaryIndexes, types.GlobalSecondaryIndex{
			IndexName:  aws.String(idx.Name),
			KeySchema:  keySchema(idx.PartitionKey, idx.SortKey),
			Projection: &types.Projection{ProjectionType: types.ProjectionTypeAll},
		})
	}

	input.AttributeDefinitions = attrs
	return input
}

func keySchema(partitionKey, sortKey string) []types.KeySchemaElement {
	ks := []types.KeySchemaElement{
		{AttributeName: aws.String(partitionKey), KeyType: types.KeyTypeHash},
	}
	if sortKey != "" {
		ks = append(ks, types.KeySchemaElement{AttributeName: aws.String(sortKey), KeyType: types.KeyTypeRange})
	}
	return ks
}

// ensureOnce runs a provisioning step until it first succeeds
type ensureOnce struct {
	mu   sync.Mutex
	done bool
}

func (o *ensureOnce) Do(fn func() error) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.done {
		return nil
	}
	if err := fn(); err != nil {
		return err
	}
	o.done = true
	return nil
}
