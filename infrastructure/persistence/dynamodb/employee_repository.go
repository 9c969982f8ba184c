package dynamodb

import (
	"context"
	"errors"
	"fmt"

	"attendance-backend/application/ports"
	"attendance-backend/domain/employee"
	pkgerrors "attendance-backend/pkg/errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"
)

const (
	attrRekognitionID = "rekognitionId"
	attrEmployeeID    = "employeeId"
	attrTimestamp     = "timestamp"
	attrDate          = "date"
)

// EmployeeRepository stores identity records in the people table
type EmployeeRepository struct {
	client      DynamoDBAPI
	provisioner *TableProvisioner
	tableName   string
	logger      *zap.Logger
	ensured     ensureOnce
}

// employeeItem represents the DynamoDB item structure for an identity
type employeeItem struct {
	RekognitionID string `dynamodbav:"rekognitionId"`
	FirstName     string `dynamodbav:"firstName"`
	LastName      string `dynamodbav:"lastName"`
}

// NewEmployeeRepository creates a new employee repository
func NewEmployeeRepository(client DynamoDBAPI, provisioner *TableProvisioner, tableName string, logger *zap.Logger) *EmployeeRepository {
	return &EmployeeRepository{
		client:      client,
		provisioner: provisioner,
		tableName:   tableName,
		logger:      logger,
	}
}

var _ ports.EmployeeRepository = (*EmployeeRepository)(nil)

// EnsureTable creates the people table once per process
func (r *EmployeeRepository) EnsureTable(ctx context.Context) error {
	return r.ensured.Do(func() error {
		return r.provisioner.EnsureTable(ctx, PeopleSchema(r.tableName))
	})
}

// Save writes a new identity. Identities are immutable, so an existing face
// ID is a conflict rather than an overwrite.
func (r *EmployeeRepository) Save(ctx context.Context, emp *employee.Employee) error {
	av, err := attributevalue.MarshalMap(employeeItem{
		RekognitionID: emp.FaceID(),
		FirstName:     emp.FirstName(),
		LastName:      emp.LastName(),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal employee: %w", err)
	}

	expr, err := expression.NewBuilder().
		WithCondition(expression.AttributeNotExists(expression.Name(attrRekognitionID))).
		Build()
	if err != nil {
		return fmt.Errorf("failed to build condition: %w", err)
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:                 aws.String(r.tableName),
		Item:                      av,
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return pkgerrors.NewConflictError(fmt.Sprintf("employee %s already exists", emp.FaceID())).WithCause(err)
		}
		r.logger.Error("Failed to save employee",
			zap.String("faceId", emp.FaceID()),
			zap.Error(err),
		)
		return pkgerrors.NewDatabaseError("PutItem", err)
	}

	r.logger.Debug("Saved employee", zap.String("faceId", emp.FaceID()))
	return nil
}

// GetByFaceID loads the identity for a face ID
func (r *EmployeeRepository) GetByFaceID(ctx context.Context, faceID string) (*employee.Employee, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			attrRekognitionID: &types.AttributeValueMemberS{Value: faceID},
		},
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("GetItem", err)
	}
	if len(out.Item) == 0 {
		return nil, employee.ErrNotFound
	}

	var item employeeItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return nil, fmt.Errorf("failed to unmarshal employee: %w", err)
	}

	return employee.Reconstruct(item.RekognitionID, item.FirstName, item.LastName), nil
}
