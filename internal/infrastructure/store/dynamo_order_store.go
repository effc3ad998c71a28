package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/example/ec-orders/internal/domain/order"
)

// DynamoOrderStore persists orders in DynamoDB. Tracking-code uniqueness
// is enforced with a guard item per code, written with a conditional put
// before the order item. GSI1 serves the by-user query and GSI2 the
// by-status query, both keyed on created_at for newest-first reads.
type DynamoOrderStore struct {
	client    *dynamodb.Client
	tableName string
}

// dynamoOrder is the DynamoDB item structure. Items and the address are
// stored as JSON strings; money fields as decimal strings.
type dynamoOrder struct {
	ID            string `dynamodbav:"id"`
	UserID        string `dynamodbav:"user_id"`
	Items         string `dynamodbav:"items"`
	Total         string `dynamodbav:"total"`
	Status        string `dynamodbav:"status"`
	Address       string `dynamodbav:"shipping_address"`
	PaymentMethod string `dynamodbav:"payment_method"`
	TrackingCode  string `dynamodbav:"tracking_code"`
	CreatedAt     string `dynamodbav:"created_at"`
	UpdatedAt     string `dynamodbav:"updated_at"`
	GSI1PK        string `dynamodbav:"gsi1pk"`
	GSI2PK        string `dynamodbav:"gsi2pk"`
}

func NewDynamoOrderStore(client *dynamodb.Client, tableName string) *DynamoOrderStore {
	return &DynamoOrderStore{client: client, tableName: tableName}
}

func trackingGuardKey(code string) string {
	return "TRACKING#" + code
}

func (s *DynamoOrderStore) Save(ctx context.Context, o *order.Order) (*order.Order, error) {
	isNew := o.ID == ""
	if isNew {
		o.ID = uuid.New().String()
	}

	if isNew {
		if err := s.putTrackingGuard(ctx, o); err != nil {
			return nil, err
		}
	}

	item, err := marshalDynamoOrder(o)
	if err != nil {
		return nil, err
	}

	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal order: %w", err)
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.tableName),
		Item:      av,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to put order: %w", err)
	}

	return o, nil
}

// putTrackingGuard claims the tracking code with a conditional write. A
// conditional check failure means another order holds the code.
func (s *DynamoOrderStore) putTrackingGuard(ctx context.Context, o *order.Order) error {
	guard := map[string]types.AttributeValue{
		"id":       &types.AttributeValueMemberS{Value: trackingGuardKey(o.TrackingCode)},
		"order_id": &types.AttributeValueMemberS{Value: o.ID},
	}

	_, err := s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(s.tableName),
		Item:                guard,
		ConditionExpression: aws.String("attribute_not_exists(id)"),
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return fmt.Errorf("%w: %s", order.ErrDuplicateTrackingCode, o.TrackingCode)
		}
		return fmt.Errorf("failed to claim tracking code: %w", err)
	}
	return nil
}

func (s *DynamoOrderStore) FindByID(ctx context.Context, id string) (*order.Order, error) {
	result, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.tableName),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: id},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	if result.Item == nil {
		return nil, order.ErrOrderNotFound
	}

	var item dynamoOrder
	if err := attributevalue.UnmarshalMap(result.Item, &item); err != nil {
		return nil, fmt.Errorf("failed to unmarshal order: %w", err)
	}
	return unmarshalDynamoOrder(item)
}

func (s *DynamoOrderStore) FindByUser(ctx context.Context, userID string) ([]*order.Order, error) {
	return s.queryIndex(ctx, "gsi1", "gsi1pk", "USER#"+userID)
}

func (s *DynamoOrderStore) FindByStatus(ctx context.Context, status order.Status) ([]*order.Order, error) {
	return s.queryIndex(ctx, "gsi2", "gsi2pk", "STATUS#"+string(status))
}

func (s *DynamoOrderStore) queryIndex(ctx context.Context, index, keyAttr, keyValue string) ([]*order.Order, error) {
	result, err := s.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(s.tableName),
		IndexName:              aws.String(index),
		KeyConditionExpression: aws.String("#pk = :pk"),
		ExpressionAttributeNames: map[string]string{
			"#pk": keyAttr,
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk": &types.AttributeValueMemberS{Value: keyValue},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}

	orders := make([]*order.Order, 0, len(result.Items))
	for _, raw := range result.Items {
		var item dynamoOrder
		if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
			return nil, fmt.Errorf("failed to unmarshal order: %w", err)
		}
		o, err := unmarshalDynamoOrder(item)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}

	// The GSIs project on the partition key only; sort newest first here.
	sort.Slice(orders, func(i, j int) bool {
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})

	return orders, nil
}

func (s *DynamoOrderStore) ExistsByTrackingCode(ctx context.Context, code string) (bool, error) {
	result, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.tableName),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: trackingGuardKey(code)},
		},
	})
	if err != nil {
		return false, fmt.Errorf("failed to check tracking code: %w", err)
	}
	return result.Item != nil, nil
}

func marshalDynamoOrder(o *order.Order) (dynamoOrder, error) {
	items, err := json.Marshal(o.Items)
	if err != nil {
		return dynamoOrder{}, err
	}
	address, err := json.Marshal(o.ShippingAddress)
	if err != nil {
		return dynamoOrder{}, err
	}

	return dynamoOrder{
		ID:            o.ID,
		UserID:        o.UserID,
		Items:         string(items),
		Total:         o.Total.String(),
		Status:        string(o.Status),
		Address:       string(address),
		PaymentMethod: o.PaymentMethod,
		TrackingCode:  o.TrackingCode,
		CreatedAt:     o.CreatedAt.Format(time.RFC3339Nano),
		UpdatedAt:     o.UpdatedAt.Format(time.RFC3339Nano),
		GSI1PK:        "USER#" + o.UserID,
		GSI2PK:        "STATUS#" + string(o.Status),
	}, nil
}

func unmarshalDynamoOrder(item dynamoOrder) (*order.Order, error) {
	o := &order.Order{
		ID:            item.ID,
		UserID:        item.UserID,
		Status:        order.Status(item.Status),
		PaymentMethod: item.PaymentMethod,
		TrackingCode:  item.TrackingCode,
	}

	if err := json.Unmarshal([]byte(item.Items), &o.Items); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(item.Address), &o.ShippingAddress); err != nil {
		return nil, err
	}

	total, err := decimal.NewFromString(item.Total)
	if err != nil {
		return nil, err
	}
	o.Total = total

	if o.CreatedAt, err = time.Parse(time.RFC3339Nano, item.CreatedAt); err != nil {
		return nil, err
	}
	if o.UpdatedAt, err = time.Parse(time.RFC3339Nano, item.UpdatedAt); err != nil {
		return nil, err
	}

	return o, nil
}
