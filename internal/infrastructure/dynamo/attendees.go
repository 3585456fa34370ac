package dynamo

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/event-registration-api/internal/domain"
)

// AttendeeRepo provides typed DynamoDB operations for the attendees table.
type AttendeeRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewAttendeeRepo(client *dynamodb.Client, tableName string) *AttendeeRepo {
	return &AttendeeRepo{client: client, tableName: tableName}
}

func (r *AttendeeRepo) Put(ctx context.Context, a *domain.Attendee) error {
	item, err := attributevalue.MarshalMap(a)
	if err != nil {
		return fmt.Errorf("marshal attendee: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

func (r *AttendeeRepo) Get(ctx context.Context, attendeeID string) (*domain.Attendee, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("attendee_id", attendeeID),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("attendee not found: %w", domain.ErrNotFound)
	}
	var a domain.Attendee
	if err := attributevalue.UnmarshalMap(out.Item, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

// GetByUser looks up a user's registration via the user_id-index GSI.
// Enforces the one-profile-per-user read path.
func (r *AttendeeRepo) GetByUser(ctx context.Context, userID string) (*domain.Attendee, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String("user_id-index"),
		KeyConditionExpression: aws.String("user_id = :uid"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":uid": &types.AttributeValueMemberS{Value: userID},
		},
		Limit: aws.Int32(1),
	})
	if err != nil {
		return nil, err
	}
	if len(out.Items) == 0 {
		return nil, fmt.Errorf("attendee not found: %w", domain.ErrNotFound)
	}
	var a domain.Attendee
	if err := attributevalue.UnmarshalMap(out.Items[0], &a); err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *AttendeeRepo) Update(ctx context.Context, attendeeID string, updates map[string]interface{}) error {
	updates["updated_at"] = time.Now().UTC().Format(time.RFC3339)
	ue, err := buildUpdateExpr(updates)
	if err != nil {
		return err
	}
	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       strKey("attendee_id", attendeeID),
		UpdateExpression:          aws.String(ue.Expr),
		ExpressionAttributeNames:  ue.Names,
		ExpressionAttributeValues: ue.Values,
	})
	return err
}

func (r *AttendeeRepo) Delete(ctx context.Context, attendeeID string) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("attendee_id", attendeeID),
	})
	return err
}

// ScanAll returns every attendee row, following pagination internally.
// The admin listing filters and paginates in memory; the table is
// event-sized, not internet-sized.
func (r *AttendeeRepo) ScanAll(ctx context.Context) ([]domain.Attendee, error) {
	var all []domain.Attendee
	var startKey map[string]types.AttributeValue
	for {
		out, err := r.client.Scan(ctx, &dynamodb.ScanInput{
			TableName:         aws.String(r.tableName),
			ExclusiveStartKey: startKey,
		})
		if err != nil {
			return nil, err
		}
		var page []domain.Attendee
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &page); err != nil {
			return nil, err
		}
		all = append(all, page...)
		if out.LastEvaluatedKey == nil {
			return all, nil
		}
		startKey = out.LastEvaluatedKey
	}
}

// Count returns the number of attendee rows matching an equality filter on a
// single attribute, or the total when attr is empty. Uses Select COUNT so no
// items cross the wire.
func (r *AttendeeRepo) Count(ctx context.Context, attr string, value types.AttributeValue) (int, error) {
	input := &dynamodb.ScanInput{
		TableName: aws.String(r.tableName),
		Select:    types.SelectCount,
	}
	if attr != "" {
		input.FilterExpression = aws.String("#a = :v")
		input.ExpressionAttributeNames = map[string]string{"#a": attr}
		input.ExpressionAttributeValues = map[string]types.AttributeValue{":v": value}
	}

	total := 0
	var startKey map[string]types.AttributeValue
	for {
		input.ExclusiveStartKey = startKey
		out, err := r.client.Scan(ctx, input)
		if err != nil {
			return 0, err
		}
		total += int(out.Count)
		if out.LastEvaluatedKey == nil {
			return total, nil
		}
		startKey = out.LastEvaluatedKey
	}
}

// CountByStatus counts rows with the given registration status.
func (r *AttendeeRepo) CountByStatus(ctx context.Context, status string) (int, error) {
	return r.Count(ctx, "registration_status", &types.AttributeValueMemberS{Value: status})
}

// CountByAttendanceType counts rows with the given attendance type.
func (r *AttendeeRepo) CountByAttendanceType(ctx context.Context, t string) (int, error) {
	return r.Count(ctx, "attendance_type", &types.AttributeValueMemberS{Value: t})
}

// CountAccommodation counts rows that requested accommodation.
func (r *AttendeeRepo) CountAccommodation(ctx context.Context) (int, error) {
	return r.Count(ctx, "accommodation_required", &types.AttributeValueMemberBOOL{Value: true})
}

// CountAll counts every attendee row.
func (r *AttendeeRepo) CountAll(ctx context.Context) (int, error) {
	return r.Count(ctx, "", nil)
}
