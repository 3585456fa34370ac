package dynamo

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/event-registration-api/internal/domain"
)

// OTPRepo manages one-time codes.
// PK: contact, SK: purpose — a Put replaces any prior code for the pair, which
// is what enforces the single-active-code invariant.
type OTPRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewOTPRepo(client *dynamodb.Client, tableName string) *OTPRepo {
	return &OTPRepo{client: client, tableName: tableName}
}

func (r *OTPRepo) Put(ctx context.Context, o *domain.OTP) error {
	item, err := attributevalue.MarshalMap(o)
	if err != nil {
		return fmt.Errorf("marshal otp: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

// Consume atomically marks the code as verified and returns the owning user id.
// The condition expression requires an exact code match on an unconsumed,
// unexpired row, so concurrent calls for the same code cannot both succeed:
// the losers hit ConditionalCheckFailed and get domain.ErrTokenInvalid.
func (r *OTPRepo) Consume(ctx context.Context, contact string, purpose domain.OTPPurpose, code string) (string, error) {
	out, err := r.client.UpdateItem(ctx, consumeOTPInput(r.tableName, contact, purpose, code, time.Now()))
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return "", domain.ErrTokenInvalid
		}
		return "", err
	}
	var o domain.OTP
	if err := attributevalue.UnmarshalMap(out.Attributes, &o); err != nil {
		return "", err
	}
	return o.UserID, nil
}

// consumeOTPInput builds the conditional update that redeems a code. The
// condition requires an exact code match on a row that is still unconsumed
// and unexpired as of now.
func consumeOTPInput(table, contact string, purpose domain.OTPPurpose, code string, now time.Time) *dynamodb.UpdateItemInput {
	return &dynamodb.UpdateItemInput{
		TableName:                aws.String(table),
		Key:                      compositeKey("contact", contact, "purpose", string(purpose)),
		UpdateExpression:         aws.String("SET verified = :true"),
		ConditionExpression:      aws.String("#c = :code AND verified = :false AND expires_at > :now"),
		ExpressionAttributeNames: map[string]string{"#c": "code"},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":true":  &types.AttributeValueMemberBOOL{Value: true},
			":false": &types.AttributeValueMemberBOOL{Value: false},
			":code":  &types.AttributeValueMemberS{Value: code},
			":now":   &types.AttributeValueMemberN{Value: strconv.FormatInt(now.Unix(), 10)},
		},
		ReturnValues: types.ReturnValueAllNew,
	}
}

// DeleteExpired removes every code whose expiry has passed. Used by the
// periodic sweep; read paths never treat expired rows as valid regardless.
func (r *OTPRepo) DeleteExpired(ctx context.Context) (int, error) {
	now := strconv.FormatInt(time.Now().Unix(), 10)
	deleted := 0
	var startKey map[string]types.AttributeValue
	for {
		out, err := r.client.Scan(ctx, &dynamodb.ScanInput{
			TableName:        aws.String(r.tableName),
			FilterExpression: aws.String("expires_at <= :now"),
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":now": &types.AttributeValueMemberN{Value: now},
			},
			ProjectionExpression: aws.String("contact, purpose"),
			ExclusiveStartKey:    startKey,
		})
		if err != nil {
			return deleted, err
		}
		for _, item := range out.Items {
			contact, ok := item["contact"].(*types.AttributeValueMemberS)
			purpose, ok2 := item["purpose"].(*types.AttributeValueMemberS)
			if !ok || !ok2 {
				continue
			}
			if _, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
				TableName: aws.String(r.tableName),
				Key:       compositeKey("contact", contact.Value, "purpose", purpose.Value),
			}); err != nil {
				return deleted, err
			}
			deleted++
		}
		if out.LastEvaluatedKey == nil {
			return deleted, nil
		}
		startKey = out.LastEvaluatedKey
	}
}
