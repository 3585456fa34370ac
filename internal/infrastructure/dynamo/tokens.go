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

// TokenRepo manages magic-link verification tokens.
// PK: token. The user_id-purpose-index GSI supports deleting a user's prior
// unconsumed tokens when a new one of the same purpose is issued.
type TokenRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewTokenRepo(client *dynamodb.Client, tableName string) *TokenRepo {
	return &TokenRepo{client: client, tableName: tableName}
}

func (r *TokenRepo) Put(ctx context.Context, t *domain.VerificationToken) error {
	item, err := attributevalue.MarshalMap(t)
	if err != nil {
		return fmt.Errorf("marshal verification token: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

// DeleteUnused removes all unconsumed tokens of the given purpose for a user.
// Called by the issuer so at most one active token exists per (user, purpose).
func (r *TokenRepo) DeleteUnused(ctx context.Context, userID string, purpose domain.TokenPurpose) error {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String("user_id-purpose-index"),
		KeyConditionExpression: aws.String("user_id = :uid AND purpose = :p"),
		FilterExpression:       aws.String("used = :false"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":uid":   &types.AttributeValueMemberS{Value: userID},
			":p":     &types.AttributeValueMemberS{Value: string(purpose)},
			":false": &types.AttributeValueMemberBOOL{Value: false},
		},
	})
	if err != nil {
		return err
	}
	for _, item := range out.Items {
		tok, ok := item["token"].(*types.AttributeValueMemberS)
		if !ok {
			continue
		}
		if _, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
			TableName: aws.String(r.tableName),
			Key:       strKey("token", tok.Value),
		}); err != nil {
			return err
		}
	}
	return nil
}

// Consume atomically marks the token used and returns the owning user id.
// Wrong purpose, expiry, and prior consumption all fail the condition, so the
// caller sees a single undifferentiated domain.ErrTokenInvalid.
func (r *TokenRepo) Consume(ctx context.Context, token string, purpose domain.TokenPurpose) (string, error) {
	out, err := r.client.UpdateItem(ctx, consumeTokenInput(r.tableName, token, purpose, time.Now()))
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return "", domain.ErrTokenInvalid
		}
		return "", err
	}
	var t domain.VerificationToken
	if err := attributevalue.UnmarshalMap(out.Attributes, &t); err != nil {
		return "", err
	}
	return t.UserID, nil
}

// consumeTokenInput builds the conditional update that redeems a magic-link
// token of the given purpose while it is still unused and unexpired.
func consumeTokenInput(table, token string, purpose domain.TokenPurpose, now time.Time) *dynamodb.UpdateItemInput {
	return &dynamodb.UpdateItemInput{
		TableName:           aws.String(table),
		Key:                 strKey("token", token),
		UpdateExpression:    aws.String("SET used = :true"),
		ConditionExpression: aws.String("purpose = :p AND used = :false AND expires_at > :now"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":true":  &types.AttributeValueMemberBOOL{Value: true},
			":false": &types.AttributeValueMemberBOOL{Value: false},
			":p":     &types.AttributeValueMemberS{Value: string(purpose)},
			":now":   &types.AttributeValueMemberN{Value: strconv.FormatInt(now.Unix(), 10)},
		},
		ReturnValues: types.ReturnValueAllNew,
	}
}

// DeleteExpired removes every token whose expiry has passed.
func (r *TokenRepo) DeleteExpired(ctx context.Context) (int, error) {
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
			ProjectionExpression:     aws.String("#t"),
			ExpressionAttributeNames: map[string]string{"#t": "token"},
			ExclusiveStartKey:        startKey,
		})
		if err != nil {
			return deleted, err
		}
		for _, item := range out.Items {
			tok, ok := item["token"].(*types.AttributeValueMemberS)
			if !ok {
				continue
			}
			if _, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
				TableName: aws.String(r.tableName),
				Key:       strKey("token", tok.Value),
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
