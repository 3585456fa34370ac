package dynamo

import (
	"strconv"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/event-registration-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConsumeTokenInput_GuardsPurposeUseAndExpiry(t *testing.T) {
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	in := consumeTokenInput("tokens", "tok123", domain.TokenVerifyEmail, now)

	assert.Equal(t, "tokens", aws.ToString(in.TableName))
	assert.Equal(t, "SET used = :true", aws.ToString(in.UpdateExpression))

	// Wrong purpose, prior consumption, and expiry all fail the same
	// condition, and of two concurrent redeems only one update can pass.
	assert.Equal(t, "purpose = :p AND used = :false AND expires_at > :now",
		aws.ToString(in.ConditionExpression))

	tok, ok := in.Key["token"].(*types.AttributeValueMemberS)
	require.True(t, ok)
	assert.Equal(t, "tok123", tok.Value)

	purpose, ok := in.ExpressionAttributeValues[":p"].(*types.AttributeValueMemberS)
	require.True(t, ok)
	assert.Equal(t, string(domain.TokenVerifyEmail), purpose.Value)

	nowAV, ok := in.ExpressionAttributeValues[":now"].(*types.AttributeValueMemberN)
	require.True(t, ok)
	assert.Equal(t, strconv.FormatInt(now.Unix(), 10), nowAV.Value)

	assert.Equal(t, types.ReturnValueAllNew, in.ReturnValues)
}

func TestConsumeTokenInput_PurposeDistinguishesResetFromVerify(t *testing.T) {
	in := consumeTokenInput("tokens", "tok123", domain.TokenResetPassword, time.Now())

	purpose, ok := in.ExpressionAttributeValues[":p"].(*types.AttributeValueMemberS)
	require.True(t, ok)
	assert.Equal(t, string(domain.TokenResetPassword), purpose.Value)
}
