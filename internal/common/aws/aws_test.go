// internal/common/aws/aws_test.go
package aws

import (
	"context"
	"fmt"
	"testing"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type MockSNS struct {
	PublishFunc func(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

func (m *MockSNS) Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error) {
	return m.PublishFunc(ctx, params, optFns...)
}

type MockSES struct {
	SendEmailFunc func(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

func (m *MockSES) SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
	return m.SendEmailFunc(ctx, params, optFns...)
}

func TestSNSClient_SendSMS(t *testing.T) {
	var got *sns.PublishInput
	client := NewSNSClientWithAPI(&MockSNS{
		PublishFunc: func(_ context.Context, params *sns.PublishInput, _ ...func(*sns.Options)) (*sns.PublishOutput, error) {
			got = params
			return &sns.PublishOutput{MessageId: awssdk.String("msg-1")}, nil
		},
	}, "NIDLOG")

	id, err := client.SendSMS(context.Background(), "+254712345678", "hello")
	require.NoError(t, err)
	assert.Equal(t, "msg-1", id)
	assert.Equal(t, "+254712345678", awssdk.ToString(got.PhoneNumber))
	assert.Equal(t, "NIDLOG", awssdk.ToString(got.MessageAttributes["AWS.SNS.SMS.SenderID"].StringValue))
	assert.Equal(t, "Transactional", awssdk.ToString(got.MessageAttributes["AWS.SNS.SMS.SMSType"].StringValue))
}

func TestSNSClient_SendSMSError(t *testing.T) {
	client := NewSNSClientWithAPI(&MockSNS{
		PublishFunc: func(context.Context, *sns.PublishInput, ...func(*sns.Options)) (*sns.PublishOutput, error) {
			return nil, fmt.Errorf("throttled")
		},
	}, "")

	_, err := client.SendSMS(context.Background(), "+254712345678", "hello")
	assert.EqualError(t, err, "sns publish: throttled")
}

func TestSESClient_SendText(t *testing.T) {
	calls := 0
	client := NewSESClientWithAPI(&MockSES{
		SendEmailFunc: func(_ context.Context, params *ses.SendEmailInput, _ ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
			calls++
			assert.Equal(t, []string{"ops@example.com"}, params.Destination.ToAddresses)
			assert.Equal(t, "dispatch@example.com", awssdk.ToString(params.Source))
			return &ses.SendEmailOutput{}, nil
		},
	}, "dispatch@example.com")

	require.NoError(t, client.SendText(context.Background(), []string{"ops@example.com"}, "subj", "body"))
	require.NoError(t, client.SendText(context.Background(), nil, "subj", "body"))
	assert.Equal(t, 1, calls)
}
