package notifications

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingDeliverer fails the first `failures` calls, then records.
type recordingDeliverer struct {
	delivered []*Notification
	failures  int
}

func (r *recordingDeliverer) Deliver(ctx context.Context, notification *Notification) error {
	if r.failures > 0 {
		r.failures--
		return errors.New("transport down")
	}
	r.delivered = append(r.delivered, notification)
	return nil
}

func newTestHandler(email, sms Deliverer) *groupHandler {
	return &groupHandler{
		email:        email,
		sms:          sms,
		maxRetries:   3,
		retryBackoff: time.Millisecond,
	}
}

func TestProcessMessageDispatchesByChannel(t *testing.T) {
	email := &recordingDeliverer{}
	sms := &recordingDeliverer{}
	handler := newTestHandler(email, sms)

	mail := NewNotificationBuilder().
		WithType(TypeVerifyCode).
		WithChannel(ChannelEmail).
		WithRecipient("user@example.com").
		WithPayload(Payload{Code: "123456", Purpose: PurposeRegister}).
		Build()
	raw, err := mail.ToJSON()
	require.NoError(t, err)

	require.NoError(t, handler.processMessage(context.Background(), &sarama.ConsumerMessage{Value: raw}))
	require.Len(t, email.delivered, 1)
	assert.Empty(t, sms.delivered)
	assert.Equal(t, "user@example.com", email.delivered[0].Recipient)
	assert.Equal(t, "邮箱注册验证码", email.delivered[0].SubjectLine)

	text := NewNotificationBuilder().
		WithType(TypeVerifyCode).
		WithChannel(ChannelSMS).
		WithRecipient("13800138000").
		WithPayload(Payload{Code: "654321", Purpose: PurposeLogin}).
		Build()
	raw, err = text.ToJSON()
	require.NoError(t, err)

	require.NoError(t, handler.processMessage(context.Background(), &sarama.ConsumerMessage{Value: raw}))
	require.Len(t, sms.delivered, 1)
	assert.Equal(t, "13800138000", sms.delivered[0].Recipient)
}

func TestProcessMessageSkipsUnknownChannel(t *testing.T) {
	email := &recordingDeliverer{}
	sms := &recordingDeliverer{}
	handler := newTestHandler(email, sms)

	stray := &Notification{ID: uuid.New(), Channel: NotificationChannel("pigeon")}
	raw, err := stray.ToJSON()
	require.NoError(t, err)

	// unknown channels are dropped, not retried forever
	require.NoError(t, handler.processMessage(context.Background(), &sarama.ConsumerMessage{Value: raw}))
	assert.Empty(t, email.delivered)
	assert.Empty(t, sms.delivered)
}

func TestProcessMessageRejectsBadPayload(t *testing.T) {
	handler := newTestHandler(&recordingDeliverer{}, &recordingDeliverer{})
	err := handler.processMessage(context.Background(), &sarama.ConsumerMessage{Value: []byte("{not json")})
	require.Error(t, err)
}

func TestDeliverWithRetryRecovers(t *testing.T) {
	handler := newTestHandler(nil, nil)
	flaky := &recordingDeliverer{failures: 2}

	err := handler.deliverWithRetry(context.Background(), flaky, &Notification{ID: uuid.New()})
	require.NoError(t, err)
	assert.Len(t, flaky.delivered, 1)
}

func TestDeliverWithRetryGivesUp(t *testing.T) {
	handler := newTestHandler(nil, nil)
	dead := &recordingDeliverer{failures: 10}

	err := handler.deliverWithRetry(context.Background(), dead, &Notification{ID: uuid.New()})
	require.Error(t, err)
	assert.Empty(t, dead.delivered)
	assert.Equal(t, 6, dead.failures, "one initial attempt plus three retries")
}
