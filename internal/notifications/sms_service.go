package notifications

import (
	"context"
	"fmt"

	"tally/pkg/logger"
)

// SMSSender simulates text delivery. The log lines stand in for a gateway
// call until one is contracted.
type SMSSender struct {
	logger *logger.Logger
}

func NewSMSSender() *SMSSender {
	return &SMSSender{logger: logger.GetDefault()}
}

func (s *SMSSender) Deliver(ctx context.Context, notification *Notification) error {
	if notification.Type != TypeVerifyCode {
		s.logger.InfoWithContext(ctx, "sms delivery skipped, unsupported type", map[string]interface{}{
			"type": string(notification.Type),
		})
		return nil
	}

	s.logger.InfoWithContext(ctx, "sms delivery simulated", map[string]interface{}{
		"to":      notification.Recipient,
		"content": smsContent(notification),
	})
	return nil
}

func smsContent(notification *Notification) string {
	if notification.Payload.Purpose == PurposeLogin {
		return fmt.Sprintf("【系统通知】您的登录验证码是 %s，5分钟内有效，请勿泄露。", notification.Payload.Code)
	}
	return fmt.Sprintf("【系统通知】您的注册验证码是 %s，5分钟内有效，请勿泄露。", notification.Payload.Code)
}
