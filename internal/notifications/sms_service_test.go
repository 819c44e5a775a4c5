package notifications

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSMSContent(t *testing.T) {
	login := &Notification{
		Type:    TypeVerifyCode,
		Payload: Payload{Code: "123456", Purpose: PurposeLogin},
	}
	assert.Equal(t, "【系统通知】您的登录验证码是 123456，5分钟内有效，请勿泄露。", smsContent(login))

	register := &Notification{
		Type:    TypeVerifyCode,
		Payload: Payload{Code: "654321", Purpose: PurposeRegister},
	}
	assert.Equal(t, "【系统通知】您的注册验证码是 654321，5分钟内有效，请勿泄露。", smsContent(register))
}
