package notifications

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSMTPConfig() *SMTPConfig {
	return &SMTPConfig{
		Host:      "smtp.example.com",
		Port:      587,
		Username:  "mailer",
		Password:  "secret",
		FromEmail: "noreply@example.com",
	}
}

func TestNewEmailSenderValidatesConfig(t *testing.T) {
	_, err := NewEmailSender(nil)
	require.Error(t, err)

	broken := testSMTPConfig()
	broken.Host = ""
	_, err = NewEmailSender(broken)
	assert.ErrorContains(t, err, "host")

	broken = testSMTPConfig()
	broken.Port = 0
	_, err = NewEmailSender(broken)
	assert.ErrorContains(t, err, "port")

	broken = testSMTPConfig()
	broken.FromEmail = ""
	_, err = NewEmailSender(broken)
	assert.ErrorContains(t, err, "from email")
}

func TestNewEmailSenderDefaultsFromName(t *testing.T) {
	sender, err := NewEmailSender(testSMTPConfig())
	require.NoError(t, err)
	assert.Equal(t, "系统通知", sender.config.FromName)
}

func TestRenderBody(t *testing.T) {
	sender, err := NewEmailSender(testSMTPConfig())
	require.NoError(t, err)

	login := &Notification{Type: TypeVerifyCode, Payload: Payload{Code: "135790", Purpose: PurposeLogin}}
	body, err := sender.renderBody(login)
	require.NoError(t, err)
	assert.Contains(t, body, "登录验证")
	assert.Contains(t, body, "135790")
	assert.Contains(t, body, "请立即修改密码")

	register := &Notification{Type: TypeVerifyCode, Payload: Payload{Code: "246801", Purpose: PurposeRegister}}
	body, err = sender.renderBody(register)
	require.NoError(t, err)
	assert.Contains(t, body, "欢迎注册")
	assert.Contains(t, body, "您的邮箱验证码是")
	assert.Contains(t, body, "246801")

	welcome := &Notification{Type: TypeWelcome, Payload: Payload{Name: "小明"}}
	body, err = sender.renderBody(welcome)
	require.NoError(t, err)
	assert.Contains(t, body, "小明，您好！")

	anonymous := &Notification{Type: TypeWelcome}
	body, err = sender.renderBody(anonymous)
	require.NoError(t, err)
	assert.Contains(t, body, "您好！")

	_, err = sender.renderBody(&Notification{Type: NotificationType("bogus")})
	assert.Error(t, err)
}

func TestBuildMessageEncodesChineseSubject(t *testing.T) {
	sender, err := NewEmailSender(testSMTPConfig())
	require.NoError(t, err)

	message := string(sender.buildMessage("user@example.com", "登录验证码", "<p>正文</p>"))
	assert.Contains(t, message, "To: user@example.com")
	assert.Contains(t, message, "Subject: =?UTF-8?q?")
	assert.Contains(t, message, "Content-Type: text/html; charset=UTF-8")
	assert.Contains(t, message, "<p>正文</p>")
}
