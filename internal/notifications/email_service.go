package notifications

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"html/template"
	"log"
	"mime"
	"net/smtp"
	"time"
)

// SMTPConfig holds SMTP configuration
type SMTPConfig struct {
	Host      string
	Port      int
	Username  string
	Password  string
	FromEmail string
	FromName  string
}

// Mail bodies mirror the product's account emails. Codes expire after five
// minutes, which the copy states.
const (
	loginCodeTemplate = `<html>
<body>
    <h2>登录验证</h2>
    <p>您的登录验证码是：<strong style="font-size: 24px; color: #1890ff;">{{.Code}}</strong></p>
    <p>验证码有效期为 5 分钟，请尽快完成登录。</p>
    <p>如果这不是您的操作，请立即修改密码以保护账号安全。</p>
</body>
</html>`

	registerCodeTemplate = `<html>
<body>
    <h2>欢迎注册</h2>
    <p>您的邮箱验证码是：<strong style="font-size: 24px; color: #1890ff;">{{.Code}}</strong></p>
    <p>验证码有效期为 5 分钟，请尽快完成验证。</p>
    <p>如果这不是您的操作，请忽略此邮件。</p>
</body>
</html>`

	welcomeTemplate = `<html>
<body>
    <h2>欢迎注册</h2>
    <p>{{if .Name}}{{.Name}}，您好！{{else}}您好！{{end}}</p>
    <p>您的账号已经开通，现在就可以开始记录账单、管理自选行情了。</p>
</body>
</html>`
)

// EmailSender delivers notifications over SMTP with STARTTLS.
type EmailSender struct {
	config    *SMTPConfig
	templates map[string]*template.Template
}

// NewEmailSender parses the mail templates once and validates the transport
// configuration.
func NewEmailSender(config *SMTPConfig) (*EmailSender, error) {
	if err := validateSMTPConfig(config); err != nil {
		return nil, err
	}
	if config.FromName == "" {
		config.FromName = "系统通知"
	}

	templates := make(map[string]*template.Template)
	for name, body := range map[string]string{
		"login_code":    loginCodeTemplate,
		"register_code": registerCodeTemplate,
		"welcome":       welcomeTemplate,
	} {
		tmpl, err := template.New(name).Parse(body)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s template: %w", name, err)
		}
		templates[name] = tmpl
	}

	return &EmailSender{config: config, templates: templates}, nil
}

func validateSMTPConfig(config *SMTPConfig) error {
	if config == nil {
		return fmt.Errorf("SMTP config is nil")
	}
	if config.Host == "" {
		return fmt.Errorf("SMTP host is required")
	}
	if config.Port <= 0 || config.Port > 65535 {
		return fmt.Errorf("SMTP port must be between 1 and 65535")
	}
	if config.Username == "" {
		return fmt.Errorf("SMTP username is required")
	}
	if config.Password == "" {
		return fmt.Errorf("SMTP password is required")
	}
	if config.FromEmail == "" {
		return fmt.Errorf("from email is required")
	}
	return nil
}

// Deliver renders the matching template and sends it to the recipient.
func (s *EmailSender) Deliver(ctx context.Context, notification *Notification) error {
	body, err := s.renderBody(notification)
	if err != nil {
		return err
	}

	subject := notification.SubjectLine
	if subject == "" {
		subject = defaultSubject(notification)
	}

	return s.send(notification.Recipient, subject, body)
}

func (s *EmailSender) renderBody(notification *Notification) (string, error) {
	name := templateFor(notification)
	tmpl, ok := s.templates[name]
	if !ok {
		return "", fmt.Errorf("no mail template for type %s purpose %s", notification.Type, notification.Payload.Purpose)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, notification.Payload); err != nil {
		return "", fmt.Errorf("failed to render %s template: %w", name, err)
	}
	return buf.String(), nil
}

func templateFor(notification *Notification) string {
	switch notification.Type {
	case TypeWelcome:
		return "welcome"
	case TypeVerifyCode:
		if notification.Payload.Purpose == PurposeLogin {
			return "login_code"
		}
		return "register_code"
	default:
		return ""
	}
}

// send connects, upgrades to TLS and ships one HTML message.
func (s *EmailSender) send(to, subject, htmlBody string) error {
	message := s.buildMessage(to, subject, htmlBody)
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	auth := smtp.PlainAuth("", s.config.Username, s.config.Password, s.config.Host)

	client, err := smtp.Dial(addr)
	if err != nil {
		return fmt.Errorf("failed to connect to SMTP server: %w", err)
	}
	defer client.Quit()

	tlsconfig := &tls.Config{ServerName: s.config.Host}
	if err = client.StartTLS(tlsconfig); err != nil {
		return fmt.Errorf("failed to start TLS: %w", err)
	}

	if err = client.Auth(auth); err != nil {
		return fmt.Errorf("failed to authenticate: %w", err)
	}

	if err = client.Mail(s.config.FromEmail); err != nil {
		return fmt.Errorf("failed to set sender: %w", err)
	}

	if err = client.Rcpt(to); err != nil {
		return fmt.Errorf("failed to set recipient: %w", err)
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("failed to get data writer: %w", err)
	}

	if _, err = w.Write(message); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to flush message: %w", err)
	}

	log.Printf("📧 [SMTP] Email sent successfully to %s", to)
	return nil
}

// buildMessage creates the email message with proper headers. Chinese
// subjects need RFC 2047 encoding.
func (s *EmailSender) buildMessage(to, subject, htmlBody string) []byte {
	var msg bytes.Buffer
	fmt.Fprintf(&msg, "From: %s <%s>\r\n", mime.QEncoding.Encode("UTF-8", s.config.FromName), s.config.FromEmail)
	fmt.Fprintf(&msg, "To: %s\r\n", to)
	fmt.Fprintf(&msg, "Subject: %s\r\n", mime.QEncoding.Encode("UTF-8", subject))
	fmt.Fprintf(&msg, "Date: %s\r\n", time.Now().Format(time.RFC1123Z))
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/html; charset=UTF-8\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(htmlBody)
	msg.WriteString("\r\n")
	return msg.Bytes()
}
