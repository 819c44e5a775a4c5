package notifications

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// NotificationType labels what a message is about.
type NotificationType string

const (
	TypeVerifyCode NotificationType = "verify_code"
	TypeWelcome    NotificationType = "welcome"
)

// NotificationChannel selects the delivery transport.
type NotificationChannel string

const (
	ChannelEmail NotificationChannel = "email"
	ChannelSMS   NotificationChannel = "sms"
)

// Purposes mirror the account service's verification flows.
const (
	PurposeRegister = "register"
	PurposeLogin    = "login"
)

// Payload carries the variables the channel templates render.
type Payload struct {
	Code    string `json:"code,omitempty"`
	Purpose string `json:"purpose,omitempty"`
	Name    string `json:"name,omitempty"`
}

// Notification is the wire format on the Kafka topic.
type Notification struct {
	ID          uuid.UUID           `json:"id"`
	Type        NotificationType    `json:"type"`
	Channel     NotificationChannel `json:"channel"`
	Recipient   string              `json:"recipient"`
	SubjectLine string              `json:"subject_line,omitempty"`
	Payload     Payload             `json:"payload"`
	CreatedAt   time.Time           `json:"created_at"`
}

// PartitionKey keeps every message for one recipient on the same partition,
// so deliveries to one address stay ordered.
func (n *Notification) PartitionKey() string {
	return n.Recipient
}

func (n *Notification) ToJSON() ([]byte, error) {
	return json.Marshal(n)
}

// NotificationBuilder assembles messages for the producer.
type NotificationBuilder struct {
	notification *Notification
}

func NewNotificationBuilder() *NotificationBuilder {
	return &NotificationBuilder{
		notification: &Notification{
			ID:        uuid.New(),
			CreatedAt: time.Now(),
		},
	}
}

func (nb *NotificationBuilder) WithType(notType NotificationType) *NotificationBuilder {
	nb.notification.Type = notType
	return nb
}

func (nb *NotificationBuilder) WithChannel(channel NotificationChannel) *NotificationBuilder {
	nb.notification.Channel = channel
	return nb
}

func (nb *NotificationBuilder) WithRecipient(recipient string) *NotificationBuilder {
	nb.notification.Recipient = recipient
	return nb
}

func (nb *NotificationBuilder) WithSubjectLine(subject string) *NotificationBuilder {
	nb.notification.SubjectLine = subject
	return nb
}

func (nb *NotificationBuilder) WithPayload(payload Payload) *NotificationBuilder {
	nb.notification.Payload = payload
	return nb
}

// Build fills the subject for mail messages that did not set one. Text
// messages carry their copy inline and have no subject.
func (nb *NotificationBuilder) Build() *Notification {
	if nb.notification.SubjectLine == "" && nb.notification.Channel == ChannelEmail {
		nb.notification.SubjectLine = defaultSubject(nb.notification)
	}
	return nb.notification
}

// defaultSubject matches the subject to the mail body templates.
func defaultSubject(n *Notification) string {
	switch n.Type {
	case TypeWelcome:
		return "欢迎注册"
	case TypeVerifyCode:
		if n.Payload.Purpose == PurposeLogin {
			return "登录验证码"
		}
		return "邮箱注册验证码"
	default:
		return "系统通知"
	}
}
