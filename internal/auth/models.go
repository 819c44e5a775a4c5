package auth

import (
	"errors"
	"fmt"
	"regexp"
)

// BizError is a failure whose text goes straight into the response envelope.
// Anything else that comes out of the service is an internal fault and must
// not leak its message to the client.
type BizError struct {
	Msg string
}

func (e *BizError) Error() string {
	return e.Msg
}

func bizErrorf(format string, args ...any) *BizError {
	return &BizError{Msg: fmt.Sprintf(format, args...)}
}

// AsBizError unwraps err into a BizError if it is one.
func AsBizError(err error) (*BizError, bool) {
	var biz *BizError
	ok := errors.As(err, &biz)
	return biz, ok
}

// Fixed business failures. The strings are the wire contract.
var (
	ErrAccountExists      = &BizError{Msg: "账号已存在"}
	ErrEmailExists        = &BizError{Msg: "邮箱已被使用"}
	ErrPhoneExists        = &BizError{Msg: "手机号已被使用"}
	ErrNoIdentifier       = &BizError{Msg: "必须提供一个标识符（account、email 或 phone）"}
	ErrWrongPassword      = &BizError{Msg: "密码错误"}
	ErrPasswordEmpty      = &BizError{Msg: "密码不能为空"}
	ErrCodeEmpty          = &BizError{Msg: "验证码不能为空"}
	ErrCodeExpired        = &BizError{Msg: "验证码已过期或不存在，请重新获取"}
	ErrCodeMismatch       = &BizError{Msg: "验证码错误"}
	ErrCodeTargetKind     = &BizError{Msg: "验证码发送仅支持邮箱或手机号"}
	ErrCodeLoginKind      = &BizError{Msg: "验证码登录仅支持邮箱或手机号"}
	ErrTargetRegistered   = &BizError{Msg: "该账号已被注册"}
	ErrTargetUnregistered = &BizError{Msg: "该账号未注册"}
	ErrUserNotFound       = errors.New("user not found")
)

var (
	emailPattern   = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	phonePattern   = regexp.MustCompile(`^1[3-9]\d{9}$`)
	accountPattern = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)
)

// IdentifierKind says which channel a login identifier belongs to.
type IdentifierKind string

const (
	KindAccount IdentifierKind = "account"
	KindEmail   IdentifierKind = "email"
	KindPhone   IdentifierKind = "phone"
)

// ClassifyIdentifier buckets an identifier the way users type them: anything
// shaped like an email is an email, a mainland mobile number is a phone,
// everything else is an account name.
func ClassifyIdentifier(identifier string) IdentifierKind {
	switch {
	case emailPattern.MatchString(identifier):
		return KindEmail
	case phonePattern.MatchString(identifier):
		return KindPhone
	default:
		return KindAccount
	}
}

// Label is the user-facing name of the channel, used in error messages.
func (k IdentifierKind) Label() string {
	switch k {
	case KindEmail:
		return "邮箱"
	case KindPhone:
		return "手机号"
	default:
		return "账号"
	}
}

func IsValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

func IsValidPhone(phone string) bool {
	return phonePattern.MatchString(phone)
}

func IsValidAccount(account string) bool {
	return len(account) >= 3 && len(account) <= 50 && accountPattern.MatchString(account)
}

// Channel is the physical delivery route for a verification code.
type Channel string

const (
	ChannelEmail Channel = "email"
	ChannelSMS   Channel = "sms"
)

// Purpose scopes a verification code to one flow so a register code cannot
// authorize a login.
type Purpose string

const (
	PurposeRegister Purpose = "register"
	PurposeLogin    Purpose = "login"
)
