// internal/auth/login_strategy.go
package auth

import (
	"context"

	"tally/internal/users"
)

// loginStrategy describes one way of proving who you are. The label feeds
// the "<label>不存在" style messages and the success message, so the
// verify-code variants carry their own labels.
type loginStrategy struct {
	label    string
	valid    func(identifier string) bool
	find     func(ctx context.Context, repo Repository, identifier string) (*users.User, error)
	withCode bool
	channel  Channel
}

func findByEmail(ctx context.Context, repo Repository, identifier string) (*users.User, error) {
	return repo.GetUserByEmail(ctx, identifier)
}

func findByPhone(ctx context.Context, repo Repository, identifier string) (*users.User, error) {
	return repo.GetUserByPhone(ctx, identifier)
}

func findByAccount(ctx context.Context, repo Repository, identifier string) (*users.User, error) {
	return repo.GetUserByAccount(ctx, identifier)
}

// passwordLoginStrategy resolves the identifier to a password-based strategy.
// Anything that is neither an email nor a phone number counts as an account.
func passwordLoginStrategy(identifier string) loginStrategy {
	switch ClassifyIdentifier(identifier) {
	case KindEmail:
		return loginStrategy{
			label: "邮箱",
			valid: IsValidEmail,
			find:  findByEmail,
		}
	case KindPhone:
		return loginStrategy{
			label: "手机号",
			valid: IsValidPhone,
			find:  findByPhone,
		}
	default:
		return loginStrategy{
			label: "账号",
			valid: accountPattern.MatchString,
			find:  findByAccount,
		}
	}
}

// verifyCodeLoginStrategy resolves the identifier to a code-based strategy.
// Account names cannot receive a code, so they are rejected outright.
func verifyCodeLoginStrategy(identifier string) (loginStrategy, error) {
	switch ClassifyIdentifier(identifier) {
	case KindEmail:
		return loginStrategy{
			label:    "邮箱验证码",
			valid:    IsValidEmail,
			find:     findByEmail,
			withCode: true,
			channel:  ChannelEmail,
		}, nil
	case KindPhone:
		return loginStrategy{
			label:    "短信验证码",
			valid:    IsValidPhone,
			find:     findByPhone,
			withCode: true,
			channel:  ChannelSMS,
		}, nil
	default:
		return loginStrategy{}, ErrCodeLoginKind
	}
}
