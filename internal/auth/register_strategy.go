// internal/auth/register_strategy.go
package auth

import (
	"context"
	"fmt"
	"strings"
)

// registerStrategy describes how one identifier kind signs up: which column
// must be unique and how to derive an account name when none was given.
type registerStrategy struct {
	kind          IdentifierKind
	checkUnique   func(ctx context.Context, repo Repository, req *RegisterRequest) error
	deriveAccount func(req *RegisterRequest) string
}

// pickRegisterStrategy selects exactly one strategy per request with the
// priority account > email > phone.
func pickRegisterStrategy(req *RegisterRequest) (registerStrategy, error) {
	switch {
	case req.Account != "":
		return accountRegister, nil
	case req.Email != "":
		return emailRegister, nil
	case req.Phone != "":
		return phoneRegister, nil
	default:
		return registerStrategy{}, ErrNoIdentifier
	}
}

var accountRegister = registerStrategy{
	kind: KindAccount,
	checkUnique: func(ctx context.Context, repo Repository, req *RegisterRequest) error {
		exists, err := repo.AccountExists(ctx, req.Account)
		if err != nil {
			return err
		}
		if exists {
			return ErrAccountExists
		}
		return nil
	},
	deriveAccount: func(req *RegisterRequest) string {
		return req.Account
	},
}

var emailRegister = registerStrategy{
	kind: KindEmail,
	checkUnique: func(ctx context.Context, repo Repository, req *RegisterRequest) error {
		exists, err := repo.EmailExists(ctx, req.Email)
		if err != nil {
			return err
		}
		if exists {
			return ErrEmailExists
		}
		return nil
	},
	deriveAccount: func(req *RegisterRequest) string {
		if req.Account != "" {
			return req.Account
		}
		local, _, _ := strings.Cut(req.Email, "@")
		return local
	},
}

var phoneRegister = registerStrategy{
	kind: KindPhone,
	checkUnique: func(ctx context.Context, repo Repository, req *RegisterRequest) error {
		exists, err := repo.PhoneExists(ctx, req.Phone)
		if err != nil {
			return err
		}
		if exists {
			return ErrPhoneExists
		}
		return nil
	},
	deriveAccount: func(req *RegisterRequest) string {
		if req.Account != "" {
			return req.Account
		}
		digits := req.Phone
		if len(digits) > 6 {
			digits = digits[len(digits)-6:]
		}
		return fmt.Sprintf("user_%s", digits)
	},
}
