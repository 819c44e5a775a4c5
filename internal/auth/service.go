package auth

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"tally/internal/users"
	"tally/pkg/logger"
	"tally/pkg/token"
)

// Notifier hands verification codes and lifecycle notices to the delivery
// pipeline. The concrete implementation lives in the notifications package.
type Notifier interface {
	SendVerifyCode(ctx context.Context, channel Channel, purpose Purpose, target, code string) error
	SendWelcome(ctx context.Context, name, email string) error
}

type Service interface {
	Register(ctx context.Context, req *RegisterRequest) (*users.UserResponse, string, error)
	Login(ctx context.Context, req *LoginRequest) (*AuthResponse, string, error)
	RefreshToken(ctx context.Context, refreshToken string) (*token.Pair, error)
	SendRegisterCode(ctx context.Context, target string) error
	SendLoginCode(ctx context.Context, target string) error
}

type service struct {
	repo      Repository
	codes     CodeStore
	notifier  Notifier
	issuer    *token.Issuer
	refresher *token.Refresher
}

func NewService(repo Repository, codes CodeStore, notifier Notifier, tokenCfg token.Config) Service {
	return &service{
		repo:      repo,
		codes:     codes,
		notifier:  notifier,
		issuer:    token.NewIssuer(tokenCfg),
		refresher: token.NewRefresher(tokenCfg),
	}
}

// Register signs a user up through exactly one identifier strategy. The
// second return value is the strategy name for the success message.
func (s *service) Register(ctx context.Context, req *RegisterRequest) (*users.UserResponse, string, error) {
	strategy, err := pickRegisterStrategy(req)
	if err != nil {
		return nil, "", err
	}

	if err := checkRegisterFormats(req); err != nil {
		return nil, "", err
	}

	// Email and phone identifiers prove ownership with a one-time code.
	// Only the channel that consumed a code counts as verified.
	var verified Channel
	if req.Email != "" || req.Phone != "" {
		target, channel := req.Email, ChannelEmail
		if target == "" {
			target, channel = req.Phone, ChannelSMS
		}
		if err := s.codes.Consume(ctx, channel, PurposeRegister, target, req.VerifyCode); err != nil {
			return nil, "", err
		}
		verified = channel
	}

	if err := strategy.checkUnique(ctx, s.repo, req); err != nil {
		return nil, "", err
	}

	account, err := s.uniqueAccount(ctx, strategy, req)
	if err != nil {
		return nil, "", err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", err
	}

	name := req.Name
	if name == "" {
		name = account
	}
	user := &users.User{
		Account:       account,
		Name:          name,
		Email:         optional(req.Email),
		Phone:         optional(req.Phone),
		Password:      string(hashed),
		EmailVerified: verified == ChannelEmail,
		PhoneVerified: verified == ChannelSMS,
		Status:        users.StatusActive,
		Role:          users.RoleLevel1,
	}
	if err := s.repo.CreateUser(ctx, user); err != nil {
		return nil, "", bizErrorf("注册失败: %v", err)
	}

	logger.GetDefault().LogUserRegistered(ctx, user.ID.String(), string(strategy.kind))
	if user.Email != nil {
		if err := s.notifier.SendWelcome(ctx, user.Name, *user.Email); err != nil {
			logger.GetDefault().WithError(err).Warn("Failed to queue welcome notification")
		}
	}

	resp := user.ToResponse()
	return &resp, string(strategy.kind), nil
}

// Login authenticates with a password or a one-time code depending on
// login_type. The second return value is the strategy label for the success
// message.
func (s *service) Login(ctx context.Context, req *LoginRequest) (*AuthResponse, string, error) {
	var (
		strategy loginStrategy
		err      error
	)
	if req.LoginType == "verify_code" {
		strategy, err = verifyCodeLoginStrategy(req.Account)
		if err != nil {
			return nil, "", err
		}
	} else {
		strategy = passwordLoginStrategy(req.Account)
	}

	user, err := s.authenticate(ctx, strategy, req.Account, req.Password)
	if err != nil {
		return nil, "", err
	}

	pair, err := s.issuer.IssuePair(user.ID.String(), map[string]any{
		"role": string(user.Role),
		"name": user.Name,
	})
	if err != nil {
		return nil, "", err
	}

	logger.GetDefault().LogAuthSuccess(ctx, user.ID.String(), strategy.label)
	return newAuthResponse(user, pair), strategy.label, nil
}

// authenticate runs the shared login pipeline: format, existence, account
// status, then the strategy's own proof (password or code).
func (s *service) authenticate(ctx context.Context, strategy loginStrategy, identifier, secret string) (*users.User, error) {
	if !strategy.valid(identifier) {
		return nil, bizErrorf("%s格式不正确", strategy.label)
	}

	user, err := strategy.find(ctx, s.repo, identifier)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, bizErrorf("%s不存在", strategy.label)
		}
		return nil, err
	}

	if user.Status != users.StatusActive {
		return nil, bizErrorf("账号状态异常: %s", user.Status)
	}

	if strategy.withCode {
		if secret == "" {
			return nil, ErrCodeEmpty
		}
		if err := s.codes.Consume(ctx, strategy.channel, PurposeLogin, identifier, secret); err != nil {
			return nil, err
		}
	} else {
		if secret == "" {
			return nil, ErrPasswordEmpty
		}
		if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(secret)); err != nil {
			return nil, ErrWrongPassword
		}
	}

	return user, nil
}

// RefreshToken exchanges a live refresh token for a new pair. Token errors
// pass through unchanged for the controller to map onto 401 responses.
func (s *service) RefreshToken(ctx context.Context, refreshToken string) (*token.Pair, error) {
	return s.refresher.Refresh(refreshToken)
}

func (s *service) SendRegisterCode(ctx context.Context, target string) error {
	return s.sendCode(ctx, target, PurposeRegister)
}

func (s *service) SendLoginCode(ctx context.Context, target string) error {
	return s.sendCode(ctx, target, PurposeLogin)
}

// sendCode generates, stores and dispatches a one-time code. Register codes
// require the target to be free, login codes require it to be known. When
// delivery fails the stored code is removed so a later retry starts clean.
func (s *service) sendCode(ctx context.Context, target string, purpose Purpose) error {
	var (
		channel Channel
		exists  bool
		err     error
	)
	switch ClassifyIdentifier(target) {
	case KindEmail:
		channel = ChannelEmail
		exists, err = s.repo.EmailExists(ctx, target)
	case KindPhone:
		channel = ChannelSMS
		exists, err = s.repo.PhoneExists(ctx, target)
	default:
		return ErrCodeTargetKind
	}
	if err != nil {
		return err
	}
	if purpose == PurposeRegister && exists {
		return ErrTargetRegistered
	}
	if purpose == PurposeLogin && !exists {
		return ErrTargetUnregistered
	}

	code, err := GenerateCode()
	if err != nil {
		return err
	}
	if err := s.codes.Save(ctx, channel, purpose, target, code); err != nil {
		return bizErrorf("验证码存储失败: %v", err)
	}
	if err := s.notifier.SendVerifyCode(ctx, channel, purpose, target, code); err != nil {
		if dropErr := s.codes.Drop(ctx, channel, purpose, target); dropErr != nil {
			logger.GetDefault().WithError(dropErr).Warn("Failed to drop undelivered verify code")
		}
		return bizErrorf("验证码发送失败: %v", err)
	}

	logger.GetDefault().LogVerifyCodeSent(ctx, string(channel), string(purpose))
	return nil
}

// uniqueAccount derives the account name and, when it was generated rather
// than chosen, suffixes it until free.
func (s *service) uniqueAccount(ctx context.Context, strategy registerStrategy, req *RegisterRequest) (string, error) {
	account := strategy.deriveAccount(req)
	if req.Account != "" {
		return account, nil
	}
	base := account
	for n := 1; ; n++ {
		exists, err := s.repo.AccountExists(ctx, account)
		if err != nil {
			return "", err
		}
		if !exists {
			return account, nil
		}
		account = fmt.Sprintf("%s_%d", base, n)
	}
}

// checkRegisterFormats applies the pattern rules that the binding layer
// cannot express with Chinese error text.
func checkRegisterFormats(req *RegisterRequest) error {
	if req.Account != "" && !accountPattern.MatchString(req.Account) {
		return &BizError{Msg: "账号只能包含字母、数字和下划线"}
	}
	if req.Email != "" && !IsValidEmail(req.Email) {
		return &BizError{Msg: "邮箱格式不正确"}
	}
	if req.Phone != "" && !IsValidPhone(req.Phone) {
		return &BizError{Msg: "手机号格式不正确"}
	}
	if len(req.Password) < 6 {
		return &BizError{Msg: "密码长度至少6位"}
	}
	return nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
