package auth

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyIdentifier(t *testing.T) {
	cases := []struct {
		identifier string
		want       IdentifierKind
	}{
		{"chun@example.com", KindEmail},
		{"a.b+c_d@sub.example.cn", KindEmail},
		{"13812345678", KindPhone},
		{"19900000000", KindPhone},
		{"chunhui", KindAccount},
		{"user_345678", KindAccount},
		{"12812345678", KindAccount},  // second digit out of range
		{"138123456789", KindAccount}, // one digit too long
		{"@example.com", KindAccount}, // empty local part
		{"", KindAccount},
	}
	for _, tc := range cases {
		t.Run(tc.identifier, func(t *testing.T) {
			assert.Equal(t, tc.want, ClassifyIdentifier(tc.identifier))
		})
	}
}

func TestIdentifierKindLabels(t *testing.T) {
	assert.Equal(t, "账号", KindAccount.Label())
	assert.Equal(t, "邮箱", KindEmail.Label())
	assert.Equal(t, "手机号", KindPhone.Label())
}

func TestIsValidAccount(t *testing.T) {
	assert.True(t, IsValidAccount("abc"))
	assert.True(t, IsValidAccount("user_42"))
	assert.False(t, IsValidAccount("ab"), "below minimum length")
	assert.False(t, IsValidAccount("has space"))
	assert.False(t, IsValidAccount("名字"))
}

func TestPickRegisterStrategyPriority(t *testing.T) {
	full := &RegisterRequest{Account: "a_b", Email: "a@b.cn", Phone: "13812345678"}
	strategy, err := pickRegisterStrategy(full)
	require.NoError(t, err)
	assert.Equal(t, KindAccount, strategy.kind)

	strategy, err = pickRegisterStrategy(&RegisterRequest{Email: "a@b.cn", Phone: "13812345678"})
	require.NoError(t, err)
	assert.Equal(t, KindEmail, strategy.kind)

	strategy, err = pickRegisterStrategy(&RegisterRequest{Phone: "13812345678"})
	require.NoError(t, err)
	assert.Equal(t, KindPhone, strategy.kind)

	_, err = pickRegisterStrategy(&RegisterRequest{})
	assert.ErrorIs(t, err, ErrNoIdentifier)
}

func TestGenerateCodeStaysSixDigits(t *testing.T) {
	for i := 0; i < 200; i++ {
		code, err := GenerateCode()
		require.NoError(t, err)
		require.Len(t, code, 6)
		n, err := strconv.Atoi(code)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, n, 100000)
		assert.LessOrEqual(t, n, 999999)
	}
}

func TestCodeKeyLayout(t *testing.T) {
	assert.Equal(t, "email_register_verify:a@b.cn", codeKey(ChannelEmail, PurposeRegister, "a@b.cn"))
	assert.Equal(t, "sms_login_verify:13812345678", codeKey(ChannelSMS, PurposeLogin, "13812345678"))
}
