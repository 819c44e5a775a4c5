// internal/auth/store.go
package auth

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultCodeTTL = 5 * time.Minute

// compare-and-delete: a code may be consumed exactly once, and only by a
// caller presenting the stored value. Checking then deleting in two round
// trips would let two concurrent logins spend the same code.
var consumeCodeScript = redis.NewScript(`
local stored = redis.call('GET', KEYS[1])
if not stored then
	return -1
end
if stored ~= ARGV[1] then
	return 0
end
redis.call('DEL', KEYS[1])
return 1
`)

// CodeStore keeps one-time verification codes, each scoped to a delivery
// channel, a purpose and a target address.
type CodeStore interface {
	Save(ctx context.Context, channel Channel, purpose Purpose, target, code string) error
	Consume(ctx context.Context, channel Channel, purpose Purpose, target, code string) error
	Drop(ctx context.Context, channel Channel, purpose Purpose, target string) error
	Preload(ctx context.Context) error
}

type codeStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewCodeStore(client *redis.Client, ttl time.Duration) CodeStore {
	if ttl <= 0 {
		ttl = defaultCodeTTL
	}
	return &codeStore{
		client: client,
		ttl:    ttl,
	}
}

// codeKey mirrors the storage layout "email_register_verify:<target>",
// "sms_login_verify:<target>" and so on.
func codeKey(channel Channel, purpose Purpose, target string) string {
	return fmt.Sprintf("%s_%s_verify:%s", channel, purpose, target)
}

// Save stores the code with the configured TTL, replacing any previous code
// for the same channel, purpose and target.
func (s *codeStore) Save(ctx context.Context, channel Channel, purpose Purpose, target, code string) error {
	return s.client.Set(ctx, codeKey(channel, purpose, target), code, s.ttl).Err()
}

// Consume atomically checks the presented code and removes it on success.
// A missing or expired key yields ErrCodeExpired, a wrong code ErrCodeMismatch.
func (s *codeStore) Consume(ctx context.Context, channel Channel, purpose Purpose, target, code string) error {
	result, err := consumeCodeScript.Run(ctx, s.client, []string{codeKey(channel, purpose, target)}, code).Int()
	if err != nil {
		return fmt.Errorf("consume verify code: %w", err)
	}
	switch result {
	case 1:
		return nil
	case 0:
		return ErrCodeMismatch
	default:
		return ErrCodeExpired
	}
}

// Drop removes a stored code without checking it, used to roll back when the
// code could not be delivered.
func (s *codeStore) Drop(ctx context.Context, channel Channel, purpose Purpose, target string) error {
	return s.client.Del(ctx, codeKey(channel, purpose, target)).Err()
}

// Preload pushes the consume script into the Redis script cache so later
// calls run on EVALSHA without the one-time full upload.
func (s *codeStore) Preload(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis not available: %w", err)
	}
	if err := consumeCodeScript.Load(ctx, s.client).Err(); err != nil {
		return fmt.Errorf("load consume script: %w", err)
	}
	return nil
}

// GenerateCode returns a six-digit numeric code in 100000..999999.
func GenerateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}
