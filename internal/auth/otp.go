package auth

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
)

// OTPStore keeps one pending password reset code per email, plus a count of
// wrong guesses against it. Set starts a fresh count.
type OTPStore interface {
	Set(ctx context.Context, email, code string, ttl time.Duration) error
	Get(ctx context.Context, email string) (string, bool, error)
	// Take returns the code and removes it in one step. Of several callers
	// racing for the same code at most one sees ok.
	Take(ctx context.Context, email string) (string, bool, error)
	// Fail records a wrong guess and returns the failures so far.
	Fail(ctx context.Context, email string, ttl time.Duration) (int, error)
	Delete(ctx context.Context, email string) error
}

// NewOTPStore prefers Redis so codes survive restarts and are shared between
// instances; without it codes live in process memory.
func NewOTPStore(client *redis.Client) OTPStore {
	if client == nil {
		return NewMemoryOTPStore()
	}
	return &RedisOTPStore{client: client}
}

type RedisOTPStore struct {
	client *redis.Client
}

func (s *RedisOTPStore) Set(ctx context.Context, email, code string, ttl time.Duration) error {
	_, err := s.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Set(ctx, otpKey(email), code, ttl)
		p.Del(ctx, otpFailKey(email))
		return nil
	})
	return err
}

func (s *RedisOTPStore) Get(ctx context.Context, email string) (string, bool, error) {
	code, err := s.client.Get(ctx, otpKey(email)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return code, true, nil
}

func (s *RedisOTPStore) Take(ctx context.Context, email string) (string, bool, error) {
	code, err := s.client.GetDel(ctx, otpKey(email)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return code, true, nil
}

func (s *RedisOTPStore) Fail(ctx context.Context, email string, ttl time.Duration) (int, error) {
	key := otpFailKey(email)
	var incr *redis.IntCmd
	_, err := s.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		incr = p.Incr(ctx, key)
		p.Expire(ctx, key, ttl)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return int(incr.Val()), nil
}

func (s *RedisOTPStore) Delete(ctx context.Context, email string) error {
	return s.client.Del(ctx, otpKey(email), otpFailKey(email)).Err()
}

type MemoryOTPStore struct {
	mu    sync.Mutex
	cache *cache.Cache
}

func NewMemoryOTPStore() *MemoryOTPStore {
	return &MemoryOTPStore{cache: cache.New(defaultOTPTTL, time.Minute)}
}

func (s *MemoryOTPStore) Set(_ context.Context, email, code string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache.Set(otpKey(email), code, ttl)
	s.cache.Delete(otpFailKey(email))
	return nil
}

func (s *MemoryOTPStore) Get(_ context.Context, email string) (string, bool, error) {
	v, ok := s.cache.Get(otpKey(email))
	if !ok {
		return "", false, nil
	}
	code, ok := v.(string)
	return code, ok, nil
}

func (s *MemoryOTPStore) Take(ctx context.Context, email string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	code, ok, _ := s.Get(ctx, email)
	if ok {
		s.cache.Delete(otpKey(email))
	}
	return code, ok, nil
}

func (s *MemoryOTPStore) Fail(_ context.Context, email string, ttl time.Duration) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 1
	if v, ok := s.cache.Get(otpFailKey(email)); ok {
		n = v.(int) + 1
	}
	if ttl <= 0 {
		ttl = cache.DefaultExpiration
	}
	s.cache.Set(otpFailKey(email), n, ttl)
	return n, nil
}

func (s *MemoryOTPStore) Delete(_ context.Context, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache.Delete(otpKey(email))
	s.cache.Delete(otpFailKey(email))
	return nil
}

func otpKey(email string) string {
	return "otp:" + strings.ToLower(email)
}

func otpFailKey(email string) string {
	return "otp-fail:" + strings.ToLower(email)
}

var generateOTPFn = func() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
