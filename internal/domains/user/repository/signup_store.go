package repository

import (
	"context"
	"fmt"
	"time"

	user "writespace-backend/internal/domains/user"
	"writespace-backend/pkg/cache"
)

// redisSignupStore keeps pending signups as JSON under signup:<email>.
type redisSignupStore struct {
	cache cache.Cache
}

func NewSignupStore(c cache.Cache) user.PendingSignupStore {
	return &redisSignupStore{cache: c}
}

func signupKey(email string) string {
	return "signup:" + user.NormalizeEmail(email)
}

func attemptsKey(email string) string {
	return "signup:attempts:" + user.NormalizeEmail(email)
}

func (s *redisSignupStore) Save(ctx context.Context, p *user.PendingSignup, ttl time.Duration) error {
	if err := s.cache.Set(ctx, signupKey(p.Email), p, ttl); err != nil {
		return fmt.Errorf("save pending signup: %w", err)
	}
	return nil
}

func (s *redisSignupStore) Get(ctx context.Context, email string) (*user.PendingSignup, error) {
	var p user.PendingSignup
	found, err := s.cache.Get(ctx, signupKey(email), &p)
	if err != nil {
		return nil, fmt.Errorf("load pending signup: %w", err)
	}
	if !found {
		return nil, user.ErrSignupNotFound
	}
	return &p, nil
}

func (s *redisSignupStore) Delete(ctx context.Context, email string) error {
	return s.cache.Delete(ctx, signupKey(email), attemptsKey(email))
}

func (s *redisSignupStore) RecordFailedAttempt(ctx context.Context, email string, ttl time.Duration) (int64, error) {
	key := attemptsKey(email)
	n, err := s.cache.Increment(ctx, key)
	if err != nil {
		return 0, fmt.Errorf("count otp attempt: %w", err)
	}
	// First failure starts the window
	if n == 1 {
		if err := s.cache.Expire(ctx, key, ttl); err != nil {
			return n, fmt.Errorf("expire otp attempts: %w", err)
		}
	}
	return n, nil
}
