package services

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	identityrepo "github.com/devlabsgt/backend/internal/data/repos/identity"
	"github.com/devlabsgt/backend/internal/platform/dbctx"
	"github.com/devlabsgt/backend/internal/platform/logger"
)

// RecoveryService manages one-time password-recovery codes. Codes live
// only in redis with a TTL; consuming one deletes it so a code can
// never be replayed.
type RecoveryService interface {
	RequestCode(ctx context.Context, email string) error
	Redeem(ctx context.Context, email, code, newPassword string) error
}

type recoveryService struct {
	log    *logger.Logger
	rdb    *redis.Client
	users  identityrepo.UserRepo
	userSv UserService
	mailer MailerService
	ttl    time.Duration
}

func NewRecoveryService(
	log *logger.Logger,
	rdb *redis.Client,
	users identityrepo.UserRepo,
	userSv UserService,
	mailer MailerService,
	ttl time.Duration,
) RecoveryService {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &recoveryService{
		log:    log.With("service", "RecoveryService"),
		rdb:    rdb,
		users:  users,
		userSv: userSv,
		mailer: mailer,
		ttl:    ttl,
	}
}

func recoveryKey(email string) string {
	return "recovery:" + strings.ToLower(strings.TrimSpace(email))
}

// RequestCode always reports success to the caller; whether the email
// exists is not disclosed.
func (s *recoveryService) RequestCode(ctx context.Context, email string) error {
	user, err := s.users.GetByEmail(dbctx.New(ctx), strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return err
	}
	if user == nil || !user.Active {
		return nil
	}

	code, err := sixDigitCode()
	if err != nil {
		return fmt.Errorf("generate recovery code: %w", err)
	}
	if err := s.rdb.Set(ctx, recoveryKey(email), code, s.ttl).Err(); err != nil {
		return fmt.Errorf("store recovery code: %w", err)
	}

	if !s.mailer.SendTemplated(ctx, user.Email, map[string]string{
		"code": code,
		"name": user.Name,
	}) {
		s.log.Warn("recovery mail not delivered", "user_id", user.ID)
	}
	return nil
}

func (s *recoveryService) Redeem(ctx context.Context, email, code, newPassword string) error {
	key := recoveryKey(email)
	stored, err := s.rdb.Get(ctx, key).Result()
	if err == redis.Nil {
		return fmt.Errorf("recovery code invalid or expired")
	}
	if err != nil {
		return fmt.Errorf("load recovery code: %w", err)
	}
	if stored != strings.TrimSpace(code) {
		return fmt.Errorf("recovery code invalid or expired")
	}

	user, err := s.users.GetByEmail(dbctx.New(ctx), strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return err
	}
	if user == nil || !user.Active {
		return fmt.Errorf("recovery code invalid or expired")
	}
	if err := s.userSv.ChangePassword(ctx, user.ID, newPassword); err != nil {
		return err
	}
	if err := s.rdb.Del(ctx, key).Err(); err != nil {
		s.log.Warn("recovery code cleanup failed", "error", err)
	}
	return nil
}

func sixDigitCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
