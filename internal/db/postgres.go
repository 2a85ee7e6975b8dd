package db

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/devlabsgt/backend/internal/domain/beneficiary"
	"github.com/devlabsgt/backend/internal/domain/identity"
	"github.com/devlabsgt/backend/internal/domain/project"
	"github.com/devlabsgt/backend/internal/domain/registry"
	"github.com/devlabsgt/backend/internal/platform/envutil"
	"github.com/devlabsgt/backend/internal/platform/logger"
)

type PostgresService struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPostgresService(log *logger.Logger) (*PostgresService, error) {
	serviceLog := log.With("service", "PostgresService")

	dsn := envutil.Get("POSTGRES_DSN", "")
	if dsn == "" {
		host := envutil.Get("POSTGRES_HOST", "localhost")
		port := envutil.Get("POSTGRES_PORT", "5432")
		user := envutil.Get("POSTGRES_USER", "postgres")
		password := envutil.Get("POSTGRES_PASSWORD", "")
		name := envutil.Get("POSTGRES_NAME", "ngo")
		dsn = fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", user, password, host, port, name)
	}

	serviceLog.Info("connecting to postgres")
	gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		serviceLog.Error("postgres connection failed", "error", err)
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	if err := gdb.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`).Error; err != nil {
		serviceLog.Error("uuid-ossp extension failed", "error", err)
		return nil, fmt.Errorf("enable uuid-ossp: %w", err)
	}

	return &PostgresService{db: gdb, log: serviceLog}, nil
}

func (s *PostgresService) AutoMigrateAll() error {
	s.log.Info("running auto migration")
	if err := s.db.AutoMigrate(
		&identity.User{},
		&identity.UserToken{},

		&registry.Donor{},
		&registry.GlobalObjective{},
		&registry.StrategicLine{},
		&registry.MailConfig{},

		&beneficiary.Beneficiary{},

		&project.Project{},
		&project.Donor{},
		&project.Activity{},
		&project.ActivityBeneficiary{},
		&project.ProjectBeneficiary{},
		&project.Location{},
		&project.Evidence{},
		&project.ProjectObjective{},
		&project.ProjectStrategicLine{},
	); err != nil {
		s.log.Error("auto migration failed", "error", err)
		return err
	}
	return nil
}

func (s *PostgresService) DB() *gorm.DB {
	return s.db
}
