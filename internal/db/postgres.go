package db

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/yungbote/bankbridge-backend/internal/logger"
	"github.com/yungbote/bankbridge-backend/internal/types"
	"github.com/yungbote/bankbridge-backend/internal/utils"
)

type PostgresService struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPostgresService(log *logger.Logger) (*PostgresService, error) {
	serviceLog := log.With("service", "PostgresService")

	log.Info("Loading environment variables...")
	postgresHost := utils.GetEnv("POSTGRES_HOST", "localhost", log)
	postgresPort := utils.GetEnv("POSTGRES_PORT", "5432", log)
	postgresUser := utils.GetEnv("POSTGRES_USER", "postgres", log)
	postgresPassword := utils.GetEnv("POSTGRES_PASSWORD", "", log)
	postgresName := utils.GetEnv("POSTGRES_NAME", "bankbridge", log)
	log.Debug("Environment variables loaded")

	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", postgresUser, postgresPassword, postgresHost, postgresPort, postgresName)

	log.Info("Connecting to Postgres...")
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		log.Error("Failed to connect to Postgres", "error", err)
		return nil, fmt.Errorf("Failed to connect to Postgres: %w", err)
	}

	return &PostgresService{db: db, log: serviceLog}, nil
}

func (s *PostgresService) AutoMigrateAll() error {
	s.log.Info("Auto migrating postgres tables...")
	err := s.db.AutoMigrate(
		&types.User{},
		&types.UserProfile{},
		&types.BankAccount{},
		&types.Transaction{},
	)
	if err != nil {
		s.log.Error("Auto migration failed for postgres tables", "error", err)
		return err
	}
	s.log.Info("Configuring foreign key relationships for postgres tables...")
	constraints := []struct {
		model interface{}
		name  string
		sql   string
	}{
		{
			model: &types.UserProfile{},
			name:  "fk_user_profile_user_id",
			sql: `ALTER TABLE "user_profile"
				ADD CONSTRAINT "fk_user_profile_user_id"
				FOREIGN KEY ("user_id") REFERENCES "user"("id")
				ON DELETE CASCADE`,
		},
		{
			model: &types.BankAccount{},
			name:  "fk_bank_account_user_id",
			sql: `ALTER TABLE "bank_account"
				ADD CONSTRAINT "fk_bank_account_user_id"
				FOREIGN KEY ("user_id") REFERENCES "user"("id")
				ON DELETE RESTRICT`,
		},
		{
			model: &types.Transaction{},
			name:  "fk_transaction_source_account_id",
			sql: `ALTER TABLE "transaction"
				ADD CONSTRAINT "fk_transaction_source_account_id"
				FOREIGN KEY ("source_account_id") REFERENCES "bank_account"("id")
				ON DELETE RESTRICT`,
		},
		{
			model: &types.Transaction{},
			name:  "fk_transaction_destination_account_id",
			sql: `ALTER TABLE "transaction"
				ADD CONSTRAINT "fk_transaction_destination_account_id"
				FOREIGN KEY ("destination_account_id") REFERENCES "bank_account"("id")
				ON DELETE RESTRICT`,
		},
	}
	for _, c := range constraints {
		if s.db.Migrator().HasConstraint(c.model, c.name) {
			continue
		}
		if err := s.db.Exec(c.sql).Error; err != nil {
			return fmt.Errorf("Failed to add %s: %w", c.name, err)
		}
	}
	return nil
}

func (s *PostgresService) DB() *gorm.DB {
	return s.db
}
