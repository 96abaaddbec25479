package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net/mail"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"dvlottery.backend/internal/config"
	"dvlottery.backend/internal/domain/entities"
	domainerrors "dvlottery.backend/internal/domain/errors"
	domainrepo "dvlottery.backend/internal/domain/repositories"
	"dvlottery.backend/internal/infrastructure/repositories"
	"dvlottery.backend/pkg/crypto"
)

const minPasswordLength = 8

var openAdminSeedDB = func(dsn string) (*gorm.DB, error) {
	return gorm.Open(postgres.New(postgres.Config{DSN: dsn, PreferSimpleProtocol: true}), &gorm.Config{PrepareStmt: false})
}

var openAdminSQLDB = func(db *gorm.DB) (io.Closer, error) {
	return db.DB()
}

type adminSeedDeps struct {
	loadEnv func() error
	loadCfg func() *config.Config
	prepare func(cfg *config.Config) (domainrepo.AdminRepository, io.Closer, error)
	hash    func(password string) (string, error)
	out     io.Writer
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

func defaultAdminSeedDeps() adminSeedDeps {
	return adminSeedDeps{
		loadEnv: func() error { return godotenv.Load() },
		loadCfg: config.Load,
		prepare: func(cfg *config.Config) (domainrepo.AdminRepository, io.Closer, error) {
			db, err := openAdminSeedDB(cfg.Database.URL())
			if err != nil {
				return nil, nil, fmt.Errorf("failed to connect db: %w", err)
			}

			sqlDB, err := openAdminSQLDB(db)
			if err != nil {
				return nil, nil, fmt.Errorf("failed to init sql db: %w", err)
			}
			return repositories.NewAdminRepository(db), sqlDB, nil
		},
		hash: crypto.HashPassword,
		out:  os.Stdout,
	}
}

type seedInput struct {
	email    string
	name     string
	password string
}

func parseSeedInput(args []string) (seedInput, error) {
	fs := flag.NewFlagSet("admin-seed", flag.ContinueOnError)
	emailFlag := fs.String("email", "", "admin email (required)")
	nameFlag := fs.String("name", "", "admin display name")
	passwordFlag := fs.String("password", "", "admin password (defaults to ADMIN_PASSWORD)")
	if err := fs.Parse(args); err != nil {
		return seedInput{}, err
	}

	in := seedInput{
		email:    strings.ToLower(strings.TrimSpace(*emailFlag)),
		name:     strings.TrimSpace(*nameFlag),
		password: *passwordFlag,
	}
	if in.password == "" {
		in.password = os.Getenv("ADMIN_PASSWORD")
	}

	if in.email == "" {
		return seedInput{}, fmt.Errorf("--email is required")
	}
	if _, err := mail.ParseAddress(in.email); err != nil {
		return seedInput{}, fmt.Errorf("invalid email %q: %w", in.email, err)
	}
	if len(in.password) < minPasswordLength {
		return seedInput{}, fmt.Errorf("password must be at least %d characters", minPasswordLength)
	}
	if in.name == "" {
		in.name = strings.SplitN(in.email, "@", 2)[0]
	}
	return in, nil
}

// runAdminSeed creates the admin account or, when the email already exists,
// resets its password and reactivates it.
func runAdminSeed(args []string, deps adminSeedDeps) error {
	def := defaultAdminSeedDeps()
	if deps.loadEnv == nil {
		deps.loadEnv = def.loadEnv
	}
	if deps.loadCfg == nil {
		deps.loadCfg = def.loadCfg
	}
	if deps.prepare == nil {
		deps.prepare = def.prepare
	}
	if deps.hash == nil {
		deps.hash = def.hash
	}
	if deps.out == nil {
		deps.out = def.out
	}

	if err := deps.loadEnv(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	in, err := parseSeedInput(args)
	if err != nil {
		return err
	}

	hash, err := deps.hash(in.password)
	if err != nil {
		return err
	}

	cfg := deps.loadCfg()
	repo, closer, err := deps.prepare(cfg)
	if err != nil {
		return err
	}
	if closer == nil {
		closer = nopCloser{}
	}
	defer closer.Close()

	ctx := context.Background()
	existing, err := repo.GetByEmail(ctx, in.email)
	switch {
	case err == nil:
		existing.PasswordHash = hash
		existing.Name = in.name
		existing.IsActive = true
		if err := repo.Update(ctx, existing); err != nil {
			return fmt.Errorf("failed updating admin: %w", err)
		}
		_, _ = fmt.Fprintln(deps.out, "Updated existing admin account")
		_, _ = fmt.Fprintf(deps.out, "admin_id=%s\n", existing.ID.String())
	case errors.Is(err, domainerrors.ErrNotFound):
		admin := &entities.Admin{
			Email:        in.email,
			Name:         in.name,
			PasswordHash: hash,
			IsActive:     true,
		}
		if err := repo.Create(ctx, admin); err != nil {
			return fmt.Errorf("failed creating admin: %w", err)
		}
		_, _ = fmt.Fprintln(deps.out, "Created admin account")
		_, _ = fmt.Fprintf(deps.out, "admin_id=%s\n", admin.ID.String())
	default:
		return fmt.Errorf("failed to load admin %s: %w", in.email, err)
	}

	_, _ = fmt.Fprintf(deps.out, "email=%s\n", in.email)
	return nil
}

func main() {
	if err := runAdminSeed(os.Args[1:], defaultAdminSeedDeps()); err != nil {
		log.Fatal(err)
	}
}
