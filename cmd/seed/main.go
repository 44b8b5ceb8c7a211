package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"avilegal.backend/internal/config"
	"avilegal.backend/internal/domain/entities"
	domainerrors "avilegal.backend/internal/domain/errors"
	domainrepo "avilegal.backend/internal/domain/repositories"
	"avilegal.backend/internal/infrastructure/datasources/postgres"
	"avilegal.backend/internal/infrastructure/models"
	"avilegal.backend/internal/infrastructure/repositories"
	"avilegal.backend/pkg/crypto"
)

const minAdminPasswordLength = 8

var openSeedDB = func(cfg config.DatabaseConfig) (*gorm.DB, error) {
	sqlDB, err := postgres.NewConnection(cfg)
	if err != nil {
		return nil, err
	}
	return postgres.NewGorm(sqlDB)
}

var hashPassword = crypto.HashPassword

// seedStore is the write surface the seeder needs. Every Ensure* call is
// idempotent so the command can be re-run against a live database.
type seedStore interface {
	Migrate(ctx context.Context) error
	UpsertPermission(ctx context.Context, p *entities.Permission) error
	EnsureRole(ctx context.Context, def entities.RoleDefinition) (bool, error)
	EnsureTemplate(ctx context.Context, tpl *entities.EmailTemplate) error
	EnsureService(ctx context.Context, svc *entities.Service) (bool, error)
	EnsureUser(ctx context.Context, user *entities.User, roles []string) (bool, error)
}

type seedDeps struct {
	loadEnv func() error
	loadCfg func() *config.Config
	prepare func(cfg *config.Config) (seedStore, io.Closer, error)
	getenv  func(string) string
	out     io.Writer
}

type gormSeedStore struct {
	db        *gorm.DB
	roles     domainrepo.RoleRepository
	users     domainrepo.UserRepository
	services  domainrepo.ServiceRepository
	templates domainrepo.EmailTemplateRepository
}

func (s gormSeedStore) Migrate(ctx context.Context) error {
	return s.db.WithContext(ctx).AutoMigrate(models.All()...)
}

func (s gormSeedStore) UpsertPermission(ctx context.Context, p *entities.Permission) error {
	return s.roles.UpsertPermission(ctx, p)
}

// EnsureRole creates a missing system role with its default grants. Grants
// on existing roles are left alone since staff may have edited them.
func (s gormSeedStore) EnsureRole(ctx context.Context, def entities.RoleDefinition) (bool, error) {
	if _, err := s.roles.GetByName(ctx, def.Name); err == nil {
		return false, nil
	} else if !errors.Is(err, domainerrors.ErrNotFound) {
		return false, err
	}

	role := &entities.Role{
		Name:        def.Name,
		DisplayName: def.DisplayName,
		Description: def.Description,
		IsSystem:    true,
	}
	if err := s.roles.Create(ctx, role); err != nil {
		return false, err
	}
	names := make([]string, 0, len(def.Permissions))
	for _, p := range def.Permissions {
		names = append(names, string(p))
	}
	return true, s.roles.SyncPermissions(ctx, role.ID, names)
}

func (s gormSeedStore) EnsureTemplate(ctx context.Context, tpl *entities.EmailTemplate) error {
	return s.templates.CreateIfMissing(ctx, tpl)
}

func (s gormSeedStore) EnsureService(ctx context.Context, svc *entities.Service) (bool, error) {
	if _, err := s.services.GetBySlug(ctx, svc.Slug); err == nil {
		return false, nil
	} else if !errors.Is(err, domainerrors.ErrNotFound) {
		return false, err
	}
	return true, s.services.Create(ctx, svc)
}

func (s gormSeedStore) EnsureUser(ctx context.Context, user *entities.User, roles []string) (bool, error) {
	if _, err := s.users.GetByEmail(ctx, user.Email); err == nil {
		return false, nil
	} else if !errors.Is(err, domainerrors.ErrNotFound) {
		return false, err
	}
	if err := s.users.Create(ctx, user); err != nil {
		return false, err
	}
	return true, s.roles.SyncUserRoles(ctx, user.ID, roles)
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

func defaultSeedDeps() seedDeps {
	return seedDeps{
		loadEnv: func() error { return godotenv.Load() },
		loadCfg: config.Load,
		prepare: func(cfg *config.Config) (seedStore, io.Closer, error) {
			db, err := openSeedDB(cfg.Database)
			if err != nil {
				return nil, nil, fmt.Errorf("failed to connect db: %w", err)
			}
			sqlDB, err := db.DB()
			if err != nil {
				return nil, nil, fmt.Errorf("failed to init sql db: %w", err)
			}
			return gormSeedStore{
				db:        db,
				roles:     repositories.NewRoleRepository(db),
				users:     repositories.NewUserRepository(db),
				services:  repositories.NewServiceRepository(db),
				templates: repositories.NewEmailTemplateRepository(db),
			}, sqlDB, nil
		},
		getenv: os.Getenv,
		out:    os.Stdout,
	}
}

// defaultServices is the starter catalogue. Prices are in naira.
func defaultServices() []entities.Service {
	return []entities.Service{
		{
			Name:           "Business Name Registration",
			Slug:           "business-name",
			Description:    "Register your business name with CAC. Suited to sole proprietors and small businesses.",
			Price:          decimal.NewFromInt(50000),
			ProcessingTime: "3-5 days",
			IsActive:       true,
		},
		{
			Name:           "Company Incorporation",
			Slug:           "company-incorporation",
			Description:    "Register a private limited company with the Corporate Affairs Commission, including name reservation and statutory documents.",
			Price:          decimal.NewFromInt(100000),
			ProcessingTime: "7-10 days",
			IsActive:       true,
		},
		{
			Name:           "Incorporated Trustees (IT)",
			Slug:           "incorporated-trustees",
			Description:    "Register NGOs, churches, mosques, clubs and other non-profit organisations as incorporated trustees with CAC.",
			Price:          decimal.NewFromInt(200000),
			ProcessingTime: "14-21 days",
			IsActive:       true,
		},
	}
}

func runSeed(args []string, deps seedDeps) error {
	def := defaultSeedDeps()
	if deps.loadEnv == nil {
		deps.loadEnv = def.loadEnv
	}
	if deps.loadCfg == nil {
		deps.loadCfg = def.loadCfg
	}
	if deps.prepare == nil {
		deps.prepare = def.prepare
	}
	if deps.getenv == nil {
		deps.getenv = def.getenv
	}
	if deps.out == nil {
		deps.out = def.out
	}

	if err := deps.loadEnv(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	fs := flag.NewFlagSet("seed", flag.ContinueOnError)
	migrate := fs.Bool("migrate", true, "auto-migrate the schema before seeding")
	withServices := fs.Bool("services", true, "seed the default service catalogue")
	adminEmail := fs.String("admin-email", firstNonEmpty(deps.getenv("SEED_ADMIN_EMAIL"), "superadmin@avilegal.com"), "super admin email")
	adminName := fs.String("admin-name", "Super Admin", "super admin display name")
	adminPassword := fs.String("admin-password", deps.getenv("SEED_ADMIN_PASSWORD"), "super admin password; the account is skipped when empty")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *adminPassword != "" && len(*adminPassword) < minAdminPasswordLength {
		return fmt.Errorf("admin password must be at least %d characters", minAdminPasswordLength)
	}

	cfg := deps.loadCfg()
	store, closer, err := deps.prepare(cfg)
	if err != nil {
		return err
	}
	if closer == nil {
		closer = nopCloser{}
	}
	defer closer.Close()

	ctx := context.Background()
	if *migrate {
		if err := store.Migrate(ctx); err != nil {
			return fmt.Errorf("failed to migrate: %w", err)
		}
		_, _ = fmt.Fprintln(deps.out, "Schema migrated")
	}

	for _, p := range entities.DefaultPermissions {
		if err := store.UpsertPermission(ctx, &entities.Permission{Name: p.Name, DisplayName: p.DisplayName, Group: p.Group}); err != nil {
			return fmt.Errorf("failed to seed permission %s: %w", p.Name, err)
		}
	}
	_, _ = fmt.Fprintf(deps.out, "permissions=%d\n", len(entities.DefaultPermissions))

	for _, role := range entities.DefaultRoles() {
		created, err := store.EnsureRole(ctx, role)
		if err != nil {
			return fmt.Errorf("failed to seed role %s: %w", role.Name, err)
		}
		_, _ = fmt.Fprintf(deps.out, "role %s %s\n", role.Name, outcome(created))
	}

	templates := entities.DefaultEmailTemplates()
	for i := range templates {
		if err := store.EnsureTemplate(ctx, &templates[i]); err != nil {
			return fmt.Errorf("failed to seed template %s: %w", templates[i].Slug, err)
		}
	}
	_, _ = fmt.Fprintf(deps.out, "templates=%d\n", len(templates))

	if *withServices {
		services := defaultServices()
		for i := range services {
			created, err := store.EnsureService(ctx, &services[i])
			if err != nil {
				return fmt.Errorf("failed to seed service %s: %w", services[i].Slug, err)
			}
			_, _ = fmt.Fprintf(deps.out, "service %s %s\n", services[i].Slug, outcome(created))
		}
	}

	if *adminPassword == "" {
		_, _ = fmt.Fprintln(deps.out, "super admin skipped: no password given")
		return nil
	}
	hash, err := hashPassword(*adminPassword)
	if err != nil {
		return err
	}
	created, err := store.EnsureUser(ctx, &entities.User{
		Name:         *adminName,
		Email:        *adminEmail,
		PasswordHash: hash,
		Status:       entities.UserStatusActive,
	}, []string{entities.RoleSuperAdmin})
	if err != nil {
		return fmt.Errorf("failed to seed super admin: %w", err)
	}
	_, _ = fmt.Fprintf(deps.out, "super admin %s %s\n", *adminEmail, outcome(created))
	return nil
}

func outcome(created bool) string {
	if created {
		return "created"
	}
	return "exists"
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func main() {
	if err := runSeed(os.Args[1:], defaultSeedDeps()); err != nil {
		log.Fatal(err)
	}
}
