// Package main provides a CLI tool for seeding the database with a tenant
// admin and, optionally, demo catalog data.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/shopspring/decimal"

	"agrostock/internal/config"
	"agrostock/internal/core/appctx"
	"agrostock/internal/core/id"
	"agrostock/internal/core/types"
	"agrostock/internal/domain/auth"
	"agrostock/internal/domain/catalogs/farm"
	"agrostock/internal/domain/catalogs/field"
	"agrostock/internal/domain/catalogs/product"
	"agrostock/internal/domain/catalogs/supplier"
	"agrostock/internal/domain/ledger"
	"agrostock/internal/infrastructure/storage/postgres"
	"agrostock/internal/infrastructure/storage/postgres/auth_repo"
	"agrostock/internal/infrastructure/storage/postgres/catalog_repo"
	"agrostock/internal/infrastructure/storage/postgres/ledger_repo"
	"agrostock/pkg/logger"
	"agrostock/pkg/numerator"
)

func main() {
	log, err := logger.New(logger.Config{
		Level:       "info",
		Development: true,
	})
	if err != nil {
		fmt.Printf("failed to create logger: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalw("failed to load configuration", "error", err)
	}

	ctx := context.Background()

	pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(cfg.DB.ConnectionString()))
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()
	log.Info("connected to database")

	txManager := postgres.NewTxManager(pool)
	userRepo := auth_repo.NewUserRepo(txManager)
	jwtService := auth.NewJWTService(auth.DefaultJWTConfig(cfg.JWT.Secret))
	authService := auth.NewService(userRepo, jwtService, txManager)

	admin, err := seedAdmin(ctx, authService, userRepo, log)
	if err != nil {
		log.Fatalw("failed to seed admin user", "error", err)
	}

	if os.Getenv("SEED_DEMO_DATA") == "true" {
		// All repositories resolve the tenant from the caller context.
		seedCtx := appctx.WithUser(ctx, &appctx.UserContext{
			UserID:   admin.ID.String(),
			TenantID: admin.TenantID.String(),
			Email:    admin.Email,
			Role:     admin.Role,
		})
		if err := seedDemoData(seedCtx, pool, txManager, log); err != nil {
			log.Fatalw("failed to seed demo data", "error", err)
		}
	}

	log.Info("seeding completed successfully")
}

// seedAdmin registers a fresh tenant with its admin user, unless the email is
// already taken.
func seedAdmin(ctx context.Context, authService *auth.Service, userRepo *auth_repo.UserRepo, log *logger.Logger) (*auth.User, error) {
	email := os.Getenv("ADMIN_EMAIL")
	if email == "" {
		email = "admin@agrostock.local"
	}
	password := os.Getenv("ADMIN_PASSWORD")
	if password == "" {
		password = "Admin123!"
	}

	existing, err := userRepo.FindByEmail(ctx, email)
	if err == nil {
		log.Infow("admin user already exists", "email", email, "user_id", existing.ID)
		return existing, nil
	}

	admin, err := authService.Register(ctx, auth.RegisterInput{
		Email:    email,
		Password: password,
		Name:     "System Admin",
	})
	if err != nil {
		return nil, err
	}

	log.Infow("admin user created",
		"email", email, "user_id", admin.ID, "tenant_id", admin.TenantID)
	return admin, nil
}

// seedDemoData creates a small demo dataset: catalogs plus one stock entry so
// the aggregate endpoints have something to show.
func seedDemoData(ctx context.Context, pool *postgres.Pool, txManager *postgres.TxManager, log *logger.Logger) error {
	codes := numerator.New(pool)

	entryRepo := ledger_repo.NewEntryRepo(txManager)
	exitRepo := ledger_repo.NewExitRepo(txManager)
	history := ledger_repo.NewMovementHistory(entryRepo, exitRepo)
	aggregates := ledger_repo.NewAggregateRepo(txManager)
	resolver := ledger_repo.NewCatalogResolver(txManager)
	audit, err := postgres.NewAuditService(txManager)
	if err != nil {
		return err
	}

	productRepo := catalog_repo.NewProductRepo(txManager)
	supplierRepo := catalog_repo.NewSupplierRepo(txManager)
	farmRepo := catalog_repo.NewFarmRepo(txManager)
	fieldRepo := catalog_repo.NewFieldRepo(txManager)

	products := product.NewService(productRepo, txManager, codes, history)
	suppliers := supplier.NewService(supplierRepo, txManager, codes, history)
	farms := farm.NewService(farmRepo, txManager, codes, fieldRepo)
	fields := field.NewService(fieldRepo, txManager, codes, farmRepo, history)
	entries := ledger.NewEntryService(entryRepo, aggregates, resolver, txManager, codes, audit)

	tenantID, err := id.Parse(appctx.GetTenantID(ctx))
	if err != nil {
		return fmt.Errorf("tenant not in context: %w", err)
	}

	urea := product.NewProduct(tenantID, "", "Urea 45-00-00", product.CategoryFertilizer, product.UnitKilogram)
	urea.MinStock = types.NewQuantityFromFloat64(500)
	if err := products.Create(ctx, urea); err != nil {
		return fmt.Errorf("create product: %w", err)
	}

	soy := product.NewProduct(tenantID, "", "Soybean Seed M6410", product.CategorySeed, product.UnitSack)
	if err := products.Create(ctx, soy); err != nil {
		return fmt.Errorf("create product: %w", err)
	}

	sup := supplier.NewSupplier(tenantID, "", "AgroInsumos Ltda")
	cnpj := "12.345.678/0001-95"
	sup.CNPJ = &cnpj
	if err := suppliers.Create(ctx, sup); err != nil {
		return fmt.Errorf("create supplier: %w", err)
	}

	demoFarm := farm.NewFarm(tenantID, "", "Fazenda Santa Clara")
	demoFarm.AreaHectares = decimal.NewFromInt(1200)
	if err := farms.Create(ctx, demoFarm); err != nil {
		return fmt.Errorf("create farm: %w", err)
	}

	plot := field.NewField(tenantID, demoFarm.ID, "", "Talhao 01")
	plot.AreaHectares = decimal.NewFromInt(85)
	if err := fields.Create(ctx, plot); err != nil {
		return fmt.Errorf("create field: %w", err)
	}

	entry := &ledger.Entry{
		Type:       ledger.EntryPurchase,
		ProductID:  urea.ID,
		SupplierID: sup.ID,
		Quantity:   types.NewQuantityFromFloat64(1000),
		UnitCost:   types.NewCost(2.85),
		Note:       "opening stock",
	}
	if _, err := entries.Create(ctx, entry); err != nil {
		return fmt.Errorf("create entry: %w", err)
	}

	log.Infow("demo data created",
		"products", 2, "suppliers", 1, "farms", 1, "fields", 1, "entries", 1)
	return nil
}
