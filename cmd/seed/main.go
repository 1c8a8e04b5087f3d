package main

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"storefront/internal/config"
	"storefront/internal/database"
	"storefront/internal/domain"
	"storefront/internal/modules/auth"
	"storefront/internal/repository"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.LoadBackendConfig()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger, err := zap.NewDevelopment()
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	db, err := database.Connect(cfg.DatabaseURL, logger)
	if err != nil {
		logger.Fatal("DB connection failed", zap.Error(err))
	}

	logger.Info("running AutoMigrate")
	if err := db.AutoMigrate(domain.Models()...); err != nil {
		logger.Fatal("AutoMigrate failed", zap.Error(err))
	}

	logger.Info("cleaning old data")
	// children first to satisfy foreign keys
	for _, table := range []string{
		"cart_items", "carts", "refresh_tokens", "otp_codes",
		"banners", "flash_offers", "referrals", "coupons", "products", "users",
	} {
		if err := db.Exec("DELETE FROM " + table).Error; err != nil {
			logger.Fatal("cleanup failed", zap.String("table", table), zap.Error(err))
		}
	}

	ctx := context.Background()
	seedUsers(ctx, db, logger)
	seedProducts(ctx, db, logger)
	seedPromotions(ctx, db, logger)
	logger.Info("seed completed")
}

func seedUsers(ctx context.Context, db *gorm.DB, logger *zap.Logger) {
	users := repository.NewUserRepository(db)
	for _, u := range []struct {
		name, email, password string
		role                  domain.UserRole
	}{
		{"Store Admin", "admin@storefront.dev", "admin123", domain.RoleAdmin},
		{"Priya Sharma", "priya@storefront.dev", "priya123", domain.RoleCustomer},
	} {
		hash, err := auth.HashPassword(u.password)
		if err != nil {
			logger.Fatal("hash password", zap.Error(err))
		}
		email := u.email
		if err := users.Create(ctx, &domain.User{Name: u.name, Email: &email, PasswordHash: hash, Role: u.role}); err != nil {
			logger.Fatal("create user", zap.String("email", email), zap.Error(err))
		}
	}
	logger.Info("users created", zap.Int("count", 2))
}

func seedProducts(ctx context.Context, db *gorm.DB, logger *zap.Logger) {
	products := repository.NewProductRepository(db)
	items := []domain.Product{
		{ID: "assam-tea-250", Title: "Assam Tea 250g", Category: "tea", Price: rupees(180), DiscountPrice: rupees(149), Stock: 40,
			Images: []string{"https://cdn.storefront.dev/assam.jpg"}},
		{ID: "masala-chai-100", Title: "Masala Chai 100g", Category: "tea", Price: rupees(120), Stock: 3},
		{ID: "darjeeling-100", Title: "Darjeeling First Flush", Category: "tea", Price: rupees(350), DiscountPrice: rupees(299), Stock: 12},
		{ID: "filter-coffee-500", Title: "Filter Coffee 500g", Category: "coffee", Price: rupees(420), Stock: 25},
		{ID: "steel-tumbler", Title: "Steel Tumbler Set", Category: "accessories", Price: rupees(260), Stock: 0},
		{ID: "clay-kulhad-6", Title: "Clay Kulhad (6 pcs)", Category: "accessories", Price: rupees(90), Stock: 60},
	}
	for i := range items {
		items[i].Description = items[i].Title + " from our kitchen."
		if err := products.Create(ctx, &items[i]); err != nil {
			logger.Fatal("create product", zap.String("id", items[i].ID), zap.Error(err))
		}
	}
	logger.Info("products created", zap.Int("count", len(items)))
}

func seedPromotions(ctx context.Context, db *gorm.DB, logger *zap.Logger) {
	promos := repository.NewPromotionRepository(db)
	expires := time.Now().UTC().AddDate(0, 3, 0)

	coupons := []domain.Coupon{
		{Code: "WELCOME50", DiscountType: domain.DiscountFlat, Value: rupees(50), MinOrderValue: rupees(199), ExpiresAt: &expires, Active: true},
		{Code: "SAVE10", DiscountType: domain.DiscountPercent, Value: decimal.NewFromInt(10), Active: true},
	}
	for i := range coupons {
		if err := promos.CreateCoupon(ctx, &coupons[i]); err != nil {
			logger.Fatal("create coupon", zap.Error(err))
		}
	}

	if err := promos.CreateReferral(ctx, &domain.Referral{
		Code: "PRIYA100", ReferrerName: "Priya Sharma", DiscountType: domain.DiscountFlat, Value: rupees(100), Active: true,
	}); err != nil {
		logger.Fatal("create referral", zap.Error(err))
	}

	if err := promos.CreateBanner(ctx, &domain.Banner{
		Title: "Monsoon Tea Festival", ImageURL: "https://cdn.storefront.dev/banners/monsoon.jpg", Link: "/products?category=tea", Active: true,
	}); err != nil {
		logger.Fatal("create banner", zap.Error(err))
	}
	logger.Info("promotions created")
}

func rupees(v int64) decimal.Decimal {
	return decimal.NewFromInt(v)
}
