package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"tally/internal/categories"
	"tally/internal/shared/config"
	"tally/internal/shared/database"
	"tally/internal/stocks"
	"tally/internal/users"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

type Seeder struct {
	db *database.DB
}

func main() {
	fmt.Println("🌱 Starting Tally Database Seeder...")

	// .env keeps local seeder runs aligned with the server entrypoint
	_ = godotenv.Load()

	// Load configuration
	cfg := config.Load()

	// Initialize database
	db, err := database.InitDB(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	seeder := &Seeder{db: db}

	// Clean database
	fmt.Println("\n🧹 Cleaning database...")
	if err := seeder.CleanDatabase(); err != nil {
		log.Fatalf("Failed to clean database: %v", err)
	}
	fmt.Println("✅ Database cleaned successfully")

	// Seed data
	fmt.Println("\n🌱 Seeding database...")
	if err := seeder.SeedAll(); err != nil {
		log.Fatalf("Failed to seed database: %v", err)
	}
	fmt.Println("✅ Database seeded successfully")

	fmt.Println("\n🎉 Seeding completed! Database is ready for testing.")
}

// CleanDatabase truncates all tables in dependency order
func (s *Seeder) CleanDatabase() error {
	tables := []string{
		"stock_daily_prices",
		"user_stocks",
		"categories",
		"users",
	}

	tx := s.db.BeginTx(context.Background())
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	for _, table := range tables {
		fmt.Printf("  Truncating table: %s\n", table)
		if err := tx.Exec(fmt.Sprintf("TRUNCATE TABLE %s RESTART IDENTITY CASCADE", table)).Error; err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to truncate table %s: %w", table, err)
		}
	}

	return tx.Commit().Error
}

// SeedAll seeds all required data
func (s *Seeder) SeedAll() error {
	ctx := context.Background()

	// Seed users first so categories and watchlists can reference them
	userIDs, err := s.SeedUsers()
	if err != nil {
		return fmt.Errorf("failed to seed users: %w", err)
	}

	if err := s.SeedSystemCategories(); err != nil {
		return fmt.Errorf("failed to seed system categories: %w", err)
	}

	if err := s.SeedCustomCategories(userIDs["demo"]); err != nil {
		return fmt.Errorf("failed to seed custom categories: %w", err)
	}

	if err := s.SeedWatchlist(userIDs["demo"]); err != nil {
		return fmt.Errorf("failed to seed watchlist: %w", err)
	}

	// Clear Redis cache to ensure fresh state
	if err := s.db.Redis.FlushDB(ctx).Err(); err != nil {
		log.Printf("Warning: Failed to clear Redis cache: %v", err)
	}

	return nil
}

// SeedUsers creates the admin account and one demo user
func (s *Seeder) SeedUsers() (map[string]uuid.UUID, error) {
	fmt.Println("  👤 Seeding users...")

	userIDs := make(map[string]uuid.UUID)

	adminPassword := os.Getenv("SEED_ADMIN_PASSWORD")
	if adminPassword == "" {
		adminPassword = "admin123"
	}

	usersData := []struct {
		key      string
		account  string
		name     string
		email    string
		password string
		role     users.Role
	}{
		{"admin", "admin", "管理员", "admin@tally.app", adminPassword, users.RoleAdmin},
		{"demo", "demo_user", "演示用户", "demo@tally.app", "demo123", users.RoleLevel1},
	}

	for _, userData := range usersData {
		hashed, err := bcrypt.GenerateFromPassword([]byte(userData.password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}

		email := userData.email
		user := users.User{
			ID:            uuid.New(),
			Account:       userData.account,
			Name:          userData.name,
			Email:         &email,
			Password:      string(hashed),
			EmailVerified: true,
			Status:        users.StatusActive,
			Role:          userData.role,
		}

		if err := s.db.PostgreSQL.Create(&user).Error; err != nil {
			return nil, fmt.Errorf("failed to create user %s: %w", userData.account, err)
		}

		userIDs[userData.key] = user.ID
		fmt.Printf("    ✅ Created user: %s (%s)\n", user.Account, user.Role)
	}

	return userIDs, nil
}

// systemCategories are the preset bill categories every user sees. The order
// here is the product's display order, so sort_order counts out of it.
var systemCategories = []struct {
	name         string
	categoryType categories.CategoryType
	icon         string
}{
	{"三餐", categories.TypeExpense, "food"},
	{"零食", categories.TypeExpense, "snacks"},
	{"交通", categories.TypeExpense, "transport"},
	{"购物", categories.TypeExpense, "shopping"},
	{"居住", categories.TypeExpense, "housing"},
	{"娱乐", categories.TypeExpense, "entertainment"},
	{"医疗", categories.TypeExpense, "medical"},
	{"教育", categories.TypeExpense, "education"},
	{"工资", categories.TypeIncome, "salary"},
	{"奖金", categories.TypeIncome, "bonus"},
	{"理财", categories.TypeIncome, "invest"},
	{"兼职", categories.TypeIncome, "parttime"},
	{"红包", categories.TypeIncome, "redpacket"},
}

// SeedSystemCategories creates the preset expense and income categories
func (s *Seeder) SeedSystemCategories() error {
	fmt.Println("  📂 Seeding system categories...")

	order := map[categories.CategoryType]int{}
	for _, preset := range systemCategories {
		order[preset.categoryType]++

		category := categories.Category{
			ID:           uuid.New(),
			Name:         preset.name,
			CategoryType: preset.categoryType,
			IsSystem:     true,
			Icon:         preset.icon,
			SortOrder:    order[preset.categoryType],
		}

		if err := s.db.PostgreSQL.Create(&category).Error; err != nil {
			return fmt.Errorf("failed to create system category %s: %w", preset.name, err)
		}

		fmt.Printf("    ✅ Created system category: %s (type %d)\n", category.Name, category.CategoryType)
	}

	return nil
}

// SeedCustomCategories gives the demo user a few personal categories
func (s *Seeder) SeedCustomCategories(userID uuid.UUID) error {
	fmt.Println("  🗂️ Seeding custom categories...")

	customData := []struct {
		name         string
		categoryType categories.CategoryType
		icon         string
		sortOrder    int
	}{
		{"宠物", categories.TypeExpense, "pet", 1},
		{"健身", categories.TypeExpense, "fitness", 2},
		{"稿费", categories.TypeIncome, "writing", 1},
	}

	for _, item := range customData {
		owner := userID
		category := categories.Category{
			ID:           uuid.New(),
			Name:         item.name,
			CategoryType: item.categoryType,
			UserID:       &owner,
			IsSystem:     false,
			Icon:         item.icon,
			SortOrder:    item.sortOrder,
		}

		if err := s.db.PostgreSQL.Create(&category).Error; err != nil {
			return fmt.Errorf("failed to create custom category %s: %w", item.name, err)
		}

		fmt.Printf("    ✅ Created custom category: %s\n", category.Name)
	}

	return nil
}

// SeedWatchlist tracks a few symbols for the demo user. Daily prices arrive
// with the first sync pass rather than from the seeder.
func (s *Seeder) SeedWatchlist(userID uuid.UUID) error {
	fmt.Println("  📈 Seeding watchlist...")

	stocksData := []struct {
		symbol   string
		name     string
		exchange string
	}{
		{"AAPL", "苹果", "NASDAQ"},
		{"TSLA", "特斯拉", "NASDAQ"},
		{"600519.SS", "贵州茅台", "SS"},
		{"0700.HK", "腾讯控股", "HKEX"},
	}

	for i, item := range stocksData {
		stock := stocks.UserStock{
			ID:        uuid.New(),
			UserID:    userID,
			Symbol:    item.symbol,
			Name:      item.name,
			Exchange:  item.exchange,
			Source:    stocks.DefaultSource,
			SortOrder: i + 1,
		}

		if err := s.db.PostgreSQL.Create(&stock).Error; err != nil {
			return fmt.Errorf("failed to create watchlist entry %s: %w", item.symbol, err)
		}

		fmt.Printf("    ✅ Added to watchlist: %s (%s)\n", stock.Symbol, stock.Name)
	}

	return nil
}
