package config

import (
	"fmt"
	"os"

	"github.com/alimrdn/solarportal/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type Config struct {
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
}

func LoadConfig() (*Config, error) {
	return &Config{
		DBHost:     os.Getenv("DB_HOST"),
		DBPort:     os.Getenv("DB_PORT"),
		DBUser:     os.Getenv("DB_USER"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     os.Getenv("DB_NAME"),
	}, nil
}

type ZarinpalConfig struct {
	MerchantID string
	BaseURL    string
}

// LoadZarinpalConfig fails when the merchant id is missing; there is no
// default merchant id.
func LoadZarinpalConfig() (*ZarinpalConfig, error) {
	merchantID := os.Getenv("ZARINPAL_MERCHANT_ID")
	if merchantID == "" {
		return nil, fmt.Errorf("ZARINPAL_MERCHANT_ID is not configured")
	}

	baseURL := os.Getenv("ZARINPAL_BASE_URL")
	if baseURL == "" {
		baseURL = "https://sandbox.zarinpal.com"
	}

	return &ZarinpalConfig{
		MerchantID: merchantID,
		BaseURL:    baseURL,
	}, nil
}

func enableUUIDExtension(db *gorm.DB) error {
	return db.Exec("CREATE EXTENSION IF NOT EXISTS \"uuid-ossp\"").Error
}

func InitDatabase(cfg *Config) (*gorm.DB, error) {
	dsn := fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
		cfg.DBHost, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBPort,
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	if err := enableUUIDExtension(db); err != nil {
		return nil, err
	}

	if err := models.AutoMigrate(db); err != nil {
		return nil, err
	}

	models.SeedRoles(db)

	return db, nil
}
