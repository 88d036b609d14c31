package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	// Replicate API
	ReplicateAPIToken   string
	ReplicateAPIBaseURL string

	// Baidu OCR
	BaiduOCRAPIKey    string
	BaiduOCRSecretKey string

	// Creem payments
	CreemAPIKey         string
	CreemAPIBaseURL     string
	CreemProductID      string
	CreemProductCredits int
	PaySuccessURL       string
	PayFailURL          string

	// Storage (R2 / any S3-compatible endpoint)
	StorageEndpoint  string
	StorageBucket    string
	StorageAccessKey string
	StorageSecretKey string
	StorageRegion    string
	StorageDomain    string

	// Auth
	AuthJWTSecret string

	// Credits
	OutfitGenerationCost int

	// Mock mode: canned provider output for deterministic local/CI runs
	MockGeneration bool

	// Database
	DatabaseURL string

	// Server
	Port        string
	Environment string
	BaseURL     string
}

func Load() (*Config, error) {
	// .env is optional; real deployments use environment variables
	_ = godotenv.Load()

	cost, err := strconv.Atoi(getEnv("OUTFIT_GENERATION_COST", "5"))
	if err != nil || cost <= 0 {
		return nil, fmt.Errorf("invalid OUTFIT_GENERATION_COST: must be a positive integer")
	}

	productCredits, err := strconv.Atoi(getEnv("CREEM_PRODUCT_CREDITS", "100"))
	if err != nil || productCredits <= 0 {
		return nil, fmt.Errorf("invalid CREEM_PRODUCT_CREDITS: must be a positive integer")
	}

	cfg := &Config{
		ReplicateAPIToken:   getEnv("REPLICATE_API_TOKEN", ""),
		ReplicateAPIBaseURL: getEnv("REPLICATE_API_BASE_URL", "https://api.replicate.com/v1/"),

		BaiduOCRAPIKey:    getEnv("BAIDU_OCR_API_KEY", ""),
		BaiduOCRSecretKey: getEnv("BAIDU_OCR_SECRET_KEY", ""),

		CreemAPIKey:         getEnv("CREEM_API_KEY", ""),
		CreemAPIBaseURL:     getEnv("CREEM_API_BASE_URL", "https://api.creem.io/v1/"),
		CreemProductID:      getEnv("CREEM_PRODUCT_ID", ""),
		CreemProductCredits: productCredits,
		PaySuccessURL:       getEnv("PAY_SUCCESS_URL", "/"),
		PayFailURL:          getEnv("PAY_FAIL_URL", "/"),

		StorageEndpoint:  getEnv("STORAGE_ENDPOINT", ""),
		StorageBucket:    getEnv("STORAGE_BUCKET", ""),
		StorageAccessKey: getEnv("STORAGE_ACCESS_KEY", ""),
		StorageSecretKey: getEnv("STORAGE_SECRET_KEY", ""),
		StorageRegion:    getEnv("STORAGE_REGION", "auto"),
		StorageDomain:    getEnv("STORAGE_DOMAIN", ""),

		AuthJWTSecret: getEnv("AUTH_JWT_SECRET", ""),

		OutfitGenerationCost: cost,

		MockGeneration: getEnv("MOCK_OUTFIT_GENERATION", "") == "true",

		DatabaseURL: getEnv("DATABASE_URL", ""),

		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "development"),
		BaseURL:     getEnv("BASE_URL", "http://localhost:8080"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.AuthJWTSecret == "" {
		return fmt.Errorf("AUTH_JWT_SECRET is required")
	}
	if c.StorageEndpoint == "" {
		return fmt.Errorf("STORAGE_ENDPOINT is required")
	}
	if c.StorageBucket == "" {
		return fmt.Errorf("STORAGE_BUCKET is required")
	}
	if c.StorageAccessKey == "" || c.StorageSecretKey == "" {
		return fmt.Errorf("STORAGE_ACCESS_KEY and STORAGE_SECRET_KEY are required")
	}
	if !c.MockGeneration && c.ReplicateAPIToken == "" {
		return fmt.Errorf("REPLICATE_API_TOKEN is required unless MOCK_OUTFIT_GENERATION=true")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
