// @title           Outfit Studio Backend API
// @version         1.0.0
// @description     Backend API for AI outfit generation, layered image decomposition, wallpapers, and text/font recognition. Credits-gated; responses use a uniform {code, message, data} envelope.

// @contact.name   API Support
// @contact.email  support@example.com

// @license.name  MIT
// @license.url   https://opensource.org/licenses/MIT

// @host      localhost:8080
// @BasePath  /

// @securityDefinitions.apikey Bearer
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

package main

import (
	"net/http"
	"net/url"

	"outfit-studio-backend/docs"
	"outfit-studio-backend/internal/baiduocr"
	"outfit-studio-backend/internal/config"
	"outfit-studio-backend/internal/creem"
	"outfit-studio-backend/internal/database"
	"outfit-studio-backend/internal/handlers"
	"outfit-studio-backend/internal/logger"
	"outfit-studio-backend/internal/middleware"
	"outfit-studio-backend/internal/replicate"
	"outfit-studio-backend/internal/storage"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func main() {
	log := logger.New("main")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Set Gin mode
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Update Swagger docs with dynamic base URL
	if cfg.BaseURL != "" {
		baseURL, err := url.Parse(cfg.BaseURL)
		if err == nil {
			docs.SwaggerInfo.Host = baseURL.Host
			if baseURL.Scheme == "https" {
				docs.SwaggerInfo.Schemes = []string{"https", "http"}
			} else {
				docs.SwaggerInfo.Schemes = []string{"http", "https"}
			}
		}
	}

	// Run migrations
	if cfg.DatabaseURL == "" {
		log.Fatal().Msg("DATABASE_URL not set")
	}
	migrator, err := database.NewMigrator(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize migrator")
	}
	if err := migrator.Run(); err != nil {
		migrator.Close()
		log.Fatal().Err(err).Msg("Migration failed")
	}
	migrator.Close()
	log.Info().Msg("Migrations completed successfully")

	// Database client
	dbClient, err := database.NewClient(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database client")
	}
	defer dbClient.Close()

	// Object storage client
	storageClient, err := storage.NewClient(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize storage client")
	}

	// Provider clients
	replicateClient := replicate.NewClient(cfg.ReplicateAPIBaseURL, cfg.ReplicateAPIToken)
	ocrClient := baiduocr.NewClient(cfg.BaiduOCRAPIKey, cfg.BaiduOCRSecretKey)
	creemClient := creem.NewClient(cfg.CreemAPIBaseURL, cfg.CreemAPIKey)

	// Initialize handlers
	genOutfitHandler := handlers.NewGenOutfitHandler(cfg, replicateClient, dbClient, storageClient)
	genWallpaperHandler := handlers.NewGenWallpaperHandler(cfg, replicateClient, dbClient, storageClient)
	imageTextHandler := handlers.NewImageTextHandler(cfg, replicateClient, dbClient)
	flipImageHandler := handlers.NewFlipImageHandler(dbClient, storageClient)
	invertImageHandler := handlers.NewInvertImageHandler(cfg, dbClient, storageClient)
	recognizeHandler := handlers.NewRecognizeHandler(cfg, ocrClient, replicateClient, dbClient)
	uploadHandler := handlers.NewUploadHandler(storageClient)
	downloadHandler := handlers.NewDownloadHandler(storageClient)
	creationsHandler := handlers.NewCreationsHandler(dbClient)
	paymentHandler := handlers.NewPaymentHandler(cfg, creemClient, dbClient)

	// Setup router
	router := gin.Default()

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check (no auth)
	router.GET("/health", handlers.HealthHandler)

	// API routes. Identity resolves the JWT but never rejects; handlers
	// that need a user fail closed through the envelope.
	api := router.Group("/api")
	api.Use(middleware.Identity(cfg))

	// Generation
	api.POST("/gen-outfit", genOutfitHandler.GenOutfit)
	api.POST("/gen-qwen-image-layered", genOutfitHandler.GenLayered)
	api.POST("/gen-wallpaper", genWallpaperHandler.GenWallpaper)
	api.POST("/image-text", imageTextHandler.ImageText)

	// Pixel transforms
	api.POST("/flip-image", flipImageHandler.FlipImage)
	api.POST("/invert-image", invertImageHandler.InvertImage)

	// Recognition
	api.POST("/recognize-text", recognizeHandler.RecognizeText)
	api.POST("/recognize-font", recognizeHandler.RecognizeFont)

	// Storage
	api.POST("/upload-image", uploadHandler.UploadImage)
	api.POST("/r2-presign", uploadHandler.Presign)
	api.GET("/wallpaper/download", downloadHandler.DownloadWallpaper)
	api.POST("/qwen-image-layered/download-zip", downloadHandler.DownloadZip)

	// Account
	api.GET("/my-creations", creationsHandler.MyCreations)
	api.GET("/wallpapers", creationsHandler.Wallpapers)
	api.GET("/get-user-credits", creationsHandler.GetUserCredits)
	api.POST("/sync-user", creationsHandler.SyncUser)

	// Payment
	api.POST("/checkout/creem", paymentHandler.CreateCheckout)
	api.GET("/pay/callback/creem", paymentHandler.CreemCallback)

	// Start server
	port := cfg.Port
	if port == "" {
		port = "8080"
	}

	log.Info().Str("port", port).Msg("Server starting")
	if err := http.ListenAndServe(":"+port, router); err != nil {
		log.Fatal().Err(err).Msg("Failed to start server")
	}
}
