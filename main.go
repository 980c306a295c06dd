package main

import (
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/yeremiapane/revision-history/config"
	"github.com/yeremiapane/revision-history/database"
	"github.com/yeremiapane/revision-history/models"
	"github.com/yeremiapane/revision-history/revisionable"
	"github.com/yeremiapane/revision-history/router"
	"github.com/yeremiapane/revision-history/utils"
)

func init() {
	utils.InitLogger()

	// Load .env before config so environment overrides apply
	if err := godotenv.Load(); err != nil {
		utils.InfoLogger.Printf("Warning: .env file not found or error loading: %v", err)
	}
}

func main() {
	configDir := os.Getenv("CONFIG_DIR")
	if configDir == "" {
		configDir = "."
	}
	cfg, err := config.Load(configDir)
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to load config: %v", err)
	}
	if err := utils.SetLogLevel(cfg.LogLevel); err != nil {
		utils.ErrorLogger.Printf("Invalid log level %q: %v", cfg.LogLevel, err)
	}
	utils.SetJWTSecret(cfg.JWTSecret)

	if cfg.GinMode == gin.ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := config.InitDB(cfg.Database)
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to connect to database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		utils.ErrorLogger.Fatalf("Failed to migrate: %v", err)
	}
	utils.InfoLogger.Println("Migration completed.")

	registry := revisionable.NewRegistry()
	placeholders := models.Placeholders{
		Null:    cfg.Revisionable.NullString,
		Unknown: cfg.Revisionable.UnknownString,
	}
	if err := models.RegisterKinds(registry, placeholders, cfg.Revisionable.MorphMap); err != nil {
		utils.ErrorLogger.Fatalf("Failed to register revisionable kinds: %v", err)
	}

	formatter := revisionable.NewFieldFormatter()
	models.RegisterFormatters(formatter)

	resolver := revisionable.NewResolver(
		revisionable.NewGormStore(db, registry),
		formatter,
		revisionable.WithAuthConfig(cfg.Auth),
		revisionable.WithLogger(utils.InfoLogger),
	)

	r := router.SetupRouter(db, resolver, router.Options{
		AllowedOrigin:  os.Getenv("CORS_ALLOWED_ORIGIN"),
		RequestsPerSec: 50,
	})

	if err := r.SetTrustedProxies([]string{"127.0.0.1"}); err != nil {
		utils.ErrorLogger.Printf("Failed to set trusted proxies: %v", err)
	}

	utils.InfoLogger.Printf("Listening on port %s", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		utils.ErrorLogger.Fatal(err)
	}
}
