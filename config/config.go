package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Speicher-Backends
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMemory   = "memory"
)

// Config enthält alle Konfigurationsparameter aus Umgebungsvariablen.
type Config struct {
	StorageDriver string `envconfig:"STORAGE_DRIVER" default:"postgres" validate:"oneof=postgres sqlite memory"`

	DBHost     string `envconfig:"DB_HOST" validate:"required_if=StorageDriver postgres"`
	DBPort     int    `envconfig:"DB_PORT" default:"5432" validate:"min=1,max=65535"`
	DBUser     string `envconfig:"DB_USER" validate:"required_if=StorageDriver postgres"`
	DBPassword string `envconfig:"DB_PASSWORD"`
	DBName     string `envconfig:"DB_NAME" validate:"required_if=StorageDriver postgres"`

	SQLitePath string `envconfig:"SQLITE_PATH" default:"citations.db" validate:"required_if=StorageDriver sqlite"`

	HTTPPort       string `envconfig:"HTTP_PORT" default:"4242"`
	APISecretKey   string `envconfig:"API_SECRET_KEY"`
	LogDevelopment bool   `envconfig:"LOG_DEVELOPMENT" default:"false"`

	// Standardstil, wenn ein Request keinen oder einen unbekannten Stil angibt
	DefaultStyle string `envconfig:"DEFAULT_STYLE" default:"apa" validate:"oneof=apa mla"`

	EuropePMCBaseURL string `envconfig:"EUROPEPMC_BASE_URL" default:"https://www.ebi.ac.uk/europepmc/webservices/rest/search" validate:"http_url"`

	// Export der Literaturverzeichnisse nach S3; leerer Zeitplan deaktiviert den Cron-Job
	ExportCronSchedule string `envconfig:"EXPORT_CRON_SCHEDULE"`
	ExportKeep         int    `envconfig:"EXPORT_KEEP" default:"4" validate:"min=1"`

	S3Key    string `envconfig:"S3_KEY" validate:"required_with=ExportCronSchedule"`
	S3Secret string `envconfig:"S3_SECRET" validate:"required_with=ExportCronSchedule"`
	S3URL    string `envconfig:"S3_URL" validate:"required_with=ExportCronSchedule"`
	S3Region string `envconfig:"S3_REGION" default:"eu-central-1"`
	S3Bucket string `envconfig:"S3_BUCKET" validate:"required_with=ExportCronSchedule"`
}

// DSN gibt den Data Source Name für die PostgreSQL-Verbindung zurück.
func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=disable",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort)
}

// ExportEnabled ist true, wenn ein S3-Ziel vollständig konfiguriert ist.
func (c *Config) ExportEnabled() bool {
	return c.S3URL != "" && c.S3Bucket != "" && c.S3Key != "" && c.S3Secret != ""
}

// Load lädt die Konfiguration aus .env und den Umgebungsvariablen und prüft sie.
func Load() (*Config, error) {
	_ = godotenv.Load()
	var c Config
	if err := envconfig.Process("", &c); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate prüft Abhängigkeiten zwischen den Einstellungen.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}
