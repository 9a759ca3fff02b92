package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StoreMongo  = "mongo"
	StoreMemory = "memory"

	StorageGCS = "gcs"
	StorageR2  = "r2"
)

// Config captures the runtime configuration of the catalog API.
type Config struct {
	Port     string
	LogLevel string

	StoreDriver  string
	MongoURI     string
	DatabaseName string

	JWTSecret  string
	AccessTTL  time.Duration
	RefreshTTL time.Duration

	AdminUsername string
	AdminEmail    string
	AdminPassword string

	// FunctionPrefix is stripped from request paths when the API runs as a
	// serverless function.
	FunctionPrefix string

	DefaultQueryLimit int
	MaxQueryLimit     int

	AuthRateLimitPerMinute int
	AuthRateLimitBurst     int

	StorageProvider   string
	GCSBucket         string
	GCSCredentials    string
	R2Bucket          string
	R2AccessKeyID     string
	R2SecretAccessKey string
	R2Endpoint        string
	R2PublicDomain    string
	MaxUploadSizeMB   int
	AllowedImageExts  []string
	AllowedImageMimes []string

	// Mail provider credentials are read for the front end's contact flow
	// and are not used by the API itself.
	MailHost     string
	MailUser     string
	MailPassword string
}

// Load reads configuration from the environment, after loading a .env file if
// one is present.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		Port:     getString("PORT", "8080"),
		LogLevel: getString("LOG_LEVEL", "info"),

		StoreDriver:  strings.ToLower(getString("STORE_DRIVER", StoreMongo)),
		MongoURI:     os.Getenv("MONGODB_URI"),
		DatabaseName: getString("DATABASE_NAME", "streamcatalog"),

		JWTSecret:  os.Getenv("JWT_SECRET"),
		AccessTTL:  getDuration("ACCESS_TOKEN_TTL", time.Hour),
		RefreshTTL: getDuration("REFRESH_TOKEN_TTL", 7*24*time.Hour),

		AdminUsername: strings.TrimSpace(os.Getenv("ADMIN_USERNAME")),
		AdminEmail:    strings.ToLower(strings.TrimSpace(os.Getenv("ADMIN_EMAIL"))),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),

		FunctionPrefix: getString("FUNCTION_PREFIX", "/.netlify/functions/api"),

		DefaultQueryLimit: getInt("DEFAULT_READ_QUERY_LIMIT", 20),
		MaxQueryLimit:     getInt("READ_QUERY_MAX_LIMIT", 100),

		AuthRateLimitPerMinute: getInt("AUTH_RATE_LIMIT_PER_MINUTE", 20),
		AuthRateLimitBurst:     getInt("AUTH_RATE_LIMIT_BURST", 5),

		StorageProvider:   strings.ToLower(os.Getenv("STORAGE_PROVIDER")),
		GCSBucket:         os.Getenv("GCS_BUCKET"),
		GCSCredentials:    os.Getenv("CREDENTIALS_FILE_LOCATION"),
		R2Bucket:          os.Getenv("R2_BUCKET"),
		R2AccessKeyID:     os.Getenv("R2_ACCESS_KEY_ID"),
		R2SecretAccessKey: os.Getenv("R2_SECRET_ACCESS_KEY"),
		R2Endpoint:        os.Getenv("R2_ENDPOINT"),
		R2PublicDomain:    os.Getenv("R2_PUBLIC_DOMAIN"),
		MaxUploadSizeMB:   getInt("MAX_UPLOAD_SIZE_MB", 5),
		AllowedImageExts:  getList("ALLOWED_FILE_EXTENSIONS"),
		AllowedImageMimes: getList("ALLOWED_FILE_MIME_TYPES"),

		MailHost:     os.Getenv("MAIL_HOST"),
		MailUser:     os.Getenv("MAIL_USER"),
		MailPassword: os.Getenv("MAIL_PASSWORD"),
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	var errs []error
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	switch c.StoreDriver {
	case StoreMongo:
		if c.MongoURI == "" {
			errs = append(errs, errors.New("MONGODB_URI is required when STORE_DRIVER=mongo"))
		}
	case StoreMemory:
	default:
		errs = append(errs, fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver))
	}
	switch c.StorageProvider {
	case "", StorageGCS, StorageR2:
	default:
		errs = append(errs, fmt.Errorf("unknown STORAGE_PROVIDER %q", c.StorageProvider))
	}
	if (c.AdminUsername == "") != (c.AdminPassword == "") {
		errs = append(errs, errors.New("ADMIN_USERNAME and ADMIN_PASSWORD must be set together"))
	}
	return errors.Join(errs...)
}

// HasBootstrapAdmin reports whether an admin account should be seeded.
func (c Config) HasBootstrapAdmin() bool {
	return c.AdminUsername != "" && c.AdminPassword != ""
}

func getString(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}

func getInt(key string, fallback int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return i
}

// getDuration accepts Go duration strings ("90m") or a bare number of seconds.
func getDuration(key string, fallback time.Duration) time.Duration {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	if secs, err := strconv.Atoi(value); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func getList(key string) []string {
	var out []string
	for _, item := range strings.Split(os.Getenv(key), ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
