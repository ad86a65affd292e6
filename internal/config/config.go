package config

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

const (
	IdentityProviderFirebase = "firebase"
	IdentityProviderHMAC     = "hmac"

	defaultPort          = "5000"
	defaultDBName        = "sunnah_db"
	defaultClusterHost   = "cluster0.dse9fiu.mongodb.net"
	defaultAppName       = "Cluster0"
	defaultHMACIssuer    = "sunnah-sayings-dev"
	defaultHMACTTLHours  = 24
	defaultLogLevel      = "info"
	defaultConnectTries  = 5
	defaultConnectPeriod = 5 * time.Second
	minHMACSecretLen     = 16
)

var defaultAllowedOrigins = []string{
	"http://localhost:5173",
	"https://sunnah-sayings.vercel.app",
}

// Config holds all process configuration
type Config struct {
	Server   ServerConfig
	DB       DBConfig
	Identity IdentityConfig
	Log      LogConfig
}

type ServerConfig struct {
	Port           string   `validate:"required,numeric"`
	AllowedOrigins []string `validate:"dive,url"`
	GinMode        string   `validate:"omitempty,oneof=debug release test"`
}

// DBConfig holds document store connection parameters
type DBConfig struct {
	URI           string `validate:"required"`
	Name          string `validate:"required"`
	ConnectTries  int    `validate:"min=1"`
	ConnectPeriod time.Duration
}

type IdentityConfig struct {
	Provider  string `validate:"required,oneof=firebase hmac"`
	ProjectID string `validate:"required_if=Provider firebase"`
	// CredentialsJSON is the decoded FB_SERVICE_KEY service account
	CredentialsJSON []byte
	HMACSecret      string `validate:"required_if=Provider hmac"`
	HMACIssuer      string `validate:"required_if=Provider hmac"`
	HMACTTL         time.Duration
}

type LogConfig struct {
	Level string `validate:"omitempty,oneof=debug info warn error disabled"`
	JSON  bool
}

// Load reads configuration from the environment and validates it
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:           envOr("PORT", defaultPort),
			AllowedOrigins: listOr("CORS_ALLOWED_ORIGINS", defaultAllowedOrigins),
			GinMode:        os.Getenv("GIN_MODE"),
		},
		DB: DBConfig{
			Name:          envOr("DB_NAME", defaultDBName),
			ConnectTries:  defaultConnectTries,
			ConnectPeriod: defaultConnectPeriod,
		},
		Identity: IdentityConfig{
			Provider:     strings.ToLower(envOr("IDENTITY_PROVIDER", IdentityProviderFirebase)),
			ProjectID:    os.Getenv("FIREBASE_PROJECT_ID"),
			HMACSecret:   os.Getenv("IDENTITY_HMAC_SECRET"),
			HMACIssuer:   envOr("IDENTITY_HMAC_ISSUER", defaultHMACIssuer),
			HMACTTL:      time.Duration(defaultHMACTTLHours) * time.Hour,
		},
		Log: LogConfig{
			Level: strings.ToLower(envOr("LOG_LEVEL", defaultLogLevel)),
		},
	}

	uri, err := mongoURI()
	if err != nil {
		return nil, err
	}
	cfg.DB.URI = uri

	if tries := os.Getenv("DB_CONNECT_RETRIES"); tries != "" {
		n, err := strconv.Atoi(tries)
		if err != nil {
			return nil, fmt.Errorf("invalid DB_CONNECT_RETRIES: %w", err)
		}
		cfg.DB.ConnectTries = n
	}

	if hours := os.Getenv("IDENTITY_HMAC_TTL_HOURS"); hours != "" {
		n, err := strconv.ParseInt(hours, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid IDENTITY_HMAC_TTL_HOURS: %w", err)
		}
		cfg.Identity.HMACTTL = time.Duration(n) * time.Hour
	}

	if v := os.Getenv("LOG_JSON"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("invalid LOG_JSON: %w", err)
		}
		cfg.Log.JSON = b
	}

	if key := os.Getenv("FB_SERVICE_KEY"); key != "" {
		sa, err := DecodeServiceAccount(key)
		if err != nil {
			return nil, err
		}
		cfg.Identity.CredentialsJSON = sa.JSON
		if cfg.Identity.ProjectID == "" {
			cfg.Identity.ProjectID = sa.ProjectID
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the struct tags on every section
func (c *Config) Validate() error {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fmt.Sprintf("%s (%s)", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("invalid configuration: %s", strings.Join(fields, ", "))
		}
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if c.Identity.Provider == IdentityProviderHMAC && len(c.Identity.HMACSecret) < minHMACSecretLen {
		return fmt.Errorf("invalid configuration: IDENTITY_HMAC_SECRET must be at least %d characters", minHMACSecretLen)
	}
	return nil
}

// ServiceAccount is a decoded Firebase service account document
type ServiceAccount struct {
	ProjectID string
	JSON      []byte
}

// DecodeServiceAccount decodes a base64 encoded service account JSON
// document and reads its project_id
func DecodeServiceAccount(encoded string) (*ServiceAccount, error) {
	raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(encoded))
	if err != nil {
		return nil, fmt.Errorf("FB_SERVICE_KEY is not valid base64: %w", err)
	}
	var sa struct {
		ProjectID string `json:"project_id"`
	}
	if err := json.Unmarshal(raw, &sa); err != nil {
		return nil, fmt.Errorf("FB_SERVICE_KEY is not a service account document: %w", err)
	}
	if sa.ProjectID == "" {
		return nil, errors.New("FB_SERVICE_KEY has no project_id")
	}
	return &ServiceAccount{ProjectID: sa.ProjectID, JSON: raw}, nil
}

// mongoURI prefers MONGODB_URI and otherwise assembles an Atlas SRV URI
// from DB_USER / DB_PASS
func mongoURI() (string, error) {
	if uri := os.Getenv("MONGODB_URI"); uri != "" {
		return uri, nil
	}
	user := os.Getenv("DB_USER")
	pass := os.Getenv("DB_PASS")
	if user == "" || pass == "" {
		return "", errors.New("database environment variables not set (MONGODB_URI or DB_USER, DB_PASS)")
	}
	host := envOr("DB_CLUSTER_HOST", defaultClusterHost)
	appName := envOr("DB_APP_NAME", defaultAppName)
	return fmt.Sprintf("mongodb+srv://%s:%s@%s/?retryWrites=true&w=majority&appName=%s",
		url.QueryEscape(user), url.QueryEscape(pass), host, url.QueryEscape(appName)), nil
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func listOr(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
