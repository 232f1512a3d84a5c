package config

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"checkout-flow/widget"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

const (
	DefaultTemporalAddress = "localhost:7233"
	DefaultTaskQueue       = "checkout-queue"
	DefaultBackendURL      = "https://refresh-f5-server.o-r.kr"
	DefaultAddr            = ":8080"
	DefaultFrontendURL     = "http://localhost:3000"
	DefaultPublicURL       = "http://localhost:8080"
	DefaultPaymentTimeout  = 15 * time.Minute
)

// Config is shared by the worker, the HTTP server and the starter CLI
type Config struct {
	TemporalAddress string `validate:"required,hostname_port"`
	TaskQueue       string `validate:"required"`
	// EncryptionKey is the AES-256 key for workflow payloads
	EncryptionKey []byte `validate:"len=32"`
	// GeneratedKey is set when no ENCRYPTION_KEY was supplied
	GeneratedKey bool
	BuildID      string

	BackendURL  string `validate:"required,url"`
	Addr        string `validate:"required"`
	FrontendURL string `validate:"required,url"`
	// PublicURL is where browsers reach this server
	PublicURL string `validate:"required,url"`
	// DraftStoreDSN selects the PostgreSQL draft store; empty means in-memory
	DraftStoreDSN string

	Widget              widget.Config
	PaymentTimeout      time.Duration `validate:"gt=0"`
	StrictDraftRecovery bool
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Load reads .env (when present) and the process environment
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("error loading .env file: %w", err)
	}
	return FromEnv(os.LookupEnv)
}

// FromEnv builds a Config from a lookup function
func FromEnv(lookup func(string) (string, bool)) (Config, error) {
	get := func(key, def string) string {
		if v, ok := lookup(key); ok && v != "" {
			return v
		}
		return def
	}

	publicURL := strings.TrimRight(get("PUBLIC_URL", DefaultPublicURL), "/")
	cfg := Config{
		TemporalAddress: get("TEMPORAL_ADDRESS", DefaultTemporalAddress),
		TaskQueue:       get("TASK_QUEUE", DefaultTaskQueue),
		BuildID:         get("BUILD_ID", ""),
		BackendURL:      get("BACKEND_URL", DefaultBackendURL),
		Addr:            get("ADDR", DefaultAddr),
		FrontendURL:     get("FRONTEND_URL", DefaultFrontendURL),
		PublicURL:       publicURL,
		DraftStoreDSN:   get("DRAFT_STORE_DSN", ""),
		Widget: widget.Config{
			ScriptURL:  get("IMP_SCRIPT_URL", widget.DefaultScriptURL),
			MerchantID: get("IMP_MERCHANT_ID", widget.DefaultMerchantID),
			PG:         get("IMP_PG", widget.DefaultPG),
			PayMethod:  widget.DefaultPayMethod,
			Currency:   widget.DefaultCurrency,
			Language:   widget.DefaultLanguage,
			ReturnURL:  get("RETURN_URL", publicURL+"/v1/checkout/return"),
		},
		PaymentTimeout:      DefaultPaymentTimeout,
		StrictDraftRecovery: true,
	}

	if v := get("PAYMENT_TIMEOUT", ""); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid PAYMENT_TIMEOUT: %w", err)
		}
		cfg.PaymentTimeout = d
	}

	if v := get("STRICT_DRAFT_RECOVERY", ""); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid STRICT_DRAFT_RECOVERY: %w", err)
		}
		cfg.StrictDraftRecovery = b
	}

	if v := get("ENCRYPTION_KEY", ""); v != "" {
		key, err := hex.DecodeString(v)
		if err != nil {
			return Config{}, fmt.Errorf("failed to decode encryption key: %w", err)
		}
		cfg.EncryptionKey = key
	} else {
		cfg.EncryptionKey = make([]byte, 32)
		if _, err := rand.Read(cfg.EncryptionKey); err != nil {
			return Config{}, fmt.Errorf("failed to generate encryption key: %w", err)
		}
		cfg.GeneratedKey = true
	}

	if err := validate.Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	if err := validate.Var(cfg.Widget.ReturnURL, "required,url"); err != nil {
		return Config{}, fmt.Errorf("invalid RETURN_URL: %w", err)
	}
	return cfg, nil
}
