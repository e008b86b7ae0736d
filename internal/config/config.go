// Package config loads the server settings. Sources are applied in increasing
// priority: built-in defaults, a JSON file (CONFIG env or -c flag), the
// environment (a .env file is loaded first) and command-line flags.
package config

import (
	"encoding/base64"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log"
	"os"
	"strings"
	"time"

	env "github.com/caarlos0/env/v6"
	validator "github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"github.com/patric-chuzhbe/mesto/internal/models"
)

// MinSigningKeyLength is the minimal decoded length of the token signing key.
const MinSigningKeyLength = 32

type Config struct {
	RunAddr               string        `env:"SERVER_ADDRESS" validate:"hostname_port"`
	GRPCAddr              string        `env:"GRPC_SERVER_ADDRESS" validate:"hostname_port"`
	LogLevel              string        `env:"LOG_LEVEL" validate:"loglevel"`
	DBFileName            string        `env:"FILE_STORAGE_PATH" validate:"filepath"`
	DatabaseDSN           string        `env:"DATABASE_DSN"`
	DBConnectionTimeout   time.Duration `env:"DB_CONNECTION_TIMEOUT" validate:"gt=0"`
	MigrationsDir         string        `env:"MIGRATIONS_DIR"`
	TokenSigningSecretKey string        `env:"TOKEN_SIGNING_SECRET_KEY" validate:"required,signingkey"`
	TokenTTL              time.Duration `env:"TOKEN_TTL" validate:"gt=0"`
	PasswordHashCost      int           `env:"PASSWORD_HASH_COST" validate:"min=4,max=31"`
	AllowedOrigins        []string      `env:"ALLOWED_ORIGINS" envSeparator:","`
	TrustedSubnet         string        `env:"TRUSTED_SUBNET" validate:"omitempty,cidr"`
	OTELEndpoint          string        `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
}

var defaultConfig = Config{
	RunAddr:             ":3000",
	GRPCAddr:            ":3200",
	LogLevel:            "info",
	DBFileName:          "",
	DatabaseDSN:         "",
	DBConnectionTimeout: 10 * time.Second,
	MigrationsDir:       "migrations",
	TokenTTL:            168 * time.Hour,
	PasswordHashCost:    10,
	AllowedOrigins:      []string{"http://localhost:3001"},
}

// applyDefaults fills every zero field of values from defaults.
func applyDefaults(values *Config, defaults Config) {
	if values.RunAddr == "" {
		values.RunAddr = defaults.RunAddr
	}
	if values.GRPCAddr == "" {
		values.GRPCAddr = defaults.GRPCAddr
	}
	if values.LogLevel == "" {
		values.LogLevel = defaults.LogLevel
	}
	if values.DBFileName == "" {
		values.DBFileName = defaults.DBFileName
	}
	if values.DatabaseDSN == "" {
		values.DatabaseDSN = defaults.DatabaseDSN
	}
	if values.DBConnectionTimeout == 0 {
		values.DBConnectionTimeout = defaults.DBConnectionTimeout
	}
	if values.MigrationsDir == "" {
		values.MigrationsDir = defaults.MigrationsDir
	}
	if values.TokenSigningSecretKey == "" {
		values.TokenSigningSecretKey = defaults.TokenSigningSecretKey
	}
	if values.TokenTTL == 0 {
		values.TokenTTL = defaults.TokenTTL
	}
	if values.PasswordHashCost == 0 {
		values.PasswordHashCost = defaults.PasswordHashCost
	}
	if len(values.AllowedOrigins) == 0 {
		values.AllowedOrigins = append([]string(nil), defaults.AllowedOrigins...)
	}
	if values.TrustedSubnet == "" {
		values.TrustedSubnet = defaults.TrustedSubnet
	}
	if values.OTELEndpoint == "" {
		values.OTELEndpoint = defaults.OTELEndpoint
	}
}

// DecodeSigningKey decodes a base64url signing key, padded or not.
func DecodeSigningKey(encoded string) ([]byte, error) {
	key, err := base64.URLEncoding.DecodeString(encoded)
	if err != nil {
		key, err = base64.RawURLEncoding.DecodeString(encoded)
	}
	if err != nil {
		return nil, fmt.Errorf("signing key is not base64url")
	}
	if len(key) < MinSigningKeyLength {
		return nil, fmt.Errorf("signing key must be at least %d bytes", MinSigningKeyLength)
	}

	return key, nil
}

// SigningKey returns the decoded token signing key.
func (c *Config) SigningKey() ([]byte, error) {
	return DecodeSigningKey(c.TokenSigningSecretKey)
}

// StorageType picks the backend: a DSN selects postgres, a file name the JSON
// file store, otherwise data stays in memory.
func (c *Config) StorageType() int {
	switch {
	case c.DatabaseDSN != "":
		return models.StorageTypePostgresql
	case c.DBFileName != "":
		return models.StorageTypeFile
	default:
		return models.StorageTypeMemory
	}
}

func validateFilePath(fieldLevel validator.FieldLevel) bool {
	path := fieldLevel.Field().String()
	if path == "" {
		return true
	}
	_, err := os.Stat(path)

	return err == nil || os.IsNotExist(err)
}

func validateLogLevel(fieldLevel validator.FieldLevel) bool {
	value := fieldLevel.Field().String()

	allowedLogLevels := map[string]bool{
		"debug":   true,
		"info":    true,
		"warning": true,
		"error":   true,
		"fatal":   true,
	}

	return allowedLogLevels[value]
}

func validateSigningKey(fieldLevel validator.FieldLevel) bool {
	_, err := DecodeSigningKey(fieldLevel.Field().String())
	return err == nil
}

func (c *Config) validate() error {
	validate := validator.New()

	if err := validate.RegisterValidation("loglevel", validateLogLevel); err != nil {
		return err
	}
	if err := validate.RegisterValidation("filepath", validateFilePath); err != nil {
		return err
	}
	if err := validate.RegisterValidation("signingkey", validateSigningKey); err != nil {
		return err
	}

	return validate.Struct(c)
}

type InitOption func(*initOptions)

type initOptions struct {
	disableFlagsParsing bool
	args                []string
}

// WithDisableFlagsParsing skips command-line flags. Meant for tests.
func WithDisableFlagsParsing(disableFlagsParsing bool) InitOption {
	return func(options *initOptions) {
		options.disableFlagsParsing = disableFlagsParsing
	}
}

// WithArgs parses args instead of os.Args[1:].
func WithArgs(args []string) InitOption {
	return func(options *initOptions) {
		options.args = args
	}
}

func (c *Config) parseFlags(args []string) error {
	flags := flag.NewFlagSet("mesto", flag.ContinueOnError)

	var configFile string
	flags.StringVar(&configFile, "c", "", "JSON config file")
	flags.StringVar(&configFile, "config", "", "JSON config file")
	flags.StringVar(&c.RunAddr, "a", c.RunAddr, "address and port to run the HTTP server")
	flags.StringVar(&c.GRPCAddr, "g", c.GRPCAddr, "address and port to run the gRPC server")
	flags.StringVar(&c.LogLevel, "l", c.LogLevel, "logger level")
	flags.StringVar(&c.DBFileName, "f", c.DBFileName, "JSON file name with database")
	flags.StringVar(&c.DatabaseDSN, "d", c.DatabaseDSN, "A string with the database connection details")
	flags.StringVar(&c.TokenSigningSecretKey, "s", c.TokenSigningSecretKey, "base64url token signing key")
	flags.StringVar(&c.TrustedSubnet, "t", c.TrustedSubnet, "CIDR allowed to read internal stats")

	return flags.Parse(args)
}

// configFileFromArgs finds -c/-config before the full flag set is parsed,
// since the JSON file has a lower priority than the other flags.
func configFileFromArgs(args []string) string {
	for i, arg := range args {
		name, value, hasValue := strings.Cut(strings.TrimLeft(arg, "-"), "=")
		if !strings.HasPrefix(arg, "-") || (name != "c" && name != "config") {
			continue
		}
		if hasValue {
			return value
		}
		if i+1 < len(args) {
			return args[i+1]
		}
	}

	return ""
}

// New builds the configuration from all sources and validates it.
func New(optionsProto ...InitOption) (*Config, error) {
	options := &initOptions{
		disableFlagsParsing: false,
		args:                os.Args[1:],
	}
	for _, protoOption := range optionsProto {
		protoOption(options)
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Printf("Unable to load .env file: %v", err)
	}

	values := Config{}

	configFile := os.Getenv("CONFIG")
	if !options.disableFlagsParsing {
		if fromArgs := configFileFromArgs(options.args); fromArgs != "" {
			configFile = fromArgs
		}
	}
	if configFile != "" {
		if err := values.loadJSON(configFile); err != nil {
			return nil, fmt.Errorf("in internal/config/config.go/New(): error while `values.loadJSON()` calling: %w", err)
		}
	}

	applyDefaults(&values, defaultConfig)

	if err := env.Parse(&values); err != nil {
		return nil, fmt.Errorf("in internal/config/config.go/New(): error while `env.Parse()` calling: %w", err)
	}

	if !options.disableFlagsParsing {
		if err := values.parseFlags(options.args); err != nil {
			return nil, fmt.Errorf("in internal/config/config.go/New(): error while `values.parseFlags()` calling: %w", err)
		}
	}

	if err := values.validate(); err != nil {
		return nil, err
	}

	return &values, nil
}
