package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// duration reads "90s"-style strings as well as integer nanoseconds.
type duration time.Duration

func (d *duration) UnmarshalJSON(data []byte) error {
	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	switch value := raw.(type) {
	case float64:
		*d = duration(time.Duration(value))
	case string:
		parsed, err := time.ParseDuration(value)
		if err != nil {
			return err
		}
		*d = duration(parsed)
	default:
		return fmt.Errorf("invalid duration %s", string(data))
	}

	return nil
}

type jsonConfig struct {
	RunAddr               string   `json:"server_address"`
	GRPCAddr              string   `json:"grpc_server_address"`
	LogLevel              string   `json:"log_level"`
	DBFileName            string   `json:"file_storage_path"`
	DatabaseDSN           string   `json:"database_dsn"`
	DBConnectionTimeout   duration `json:"db_connection_timeout"`
	MigrationsDir         string   `json:"migrations_dir"`
	TokenSigningSecretKey string   `json:"token_signing_secret_key"`
	TokenTTL              duration `json:"token_ttl"`
	PasswordHashCost      int      `json:"password_hash_cost"`
	AllowedOrigins        []string `json:"allowed_origins"`
	TrustedSubnet         string   `json:"trusted_subnet"`
	OTELEndpoint          string   `json:"otel_exporter_otlp_endpoint"`
}

func (c *Config) loadJSON(fileName string) error {
	raw, err := os.ReadFile(fileName)
	if err != nil {
		return err
	}

	var fromFile jsonConfig
	if err := json.Unmarshal(raw, &fromFile); err != nil {
		return err
	}

	c.RunAddr = fromFile.RunAddr
	c.GRPCAddr = fromFile.GRPCAddr
	c.LogLevel = fromFile.LogLevel
	c.DBFileName = fromFile.DBFileName
	c.DatabaseDSN = fromFile.DatabaseDSN
	c.DBConnectionTimeout = time.Duration(fromFile.DBConnectionTimeout)
	c.MigrationsDir = fromFile.MigrationsDir
	c.TokenSigningSecretKey = fromFile.TokenSigningSecretKey
	c.TokenTTL = time.Duration(fromFile.TokenTTL)
	c.PasswordHashCost = fromFile.PasswordHashCost
	c.AllowedOrigins = fromFile.AllowedOrigins
	c.TrustedSubnet = fromFile.TrustedSubnet
	c.OTELEndpoint = fromFile.OTELEndpoint

	return nil
}
