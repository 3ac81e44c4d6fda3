// Package config loads the pipeline's runtime configuration with the
// precedence defaults < YAML file < environment < command-line flags,
// backed by envconfig, pflag, and yaml.v3.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

// Specification is the pipeline's full runtime configuration.
type Specification struct {
	CacheRoot string `yaml:"cacheRoot" split_words:"true"`

	Provider     string  `yaml:"provider"`
	APIKey       string  `yaml:"providerApiKey" envconfig:"PROVIDER_API_KEY"`
	Model        string  `yaml:"providerModel" envconfig:"PROVIDER_MODEL"`
	Endpoint     string  `yaml:"providerEndpoint" envconfig:"PROVIDER_ENDPOINT"`
	ProjectID    string  `yaml:"providerProjectID" envconfig:"PROVIDER_PROJECT_ID"`
	Location     string  `yaml:"providerLocation" envconfig:"PROVIDER_LOCATION"`
	Temperature  float64 `yaml:"providerTemperature" split_words:"true"`
	MaxTokens    int     `yaml:"providerMaxTokens" split_words:"true"`
	CooldownMs   int     `yaml:"providerCooldownMs" split_words:"true"`

	RetryMaxAttempts     int `yaml:"retryMaxAttempts" split_words:"true"`
	RetryInitialDelayMs  int `yaml:"retryInitialDelayMs" split_words:"true"`
	RetryMaxDelayMs      int `yaml:"retryMaxDelayMs" split_words:"true"`

	RetrievalThreshold float64 `yaml:"retrievalThreshold" split_words:"true"`

	// VectorIndexDatabaseURL, when set, wires the optional Postgres/pgvector
	// structural-fingerprint prefilter (spec §3.2) into the retriever. Left
	// empty, retrieval falls back to a full scan of each cache directory.
	VectorIndexDatabaseURL string `yaml:"vectorIndexDatabaseURL" split_words:"true"`

	LogLevel string `yaml:"logLevel" split_words:"true"`

	Admin AdminSpecification `yaml:"admin"`

	flags *pflag.FlagSet `ignored:"true"`
}

// AdminSpecification configures the optional read-only admin HTTP API
// (spec §3.4): JWT-bearer-gated /cache/stats, /cache/row, /healthz.
type AdminSpecification struct {
	Enabled   bool   `yaml:"enabled"`
	Bind      string `yaml:"bind" split_words:"true"`
	JwtSecret string `yaml:"jwtSecret" split_words:"true"`
}

const envPrefix = "DOCTRAN"

func (s *Specification) Usage() {
	fmt.Fprint(os.Stderr, s.flags.FlagUsages())
}

// Load resolves configuration with precedence defaults < YAML < env < flags.
// configPath may be "", in which case a handful of conventional locations
// are auto-discovered.
func Load(configPath string, fs *pflag.FlagSet) (Specification, error) {
	var cfg Specification

	setDefaults(&cfg)
	bindFlags(fs, &cfg)

	path := configPath
	if path == "" {
		if v := os.Getenv(envPrefix + "_CONFIG"); v != "" {
			path = v
		} else {
			for _, cand := range []string{"config/doctran.yaml", "config/config.yaml", "./doctran.yaml", "./config.yaml"} {
				if fileExists(cand) {
					path = cand
					break
				}
			}
		}
	}

	if path != "" {
		if !fileExists(path) {
			return Specification{}, fmt.Errorf("config file not found: %s", path)
		}
		if err := loadYAML(path, &cfg); err != nil {
			return Specification{}, fmt.Errorf("load yaml %s: %w", path, err)
		}
	}

	if err := envconfig.Process(envPrefix, &cfg); err != nil {
		return Specification{}, fmt.Errorf("env override: %w", err)
	}

	if err := fs.Parse(os.Args[1:]); err != nil {
		return Specification{}, err
	}
	applyChangedFlags(fs, &cfg)

	if strings.TrimSpace(cfg.CacheRoot) == "" {
		return Specification{}, fmt.Errorf("DOCTRAN_CACHE_ROOT is required (env/file/flag)")
	}
	if strings.TrimSpace(cfg.LogLevel) == "" {
		cfg.LogLevel = "info"
	}
	return cfg, nil
}

func loadYAML(path string, into any) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(b, into)
}

func fileExists(p string) bool {
	fi, err := os.Stat(p)
	return err == nil && !fi.IsDir()
}

func bindFlags(fs *pflag.FlagSet, c *Specification) {
	fs.String("config", "", "Path to config file")

	for i, a := range os.Args {
		if a == "--config" {
			if i+1 < len(os.Args) && !strings.HasPrefix(os.Args[i+1], "-") {
				_ = os.Setenv(envPrefix+"_CONFIG", os.Args[i+1])
			}
		} else if strings.HasPrefix(a, "--config=") {
			parts := strings.SplitN(a, "=", 2)
			if len(parts) == 2 {
				_ = os.Setenv(envPrefix+"_CONFIG", parts[1])
			}
		}
	}

	fs.String("cache-root", c.CacheRoot, "Path to the translation cache root")

	fs.String("provider", c.Provider, "ModelCaller provider (gemini, http, stub)")
	fs.String("provider-api-key", c.APIKey, "Model provider API key")
	fs.String("provider-model", c.Model, "Model name/identifier")
	fs.String("provider-endpoint", c.Endpoint, "HTTP-compatible provider endpoint URL")
	fs.String("provider-project-id", c.ProjectID, "Provider project ID (Gemini)")
	fs.String("provider-location", c.Location, "Provider location/region (Gemini)")
	fs.Float64("provider-temperature", c.Temperature, "Sampling temperature")
	fs.Int("provider-max-tokens", c.MaxTokens, "Maximum output tokens per call")
	fs.Int("provider-cooldown-ms", c.CooldownMs, "Cooldown after each successful model call, in milliseconds")

	fs.Int("retry-max-attempts", c.RetryMaxAttempts, "Maximum attempts when the model reports overload")
	fs.Int("retry-initial-delay-ms", c.RetryInitialDelayMs, "Initial retry backoff, in milliseconds")
	fs.Int("retry-max-delay-ms", c.RetryMaxDelayMs, "Maximum retry backoff, in milliseconds")

	fs.Float64("retrieval-threshold", c.RetrievalThreshold, "Minimum similarity ratio for few-shot example retrieval")

	fs.String("vector-index-database-url", c.VectorIndexDatabaseURL, "Postgres/pgvector DSN for the optional vector prefilter")

	fs.String("log-level", c.LogLevel, "Log level (debug|info|warn|error)")

	fs.Bool("admin-enabled", c.Admin.Enabled, "Enable the read-only admin HTTP API")
	fs.String("admin-bind", c.Admin.Bind, "Admin API bind address")
	fs.String("admin-jwt-secret", c.Admin.JwtSecret, "JWT secret for the admin API bearer token")

	copied := pflag.NewFlagSet("temp", pflag.ContinueOnError)
	*copied = *fs
	c.flags = copied
}

func applyChangedFlags(fs *pflag.FlagSet, c *Specification) {
	setStr := func(name string, dst *string) {
		if fs.Changed(name) {
			v, _ := fs.GetString(name)
			*dst = v
		}
	}
	setInt := func(name string, dst *int) {
		if fs.Changed(name) {
			v, _ := fs.GetInt(name)
			*dst = v
		}
	}
	setFloat := func(name string, dst *float64) {
		if fs.Changed(name) {
			v, _ := fs.GetFloat64(name)
			*dst = v
		}
	}
	setBool := func(name string, dst *bool) {
		if fs.Changed(name) {
			v, _ := fs.GetBool(name)
			*dst = v
		}
	}

	setStr("cache-root", &c.CacheRoot)

	setStr("provider", &c.Provider)
	setStr("provider-api-key", &c.APIKey)
	setStr("provider-model", &c.Model)
	setStr("provider-endpoint", &c.Endpoint)
	setStr("provider-project-id", &c.ProjectID)
	setStr("provider-location", &c.Location)
	setFloat("provider-temperature", &c.Temperature)
	setInt("provider-max-tokens", &c.MaxTokens)
	setInt("provider-cooldown-ms", &c.CooldownMs)

	setInt("retry-max-attempts", &c.RetryMaxAttempts)
	setInt("retry-initial-delay-ms", &c.RetryInitialDelayMs)
	setInt("retry-max-delay-ms", &c.RetryMaxDelayMs)

	setFloat("retrieval-threshold", &c.RetrievalThreshold)

	setStr("vector-index-database-url", &c.VectorIndexDatabaseURL)

	setStr("log-level", &c.LogLevel)

	setBool("admin-enabled", &c.Admin.Enabled)
	setStr("admin-bind", &c.Admin.Bind)
	setStr("admin-jwt-secret", &c.Admin.JwtSecret)
}

func setDefaults(c *Specification) {
	c.LogLevel = "info"
	c.Provider = "stub"
	c.CacheRoot = "./cache"
	c.Temperature = 0.2
	c.MaxTokens = 2048
	c.CooldownMs = 0
	c.RetryMaxAttempts = 5
	c.RetryInitialDelayMs = 1000
	c.RetryMaxDelayMs = 16000
	c.RetrievalThreshold = 0.7
	c.Admin.Bind = "127.0.0.1:8090"
	c.Admin.Enabled = false
}
