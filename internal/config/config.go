// Package config loads binary configuration from flags, LOFORM_* environment
// variables and an optional loform.yaml file, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. LOFORM_SERVER_ADDR.
const EnvPrefix = "loform"

// ErrNoSchemaSource is returned when no schema directory, OpenAPI file or
// schema URL is configured.
var ErrNoSchemaSource = errors.New("config: no schema source configured")

var logLevelMapping = map[string]slog.Level{
	"debug": slog.LevelDebug,
	"info":  slog.LevelInfo,
	"warn":  slog.LevelWarn,
	"error": slog.LevelError,
}

type Config struct {
	General GeneralConfig
	Schemas SchemasConfig
	Options OptionsConfig
	Session SessionConfig
	Server  ServerConfig
}

type GeneralConfig struct {
	LogLevel string
}

// Level maps LogLevel onto a slog level, defaulting to info.
func (g GeneralConfig) Level() slog.Level {
	if level, ok := logLevelMapping[strings.ToLower(g.LogLevel)]; ok {
		return level
	}
	return slog.LevelInfo
}

type SchemasConfig struct {
	Dir         string
	OpenAPIFile string
	BaseURL     string
	Watch       bool
	Timeout     time.Duration
}

type OptionsConfig struct {
	CodelistsDir    string
	CatalogURL      string
	CatalogTimeout  time.Duration
	RefreshSchedule string
}

type SessionConfig struct {
	Debounce time.Duration
}

type ServerConfig struct {
	Addr           string
	AllowedOrigins []string
}

// binding ties a command line flag to its configuration key.
type binding struct {
	flag  string
	key   string
	usage string
	value any
}

var bindings = []binding{
	{"log-level", "general.log_level", "log level (debug, info, warn, error)", "info"},
	{"schema-dir", "schemas.dir", "directory holding <category>/<type>.{json,yaml} schemas", ""},
	{"openapi", "schemas.openapi_file", "OpenAPI document providing component schemas", ""},
	{"schema-url", "schemas.base_url", "base URL serving <id>.json schemas", ""},
	{"watch", "schemas.watch", "invalidate cached schemas when files change", false},
	{"schema-timeout", "schemas.timeout", "timeout of remote schema requests", 10 * time.Second},
	{"codelists", "options.codelists_dir", "directory holding codelist tables", ""},
	{"catalog-url", "options.catalog_url", "catalog endpoint listing instances of a type", ""},
	{"catalog-timeout", "options.catalog_timeout", "timeout of catalog requests", 10 * time.Second},
	{"refresh", "options.refresh_schedule", "cron schedule dropping cached options", ""},
	{"debounce", "session.debounce", "quiescence window before a snapshot is emitted", 500 * time.Millisecond},
	{"addr", "server.addr", "listen address", ":8080"},
	{"allowed-origins", "server.allowed_origins", "CORS origins allowed to call the API", []string{}},
}

// RegisterFlags defines every configuration flag plus --config on flags.
func RegisterFlags(flags *pflag.FlagSet) {
	flags.String("config", "", "configuration file (default: loform.yaml in . or ./config)")
	for _, b := range bindings {
		switch v := b.value.(type) {
		case string:
			flags.String(b.flag, v, b.usage)
		case bool:
			flags.Bool(b.flag, v, b.usage)
		case time.Duration:
			flags.Duration(b.flag, v, b.usage)
		case []string:
			flags.StringSlice(b.flag, v, b.usage)
		}
	}
}

// Load resolves the configuration. flags may be nil, in which case only the
// environment, the config file and defaults are consulted.
func Load(flags *pflag.FlagSet) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for _, b := range bindings {
		v.SetDefault(b.key, b.value)
		if flags == nil {
			continue
		}
		if flag := flags.Lookup(b.flag); flag != nil {
			if err := v.BindPFlag(b.key, flag); err != nil {
				return Config{}, fmt.Errorf("config: bind %s: %w", b.flag, err)
			}
		}
	}

	if err := readFile(v, flags); err != nil {
		return Config{}, err
	}

	cfg := Config{
		General: GeneralConfig{
			LogLevel: v.GetString("general.log_level"),
		},
		Schemas: SchemasConfig{
			Dir:         v.GetString("schemas.dir"),
			OpenAPIFile: v.GetString("schemas.openapi_file"),
			BaseURL:     v.GetString("schemas.base_url"),
			Watch:       v.GetBool("schemas.watch"),
			Timeout:     v.GetDuration("schemas.timeout"),
		},
		Options: OptionsConfig{
			CodelistsDir:    v.GetString("options.codelists_dir"),
			CatalogURL:      v.GetString("options.catalog_url"),
			CatalogTimeout:  v.GetDuration("options.catalog_timeout"),
			RefreshSchedule: v.GetString("options.refresh_schedule"),
		},
		Session: SessionConfig{
			Debounce: v.GetDuration("session.debounce"),
		},
		Server: ServerConfig{
			Addr:           v.GetString("server.addr"),
			AllowedOrigins: v.GetStringSlice("server.allowed_origins"),
		},
	}
	return cfg, cfg.Validate()
}

// Validate reports configuration that cannot be served.
func (c Config) Validate() error {
	var errs []error
	if c.Schemas.Dir == "" && c.Schemas.OpenAPIFile == "" && c.Schemas.BaseURL == "" {
		errs = append(errs, ErrNoSchemaSource)
	}
	if _, ok := logLevelMapping[strings.ToLower(c.General.LogLevel)]; !ok {
		errs = append(errs, fmt.Errorf("config: unknown log level %q", c.General.LogLevel))
	}
	if c.Session.Debounce <= 0 {
		errs = append(errs, fmt.Errorf("config: debounce must be positive, got %s", c.Session.Debounce))
	}
	return errors.Join(errs...)
}

func readFile(v *viper.Viper, flags *pflag.FlagSet) error {
	var explicit string
	if flags != nil {
		explicit, _ = flags.GetString("config")
	}
	if explicit == "" {
		explicit = os.Getenv(strings.ToUpper(EnvPrefix) + "_CONFIG")
	}

	if explicit != "" {
		v.SetConfigFile(explicit)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("config: read %s: %w", filepath.Base(explicit), err)
		}
		return nil
	}

	v.SetConfigName("loform")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("config")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("config: read loform.yaml: %w", err)
	}
	return nil
}
