package config

import (
	"errors"
	"io/fs"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Source kinds understood by the loader.
const (
	SourceAuto = "auto"
	SourceXLSX = "xlsx"
	SourceCSV  = "csv"
	SourceSQL  = "sql"
)

// DefaultOutputPath mirrors the file name the legacy tool always wrote.
const DefaultOutputPath = "resultado.xlsx"

type Config struct {
	Env string

	Log      LogConfig
	Source   SourceConfig
	Database DatabaseConfig
	Output   OutputConfig
	Metrics  MetricsConfig
}

type LogConfig struct {
	Level  string
	Format string
}

// SourceConfig selects where schedule rows are read from.
type SourceConfig struct {
	Kind  string
	Path  string
	Sheet string
	Query string
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

// OutputConfig controls rendered artefacts.
type OutputConfig struct {
	Path      string
	Formats   []string
	SheetName string
}

// MetricsConfig points at an optional Prometheus textfile.
type MetricsConfig struct {
	File string
}

// flagKeys maps CLI flag names onto configuration keys.
var flagKeys = map[string]string{
	"input":        "INPUT_PATH",
	"source":       "SOURCE_KIND",
	"sheet":        "SOURCE_SHEET",
	"query":        "SOURCE_QUERY",
	"output":       "OUTPUT_PATH",
	"format":       "OUTPUT_FORMATS",
	"sheet-name":   "OUTPUT_SHEET_NAME",
	"metrics-file": "METRICS_FILE",
	"log-level":    "LOG_LEVEL",
	"log-format":   "LOG_FORMAT",
}

// Load reads configuration from the env file, the environment and any flags
// explicitly set on the command line (highest precedence).
func Load(envFile string, flags *pflag.FlagSet) (*Config, error) {
	if envFile == "" {
		envFile = ".env"
	}
	_ = godotenv.Load(envFile)

	v := viper.New()
	v.SetConfigFile(envFile)
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !isNotExist(err) {
			return nil, err
		}
	}

	if flags != nil {
		for name, key := range flagKeys {
			flag := flags.Lookup(name)
			if flag == nil || !flag.Changed {
				continue
			}
			if err := v.BindPFlag(key, flag); err != nil {
				return nil, err
			}
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Source = SourceConfig{
		Kind:  strings.ToLower(strings.TrimSpace(v.GetString("SOURCE_KIND"))),
		Path:  v.GetString("INPUT_PATH"),
		Sheet: v.GetString("SOURCE_SHEET"),
		Query: v.GetString("SOURCE_QUERY"),
	}

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Output = OutputConfig{
		Path:      v.GetString("OUTPUT_PATH"),
		Formats:   formatList(v.Get("OUTPUT_FORMATS")),
		SheetName: v.GetString("OUTPUT_SHEET_NAME"),
	}

	cfg.Metrics = MetricsConfig{File: v.GetString("METRICS_FILE")}

	return cfg, nil
}

func isNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "console")

	v.SetDefault("SOURCE_KIND", SourceAuto)
	v.SetDefault("INPUT_PATH", "")
	v.SetDefault("SOURCE_SHEET", "")
	v.SetDefault("SOURCE_QUERY", "SELECT professor, diasemana, horainicial, horafinal, disciplina, codturma FROM class_schedules")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "admin_panel_sma")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 2)
	v.SetDefault("DB_MAX_IDLE_CONNS", 1)

	v.SetDefault("OUTPUT_PATH", DefaultOutputPath)
	v.SetDefault("OUTPUT_FORMATS", "xlsx")
	v.SetDefault("OUTPUT_SHEET_NAME", "Schedule")

	v.SetDefault("METRICS_FILE", "")
}

// formatList accepts either a comma separated string (env, .env) or the
// string slice produced by a bound slice flag.
func formatList(raw interface{}) []string {
	switch val := raw.(type) {
	case []string:
		return normalizeFormats(val)
	case string:
		return normalizeFormats(splitAndTrim(val))
	default:
		return nil
	}
}

func normalizeFormats(items []string) []string {
	result := make([]string, 0, len(items))
	seen := make(map[string]bool, len(items))
	for _, item := range items {
		for _, part := range splitAndTrim(item) {
			format := strings.ToLower(part)
			if seen[format] {
				continue
			}
			seen[format] = true
			result = append(result, format)
		}
	}
	return result
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
