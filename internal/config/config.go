package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/Veraticus/coffee-diary/internal/common"
)

// EnvPrefix prefixes every environment override, e.g. DIARY_STORAGE_BACKEND.
const EnvPrefix = "DIARY"

// Viper keys.
const (
	KeyLogLevel       = "logging.level"
	KeyLogFormat      = "logging.format"
	KeyImportYear     = "import.year"
	KeyImportWorkers  = "import.workers"
	KeyScrubAccount   = "import.scrub_account"
	KeyStorageBackend = "storage.backend"
	KeyStoragePath    = "storage.path"
	KeyVocabulary     = "classification.vocabulary"
)

// Settings is the resolved configuration.
type Settings struct {
	LogLevel       string
	LogFormat      string
	StorageBackend string
	StoragePath    string
	VocabularyPath string
	// Year restricts imports to one calendar year. Zero accepts every year.
	Year         int
	Workers      int
	ScrubAccount bool
}

// SetDefaults registers the default value of every key.
func SetDefaults(v *viper.Viper, now time.Time) {
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, "console")
	v.SetDefault(KeyImportYear, now.Year())
	v.SetDefault(KeyImportWorkers, 0)
	v.SetDefault(KeyScrubAccount, false)
	v.SetDefault(KeyStorageBackend, "sqlite")
	v.SetDefault(KeyStoragePath, "")
	v.SetDefault(KeyVocabulary, "")
}

// Init wires the config file, a local .env file and DIARY_ environment
// variables into v. A missing config file or .env file is not an error.
func Init(v *viper.Viper, cfgFile string) error {
	if err := godotenv.Load(DefaultEnvFileName); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to load %s: %w", DefaultEnvFileName, err)
	}

	if cfgFile != "" {
		v.SetConfigFile(ExpandPath(cfgFile))
	} else {
		v.AddConfigPath(ExpandPath(DefaultConfigDir))
		v.AddConfigPath(".")
		v.SetConfigName(DefaultConfigName)
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config: %w", err)
		}
	}

	return nil
}

// Load resolves and validates Settings from v.
func Load(v *viper.Viper) (Settings, error) {
	s := Settings{
		LogLevel:       v.GetString(KeyLogLevel),
		LogFormat:      v.GetString(KeyLogFormat),
		StorageBackend: strings.ToLower(v.GetString(KeyStorageBackend)),
		StoragePath:    ExpandPath(v.GetString(KeyStoragePath)),
		VocabularyPath: ExpandPath(v.GetString(KeyVocabulary)),
		Year:           v.GetInt(KeyImportYear),
		Workers:        v.GetInt(KeyImportWorkers),
		ScrubAccount:   v.GetBool(KeyScrubAccount),
	}

	switch s.StorageBackend {
	case "sqlite", "bolt":
	default:
		return Settings{}, fmt.Errorf("%w: storage.backend must be sqlite or bolt, got %q", common.ErrInvalidConfig, s.StorageBackend)
	}

	if s.Year < 0 || s.Year > 9999 {
		return Settings{}, fmt.Errorf("%w: import.year %d out of range", common.ErrInvalidConfig, s.Year)
	}
	if s.Workers < 0 {
		return Settings{}, fmt.Errorf("%w: import.workers must not be negative", common.ErrInvalidConfig)
	}

	if s.StoragePath == "" {
		s.StoragePath = DefaultStoragePath(s.StorageBackend)
	}

	return s, nil
}
