package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is the prefix of environment variables that override file settings,
// e.g. CATALOGD_WEB_PORT=8080 or CATALOGD_DATABASE_HOST=db.
const EnvPrefix = "CATALOGD_"

// SysConfig system configuration
type SysConfig struct {
	Appid    string `yaml:"appid"`
	Location string `yaml:"location"`
	Workdir  string `yaml:"workdir"`
	Debug    bool   `yaml:"debug"`
}

// WebConfig web server configuration
type WebConfig struct {
	Host        string        `yaml:"host"`
	Port        int           `yaml:"port"`
	Secret      string        `yaml:"secret"`
	TokenTTL    time.Duration `yaml:"token_ttl"`
	BodyLimit   string        `yaml:"body_limit"`
	MessageRate float64       `yaml:"message_rate"` // contact form submissions per second per IP, 0 disables the limiter
	Metrics     bool          `yaml:"metrics"`
}

// DBConfig database configuration
type DBConfig struct {
	Type     string `yaml:"type"` // postgres or sqlite
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Passwd   string `yaml:"passwd"`
	MaxConn  int    `yaml:"max_conn"`
	IdleConn int    `yaml:"idle_conn"`
	Debug    bool   `yaml:"debug"`
}

// LogConfig logging configuration
type LogConfig struct {
	Mode       string `yaml:"mode"`
	FileEnable bool   `yaml:"file_enable"`
	Filename   string `yaml:"filename"`
}

// AssetsConfig media host configuration
type AssetsConfig struct {
	BaseURL        string        `yaml:"base_url"`
	APIKey         string        `yaml:"api_key"`
	Folder         string        `yaml:"folder"`
	Timeout        time.Duration `yaml:"timeout"`
	MaxUploadSize  string        `yaml:"max_upload_size"`
	CleanupWorkers int           `yaml:"cleanup_workers"`
}

// AuthUser is an operator allowed to sign in to the admin API.
type AuthUser struct {
	Username     string `yaml:"username"`
	PasswordHash string `yaml:"password_hash"` // bcrypt
	Role         string `yaml:"role"`          // admin or editor
}

type AuthConfig struct {
	Users []AuthUser `yaml:"users"`
}

type AppConfig struct {
	System   SysConfig    `yaml:"system"`
	Web      WebConfig    `yaml:"web"`
	Database DBConfig     `yaml:"database"`
	Logger   LogConfig    `yaml:"logger"`
	Assets   AssetsConfig `yaml:"assets"`
	Auth     AuthConfig   `yaml:"auth"`
}

// Default returns the built-in configuration used when no file is given.
func Default() *AppConfig {
	return &AppConfig{
		System: SysConfig{
			Appid:    "catalogd",
			Location: "UTC",
			Workdir:  "/var/catalogd",
		},
		Web: WebConfig{
			Host:        "0.0.0.0",
			Port:        1816,
			TokenTTL:    12 * time.Hour,
			BodyLimit:   "10M",
			MessageRate: 0.2,
			Metrics:     true,
		},
		Database: DBConfig{
			Type:     "postgres",
			Host:     "127.0.0.1",
			Port:     5432,
			Name:     "catalogd",
			User:     "postgres",
			MaxConn:  20,
			IdleConn: 5,
		},
		Logger: LogConfig{
			Mode:     "development",
			Filename: "/var/catalogd/logs/catalogd.log",
		},
		Assets: AssetsConfig{
			Folder:         "catalog",
			Timeout:        30 * time.Second,
			MaxUploadSize:  "5MB",
			CleanupWorkers: 4,
		},
	}
}

// Load reads the YAML file at path (optional) on top of the defaults and
// applies environment overrides.
func Load(path string) (*AppConfig, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrapf(err, "read config %s", path)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, errors.Wrapf(err, "parse config %s", path)
		}
	}
	if err := cfg.ApplyEnv(os.Environ()); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overlays CATALOGD_<SECTION>_<KEY> variables onto the configuration.
// Values are weakly typed, so "true", "8080" and "30s" decode into their fields.
func (c *AppConfig) ApplyEnv(environ []string) error {
	sections := map[string]interface{}{
		"system":   &c.System,
		"web":      &c.Web,
		"database": &c.Database,
		"logger":   &c.Logger,
		"assets":   &c.Assets,
	}
	values := make(map[string]map[string]interface{})
	for _, kv := range environ {
		if !strings.HasPrefix(kv, EnvPrefix) {
			continue
		}
		key, val, found := strings.Cut(strings.TrimPrefix(kv, EnvPrefix), "=")
		if !found {
			continue
		}
		section, field, found := strings.Cut(strings.ToLower(key), "_")
		if !found {
			continue
		}
		if _, ok := sections[section]; !ok {
			continue
		}
		if values[section] == nil {
			values[section] = make(map[string]interface{})
		}
		values[section][field] = val
	}
	for section, input := range values {
		decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
			TagName:          "yaml",
			WeaklyTypedInput: true,
			DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
			Result:           sections[section],
		})
		if err != nil {
			return errors.WithStack(err)
		}
		if err := decoder.Decode(input); err != nil {
			return errors.Wrapf(err, "env override for %s", section)
		}
	}
	return nil
}

// GetLogDir returns the log directory under the working directory.
func (c *AppConfig) GetLogDir() string {
	return filepath.Join(c.System.Workdir, "logs")
}

// GetDataDir returns the data directory under the working directory.
func (c *AppConfig) GetDataDir() string {
	return filepath.Join(c.System.Workdir, "data")
}

// InitDirs creates the working directories.
func (c *AppConfig) InitDirs() error {
	for _, dir := range []string{c.GetLogDir(), c.GetDataDir()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrapf(err, "create %s", dir)
		}
	}
	return nil
}
