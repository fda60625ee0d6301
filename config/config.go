package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const envPrefix = "BLUENOTE"

type Server struct {
	Addr        string   `mapstructure:"addr"`
	DataFile    string   `mapstructure:"data_file"`
	Passphrase  string   `mapstructure:"passphrase"`
	DatabaseURL string   `mapstructure:"database_url"`
	CORSOrigins []string `mapstructure:"cors_origins"`
	RateRPS     int      `mapstructure:"rate_rps"`
	RateBurst   int      `mapstructure:"rate_burst"`
}

type Config struct {
	APIURL         string        `mapstructure:"api_url"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	LogFile        string        `mapstructure:"log_file"`
	Server         Server        `mapstructure:"server"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api_url", "http://localhost:8080")
	v.SetDefault("request_timeout", 10*time.Second)
	v.SetDefault("log_file", filepath.Join(os.TempDir(), "bluenote.log"))
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.data_file", "")
	v.SetDefault("server.passphrase", "")
	v.SetDefault("server.database_url", "")
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("server.rate_rps", 100)
	v.SetDefault("server.rate_burst", 10)
}

// Load resolves configuration from, in increasing priority: defaults, the
// optional config file, BLUENOTE_* environment variables and flags that
// were set explicitly. Flag names are the keys with "_" replaced by "-"
// and nested keys flattened ("server.rate_rps" is --rate-rps).
func Load(configFile string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("v.ReadInConfig: %w", err)
		}
	}

	if flags != nil {
		for _, key := range v.AllKeys() {
			name := strings.ReplaceAll(key[strings.LastIndex(key, ".")+1:], "_", "-")
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, err
				}
			}
		}
	}

	cfg := new(Config)
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("v.Unmarshal: %w", err)
	}
	cfg.Server.CORSOrigins = splitList(cfg.Server.CORSOrigins)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	u, err := url.Parse(c.APIURL)
	if err != nil {
		return fmt.Errorf("api_url: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("api_url: %q must be an absolute http(s) URL", c.APIURL)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request_timeout: must be positive, got %s", c.RequestTimeout)
	}
	if c.Server.DataFile != "" && c.Server.DatabaseURL != "" {
		return fmt.Errorf("server: data_file and database_url are mutually exclusive")
	}
	return nil
}

// splitList accepts both ["a","b"] and a single "a,b" from the environment.
func splitList(in []string) []string {
	var out []string
	for _, item := range in {
		for _, part := range strings.Split(item, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
