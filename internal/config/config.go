package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Duration is a time.Duration written as a Go duration string ("15s") in TOML.
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", string(text), err)
	}
	*d = Duration(v)
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

type ServerConfig struct {
	Addr           string   `toml:"addr"`
	LookupTimeout  Duration `toml:"lookup_timeout"`
	CacheTTL       Duration `toml:"cache_ttl"`
	RateLimit      float64  `toml:"rate_limit"` // requests per second per client IP
	RateBurst      int      `toml:"rate_burst"`
	AllowedOrigins []string `toml:"allowed_origins"`
}

type ProxyConfig struct {
	Addr       string   `toml:"addr"`
	BackendURL string   `toml:"backend_url"`
	Timeout    Duration `toml:"timeout"`
}

// ProviderConfig is shared by every upstream data provider.
type ProviderConfig struct {
	APIKey  string   `toml:"api_key"`
	BaseURL string   `toml:"base_url"`
	Timeout Duration `toml:"timeout"`
}

type ZillowConfig struct {
	ProviderConfig
	Host string `toml:"host"`
}

type FREDConfig struct {
	ProviderConfig
	SeriesID string `toml:"series_id"`
	// Lookback is how far back the index history is requested.
	Lookback Duration `toml:"lookback"`
}

type NewsConfig struct {
	ProviderConfig
	Query string `toml:"query"`
	Limit int    `toml:"limit"`
}

type LLMConfig struct {
	Provider string `toml:"provider"`
	Model    string `toml:"model"`
	APIKey   string `toml:"api_key"`
	BaseURL  string `toml:"base_url"`
}

type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

type Config struct {
	Server   ServerConfig   `toml:"server"`
	Proxy    ProxyConfig    `toml:"proxy"`
	Rentcast ProviderConfig `toml:"rentcast"`
	Zillow   ZillowConfig   `toml:"zillow"`
	Census   ProviderConfig `toml:"census"`
	FRED     FREDConfig     `toml:"fred"`
	News     NewsConfig     `toml:"news"`
	LLM      LLMConfig      `toml:"llm"`
	Log      LogConfig      `toml:"log"`
}

// Default returns the configuration used when no file or environment overrides are present.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:           ":8000",
			LookupTimeout:  Duration(12 * time.Second),
			CacheTTL:       Duration(5 * time.Minute),
			RateLimit:      1,
			RateBurst:      10,
			AllowedOrigins: []string{"http://localhost:3000"},
		},
		Proxy: ProxyConfig{
			Addr:       ":3001",
			BackendURL: "http://localhost:8000",
			Timeout:    Duration(15 * time.Second),
		},
		Rentcast: ProviderConfig{
			BaseURL: "https://api.rentcast.io/v1",
			Timeout: Duration(10 * time.Second),
		},
		Zillow: ZillowConfig{
			ProviderConfig: ProviderConfig{
				BaseURL: "https://zillow-com1.p.rapidapi.com",
				Timeout: Duration(5 * time.Second),
			},
			Host: "zillow-com1.p.rapidapi.com",
		},
		Census: ProviderConfig{
			BaseURL: "https://api.census.gov/data/2020/acs/acs5/profile",
			Timeout: Duration(5 * time.Second),
		},
		FRED: FREDConfig{
			ProviderConfig: ProviderConfig{
				BaseURL: "https://api.stlouisfed.org/fred",
				Timeout: Duration(5 * time.Second),
			},
			SeriesID: "CSUSHPINSA",
			Lookback: Duration(2 * 365 * 24 * time.Hour),
		},
		News: NewsConfig{
			ProviderConfig: ProviderConfig{
				BaseURL: "https://newsapi.org/v2",
				Timeout: Duration(5 * time.Second),
			},
			Query: "real estate OR housing market",
			Limit: 5,
		},
		LLM: LLMConfig{
			Provider: "gemini",
			Model:    "gemini-1.5-flash",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load reads the TOML file at path on top of Default, then applies environment overrides.
// A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("failed to read config file '%s': %w", path, err)
		default:
			if err := toml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse TOML: %w", err)
			}
		}
	}

	cfg.ApplyEnv(os.LookupEnv)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides fields from environment variables. lookup is os.LookupEnv in production.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	set := func(dst *string, key string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}

	set(&c.Server.Addr, "SERVER_ADDR")
	set(&c.Proxy.Addr, "PROXY_ADDR")
	set(&c.Proxy.BackendURL, "BACKEND_URL")

	set(&c.Rentcast.APIKey, "RENTCAST_API_KEY")
	set(&c.Rentcast.BaseURL, "RENTCAST_BASE_URL")
	set(&c.Zillow.APIKey, "ZILLOW_API_KEY")
	set(&c.Zillow.BaseURL, "ZILLOW_BASE_URL")
	set(&c.Census.APIKey, "CENSUS_API_KEY")
	set(&c.Census.BaseURL, "CENSUS_BASE_URL")
	set(&c.FRED.APIKey, "FRED_API_KEY")
	set(&c.FRED.BaseURL, "FRED_BASE_URL")
	set(&c.News.APIKey, "NEWSAPI_KEY")
	set(&c.News.BaseURL, "NEWSAPI_BASE_URL")

	set(&c.LLM.Provider, "LLM_PROVIDER")
	set(&c.LLM.Model, "LLM_MODEL")
	set(&c.LLM.BaseURL, "LLM_BASE_URL")
	// GEMINI_API_KEY only applies to the gemini provider; LLM_API_KEY wins for any provider.
	if strings.EqualFold(c.LLM.Provider, "gemini") {
		set(&c.LLM.APIKey, "GEMINI_API_KEY")
	}
	set(&c.LLM.APIKey, "LLM_API_KEY")

	set(&c.Log.Level, "LOG_LEVEL")
	set(&c.Log.Format, "LOG_FORMAT")

	if origins, ok := lookup("ALLOWED_ORIGINS"); ok && origins != "" {
		c.Server.AllowedOrigins = nil
		for _, o := range strings.Split(origins, ",") {
			if o = strings.TrimSpace(o); o != "" {
				c.Server.AllowedOrigins = append(c.Server.AllowedOrigins, o)
			}
		}
	}
}

// Validate reports configuration that cannot work at all. Missing provider keys are
// allowed: the provider is then skipped (or, for Rentcast, every lookup fails).
func (c *Config) Validate() error {
	if c.Proxy.BackendURL == "" {
		return errors.New("proxy backend_url must not be empty")
	}
	if c.Proxy.Timeout <= 0 {
		return errors.New("proxy timeout must be positive")
	}
	if c.Server.LookupTimeout <= 0 {
		return errors.New("server lookup_timeout must be positive")
	}
	if c.Server.RateBurst < 0 || c.Server.RateLimit < 0 {
		return errors.New("server rate limit must not be negative")
	}
	switch strings.ToLower(c.Log.Format) {
	case "json", "text":
	default:
		return fmt.Errorf("unsupported log format: %s", c.Log.Format)
	}
	return nil
}
