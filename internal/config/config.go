package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/vango-dev/enhance/internal/errors"
)

const (
	// FileName is the name of the configuration file.
	FileName = "enhance.json"

	// DefaultPort is the default server port.
	DefaultPort = 8080

	// DefaultHost is the default server host.
	DefaultHost = "localhost"

	// DefaultMaxDepth is the default component expansion depth limit.
	DefaultMaxDepth = 100

	// DefaultCacheTTL is the default lifetime of cached render results.
	DefaultCacheTTL = "5m"
)

// Cache drivers.
const (
	CacheNone   = "none"
	CacheMemory = "memory"
	CacheRedis  = "redis"
)

// Config represents enhance.json.
type Config struct {
	// Name is the project name.
	Name string `json:"name,omitempty"`

	Server    ServerConfig    `json:"server"`
	Paths     PathsConfig     `json:"paths"`
	Render    RenderConfig    `json:"render"`
	Sources   SourcesConfig   `json:"sources"`
	Cache     CacheConfig     `json:"cache"`
	Telemetry TelemetryConfig `json:"telemetry"`
	Log       LogConfig       `json:"log"`

	// path stores where the config was loaded from.
	path string
}

// ServerConfig configures the HTTP host.
type ServerConfig struct {
	Host string `json:"host,omitempty" env:"ENHANCE_HOST"`
	Port int    `json:"port,omitempty" env:"ENHANCE_PORT"`

	// Dev enables hot reload of components and pages.
	Dev bool `json:"dev,omitempty" env:"ENHANCE_DEV"`
}

// PathsConfig contains project directories, relative to the config file.
type PathsConfig struct {
	// Components holds one <tag>.lua file per component.
	Components string `json:"components,omitempty" env:"ENHANCE_COMPONENTS_DIR"`

	// Pages holds the HTML pages served by the host.
	Pages string `json:"pages,omitempty" env:"ENHANCE_PAGES_DIR"`

	// Static holds files served as is under /static/.
	Static string `json:"static,omitempty" env:"ENHANCE_STATIC_DIR"`
}

// RenderConfig configures the renderer.
type RenderConfig struct {
	MaxDepth       int    `json:"maxDepth,omitempty" env:"ENHANCE_MAX_DEPTH"`
	PropagateState bool   `json:"propagateState,omitempty" env:"ENHANCE_PROPAGATE_STATE"`
	Lang           string `json:"lang,omitempty" env:"ENHANCE_LANG"`
	Title          string `json:"title,omitempty" env:"ENHANCE_TITLE"`
}

// SourcesConfig lists component sources beyond the components directory.
type SourcesConfig struct {
	S3 S3Config `json:"s3"`
}

// S3Config points at a bucket of component sources. Empty Bucket
// disables it.
type S3Config struct {
	Bucket string `json:"bucket,omitempty" env:"ENHANCE_S3_BUCKET"`
	Prefix string `json:"prefix,omitempty" env:"ENHANCE_S3_PREFIX"`
	Region string `json:"region,omitempty" env:"ENHANCE_S3_REGION"`
}

// CacheConfig configures the render result cache.
type CacheConfig struct {
	// Driver is "none", "memory" or "redis".
	Driver string `json:"driver,omitempty" env:"ENHANCE_CACHE_DRIVER"`

	// TTL is a duration string such as "5m".
	TTL string `json:"ttl,omitempty" env:"ENHANCE_CACHE_TTL"`

	RedisAddr string `json:"redisAddr,omitempty" env:"ENHANCE_REDIS_ADDR"`
	RedisDB   int    `json:"redisDB,omitempty" env:"ENHANCE_REDIS_DB"`
}

// TelemetryConfig configures tracing export. Empty OTLPEndpoint disables
// export.
type TelemetryConfig struct {
	OTLPEndpoint string `json:"otlpEndpoint,omitempty" env:"ENHANCE_OTLP_ENDPOINT"`
	ServiceName  string `json:"serviceName,omitempty" env:"ENHANCE_SERVICE_NAME"`
	Insecure     bool   `json:"insecure,omitempty" env:"ENHANCE_OTLP_INSECURE"`
}

// LogConfig configures structured logging.
type LogConfig struct {
	Level  string `json:"level,omitempty" env:"ENHANCE_LOG_LEVEL"`
	Format string `json:"format,omitempty" env:"ENHANCE_LOG_FORMAT"`
}

// New creates a Config with default values.
func New() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

// Load reads enhance.json from dir. A missing file is not an error: the
// defaults are used, with dir as the project root.
func Load(dir string) (*Config, error) {
	path := filepath.Join(dir, FileName)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		cfg := &Config{path: path}
		if err := cfg.finish(); err != nil {
			return nil, err
		}
		return cfg, nil
	}
	return LoadFile(path)
}

// LoadFile reads configuration from the given file, applies environment
// overrides and defaults, and validates the result.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.New("E100").
			WithDetail("Could not read " + path).
			Wrap(err)
	}

	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, errors.New("E101").
			WithSuggestion("Check that " + filepath.Base(path) + " is valid JSON").
			Wrap(err)
	}

	cfg.path = path
	if err := cfg.finish(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) finish() error {
	if err := c.ApplyEnv(); err != nil {
		return err
	}
	c.applyDefaults()
	return c.Validate()
}

// ApplyEnv overrides fields from ENHANCE_* environment variables. Unset
// variables leave the current value alone.
func (c *Config) ApplyEnv() error {
	if err := env.Parse(c); err != nil {
		return errors.New("E102").Wrap(err)
	}
	return nil
}

// Save writes the configuration to the file it was loaded from.
func (c *Config) Save() error {
	if c.path == "" {
		return errors.Newf(errors.CategoryConfig, "no config path set")
	}
	return c.SaveTo(c.path)
}

// SaveTo writes the configuration to path.
func (c *Config) SaveTo(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return errors.New("E101").Wrap(err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.New("E100").Wrap(err)
	}
	c.path = path
	return nil
}

// Path returns the path of the config file.
func (c *Config) Path() string {
	return c.path
}

// Dir returns the project root.
func (c *Config) Dir() string {
	if c.path == "" {
		return ""
	}
	return filepath.Dir(c.path)
}

func (c *Config) applyDefaults() {
	if c.Server.Host == "" {
		c.Server.Host = DefaultHost
	}
	if c.Server.Port == 0 {
		c.Server.Port = DefaultPort
	}

	if c.Paths.Components == "" {
		c.Paths.Components = "components"
	}
	if c.Paths.Pages == "" {
		c.Paths.Pages = "pages"
	}
	if c.Paths.Static == "" {
		c.Paths.Static = "public"
	}

	if c.Render.MaxDepth == 0 {
		c.Render.MaxDepth = DefaultMaxDepth
	}
	if c.Render.Lang == "" {
		c.Render.Lang = "en"
	}

	if c.Cache.Driver == "" {
		c.Cache.Driver = CacheMemory
	}
	if c.Cache.TTL == "" {
		c.Cache.TTL = DefaultCacheTTL
	}
	if c.Cache.RedisAddr == "" {
		c.Cache.RedisAddr = "localhost:6379"
	}

	if c.Telemetry.ServiceName == "" {
		c.Telemetry.ServiceName = "enhance"
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

// Validate checks the configuration for out-of-range values.
func (c *Config) Validate() error {
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return errors.New("E103").
			WithDetail("server.port must be between 0 and 65535")
	}
	if c.Render.MaxDepth < 0 {
		return errors.New("E103").
			WithDetail("render.maxDepth must not be negative")
	}
	switch c.Cache.Driver {
	case CacheNone, CacheMemory, CacheRedis:
	default:
		return errors.New("E103").
			WithDetail(`cache.driver must be "none", "memory" or "redis", got "` + c.Cache.Driver + `"`)
	}
	if _, err := time.ParseDuration(c.Cache.TTL); err != nil {
		return errors.New("E103").
			WithDetail("cache.ttl is not a duration").
			Wrap(err)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return errors.New("E103").
			WithDetail(`log.format must be "text" or "json"`)
	}
	return nil
}

// Address returns the host:port the server listens on.
func (c *Config) Address() string {
	return c.Server.Host + ":" + strconv.Itoa(c.Server.Port)
}

// CacheTTL returns the parsed cache lifetime.
func (c *Config) CacheTTL() time.Duration {
	d, err := time.ParseDuration(c.Cache.TTL)
	if err != nil {
		return 5 * time.Minute
	}
	return d
}

// ComponentsPath returns the components directory resolved against the
// project root.
func (c *Config) ComponentsPath() string {
	return c.resolve(c.Paths.Components)
}

// PagesPath returns the pages directory resolved against the project root.
func (c *Config) PagesPath() string {
	return c.resolve(c.Paths.Pages)
}

// StaticPath returns the static directory resolved against the project
// root.
func (c *Config) StaticPath() string {
	return c.resolve(c.Paths.Static)
}

func (c *Config) resolve(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(c.Dir(), path)
}

// Exists reports whether dir contains a config file.
func Exists(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, FileName))
	return err == nil
}
