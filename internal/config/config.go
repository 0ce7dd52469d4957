package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config aggregates application configuration values.
type Config struct {
	HTTP     HTTPConfig     `mapstructure:"http"`
	Graph    GraphConfig    `mapstructure:"graph"`
	Layout   LayoutConfig   `mapstructure:"layout"`
	Playlist PlaylistConfig `mapstructure:"playlist"`
	Paint    PaintConfig    `mapstructure:"paint"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Tracing  TracingConfig  `mapstructure:"tracing"`
}

// HTTPConfig governs the explorer HTTP server.
type HTTPConfig struct {
	Host              string        `mapstructure:"host"`
	Port              int           `mapstructure:"port"`
	ReadTimeout       time.Duration `mapstructure:"read_timeout"`
	WriteTimeout      time.Duration `mapstructure:"write_timeout"`
	IdleTimeout       time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout"`
	AllowedOriginsCSV string        `mapstructure:"allowed_origins"`
}

// Graph backends.
const (
	BackendHTTP  = "http"
	BackendNeo4j = "neo4j"
)

// GraphConfig selects and configures the graph query backend.
type GraphConfig struct {
	Backend string `mapstructure:"backend"`
	// Context is the graph partition the explorer opens with.
	Context string `mapstructure:"context"`

	APIURL              string        `mapstructure:"api_url"`
	RequestTimeout      time.Duration `mapstructure:"request_timeout"`
	ShortestPathTimeout time.Duration `mapstructure:"shortest_path_timeout"`
	DistancesTimeout    time.Duration `mapstructure:"distances_timeout"`
	TraversalTimeout    time.Duration `mapstructure:"traversal_timeout"`

	URI            string `mapstructure:"uri"`
	Database       string `mapstructure:"database"`
	Username       string `mapstructure:"username"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
}

// LayoutConfig controls the force layout.
type LayoutConfig struct {
	Spacing       int           `mapstructure:"spacing"`
	SettleDelay   time.Duration `mapstructure:"settle_delay"`
	CooldownTicks int           `mapstructure:"cooldown_ticks"`
}

// PlaylistConfig controls playlist synthesis.
type PlaylistConfig struct {
	DefaultCount int `mapstructure:"default_count"`
	ProbeWorkers int `mapstructure:"probe_workers"`
}

// PaintConfig points at an optional TOML palette.
type PaintConfig struct {
	PaletteFile string `mapstructure:"palette_file"`
}

// LoggingConfig controls structured logging settings.
type LoggingConfig struct {
	Level         string `mapstructure:"level"`
	Format        string `mapstructure:"format"` // text|json
	IncludeCaller bool   `mapstructure:"include_caller"`
}

// TracingConfig configures OpenTelemetry export.
type TracingConfig struct {
	Endpoint    string  `mapstructure:"endpoint"`
	ServiceName string  `mapstructure:"service_name"`
	Environment string  `mapstructure:"environment"`
	SampleRate  float64 `mapstructure:"sample_rate"`
}

const (
	envPrefix = "PATHLIGHT"

	defaultHost            = "0.0.0.0"
	defaultPort            = 8080
	defaultReadTimeout     = 10 * time.Second
	defaultWriteTimeout    = 0 // the event stream is long lived
	defaultIdleTimeout     = 60 * time.Second
	defaultShutdownTimeout = 10 * time.Second
	defaultLoggingLevel    = "info"
	defaultLoggingFormat   = "text"
	defaultAPIURL          = "http://localhost:8000"
	defaultGraphMaxConns   = 10
)

// ErrUnknownBackend is returned for a graph backend other than http or neo4j.
var ErrUnknownBackend = errors.New("unknown graph backend")

func setDefaults(v *viper.Viper) {
	v.SetDefault("http.host", defaultHost)
	v.SetDefault("http.port", defaultPort)
	v.SetDefault("http.read_timeout", defaultReadTimeout)
	v.SetDefault("http.write_timeout", time.Duration(defaultWriteTimeout))
	v.SetDefault("http.idle_timeout", defaultIdleTimeout)
	v.SetDefault("http.shutdown_timeout", defaultShutdownTimeout)
	v.SetDefault("http.allowed_origins", "")

	v.SetDefault("graph.backend", BackendHTTP)
	v.SetDefault("graph.context", "neighborhoods")
	v.SetDefault("graph.api_url", defaultAPIURL)
	v.SetDefault("graph.request_timeout", 60*time.Second)
	v.SetDefault("graph.shortest_path_timeout", 20*time.Second)
	v.SetDefault("graph.distances_timeout", 120*time.Second)
	v.SetDefault("graph.traversal_timeout", 60*time.Second)
	v.SetDefault("graph.uri", "")
	v.SetDefault("graph.database", "")
	v.SetDefault("graph.username", "")
	v.SetDefault("graph.password", "")
	v.SetDefault("graph.max_connections", defaultGraphMaxConns)

	v.SetDefault("layout.spacing", 140)
	v.SetDefault("layout.settle_delay", 500*time.Millisecond)
	v.SetDefault("layout.cooldown_ticks", 40)

	v.SetDefault("playlist.default_count", 10)
	v.SetDefault("playlist.probe_workers", 1)

	v.SetDefault("paint.palette_file", "")

	v.SetDefault("logging.level", defaultLoggingLevel)
	v.SetDefault("logging.format", defaultLoggingFormat)
	v.SetDefault("logging.include_caller", false)

	v.SetDefault("tracing.endpoint", "")
	v.SetDefault("tracing.service_name", "pathlight")
	v.SetDefault("tracing.environment", "development")
	v.SetDefault("tracing.sample_rate", 1.0)
}

// Load reads configuration from defaults, the optional file at path and
// PATHLIGHT_ prefixed environment variables, in increasing precedence.
func Load(path string) (Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects values the application cannot run with.
func (c Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("port %d is out of range", c.HTTP.Port)
	}
	switch strings.ToLower(c.Graph.Backend) {
	case BackendHTTP:
		if strings.TrimSpace(c.Graph.APIURL) == "" {
			return errors.New("graph.api_url is required for the http backend")
		}
	case BackendNeo4j:
		if strings.TrimSpace(c.Graph.URI) == "" {
			return errors.New("graph.uri is required for the neo4j backend")
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownBackend, c.Graph.Backend)
	}
	if c.Playlist.ProbeWorkers < 0 {
		return fmt.Errorf("playlist.probe_workers %d is negative", c.Playlist.ProbeWorkers)
	}
	if c.Tracing.SampleRate < 0 || c.Tracing.SampleRate > 1 {
		return fmt.Errorf("tracing.sample_rate %.2f is outside [0, 1]", c.Tracing.SampleRate)
	}
	return nil
}

// AllowedOrigins splits the comma separated CORS origin list.
func (c HTTPConfig) AllowedOrigins() []string {
	if c.AllowedOriginsCSV == "" {
		return nil
	}
	var origins []string
	for _, part := range strings.Split(c.AllowedOriginsCSV, ",") {
		origin := strings.TrimSpace(part)
		if origin == "" {
			continue
		}
		origins = append(origins, origin)
	}
	return origins
}
