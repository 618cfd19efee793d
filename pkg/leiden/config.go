package leiden

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

// Variant selects between the Leiden loop and the plain Louvain loop.
type Variant int

const (
	// VariantLeiden refines communities before aggregating them.
	VariantLeiden Variant = iota
	// VariantLouvain aggregates the local-moving partition directly.
	VariantLouvain
)

func (v Variant) String() string {
	if v == VariantLouvain {
		return "louvain"
	}
	return "leiden"
}

// InitialPartition selects the partition the driver starts from.
type InitialPartition int

const (
	// InitialSingleton puts every node in its own community.
	InitialSingleton InitialPartition = iota
	// InitialDegree groups nodes of equal degree.
	InitialDegree
)

// Config manages algorithm configuration using Viper. Each Config owns its
// own viper instance.
type Config struct {
	v *viper.Viper
}

// NewConfig creates a new configuration with defaults
func NewConfig() *Config {
	v := viper.New()

	// Algorithm parameters
	v.SetDefault("algorithm.quality", "cpm")
	v.SetDefault("algorithm.resolution", 0.5)
	v.SetDefault("algorithm.theta", 0.01)
	v.SetDefault("algorithm.random_seed", time.Now().UnixNano())
	v.SetDefault("algorithm.max_levels", 100)
	v.SetDefault("algorithm.max_moves", 0)
	v.SetDefault("algorithm.variant", "leiden")
	v.SetDefault("algorithm.aggregate_edges", "weighted")
	v.SetDefault("algorithm.initial_partition", "singleton")

	// Logging parameters
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.enable_progress", true)

	v.SetDefault("analysis.track_moves", false)
	v.SetDefault("analysis.output_file", "moves.jsonl")

	return &Config{v: v}
}

// LoadFromFile loads configuration from file
func (c *Config) LoadFromFile(path string) error {
	c.v.SetConfigFile(path)
	return c.v.ReadInConfig()
}

// Set allows dynamic configuration changes
func (c *Config) Set(key string, value interface{}) {
	c.v.Set(key, value)
}

// Getters for algorithm parameters
func (c *Config) QualityName() string      { return c.v.GetString("algorithm.quality") }
func (c *Config) Resolution() float64      { return c.v.GetFloat64("algorithm.resolution") }
func (c *Config) Theta() float64           { return c.v.GetFloat64("algorithm.theta") }
func (c *Config) RandomSeed() int64        { return c.v.GetInt64("algorithm.random_seed") }
func (c *Config) MaxLevels() int           { return c.v.GetInt("algorithm.max_levels") }
func (c *Config) MaxMoves() int            { return c.v.GetInt("algorithm.max_moves") }
func (c *Config) VariantName() string      { return c.v.GetString("algorithm.variant") }
func (c *Config) AggregateEdges() string   { return c.v.GetString("algorithm.aggregate_edges") }
func (c *Config) InitialPartition() string { return c.v.GetString("algorithm.initial_partition") }

func (c *Config) LogLevel() string     { return c.v.GetString("logging.level") }
func (c *Config) EnableProgress() bool { return c.v.GetBool("logging.enable_progress") }

func (c *Config) EnableMoveTracking() bool   { return c.v.GetBool("analysis.track_moves") }
func (c *Config) TrackingOutputFile() string { return c.v.GetString("analysis.output_file") }

// Quality returns the configured quality function.
func (c *Config) Quality() (Quality, error) {
	kind, err := ParseQualityKind(c.QualityName())
	if err != nil {
		return Quality{}, err
	}
	return Quality{Kind: kind, Resolution: c.Resolution()}, nil
}

// Variant returns the configured driver variant.
func (c *Config) Variant() (Variant, error) {
	switch strings.ToLower(c.VariantName()) {
	case "leiden":
		return VariantLeiden, nil
	case "louvain":
		return VariantLouvain, nil
	default:
		return 0, fmt.Errorf("%w: unknown variant %q", ErrInvalidConfig, c.VariantName())
	}
}

// EdgeMode returns the configured aggregation edge mode.
func (c *Config) EdgeMode() (EdgeMode, error) {
	return ParseEdgeMode(c.AggregateEdges())
}

// Initial returns the configured starting partition.
func (c *Config) Initial() (InitialPartition, error) {
	switch strings.ToLower(c.InitialPartition()) {
	case "singleton":
		return InitialSingleton, nil
	case "degree":
		return InitialDegree, nil
	default:
		return 0, fmt.Errorf("%w: unknown initial partition %q", ErrInvalidConfig, c.InitialPartition())
	}
}

// Validate checks every value the driver reads.
func (c *Config) Validate() error {
	if _, err := c.Quality(); err != nil {
		return err
	}
	if _, err := c.Variant(); err != nil {
		return err
	}
	if _, err := c.EdgeMode(); err != nil {
		return err
	}
	if _, err := c.Initial(); err != nil {
		return err
	}
	if c.Resolution() < 0 {
		return fmt.Errorf("%w: resolution must be non-negative, got %f", ErrInvalidConfig, c.Resolution())
	}
	if c.Theta() <= 0 {
		return fmt.Errorf("%w: theta must be positive, got %f", ErrInvalidConfig, c.Theta())
	}
	if c.MaxLevels() <= 0 {
		return fmt.Errorf("%w: max_levels must be positive, got %d", ErrInvalidConfig, c.MaxLevels())
	}
	return nil
}

// CreateLogger creates a zerolog logger based on config
func (c *Config) CreateLogger() zerolog.Logger {
	return c.createLogger(os.Stdout)
}

func (c *Config) createLogger(out io.Writer) zerolog.Logger {
	level, err := zerolog.ParseLevel(c.LogLevel())
	if err != nil {
		level = zerolog.InfoLevel
	}

	return zerolog.New(zerolog.ConsoleWriter{
		Out:        out,
		TimeFormat: "15:04:05",
	}).Level(level).With().Timestamp().Str("service", "leiden").Logger()
}
