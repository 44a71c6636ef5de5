package dupdir

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-ini/ini"
)

const defaultHashBuffer = 64 * 1024

// Config represents the dupdir configuration
type Config struct {
	configPath string
	ini        *ini.File
}

// HashConfig represents hash algorithm configuration
type HashConfig struct {
	Default string // Hash algorithm for file and directory digests
}

// OutputConfig represents output format configuration
type OutputConfig struct {
	Format string // Report format: lines, human, json, yaml
}

// VerboseConfig represents verbosity configuration
type VerboseConfig struct {
	Level int    // Default verbose level (0=quiet, 1=stages, 2=per-file, 3=trace)
	Debug string // Default debug flags (comma-separated)
}

// PerformanceConfig represents performance-related configuration
type PerformanceConfig struct {
	HashWorkers int    // Number of concurrent hash workers (default: 4)
	HashBuffer  string // Read chunk size while hashing (default: "64K")
}

// DirHashConfig selects how directory digests are computed
type DirHashConfig struct {
	Strategy string // batch or streaming
}

// ReduceConfig controls the duplicate reducer
type ReduceConfig struct {
	Order string // length or depth
}

// AllConfig represents all configuration options
type AllConfig struct {
	Hash        *HashConfig
	Output      *OutputConfig
	Verbose     *VerboseConfig
	Performance *PerformanceConfig
	DirHash     *DirHashConfig
	Reduce      *ReduceConfig
}

// configDefaults lists every section and key written to a fresh config file
var configDefaults = []struct {
	section string
	key     string
	value   string
}{
	{"filehash", "default", "sha256"},
	{"output", "format", FormatLines},
	{"verbose", "level", "0"},
	{"verbose", "debug", ""},
	{"performance", "hash_workers", "4"},
	{"performance", "hash_buffer", "64K"},
	{"dirhash", "strategy", StrategyBatch},
	{"reduce", "order", OrderLength},
}

// overrideKeys maps a command-line override key to its section
var overrideKeys = map[string]string{
	"default":      "filehash",
	"format":       "output",
	"level":        "verbose",
	"debug":        "verbose",
	"hash_workers": "performance",
	"hash_buffer":  "performance",
	"strategy":     "dirhash",
	"order":        "reduce",
}

// LoadConfig loads configuration from <stateDir>/config, creating it with
// defaults when missing
func LoadConfig(stateDir string) (*Config, error) {
	configPath := filepath.Join(stateDir, ConfigFile)

	cfg := &Config{
		configPath: configPath,
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		cfg.ini = ini.Empty()
		if err := cfg.setDefaults(); err != nil {
			return nil, fmt.Errorf("failed to set default config: %w", err)
		}
		if err := os.MkdirAll(stateDir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create state directory: %w", err)
		}
		if err := cfg.Save(); err != nil {
			return nil, fmt.Errorf("failed to save default config: %w", err)
		}
	} else {
		iniFile, err := ini.Load(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
		cfg.ini = iniFile
	}

	return cfg, nil
}

// NewDefaultConfig returns an in-memory configuration holding the defaults.
// Save is a no-op on it.
func NewDefaultConfig() *Config {
	cfg := &Config{ini: ini.Empty()}
	// NewSection only fails on an empty name
	_ = cfg.setDefaults()
	return cfg
}

// setDefaults sets default configuration values
func (c *Config) setDefaults() error {
	for _, d := range configDefaults {
		section, err := c.ini.NewSection(d.section)
		if err != nil {
			return fmt.Errorf("failed to create %s section: %w", d.section, err)
		}
		if _, err := section.NewKey(d.key, d.value); err != nil {
			return fmt.Errorf("failed to set default %s.%s: %w", d.section, d.key, err)
		}
	}
	return nil
}

func (c *Config) value(section, key, fallback string) string {
	if c.ini.HasSection(section) {
		s := c.ini.Section(section)
		if s.HasKey(key) {
			return s.Key(key).String()
		}
	}
	return fallback
}

// GetHashConfig returns the hash configuration
func (c *Config) GetHashConfig() *HashConfig {
	return &HashConfig{
		Default: c.value("filehash", "default", "sha256"),
	}
}

// GetOutputConfig returns the output configuration
func (c *Config) GetOutputConfig() *OutputConfig {
	return &OutputConfig{
		Format: c.value("output", "format", FormatLines),
	}
}

// GetVerboseConfig returns the verbose configuration
func (c *Config) GetVerboseConfig() *VerboseConfig {
	verboseConfig := &VerboseConfig{
		Level: 0,
		Debug: c.value("verbose", "debug", ""),
	}

	if c.ini.HasSection("verbose") {
		section := c.ini.Section("verbose")
		if section.HasKey("level") {
			if level, err := section.Key("level").Int(); err == nil {
				verboseConfig.Level = level
			}
		}
	}

	return verboseConfig
}

// GetPerformanceConfig returns the performance configuration
func (c *Config) GetPerformanceConfig() *PerformanceConfig {
	performanceConfig := &PerformanceConfig{
		HashWorkers: 4,
		HashBuffer:  "64K",
	}

	if c.ini.HasSection("performance") {
		section := c.ini.Section("performance")
		if section.HasKey("hash_workers") {
			if workers, err := section.Key("hash_workers").Int(); err == nil {
				performanceConfig.HashWorkers = workers
			}
		}
		if section.HasKey("hash_buffer") {
			if bufferSize := section.Key("hash_buffer").String(); bufferSize != "" {
				performanceConfig.HashBuffer = bufferSize
			}
		}
	}

	return performanceConfig
}

// GetDirHashConfig returns the directory hashing configuration
func (c *Config) GetDirHashConfig() *DirHashConfig {
	return &DirHashConfig{
		Strategy: c.value("dirhash", "strategy", StrategyBatch),
	}
}

// GetReduceConfig returns the reducer configuration
func (c *Config) GetReduceConfig() *ReduceConfig {
	return &ReduceConfig{
		Order: c.value("reduce", "order", OrderLength),
	}
}

// GetAllConfig returns all configuration options
func (c *Config) GetAllConfig() *AllConfig {
	return &AllConfig{
		Hash:        c.GetHashConfig(),
		Output:      c.GetOutputConfig(),
		Verbose:     c.GetVerboseConfig(),
		Performance: c.GetPerformanceConfig(),
		DirHash:     c.GetDirHashConfig(),
		Reduce:      c.GetReduceConfig(),
	}
}

// HashBufferSize returns the parsed hash_buffer value
func (c *Config) HashBufferSize() (int, error) {
	return ParseHumanSize(c.GetPerformanceConfig().HashBuffer)
}

// Save saves the configuration to disk
func (c *Config) Save() error {
	if c.configPath == "" {
		return nil
	}
	return c.ini.SaveTo(c.configPath)
}

// WriteTo writes the effective configuration in INI form
func (c *Config) WriteTo(w io.Writer) (int64, error) {
	return c.ini.WriteTo(w)
}

// ApplyOverrides applies command-line overrides to the configuration
// Accepts strings like "default:sha256", "format:json", "strategy:streaming"
func (c *Config) ApplyOverrides(overrides []string) error {
	for _, override := range overrides {
		parts := strings.SplitN(override, ":", 2)
		if len(parts) != 2 {
			return fmt.Errorf("invalid override format '%s', expected 'key:value'", override)
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		section, ok := overrideKeys[key]
		if !ok {
			return fmt.Errorf("unsupported override key '%s' (supported: %s)", key, strings.Join(supportedOverrideKeys(), ", "))
		}
		c.ini.Section(section).Key(key).SetValue(value)
	}

	return nil
}

func supportedOverrideKeys() []string {
	keys := make([]string, 0, len(configDefaults))
	for _, d := range configDefaults {
		keys = append(keys, d.key)
	}
	return keys
}

// Validate checks every configured value
func (c *Config) Validate() error {
	all := c.GetAllConfig()

	if err := ValidateHashAlgorithm(all.Hash.Default); err != nil {
		return err
	}
	if err := ValidateOutputFormat(all.Output.Format); err != nil {
		return err
	}
	if err := ValidateVerboseLevel(all.Verbose.Level); err != nil {
		return err
	}
	if err := ValidateHashWorkers(all.Performance.HashWorkers); err != nil {
		return err
	}
	if _, err := ParseHumanSize(all.Performance.HashBuffer); err != nil {
		return fmt.Errorf("invalid hash_buffer: %w", err)
	}
	if err := ValidateStrategy(all.DirHash.Strategy); err != nil {
		return err
	}
	return ValidateOrder(all.Reduce.Order)
}

// ValidateHashAlgorithm validates that a hash algorithm is supported
func ValidateHashAlgorithm(algorithm string) error {
	_, err := GetHashAlgorithm(algorithm)
	return err
}

// ValidateOutputFormat validates that an output format is supported
func ValidateOutputFormat(format string) error {
	switch strings.ToLower(format) {
	case FormatLines, FormatHuman, FormatJSON, FormatYAML:
		return nil
	default:
		return fmt.Errorf("unsupported output format: %s (supported: lines, human, json, yaml)", format)
	}
}

// ValidateVerboseLevel validates that a verbose level is valid
func ValidateVerboseLevel(level int) error {
	if level < 0 || level > 3 {
		return fmt.Errorf("invalid verbose level: %d (supported: 0-3)", level)
	}
	return nil
}

// ValidateHashWorkers validates that the hash worker count is reasonable
func ValidateHashWorkers(workers int) error {
	if workers < 1 {
		return fmt.Errorf("hash workers must be at least 1, got: %d", workers)
	}
	if workers > 64 {
		return fmt.Errorf("hash workers should not exceed 64, got: %d", workers)
	}
	return nil
}

// ValidateStrategy validates a directory hashing strategy
func ValidateStrategy(strategy string) error {
	switch strategy {
	case StrategyBatch, StrategyStreaming:
		return nil
	default:
		return fmt.Errorf("unsupported dirhash strategy: %s (supported: batch, streaming)", strategy)
	}
}

// ValidateOrder validates a reducer member ordering
func ValidateOrder(order string) error {
	switch order {
	case OrderLength, OrderDepth:
		return nil
	default:
		return fmt.Errorf("unsupported reduce order: %s (supported: length, depth)", order)
	}
}
