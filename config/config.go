package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Config is the service configuration, read from YAML and overridable through GMR_* environment variables
type Config struct {
	Server         ServerConfig   `mapstructure:"server"`
	Log            LogConfig      `mapstructure:"log"`
	LevelDB        LevelDBConfig  `mapstructure:"leveldb"`
	Journal        JournalConfig  `mapstructure:"journal"`
	Admin          AdminConfig    `mapstructure:"admin"`
	VoteRegistrars []string       `mapstructure:"vote_registrars"`
	Leveling       LevelingConfig `mapstructure:"leveling"`
	Rewards        RewardsConfig  `mapstructure:"rewards"`
}

type ServerConfig struct {
	Port int `mapstructure:"port"`
}

type LogConfig struct {
	AppLogFile string `mapstructure:"app_log_file"`
	Level      string `mapstructure:"level"`
}

type LevelDBConfig struct {
	Path string `mapstructure:"path"`
}

type JournalConfig struct {
	// Path of the sqlite file; empty keeps the journal in memory
	Path string `mapstructure:"path"`
}

type AdminConfig struct {
	Address string `mapstructure:"address"`
}

type LevelingConfig struct {
	Collector            string         `mapstructure:"collector_address"`
	RequireParticipation bool           `mapstructure:"require_participation"`
	MaxLevel             int            `mapstructure:"max_level"`
	Thresholds           []string       `mapstructure:"thresholds"`
	NodeBonus            map[string]int `mapstructure:"node_bonus"`
	MintPaused           bool           `mapstructure:"mint_paused"`
}

type RewardsConfig struct {
	Vault             string            `mapstructure:"vault_address"`
	QuadraticDisabled bool              `mapstructure:"quadratic_disabled"`
	Multipliers       map[string]string `mapstructure:"multipliers"`
}

// SetDefaults registers the fallback values used when the config file omits a key
func SetDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("log.level", "info")
	v.SetDefault("leveldb.path", "data/leveldb")
	v.SetDefault("journal.path", "data/journal.sqlite")
	v.SetDefault("leveling.require_participation", true)
	v.SetDefault("leveling.max_level", 1)
}

// Load reads the config file at path
func Load(path string) (*Config, error) {
	v := viper.New()
	SetDefaults(v)
	v.SetConfigFile(path)
	v.SetEnvPrefix("GMR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return &cfg, nil
}

// ThresholdAmounts parses the configured donation thresholds
func (c LevelingConfig) ThresholdAmounts() ([]decimal.Decimal, error) {
	out := make([]decimal.Decimal, 0, len(c.Thresholds))
	for _, s := range c.Thresholds {
		d, err := decimal.NewFromString(s)
		if err != nil {
			return nil, fmt.Errorf("threshold %q: %w", s, err)
		}
		out = append(out, d)
	}
	return out, nil
}

// NodeBonusLevels parses the configured tier -> bonus level table
func (c LevelingConfig) NodeBonusLevels() (map[uint8]int, error) {
	out := make(map[uint8]int, len(c.NodeBonus))
	for k, level := range c.NodeBonus {
		tier, err := strconv.ParseUint(k, 10, 8)
		if err != nil {
			return nil, fmt.Errorf("node bonus tier %q: %w", k, err)
		}
		out[uint8(tier)] = level
	}
	return out, nil
}

// MultiplierFactors parses the configured level -> GM factor table
func (c RewardsConfig) MultiplierFactors() (map[int]decimal.Decimal, error) {
	out := make(map[int]decimal.Decimal, len(c.Multipliers))
	for k, s := range c.Multipliers {
		level, err := strconv.Atoi(k)
		if err != nil {
			return nil, fmt.Errorf("multiplier level %q: %w", k, err)
		}
		d, err := decimal.NewFromString(s)
		if err != nil {
			return nil, fmt.Errorf("multiplier %q: %w", s, err)
		}
		out[level] = d
	}
	return out, nil
}
