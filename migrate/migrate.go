package migrate

import (
	"fmt"

	"gm-rewards/access"
	"gm-rewards/config"
	"gm-rewards/leveling"
	"gm-rewards/logger"
	"gm-rewards/models"
	"gm-rewards/repository"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Migration brings the stored state from version-1 to version
type Migration struct {
	Version int
	Name    string
	Apply   func(tx *repository.Tx, cfg *config.Config) error
}

// Migrations lists every schema version in order
var Migrations = []Migration{
	{Version: 1, Name: "bootstrap admin and level table", Apply: bootstrapLeveling},
	{Version: 2, Name: "seed quadratic switch and multipliers", Apply: seedRewards},
	{Version: 3, Name: "grant vote registrars", Apply: grantRegistrars},
}

// Latest is the schema version a fully migrated store is at
func Latest() int {
	return Migrations[len(Migrations)-1].Version
}

// Run applies every migration newer than the stored schema version, each in its own block
func Run(store *repository.Store, cfg *config.Config) (int, error) {
	var current int
	if err := store.View(func(tx *repository.Tx) error {
		var err error
		current, err = tx.SchemaVersion()
		return err
	}); err != nil {
		return 0, err
	}

	for _, m := range Migrations {
		if m.Version <= current {
			continue
		}
		err := store.Update(func(tx *repository.Tx) error {
			if err := m.Apply(tx, cfg); err != nil {
				return err
			}
			return tx.SetSchemaVersion(m.Version)
		})
		if err != nil {
			return current, fmt.Errorf("migration %d (%s): %w", m.Version, m.Name, err)
		}
		logger.Logger.Info("Applied migration", zap.Int("version", m.Version), zap.String("name", m.Name))
		current = m.Version
	}
	return current, nil
}

func bootstrapLeveling(tx *repository.Tx, cfg *config.Config) error {
	if err := access.Bootstrap(tx, access.RoleAdmin, cfg.Admin.Address); err != nil {
		return fmt.Errorf("admin: %w", err)
	}

	thresholds, err := cfg.Leveling.ThresholdAmounts()
	if err != nil {
		return err
	}
	maxLevel := cfg.Leveling.MaxLevel
	if maxLevel < 1 {
		maxLevel = 1
	}
	if err := leveling.ValidateThresholds(thresholds, maxLevel); err != nil {
		return err
	}
	bonus, err := cfg.Leveling.NodeBonusLevels()
	if err != nil {
		return err
	}

	params := &models.LevelParams{
		Thresholds: thresholds,
		MaxLevel:   maxLevel,
		NodeBonus:  make(map[models.Tier]int, len(bonus)),
		MintPaused: cfg.Leveling.MintPaused,
	}
	for tier, level := range bonus {
		params.NodeBonus[models.Tier(tier)] = level
	}
	return tx.PutLevelParams(params)
}

func seedRewards(tx *repository.Tx, cfg *config.Config) error {
	v := uint64(0)
	if cfg.Rewards.QuadraticDisabled {
		v = 1
	}
	if err := tx.AppendCheckpoint(repository.QuadraticLog, v); err != nil {
		return err
	}

	factors, err := cfg.Rewards.MultiplierFactors()
	if err != nil {
		return err
	}
	m := make(map[int]decimal.Decimal, len(factors))
	for level, f := range factors {
		if f.IsPositive() {
			m[level] = f
		}
	}
	return tx.PutMultipliers(m)
}

func grantRegistrars(tx *repository.Tx, cfg *config.Config) error {
	for _, addr := range cfg.VoteRegistrars {
		if err := access.Bootstrap(tx, access.RoleVoteRegistrar, addr); err != nil {
			return fmt.Errorf("vote registrar %q: %w", addr, err)
		}
	}
	return nil
}
