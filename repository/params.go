package repository

import (
	"strconv"

	"gm-rewards/models"

	"github.com/shopspring/decimal"
)

// SchemaVersion returns the last applied migration version
func (t *Tx) SchemaVersion() (int, error) {
	var v int
	_, err := t.getJSON(keySchema, &v)
	return v, err
}

// SetSchemaVersion records the last applied migration version
func (t *Tx) SetSchemaVersion(v int) error {
	return t.putJSON(keySchema, v)
}

// GetLevelParams loads the leveling configuration. The zero value has a ceiling of 1.
func (t *Tx) GetLevelParams() (*models.LevelParams, error) {
	p := models.LevelParams{MaxLevel: 1, NodeBonus: map[models.Tier]int{}}
	if _, err := t.getJSON(keyLevelParams, &p); err != nil {
		return nil, err
	}
	if p.NodeBonus == nil {
		p.NodeBonus = map[models.Tier]int{}
	}
	return &p, nil
}

// PutLevelParams stores the leveling configuration
func (t *Tx) PutLevelParams(p *models.LevelParams) error {
	return t.putJSON(keyLevelParams, p)
}

// GetMultipliers loads the level -> GM weight factor table
func (t *Tx) GetMultipliers() (map[int]decimal.Decimal, error) {
	raw := map[string]decimal.Decimal{}
	if _, err := t.getJSON(keyMultipliers, &raw); err != nil {
		return nil, err
	}
	out := make(map[int]decimal.Decimal, len(raw))
	for k, v := range raw {
		level, err := strconv.Atoi(k)
		if err != nil {
			return nil, err
		}
		out[level] = v
	}
	return out, nil
}

// PutMultipliers stores the level -> GM weight factor table
func (t *Tx) PutMultipliers(m map[int]decimal.Decimal) error {
	raw := make(map[string]decimal.Decimal, len(m))
	for k, v := range m {
		raw[strconv.Itoa(k)] = v
	}
	return t.putJSON(keyMultipliers, raw)
}
