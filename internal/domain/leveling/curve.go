// Package leveling maps cumulative experience points onto levels using a
// compounding per-level growth curve with a hard level ceiling.
package leveling

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-playground/validator/v10"
)

const (
	// MaxLevelCeiling bounds MaxLevel so cumulative sums stay well inside int.
	MaxLevelCeiling = 10_000

	// maxRequirement caps a single level's requirement, level 1 included;
	// beyond this the curve is flat. Keep in sync with the BaseXPPerLevel tag.
	maxRequirement = 1 << 40
)

// ErrInvalidCurve is returned by Validate when the configuration is out of range.
var ErrInvalidCurve = errors.New("invalid leveling curve")

var validate = validator.New(validator.WithRequiredStructEnabled())

// Curve is the leveling configuration. It is owned by a configuration surface
// outside the engine and is never mutated here.
type Curve struct {
	BaseXPPerLevel          int     `json:"baseXpPerLevel" mapstructure:"base_xp_per_level" validate:"gte=1,lte=1099511627776"`
	XPGrowthPercentPerLevel float64 `json:"xpGrowthPercentPerLevel" mapstructure:"xp_growth_percent_per_level" validate:"gte=0"`
	MaxLevel                int     `json:"maxLevel" mapstructure:"max_level" validate:"gte=1,lte=10000"`
}

// Progress is the result of a level lookup.
type Progress struct {
	Level                  int `json:"level"`
	XPIntoCurrentLevel     int `json:"xpIntoCurrentLevel"`
	XPRequiredForNextLevel int `json:"xpRequiredForNextLevel"` // 0 at MaxLevel
}

// IsMaxLevel reports whether the progress is in the terminal state.
func (p Progress) IsMaxLevel() bool {
	return p.XPRequiredForNextLevel == 0
}

// DefaultCurve returns the curve used when no configuration is supplied.
func DefaultCurve() Curve {
	return Curve{
		BaseXPPerLevel:          100,
		XPGrowthPercentPerLevel: 15,
		MaxLevel:                50,
	}
}

// Validate reports whether every field is in range.
func (c Curve) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidCurve, err)
	}
	return nil
}

// Normalize clamps out-of-range fields and returns the adjusted curve along
// with the JSON names of the fields that were changed.
func (c Curve) Normalize() (Curve, []string) {
	var clamped []string
	if c.BaseXPPerLevel < 1 {
		c.BaseXPPerLevel = 1
		clamped = append(clamped, "baseXpPerLevel")
	}
	if c.BaseXPPerLevel > maxRequirement {
		c.BaseXPPerLevel = maxRequirement
		clamped = append(clamped, "baseXpPerLevel")
	}
	if c.XPGrowthPercentPerLevel < 0 || math.IsNaN(c.XPGrowthPercentPerLevel) {
		c.XPGrowthPercentPerLevel = 0
		clamped = append(clamped, "xpGrowthPercentPerLevel")
	}
	if c.MaxLevel < 1 {
		c.MaxLevel = 1
		clamped = append(clamped, "maxLevel")
	}
	if c.MaxLevel > MaxLevelCeiling {
		c.MaxLevel = MaxLevelCeiling
		clamped = append(clamped, "maxLevel")
	}
	return c, clamped
}

func (c Curve) normalized() Curve {
	n, _ := c.Normalize()
	return n
}

// XPRequiredForLevel returns the experience needed to go from level n-1 to n.
// Level 0 and below require nothing.
func (c Curve) XPRequiredForLevel(n int) int {
	if n <= 0 {
		return 0
	}
	c = c.normalized()
	if n == 1 {
		return c.BaseXPPerLevel
	}
	growth := 1 + c.XPGrowthPercentPerLevel/100
	req := math.Floor(float64(c.BaseXPPerLevel) * math.Pow(growth, float64(n-1)))
	if req > maxRequirement || math.IsInf(req, 1) {
		return maxRequirement
	}
	return int(req)
}

// TotalXPForLevel returns the cumulative experience at which level n is reached.
func (c Curve) TotalXPForLevel(n int) int {
	total := 0
	for i := 1; i <= n; i++ {
		total += c.XPRequiredForLevel(i)
	}
	return total
}

// LevelFromTotalXP walks the curve from level 1 upwards and returns the
// highest level whose cumulative requirement fits in totalXP, capped at
// MaxLevel. Negative input is treated as zero.
func (c Curve) LevelFromTotalXP(totalXP int) Progress {
	c = c.normalized()
	if totalXP < 0 {
		totalXP = 0
	}

	level, spent := 0, 0
	for level < c.MaxLevel {
		next := c.XPRequiredForLevel(level + 1)
		if spent+next > totalXP {
			break
		}
		spent += next
		level++
	}

	p := Progress{Level: level, XPIntoCurrentLevel: totalXP - spent}
	if level < c.MaxLevel {
		p.XPRequiredForNextLevel = c.XPRequiredForLevel(level + 1)
	}
	return p
}
