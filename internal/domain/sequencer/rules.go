package sequencer

import (
	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Rules defines the curriculum size and the fixed rewards of one advance.
type Rules struct {
	// Curriculum
	TotalLessons int `json:"totalLessons" mapstructure:"total_lessons" validate:"gte=1"`

	// Awarded on every completed exercise
	XPPerExercise    int `json:"xpPerExercise"    mapstructure:"xp_per_exercise"    validate:"gte=0"`
	CoinsPerExercise int `json:"coinsPerExercise" mapstructure:"coins_per_exercise" validate:"gte=0"`

	// Milestone cycle
	StagesPerMilestone int `json:"stagesPerMilestone" mapstructure:"stages_per_milestone" validate:"gte=1"`
	GemsPerMilestone   int `json:"gemsPerMilestone"   mapstructure:"gems_per_milestone"   validate:"gte=0"`
}

// NewDefaultRules returns the rules used when nothing is configured.
func NewDefaultRules() Rules {
	return Rules{
		TotalLessons:       10,
		XPPerExercise:      20,
		CoinsPerExercise:   10,
		StagesPerMilestone: 6,
		GemsPerMilestone:   5,
	}
}

// Validate checks the rules against their struct tags.
func (r Rules) Validate() error {
	return validate.Struct(r)
}
