// Package solver resolves contact constraints on one island at a time with
// sequential impulses: a projected Gauss-Seidel sweep over the contacts,
// with deep penetrations corrected by a separate split-impulse pass so
// position fixes never inject kinetic energy.
package solver

// Config holds the solver tuning knobs.
type Config struct {
	// Iterations is the number of velocity-constraint passes.
	Iterations int `yaml:"iterations"`

	// PenetrationIterations is the number of split-impulse passes.
	PenetrationIterations int `yaml:"penetration_iterations"`

	// ResidualThreshold terminates iteration early once a pass's residual
	// is at or below it.
	ResidualThreshold float64 `yaml:"residual_threshold"`

	// ERP is the fraction of positional error resolved per step.
	ERP float64 `yaml:"erp"`

	// CFM softens constraints; zero keeps them hard.
	CFM float64 `yaml:"cfm"`

	// SplitImpulsePenetrationThreshold is the (negative) separation beyond
	// which positional correction moves to the split-impulse pass instead
	// of the velocity impulse.
	SplitImpulsePenetrationThreshold float64 `yaml:"split_impulse_penetration_threshold"`

	// SplitImpulseTurnERP scales the angular part of the split-impulse
	// positional correction.
	SplitImpulseTurnERP float64 `yaml:"split_impulse_turn_erp"`
}

// DefaultConfig returns the tuning a stack of boxes settles with.
func DefaultConfig() Config {
	return Config{
		Iterations:                       10,
		PenetrationIterations:            10,
		ResidualThreshold:                0,
		ERP:                              0.2,
		CFM:                              0,
		SplitImpulsePenetrationThreshold: -0.04,
		SplitImpulseTurnERP:              0.1,
	}
}
