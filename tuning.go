package drape

import (
	"os"

	"gopkg.in/yaml.v3"
)

// Solver defaults. Scene-level defaults live in DefaultTuning.
const (
	DefaultSubsteps           = 10
	DefaultPositionIterations = 8
	DefaultVelocityIterations = 1
	DefaultCollisionMargin    = 0.05
	DefaultDamping            = 0.15
	DefaultGravity            = 9.8
)

// Tuning collects every simulation constant worth adjusting without a
// rebuild. Scene constructors read it at setup; it is not consulted again
// after that, so runtime edits to a loaded Tuning have no effect.
type Tuning struct {
	// Solver.
	Substeps           int     `yaml:"substeps"`
	PositionIterations int     `yaml:"position_iterations"`
	VelocityIterations int     `yaml:"velocity_iterations"`
	CollisionMargin    float64 `yaml:"collision_margin"`
	Damping            float64 `yaml:"damping"`
	Gravity            float64 `yaml:"gravity"`
	GroundY            float64 `yaml:"ground_y"`
	GroundEnabled      bool    `yaml:"ground_enabled"`

	// Patch resolution and weight, shared by both scenes.
	SegX      int     `yaml:"seg_x"`
	SegY      int     `yaml:"seg_y"`
	PatchMass float64 `yaml:"patch_mass"`

	// Curtain scene.
	SlideFraction   float64 `yaml:"slide_fraction"`
	AnchorInfluence float64 `yaml:"anchor_influence"`
	SeamForce       float64 `yaml:"seam_force"`
	SeamColumns     int     `yaml:"seam_columns"`

	// Cloth-rig scene.
	MotorSpeed         float64 `yaml:"motor_speed"`
	MotorTorque        float64 `yaml:"motor_torque"`
	ArmMass            float64 `yaml:"arm_mass"`
	MidAnchorInfluence float64 `yaml:"mid_anchor_influence"`
}

// DefaultTuning returns the values both demo scenes ship with.
func DefaultTuning() *Tuning {
	return &Tuning{
		Substeps:           DefaultSubsteps,
		PositionIterations: DefaultPositionIterations,
		VelocityIterations: DefaultVelocityIterations,
		CollisionMargin:    DefaultCollisionMargin,
		Damping:            DefaultDamping,
		Gravity:            DefaultGravity,

		SegX:      16,
		SegY:      12,
		PatchMass: 2,

		SlideFraction:   1,
		AnchorInfluence: 1,
		SeamForce:       6,
		SeamColumns:     2,

		MotorSpeed:         3,
		MotorTorque:        40,
		ArmMass:            1,
		MidAnchorInfluence: 0.5,
	}
}

// LoadTuning reads a yaml tuning file. Missing keys keep their defaults, so
// a file holding only the values under study is enough.
func LoadTuning(path string) (*Tuning, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	t := DefaultTuning()
	if err := yaml.Unmarshal(data, t); err != nil {
		return nil, err
	}
	return t, nil
}

// SaveTuning writes t as yaml, one key per value in declaration order.
func SaveTuning(path string, t *Tuning) error {
	data, err := yaml.Marshal(t)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
