package kinetic

import (
	"fmt"
	"os"

	"github.com/akmonengine/kinetic/collision"
	"github.com/akmonengine/kinetic/solver"
	"github.com/go-gl/mathgl/mgl64"
	"gopkg.in/yaml.v3"
)

// Config gathers the world tuning knobs. Zero values are not meaningful;
// start from DefaultConfig or LoadConfig.
type Config struct {
	// Gravity is the constant acceleration applied to dynamic bodies,
	// in m/s².
	Gravity mgl64.Vec3 `yaml:"gravity"`

	// ContactDistance is the separation threshold for creating and keeping
	// contact points.
	ContactDistance float64 `yaml:"contact_distance"`

	Solver solver.Config `yaml:"solver"`
}

// DefaultConfig returns the stock tuning: no gravity, default contact
// threshold, default solver iterations.
func DefaultConfig() Config {
	return Config{
		ContactDistance: collision.DefaultContactDistance,
		Solver:          solver.DefaultConfig(),
	}
}

// LoadConfig reads a YAML tuning file over the defaults, so files only need
// to name the knobs they change.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}

	return cfg, nil
}
