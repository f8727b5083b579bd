package triangulate

import (
	"io"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// LocatorType selects the point location strategy of a Triangulation.
type LocatorType int

const (
	Base LocatorType = iota
	JumpAndWalk
	DelaunayHierarchy
	DelaunayTree
)

var locatorNames = map[LocatorType]string{
	Base:              "base",
	JumpAndWalk:       "jump-and-walk",
	DelaunayHierarchy: "delaunay-hierarchy",
	DelaunayTree:      "delaunay-tree",
}

func (t LocatorType) String() string {
	if name, ok := locatorNames[t]; ok {
		return name
	}
	return "unknown"
}

func (t LocatorType) MarshalText() ([]byte, error) {
	if _, ok := locatorNames[t]; !ok {
		return nil, errors.Wrapf(ErrInvalidArgument, "unknown locator type %d", int(t))
	}
	return []byte(t.String()), nil
}

func (t *LocatorType) UnmarshalText(text []byte) error {
	parsed, err := ParseLocatorType(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// ParseLocatorType is the inverse of LocatorType.String.
func ParseLocatorType(name string) (LocatorType, error) {
	for t, n := range locatorNames {
		if n == name {
			return t, nil
		}
	}
	return Base, errors.Wrapf(ErrInvalidArgument, "unknown locator %q", name)
}

// LocatorNames lists the accepted locator names in enum order.
func LocatorNames() []string {
	return []string{Base.String(), JumpAndWalk.String(), DelaunayHierarchy.String(), DelaunayTree.String()}
}

// Legalization selects how edges are legalized after a split.
type Legalization string

const (
	Recursive Legalization = "recursive"
	Iterative Legalization = "iterative"
)

type Config struct {
	Locator LocatorType `yaml:"locator"`

	// Tolerance of the orientation and in-circle predicates.
	Epsilon float64 `yaml:"epsilon"`

	// Points closer than this to a vertex are treated as that vertex, and
	// points closer than this to an edge split the edge.
	EdgeCoincidenceTolerance float64 `yaml:"edgeCoincidenceTolerance"`

	Legalization Legalization `yaml:"legalization"`

	// Seed of the random source used by the randomized marches and locators.
	Seed int64 `yaml:"seed"`

	HierarchyAlpha       int `yaml:"hierarchyAlpha"`
	HierarchyMaxLevels   int `yaml:"hierarchyMaxLevels"`
	JumpAndWalkThreshold int `yaml:"jumpAndWalkThreshold"`
}

func DefaultConfig() Config {
	return Config{
		Locator:                  DelaunayHierarchy,
		Epsilon:                  Epsilon,
		EdgeCoincidenceTolerance: 1e-6,
		Legalization:             Recursive,
		Seed:                     1,
		HierarchyAlpha:           30,
		HierarchyMaxLevels:       6,
		JumpAndWalkThreshold:     20,
	}
}

// LoadConfig reads a yaml document on top of DefaultConfig, so omitted keys
// keep their defaults.
func LoadConfig(r io.Reader) (Config, error) {
	config := DefaultConfig()
	if err := yaml.NewDecoder(r).Decode(&config); err != nil && err != io.EOF {
		return config, errors.Wrap(err, "decoding config")
	}
	return config, config.Validate()
}

func (c Config) Validate() error {
	switch {
	case c.Epsilon < 0:
		return errors.Wrapf(ErrInvalidArgument, "negative epsilon %g", c.Epsilon)
	case c.EdgeCoincidenceTolerance < 0:
		return errors.Wrapf(ErrInvalidArgument, "negative edge coincidence tolerance %g", c.EdgeCoincidenceTolerance)
	case c.Legalization != Recursive && c.Legalization != Iterative:
		return errors.Wrapf(ErrInvalidArgument, "unknown legalization %q", c.Legalization)
	case c.HierarchyAlpha < 2:
		return errors.Wrapf(ErrInvalidArgument, "hierarchy alpha %d must be at least 2", c.HierarchyAlpha)
	case c.HierarchyMaxLevels < 1:
		return errors.Wrapf(ErrInvalidArgument, "hierarchy needs at least one level, got %d", c.HierarchyMaxLevels)
	}
	return nil
}
