package levels

import (
	"embed"
	"errors"
	"fmt"
	"os"

	"github.com/milk9111/hopper/common"
	"gopkg.in/yaml.v3"
)

//go:embed *.yaml
var LevelsFS embed.FS

// DefaultFile is the catalog file name, both embedded and on disk.
const DefaultFile = "levels.yaml"

var ErrInvalidLevelIndex = errors.New("levels: invalid level index")

// DefaultSpawn is used when a level omits its spawn point.
var DefaultSpawn = Point{X: 80, Y: 500}

// Rect is an authored platform. X is the left edge, Y the vertical centre
// line of the platform.
type Rect struct {
	X      float64 `yaml:"x"`
	Y      float64 `yaml:"y"`
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

// Bounds returns the platform's top-left corner and size.
func (r Rect) Bounds() (x, y, w, h float64) {
	return r.X, r.Y - r.Height/2, r.Width, r.Height
}

type Point struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

// Definition is one authored level.
type Definition struct {
	Name      string  `yaml:"name"`
	Platforms []Rect  `yaml:"platforms"`
	Coins     []Point `yaml:"coins"`
	Goal      Point   `yaml:"goal"`
	Spawn     *Point  `yaml:"spawn,omitempty"`
}

// SpawnPoint returns the authored spawn or DefaultSpawn.
func (d Definition) SpawnPoint() Point {
	if d.Spawn == nil {
		return DefaultSpawn
	}
	return *d.Spawn
}

type catalogFile struct {
	Levels []Definition `yaml:"levels"`
}

// Catalog is the ordered, read-only list of levels.
type Catalog struct {
	defs []Definition
}

// NewCatalog validates defs and wraps a copy of them.
func NewCatalog(defs []Definition) (*Catalog, error) {
	if len(defs) == 0 {
		return nil, errors.New("levels: catalog is empty")
	}
	for i, d := range defs {
		if err := validate(d); err != nil {
			return nil, fmt.Errorf("levels: level %d: %w", i, err)
		}
	}
	return &Catalog{defs: append([]Definition(nil), defs...)}, nil
}

// Get returns the level at index.
func (c *Catalog) Get(index int) (Definition, error) {
	if c == nil || index < 0 || index >= len(c.defs) {
		return Definition{}, fmt.Errorf("%w: %d (catalog has %d levels)", ErrInvalidLevelIndex, index, c.Len())
	}
	return c.defs[index], nil
}

func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.defs)
}

// Load reads the embedded catalog.
func Load() (*Catalog, error) {
	data, err := LevelsFS.ReadFile(DefaultFile)
	if err != nil {
		return nil, fmt.Errorf("levels: read embedded %s: %w", DefaultFile, err)
	}
	return Parse(data)
}

// LoadFile reads a catalog from disk.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("levels: read %s: %w", path, err)
	}
	return Parse(data)
}

// Open loads path when it is set and exists, the embedded catalog otherwise.
func Open(path string) (*Catalog, error) {
	if path == "" {
		return Load()
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return Load()
	}
	return LoadFile(path)
}

func Parse(data []byte) (*Catalog, error) {
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("levels: parse: %w", err)
	}
	return NewCatalog(f.Levels)
}

func validate(d Definition) error {
	for i, p := range d.Platforms {
		if p.Width <= 0 || p.Height <= 0 {
			return fmt.Errorf("platform %d has non-positive size %vx%v", i, p.Width, p.Height)
		}
		x, y, w, h := p.Bounds()
		if !inViewport(x, y) || !inViewport(x+w, y+h) {
			return fmt.Errorf("platform %d lies outside the viewport", i)
		}
	}
	for i, c := range d.Coins {
		if !inViewport(c.X, c.Y) {
			return fmt.Errorf("coin %d at (%v, %v) lies outside the viewport", i, c.X, c.Y)
		}
	}
	if !inViewport(d.Goal.X, d.Goal.Y) {
		return fmt.Errorf("goal at (%v, %v) lies outside the viewport", d.Goal.X, d.Goal.Y)
	}
	if s := d.SpawnPoint(); !inViewport(s.X, s.Y) {
		return fmt.Errorf("spawn at (%v, %v) lies outside the viewport", s.X, s.Y)
	}
	return nil
}

func inViewport(x, y float64) bool {
	return x >= 0 && y >= 0 && x <= common.ViewportWidth && y <= common.ViewportHeight
}
