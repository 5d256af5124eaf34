package regions

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/vancomm/regionsweeper/internal/mines"
)

//go:embed regions.yaml
var defaultCatalog []byte

var ErrUnknownRegion = errors.New("unknown region")

type Region struct {
	Key      string      `yaml:"key" json:"key"`
	Name     string      `yaml:"name" json:"name"`
	Mines    int         `yaml:"mines" json:"mines"`
	Adjacent []string    `yaml:"adjacent" json:"adjacent"`
	Rows     []string    `yaml:"shape" json:"-"`
	Shape    mines.Shape `yaml:"-" json:"shape"`
}

type Catalog struct {
	Start   string
	regions map[string]*Region
	order   []string
}

type catalogFile struct {
	Start   string   `yaml:"start"`
	Regions []Region `yaml:"regions"`
}

// ParseShape converts rows of '#' and '.' into a shape mask.
func ParseShape(rows []string) (mines.Shape, error) {
	shape := make(mines.Shape, len(rows))
	for r, row := range rows {
		shape[r] = make([]int, len(row))
		for c, ch := range row {
			switch ch {
			case '#':
				shape[r][c] = 1
			case '.', ' ':
				shape[r][c] = 0
			default:
				return nil, fmt.Errorf("shape: unexpected %q at %d:%d", ch, r, c)
			}
		}
	}
	if _, _, err := shape.Dimensions(); err != nil {
		return nil, err
	}
	return shape, nil
}

func Parse(data []byte) (*Catalog, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("unable to parse catalog: %w", err)
	}

	c := &Catalog{
		Start:   file.Start,
		regions: make(map[string]*Region, len(file.Regions)),
	}
	for i := range file.Regions {
		region := &file.Regions[i]
		if region.Key == "" {
			return nil, fmt.Errorf("catalog: region #%d has no key", i)
		}
		if _, ok := c.regions[region.Key]; ok {
			return nil, fmt.Errorf("catalog: duplicate region %q", region.Key)
		}
		shape, err := ParseShape(region.Rows)
		if err != nil {
			return nil, fmt.Errorf("catalog: region %q: %w", region.Key, err)
		}
		region.Shape = shape
		c.regions[region.Key] = region
		c.order = append(c.order, region.Key)
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func Load(fsys fs.FS, path string) (*Catalog, error) {
	data, err := fs.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("unable to read catalog: %w", err)
	}
	return Parse(data)
}

// Default returns the catalog bundled with the binary.
func Default() *Catalog {
	c, err := Parse(defaultCatalog)
	if err != nil {
		panic("bundled region catalog failed validation: " + err.Error())
	}
	return c
}

func (c *Catalog) Validate() error {
	if len(c.regions) == 0 {
		return fmt.Errorf("catalog: no regions")
	}
	if _, ok := c.regions[c.Start]; !ok {
		return fmt.Errorf("catalog: start region %q does not exist", c.Start)
	}
	for _, key := range c.order {
		region := c.regions[key]
		playable := region.Shape.PlayableCount()
		if playable == 0 {
			return fmt.Errorf("catalog: region %q has no playable cells", key)
		}
		if region.Mines < 0 || region.Mines >= playable {
			return fmt.Errorf(
				"catalog: region %q has %d mines for %d cells",
				key, region.Mines, playable,
			)
		}
		for _, adj := range region.Adjacent {
			other, ok := c.regions[adj]
			if !ok {
				return fmt.Errorf("catalog: region %q borders unknown region %q", key, adj)
			}
			if adj == key {
				return fmt.Errorf("catalog: region %q borders itself", key)
			}
			if !slices.Contains(other.Adjacent, key) {
				return fmt.Errorf(
					"catalog: region %q borders %q but not the other way around",
					key, adj,
				)
			}
		}
	}
	return nil
}

func (c *Catalog) Get(key string) (*Region, error) {
	region, ok := c.regions[key]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownRegion, key)
	}
	return region, nil
}

// Regions lists regions in catalog order.
func (c *Catalog) Regions() []*Region {
	regions := make([]*Region, 0, len(c.order))
	for _, key := range c.order {
		regions = append(regions, c.regions[key])
	}
	return regions
}

func (c *Catalog) Len() int {
	return len(c.order)
}

func (c *Catalog) Keys() []string {
	return slices.Clone(c.order)
}
