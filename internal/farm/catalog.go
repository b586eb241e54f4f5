package farm

import (
	_ "embed"
	"errors"
	"fmt"
	"slices"
	"sort"

	"gopkg.in/yaml.v3"
)

//go:embed profiles.yaml
var profilesYAML []byte

// ErrInvalidCatalog is returned when profile data fails its sanity checks.
var ErrInvalidCatalog = errors.New("invalid farm catalog")

// Catalog is an immutable, id-indexed set of farm profiles.
type Catalog struct {
	byID map[ID]Profile
	ids  []ID
}

type catalogDocument struct {
	Farms []Profile `yaml:"farms"`
}

// DefaultCatalog decodes the profiles embedded in the binary.
func DefaultCatalog() (*Catalog, error) {
	return ParseCatalog(profilesYAML)
}

// ParseCatalog decodes a YAML catalog document.
func ParseCatalog(data []byte) (*Catalog, error) {
	var doc catalogDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
	}
	return NewCatalog(doc.Farms)
}

// NewCatalog validates profiles and derives every equipment total cost.
func NewCatalog(profiles []Profile) (*Catalog, error) {
	c := &Catalog{byID: make(map[ID]Profile, len(profiles))}

	for _, p := range profiles {
		if p.ID <= 0 {
			return nil, fmt.Errorf("%w: profile %q has non-positive id %d", ErrInvalidCatalog, p.Name, p.ID)
		}
		if _, dup := c.byID[p.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate farm id %d", ErrInvalidCatalog, p.ID)
		}
		if p.Acreage <= 0 {
			return nil, fmt.Errorf("%w: farm %d has acreage %v", ErrInvalidCatalog, p.ID, p.Acreage)
		}

		p = cloneProfile(p)
		for i := range p.Equipment {
			eq := &p.Equipment[i]
			if !eq.Owner.Valid() {
				return nil, fmt.Errorf("%w: farm %d equipment %q has owner %q", ErrInvalidCatalog, p.ID, eq.Implement, eq.Owner)
			}
			if eq.CostPerAcre < 0 {
				return nil, fmt.Errorf("%w: farm %d equipment %q has negative cost", ErrInvalidCatalog, p.ID, eq.Implement)
			}
			eq.TotalCost = TotalCost(eq.CostPerAcre, p.Acreage)
		}

		c.byID[p.ID] = p
		c.ids = append(c.ids, p.ID)
	}

	sort.Slice(c.ids, func(i, j int) bool { return c.ids[i] < c.ids[j] })
	return c, nil
}

// Profile returns a copy of the profile for id.
func (c *Catalog) Profile(id ID) (Profile, bool) {
	p, ok := c.byID[id]
	if !ok {
		return Profile{}, false
	}
	return cloneProfile(p), true
}

// Profiles returns copies of all profiles ordered by id.
func (c *Catalog) Profiles() []Profile {
	out := make([]Profile, 0, len(c.ids))
	for _, id := range c.ids {
		out = append(out, cloneProfile(c.byID[id]))
	}
	return out
}

func cloneProfile(p Profile) Profile {
	p.Coordinates = slices.Clone(p.Coordinates)
	p.CropHistory = slices.Clone(p.CropHistory)
	p.Equipment = slices.Clone(p.Equipment)
	for i := range p.Equipment {
		if op := p.Equipment[i].Operating; op != nil {
			cp := *op
			p.Equipment[i].Operating = &cp
		}
		if svc := p.Equipment[i].Service; svc != nil {
			cp := *svc
			p.Equipment[i].Service = &cp
		}
	}
	return p
}
