package geo

import (
	"github.com/twpayne/go-geom"

	"github.com/MayaS12/Malnutrition-dashboard/pkg/contracts/domain"
)

// Source describes where the boundaries of one level come from
type Source struct {
	Level        domain.Level
	URL          string
	NameProperty string
}

// Feature is one named area
type Feature struct {
	Name     string
	Geometry geom.T
}

// Polygons returns the polygons making up the feature
func (f Feature) Polygons() []*geom.Polygon {
	switch g := f.Geometry.(type) {
	case *geom.Polygon:
		return []*geom.Polygon{g}
	case *geom.MultiPolygon:
		out := make([]*geom.Polygon, 0, g.NumPolygons())
		for i := 0; i < g.NumPolygons(); i++ {
			out = append(out, g.Polygon(i))
		}
		return out
	}
	return nil
}

// Collection is a decoded boundary document
type Collection struct {
	Source   Source
	Features []Feature
}

// Names returns the canonical place names in document order, without duplicates
func (c *Collection) Names() []string {
	seen := make(map[string]struct{}, len(c.Features))
	names := make([]string, 0, len(c.Features))
	for _, f := range c.Features {
		if _, ok := seen[f.Name]; ok {
			continue
		}
		seen[f.Name] = struct{}{}
		names = append(names, f.Name)
	}
	return names
}

// Bounds returns the extent of every feature combined
func (c *Collection) Bounds() *geom.Bounds {
	b := geom.NewBounds(geom.XY)
	for _, f := range c.Features {
		if f.Geometry == nil {
			continue
		}
		b.Extend(f.Geometry)
	}
	return b
}
