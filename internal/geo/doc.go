// Package geo fetches and decodes the administrative boundary documents used
// by the choropleth maps and by place-name reconciliation.
//
// A boundary document is a GeoJSON FeatureCollection whose features carry the
// place name under a configurable property (NAME_1 for states, NAME_2 for
// districts). Only polygon and multipolygon features are kept.
//
// Documents are fetched once per process. FetchAll retrieves the state and
// district documents concurrently and reports failures per level, so a missing
// district map never takes the state map down with it.
package geo
