package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"sync"

	"github.com/patrickmn/go-cache"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"
	"golang.org/x/sync/errgroup"

	apierrors "github.com/MayaS12/Malnutrition-dashboard/internal/errors"
	"github.com/MayaS12/Malnutrition-dashboard/pkg/contracts/domain"
)

// maxDocumentBytes caps the size of a boundary document
const maxDocumentBytes = 256 << 20

// Result is the outcome of fetching one level
type Result struct {
	Collection *Collection
	Err        error
}

// Fetcher retrieves boundary documents over HTTP or from local files.
// Decoded collections are cached by location for the life of the Fetcher.
type Fetcher struct {
	client *http.Client
	cache  *cache.Cache
	logger *slog.Logger
}

// NewFetcher creates a Fetcher. A nil client uses http.DefaultClient.
func NewFetcher(client *http.Client, logger *slog.Logger) *Fetcher {
	if client == nil {
		client = http.DefaultClient
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Fetcher{
		client: client,
		cache:  cache.New(cache.NoExpiration, 0),
		logger: logger.With(slog.String("component", "geo")),
	}
}

// Fetch returns the decoded boundary collection for src
func (f *Fetcher) Fetch(ctx context.Context, src Source) (*Collection, error) {
	if cached, ok := f.cache.Get(src.URL); ok {
		coll := cached.(*Collection)
		if coll.Source.NameProperty == src.NameProperty {
			return coll, nil
		}
	}

	data, err := f.read(ctx, src.URL)
	if err != nil {
		return nil, apierrors.NewGeometryError("fetch boundary document", err).
			WithContext("level", string(src.Level)).
			WithContext("url", src.URL)
	}

	coll, skipped, err := Decode(data, src)
	if err != nil {
		return nil, apierrors.NewGeometryError("decode boundary document", err).
			WithContext("level", string(src.Level)).
			WithContext("url", src.URL)
	}

	f.logger.InfoContext(ctx, "boundary document loaded",
		slog.String("level", string(src.Level)),
		slog.String("url", src.URL),
		slog.Int("features", len(coll.Features)),
		slog.Int("skipped", skipped))

	f.cache.Set(src.URL, coll, cache.NoExpiration)
	return coll, nil
}

// FetchAll fetches every source concurrently. A failure is recorded against
// its level and does not affect the others.
func (f *Fetcher) FetchAll(ctx context.Context, sources []Source) map[domain.Level]Result {
	var (
		mu      sync.Mutex
		results = make(map[domain.Level]Result, len(sources))
	)

	var g errgroup.Group
	for _, src := range sources {
		g.Go(func() error {
			coll, err := f.Fetch(ctx, src)
			if err != nil {
				f.logger.ErrorContext(ctx, "boundary document unavailable",
					slog.String("level", string(src.Level)),
					slog.String("url", src.URL),
					slog.String("error", err.Error()))
			}

			mu.Lock()
			results[src.Level] = Result{Collection: coll, Err: err}
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	return results
}

// read loads location over HTTP(S), or from disk when it has no such scheme
func (f *Fetcher) read(ctx context.Context, location string) ([]byte, error) {
	u, err := url.Parse(location)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		path := location
		if err == nil && u.Scheme == "file" {
			path = u.Path
		}
		return readFile(path)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/geo+json, application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if len(data) > maxDocumentBytes {
		return nil, fmt.Errorf("document exceeds %d bytes", maxDocumentBytes)
	}
	return data, nil
}

func readFile(path string) ([]byte, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fh.Close()
	return io.ReadAll(io.LimitReader(fh, maxDocumentBytes))
}

// Decode parses a GeoJSON FeatureCollection. Features without a name or with a
// non-polygonal geometry are skipped and counted.
func Decode(data []byte, src Source) (*Collection, int, error) {
	var fc geojson.FeatureCollection
	if err := json.Unmarshal(data, &fc); err != nil {
		return nil, 0, fmt.Errorf("parse geojson: %w", err)
	}

	coll := &Collection{Source: src, Features: make([]Feature, 0, len(fc.Features))}
	skipped := 0
	for _, feat := range fc.Features {
		if feat == nil {
			skipped++
			continue
		}
		name, ok := feat.Properties[src.NameProperty].(string)
		if !ok || name == "" {
			skipped++
			continue
		}
		switch feat.Geometry.(type) {
		case *geom.Polygon, *geom.MultiPolygon:
		default:
			skipped++
			continue
		}
		coll.Features = append(coll.Features, Feature{Name: name, Geometry: feat.Geometry})
	}

	if len(coll.Features) == 0 {
		return nil, skipped, fmt.Errorf("no polygon features named by %q", src.NameProperty)
	}
	return coll, skipped, nil
}
