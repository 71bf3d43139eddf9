package assets

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
)

// Asset sets downloadable by the Fetcher, keyed by logical resource key.
var (
	// CoreAssetURLs are required by every generated document.
	CoreAssetURLs = map[string]string{
		KeyLeafletJS:              "https://cdn.jsdelivr.net/npm/leaflet@1.9.3/dist/leaflet.js",
		KeyLeafletCSS:             "https://cdn.jsdelivr.net/npm/leaflet@1.9.3/dist/leaflet.css",
		KeyJQueryJS:               "https://code.jquery.com/jquery-3.7.1.min.js",
		KeyBootstrapJS:            "https://cdn.jsdelivr.net/npm/bootstrap@5.2.2/dist/js/bootstrap.bundle.min.js",
		KeyBootstrapCSS:           "https://cdn.jsdelivr.net/npm/bootstrap@5.2.2/dist/css/bootstrap.min.css",
		KeyBootstrapGlyphiconsCSS: "https://netdna.bootstrapcdn.com/bootstrap/3.0.0/css/bootstrap-glyphicons.css",
		KeyFontAwesomeCSS:         "https://cdn.jsdelivr.net/npm/@fortawesome/fontawesome-free@6.2.0/css/all.min.css",
		KeyAwesomeMarkersJS:       "https://cdnjs.cloudflare.com/ajax/libs/Leaflet.awesome-markers/2.0.2/leaflet.awesome-markers.js",
		KeyAwesomeMarkersCSS:      "https://cdnjs.cloudflare.com/ajax/libs/Leaflet.awesome-markers/2.0.2/leaflet.awesome-markers.css",
		KeyAwesomeRotateCSS:       "https://cdn.jsdelivr.net/gh/python-visualization/folium/folium/templates/leaflet.awesome.rotate.min.css",
	}

	// TimeAssetURLs are needed only by time-animated documents.
	TimeAssetURLs = map[string]string{
		KeyTimeDimensionJS:  "https://cdn.jsdelivr.net/npm/leaflet-timedimension@1.1.0/dist/leaflet.timedimension.min.js",
		KeyTimeDimensionCSS: "https://cdn.jsdelivr.net/npm/leaflet-timedimension@1.1.0/dist/leaflet.timedimension.control.css",
		KeyMomentJS:         "https://cdn.jsdelivr.net/npm/moment@2.29.4/min/moment.min.js",
		KeyISO8601JS:        "https://cdn.jsdelivr.net/npm/iso8601-js-period@0.2.1/iso8601.min.js",
	}

	// AntPathAssetURLs are needed only when tracks use the ant-path plugin.
	AntPathAssetURLs = map[string]string{
		KeyAntPathJS: "https://cdn.jsdelivr.net/npm/leaflet-ant-path@1.3.0/dist/leaflet-ant-path.min.js",
	}
)

// Fetcher downloads asset files to a local directory.
type Fetcher struct {
	httpClient *http.Client
	logger     zerolog.Logger
}

// NewFetcher creates a Fetcher with a 60s request timeout.
func NewFetcher(logger zerolog.Logger) *Fetcher {
	return &Fetcher{
		httpClient: &http.Client{Timeout: 60 * time.Second},
		logger:     logger,
	}
}

// FetchPlan assembles the set of assets to download.
func FetchPlan(withTime, withAntPath bool) map[string]string {
	plan := make(map[string]string, len(CoreAssetURLs)+len(TimeAssetURLs)+len(AntPathAssetURLs))
	for k, v := range CoreAssetURLs {
		plan[k] = v
	}
	if withTime {
		for k, v := range TimeAssetURLs {
			plan[k] = v
		}
	}
	if withAntPath {
		for k, v := range AntPathAssetURLs {
			plan[k] = v
		}
	}
	return plan
}

// FetchAll downloads every asset in the plan into dir under its conventional
// filename, skipping files that already exist unless force is set. Failures
// are collected per key; a non-empty map means at least one asset is missing
// but the ones that succeeded are usable.
func (f *Fetcher) FetchAll(dir string, plan map[string]string, force bool) map[string]error {
	failures := make(map[string]error)
	for key, url := range plan {
		name, ok := DefaultFilenames[key]
		if !ok {
			continue
		}
		dest := filepath.Join(dir, name)
		downloaded, err := f.fetchOne(url, dest, force)
		if err != nil {
			failures[key] = err
			f.logger.Error().Err(err).Str("key", key).Str("url", url).Msg("Asset download failed")
			continue
		}
		if downloaded {
			f.logger.Info().Str("file", name).Msg("Downloaded asset")
		} else {
			f.logger.Debug().Str("file", name).Msg("Asset exists, skipping")
		}
	}
	return failures
}

func (f *Fetcher) fetchOne(url, dest string, force bool) (bool, error) {
	if !force {
		if _, err := os.Stat(dest); err == nil {
			return false, nil
		}
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return false, fmt.Errorf("creating asset dir: %w", err)
	}

	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return false, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	out, err := os.Create(dest)
	if err != nil {
		return false, err
	}
	defer out.Close()

	if _, err := io.Copy(out, resp.Body); err != nil {
		os.Remove(dest)
		return false, fmt.Errorf("writing %s: %w", dest, err)
	}
	return true, nil
}
