// Package assets makes generated map documents self-contained: it knows the
// CDN URLs the document assembler emits, rewrites them to local paths or
// inlines the file contents, verifies no external references remain, and
// downloads the asset files themselves.
package assets

import (
	"path/filepath"
	"regexp"
)

// Kind classifies a resource pattern by how its reference is embedded in the
// document.
type Kind int

const (
	// KindScript resources live in <script src="..."> tags.
	KindScript Kind = iota
	// KindStyle resources live in <link href="..."> tags.
	KindStyle
	// KindTiles is the tile-server URL template; it is replaced in every
	// mode from the tiles fallback, never from a file.
	KindTiles
)

// Logical resource keys. The set is closed: resolution-table keys outside it
// are ignored.
const (
	KeyLeafletJS              = "leaflet_js"
	KeyLeafletCSS             = "leaflet_css"
	KeyJQueryJS               = "jquery_js"
	KeyBootstrapJS            = "bootstrap_js"
	KeyBootstrapCSS           = "bootstrap_css"
	KeyBootstrapGlyphiconsCSS = "bootstrap_glyphicons_css"
	KeyFontAwesomeCSS         = "fa_css"
	KeyAwesomeMarkersJS       = "awesomemarkers_js"
	KeyAwesomeMarkersCSS      = "awesomemarkers_css"
	KeyAwesomeRotateCSS       = "awesomemarkers_rotate_css"
	KeyTimeDimensionJS        = "timedimension_js"
	KeyTimeDimensionCSS       = "timedimension_css"
	KeyMomentJS               = "moment_js"
	KeyISO8601JS              = "iso8601_js"
	KeyAntPathJS              = "antpath_js"
	KeyOSMTiles               = "osm_tiles"
)

// Pattern is one known external resource reference.
type Pattern struct {
	Key  string
	Kind Kind
	Re   *regexp.Regexp
}

// Patterns lists every external reference the rewriter knows, in processing
// order.
var Patterns = []Pattern{
	{KeyLeafletJS, KindScript, regexp.MustCompile(`https://cdn\.jsdelivr\.net/npm/leaflet@[^/]+/dist/leaflet(?:\.min)?\.js`)},
	{KeyLeafletCSS, KindStyle, regexp.MustCompile(`https://cdn\.jsdelivr\.net/npm/leaflet@[^/]+/dist/leaflet(?:\.min)?\.css`)},
	{KeyJQueryJS, KindScript, regexp.MustCompile(`https://code\.jquery\.com/jquery-\d+\.\d+\.\d+\.min\.js`)},
	{KeyBootstrapJS, KindScript, regexp.MustCompile(`https://cdn\.jsdelivr\.net/npm/bootstrap@[^/]+/dist/js/bootstrap\.bundle\.min\.js`)},
	{KeyBootstrapCSS, KindStyle, regexp.MustCompile(`https://cdn\.jsdelivr\.net/npm/bootstrap@[^/]+/dist/css/bootstrap\.min\.css`)},
	{KeyBootstrapGlyphiconsCSS, KindStyle, regexp.MustCompile(`https?://netdna\.bootstrapcdn\.com/bootstrap/\d+\.\d+\.\d+/css/bootstrap-glyphicons\.css`)},
	{KeyFontAwesomeCSS, KindStyle, regexp.MustCompile(`https://cdn\.jsdelivr\.net/npm/@fortawesome/fontawesome-free@[^/]+/css/all\.min\.css`)},
	{KeyAwesomeMarkersJS, KindScript, regexp.MustCompile(`https://cdnjs\.cloudflare\.com/ajax/libs/Leaflet\.awesome-markers/\d+\.\d+\.\d+/leaflet\.awesome-markers\.js`)},
	{KeyAwesomeMarkersCSS, KindStyle, regexp.MustCompile(`https://cdnjs\.cloudflare\.com/ajax/libs/Leaflet\.awesome-markers/\d+\.\d+\.\d+/leaflet\.awesome-markers\.css`)},
	{KeyAwesomeRotateCSS, KindStyle, regexp.MustCompile(`https://cdn\.jsdelivr\.net/gh/python-visualization/folium/folium/templates/leaflet\.awesome\.rotate\.min\.css`)},
	{KeyTimeDimensionJS, KindScript, regexp.MustCompile(`https://cdn\.jsdelivr\.net/npm/leaflet-timedimension@[^/]+/dist/leaflet\.timedimension(?:\.min)?\.js`)},
	{KeyTimeDimensionCSS, KindStyle, regexp.MustCompile(`https://cdn\.jsdelivr\.net/npm/leaflet-timedimension@[^/]+/dist/leaflet\.timedimension\.control(?:\.min)?\.css`)},
	{KeyMomentJS, KindScript, regexp.MustCompile(`https://(?:cdnjs\.cloudflare\.com/ajax/libs/moment\.js/\d+\.\d+\.\d+/moment\.min\.js|cdn\.jsdelivr\.net/npm/moment@[^/]+/min/moment\.min\.js)`)},
	{KeyISO8601JS, KindScript, regexp.MustCompile(`https://cdn\.jsdelivr\.net/npm/iso8601-js-period@[^/]+/iso8601(?:\.min)?\.js`)},
	{KeyAntPathJS, KindScript, regexp.MustCompile(`https://cdn\.jsdelivr\.net/npm/leaflet-ant-path@[^/]+/dist/leaflet-ant-path(?:\.min)?\.js`)},
	{KeyOSMTiles, KindTiles, regexp.MustCompile(`https://tile\.openstreetmap\.org/\{z\}/\{x\}/\{y\}\.png`)},
}

// DefaultFilenames maps logical keys to the conventional filenames the asset
// downloader writes, so an assets dir can be turned into a resolution table
// without per-key configuration.
var DefaultFilenames = map[string]string{
	KeyLeafletJS:              "leaflet.js",
	KeyLeafletCSS:             "leaflet.css",
	KeyJQueryJS:               "jquery-3.7.1.min.js",
	KeyBootstrapJS:            "bootstrap.bundle.min.js",
	KeyBootstrapCSS:           "bootstrap.min.css",
	KeyBootstrapGlyphiconsCSS: "bootstrap-glyphicons.css",
	KeyFontAwesomeCSS:         "all.min.css",
	KeyAwesomeMarkersJS:       "leaflet.awesome-markers.js",
	KeyAwesomeMarkersCSS:      "leaflet.awesome-markers.css",
	KeyAwesomeRotateCSS:       "leaflet.awesome.rotate.min.css",
	KeyTimeDimensionJS:        "leaflet.timedimension.min.js",
	KeyTimeDimensionCSS:       "leaflet.timedimension.control.css",
	KeyMomentJS:               "moment.min.js",
	KeyISO8601JS:              "iso8601.min.js",
	KeyAntPathJS:              "leaflet-ant-path.min.js",
}

// Resolution maps logical resource keys to local file paths. Keys outside the
// known set are ignored; keys without an entry leave the original reference
// untouched.
type Resolution map[string]string

// DirResolution builds a resolution table for an assets directory using the
// conventional filenames. Overrides replace individual entries.
func DirResolution(dir string, overrides Resolution) Resolution {
	table := make(Resolution, len(DefaultFilenames))
	if dir != "" {
		for key, name := range DefaultFilenames {
			table[key] = filepath.Join(dir, name)
		}
	}
	for key, path := range overrides {
		table[key] = path
	}
	return table
}
