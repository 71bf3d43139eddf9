// Package document assembles Leaflet map documents from geometry and style
// payloads. It is a sink: it draws what it is given and renders a single
// HTML artifact whose external references are exactly the ones the assets
// package knows how to rewrite.
package document

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/oceantrace/darkmap/internal/capability"
	"github.com/oceantrace/darkmap/internal/track"
)

// Row is one record of caller-owned tabular data. Field names are chosen by
// the caller; lat/lon fields are required by the drawing operations that
// consume positions.
type Row map[string]any

// RowsFromTrack converts fixes into rows with the conventional field names
// time, lat, lon and (when present) sog_kn.
func RowsFromTrack(t track.Track) []Row {
	rows := make([]Row, 0, len(t))
	for _, f := range t {
		row := Row{"time": f.Time, "lat": f.Lat, "lon": f.Lon}
		if f.SpeedKn != nil {
			row["sog_kn"] = *f.SpeedKn
		}
		rows = append(rows, row)
	}
	return rows
}

// Float returns a numeric field as float64.
func (r Row) Float(name string) (float64, bool) {
	switch v := r[name].(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	default:
		return 0, false
	}
}

// Map accumulates layers and renders them as a standalone Leaflet document.
type Map struct {
	tilesURL  string
	centerLat float64
	centerLon float64
	zoom      int

	body     strings.Builder
	overlays []overlay
	nextID   int

	needsTime    bool
	needsAntPath bool
	layerControl bool
}

type overlay struct {
	varName string
	name    string
}

// New creates a map document using the given tile URL template, centered at
// lat/lon with the given initial zoom.
func New(tilesURL string, centerLat, centerLon float64, zoom int) *Map {
	return &Map{
		tilesURL:  tilesURL,
		centerLat: centerLat,
		centerLon: centerLon,
		zoom:      zoom,
	}
}

// DotOptions styles AddDots. Zero values select the defaults noted per field.
type DotOptions struct {
	LatField     string  // "lat"
	LonField     string  // "lon"
	ValueField   string  // color dots by this numeric field; empty = flat fill
	Radius       int     // 4
	StrokeColor  string  // "#ffffff"
	StrokeWeight int     // 1
	FillOpacity  float64 // 0.85
	DefaultFill  string  // "#1f77b4"
	TooltipField string
	PopupFields  []string
	Name         string // "dots"
}

// AddDots plots each row as a small vector dot. When ValueField is set, dots
// are colored over a linear ramp and a legend is added.
func (m *Map) AddDots(rows []Row, opts DotOptions) error {
	latField, lonField := defaultStr(opts.LatField, "lat"), defaultStr(opts.LonField, "lon")
	if err := ensureLatLon(rows, latField, lonField); err != nil {
		return err
	}
	radius := defaultInt(opts.Radius, 4)
	strokeColor := defaultStr(opts.StrokeColor, "#ffffff")
	strokeWeight := defaultInt(opts.StrokeWeight, 1)
	fillOpacity := defaultFloat(opts.FillOpacity, 0.85)
	defaultFill := defaultStr(opts.DefaultFill, "#1f77b4")
	name := defaultStr(opts.Name, "dots")

	var ramp ColorRamp
	if opts.ValueField != "" {
		var values []float64
		for _, row := range rows {
			if v, ok := row.Float(opts.ValueField); ok {
				values = append(values, v)
			}
		}
		ramp = RampFor(values)
	}

	group := m.newGroup(name)
	for _, row := range rows {
		lat, _ := row.Float(latField)
		lon, _ := row.Float(lonField)
		fill := defaultFill
		if opts.ValueField != "" {
			if v, ok := row.Float(opts.ValueField); ok {
				fill = ramp.Hex(v)
			}
		}
		marker := fmt.Sprintf(
			"L.circleMarker([%s, %s], {radius: %d, color: %s, weight: %d, fill: true, fillColor: %s, fillOpacity: %s, opacity: 1.0})",
			num(lat), num(lon), radius, jsStr(strokeColor), strokeWeight, jsStr(fill), num(fillOpacity))
		marker += m.bindings(row, opts.TooltipField, opts.PopupFields)
		fmt.Fprintf(&m.body, "%s.addTo(%s);\n", marker, group)
	}
	if opts.ValueField != "" {
		m.addLegend(fmt.Sprintf("%s: %s", name, opts.ValueField), ramp)
	}
	return nil
}

// PointOptions styles AddPoints.
type PointOptions struct {
	LatField     string // "lat"
	LonField     string // "lon"
	TooltipField string
	PopupFields  []string
	Name         string // "points"
}

// AddPoints plots classic pin markers. Prefer AddDots for dense tracks.
func (m *Map) AddPoints(rows []Row, opts PointOptions) error {
	latField, lonField := defaultStr(opts.LatField, "lat"), defaultStr(opts.LonField, "lon")
	if err := ensureLatLon(rows, latField, lonField); err != nil {
		return err
	}
	group := m.newGroup(defaultStr(opts.Name, "points"))
	for _, row := range rows {
		lat, _ := row.Float(latField)
		lon, _ := row.Float(lonField)
		marker := fmt.Sprintf("L.marker([%s, %s])", num(lat), num(lon))
		marker += m.bindings(row, opts.TooltipField, opts.PopupFields)
		fmt.Fprintf(&m.body, "%s.addTo(%s);\n", marker, group)
	}
	return nil
}

// TrackOptions styles AddTrack.
type TrackOptions struct {
	LatField      string  // "lat"
	LonField      string  // "lon"
	Name          string  // "track"
	Weight        int     // 3
	Color         string  // "#2c7fb8"
	Opacity       float64 // 0.9
	Dashed        bool
	AntPath       bool
	HideEndpoints bool
}

// AddTrack draws a polyline through the rows in order, with a green start
// marker and a red end marker unless endpoints are hidden.
func (m *Map) AddTrack(rows []Row, opts TrackOptions) error {
	latField, lonField := defaultStr(opts.LatField, "lat"), defaultStr(opts.LonField, "lon")
	if err := ensureLatLon(rows, latField, lonField); err != nil {
		return err
	}
	if len(rows) == 0 {
		return nil
	}

	coords := make([][2]float64, 0, len(rows))
	for _, row := range rows {
		lat, _ := row.Float(latField)
		lon, _ := row.Float(lonField)
		coords = append(coords, [2]float64{lat, lon})
	}
	coordsJSON, _ := json.Marshal(coords)

	weight := defaultInt(opts.Weight, 3)
	color := defaultStr(opts.Color, "#2c7fb8")
	opacity := defaultFloat(opts.Opacity, 0.9)

	if opts.AntPath {
		m.needsAntPath = true
		fmt.Fprintf(&m.body, "L.polyline.antPath(%s, {weight: %d, color: %s, opacity: %s}).addTo(map);\n",
			coordsJSON, weight, jsStr(color), num(opacity))
	} else {
		dash := "null"
		if opts.Dashed {
			dash = `"6,6"`
		}
		fmt.Fprintf(&m.body, "L.polyline(%s, {weight: %d, color: %s, opacity: %s, dashArray: %s}).addTo(map);\n",
			coordsJSON, weight, jsStr(color), num(opacity), dash)
	}

	if !opts.HideEndpoints {
		first, last := coords[0], coords[len(coords)-1]
		fmt.Fprintf(&m.body, "L.circleMarker([%s, %s], {radius: 5, color: %s, fill: true, fillOpacity: 1}).addTo(map);\n",
			num(first[0]), num(first[1]), jsStr("#2ca25f"))
		fmt.Fprintf(&m.body, "L.circleMarker([%s, %s], {radius: 5, color: %s, fill: true, fillOpacity: 1}).addTo(map);\n",
			num(last[0]), num(last[1]), jsStr("#de2d26"))
	}
	return nil
}

// TimeOptions styles AddTimePoints.
type TimeOptions struct {
	TimeField    string // "time"
	LatField     string // "lat"
	LonField     string // "lon"
	TooltipField string
	PopupFields  []string
	Period       string // "P1D"
}

// AddTimePoints adds a time-animated point layer. The animation plugin and
// its dependency scripts are included in the rendered head.
func (m *Map) AddTimePoints(rows []Row, opts TimeOptions) error {
	latField, lonField := defaultStr(opts.LatField, "lat"), defaultStr(opts.LonField, "lon")
	timeField := defaultStr(opts.TimeField, "time")
	if err := ensureLatLon(rows, latField, lonField); err != nil {
		return err
	}
	m.needsTime = true

	features := make([]map[string]any, 0, len(rows))
	for _, row := range rows {
		lat, _ := row.Float(latField)
		lon, _ := row.Float(lonField)
		props := map[string]any{"time": timestamp(row[timeField])}
		if opts.TooltipField != "" {
			if v, ok := row[opts.TooltipField]; ok {
				props["tooltip"] = fmt.Sprint(v)
			}
		}
		if len(opts.PopupFields) > 0 {
			props["popup"] = popupHTML(row, opts.PopupFields)
		}
		features = append(features, map[string]any{
			"type":       "Feature",
			"geometry":   map[string]any{"type": "Point", "coordinates": [2]float64{lon, lat}},
			"properties": props,
		})
	}
	fc, err := json.Marshal(map[string]any{"type": "FeatureCollection", "features": features})
	if err != nil {
		return fmt.Errorf("marshaling time features: %w", err)
	}

	period := defaultStr(opts.Period, "P1D")
	id := m.nextVar()
	fmt.Fprintf(&m.body, "map.timeDimension = new L.TimeDimension({period: %s});\n", jsStr(period))
	m.body.WriteString("map.addControl(new L.Control.TimeDimension({autoPlay: false, loopButton: true}));\n")
	fmt.Fprintf(&m.body, "var geojson_%d = L.geoJson(%s);\n", id, fc)
	fmt.Fprintf(&m.body,
		"L.timeDimension.layer.geoJson(geojson_%d, {updateTimeDimension: true, addlastPoint: true, duration: %s}).addTo(map);\n",
		id, jsStr(period))
	return nil
}

// RingOptions styles AddRangeRing.
type RingOptions struct {
	Name        string  // "range"
	LineColor   string  // "#e34a33"
	LineWeight  int     // 2
	FillColor   string  // same as LineColor
	FillOpacity float64 // 0.10
	Tooltip     string
}

// AddRangeRing draws a closed [lon, lat] ring as a polygon layer plus a
// small marker at its center.
func (m *Map) AddRangeRing(ring [][2]float64, centerLat, centerLon float64, opts RingOptions) error {
	geometry, err := PolygonGeometry(ring)
	if err != nil {
		return err
	}
	feature, err := json.Marshal(map[string]any{
		"type":     "Feature",
		"geometry": geometry,
	})
	if err != nil {
		return fmt.Errorf("marshaling ring: %w", err)
	}

	lineColor := defaultStr(opts.LineColor, "#e34a33")
	style := map[string]any{
		"color":       lineColor,
		"weight":      defaultInt(opts.LineWeight, 2),
		"fillColor":   defaultStr(opts.FillColor, lineColor),
		"fillOpacity": defaultFloat(opts.FillOpacity, 0.10),
	}
	styleJSON, _ := json.Marshal(style)

	id := m.nextVar()
	fmt.Fprintf(&m.body, "var ring_%d = L.geoJson(%s, {style: function() { return %s; }});\n", id, feature, styleJSON)
	if opts.Tooltip != "" {
		fmt.Fprintf(&m.body, "ring_%d.bindTooltip(%s);\n", id, jsStr(opts.Tooltip))
	}
	fmt.Fprintf(&m.body, "ring_%d.addTo(map);\n", id)
	m.overlays = append(m.overlays, overlay{fmt.Sprintf("ring_%d", id), defaultStr(opts.Name, "range")})
	fmt.Fprintf(&m.body, "L.circleMarker([%s, %s], {radius: 4, color: %s, fill: true, fillOpacity: 1}).addTo(map);\n",
		num(centerLat), num(centerLon), jsStr(lineColor))
	return nil
}

// RegionOptions styles AddChoropleth and AddHexBins.
type RegionOptions struct {
	ValueField  string
	FillOpacity float64 // 0.6
	LineOpacity float64 // 0.2
	Name        string  // "choropleth"
}

// AddChoropleth draws per-row polygons, colored by ValueField when set.
// The geometry field accepts the forms documented on PolygonGeometry.
func (m *Map) AddChoropleth(rows []Row, geometryField string, opts RegionOptions) error {
	geometries := make([]any, 0, len(rows))
	for _, row := range rows {
		g, err := PolygonGeometry(row[geometryField])
		if err != nil {
			return err
		}
		geometries = append(geometries, g)
	}
	return m.addRegions(rows, geometries, opts, "choropleth")
}

// HexBoundaryFunc resolves a hex cell identifier to its [lon, lat] boundary.
type HexBoundaryFunc func(cell string) ([][2]float64, error)

// AddHexBins draws hex cells from a cell-identifier field. Boundary lookup is
// provided by the hexgrid capability; without a registered provider this
// fails at the call, not at startup.
func (m *Map) AddHexBins(rows []Row, hexField string, opts RegionOptions) error {
	provider, err := capability.Lookup(capability.HexGrid)
	if err != nil {
		return err
	}
	boundary, ok := provider.(HexBoundaryFunc)
	if !ok {
		return fmt.Errorf("hexgrid capability has unexpected type %T", provider)
	}

	geometries := make([]any, 0, len(rows))
	for _, row := range rows {
		cell := fmt.Sprint(row[hexField])
		ring, err := boundary(cell)
		if err != nil {
			return fmt.Errorf("resolving hex cell %q: %w", cell, err)
		}
		g, err := PolygonGeometry(ring)
		if err != nil {
			return err
		}
		geometries = append(geometries, g)
	}
	return m.addRegions(rows, geometries, opts, "hexbins")
}

func (m *Map) addRegions(rows []Row, geometries []any, opts RegionOptions, defaultName string) error {
	fillOpacity := defaultFloat(opts.FillOpacity, 0.6)
	lineOpacity := defaultFloat(opts.LineOpacity, 0.2)
	name := defaultStr(opts.Name, defaultName)

	var ramp ColorRamp
	if opts.ValueField != "" {
		var values []float64
		for _, row := range rows {
			if v, ok := row.Float(opts.ValueField); ok {
				values = append(values, v)
			}
		}
		ramp = RampFor(values)
	}

	features := make([]map[string]any, 0, len(rows))
	for i, row := range rows {
		fill := "#3388ff"
		props := map[string]any{}
		if opts.ValueField != "" {
			if v, ok := row.Float(opts.ValueField); ok {
				fill = ramp.Hex(v)
				props["value"] = v
			}
		}
		props["style"] = map[string]any{
			"fillColor":   fill,
			"color":       "#000000",
			"weight":      1,
			"fillOpacity": fillOpacity,
			"opacity":     lineOpacity,
		}
		features = append(features, map[string]any{
			"type":       "Feature",
			"geometry":   geometries[i],
			"properties": props,
		})
	}
	fc, err := json.Marshal(map[string]any{"type": "FeatureCollection", "features": features})
	if err != nil {
		return fmt.Errorf("marshaling region features: %w", err)
	}

	id := m.nextVar()
	fmt.Fprintf(&m.body,
		"var regions_%d = L.geoJson(%s, {style: function(f) { return f.properties.style; }});\nregions_%d.addTo(map);\n",
		id, fc, id)
	m.overlays = append(m.overlays, overlay{fmt.Sprintf("regions_%d", id), name})
	if opts.ValueField != "" {
		m.addLegend(name, ramp)
	}
	return nil
}

// AddLayerControl adds a layer switcher listing every named overlay added so
// far.
func (m *Map) AddLayerControl() {
	m.layerControl = true
}

// Render produces the final HTML document.
func (m *Map) Render() string {
	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n")
	b.WriteString(`<link rel="stylesheet" href="https://cdn.jsdelivr.net/npm/leaflet@1.9.3/dist/leaflet.css"/>` + "\n")
	b.WriteString(`<script src="https://cdn.jsdelivr.net/npm/leaflet@1.9.3/dist/leaflet.js"></script>` + "\n")
	b.WriteString(`<script src="https://code.jquery.com/jquery-3.7.1.min.js"></script>` + "\n")
	b.WriteString(`<script src="https://cdn.jsdelivr.net/npm/bootstrap@5.2.2/dist/js/bootstrap.bundle.min.js"></script>` + "\n")
	b.WriteString(`<link rel="stylesheet" href="https://cdn.jsdelivr.net/npm/bootstrap@5.2.2/dist/css/bootstrap.min.css"/>` + "\n")
	b.WriteString(`<link rel="stylesheet" href="https://netdna.bootstrapcdn.com/bootstrap/3.0.0/css/bootstrap-glyphicons.css"/>` + "\n")
	b.WriteString(`<link rel="stylesheet" href="https://cdn.jsdelivr.net/npm/@fortawesome/fontawesome-free@6.2.0/css/all.min.css"/>` + "\n")
	b.WriteString(`<script src="https://cdnjs.cloudflare.com/ajax/libs/Leaflet.awesome-markers/2.0.2/leaflet.awesome-markers.js"></script>` + "\n")
	b.WriteString(`<link rel="stylesheet" href="https://cdnjs.cloudflare.com/ajax/libs/Leaflet.awesome-markers/2.0.2/leaflet.awesome-markers.css"/>` + "\n")
	b.WriteString(`<link rel="stylesheet" href="https://cdn.jsdelivr.net/gh/python-visualization/folium/folium/templates/leaflet.awesome.rotate.min.css"/>` + "\n")
	if m.needsTime {
		b.WriteString(`<script src="https://cdn.jsdelivr.net/npm/moment@2.29.4/min/moment.min.js"></script>` + "\n")
		b.WriteString(`<script src="https://cdn.jsdelivr.net/npm/iso8601-js-period@0.2.1/iso8601.min.js"></script>` + "\n")
		b.WriteString(`<script src="https://cdn.jsdelivr.net/npm/leaflet-timedimension@1.1.0/dist/leaflet.timedimension.min.js"></script>` + "\n")
		b.WriteString(`<link rel="stylesheet" href="https://cdn.jsdelivr.net/npm/leaflet-timedimension@1.1.0/dist/leaflet.timedimension.control.css"/>` + "\n")
	}
	if m.needsAntPath {
		b.WriteString(`<script src="https://cdn.jsdelivr.net/npm/leaflet-ant-path@1.3.0/dist/leaflet-ant-path.min.js"></script>` + "\n")
	}
	b.WriteString("<style>html, body, #map { height: 100%; width: 100%; margin: 0; }</style>\n")
	b.WriteString("</head>\n<body>\n<div id=\"map\"></div>\n<script>\n")
	fmt.Fprintf(&b, "var map = L.map(\"map\", {center: [%s, %s], zoom: %d, preferCanvas: true});\n",
		num(m.centerLat), num(m.centerLon), m.zoom)
	b.WriteString("L.control.scale().addTo(map);\n")
	fmt.Fprintf(&b, "var tiles = L.tileLayer(%s, {attribution: %s});\ntiles.addTo(map);\n",
		jsStr(m.tilesURL), jsStr("Local tiles"))
	b.WriteString(m.body.String())
	if m.layerControl {
		var entries []string
		for _, o := range m.overlays {
			entries = append(entries, fmt.Sprintf("%s: %s", jsStr(o.name), o.varName))
		}
		fmt.Fprintf(&b, "L.control.layers(null, {%s}, {position: \"topright\", collapsed: false}).addTo(map);\n",
			strings.Join(entries, ", "))
	}
	b.WriteString("</script>\n</body>\n</html>\n")
	return b.String()
}

// Save renders the document and writes it to path.
func (m *Map) Save(path string) error {
	if err := os.WriteFile(path, []byte(m.Render()), 0644); err != nil {
		return fmt.Errorf("writing document: %w", err)
	}
	return nil
}

// --- helpers ---

func (m *Map) newGroup(name string) string {
	id := m.nextVar()
	varName := fmt.Sprintf("group_%d", id)
	fmt.Fprintf(&m.body, "var %s = L.featureGroup();\n%s.addTo(map);\n", varName, varName)
	m.overlays = append(m.overlays, overlay{varName, name})
	return varName
}

func (m *Map) nextVar() int {
	m.nextID++
	return m.nextID
}

// bindings emits tooltip/popup chained calls for a marker expression.
func (m *Map) bindings(row Row, tooltipField string, popupFields []string) string {
	var b strings.Builder
	if tooltipField != "" {
		if v, ok := row[tooltipField]; ok {
			fmt.Fprintf(&b, ".bindTooltip(%s)", jsStr(fmt.Sprint(v)))
		}
	}
	if len(popupFields) > 0 {
		fmt.Fprintf(&b, ".bindPopup(%s, {maxWidth: 300})", jsStr(popupHTML(row, popupFields)))
	}
	return b.String()
}

func (m *Map) addLegend(caption string, ramp ColorRamp) {
	id := m.nextVar()
	html := fmt.Sprintf("%s<br/>%s &ndash; %s", caption,
		strconv.FormatFloat(ramp.Min, 'g', 6, 64), strconv.FormatFloat(ramp.Max, 'g', 6, 64))
	fmt.Fprintf(&m.body,
		"var legend_%d = L.control({position: \"bottomright\"});\n"+
			"legend_%d.onAdd = function() { var div = L.DomUtil.create(\"div\", \"legend\"); div.innerHTML = %s; return div; };\n"+
			"legend_%d.addTo(map);\n",
		id, id, jsStr(html), id)
}

func ensureLatLon(rows []Row, latField, lonField string) error {
	for _, row := range rows {
		var missing []string
		if _, ok := row.Float(latField); !ok {
			missing = append(missing, latField)
		}
		if _, ok := row.Float(lonField); !ok {
			missing = append(missing, lonField)
		}
		if len(missing) > 0 {
			return &track.MissingFieldError{Fields: missing}
		}
	}
	return nil
}

func popupHTML(row Row, fields []string) string {
	var parts []string
	for _, f := range fields {
		if v, ok := row[f]; ok && v != nil {
			parts = append(parts, fmt.Sprintf("<b>%s</b>: %s", f, fmt.Sprint(v)))
		}
	}
	return strings.Join(parts, "<br/>")
}

func timestamp(v any) string {
	if t, ok := v.(time.Time); ok {
		return t.Format(time.RFC3339)
	}
	return fmt.Sprint(v)
}

func jsStr(s string) string {
	out, _ := json.Marshal(s)
	return string(out)
}

func num(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

func defaultStr(v, d string) string {
	if v == "" {
		return d
	}
	return v
}

func defaultInt(v, d int) int {
	if v == 0 {
		return d
	}
	return v
}

func defaultFloat(v, d float64) float64 {
	if v == 0 {
		return d
	}
	return v
}
