package console

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"droneops-console/internal/config"
)

const highAltThreshold = 100.0

func headingIcon(h float64) string {
	h = math.Mod(h, 360)
	if h < 0 {
		h += 360
	}
	switch {
	case h >= 45 && h < 135:
		return ">"
	case h >= 135 && h < 225:
		return "v"
	case h >= 225 && h < 315:
		return "<"
	default:
		return "^"
	}
}

func altitudeIcon(h, alt float64) string {
	icon := headingIcon(h)
	if alt >= highAltThreshold {
		switch icon {
		case "^":
			return "▲"
		case ">":
			return "▶"
		case "v":
			return "▼"
		case "<":
			return "◀"
		}
	}
	return icon
}

func (m *model) initMapViewport() {
	minLat, maxLat := math.Inf(1), math.Inf(-1)
	minLon, maxLon := math.Inf(1), math.Inf(-1)
	for _, u := range m.snap.Fleet {
		if u.Position.Lat < minLat {
			minLat = u.Position.Lat
		}
		if u.Position.Lat > maxLat {
			maxLat = u.Position.Lat
		}
		if u.Position.Lon < minLon {
			minLon = u.Position.Lon
		}
		if u.Position.Lon > maxLon {
			maxLon = u.Position.Lon
		}
	}
	for _, z := range m.snap.Zones {
		kmPerLat := 111.0
		kmPerLon := 111.0 * math.Cos(z.CenterLat*math.Pi/180)
		latDelta := z.RadiusKM / kmPerLat
		lonDelta := z.RadiusKM / kmPerLon
		if z.CenterLat-latDelta < minLat {
			minLat = z.CenterLat - latDelta
		}
		if z.CenterLat+latDelta > maxLat {
			maxLat = z.CenterLat + latDelta
		}
		if z.CenterLon-lonDelta < minLon {
			minLon = z.CenterLon - lonDelta
		}
		if z.CenterLon+lonDelta > maxLon {
			maxLon = z.CenterLon + lonDelta
		}
	}
	if minLat == math.Inf(1) {
		minLat, maxLat = 0, 1
		minLon, maxLon = 0, 1
	}
	m.mapCenterLat = (maxLat + minLat) / 2
	m.mapCenterLon = (maxLon + minLon) / 2
	m.mapLatSpan = maxLat - minLat
	m.mapLonSpan = maxLon - minLon
	if m.mapLatSpan == 0 {
		m.mapLatSpan = 0.02
	}
	if m.mapLonSpan == 0 {
		m.mapLonSpan = 0.02
	}
	m.mapInitialized = true
}

func (m model) layerVisible(typ string) bool {
	for _, l := range m.layers {
		if l.Type == typ {
			return l.Visible
		}
	}
	return false
}

func (m model) layerParam(typ, key string, def float64) float64 {
	for _, l := range m.layers {
		if l.Type == typ {
			if v, ok := l.Parameters[key]; ok {
				return v
			}
		}
	}
	return def
}

func (m model) renderMap() string {
	width := m.vp.Width
	if width < 1 {
		width = 1
	}
	bottomHeight := lipgloss.Height(m.renderBottom())
	mapHeight := m.height - m.headerHeight - bottomHeight - 4
	if mapHeight < 1 {
		mapHeight = 1
	}
	if len(m.snap.Fleet) == 0 && len(m.snap.Zones) == 0 {
		return "No position data"
	}
	minLat := m.mapCenterLat - m.mapLatSpan/2
	maxLat := m.mapCenterLat + m.mapLatSpan/2
	minLon := m.mapCenterLon - m.mapLonSpan/2
	maxLon := m.mapCenterLon + m.mapLonSpan/2
	lonRange := maxLon - minLon
	grid := make([][]string, mapHeight)
	for i := range grid {
		row := make([]string, width)
		for j := range row {
			row[j] = "."
		}
		grid[i] = row
	}
	if m.layerVisible(config.LayerGraticule) {
		divisions := int(m.layerParam(config.LayerGraticule, "divisions", 4))
		if divisions < 2 {
			divisions = 2
		}
		for i := 1; i < divisions; i++ {
			x := int(float64(width-1) * float64(i) / float64(divisions))
			for y := 0; y < mapHeight; y++ {
				if grid[y][x] == "-" {
					grid[y][x] = "+"
				} else if grid[y][x] == "." {
					grid[y][x] = "|"
				}
			}
			y := int(float64(mapHeight-1) * float64(i) / float64(divisions))
			for x2 := 0; x2 < width; x2++ {
				if grid[y][x2] == "|" {
					grid[y][x2] = "+"
				} else if grid[y][x2] == "." {
					grid[y][x2] = "-"
				}
			}
		}
	}
	if m.layerVisible(config.LayerZones) {
		for zi, z := range m.snap.Zones {
			c := zoneColor(zi)
			x0 := int((z.CenterLon - minLon) / (maxLon - minLon) * float64(width-1))
			y0 := int((maxLat - z.CenterLat) / (maxLat - minLat) * float64(mapHeight-1))
			kmPerLat := 111.0
			kmPerLon := 111.0 * math.Cos(z.CenterLat*math.Pi/180)
			rLat := z.RadiusKM / kmPerLat
			rLon := z.RadiusKM / kmPerLon
			rx := rLon / (maxLon - minLon) * float64(width-1)
			ry := rLat / (maxLat - minLat) * float64(mapHeight-1)
			for deg := 0; deg < 360; deg += 10 {
				rad := float64(deg) * math.Pi / 180
				x := int(float64(x0) + math.Cos(rad)*rx)
				y := int(float64(y0) + math.Sin(rad)*ry)
				if y >= 0 && y < mapHeight && x >= 0 && x < width {
					grid[y][x] = fmt.Sprintf("%s%s%s", c, "o", colorReset)
				}
			}
		}
	}
	if m.layerVisible(config.LayerUAVs) {
		for _, u := range m.snap.Fleet {
			x := int((u.Position.Lon - minLon) / (maxLon - minLon) * float64(width-1))
			y := int((maxLat - u.Position.Lat) / (maxLat - minLat) * float64(mapHeight-1))
			if y < 0 || y >= mapHeight || x < 0 || x >= width {
				continue
			}
			c := colorWhite()
			if _, ok := m.snap.Selection[u.ID]; ok {
				c = colorCyan
			}
			icon := altitudeIcon(u.HeadingDeg, u.Position.Alt)
			bg := batteryBG(u.Battery)
			grid[y][x] = fmt.Sprintf("%s%s%s%s", bg, c, icon, colorReset)
		}
	}
	var b strings.Builder
	b.WriteString(fmt.Sprintf("lat %.5f..%.5f lon %.5f..%.5f N↑\n", maxLat, minLat, minLon, maxLon))
	for _, row := range grid {
		b.WriteString(strings.Join(row, ""))
		b.WriteByte('\n')
	}
	// scale bar from the longitude range at mid latitude
	midLat := (maxLat + minLat) / 2
	kmPerLon := 111.0 * math.Cos(midLat*math.Pi/180)
	kmPerChar := lonRange * kmPerLon / float64(width)
	barChars := int(math.Min(10, float64(width)/3))
	if barChars < 1 {
		barChars = 1
	}
	scaleKM := kmPerChar * float64(barChars)
	b.WriteString(fmt.Sprintf("Scale: |%s| %.0fkm\n", strings.Repeat("-", barChars), scaleKM))
	legendParts := []string{
		fmt.Sprintf("%s^%s=uav %s^%s=selected", colorWhite(), colorReset, colorCyan, colorReset),
		"▲=high_alt ^=low_alt",
		fmt.Sprintf("%s█%s=high_batt %s█%s=med %s█%s=low", bgGreen, colorReset, bgYellow, colorReset, bgRed, colorReset),
		"o=zone",
	}
	for i, l := range m.layers {
		state := "off"
		if l.Visible {
			state = "on"
		}
		legendParts = append(legendParts, fmt.Sprintf("[%d]%s=%s", i+1, l.Label, state))
	}
	b.WriteString(strings.Join(legendParts, " "))
	return strings.TrimRight(b.String(), "\n")
}
