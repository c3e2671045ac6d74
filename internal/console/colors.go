package console

const (
	colorReset   = "\x1b[0m"
	colorRed     = "\x1b[31m"
	colorGreen   = "\x1b[32m"
	colorYellow  = "\x1b[33m"
	colorBlue    = "\x1b[34m"
	colorMagenta = "\x1b[35m"
	colorCyan    = "\x1b[36m"
	colorGray    = "\x1b[90m"

	bgRed    = "\x1b[41m"
	bgGreen  = "\x1b[42m"
	bgYellow = "\x1b[43m"
)

func colorWhite() string { return "\x1b[37m" }

// zonePalette colors zones by their index on the map and in the legend.
var zonePalette = []string{colorRed, colorGreen, colorYellow, colorBlue, colorMagenta, colorCyan}

func zoneColor(idx int) string {
	return zonePalette[idx%len(zonePalette)]
}

func statusColor(status string) string {
	switch status {
	case "failed":
		return colorRed
	case "low_battery":
		return colorYellow
	default:
		return colorGreen
	}
}

func batteryBG(b float64) string {
	switch {
	case b < 25:
		return bgRed
	case b < 75:
		return bgYellow
	default:
		return bgGreen
	}
}
