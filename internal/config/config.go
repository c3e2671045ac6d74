// YAML config loader with CUE validation integration
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Layer type identifiers for the map rendering surface.
const (
	LayerUAVs      = "uavs"
	LayerZones     = "zones"
	LayerGraticule = "graticule"
)

// List layout identifiers.
const (
	LayoutList = "list"
	LayoutGrid = "grid"
)

// MQTT holds broker connectivity for the telemetry feed and command channel.
type MQTT struct {
	Broker         string `yaml:"broker"`
	ClientID       string `yaml:"client_id"`
	TelemetryTopic string `yaml:"telemetry_topic"`
	CommandTopic   string `yaml:"command_topic"`
}

// Display holds list layout and labeling preferences.
type Display struct {
	Layout         string `yaml:"layout"`
	ShowMissionIDs bool   `yaml:"show_mission_ids"`
	GridColumns    int    `yaml:"grid_columns"`
}

// Layer configures one map layer; order in the slice is render order and
// determines the hotkey digit that toggles it.
type Layer struct {
	Type       string             `yaml:"type"`
	Label      string             `yaml:"label"`
	Visible    bool               `yaml:"visible"`
	Parameters map[string]float64 `yaml:"parameters,omitempty"`
}

// Zone defines an operational zone drawn on the map.
type Zone struct {
	Name      string  `yaml:"name"`
	CenterLat float64 `yaml:"center_lat"`
	CenterLon float64 `yaml:"center_lon"`
	RadiusKM  float64 `yaml:"radius_km"`
}

// ConsoleConfig is the root configuration for the operator console.
type ConsoleConfig struct {
	MissionSlots int     `yaml:"mission_slots"`
	MQTT         MQTT    `yaml:"mqtt"`
	Display      Display `yaml:"display"`
	Layers       []Layer `yaml:"layers"`
	Zones        []Zone  `yaml:"zones"`
	StatusAddr   string  `yaml:"status_addr"`
}

// Load loads YAML config, validates it against a CUE schema, and applies
// defaults for omitted fields.
func Load(configPath, cueSchemaPath string) (*ConsoleConfig, error) {
	if err := ValidateWithCue(configPath, cueSchemaPath); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}
	var cfg ConsoleConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	if err := cfg.check(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *ConsoleConfig) applyDefaults() {
	if c.MissionSlots == 0 {
		c.MissionSlots = 10
	}
	if c.Display.Layout == "" {
		c.Display.Layout = LayoutList
	}
	if c.Display.GridColumns == 0 {
		c.Display.GridColumns = 5
	}
	if c.MQTT.ClientID == "" {
		c.MQTT.ClientID = "droneops-console"
	}
	if c.MQTT.TelemetryTopic == "" {
		c.MQTT.TelemetryTopic = "fleet/telemetry"
	}
	if c.MQTT.CommandTopic == "" {
		c.MQTT.CommandTopic = "fleet/commands"
	}
	if len(c.Layers) == 0 {
		c.Layers = []Layer{
			{Type: LayerGraticule, Label: "Graticule", Visible: true},
			{Type: LayerZones, Label: "Zones", Visible: true},
			{Type: LayerUAVs, Label: "UAVs", Visible: true},
		}
	}
}

func (c *ConsoleConfig) check() error {
	if c.MissionSlots < 0 {
		return fmt.Errorf("mission_slots must not be negative, got %d", c.MissionSlots)
	}
	switch c.Display.Layout {
	case LayoutList, LayoutGrid:
	default:
		return fmt.Errorf("unknown layout %q", c.Display.Layout)
	}
	for _, l := range c.Layers {
		switch l.Type {
		case LayerUAVs, LayerZones, LayerGraticule:
		default:
			return fmt.Errorf("unknown layer type %q", l.Type)
		}
	}
	for _, z := range c.Zones {
		if z.RadiusKM <= 0 {
			return fmt.Errorf("zone %q has non-positive radius", z.Name)
		}
	}
	return nil
}
