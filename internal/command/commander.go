// Package command publishes fire-and-forget fleet commands against the
// current selection. There is no retry or ack tracking; acknowledgment is the
// fleet gateway's concern.
package command

import (
	"fmt"
	"log/slog"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"

	"droneops-console/internal/uavid"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Command type identifiers understood by the fleet gateway.
const (
	TypeTakeoff    = "takeoff"
	TypeLand       = "land"
	TypeReturnHome = "return_home"
)

// Message is the wire format of one command. Targets are global object
// identifiers; the gateway ignores namespaces other than "uav:".
type Message struct {
	CommandID string    `json:"command_id"`
	Type      string    `json:"type"`
	ObjectIDs []string  `json:"object_ids"`
	IssuedAt  time.Time `json:"issued_at"`
}

// UAVIDs returns the UAV identifiers targeted by the message.
func (m Message) UAVIDs() []string {
	return uavid.FilterUAVIDs(m.ObjectIDs)
}

// Publisher is the slice of mqtt.Client the commander needs.
type Publisher interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
}

// Commander serializes and publishes commands to the command topic.
type Commander struct {
	pub   Publisher
	topic string
	log   *slog.Logger
	now   func() time.Time
}

// New creates a commander publishing to topic.
func New(pub Publisher, topic string, logger *slog.Logger) *Commander {
	return &Commander{pub: pub, topic: topic, log: logger, now: time.Now}
}

// Takeoff requests takeoff for the given UAVs.
func (c *Commander) Takeoff(ids []string) error { return c.send(TypeTakeoff, ids) }

// Land requests landing for the given UAVs.
func (c *Commander) Land(ids []string) error { return c.send(TypeLand, ids) }

// ReturnHome requests return-to-home for the given UAVs.
func (c *Commander) ReturnHome(ids []string) error { return c.send(TypeReturnHome, ids) }

func (c *Commander) send(typ string, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	objectIDs := make([]string, len(ids))
	for i, id := range ids {
		objectIDs[i] = uavid.GlobalID(id)
	}
	msg := Message{
		CommandID: uuid.New().String(),
		Type:      typ,
		ObjectIDs: objectIDs,
		IssuedAt:  c.now(),
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encode %s command: %w", typ, err)
	}
	c.pub.Publish(c.topic, 0, false, payload)
	c.log.Info("command published", "type", typ, "uavs", len(ids), "command_id", msg.CommandID)
	return nil
}

// Discard is a commander for offline sessions (replay); it logs what would
// have been sent and drops it.
type Discard struct {
	Log *slog.Logger
}

// Takeoff logs and drops the command.
func (d Discard) Takeoff(ids []string) error { return d.drop(TypeTakeoff, ids) }

// Land logs and drops the command.
func (d Discard) Land(ids []string) error { return d.drop(TypeLand, ids) }

// ReturnHome logs and drops the command.
func (d Discard) ReturnHome(ids []string) error { return d.drop(TypeReturnHome, ids) }

func (d Discard) drop(typ string, ids []string) error {
	if d.Log != nil {
		d.Log.Info("offline session, command dropped", "type", typ, "uavs", len(ids))
	}
	return nil
}
