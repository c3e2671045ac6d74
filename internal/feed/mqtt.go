package feed

import (
	"fmt"
	"log/slog"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"droneops-console/internal/config"
)

// MQTTFeed subscribes to the fleet telemetry topic and forwards decoded rows
// to the sink and any archivers. Archive failures are logged, never fatal.
type MQTTFeed struct {
	client    mqtt.Client
	topic     string
	sink      Sink
	archivers []Archiver
	log       *slog.Logger
}

// NewMQTTFeed prepares a feed; Connect establishes the session.
func NewMQTTFeed(cfg config.MQTT, sink Sink, logger *slog.Logger, archivers ...Archiver) *MQTTFeed {
	f := &MQTTFeed{
		topic:     cfg.TelemetryTopic,
		sink:      sink,
		archivers: archivers,
		log:       logger,
	}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(cfg.Broker)
	opts.SetClientID(fmt.Sprintf("%s-%s", cfg.ClientID, uuid.New().String()[:8]))
	opts.SetKeepAlive(60 * time.Second)
	opts.SetPingTimeout(10 * time.Second)
	opts.SetConnectTimeout(10 * time.Second)
	opts.SetAutoReconnect(true)
	opts.SetMaxReconnectInterval(time.Minute)
	opts.SetOnConnectHandler(f.onConnect)
	opts.SetConnectionLostHandler(f.onConnectionLost)

	f.client = mqtt.NewClient(opts)
	return f
}

// Connect establishes the broker session; the subscription happens in the
// connect handler so it survives reconnects.
func (f *MQTTFeed) Connect() error {
	token := f.client.Connect()
	if token.Wait() && token.Error() != nil {
		return fmt.Errorf("connect to broker: %w", token.Error())
	}
	return nil
}

// Client exposes the underlying MQTT client so the command channel can share
// the session.
func (f *MQTTFeed) Client() mqtt.Client {
	return f.client
}

// Close disconnects from the broker.
func (f *MQTTFeed) Close() {
	f.client.Disconnect(250)
}

func (f *MQTTFeed) onConnect(client mqtt.Client) {
	f.log.Info("telemetry feed connected, subscribing", "topic", f.topic)
	token := client.Subscribe(f.topic, 0, f.handleMessage)
	if token.Wait() && token.Error() != nil {
		f.log.Error("telemetry subscribe failed", "err", token.Error())
	}
}

func (f *MQTTFeed) onConnectionLost(_ mqtt.Client, err error) {
	f.log.Warn("telemetry feed connection lost, reconnecting", "err", err)
}

func (f *MQTTFeed) handleMessage(_ mqtt.Client, msg mqtt.Message) {
	row, err := DecodeRow(msg.Payload())
	if err != nil {
		f.log.Warn("dropping malformed telemetry", "err", err)
		return
	}
	f.sink.ApplyTelemetry(row)
	for _, a := range f.archivers {
		if err := a.Archive(row); err != nil {
			f.log.Warn("telemetry archive failed", "err", err)
		}
	}
}
