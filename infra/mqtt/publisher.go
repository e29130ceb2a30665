// Package mqtt publishes battery telemetry over MQTT. It is the only outward
// push surface of the engine; queries stay purely in-memory.
package mqtt

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"github.com/aau-energy/microgrid/core/model"
	"github.com/aau-energy/microgrid/infra/logger"
)

// Config defines the connection parameters for the telemetry publisher.
type Config struct {
	Enabled     bool   `json:"enabled"`
	Broker      string `json:"broker"`
	ClientID    string `json:"client_id"`
	Username    string `json:"username"`
	Password    string `json:"password"`
	StatusTopic string `json:"status_topic"`
	QoS         byte   `json:"qos"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.ClientID == "" {
		c.ClientID = "microgrid"
	}
	if c.StatusTopic == "" {
		c.StatusTopic = "microgrid/battery/status"
	}
}

// Validate checks mandatory fields when the publisher is enabled.
func (c Config) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.Broker == "" {
		return fmt.Errorf("broker is required when telemetry is enabled")
	}
	if c.QoS > 2 {
		return fmt.Errorf("qos must be 0, 1 or 2, got %d", c.QoS)
	}
	return nil
}

// StatusPublisher pushes battery status updates to interested consumers.
type StatusPublisher interface {
	PublishStatus(status model.BatteryStatus) error
	Close()
}

// statusMessage is the wire format of one telemetry update.
type statusMessage struct {
	MessageID   string    `json:"message_id"`
	SocKWh      float64   `json:"soc_kwh"`
	CapacityKWh float64   `json:"capacity_kwh"`
	SocPct      float64   `json:"soc_pct"`
	AsOf        time.Time `json:"as_of"`
}

type pahoClient interface {
	Connect() paho.Token
	Disconnect(quiesce uint)
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
}

var newMQTTClient = func(opts *paho.ClientOptions) pahoClient {
	return paho.NewClient(opts)
}

// PahoPublisher implements StatusPublisher using Eclipse Paho.
type PahoPublisher struct {
	cli   pahoClient
	topic string
	qos   byte
	log   logger.Logger
}

// NewPahoPublisher connects to the broker. The configured client id gets a
// random suffix so several instances can share a config file.
func NewPahoPublisher(cfg Config) (*PahoPublisher, error) {
	log := logger.New("mqtt-telemetry")
	opts := paho.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(fmt.Sprintf("%s-%s", cfg.ClientID, uuid.NewString()[:8]))
	opts.AutoReconnect = true
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
	}
	if cfg.Password != "" {
		opts.SetPassword(cfg.Password)
	}
	opts.OnConnect = func(paho.Client) {
		log.Infof("MQTT connected")
	}
	opts.OnConnectionLost = func(_ paho.Client, err error) {
		log.Errorf("connection lost: %v", err)
	}
	c := newMQTTClient(opts)
	if token := c.Connect(); token.Wait() && token.Error() != nil {
		return nil, token.Error()
	}
	return &PahoPublisher{cli: c, topic: cfg.StatusTopic, qos: cfg.QoS, log: log}, nil
}

// PublishStatus sends the battery status as a JSON payload.
func (p *PahoPublisher) PublishStatus(status model.BatteryStatus) error {
	msg := statusMessage{
		MessageID:   uuid.NewString(),
		SocKWh:      status.NowSocKWh,
		CapacityKWh: status.CapacityKWh,
		SocPct:      status.SocPct,
		AsOf:        status.AsOf,
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	if token := p.cli.Publish(p.topic, p.qos, false, payload); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	return nil
}

// Close disconnects from the broker.
func (p *PahoPublisher) Close() {
	p.cli.Disconnect(250)
}

// MockPublisher records published statuses for tests.
type MockPublisher struct {
	mu       sync.Mutex
	Statuses []model.BatteryStatus
	Fail     bool
}

// NewMockPublisher creates a new MockPublisher.
func NewMockPublisher() *MockPublisher {
	return &MockPublisher{}
}

// PublishStatus records the status or returns an error if configured to fail.
func (m *MockPublisher) PublishStatus(status model.BatteryStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Fail {
		return fmt.Errorf("publish failed")
	}
	m.Statuses = append(m.Statuses, status)
	return nil
}

// Published returns a copy of the recorded statuses.
func (m *MockPublisher) Published() []model.BatteryStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.BatteryStatus, len(m.Statuses))
	copy(out, m.Statuses)
	return out
}

// Close is a no-op.
func (m *MockPublisher) Close() {}
