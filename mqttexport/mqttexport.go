// Package mqttexport republishes accepted spot announcements onto an MQTT
// broker, mirroring the teacher's MQTT client usage — there ingesting spots
// from PSKReporter's feed — but running in the export direction: every spot
// this node accepts, local or peer-forwarded, becomes an outbound message.
package mqttexport

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"dxnode/node"
)

// Config configures the exporter.
type Config struct {
	Broker   string // e.g. "tcp://localhost:1883"
	ClientID string
	Topic    string
	QoS      byte
	// ConnectTimeout bounds how long Connect waits for the broker.
	ConnectTimeout time.Duration
}

// Message is the JSON payload published for each exported spot.
type Message struct {
	NodeID    string    `json:"node_id"`
	SpotID    string    `json:"spot_id"`
	Time      time.Time `json:"time"`
	FreqKHz   string    `json:"freq_khz"`
	DX        string    `json:"dx"`
	Spotter   string    `json:"spotter"`
	Comment   string    `json:"comment"`
	Origin    string    `json:"origin"`
	Hop       uint32    `json:"hop"`
}

// Exporter owns the MQTT client connection and the subscription feeding it.
type Exporter struct {
	cfg    Config
	nodeID string
	client mqtt.Client
}

// New constructs an Exporter. Connect must be called before Run.
func New(cfg Config, nodeID string) *Exporter {
	if cfg.ConnectTimeout <= 0 {
		cfg.ConnectTimeout = 5 * time.Second
	}
	opts := mqtt.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(cfg.ClientID).
		SetAutoReconnect(true)
	return &Exporter{cfg: cfg, nodeID: nodeID, client: mqtt.NewClient(opts)}
}

// Connect dials the broker and blocks until connected or cfg.ConnectTimeout
// elapses.
func (e *Exporter) Connect() error {
	token := e.client.Connect()
	if !token.WaitTimeout(e.cfg.ConnectTimeout) {
		return fmt.Errorf("mqttexport: connect to %s timed out", e.cfg.Broker)
	}
	return token.Error()
}

// Run consumes sub until its channel closes, publishing each announcement
// as a JSON message on cfg.Topic. Publish failures are logged, not fatal —
// a broker hiccup never tears down the node.
func (e *Exporter) Run(sub *node.Subscription) {
	for ann := range sub.C() {
		s := ann.Spot
		msg := Message{
			NodeID:  e.nodeID,
			SpotID:  s.SpotID.String(),
			Time:    s.Time,
			FreqKHz: s.Freq.ToKHzString(),
			DX:      s.DX.String(),
			Spotter: s.Spotter.String(),
			Comment: s.Comment,
			Origin:  string(s.Origin),
			Hop:     s.Hop,
		}
		payload, err := json.Marshal(msg)
		if err != nil {
			log.Printf("mqttexport: marshal spot %s: %v", msg.SpotID, err)
			continue
		}
		token := e.client.Publish(e.cfg.Topic, e.cfg.QoS, false, payload)
		if !token.WaitTimeout(e.cfg.ConnectTimeout) {
			log.Printf("mqttexport: publish spot %s timed out", msg.SpotID)
			continue
		}
		if err := token.Error(); err != nil {
			log.Printf("mqttexport: publish spot %s: %v", msg.SpotID, err)
		}
	}
}

// Disconnect closes the MQTT connection, waiting up to waitMs for
// in-flight work to drain.
func (e *Exporter) Disconnect(waitMs uint) {
	e.client.Disconnect(waitMs)
}
