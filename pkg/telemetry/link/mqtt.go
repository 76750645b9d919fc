package link

import (
	"bytes"
	"fmt"
	"log"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/itohio/gothermo/pkg/config"
	"github.com/itohio/gothermo/pkg/telemetry"
)

// MQTTMirror republishes telemetry lines to an MQTT topic.
type MQTTMirror struct {
	client mqtt.Client
	topic  string
}

// Ensure MQTTMirror implements Mirror.
var _ telemetry.Mirror = (*MQTTMirror)(nil)

// NewMQTTMirror connects to the broker described by cfg.
func NewMQTTMirror(cfg config.MQTTConfig) (*MQTTMirror, error) {
	opts := mqtt.NewClientOptions().AddBroker(cfg.Server).SetClientID(cfg.ClientID)
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
	}
	if cfg.Password != "" {
		opts.SetPassword(cfg.Password)
	}
	client := mqtt.NewClient(opts)
	token := client.Connect()
	if token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("mqtt connect: %w", token.Error())
	}
	return &MQTTMirror{client: client, topic: cfg.Topic}, nil
}

// Publish sends the line without its line terminator. It does not wait
// for the broker: it is called from the timer handler.
func (m *MQTTMirror) Publish(line []byte) error {
	if m.client == nil {
		return fmt.Errorf("mqtt client not connected")
	}
	payload := bytes.TrimRight(line, "\r\n")
	token := m.client.Publish(m.topic, 0, false, append([]byte(nil), payload...))
	go func() {
		if token.Wait() && token.Error() != nil {
			log.Printf("mqtt publish error: %v", token.Error())
		}
	}()
	return nil
}

// Close disconnects from the broker.
func (m *MQTTMirror) Close() error {
	if m.client != nil {
		m.client.Disconnect(250)
	}
	return nil
}
