package session

import (
	"fmt"
	"strconv"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
)

const (
	// TopicReadings carries outbound flow readings.
	TopicReadings = "flow/sensor/readings"
	// TopicCommands carries inbound collector messages.
	TopicCommands = "flow/sensor/commands"

	mqttConnectTimeout = 10 * time.Second
	mqttSendTimeout    = 5 * time.Second
	mqttInboundDepth   = 16
)

// MQTTChannel is a Channel over an MQTT broker, for deployments where the
// collector ingests from a broker instead of exposing a WebSocket path.
// Readings go to TopicReadings; inbound messages arrive on TopicCommands.
type MQTTChannel struct {
	client   paho.Client
	inbound  chan string
	callback func(string)
}

// NewMQTTChannel creates an unconnected MQTT channel.
func NewMQTTChannel() *MQTTChannel {
	return &MQTTChannel{
		inbound: make(chan string, mqttInboundDepth),
	}
}

// Connect dials the broker at host:port and subscribes to the command
// topic. The path argument is unused; topics are fixed.
func (c *MQTTChannel) Connect(host string, port int, path string) error {
	opts := paho.NewClientOptions().
		AddBroker("tcp://" + host + ":" + strconv.Itoa(port)).
		SetClientID("flow-monitor").
		SetAutoReconnect(true)

	client := paho.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(mqttConnectTimeout) {
		return fmt.Errorf("connection timeout")
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("connect to broker: %w", err)
	}

	sub := client.Subscribe(TopicCommands, 0, func(_ paho.Client, msg paho.Message) {
		select {
		case c.inbound <- string(msg.Payload()):
		default:
			// Inbound buffer full between Polls; drop.
		}
	})
	if !sub.WaitTimeout(mqttConnectTimeout) {
		client.Disconnect(250)
		return fmt.Errorf("subscribe timeout")
	}
	if err := sub.Error(); err != nil {
		client.Disconnect(250)
		return fmt.Errorf("subscribe %s: %w", TopicCommands, err)
	}

	c.client = client
	return nil
}

// Send publishes one payload to the readings topic at QoS 0 (at-most-once,
// matching the best-effort delivery policy).
func (c *MQTTChannel) Send(payload []byte) error {
	if c.client == nil || !c.client.IsConnected() {
		return fmt.Errorf("not connected")
	}
	token := c.client.Publish(TopicReadings, 0, false, payload)
	if !token.WaitTimeout(mqttSendTimeout) {
		return fmt.Errorf("publish timeout")
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish: %w", err)
	}
	return nil
}

// Poll dispatches any buffered inbound messages to the callback.
func (c *MQTTChannel) Poll() {
	for {
		select {
		case msg := <-c.inbound:
			if c.callback != nil {
				c.callback(msg)
			}
		default:
			return
		}
	}
}

// OnMessage registers the inbound-message callback.
func (c *MQTTChannel) OnMessage(cb func(string)) {
	c.callback = cb
}

// IsConnected reports channel liveness.
func (c *MQTTChannel) IsConnected() bool {
	return c.client != nil && c.client.IsConnected()
}

// Close disconnects from the broker.
func (c *MQTTChannel) Close() error {
	if c.client == nil {
		return nil
	}
	c.client.Disconnect(1000) // 1 second timeout
	return nil
}
