package render

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// Publisher is the part of mqtt.Client the MQTT sink needs.
type Publisher interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
}

// MQTTOptions configures DialMQTT.
type MQTTOptions struct {
	Broker          string // host:port or a full tcp:// URL
	ClientID        string
	TopicPrefix     string
	QoS             byte
	PublishSpectrum bool
	ConnectTimeout  time.Duration
}

// MQTT publishes decisions as JSON messages under a topic prefix:
// <prefix>/play, <prefix>/overlay and, when enabled, <prefix>/spectrum.
// Publishing never waits for the broker. No error is reported once Close
// has returned.
type MQTT struct {
	pub      Publisher
	client   mqtt.Client
	prefix   string
	qos      byte
	spectrum bool
	onError  func(error)

	mu        sync.Mutex
	published map[string]uint64
	closed    bool
	stop      chan struct{}
	pending   sync.WaitGroup // token waiters
}

type playMessage struct {
	Asset     string    `json:"asset"`
	Timestamp time.Time `json:"timestamp"`
}

type overlayMessage struct {
	ID         string    `json:"id"`
	Kind       string    `json:"kind"`
	Text       string    `json:"text"`
	FontScale  float64   `json:"font_scale"`
	Thickness  int       `json:"thickness"`
	Color      string    `json:"color"`
	X          int       `json:"x"`
	Y          int       `json:"y"`
	DurationMS int64     `json:"duration_ms"`
	Timestamp  time.Time `json:"timestamp"`
}

type spectrumMessage struct {
	Samples   []float64 `json:"samples"`
	Timestamp time.Time `json:"timestamp"`
}

// DialMQTT connects to the broker with auto-reconnect enabled and returns a
// sink publishing through it.
func DialMQTT(opts MQTTOptions, onError func(error)) (*MQTT, error) {
	broker := opts.Broker
	if !strings.Contains(broker, "://") {
		broker = "tcp://" + broker
	}
	timeout := opts.ConnectTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	co := mqtt.NewClientOptions()
	co.AddBroker(broker)
	co.SetClientID(opts.ClientID)
	co.SetAutoReconnect(true)
	co.SetConnectRetryInterval(2 * time.Second)
	co.SetMaxReconnectInterval(30 * time.Second)
	co.OnConnectionLost = func(_ mqtt.Client, err error) {
		if onError != nil {
			onError(fmt.Errorf("render: mqtt connection lost: %w", err))
		}
	}

	client := mqtt.NewClient(co)
	token := client.Connect()
	if !token.WaitTimeout(timeout) {
		return nil, fmt.Errorf("render: mqtt connect %s: timed out after %s", broker, timeout)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("render: mqtt connect %s: %w", broker, err)
	}

	m := NewMQTT(client, opts.TopicPrefix, opts.QoS, opts.PublishSpectrum, onError)
	m.client = client
	return m, nil
}

// NewMQTT wraps an existing publisher.
func NewMQTT(pub Publisher, prefix string, qos byte, spectrum bool, onError func(error)) *MQTT {
	return &MQTT{
		pub:       pub,
		prefix:    strings.TrimSuffix(prefix, "/"),
		qos:       qos,
		spectrum:  spectrum,
		onError:   onError,
		published: make(map[string]uint64),
		stop:      make(chan struct{}),
	}
}

func (m *MQTT) Play(path string) {
	m.publish("play", playMessage{Asset: path, Timestamp: time.Now()})
}

func (m *MQTT) Show(o Overlay) {
	m.publish("overlay", overlayMessage{
		ID:         o.ID,
		Kind:       o.Kind.String(),
		Text:       o.Text,
		FontScale:  o.Style.FontScale,
		Thickness:  o.Style.Thickness,
		Color:      o.Style.Color.Hex(),
		X:          o.Style.X,
		Y:          o.Style.Y,
		DurationMS: o.Duration.Milliseconds(),
		Timestamp:  time.Now(),
	})
}

func (m *MQTT) Spectrum(samples []float64) {
	if !m.spectrum {
		return
	}
	m.publish("spectrum", spectrumMessage{Samples: samples, Timestamp: time.Now()})
}

// Published returns the number of messages handed to the client per topic.
func (m *MQTT) Published() map[string]uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]uint64, len(m.published))
	for k, v := range m.published {
		out[k] = v
	}
	return out
}

// Close stops publishing, disconnects a client created by DialMQTT and waits
// for outstanding token waiters. It is safe to call more than once.
func (m *MQTT) Close() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.closed = true
	close(m.stop)
	m.mu.Unlock()

	if m.client != nil && m.client.IsConnected() {
		m.client.Disconnect(250)
	}
	m.pending.Wait()
}

func (m *MQTT) publish(suffix string, msg any) {
	payload, err := json.Marshal(msg)
	if err != nil {
		m.report(fmt.Errorf("render: marshal %s: %w", suffix, err))
		return
	}

	topic := m.prefix + "/" + suffix

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}
	token := m.pub.Publish(topic, m.qos, false, payload)
	m.published[topic]++

	if m.onError == nil || token == nil {
		return
	}
	m.pending.Add(1)
	go func() {
		defer m.pending.Done()
		select {
		case <-token.Done():
		case <-m.stop:
			return
		}
		if err := token.Error(); err != nil {
			m.report(fmt.Errorf("render: publish %s: %w", topic, err))
		}
	}()
}

func (m *MQTT) report(err error) {
	if m.onError != nil {
		m.onError(err)
	}
}
