package mqtt

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"github.com/kilianp07/powerplan/core/events"
	coremon "github.com/kilianp07/powerplan/core/monitoring"
	coremqtt "github.com/kilianp07/powerplan/core/mqtt"
	"github.com/kilianp07/powerplan/infra/logger"
)

// Config defines the connection parameters for the Paho MQTT client.
type Config struct {
	Enabled     bool        `json:"enabled"`
	Broker      string      `json:"broker"`
	ClientID    string      `json:"client_id"`
	Username    string      `json:"username"`
	Password    string      `json:"password"`
	TopicPrefix string      `json:"topic_prefix"`
	QoS         byte        `json:"qos"`
	Retain      bool        `json:"retain"`
	UseTLS      bool        `json:"use_tls"`
	ClientCert  string      `json:"client_cert"`
	ClientKey   string      `json:"client_key"`
	CABundle    string      `json:"ca_bundle"`
	MaxRetries  int         `json:"max_retries"`
	BackoffMS   int         `json:"backoff_ms"`
	TLSConfig   *tls.Config `json:"-"`
}

func (c *Config) SetDefaults() {
	if c.ClientID == "" {
		c.ClientID = "powerplan-" + uuid.NewString()[:8]
	}
	if c.TopicPrefix == "" {
		c.TopicPrefix = "powerplan"
	}
	c.TopicPrefix = strings.TrimSuffix(c.TopicPrefix, "/")
	if c.MaxRetries <= 0 {
		c.MaxRetries = 3
	}
	if c.BackoffMS <= 0 {
		c.BackoffMS = 100
	}
}

func (c Config) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.Broker == "" {
		return fmt.Errorf("mqtt.broker required when mqtt is enabled")
	}
	if c.QoS > 2 {
		return fmt.Errorf("mqtt.qos %d invalid", c.QoS)
	}
	return nil
}

// StatusTopic carries the retained online/offline state of the publisher.
func (c Config) StatusTopic() string { return c.TopicPrefix + "/status" }

// PlanTopic receives every computed plan.
func (c Config) PlanTopic() string { return c.TopicPrefix + "/plan" }

// SetpointTopic receives the setpoint of one plant.
func (c Config) SetpointTopic(plant string) string {
	return c.TopicPrefix + "/plant/" + topicSegment(plant) + "/setpoint"
}

// topicSegment replaces the characters MQTT reserves for levels and wildcards.
func topicSegment(s string) string {
	return strings.NewReplacer("/", "_", "+", "_", "#", "_").Replace(s)
}

type pahoClient interface {
	IsConnected() bool
	Connect() paho.Token
	Disconnect(quiesce uint)
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
}

var newMQTTClient = func(opts *paho.ClientOptions) pahoClient {
	return paho.NewClient(opts)
}

// PahoPublisher publishes production plans and plant setpoints with the
// Eclipse Paho client.
type PahoPublisher struct {
	cli     pahoClient
	cfg     Config
	backoff time.Duration
	log     logger.Logger
}

var _ coremqtt.PlanPublisher = (*PahoPublisher)(nil)

// NewPahoPublisher connects to the broker and announces the publisher as
// online on the status topic. The broker publishes "offline" there when the
// connection drops.
func NewPahoPublisher(cfg Config) (*PahoPublisher, error) {
	cfg.SetDefaults()
	opts, err := NewClientOptions(cfg)
	if err != nil {
		return nil, err
	}
	log := logger.New("mqtt_publisher")
	p := &PahoPublisher{cfg: cfg, backoff: time.Duration(cfg.BackoffMS) * time.Millisecond, log: log}

	opts.OnConnect = func(c paho.Client) {
		log.Infof("MQTT connected to %s", cfg.Broker)
		if t := c.Publish(cfg.StatusTopic(), cfg.QoS, true, "online"); t.Wait() && t.Error() != nil {
			log.Errorf("status publish error: %v", t.Error())
		}
	}
	opts.OnConnectionLost = func(_ paho.Client, err error) {
		log.Errorf("connection lost: %v", err)
	}
	opts.OnReconnecting = func(_ paho.Client, _ *paho.ClientOptions) {
		log.Warnf("reconnecting to MQTT broker")
	}
	c := newMQTTClient(opts)
	if token := c.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("mqtt connect %s: %w", cfg.Broker, token.Error())
	}
	p.cli = c
	return p, nil
}

// NewClientOptions builds mqtt client options from Config.
func NewClientOptions(cfg Config) (*paho.ClientOptions, error) {
	opts := paho.NewClientOptions().AddBroker(cfg.Broker).SetClientID(cfg.ClientID)
	opts.AutoReconnect = true
	opts.SetConnectTimeout(10 * time.Second)
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
	}
	if cfg.Password != "" {
		opts.SetPassword(cfg.Password)
	}
	if cfg.UseTLS {
		tlsCfg, err := cfg.LoadTLSConfig()
		if err != nil {
			return nil, err
		}
		opts.SetTLSConfig(tlsCfg)
	}
	if cfg.TopicPrefix != "" {
		opts.SetWill(cfg.StatusTopic(), "offline", cfg.QoS, true)
	}
	return opts, nil
}

// LoadTLSConfig loads the TLS configuration from the file paths in the config.
func (c Config) LoadTLSConfig() (*tls.Config, error) {
	if c.TLSConfig != nil {
		return c.TLSConfig, nil
	}
	if c.ClientCert == "" || c.ClientKey == "" || c.CABundle == "" {
		return nil, fmt.Errorf("tls config requires client_cert, client_key and ca_bundle")
	}
	cert, err := tls.LoadX509KeyPair(c.ClientCert, c.ClientKey)
	if err != nil {
		return nil, fmt.Errorf("load cert: %w", err)
	}
	caBytes, err := os.ReadFile(c.CABundle)
	if err != nil {
		return nil, fmt.Errorf("read ca: %w", err)
	}
	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(caBytes) {
		return nil, fmt.Errorf("no certificate found in %s", c.CABundle)
	}
	return &tls.Config{Certificates: []tls.Certificate{cert}, RootCAs: pool, MinVersion: tls.VersionTLS12}, nil
}

// PlanMessage is the payload published on the plan topic.
type PlanMessage struct {
	PlanID    string          `json:"plan_id"`
	Timestamp int64           `json:"timestamp"`
	Load      float64         `json:"load"`
	Strategy  string          `json:"strategy"`
	Balanced  bool            `json:"balanced"`
	Residual  float64         `json:"residual"`
	Cost      float64         `json:"cost"`
	Plan      json.RawMessage `json:"plan"`
}

// SetpointMessage is the payload published on a plant setpoint topic.
type SetpointMessage struct {
	PlanID    string  `json:"plan_id"`
	Plant     string  `json:"plant"`
	P         float64 `json:"p"`
	Timestamp int64   `json:"timestamp"`
}

// PublishPlan publishes the plan summary, then one setpoint per plant when
// the plan is balanced. Unbalanced plans are announced but never sent as
// setpoints.
func (p *PahoPublisher) PublishPlan(ctx context.Context, ev events.PlanEvent) error {
	r := ev.Result
	plan, err := json.Marshal(r.Plan)
	if err != nil {
		return err
	}
	ts := r.Timestamp.UnixMilli()
	msg := PlanMessage{
		PlanID:    r.ID,
		Timestamp: ts,
		Load:      r.Load,
		Strategy:  r.Strategy,
		Balanced:  ev.Err == nil && r.Balanced(),
		Residual:  r.Residual,
		Cost:      r.Cost,
		Plan:      plan,
	}
	if err := p.publishJSON(ctx, p.cfg.PlanTopic(), msg); err != nil {
		p.capture(err, r.ID)
		return err
	}
	if !msg.Balanced {
		p.log.Warnf("plan %s unbalanced by %.1f MW; setpoints not published", r.ID, r.Residual)
		return nil
	}
	for _, a := range r.Plan {
		sp := SetpointMessage{PlanID: r.ID, Plant: a.Name, P: a.P, Timestamp: ts}
		if err := p.publishJSON(ctx, p.cfg.SetpointTopic(a.Name), sp); err != nil {
			p.capture(err, r.ID)
			return err
		}
	}
	p.log.Infof("published plan %s with %d setpoints", r.ID, len(r.Plan))
	return nil
}

func (p *PahoPublisher) publishJSON(ctx context.Context, topic string, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return err
	}
	var publishErr error
	for attempt := 0; attempt <= p.cfg.MaxRetries; attempt++ {
		token := p.cli.Publish(topic, p.cfg.QoS, p.cfg.Retain, payload)
		token.Wait()
		publishErr = token.Error()
		if publishErr == nil {
			return nil
		}
		p.log.Errorf("publish %s attempt %d failed: %v", topic, attempt+1, publishErr)
		if attempt == p.cfg.MaxRetries {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(p.backoff * time.Duration(1<<attempt)):
		}
	}
	return fmt.Errorf("%w on %s: %w", coremqtt.ErrPublishFailed, topic, publishErr)
}

func (p *PahoPublisher) capture(err error, planID string) {
	coremon.CaptureException(err, map[string]string{"module": "mqtt", "plan_id": planID})
}

// Close marks the publisher offline and disconnects.
func (p *PahoPublisher) Close() {
	if p.cli == nil || !p.cli.IsConnected() {
		return
	}
	if t := p.cli.Publish(p.cfg.StatusTopic(), p.cfg.QoS, true, "offline"); t.WaitTimeout(time.Second) && t.Error() != nil {
		p.log.Warnf("status publish error: %v", t.Error())
	}
	p.cli.Disconnect(250)
}
