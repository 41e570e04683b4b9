package broker

import (
	"context"
	"errors"
	"sync"
	"time"

	"thermowatch/internal/apperr"
	"thermowatch/internal/logger"
	"thermowatch/internal/models"
	"thermowatch/internal/retry"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// disconnectQuiesce is how long paho may flush in-flight work on shutdown, in ms.
const disconnectQuiesce = 250

// sinkTimeout bounds one latest-reading mirror write.
const sinkTimeout = 2 * time.Second

// Options configures the broker session.
type Options struct {
	Broker         string
	ClientID       string
	Username       string
	Password       string
	Topic          string
	QoS            byte
	ConnectTimeout time.Duration
	KeepAlive      time.Duration
	Backoff        retry.ExponentialBackoff
}

// ClientFactory builds a paho client. Replaced in tests.
type ClientFactory func(*mqtt.ClientOptions) mqtt.Client

// StateObserver is told about every connection state transition.
type StateObserver func(ctx context.Context, st models.ConnectionState)

// LatestSink mirrors the most recent raw reading somewhere outside the process.
type LatestSink interface {
	Store(ctx context.Context, r models.RawReading) error
}

type Option func(*Manager)

func WithClientFactory(f ClientFactory) Option { return func(m *Manager) { m.newClient = f } }

func WithObserver(o StateObserver) Option { return func(m *Manager) { m.observer = o } }

func WithLatestSink(s LatestSink) Option { return func(m *Manager) { m.sink = s } }

// Manager owns one MQTT session: it connects, subscribes to a single topic,
// reconnects with backoff after failures and hands every decoded message to
// the Readings channel, in arrival order.
type Manager struct {
	opts      Options
	log       *logger.Logger
	newClient ClientFactory
	observer  StateObserver
	sink      LatestSink
	now       func() time.Time

	out chan models.RawReading

	// sendMu guards closing out against in-flight handler sends.
	sendMu sync.RWMutex
	closed bool

	mu     sync.RWMutex
	state  models.ConnectionState
	latest *models.RawReading
}

func NewManager(opts Options, log *logger.Logger, options ...Option) *Manager {
	if log == nil {
		log = logger.Nop()
	}
	m := &Manager{
		opts:      opts,
		log:       log.With("component", "broker", "topic", opts.Topic),
		newClient: mqtt.NewClient,
		now:       time.Now,
		out:       make(chan models.RawReading),
	}
	m.state = models.ConnectionState{Kind: models.StateDisconnected, Since: m.now().UTC()}
	for _, o := range options {
		o(m)
	}
	if m.opts.Backoff.Logger == nil {
		m.opts.Backoff.Logger = m.log
	}
	return m
}

// Readings is the single-producer stream of decoded messages. It is closed
// when Run returns.
func (m *Manager) Readings() <-chan models.RawReading { return m.out }

// Status returns the current connection state and the last raw reading.
func (m *Manager) Status() models.LiveStatus {
	m.mu.RLock()
	defer m.mu.RUnlock()
	st := models.LiveStatus{Connection: m.state}
	if m.latest != nil {
		r := *m.latest
		st.Latest = &r
	}
	return st
}

// Run keeps the session alive until ctx is cancelled. Connectivity failures
// are reported through Status and retried; they never end Run.
func (m *Manager) Run(ctx context.Context) error {
	defer m.closeOut()

	handler := m.handlerFor(ctx)
	for {
		lost := make(chan error, 1)
		var client mqtt.Client

		err := m.opts.Backoff.Start(ctx, "mqtt_connect", func(ctx context.Context) (bool, error) {
			m.setState(ctx, models.StateConnecting, "")
			c, err := m.connect(ctx, handler, lost)
			if err != nil {
				if ctx.Err() != nil {
					return false, ctx.Err()
				}
				m.setState(ctx, models.StateError, err.Error())
				m.log.Warnw("mqtt_connect_failed", "broker", m.opts.Broker, "err", err)
				return true, err
			}
			client = c
			return false, nil
		})
		if err != nil {
			if ctx.Err() != nil {
				m.setState(context.WithoutCancel(ctx), models.StateDisconnected, "")
				return nil
			}
			// A bounded backoff gave up; start a fresh round.
			continue
		}

		m.setState(ctx, models.StateConnected, "")
		m.log.Infow("mqtt_connected", "broker", m.opts.Broker)

		select {
		case <-ctx.Done():
			client.Disconnect(disconnectQuiesce)
			m.setState(context.WithoutCancel(ctx), models.StateDisconnected, "")
			m.log.Infow("mqtt_disconnected")
			return nil
		case err := <-lost:
			reason := "connection lost"
			if err != nil {
				reason = err.Error()
			}
			m.setState(ctx, models.StateError, reason)
			m.log.Warnw("mqtt_connection_lost", "error", reason)
		}
	}
}

// connect opens a fresh client and subscribes. lost receives the error of a
// later connection drop.
func (m *Manager) connect(ctx context.Context, handler mqtt.MessageHandler, lost chan<- error) (mqtt.Client, error) {
	co := mqtt.NewClientOptions().
		AddBroker(m.opts.Broker).
		SetClientID(m.opts.ClientID).
		SetCleanSession(true).
		SetAutoReconnect(false).
		SetConnectRetry(false).
		SetOrderMatters(true).
		SetDefaultPublishHandler(handler).
		SetConnectionLostHandler(func(_ mqtt.Client, err error) {
			select {
			case lost <- err:
			default:
			}
		})
	if m.opts.Username != "" {
		co.SetUsername(m.opts.Username)
		co.SetPassword(m.opts.Password)
	}
	if m.opts.ConnectTimeout > 0 {
		co.SetConnectTimeout(m.opts.ConnectTimeout)
	}
	if m.opts.KeepAlive > 0 {
		co.SetKeepAlive(m.opts.KeepAlive)
	}

	client := m.newClient(co)
	if err := waitToken(ctx, client.Connect(), m.opts.ConnectTimeout); err != nil {
		client.Disconnect(0)
		return nil, apperr.Transport("connect "+m.opts.Broker, err)
	}
	if err := waitToken(ctx, client.Subscribe(m.opts.Topic, m.opts.QoS, handler), m.opts.ConnectTimeout); err != nil {
		client.Disconnect(0)
		return nil, apperr.Transport("subscribe "+m.opts.Topic, err)
	}
	return client, nil
}

// handlerFor decodes messages for the lifetime of ctx, which is the Run context
// rather than a single connect attempt.
func (m *Manager) handlerFor(ctx context.Context) mqtt.MessageHandler {
	return func(_ mqtt.Client, msg mqtt.Message) {
		raw, err := ParsePayload(msg.Payload(), m.now())
		if err != nil {
			m.log.Warnw("mqtt_payload_dropped", "msg_topic", msg.Topic(), "err", err)
			return
		}

		m.mu.Lock()
		r := raw
		m.latest = &r
		m.mu.Unlock()

		if m.sink != nil {
			sctx, cancel := context.WithTimeout(ctx, sinkTimeout)
			if err := m.sink.Store(sctx, raw); err != nil {
				m.log.Warnw("latest_mirror_failed", "err", err)
			}
			cancel()
		}

		m.deliver(ctx, raw)
	}
}

// deliver blocks until the consumer takes r or ctx ends.
func (m *Manager) deliver(ctx context.Context, r models.RawReading) {
	m.sendMu.RLock()
	defer m.sendMu.RUnlock()
	if m.closed {
		return
	}
	select {
	case m.out <- r:
	case <-ctx.Done():
	}
}

func (m *Manager) closeOut() {
	m.sendMu.Lock()
	defer m.sendMu.Unlock()
	if !m.closed {
		m.closed = true
		close(m.out)
	}
}

func (m *Manager) setState(ctx context.Context, kind models.ConnectionStateKind, reason string) {
	m.mu.Lock()
	if m.state.Kind == kind && m.state.Reason == reason {
		m.mu.Unlock()
		return
	}
	st := models.ConnectionState{Kind: kind, Reason: reason, Since: m.now().UTC()}
	m.state = st
	m.mu.Unlock()

	if m.observer != nil {
		m.observer(ctx, st)
	}
}

var errTokenTimeout = errors.New("timed out waiting for broker")

// waitToken waits for a paho token, honouring ctx and an optional timeout.
func waitToken(ctx context.Context, tok mqtt.Token, timeout time.Duration) error {
	var expire <-chan time.Time
	if timeout > 0 {
		t := time.NewTimer(timeout)
		defer t.Stop()
		expire = t.C
	}
	select {
	case <-tok.Done():
		return tok.Error()
	case <-ctx.Done():
		return ctx.Err()
	case <-expire:
		return errTokenTimeout
	}
}
