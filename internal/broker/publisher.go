package broker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"thermowatch/internal/apperr"
	"thermowatch/internal/models"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// Publisher writes raw readings to a topic as JSON. It is the producing side
// used by the sensor simulator.
type Publisher struct {
	client  mqtt.Client
	topic   string
	qos     byte
	timeout time.Duration
}

func NewPublisher(client mqtt.Client, topic string, qos byte, timeout time.Duration) *Publisher {
	return &Publisher{client: client, topic: topic, qos: qos, timeout: timeout}
}

type publishedReading struct {
	Value      float64 `json:"value"`
	ObservedAt string  `json:"observed_at"`
}

// Publish sends one reading and waits for the broker acknowledgement.
func (p *Publisher) Publish(ctx context.Context, r models.RawReading) error {
	payload, err := json.Marshal(publishedReading{
		Value:      r.Value,
		ObservedAt: r.ObservedAt.UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		return fmt.Errorf("marshal reading: %w", err)
	}
	if err := waitToken(ctx, p.client.Publish(p.topic, p.qos, false, payload), p.timeout); err != nil {
		return apperr.Transport("publish "+p.topic, err)
	}
	return nil
}

// Dial connects a publishing client that reconnects on its own.
func Dial(ctx context.Context, opts Options) (mqtt.Client, error) {
	co := mqtt.NewClientOptions().
		AddBroker(opts.Broker).
		SetClientID(opts.ClientID).
		SetAutoReconnect(true).
		SetConnectRetry(false)
	if opts.Username != "" {
		co.SetUsername(opts.Username)
		co.SetPassword(opts.Password)
	}
	if opts.ConnectTimeout > 0 {
		co.SetConnectTimeout(opts.ConnectTimeout)
	}
	if opts.KeepAlive > 0 {
		co.SetKeepAlive(opts.KeepAlive)
	}

	client := mqtt.NewClient(co)
	if err := waitToken(ctx, client.Connect(), opts.ConnectTimeout); err != nil {
		client.Disconnect(0)
		return nil, apperr.Transport("connect "+opts.Broker, err)
	}
	return client, nil
}
