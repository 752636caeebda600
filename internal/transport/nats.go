// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-sparkplug-node.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package transport

import (
	"context"
	"fmt"
	"sync"

	cclog "github.com/ClusterCockpit/cc-lib/v2/ccLogger"
	"github.com/nats-io/nats.go"
)

// NATSClient is a Publisher/Connector backed by a NATS connection. It
// demonstrates the pluggable-transport seam pkg/spnode leaves external
// without implementing an MQTT client: NATS subjects stand in for
// Sparkplug MQTT topics in local test and demo wiring. A production
// deployment plugs a real Sparkplug-aware MQTT client in against the
// same Publisher/Connector interfaces.
//
// NATS has no native last-will concept, unlike MQTT. NATSClient
// approximates one: the death topic/payload given to Connect are
// published by this client's own disconnect handler the moment the
// underlying connection reports a disconnect, rather than by the
// broker on behalf of a vanished client. A subscriber watching for a
// node's NDEATH therefore only sees it if this process is still able
// to reach the broker at disconnect time — a real MQTT broker's LWT
// guarantee (delivered even if the client vanished ungracefully) does
// not carry over to this adapter.
type NATSClient struct {
	url           string
	subjectPrefix string

	mu            sync.Mutex
	conn          *nats.Conn
	subscriptions []*nats.Subscription
	deathTopic    string
	deathPayload  []byte
}

// NewNATSClient constructs a client for the given broker URL. subjectPrefix
// is prepended to every topic passed to Publish/Subscribe, letting several
// node identities share one NATS deployment without subject collisions.
func NewNATSClient(url, subjectPrefix string) *NATSClient {
	return &NATSClient{url: url, subjectPrefix: subjectPrefix}
}

func (c *NATSClient) subject(topic string) string {
	return c.subjectPrefix + topic
}

// Connect dials the broker. deathPayload is published on this subject
// the next time the connection reports a disconnect (see the NATSClient
// doc comment for how this differs from a genuine MQTT last will).
func (c *NATSClient) Connect(ctx context.Context, deathTopic string, deathPayload []byte) error {
	c.mu.Lock()
	c.deathTopic = c.subject(deathTopic)
	c.deathPayload = deathPayload
	c.mu.Unlock()

	opts := []nats.Option{
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			if err != nil {
				cclog.Warnf("transport: NATS disconnected: %v", err)
			}
			c.publishDeath(nc)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			cclog.Infof("transport: NATS reconnected to %s", nc.ConnectedUrl())
		}),
		nats.ErrorHandler(func(_ *nats.Conn, _ *nats.Subscription, err error) {
			cclog.Errorf("transport: NATS error: %v", err)
		}),
	}

	nc, err := nats.Connect(c.url, opts...)
	if err != nil {
		return fmt.Errorf("transport: NATS connect failed: %w", err)
	}
	cclog.Infof("transport: NATS connected to %s", c.url)

	c.mu.Lock()
	c.conn = nc
	c.mu.Unlock()
	return nil
}

func (c *NATSClient) publishDeath(nc *nats.Conn) {
	c.mu.Lock()
	topic, payload := c.deathTopic, c.deathPayload
	c.mu.Unlock()
	if topic == "" || nc == nil {
		return
	}
	if err := nc.Publish(topic, payload); err != nil {
		cclog.Warnf("transport: publishing death message to %q failed: %v", topic, err)
	}
}

// Connected reports whether the client currently believes it has a
// live connection to the broker.
func (c *NATSClient) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn != nil && c.conn.IsConnected()
}

// Publish sends payload on topic, prefixed by subjectPrefix.
func (c *NATSClient) Publish(topic string, payload []byte) error {
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()
	if conn == nil {
		return fmt.Errorf("transport: not connected")
	}
	if err := conn.Publish(c.subject(topic), payload); err != nil {
		return fmt.Errorf("transport: publish to %q failed: %w", topic, err)
	}
	return nil
}

// Subscribe registers handler for every message delivered to topic
// (prefixed by subjectPrefix), typically a node's NCMD subject.
func (c *NATSClient) Subscribe(topic string, handler CommandHandler) error {
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()
	if conn == nil {
		return fmt.Errorf("transport: not connected")
	}

	sub, err := conn.Subscribe(c.subject(topic), func(msg *nats.Msg) {
		handler(msg.Data)
	})
	if err != nil {
		return fmt.Errorf("transport: subscribe to %q failed: %w", topic, err)
	}

	c.mu.Lock()
	c.subscriptions = append(c.subscriptions, sub)
	c.mu.Unlock()
	cclog.Infof("transport: NATS subscribed to %q", c.subject(topic))
	return nil
}

// Close unsubscribes everything and closes the connection.
func (c *NATSClient) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, sub := range c.subscriptions {
		if err := sub.Unsubscribe(); err != nil {
			cclog.Warnf("transport: unsubscribe failed: %v", err)
		}
	}
	c.subscriptions = nil

	if c.conn != nil {
		c.conn.Close()
		cclog.Info("transport: NATS connection closed")
	}
}

var (
	_ Publisher = (*NATSClient)(nil)
	_ Connector = (*NATSClient)(nil)
)
