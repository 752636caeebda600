// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-sparkplug-node.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package transport provides the outbound delivery seam a
// cmd/cc-sparkplug-node driver hands a Node's pending message to.
// pkg/spnode never imports this package: the core only produces a
// topic/payload pair and leaves delivery to the caller (spec.md §6).
package transport

import "context"

// CommandHandler is invoked for every inbound message on a node's NCMD
// subscription. payload is the raw Sparkplug payload bytes.
type CommandHandler func(payload []byte)

// Publisher delivers one Sparkplug message to its topic and receives
// inbound NCMD messages for a topic pattern. A concrete Publisher
// stands in for an MQTT client's publish/subscribe pair; see the NATS
// implementation in this package for one that can be exercised without
// a Sparkplug-aware MQTT broker.
type Publisher interface {
	// Publish sends payload under topic.
	Publish(topic string, payload []byte) error
	// Subscribe registers handler for every message delivered to topic
	// (which may contain a wildcard in the underlying transport's own
	// syntax).
	Subscribe(topic string, handler CommandHandler) error
	// Close tears down the underlying connection and subscriptions.
	Close()
}

// Connector additionally exposes connect/disconnect lifecycle hooks a
// driver loop can use to feed pkg/spnode.Node.OnConnected/OnDisconnected.
type Connector interface {
	Publisher
	// Connect establishes the underlying connection. deathTopic and
	// deathPayload are registered as a last-will message where the
	// transport supports one natively; where it does not (see the NATS
	// adapter), the implementation publishes the death payload itself
	// once it detects a disconnect.
	Connect(ctx context.Context, deathTopic string, deathPayload []byte) error
	// Connected reports the current connection state.
	Connected() bool
}
