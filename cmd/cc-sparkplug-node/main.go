// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-sparkplug-node.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	cclog "github.com/ClusterCockpit/cc-lib/v2/ccLogger"
	"github.com/ClusterCockpit/cc-sparkplug-node/internal/config"
	"github.com/ClusterCockpit/cc-sparkplug-node/internal/registry"
	"github.com/ClusterCockpit/cc-sparkplug-node/internal/transport"
	"github.com/ClusterCockpit/cc-sparkplug-node/pkg/spnode"
	"github.com/ClusterCockpit/cc-sparkplug-node/pkg/sptopic"
	"github.com/go-co-op/gocron/v2"
	"github.com/google/gops/agent"
)

func main() {
	var flagConfigFile string
	var flagGroupID, flagNodeID string
	var flagGops bool
	flag.StringVar(&flagConfigFile, "config", "./config.json", "Overwrite the default node configuration with the contents of `config.json`")
	flag.StringVar(&flagGroupID, "group", "", "Overwrite the configured Sparkplug group id")
	flag.StringVar(&flagNodeID, "node", "", "Overwrite the configured Sparkplug node id (mutually exclusive with the config file's 'nodes' range)")
	flag.BoolVar(&flagGops, "gops", false, "Listen via github.com/google/gops/agent (for debugging)")
	flag.Parse()

	if flagGops {
		if err := agent.Listen(agent.Options{}); err != nil {
			cclog.Fatalf("gops/agent.Listen failed: %s", err.Error())
		}
	}

	config.Init(flagConfigFile)

	if flagGroupID != "" {
		config.Keys.GroupID = flagGroupID
	}
	if flagNodeID != "" {
		config.Keys.NodeID = flagNodeID
		config.Keys.Nodes = ""
	}

	nodeIDs, err := config.ResolveNodeIDs()
	if err != nil {
		cclog.Fatalf("main: %s", err.Error())
	}

	scheduler, err := gocron.NewScheduler()
	if err != nil {
		cclog.Fatalf("main: creating scheduler: %s", err.Error())
	}

	runners := make([]*nodeRunner, 0, len(nodeIDs))
	for _, nodeID := range nodeIDs {
		r, err := newNodeRunner(config.Keys, nodeID)
		if err != nil {
			cclog.Fatalf("main: setting up node %q: %s", nodeID, err.Error())
		}
		if err := r.start(scheduler); err != nil {
			cclog.Fatalf("main: starting node %q: %s", nodeID, err.Error())
		}
		runners = append(runners, r)
	}

	scheduler.Start()
	cclog.Infof("main: %d node(s) running, scan rate %dms", len(runners), config.Keys.ScanRateMs)

	var wg sync.WaitGroup
	wg.Add(1)
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		defer wg.Done()
		<-sigs
		cclog.Info("main: shutting down")
		if err := scheduler.Shutdown(); err != nil {
			cclog.Warnf("main: scheduler shutdown: %s", err.Error())
		}
		for _, r := range runners {
			r.close()
		}
	}()

	wg.Wait()
	cclog.Info("main: graceful shutdown complete")
}

// nodeRunner owns one Sparkplug node identity end to end: the tag
// registry, the node state machine and the transport connection it
// publishes through. cmd/cc-sparkplug-node constructs one per resolved
// node id so a single process can drive a configured node range.
type nodeRunner struct {
	node         *spnode.Node
	conn         transport.Connector
	topicNCMD    string
	wasConnected bool
}

func newNodeRunner(cfg config.NodeConfig, nodeID string) (*nodeRunner, error) {
	now := nowMs()

	reg := registry.New()
	reg.SetTimestampFunc(nowMs)

	controls, err := spnode.BootstrapControlTags(reg, cfg.ScanRateMs, now)
	if err != nil {
		return nil, fmt.Errorf("bootstrapping control tags: %w", err)
	}

	node, err := spnode.New(spnode.Config{
		GroupID:             cfg.GroupID,
		NodeID:              nodeID,
		Registry:            reg,
		Controls:            controls,
		TimeFn:              nowMs,
		Sparkplug3Compliant: cfg.Sparkplug3Compliant,
		MaxPayloadBytes:     cfg.MaxPayloadBytes,
	})
	if err != nil {
		return nil, fmt.Errorf("constructing node: %w", err)
	}

	var conn transport.Connector
	switch cfg.Transport.Kind {
	case "nats", "":
		conn = transport.NewNATSClient(cfg.Transport.URL, cfg.Transport.SubjectPrefix)
	default:
		return nil, fmt.Errorf("unknown transport kind %q", cfg.Transport.Kind)
	}

	return &nodeRunner{
		node:         node,
		conn:         conn,
		topicNCMD:    sptopic.Build(cfg.GroupID, nodeID, sptopic.NCMD),
		wasConnected: false,
	}, nil
}

// start connects the node's transport (registering the node's death
// message as the connection's last will), subscribes to its NCMD
// topic, and schedules a recurring tick job on scheduler.
func (r *nodeRunner) start(scheduler gocron.Scheduler) error {
	if state := r.node.MakeNDEATH(); !state.Ready() {
		return fmt.Errorf("building initial NDEATH: %s", state)
	}
	death := r.node.PendingMessage

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := r.conn.Connect(ctx, death.Topic, death.Payload); err != nil {
		return fmt.Errorf("connecting transport: %w", err)
	}
	r.node.OnConnected()
	r.wasConnected = true

	if err := r.conn.Subscribe(r.topicNCMD, func(payload []byte) {
		state := r.node.ProcessNCMD(payload)
		if state == spnode.ProcessNCMDFailed {
			cclog.Warnf("node: NCMD decode failed on %q", r.topicNCMD)
		}
	}); err != nil {
		return fmt.Errorf("subscribing to %q: %w", r.topicNCMD, err)
	}

	_, err := scheduler.NewJob(
		gocron.DurationJob(tickInterval(config.Keys.ScanRateMs)),
		gocron.NewTask(r.tick),
	)
	if err != nil {
		return fmt.Errorf("scheduling tick job: %w", err)
	}
	return nil
}

// tick drives one pass of the node's state machine and publishes
// whatever PendingMessage it produces, if any. Sequence counters only
// advance once the publish itself succeeds, mirroring pkg/spnode's
// contract that OnPublishNBIRTH/OnPublishNDATA fire on confirmed
// delivery, not on payload construction.
func (r *nodeRunner) tick() {
	connected := r.conn.Connected()
	if connected != r.wasConnected {
		if connected {
			r.node.OnConnected()
		} else {
			r.node.OnDisconnected()
		}
		r.wasConnected = connected
	}

	state := r.node.Tick()
	if !state.Ready() {
		if state != spnode.ScanNotDue && state != spnode.ValuesUnchanged {
			cclog.Warnf("node: tick returned %s", state)
		}
		return
	}

	msg := r.node.PendingMessage
	if err := r.conn.Publish(msg.Topic, msg.Payload); err != nil {
		cclog.Warnf("node: publish to %q failed: %s", msg.Topic, err.Error())
		return
	}

	switch state {
	case spnode.NBIRTHReady, spnode.HistoricalNBIRTHReady:
		r.node.OnPublishNBIRTH()
	case spnode.NDATAReady, spnode.HistoricalNDATAReady:
		r.node.OnPublishNDATA()
	}
}

func (r *nodeRunner) close() {
	r.conn.Close()
}

func tickInterval(scanRateMs int64) time.Duration {
	if scanRateMs <= 0 {
		scanRateMs = 1000
	}
	return time.Duration(scanRateMs) * time.Millisecond
}

func nowMs() uint64 {
	return uint64(time.Now().UnixMilli())
}
