// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-sparkplug-node.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package config

var nodeConfigSchema = `
{
  "type": "object",
  "properties": {
    "groupId": {
      "description": "Sparkplug group id this node publishes under.",
      "type": "string"
    },
    "nodeId": {
      "description": "Sparkplug edge node id. Mutually exclusive with nodes.",
      "type": "string"
    },
    "nodes": {
      "description": "Compact range expression (e.g. 'edge[01-12]') expanding to the node ids one process drives. Mutually exclusive with nodeId.",
      "type": "string"
    },
    "scanRateMs": {
      "description": "Initial Node Control/Scan Rate value in milliseconds.",
      "type": "integer",
      "minimum": 500,
      "maximum": 600000
    },
    "sparkplug3Compliant": {
      "description": "If true, the sequence counter is not reset to 0 on NBIRTH.",
      "type": "boolean"
    },
    "maxPayloadBytes": {
      "description": "Upper bound on a single inbound NCMD payload; encoded payloads are not bounded by it.",
      "type": "integer",
      "minimum": 64
    },
    "transport": {
      "description": "Outbound Publisher configuration.",
      "type": "object",
      "properties": {
        "kind": {
          "type": "string",
          "enum": ["nats"]
        },
        "url": {
          "type": "string"
        },
        "subjectPrefix": {
          "type": "string"
        }
      },
      "required": ["kind", "url"]
    }
  }
}`
