// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-sparkplug-node.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package sptopic builds Sparkplug B topic strings. It performs no
// escaping — callers must supply URI-clean group and node identifiers,
// the same contract internal/transport's Publisher expects of any
// subject string it is handed.
package sptopic

// Kind is a Sparkplug message class used in the topic's third segment.
type Kind string

const (
	NBIRTH Kind = "NBIRTH"
	NDATA  Kind = "NDATA"
	NDEATH Kind = "NDEATH"
	NCMD   Kind = "NCMD"
)

const namespace = "spBv1.0"

// Build returns "spBv1.0/<group>/<kind>/<node>".
func Build(group, node string, kind Kind) string {
	return namespace + "/" + group + "/" + string(kind) + "/" + node
}
