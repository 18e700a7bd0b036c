// Copyright 2025 Edgeo SCADA
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/edgeo-automation/opcua-view"
)

// parseEndpoint strips the opc.tcp:// scheme and returns host:port.
func parseEndpoint(endpoint string) string {
	addr := strings.TrimPrefix(endpoint, "opc.tcp://")
	if !strings.Contains(addr, ":") {
		addr = fmt.Sprintf("%s:%d", addr, opcua.DefaultPort)
	}
	return addr
}

// parseNodeID parses the "ns=X;i=Y" / "ns=X;s=Name" textual NodeID form.
func parseNodeID(s string) (opcua.NodeID, error) {
	var namespace uint16

	rest := s
	if strings.HasPrefix(rest, "ns=") {
		parts := strings.SplitN(rest, ";", 2)
		if len(parts) != 2 {
			return opcua.NodeID{}, fmt.Errorf("invalid node ID %q", s)
		}
		ns, err := strconv.ParseUint(strings.TrimPrefix(parts[0], "ns="), 10, 16)
		if err != nil {
			return opcua.NodeID{}, fmt.Errorf("invalid namespace in %q: %w", s, err)
		}
		namespace = uint16(ns)
		rest = parts[1]
	}

	switch {
	case strings.HasPrefix(rest, "i="):
		id, err := strconv.ParseUint(strings.TrimPrefix(rest, "i="), 10, 32)
		if err != nil {
			return opcua.NodeID{}, fmt.Errorf("invalid numeric ID in %q: %w", s, err)
		}
		return opcua.NewNumericNodeID(namespace, uint32(id)), nil
	case strings.HasPrefix(rest, "s="):
		return opcua.NewStringNodeID(namespace, strings.TrimPrefix(rest, "s=")), nil
	default:
		return opcua.NodeID{}, fmt.Errorf("invalid node ID %q (expected i=<n> or s=<name>)", s)
	}
}

// parseTargetName parses a browse name argument, optionally prefixed with a
// namespace index as "ns:name".
func parseTargetName(s string) (opcua.QualifiedName, error) {
	if idx := strings.Index(s, ":"); idx > 0 {
		if ns, err := strconv.ParseUint(s[:idx], 10, 16); err == nil {
			return opcua.QualifiedName{NamespaceIndex: uint16(ns), Name: s[idx+1:]}, nil
		}
	}
	if s == "" {
		return opcua.QualifiedName{}, fmt.Errorf("empty browse name")
	}
	return opcua.QualifiedName{Name: s}, nil
}

// parseDirection parses a browse direction flag value.
func parseDirection(s string) (opcua.BrowseDirection, error) {
	switch strings.ToLower(s) {
	case "forward", "":
		return opcua.BrowseDirectionForward, nil
	case "inverse":
		return opcua.BrowseDirectionInverse, nil
	case "both":
		return opcua.BrowseDirectionBoth, nil
	default:
		return 0, fmt.Errorf("unknown browse direction: %s", s)
	}
}

// connect creates a client for the configured endpoint and activates a
// session.
func connect() (*opcua.Client, error) {
	addr := parseEndpoint(endpoint)

	client, err := opcua.NewClient(addr,
		opcua.WithEndpoint(endpoint),
		opcua.WithTimeout(time.Duration(timeout)*time.Millisecond),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	return client, nil
}
