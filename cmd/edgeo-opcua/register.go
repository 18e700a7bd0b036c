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
	"context"
	"fmt"
	"time"

	"github.com/edgeo-automation/opcua-view"
	"github.com/spf13/cobra"
)

var registerCmd = &cobra.Command{
	Use:   "register [node IDs...]",
	Short: "Register node IDs with the server",
	Long: `Register node IDs with the server and print the identifiers the
server hands back for optimized access.

Examples:
  edgeo-opcua register "ns=2;s=Pump1" "ns=2;s=Pump2"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRegister,
}

var registerRelease bool

func init() {
	registerCmd.Flags().BoolVar(&registerRelease, "release", false, "Unregister the node IDs instead")
}

func runRegister(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(timeout)*time.Millisecond)
	defer cancel()

	client, err := connect()
	if err != nil {
		return err
	}
	defer client.Close()

	if err := client.ConnectAndActivateSession(ctx); err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}

	nodeIDs := make([]opcua.NodeID, len(args))
	for i, arg := range args {
		nodeIDs[i], err = parseNodeID(arg)
		if err != nil {
			return err
		}
	}

	if registerRelease {
		if err := client.UnregisterNodes(ctx, nodeIDs); err != nil {
			return fmt.Errorf("unregister failed: %w", err)
		}
		fmt.Printf("Unregistered %d node(s)\n", len(nodeIDs))
		return nil
	}

	registered, err := client.RegisterNodes(ctx, nodeIDs)
	if err != nil {
		return fmt.Errorf("register failed: %w", err)
	}

	for i, id := range registered {
		fmt.Printf("  %s -> %s\n", nodeIDs[i].Text(), id.Text())
	}

	return nil
}
