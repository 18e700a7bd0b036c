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

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Browse the OPC UA address space",
	Long: `Browse nodes in the OPC UA server address space.

Examples:
  edgeo-opcua browse -e opc.tcp://localhost:4840
  edgeo-opcua browse -e opc.tcp://localhost:4840 -n "i=85"
  edgeo-opcua browse -e opc.tcp://localhost:4840 -n "ns=2;s=MyNode" -d inverse
  edgeo-opcua browse -n "i=84" --ref-type "i=35" --max-refs 2`,
	RunE: runBrowse,
}

var (
	browseNodeID    string
	browseDirection string
	browseRefType   string
	browseMaxRefs   uint32
)

func init() {
	browseCmd.Flags().StringVarP(&browseNodeID, "node", "n", "i=84", "Node ID to browse from (default: Root)")
	browseCmd.Flags().StringVarP(&browseDirection, "direction", "d", "forward", "Browse direction: forward, inverse, both")
	browseCmd.Flags().StringVar(&browseRefType, "ref-type", "", "Reference type to follow (subtypes included)")
	browseCmd.Flags().Uint32Var(&browseMaxRefs, "max-refs", 0, "Requested max references per node (0 = server decides)")
}

func runBrowse(cmd *cobra.Command, args []string) error {
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

	nodeID, err := parseNodeID(browseNodeID)
	if err != nil {
		return err
	}
	direction, err := parseDirection(browseDirection)
	if err != nil {
		return err
	}

	descr := opcua.BrowseDescription{
		NodeID:          nodeID,
		BrowseDirection: direction,
		IncludeSubtypes: true,
		ResultMask:      opcua.BrowseResultMaskAll,
	}
	if browseRefType != "" {
		refType, err := parseNodeID(browseRefType)
		if err != nil {
			return err
		}
		descr.ReferenceTypeID = refType
	}

	refs, err := client.BrowseAll(ctx, descr, browseMaxRefs)
	if err != nil {
		return fmt.Errorf("browse failed: %w", err)
	}

	fmt.Printf("Node %s: %d reference(s)\n", nodeID.Text(), len(refs))
	for _, ref := range refs {
		dir := "->"
		if !ref.IsForward {
			dir = "<-"
		}
		fmt.Printf("  %s %-24s %-14s %s\n",
			dir, ref.BrowseName.Name, ref.NodeClass, ref.NodeID.NodeID.Text())
	}

	return nil
}
