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

var pathCmd = &cobra.Command{
	Use:   "path [browse names...]",
	Short: "Translate a browse path to node IDs",
	Long: `Resolve a sequence of browse names from a starting node into node IDs.

Each argument is one hop along hierarchical references. Arguments of the
form "ns:name" address a browse name in a non-zero namespace.

Examples:
  edgeo-opcua path -e opc.tcp://localhost:4840 Objects Server
  edgeo-opcua path -n "i=85" -r "i=35" Station1 Pump1
  edgeo-opcua path Objects 2:Plant 2:Line4`,
	Args: cobra.MinimumNArgs(1),
	RunE: runPath,
}

var (
	pathStartNode string
	pathRefType   string
	pathInverse   bool
)

func init() {
	pathCmd.Flags().StringVarP(&pathStartNode, "node", "n", "i=84", "Starting node ID (default: Root)")
	pathCmd.Flags().StringVarP(&pathRefType, "ref-type", "r", "i=33", "Reference type to follow (default: HierarchicalReferences)")
	pathCmd.Flags().BoolVar(&pathInverse, "inverse", false, "Follow references in the inverse direction")
}

func runPath(cmd *cobra.Command, args []string) error {
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

	startNode, err := parseNodeID(pathStartNode)
	if err != nil {
		return err
	}
	refType, err := parseNodeID(pathRefType)
	if err != nil {
		return err
	}

	elements := make([]opcua.RelativePathElement, len(args))
	for i, arg := range args {
		name, err := parseTargetName(arg)
		if err != nil {
			return err
		}
		elements[i] = opcua.RelativePathElement{
			ReferenceTypeID: refType,
			IsInverse:       pathInverse,
			IncludeSubtypes: true,
			TargetName:      name,
		}
	}

	results, err := client.TranslateBrowsePaths(ctx, []opcua.BrowsePath{{
		StartingNode: startNode,
		RelativePath: opcua.RelativePath{Elements: elements},
	}})
	if err != nil {
		return fmt.Errorf("translate failed: %w", err)
	}
	if len(results) == 0 {
		return fmt.Errorf("empty translate response")
	}

	result := results[0]
	if result.StatusCode.IsBad() {
		return fmt.Errorf("path not resolved: %s", result.StatusCode.Error())
	}

	fmt.Printf("%d target(s)\n", len(result.Targets))
	for _, target := range result.Targets {
		if target.RemainingPathIndex == opcua.RemainingPathIndexMax {
			fmt.Printf("  %s\n", target.TargetID.NodeID.Text())
		} else {
			fmt.Printf("  %s (on server %d, remaining path from element %d)\n",
				target.TargetID.NodeID.Text(), target.TargetID.ServerIndex, target.RemainingPathIndex)
		}
	}

	return nil
}
