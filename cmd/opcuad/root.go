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
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:   "opcuad",
	Short: "Edgeo OPC UA view-service server",
	Long: `An OPC UA server exposing the view services (Browse, BrowseNext,
TranslateBrowsePathsToNodeIds, RegisterNodes, UnregisterNodes) over an
in-memory address space.

Examples:
  opcuad serve
  opcuad serve --addr :4840 --max-refs-per-node 1000
  OPCUAD_ADDR=:4841 opcuad serve`,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(gencertCmd)
	rootCmd.AddCommand(versionCmd)
}

func initConfig() {
	viper.SetEnvPrefix("OPCUAD")
	viper.AutomaticEnv()
}
