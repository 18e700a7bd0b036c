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
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/edgeo-automation/opcua-view"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the OPC UA server",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().String("addr", ":4840", "Listen address")
	serveCmd.Flags().String("cert", "", "Path to server certificate (PEM); generated when empty")
	serveCmd.Flags().Uint32("max-nodes-per-browse", 0, "Max browse descriptions per request (0 = unlimited)")
	serveCmd.Flags().Uint32("max-refs-per-node", 0, "Max references per node before pagination (0 = unlimited)")
	serveCmd.Flags().Uint32("max-nodes-per-translate", 0, "Max browse paths per request (0 = unlimited)")
	serveCmd.Flags().Int("max-continuation-points", opcua.DefaultMaxContinuationPoints, "Continuation-point budget per session")
	serveCmd.Flags().Bool("demo", true, "Populate a demo namespace")
	serveCmd.Flags().Bool("debug", false, "Enable debug logging")

	viper.BindPFlag("addr", serveCmd.Flags().Lookup("addr"))
	viper.BindPFlag("cert", serveCmd.Flags().Lookup("cert"))
	viper.BindPFlag("max-nodes-per-browse", serveCmd.Flags().Lookup("max-nodes-per-browse"))
	viper.BindPFlag("max-refs-per-node", serveCmd.Flags().Lookup("max-refs-per-node"))
	viper.BindPFlag("max-nodes-per-translate", serveCmd.Flags().Lookup("max-nodes-per-translate"))
	viper.BindPFlag("max-continuation-points", serveCmd.Flags().Lookup("max-continuation-points"))
	viper.BindPFlag("demo", serveCmd.Flags().Lookup("demo"))
	viper.BindPFlag("debug", serveCmd.Flags().Lookup("debug"))
}

func runServe(cmd *cobra.Command, args []string) error {
	level := slog.LevelInfo
	if viper.GetBool("debug") {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	store := opcua.NewMemoryStore()
	if viper.GetBool("demo") {
		populateDemoNamespace(store)
	}

	var cert []byte
	if certPath := viper.GetString("cert"); certPath != "" {
		pemData, err := os.ReadFile(certPath)
		if err != nil {
			return fmt.Errorf("failed to read certificate: %w", err)
		}
		_, der, err := opcua.LoadCertificate(pemData)
		if err != nil {
			return err
		}
		cert = der
	} else {
		certPEM, _, err := opcua.GenerateSelfSignedCertificate(opcua.DefaultCertificateOptions())
		if err != nil {
			return err
		}
		_, der, err := opcua.LoadCertificate(certPEM)
		if err != nil {
			return err
		}
		cert = der
	}

	server, err := opcua.NewServer(viper.GetString("addr"), store,
		opcua.WithServerLogger(logger),
		opcua.WithServerCertificate(cert),
		opcua.WithMaxNodesPerBrowse(viper.GetUint32("max-nodes-per-browse")),
		opcua.WithMaxReferencesPerNode(viper.GetUint32("max-refs-per-node")),
		opcua.WithMaxNodesPerTranslate(viper.GetUint32("max-nodes-per-translate")),
		opcua.WithMaxContinuationPoints(viper.GetInt("max-continuation-points")),
	)
	if err != nil {
		return err
	}

	if err := server.Start(); err != nil {
		return err
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	return server.Stop()
}

// populateDemoNamespace adds a small plant model under Objects in
// namespace 2.
func populateDemoNamespace(store *opcua.MemoryStore) {
	objects := opcua.NewNumericNodeID(0, opcua.IDObjectsFolder)
	organizes := opcua.NewNumericNodeID(0, opcua.IDOrganizes)
	hasComponent := opcua.NewNumericNodeID(0, opcua.IDHasComponent)

	plant := opcua.NewStringNodeID(2, "Plant")
	store.AddNode(plant, opcua.NodeClassObject,
		opcua.QualifiedName{NamespaceIndex: 2, Name: "Plant"},
		opcua.LocalizedText{Text: "Plant"})
	store.AddBidirectional(objects, organizes, plant)

	for _, name := range []string{"Pump1", "Pump2", "Valve1", "Conveyor1"} {
		id := opcua.NewStringNodeID(2, name)
		store.AddNode(id, opcua.NodeClassObject,
			opcua.QualifiedName{NamespaceIndex: 2, Name: name},
			opcua.LocalizedText{Text: name})
		store.AddBidirectional(plant, hasComponent, id)
	}
}
