// Command dxnoded runs one DX cluster node: user-facing telnet-style
// access, peer-to-peer spot federation, and the optional status/console/
// MQTT-export side channels, wired together per its YAML config file.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"dxnode/config"
	"dxnode/console"
	"dxnode/correction"
	"dxnode/cty"
	"dxnode/filter"
	"dxnode/mqttexport"
	"dxnode/node"
	"dxnode/status"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	configPath := flag.String("config", "config.yaml", "path to the node's YAML config file")
	flag.Parse()

	fmt.Printf("dxnoded v%s starting...\n", Version)

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	var ctyDB *cty.CTYDatabase
	if cfg.CTYFile != "" {
		ctyDB, err = cty.LoadCTYDatabase(cfg.CTYFile)
		if err != nil {
			log.Printf("warning: failed to load CTY database %s: %v", cfg.CTYFile, err)
		}
	}
	lookup := node.NewCTYLookup(ctyDB)

	var corrections *correction.Index
	if cfg.Correction.Enabled {
		corrections = correction.NewIndex(correction.DefaultCapacity)
	}

	builder := node.NewBuilder(cfg.ToNodeConfig())
	builder.Corrections = corrections
	builder.FilterFactory = func() *filter.Filter { return filter.New(lookup) }

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	handle, err := builder.Build(ctx)
	if err != nil {
		log.Fatalf("starting node: %v", err)
	}

	tracker := status.NewTracker()
	go tracker.Watch(handle.Subscribe())

	var statusSrv *status.Server
	if cfg.Status.Addr != "" {
		statusSrv = status.NewServer(cfg.Status.Addr, handle, tracker, handle.PeerDirectory())
		go func() {
			if err := statusSrv.ListenAndServe(); err != nil {
				log.Printf("status server: %v", err)
			}
		}()
		fmt.Printf("status endpoint listening on %s\n", cfg.Status.Addr)
	}

	var exporter *mqttexport.Exporter
	if cfg.MQTT.Enabled {
		exporter = mqttexport.New(mqttexport.Config{
			Broker:   cfg.MQTT.Broker,
			ClientID: "dxnoded-" + cfg.NodeID,
			Topic:    cfg.MQTT.Topic,
			QoS:      1,
		}, cfg.NodeID)
		if err := exporter.Connect(); err != nil {
			log.Printf("warning: mqtt export disabled, connect failed: %v", err)
			exporter = nil
		} else {
			go exporter.Run(handle.Subscribe())
			fmt.Printf("MQTT export active: broker=%s topic=%s\n", cfg.MQTT.Broker, cfg.MQTT.Topic)
		}
	}

	fmt.Printf("node %s: user listener %s", cfg.NodeID, handle.UserAddr())
	if addr := handle.PeerAddr(); addr != nil {
		fmt.Printf(", peer listener %s", addr)
	}
	fmt.Println()
	fmt.Println("Cluster is running. Press Ctrl+C to stop.")

	if cfg.Console.Enabled {
		dash := console.NewDashboard(handle, tracker, handle.PeerDirectory())
		go func() {
			if err := dash.Run(); err != nil {
				log.Printf("console dashboard exited: %v", err)
			}
			cancel()
		}()
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	select {
	case sig := <-sigCh:
		fmt.Printf("\nreceived signal: %v, shutting down...\n", sig)
	case <-ctx.Done():
		fmt.Println("\nconsole requested shutdown...")
	}

	if exporter != nil {
		exporter.Disconnect(250)
	}
	if statusSrv != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 2*time.Second)
		statusSrv.Shutdown(shutdownCtx)
		shutdownCancel()
	}
	handle.Shutdown()
	log.Println("dxnoded stopped")
}
