// The simulator stands in for the systems downstream of the scheduler:
// the chat gateway that acknowledges direct messages and the staff
// directory the identity connector polls. It is used for rehearsals and
// broker-level integration runs.
package main

import (
	"context"
	"flag"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"
)

func main() {
	cfg := parseFlags()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}
	if !cfg.Verbose {
		log.SetOutput(io.Discard)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var wg sync.WaitGroup

	if cfg.Broker != "" {
		strat := RandomAck{Delay: cfg.AckLatency, DropRate: cfg.DropRate}
		gw, err := NewGateway(cfg, strat)
		if err != nil {
			log.Fatalf("gateway: %v", err)
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := gw.Run(ctx); err != nil {
				log.Printf("gateway: %v", err)
			}
		}()
	}

	if cfg.DirectoryAddr != "" {
		members, err := loadMembers(cfg)
		if err != nil {
			log.Fatalf("roster: %v", err)
		}
		srv := &http.Server{
			Addr:              cfg.DirectoryAddr,
			Handler:           directoryHandler(members),
			ReadHeaderTimeout: 5 * time.Second,
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
		wg.Add(1)
		go func() {
			defer wg.Done()
			log.Printf("directory serving %d members on %s", len(members), cfg.DirectoryAddr)
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Printf("directory: %v", err)
			}
		}()
	}

	wg.Wait()
}

func parseFlags() Config {
	var cfg Config
	flag.StringVar(&cfg.Broker, "broker", "tcp://localhost:1883", "MQTT broker URL, empty disables the gateway")
	flag.StringVar(&cfg.DMTopicPrefix, "dm-prefix", "chat/dm", "DM topic prefix")
	flag.StringVar(&cfg.AckTopic, "ack-topic", "chat/ack", "acknowledgment topic")
	flag.DurationVar(&cfg.AckLatency, "ack-latency", 0, "ack latency")
	flag.Float64Var(&cfg.DropRate, "drop-rate", 0, "ack drop rate")
	flag.BoolVar(&cfg.Verbose, "verbose", false, "enable verbose logging")
	flag.StringVar(&cfg.DirectoryAddr, "directory-addr", "", "staff directory listen address, empty disables it")
	flag.StringVar(&cfg.DirectoryFile, "directory-file", "", "JSON roster file for the directory server")
	flag.IntVar(&cfg.RosterSize, "roster-size", 0, "auto generated roster size")
	flag.IntVar(&cfg.Pods, "pods", 3, "number of pods for the generated roster")
	flag.Parse()
	return cfg
}

func loadMembers(cfg Config) ([]Member, error) {
	if cfg.DirectoryFile != "" {
		data, err := os.ReadFile(cfg.DirectoryFile)
		if err != nil {
			return nil, err
		}
		return LoadRoster(data)
	}
	return GenerateRoster(cfg.RosterSize, cfg.Pods), nil
}
