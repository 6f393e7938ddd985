package main

import (
	"fmt"
	"time"
)

// Config holds parameters for the simulated chat gateway.
type Config struct {
	Broker        string
	DMTopicPrefix string
	AckTopic      string
	AckLatency    time.Duration
	DropRate      float64
	Verbose       bool

	DirectoryAddr string
	DirectoryFile string
	RosterSize    int
	Pods          int
}

// Validate rejects parameter combinations the simulator cannot honour.
func (c *Config) Validate() error {
	if c.Broker == "" && c.DirectoryAddr == "" {
		return fmt.Errorf("nothing to simulate: set -broker or -directory-addr")
	}
	if c.DropRate < 0 || c.DropRate > 1 {
		return fmt.Errorf("drop rate must be within [0, 1], got %g", c.DropRate)
	}
	if c.DirectoryAddr != "" && c.DirectoryFile == "" && c.RosterSize <= 0 {
		return fmt.Errorf("directory server needs -directory-file or -roster-size")
	}
	return nil
}
