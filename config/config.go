// Package config loads the node's YAML configuration file, following the
// teacher's Load(path) (*Config, error) pattern: optional fields are
// modeled as pointers so "unset" and "false" stay distinguishable.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"dxnode/node"
)

// Config is the on-disk shape of the node configuration. ToNodeConfig
// translates it into node.Config, the semantic options spec.md §6
// describes; the remaining sections configure the domain-stack components
// layered on top of the core (cty, correction, status, mqttexport,
// console).
type Config struct {
	NodeID      string            `yaml:"node_id"`
	UserListen  string            `yaml:"user_listen"`
	PeerListen  string            `yaml:"peer_listen"`
	PeerOptions PeerOptionsConfig `yaml:"peer_options"`
	PeerRetry   PeerRetryConfig   `yaml:"peer_retry"`
	Upstreams   []UpstreamEntry   `yaml:"upstreams"`

	// GridDBCheckOnMiss is read from grid_db_check_on_miss and defaults to
	// true. It is only loaded and defaulted here: no other package reads
	// it, and cty.CTYDatabase has no grid-square lookup, so a callsign
	// missing from the CTY database is always treated as metadata-unknown.
	GridDBCheckOnMiss *bool `yaml:"grid_db_check_on_miss"`

	CTYFile        string               `yaml:"cty_file"`
	PeerDirPath    string               `yaml:"peer_dir_path"`
	Correction     CorrectionConfig     `yaml:"correction"`
	Status         StatusConfig         `yaml:"status"`
	MQTT           MQTTConfig           `yaml:"mqtt"`
	Console        ConsoleConfig        `yaml:"console"`
	SecondaryDedup SecondaryDedupConfig `yaml:"secondary_dedup"`
}

// SecondaryDedupConfig is the YAML shape of node.SecondaryDedupConfig.
type SecondaryDedupConfig struct {
	Enabled         bool `yaml:"enabled"`
	WindowSeconds   int  `yaml:"window_seconds"`
	CollapseClasses bool `yaml:"collapse_classes"`
}

// PeerOptionsConfig is the YAML shape of node.PeerOptions.
type PeerOptionsConfig struct {
	Version                  string   `yaml:"version"`
	Capabilities             []string `yaml:"capabilities"`
	HeartbeatIntervalSeconds int      `yaml:"heartbeat_interval_seconds"`
	ExpectedAuthToken        *string  `yaml:"expected_auth_token"`
}

// PeerRetryConfig is the YAML shape of node.PeerRetryPolicy.
type PeerRetryConfig struct {
	BaseDelaySeconds float64 `yaml:"base_delay_seconds"`
	MaxDelaySeconds  float64 `yaml:"max_delay_seconds"`
}

// UpstreamEntry is the YAML shape of one node.UpstreamConfig. Mode is
// "peer" or "telnet" (case-insensitive); anything else defaults to telnet,
// matching the "declared but not connected" treatment spec.md §4.4 gives
// non-Peer upstreams.
type UpstreamEntry struct {
	Addr          string `yaml:"addr"`
	Mode          string `yaml:"mode"`
	LoginCallsign string `yaml:"login_callsign"`
	AuthToken     string `yaml:"auth_token"`
}

// CorrectionConfig toggles the Levenshtein-based callsign correction hints.
type CorrectionConfig struct {
	Enabled bool `yaml:"enabled"`
}

// StatusConfig configures the JSON/human status endpoint.
type StatusConfig struct {
	Addr string `yaml:"addr"`
}

// MQTTConfig configures the optional outbound spot exporter.
type MQTTConfig struct {
	Enabled bool   `yaml:"enabled"`
	Broker  string `yaml:"broker"`
	Topic   string `yaml:"topic"`
}

// ConsoleConfig toggles the operator dashboard.
type ConsoleConfig struct {
	Enabled bool `yaml:"enabled"`
}

// Load reads and parses the YAML file at path, applying defaults for any
// unset optional field.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.GridDBCheckOnMiss == nil {
		t := true
		c.GridDBCheckOnMiss = &t
	}
	if c.PeerOptions.Version == "" {
		c.PeerOptions.Version = "1"
	}
	if c.PeerOptions.HeartbeatIntervalSeconds <= 0 {
		c.PeerOptions.HeartbeatIntervalSeconds = 30
	}
	if c.PeerRetry.BaseDelaySeconds <= 0 {
		c.PeerRetry.BaseDelaySeconds = 1
	}
	if c.PeerRetry.MaxDelaySeconds <= 0 {
		c.PeerRetry.MaxDelaySeconds = 60
	}
}

// ToNodeConfig translates the parsed file into node.Config.
func (c *Config) ToNodeConfig() node.Config {
	upstreams := make([]node.UpstreamConfig, 0, len(c.Upstreams))
	for _, u := range c.Upstreams {
		mode := node.ModeTelnet
		if strings.EqualFold(u.Mode, "peer") {
			mode = node.ModePeer
		}
		upstreams = append(upstreams, node.UpstreamConfig{
			Addr:          u.Addr,
			Mode:          mode,
			LoginCallsign: u.LoginCallsign,
			AuthToken:     u.AuthToken,
		})
	}

	return node.Config{
		NodeID:     c.NodeID,
		UserListen: c.UserListen,
		PeerListen: c.PeerListen,
		PeerOptions: node.PeerOptions{
			Version:           c.PeerOptions.Version,
			Capabilities:      c.PeerOptions.Capabilities,
			HeartbeatInterval: time.Duration(c.PeerOptions.HeartbeatIntervalSeconds) * time.Second,
			ExpectedAuthToken: c.PeerOptions.ExpectedAuthToken,
		},
		RetryPolicy: node.PeerRetryPolicy{
			BaseDelay: time.Duration(c.PeerRetry.BaseDelaySeconds * float64(time.Second)),
			MaxDelay:  time.Duration(c.PeerRetry.MaxDelaySeconds * float64(time.Second)),
		},
		Upstreams:   upstreams,
		PeerDirPath: c.PeerDirPath,
		SecondaryDedup: node.SecondaryDedupConfig{
			Enabled:         c.SecondaryDedup.Enabled,
			Window:          time.Duration(c.SecondaryDedup.WindowSeconds) * time.Second,
			CollapseClasses: c.SecondaryDedup.CollapseClasses,
		},
	}
}
