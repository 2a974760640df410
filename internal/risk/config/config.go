// Package config loads the service configuration: composite weights, the
// categorical score mappings, and the run surfaces (snapshot directory,
// report directory, listen address, schedule).
package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/riskworks/stability/internal/risk/score"
)

// VulnerabilityMaps are the categorical score tables for vulnerability
// records.
type VulnerabilityMaps struct {
	SeverityScores      map[string]float64 `yaml:"severity_scores"`
	StatusScores        map[string]float64 `yaml:"status_scores"`
	PatchReleasedScores map[string]float64 `yaml:"patch_released_scores"`
}

// Config is the full service configuration. Every field has a production
// default; a config file overrides per key.
type Config struct {
	Weights        score.Weights      `yaml:"weights"`
	SeverityScores map[string]float64 `yaml:"severity_scores"`
	ImpactScores   map[string]float64 `yaml:"impact_scores"`
	Vulnerability  VulnerabilityMaps  `yaml:"vulnerability"`

	SnapshotDir string `yaml:"snapshot_dir"`
	ReportDir   string `yaml:"report_dir"`
	ListenAddr  string `yaml:"listen_addr"`
	Schedule    string `yaml:"schedule"`
}

// Default returns the production configuration. The severity and impact
// tables carry both the bare labels and the "<n> - <label>" forms the
// ticketing system exports.
func Default() *Config {
	return &Config{
		Weights: score.DefaultWeights(),
		SeverityScores: map[string]float64{
			"1 - high": 10, "high": 10,
			"2 - medium": 4, "medium": 4,
			"3 - low": 0.5, "low": 0.5,
		},
		ImpactScores: map[string]float64{
			"1 - high": 10, "high": 10,
			"2 - medium": 4, "medium": 4,
			"3 - low": 0.5, "low": 0.5,
		},
		Vulnerability: VulnerabilityMaps{
			SeverityScores: map[string]float64{
				"critical": 10, "high": 8, "medium": 4, "low": 0.5,
			},
			StatusScores: map[string]float64{
				"open": 10, "in progress": 6, "resolved": 1, "closed": 0,
			},
			PatchReleasedScores: map[string]float64{
				"no": 10, "yes": 1,
			},
		},
		SnapshotDir: "data",
		ReportDir:   "reports",
		ListenAddr:  ":8085",
		Schedule:    "0 9 * * 1", // weekly, Monday 09:00
	}
}

// Load reads a YAML config file on top of the defaults. A missing file is
// not an error: the defaults apply unchanged.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	cfg.normalize()
	return cfg, nil
}

// normalize lowercases mapping keys so lookups stay case-insensitive no
// matter how the file spells the labels.
func (c *Config) normalize() {
	c.SeverityScores = lowerKeys(c.SeverityScores)
	c.ImpactScores = lowerKeys(c.ImpactScores)
	c.Vulnerability.SeverityScores = lowerKeys(c.Vulnerability.SeverityScores)
	c.Vulnerability.StatusScores = lowerKeys(c.Vulnerability.StatusScores)
	c.Vulnerability.PatchReleasedScores = lowerKeys(c.Vulnerability.PatchReleasedScores)
}

func lowerKeys(m map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(m))
	for k, v := range m {
		out[strings.ToLower(strings.TrimSpace(k))] = v
	}
	return out
}
