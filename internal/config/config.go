// Package config loads rangeloop settings from a JSON file and the environment.
package config

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/hashicorp/go-set/v3"
	"github.com/xyproto/env/v2"

	"github.com/orizon-lang/rangeloop/internal/errors"
)

// DefaultFile is the configuration file looked up in the working directory.
const DefaultFile = "rangeloop.json"

// Environment variables that override the file.
const (
	EnvWorkers  = "RANGELOOP_WORKERS"
	EnvVerify   = "RANGELOOP_VERIFY"
	EnvVerbose  = "RANGELOOP_VERBOSE"
	EnvDump     = "RANGELOOP_DUMP"
	EnvDisabled = "RANGELOOP_DISABLE"
	EnvListen   = "RANGELOOP_LISTEN"
	EnvCert     = "RANGELOOP_CERT"
	EnvKey      = "RANGELOOP_KEY"
)

// Config holds the settings shared by every rangeloop subcommand.
type Config struct {
	// Workers bounds how many units are lowered at once.
	Workers int `json:"workers"`
	// Verify runs the structural verifier after every pass.
	Verify bool `json:"verify"`
	// Dump prints lowered units in text form instead of JSON.
	Dump    bool `json:"dump"`
	Verbose bool `json:"verbose"`
	// DisabledPasses lists pass names the pipeline skips.
	DisabledPasses []string `json:"disabled_passes,omitempty"`

	Listen   string `json:"listen"`
	CertFile string `json:"cert_file,omitempty"`
	KeyFile  string `json:"key_file,omitempty"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Workers: runtime.NumCPU(),
		Verify:  true,
		Listen:  "localhost:4433",
	}
}

// Load reads path on top of Default and then applies environment overrides.
// A missing file is not an error when path is DefaultFile.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		path = DefaultFile
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		cfg.resolvePaths(filepath.Dir(path))
	case stderrors.Is(err, fs.ErrNotExist) && path == DefaultFile:
	default:
		return nil, err
	}
	cfg.ApplyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides fields whose environment variable is set.
func (c *Config) ApplyEnv() {
	if env.Has(EnvWorkers) {
		c.Workers = env.Int(EnvWorkers, c.Workers)
	}
	if env.Has(EnvVerify) {
		c.Verify = env.Bool(EnvVerify)
	}
	if env.Has(EnvVerbose) {
		c.Verbose = env.Bool(EnvVerbose)
	}
	if env.Has(EnvDump) {
		c.Dump = env.Bool(EnvDump)
	}
	if env.Has(EnvDisabled) {
		c.DisabledPasses = nil
		for _, name := range strings.Split(env.Str(EnvDisabled), ",") {
			if name = strings.TrimSpace(name); name != "" {
				c.DisabledPasses = append(c.DisabledPasses, name)
			}
		}
	}
	c.Listen = env.Str(EnvListen, c.Listen)
	c.CertFile = env.Str(EnvCert, c.CertFile)
	c.KeyFile = env.Str(EnvKey, c.KeyFile)
}

// Validate checks field ranges. When known is non-empty every disabled pass must
// name one of them.
func (c *Config) Validate(known ...string) error {
	if c.Workers < 1 {
		return errors.InvalidConfig("workers", fmt.Sprintf("must be at least 1, was %d", c.Workers))
	}
	if (c.CertFile == "") != (c.KeyFile == "") {
		return errors.InvalidConfig("cert_file", "cert_file and key_file must be set together")
	}
	passes := set.From(known)
	for _, name := range c.DisabledPasses {
		if strings.TrimSpace(name) == "" {
			return errors.InvalidConfig("disabled_passes", "empty pass name")
		}
		if !passes.Empty() && !passes.Contains(name) {
			return errors.InvalidConfig("disabled_passes", fmt.Sprintf("unknown pass %q", name))
		}
	}
	return nil
}

// resolvePaths makes certificate paths relative to the configuration file.
func (c *Config) resolvePaths(dir string) {
	for _, p := range []*string{&c.CertFile, &c.KeyFile} {
		if *p != "" && !filepath.IsAbs(*p) {
			*p = filepath.Join(dir, *p)
		}
	}
}
