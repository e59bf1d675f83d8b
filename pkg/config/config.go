// SteamLibrarian
// Copyright (c) 2026 The SteamLibrarian Contributors.
// SPDX-License-Identifier: GPL-3.0-or-later
//
// This file is part of SteamLibrarian.
//
// SteamLibrarian is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// SteamLibrarian is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with SteamLibrarian.  If not, see <http://www.gnu.org/licenses/>.

// Package config manages the SteamLibrarian TOML configuration file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/adrg/xdg"
	toml "github.com/pelletier/go-toml/v2"
	"github.com/spf13/afero"
)

const (
	SchemaVersion = 1
	CfgEnv        = "STEAMLIBRARIAN_CFG"
	CfgFile       = "config.toml"
	LogFile       = "steamlibrarian.log"
	appDirName    = "steamlibrarian"
)

type Values struct {
	Steam        Steam      `toml:"steam,omitempty"`
	Detection    Detection  `toml:"detection,omitempty"`
	Monitor      Monitor    `toml:"monitor,omitempty"`
	Candidates   Candidates `toml:"candidates,omitempty"`
	ConfigSchema int        `toml:"config_schema"`
	DebugLogging bool       `toml:"debug_logging"`
}

// Steam holds overrides for locating the Steam installation.
type Steam struct {
	// InstallDir overrides Steam root auto-detection when set.
	InstallDir string `toml:"install_dir,omitempty"`
}

// Detection configures the session start detector.
type Detection struct {
	TimeoutSeconds int `toml:"timeout_seconds"`
	PollIntervalMs int `toml:"poll_interval_ms"`
}

// Monitor configures the session exit monitor.
type Monitor struct {
	PollIntervalSeconds     int `toml:"poll_interval_seconds"`
	SnapshotIntervalSeconds int `toml:"snapshot_interval_seconds"`
}

// Candidates configures executable candidate ranking.
type Candidates struct {
	Exclude           []string `toml:"exclude,omitempty,multiline"`
	MaxDepth          int      `toml:"max_depth"`
	DetectionLimit    int      `toml:"detection_limit"`
	PresentationLimit int      `toml:"presentation_limit"`
}

var BaseDefaults = Values{
	ConfigSchema: SchemaVersion,
	Detection: Detection{
		TimeoutSeconds: 30,
		PollIntervalMs: 1000,
	},
	Monitor: Monitor{
		PollIntervalSeconds:     5,
		SnapshotIntervalSeconds: 30,
	},
	Candidates: Candidates{
		MaxDepth:          3,
		DetectionLimit:    5,
		PresentationLimit: 10,
	},
}

// Instance is a loaded configuration. All access goes through getter
// methods so callers never observe a half-written Values.
type Instance struct {
	fs      afero.Fs
	cfgPath string
	vals    Values
	mu      sync.RWMutex
}

// DefaultCfgPath returns the config file location, honouring the
// STEAMLIBRARIAN_CFG environment variable over the XDG config dir.
func DefaultCfgPath() string {
	if env, ok := os.LookupEnv(CfgEnv); ok && env != "" {
		return env
	}
	path, err := xdg.ConfigFile(filepath.Join(appDirName, CfgFile))
	if err != nil {
		return filepath.Join(".", CfgFile)
	}
	return path
}

// DefaultLogDir returns the directory for log output.
func DefaultLogDir() string {
	return filepath.Join(xdg.StateHome, appDirName)
}

// NewConfig loads the config file at cfgPath, creating it with defaults
// if it does not exist.
func NewConfig(fsys afero.Fs, cfgPath string, defaults Values) (*Instance, error) {
	cfg := &Instance{
		fs:      fsys,
		cfgPath: cfgPath,
		vals:    defaults,
	}

	exists, err := afero.Exists(fsys, cfgPath)
	if err != nil {
		return nil, fmt.Errorf("error checking config file: %w", err)
	}
	if !exists {
		if saveErr := cfg.Save(); saveErr != nil {
			return nil, saveErr
		}
		return cfg, nil
	}

	if err := cfg.Load(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Load reads and parses the config file into the instance.
func (c *Instance) Load() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cfgPath == "" {
		return errors.New("config path not set")
	}

	data, err := afero.ReadFile(c.fs, c.cfgPath)
	if err != nil {
		return fmt.Errorf("error reading config file: %w", err)
	}

	var newVals Values
	if err := toml.Unmarshal(data, &newVals); err != nil {
		return fmt.Errorf("error parsing config file: %w", err)
	}

	if newVals.ConfigSchema == 0 {
		newVals.ConfigSchema = SchemaVersion
	}
	c.vals = newVals
	return nil
}

// Save writes the current values back to the config file.
func (c *Instance) Save() error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.cfgPath == "" {
		return errors.New("config path not set")
	}

	if err := c.fs.MkdirAll(filepath.Dir(c.cfgPath), 0o750); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	data, err := toml.Marshal(&c.vals)
	if err != nil {
		return fmt.Errorf("error marshalling config: %w", err)
	}

	if err := afero.WriteFile(c.fs, c.cfgPath, data, 0o600); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}
	return nil
}

func (c *Instance) DebugLogging() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.DebugLogging
}

func (c *Instance) SetDebugLogging(v bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vals.DebugLogging = v
}

// SteamInstallDir returns the user-configured Steam root, or empty when
// auto-detection should be used.
func (c *Instance) SteamInstallDir() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.Steam.InstallDir
}

func (c *Instance) DetectionTimeout() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.vals.Detection.TimeoutSeconds <= 0 {
		return time.Duration(BaseDefaults.Detection.TimeoutSeconds) * time.Second
	}
	return time.Duration(c.vals.Detection.TimeoutSeconds) * time.Second
}

func (c *Instance) DetectionPollInterval() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.vals.Detection.PollIntervalMs <= 0 {
		return time.Duration(BaseDefaults.Detection.PollIntervalMs) * time.Millisecond
	}
	return time.Duration(c.vals.Detection.PollIntervalMs) * time.Millisecond
}

func (c *Instance) MonitorPollInterval() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.vals.Monitor.PollIntervalSeconds <= 0 {
		return time.Duration(BaseDefaults.Monitor.PollIntervalSeconds) * time.Second
	}
	return time.Duration(c.vals.Monitor.PollIntervalSeconds) * time.Second
}

func (c *Instance) MonitorSnapshotInterval() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.vals.Monitor.SnapshotIntervalSeconds <= 0 {
		return time.Duration(BaseDefaults.Monitor.SnapshotIntervalSeconds) * time.Second
	}
	return time.Duration(c.vals.Monitor.SnapshotIntervalSeconds) * time.Second
}

func (c *Instance) CandidateMaxDepth() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.vals.Candidates.MaxDepth <= 0 {
		return BaseDefaults.Candidates.MaxDepth
	}
	return c.vals.Candidates.MaxDepth
}

func (c *Instance) CandidateDetectionLimit() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.vals.Candidates.DetectionLimit <= 0 {
		return BaseDefaults.Candidates.DetectionLimit
	}
	return c.vals.Candidates.DetectionLimit
}

func (c *Instance) CandidatePresentationLimit() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.vals.Candidates.PresentationLimit <= 0 {
		return BaseDefaults.Candidates.PresentationLimit
	}
	return c.vals.Candidates.PresentationLimit
}

// CandidateExclude returns extra exclusion globs configured by the user.
// The built-in exclusion set always applies on top of these.
func (c *Instance) CandidateExclude() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]string, len(c.vals.Candidates.Exclude))
	copy(out, c.vals.Candidates.Exclude)
	return out
}
