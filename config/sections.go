package config

import (
	"fmt"

	"github.com/cavusmuhammed68/ICC-IEEE/core/recovery"
	"github.com/cavusmuhammed68/ICC-IEEE/core/shifting"
	"github.com/cavusmuhammed68/ICC-IEEE/infra/logger"
)

// ShiftingConfig controls the post-dispatch load shifter.
type ShiftingConfig struct {
	FlexibleLoadRatio float64 `json:"flexible_load_ratio"`
}

func (c *ShiftingConfig) SetDefaults() {
	if c.FlexibleLoadRatio == 0 {
		c.FlexibleLoadRatio = shifting.DefaultFlexibleLoadRatio
	}
}

func (c ShiftingConfig) Validate() error {
	if c.FlexibleLoadRatio < 0 || c.FlexibleLoadRatio > 1 {
		return fmt.Errorf("shifting.flexible_load_ratio %v outside [0, 1]", c.FlexibleLoadRatio)
	}
	return nil
}

// RecoveryConfig holds the recovery system and both curve profiles.
type RecoveryConfig struct {
	System    recovery.Config    `json:"system"`
	Minutes   int                `json:"minutes"`
	Sigmoid   recovery.Sigmoid   `json:"sigmoid"`
	RuleBased recovery.RuleBased `json:"rule_based"`
}

func (c *RecoveryConfig) SetDefaults() {
	def := recovery.DefaultConfig()
	if c.System.StepCap == 0 {
		c.System.StepCap = def.StepCap
	}
	if c.System.BatteryEnergy == 0 {
		c.System.BatteryEnergy = def.BatteryEnergy
	}
	if c.System.FuelCellEnergy == 0 {
		c.System.FuelCellEnergy = def.FuelCellEnergy
	}
	if c.System.Demand == 0 {
		c.System.Demand = def.Demand
	}
	if c.Minutes == 0 {
		c.Minutes = recovery.DefaultMinutes
	}
	if c.Sigmoid == (recovery.Sigmoid{}) {
		c.Sigmoid = recovery.DefaultSigmoid()
	}
	if c.RuleBased == (recovery.RuleBased{}) {
		c.RuleBased = recovery.DefaultRuleBased()
	}
}

func (c RecoveryConfig) Validate() error {
	if c.Minutes < 0 {
		return fmt.Errorf("recovery.minutes must be >= 0")
	}
	if c.System.StepCap <= 0 || c.System.Demand <= 0 {
		return fmt.Errorf("recovery.system step_cap and demand must be > 0")
	}
	if c.System.BatteryEnergy < 0 || c.System.FuelCellEnergy < 0 {
		return fmt.Errorf("recovery.system energies must be >= 0")
	}
	return nil
}

// LogConfig sets the application log level.
type LogConfig struct {
	Level string `json:"level"`
}

func (c *LogConfig) SetDefaults() {
	if c.Level == "" {
		c.Level = "info"
	}
}

func (c LogConfig) Validate() error {
	switch c.Level {
	case "debug", "info", "warn", "error":
		return nil
	}
	return fmt.Errorf("log.level %q must be debug, info, warn or error", c.Level)
}

// Apply makes the level the default of every logger created afterwards.
func (c LogConfig) Apply() {
	logger.SetDefaultOptions(logger.Options{Level: c.Level})
}

// OutputConfig selects the export artefacts written by the CLI.
type OutputConfig struct {
	Dir    string `json:"dir"`
	CSV    bool   `json:"csv"`
	JSON   bool   `json:"json"`
	LaTeX  bool   `json:"latex"`
	Charts bool   `json:"charts"`
}

// Want reports whether an artefact is written. Selecting none writes all.
func (c OutputConfig) Want(selected bool) bool {
	return selected || !(c.CSV || c.JSON || c.LaTeX || c.Charts)
}

func (c *OutputConfig) SetDefaults() {
	if c.Dir == "" {
		c.Dir = "results"
	}
}

// APIConfig configures the HTTP API served by the serve command.
type APIConfig struct {
	Addr           string   `json:"addr"`
	AllowedOrigins []string `json:"allowed_origins"`
	// Token protects the run history endpoint when set.
	Token string `json:"token"`
}

func (c *APIConfig) SetDefaults() {
	if c.Addr == "" {
		c.Addr = ":8080"
	}
	if len(c.AllowedOrigins) == 0 {
		c.AllowedOrigins = []string{"*"}
	}
}

// SentryConfig enables error reporting of failed commands. An empty DSN
// disables it.
type SentryConfig struct {
	DSN              string  `json:"dsn"`
	Environment      string  `json:"environment"`
	TracesSampleRate float64 `json:"traces_sample_rate"`
	Release          string  `json:"release"`
	ServiceName      string  `json:"service_name"`
}

func (c *SentryConfig) SetDefaults() {
	if c.ServiceName == "" {
		c.ServiceName = "microgrid"
	}
	if c.Environment == "" {
		c.Environment = "development"
	}
}

func (c SentryConfig) Validate() error {
	if c.TracesSampleRate < 0 || c.TracesSampleRate > 1 {
		return fmt.Errorf("sentry.traces_sample_rate %v outside [0, 1]", c.TracesSampleRate)
	}
	return nil
}
