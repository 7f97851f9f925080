/*
battery-runtime - Primary battery runtime estimation.
Copyright (C) 2025, The Cacophony Project

This program is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

This program is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with this program.  If not, see <https://www.gnu.org/licenses/>.
*/

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/TheCacophonyProject/battery-runtime/battery"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	DefaultConfigDir = "/etc/cacophony"
	ConfigFileName   = "battery-runtime"
	EnvPrefix        = "BATTERY_RUNTIME"
)

// ConfigArgs is embedded in the go-arg struct of subcommands that read the config file.
type ConfigArgs struct {
	ConfigDir string `arg:"--config-dir" default:"/etc/cacophony" help:"Directory holding battery-runtime.toml and .env"`
}

// Config is read from <config-dir>/battery-runtime.toml, then environment variables
// such as BATTERY_RUNTIME_LISTEN_ADDRESS.
type Config struct {
	CurvesFile        string  `mapstructure:"curves-file"`
	ListenAddress     string  `mapstructure:"listen-address"`
	RateLimit         float64 `mapstructure:"rate-limit"`
	RateBurst         int     `mapstructure:"rate-burst"`
	ReportEvents      bool    `mapstructure:"report-events"`
	DefaultChemistry  string  `mapstructure:"default-chemistry"`
	WatchCurves       bool    `mapstructure:"watch-curves"`
	SelfDischargeRate float64 `mapstructure:"self-discharge-rate"`
}

func Default() Config {
	return Config{
		CurvesFile:        "",
		ListenAddress:     ":8080",
		RateLimit:         5,
		RateBurst:         10,
		ReportEvents:      false,
		DefaultChemistry:  string(battery.LithiumMetal),
		WatchCurves:       true,
		SelfDischargeRate: battery.DefaultSelfDischargeRate,
	}
}

func setDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("curves-file", d.CurvesFile)
	v.SetDefault("listen-address", d.ListenAddress)
	v.SetDefault("rate-limit", d.RateLimit)
	v.SetDefault("rate-burst", d.RateBurst)
	v.SetDefault("report-events", d.ReportEvents)
	v.SetDefault("default-chemistry", d.DefaultChemistry)
	v.SetDefault("watch-curves", d.WatchCurves)
	v.SetDefault("self-discharge-rate", d.SelfDischargeRate)
}

// Load reads the config from configDir. A missing config file or .env file is not an error.
// Variables already set in the environment take precedence over the .env file.
func Load(configDir string) (*Config, error) {
	err := godotenv.Load(filepath.Join(configDir, ".env"))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	v := viper.New()
	setDefaults(v)
	v.SetConfigName(ConfigFileName)
	v.SetConfigType("toml")
	v.AddConfigPath(configDir)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	c := &Config{}
	if err := v.Unmarshal(c); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if c.CurvesFile != "" && !filepath.IsAbs(c.CurvesFile) {
		c.CurvesFile = filepath.Join(configDir, c.CurvesFile)
	}
	return c, c.Validate()
}

// Validate checks values that would otherwise only fail when first used.
func (c *Config) Validate() error {
	if c.ListenAddress == "" {
		return errors.New("listen-address must be set")
	}
	if c.RateLimit <= 0 {
		return fmt.Errorf("rate-limit must be positive, got %g", c.RateLimit)
	}
	if c.RateBurst < 1 {
		return fmt.Errorf("rate-burst must be at least 1, got %d", c.RateBurst)
	}
	if _, err := battery.ParseChemistry(c.DefaultChemistry); err != nil {
		return fmt.Errorf("default-chemistry: %w", err)
	}
	if c.SelfDischargeRate < 0 || c.SelfDischargeRate > 1 {
		return fmt.Errorf("self-discharge-rate must be between 0 and 1, got %g", c.SelfDischargeRate)
	}
	return nil
}

// Chemistry returns the parsed default chemistry.
func (c *Config) Chemistry() battery.Chemistry {
	chemistry, err := battery.ParseChemistry(c.DefaultChemistry)
	if err != nil {
		return battery.LithiumMetal
	}
	return chemistry
}
