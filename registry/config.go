/*
 * MIT License
 *
 * Copyright (c) 2025 Vincent Maciejewski, M2 Tech
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 */

package registry

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// DefaultEndpoint is where the registry binds when nothing is configured.
const DefaultEndpoint = "tcp://0.0.0.0:5555"

// ManagerConfig describes one manager running on a configured host.
type ManagerConfig struct {
	Service     string `json:"service" mapstructure:"service"`
	Language    string `json:"language" mapstructure:"language"`
	Description string `json:"description" mapstructure:"description"`
}

// HostConfig describes one host reachable over SSH for out-of-band control.
type HostConfig struct {
	SSH      string                   `json:"ssh" mapstructure:"ssh"`
	Managers map[string]ManagerConfig `json:"managers" mapstructure:"managers"`
}

// Config is the registry.json configuration. The hosts block is advisory: it
// enables the optional restart-on-heartbeat-failure policy and is never
// consulted by the lookup path.
type Config struct {
	RegistryEndpoint        string                `json:"registry_endpoint" mapstructure:"registry_endpoint"`
	HeartbeatTimeoutS       float64               `json:"heartbeat_timeout_s" mapstructure:"heartbeat_timeout_s"`
	HeartbeatCheckIntervalS float64               `json:"heartbeat_check_interval_s" mapstructure:"heartbeat_check_interval_s"`
	Hosts                   map[string]HostConfig `json:"hosts" mapstructure:"hosts"`
}

// HeartbeatTimeout returns the liveness timeout as a duration.
func (c *Config) HeartbeatTimeout() time.Duration {
	return time.Duration(c.HeartbeatTimeoutS * float64(time.Second))
}

// HeartbeatCheckInterval returns the sweep interval as a duration.
func (c *Config) HeartbeatCheckInterval() time.Duration {
	return time.Duration(c.HeartbeatCheckIntervalS * float64(time.Second))
}

// LoadConfig reads registry.json from path. An empty path yields the
// defaults. Environment variables prefixed ACTORS_ override file values,
// e.g. ACTORS_REGISTRY_ENDPOINT.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("json")
	v.SetDefault("registry_endpoint", DefaultEndpoint)
	v.SetDefault("heartbeat_timeout_s", 6.0)
	v.SetDefault("heartbeat_check_interval_s", 1.0)
	v.SetEnvPrefix("ACTORS")
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("could not read config %s: %w", path, err)
		}
	}

	config := &Config{}
	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("could not parse config %s: %w", path, err)
	}
	return config, nil
}
