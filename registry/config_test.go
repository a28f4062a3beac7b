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
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	config, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, DefaultEndpoint, config.RegistryEndpoint)
	assert.Equal(t, 6*time.Second, config.HeartbeatTimeout())
	assert.Equal(t, time.Second, config.HeartbeatCheckInterval())
	assert.Empty(t, config.Hosts)
}

func TestLoadConfig_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "registry.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"registry_endpoint": "tcp://0.0.0.0:7777",
		"heartbeat_timeout_s": 2.5,
		"heartbeat_check_interval_s": 0.5,
		"hosts": {
			"host1": {
				"ssh": "ops@192.168.1.10",
				"managers": {
					"m1": {"service": "pong.service", "language": "go", "description": "pong host"}
				}
			}
		}
	}`), 0o600))

	config, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "tcp://0.0.0.0:7777", config.RegistryEndpoint)
	assert.Equal(t, 2500*time.Millisecond, config.HeartbeatTimeout())
	assert.Equal(t, 500*time.Millisecond, config.HeartbeatCheckInterval())
	require.Contains(t, config.Hosts, "host1")
	host := config.Hosts["host1"]
	assert.Equal(t, "ops@192.168.1.10", host.SSH)
	require.Contains(t, host.Managers, "m1")
	assert.Equal(t, "pong.service", host.Managers["m1"].Service)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.json"))
	require.Error(t, err)
}

func TestRestarter_IgnoresUnknownManager(t *testing.T) {
	restarter := NewRestarter(map[string]HostConfig{}, nil)
	// no host configured: nothing to do, nothing to crash
	restarter.Restart("ghost-manager")
}
