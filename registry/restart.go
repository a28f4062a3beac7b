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
	"context"
	"fmt"
	"os/exec"
	"time"

	"github.com/vincent212/actors/log"
)

const sshTimeout = 30 * time.Second

// Restarter is the optional out-of-band recovery policy: when a manager
// misses heartbeats, restart its systemd service over SSH using the advisory
// hosts block of registry.json. Wire its Restart method into the service
// with WithOfflineHook.
type Restarter struct {
	hosts         map[string]HostConfig
	managerToHost map[string]string
	logger        log.Logger
}

// NewRestarter builds a Restarter from the hosts configuration.
func NewRestarter(hosts map[string]HostConfig, logger log.Logger) *Restarter {
	if logger == nil {
		logger = log.DefaultLogger
	}
	managerToHost := make(map[string]string)
	for hostID, host := range hosts {
		for managerID := range host.Managers {
			managerToHost[managerID] = hostID
		}
	}
	return &Restarter{
		hosts:         hosts,
		managerToHost: managerToHost,
		logger:        logger,
	}
}

// Restart runs `sudo systemctl restart <service>` on the host that owns the
// manager. Managers absent from the configuration are ignored.
func (r *Restarter) Restart(managerID string) {
	hostID, ok := r.managerToHost[managerID]
	if !ok {
		return
	}
	host := r.hosts[hostID]
	service := managerID
	if mc, ok := host.Managers[managerID]; ok && mc.Service != "" {
		service = mc.Service
	}

	ctx, cancel := context.WithTimeout(context.Background(), sshTimeout)
	defer cancel()

	command := fmt.Sprintf("sudo systemctl restart %s", service)
	r.logger.Infof("restarting manager=(%s): ssh %s %q", managerID, host.SSH, command)
	output, err := exec.CommandContext(ctx, "ssh", host.SSH, command).CombinedOutput()
	if err != nil {
		r.logger.Errorf("restart of manager=(%s) failed: %v: %s", managerID, err, output)
		return
	}
	r.logger.Infof("restarted manager=(%s)", managerID)
}
