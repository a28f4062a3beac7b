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

// The registry command runs the GlobalRegistry as a standalone server. It
// binds the configured endpoint and serves until SIGINT or SIGTERM.
package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/vincent212/actors/log"
	"github.com/vincent212/actors/registry"
)

func main() {
	var (
		endpoint   string
		configPath string
		logLevel   string
		logFile    string
	)
	pflag.StringVar(&endpoint, "endpoint", "", "endpoint to bind, overrides the config file")
	pflag.StringVar(&configPath, "config", "", "path to registry.json")
	pflag.StringVar(&logLevel, "log-level", "info", "log level: debug, info, warning, error")
	pflag.StringVar(&logFile, "log-file", "", "also log to this file with rotation")
	pflag.Parse()

	level := log.ParseLevel(logLevel)
	if level == log.InvalidLevel {
		fmt.Fprintf(os.Stderr, "unknown log level %q\n", logLevel)
		os.Exit(2)
	}
	writers := []io.Writer{os.Stdout}
	if logFile != "" {
		writers = append(writers, &lumberjack.Logger{
			Filename:   logFile,
			MaxSize:    100, // megabytes
			MaxBackups: 5,
			MaxAge:     30, // days
		})
	}
	logger := log.NewZap(level, writers...)

	config, err := registry.LoadConfig(configPath)
	if err != nil {
		logger.Errorf("%v", err)
		os.Exit(1)
	}
	if endpoint != "" {
		config.RegistryEndpoint = endpoint
	}

	opts := []registry.ServiceOption{
		registry.WithHeartbeatTimeout(config.HeartbeatTimeout()),
		registry.WithHeartbeatCheckInterval(config.HeartbeatCheckInterval()),
	}
	if len(config.Hosts) > 0 {
		restarter := registry.NewRestarter(config.Hosts, logger)
		opts = append(opts, registry.WithOfflineHook(restarter.Restart))
	}

	server := registry.NewServer(config.RegistryEndpoint, registry.NewGlobalRegistry(opts...), logger)
	if err := server.Start(); err != nil {
		logger.Errorf("could not start registry on %s: %v", config.RegistryEndpoint, err)
		os.Exit(1)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	logger.Infof("received %s, shutting down", sig)
	server.Stop()
	_ = logger.Sync()
}
