// Copyright 2025 The sdk-core Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"strings"
	"testing"
	"time"
)

func TestConfigValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Service: "test-service",
			Version: "v1.0.0",
			Mode:    ModeDebug,
			NATS: NATSConfig{
				Host:          "localhost",
				Port:          "4222",
				URL:           "nats://localhost:4222",
				MaxReconnects: 10,
				ReconnectWait: 2 * time.Second,
				DrainTimeout:  30 * time.Second,
				PingInterval:  2 * time.Minute,
				MaxPingsOut:   2,
				ClientName:    "test-client",
			},
			Worker: WorkerConfig{TaskQueue: "default"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid config", mutate: func(*Config) {}},
		{
			name:    "missing service name",
			mutate:  func(c *Config) { c.Service = "" },
			wantErr: "service name",
		},
		{
			name:    "bad mode",
			mutate:  func(c *Config) { c.Mode = "verbose" },
			wantErr: "invalid mode",
		},
		{
			name:    "missing NATS URL",
			mutate:  func(c *Config) { c.NATS.URL = "" },
			wantErr: "NATS URL",
		},
		{
			name:    "missing task queue",
			mutate:  func(c *Config) { c.Worker.TaskQueue = "" },
			wantErr: "task queue",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("Validate() = %v, want error mentioning %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.NATS.URL == "" {
		t.Error("NATS URL should be assembled from host and port defaults")
	}
	if cfg.Worker.TaskQueue == "" {
		t.Error("task queue should default")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate, got %v", err)
	}
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("APP_NAME", "custom-worker")
	t.Setenv("NATS_URL", "nats://example:4333")
	t.Setenv("WORKER_TASK_QUEUE", "orders")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Service != "custom-worker" {
		t.Errorf("Service = %q", cfg.Service)
	}
	if cfg.NATS.URL != "nats://example:4333" {
		t.Errorf("NATS URL = %q", cfg.NATS.URL)
	}
	if cfg.Worker.TaskQueue != "orders" {
		t.Errorf("TaskQueue = %q", cfg.Worker.TaskQueue)
	}
}
