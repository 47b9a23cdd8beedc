package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

type testConfig struct {
	Name      string `mapstructure:"name"`
	Transport struct {
		BaseURL string            `mapstructure:"base_url"`
		Timeout time.Duration     `mapstructure:"timeout"`
		Workers int               `mapstructure:"workers"`
		Headers map[string]string `mapstructure:"headers"`
	} `mapstructure:"transport"`

	defaulted bool
}

func (c *testConfig) ApplyDefaults() {
	if c.Name == "" {
		c.Name = "default"
	}
	c.defaulted = true
}

func (c *testConfig) Validate() error {
	if c.Transport.Workers < 0 {
		return fmt.Errorf("transport.workers must not be negative")
	}
	return nil
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_YAMLFile(t *testing.T) {
	path := writeFile(t, "client.yml", `
name: billing
transport:
  base_url: https://billing.internal
  timeout: 5s
  workers: 4
  headers:
    X-Client: syncreq
`)

	var cfg testConfig
	if err := Load("syncreq", &cfg, WithConfigFile(path), WithEnvPrefix("SYNCTEST")); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Name != "billing" || cfg.Transport.BaseURL != "https://billing.internal" {
		t.Errorf("unexpected config: %+v", cfg)
	}
	if cfg.Transport.Timeout != 5*time.Second || cfg.Transport.Workers != 4 {
		t.Errorf("unexpected transport settings: %+v", cfg.Transport)
	}
	if cfg.Transport.Headers["x-client"] != "syncreq" {
		t.Errorf("headers = %v", cfg.Transport.Headers)
	}
	if !cfg.defaulted {
		t.Error("ApplyDefaults was not called")
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeFile(t, "client.yml", "transport:\n  workers: 4\n  timeout: 5s\n")
	t.Setenv("SYNCTEST_TRANSPORT_WORKERS", "8")
	t.Setenv("SYNCTEST_TRANSPORT_BASE_URL", "https://override.internal")

	var cfg testConfig
	if err := Load("syncreq", &cfg, WithConfigFile(path), WithEnvPrefix("synctest_")); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Transport.Workers != 8 {
		t.Errorf("workers = %d, want 8", cfg.Transport.Workers)
	}
	if cfg.Transport.BaseURL != "https://override.internal" {
		t.Errorf("base_url = %q", cfg.Transport.BaseURL)
	}
	if cfg.Transport.Timeout != 5*time.Second {
		t.Errorf("file value lost: timeout = %v", cfg.Transport.Timeout)
	}
	if cfg.Name != "default" {
		t.Errorf("name = %q, want default", cfg.Name)
	}
}

func TestLoad_EnvFile(t *testing.T) {
	envPath := writeFile(t, ".env", "SYNCENV_NAME=from-dotenv\n")
	t.Cleanup(func() { _ = os.Unsetenv("SYNCENV_NAME") })

	var cfg testConfig
	if err := Load("syncreq", &cfg, WithEnvFile(envPath), WithEnvPrefix("SYNCENV")); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Name != "from-dotenv" {
		t.Errorf("name = %q", cfg.Name)
	}
}

func TestLoad_Errors(t *testing.T) {
	t.Run("missing explicit file", func(t *testing.T) {
		var cfg testConfig
		err := Load("syncreq", &cfg, WithConfigFile(filepath.Join(t.TempDir(), "nope.yml")))
		if err == nil || !strings.Contains(err.Error(), "not found") {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("validation failure", func(t *testing.T) {
		path := writeFile(t, "client.yml", "transport:\n  workers: -1\n")
		var cfg testConfig
		err := Load("syncreq", &cfg, WithConfigFile(path), WithEnvPrefix("SYNCTEST"))
		if err == nil || !strings.Contains(err.Error(), "transport.workers") {
			t.Errorf("unexpected error: %v", err)
		}
	})
}

type fakeFS map[string]bool

func (f fakeFS) Exists(path string) bool { return f[path] }
func (f fakeFS) LoadEnv(string) error    { return nil }

func TestResolve(t *testing.T) {
	tests := []struct {
		name string
		fs   fakeFS
		lc   LoaderConfig
		want ResolvedFiles
	}{
		{
			name: "explicit paths win",
			fs:   fakeFS{"./config.yml": true},
			lc:   LoaderConfig{ConfigFile: "a.yml", EnvFile: "b.env"},
			want: ResolvedFiles{ConfigFile: "a.yml", EnvFile: "b.env"},
		},
		{
			name: "cmd directory first",
			fs:   fakeFS{"./cmd/syncreq/config.yml": true, "./config.yml": true, "./.env": true},
			want: ResolvedFiles{ConfigFile: "./cmd/syncreq/config.yml", EnvFile: "./.env"},
		},
		{
			name: "named file",
			fs:   fakeFS{"./syncreq.yml": true, "./.env.syncreq": true},
			want: ResolvedFiles{ConfigFile: "./syncreq.yml", EnvFile: "./.env.syncreq"},
		},
		{
			name: "nothing found",
			fs:   fakeFS{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lc := tt.lc
			lc.FileSystem = tt.fs
			if got := Resolve("syncreq", lc); got != tt.want {
				t.Errorf("Resolve() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestEnvKeyVariants(t *testing.T) {
	got := envKeyVariants("TRANSPORT_BASE_URL")
	for _, want := range []string{"transport_base_url", "transport.base.url", "transport.base_url", "transport_base.url"} {
		found := false
		for _, g := range got {
			if g == want {
				found = true
			}
		}
		if !found {
			t.Errorf("variant %q missing from %v", want, got)
		}
	}
	if got := envKeyVariants("NAME"); len(got) != 1 || got[0] != "name" {
		t.Errorf("single-part key variants = %v", got)
	}
}
