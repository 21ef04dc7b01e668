package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/liqgen/internal/codegen"
	"github.com/roach88/liqgen/internal/devices"
)

func writeConfig(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, "liqgen.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestLoadDefaultsWhenAbsent(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv(EnvConfig, "")
	t.Setenv(EnvDatabase, "")
	t.Setenv(EnvLogLevel, "")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
	assert.Empty(t, cfg.Path())
	assert.Equal(t, codegen.FormatC, cfg.Format())
}

func TestLoadExplicitMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorContains(t, err, "failed to read config")
}

func TestLoadFile(t *testing.T) {
	t.Setenv(EnvDatabase, "")
	t.Setenv(EnvLogLevel, "")
	path := writeConfig(t, t.TempDir(), `
output:
  language: lua
library:
  path: /var/lib/liqgen/library.db
logging:
  level: debug
  format: json
fault:
  group: FAULT_REAGENT
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, path, cfg.Path())
	assert.Equal(t, codegen.FormatLua, cfg.Format())
	assert.Equal(t, ".", cfg.Output.Dir, "unset fields keep their defaults")
	assert.Equal(t, "/var/lib/liqgen/library.db", cfg.Library.Path)
	assert.Equal(t, LoggingConfig{Level: "debug", Format: "json"}, cfg.Logging)
	assert.Equal(t, "FAULT_REAGENT", cfg.Fault.Group)
	assert.Equal(t, codegen.DefaultFaultPolicy.Module, cfg.Fault.Module)
}

func TestLoadFromEnv(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "output:\n  language: lua\n")
	t.Setenv(EnvConfig, path)
	t.Setenv(EnvDatabase, "/tmp/override.db")
	t.Setenv(EnvLogLevel, "error")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, codegen.FormatLua, cfg.Format())
	assert.Equal(t, "/tmp/override.db", cfg.Library.Path)
	assert.Equal(t, "error", cfg.Logging.Level)
}

func TestLoadRejects(t *testing.T) {
	t.Setenv(EnvDatabase, "")
	t.Setenv(EnvLogLevel, "")

	tests := []struct {
		name string
		body string
		want string
	}{
		{"unknown field", "outptu:\n  language: c\n", "field outptu not found"},
		{"bad language", "output:\n  language: basic\n", "output.language"},
		{"bad level", "logging:\n  level: loud\n", "invalid logging.level"},
		{"bad format", "logging:\n  format: xml\n", "invalid logging.format"},
		{"empty library path", "library:\n  path: \"\"\n", "library.path"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, t.TempDir(), tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadEmptyFile(t *testing.T) {
	t.Setenv(EnvDatabase, "")
	t.Setenv(EnvLogLevel, "")

	cfg, err := Load(writeConfig(t, t.TempDir(), "\n"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().Output, cfg.Output)
}

func TestRegistry(t *testing.T) {
	t.Setenv(EnvDatabase, "")
	t.Setenv(EnvLogLevel, "")
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "extra.yaml"), []byte(`
- name: SV20
  kind: valve
  c_token: VALVE_SV20
  lua_handle: valve.sv20
`), 0644))
	path := writeConfig(t, dir, `
devices:
  file: extra.yaml
  entries:
    - name: heater
      kind: motor
      c_token: MOTOR_HEATER
      lua_handle: motor.heater
      fault_module: MODULE_FAULT_HEATER
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	reg, err := cfg.Registry()
	require.NoError(t, err)

	assert.Equal(t, "VALVE_SV20", reg.CToken("SV20"))
	assert.Equal(t, "motor.heater", reg.LuaHandle("heater"))
	assert.Equal(t, "MODULE_FAULT_HEATER", reg.FaultModule("heater"))
	assert.Equal(t, "VALVE_SV1", reg.CToken("SV1"), "builtin entries remain")
}

func TestRegistryBadEntries(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Devices.File = filepath.Join(t.TempDir(), "missing.yaml")
	_, err := cfg.Registry()
	assert.ErrorContains(t, err, "devices.file")

	cfg = DefaultConfig()
	cfg.Devices.Entries = devicesWithoutToken()
	_, err = cfg.Registry()
	assert.ErrorContains(t, err, "devices.entries")
}

func devicesWithoutToken() []devices.Device {
	return []devices.Device{{Name: "SV30", Kind: devices.KindValve, LuaHandle: "valve.sv30"}}
}
