// Package devices maps operator-facing device names to the identifiers used
// in generated code.
//
// Every valve, pump and motor has a C token (a controller macro such as
// VALVE_SV1) and a Lua handle (a runtime object path such as valve.sv1).
// Names that are not in the table fall back to the literal name: verbatim
// for C, lower-cased for Lua.
package devices

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"
)

// Kind is the class of a device.
type Kind string

const (
	KindValve Kind = "valve"
	KindPump  Kind = "pump"
	KindMotor Kind = "motor"
)

// ValidKinds defines allowed device kinds.
var ValidKinds = map[Kind]bool{
	KindValve: true,
	KindPump:  true,
	KindMotor: true,
}

// Device is one entry of the name-mapping table.
type Device struct {
	Name        string   `yaml:"name" json:"name"`
	Kind        Kind     `yaml:"kind" json:"kind"`
	Label       string   `yaml:"label,omitempty" json:"label,omitempty"`
	CToken      string   `yaml:"c_token" json:"c_token"`
	LuaHandle   string   `yaml:"lua_handle" json:"lua_handle"`
	FaultModule string   `yaml:"fault_module,omitempty" json:"fault_module,omitempty"` // C fault module override
	Aliases     []string `yaml:"aliases,omitempty" json:"aliases,omitempty"`
}

// Registry resolves device names. The zero value is empty; use Builtin or
// NewRegistry. A Registry is not safe for concurrent mutation.
type Registry struct {
	devices []Device
	index   map[string]int // normalized name or alias -> devices index
}

// NewRegistry creates a registry from the given devices.
// Later entries with the same name replace earlier ones.
func NewRegistry(devs ...Device) (*Registry, error) {
	r := &Registry{index: make(map[string]int)}
	if err := r.Merge(devs...); err != nil {
		return nil, err
	}
	return r, nil
}

// Builtin returns a registry holding the standard instrument table.
func Builtin() *Registry {
	r, err := NewRegistry(builtinDevices()...)
	if err != nil {
		panic(fmt.Sprintf("devices: invalid builtin table: %v", err))
	}
	return r
}

// Merge adds or replaces devices. An entry whose name matches an existing
// device replaces it in place; new entries are appended.
func (r *Registry) Merge(devs ...Device) error {
	if r.index == nil {
		r.index = make(map[string]int)
	}
	for i, d := range devs {
		if err := d.validate(); err != nil {
			return fmt.Errorf("device[%d]: %w", i, err)
		}

		if pos, ok := r.index[normalize(d.Name)]; ok && normalize(r.devices[pos].Name) == normalize(d.Name) {
			r.unindex(pos)
			r.devices[pos] = d
			r.indexDevice(pos)
			continue
		}

		r.devices = append(r.devices, d)
		r.indexDevice(len(r.devices) - 1)
	}
	return nil
}

func (r *Registry) indexDevice(pos int) {
	d := r.devices[pos]
	r.index[normalize(d.Name)] = pos
	for _, a := range d.Aliases {
		r.index[normalize(a)] = pos
	}
}

func (r *Registry) unindex(pos int) {
	for k, v := range r.index {
		if v == pos {
			delete(r.index, k)
		}
	}
}

// Lookup finds a device by name or alias. Matching ignores case and
// surrounding whitespace, and compares NFC-normalized text.
func (r *Registry) Lookup(name string) (Device, bool) {
	if r == nil || r.index == nil {
		return Device{}, false
	}
	pos, ok := r.index[normalize(name)]
	if !ok {
		return Device{}, false
	}
	return r.devices[pos], true
}

// CToken returns the C token for name, or the name itself if unmapped.
func (r *Registry) CToken(name string) string {
	if d, ok := r.Lookup(name); ok {
		return d.CToken
	}
	return strings.TrimSpace(name)
}

// LuaHandle returns the Lua handle for name, or the lower-cased name if unmapped.
func (r *Registry) LuaHandle(name string) string {
	if d, ok := r.Lookup(name); ok {
		return d.LuaHandle
	}
	return strings.ToLower(strings.TrimSpace(name))
}

// FaultModule returns the fault module override for name, if any.
func (r *Registry) FaultModule(name string) string {
	if d, ok := r.Lookup(name); ok {
		return d.FaultModule
	}
	return ""
}

// All returns the devices in table order.
func (r *Registry) All() []Device {
	if r == nil {
		return nil
	}
	out := make([]Device, len(r.devices))
	copy(out, r.devices)
	return out
}

// Clone returns an independent copy of the registry.
func (r *Registry) Clone() *Registry {
	c, _ := NewRegistry(r.All()...)
	return c
}

func (d Device) validate() error {
	if strings.TrimSpace(d.Name) == "" {
		return fmt.Errorf("name is required")
	}
	if !ValidKinds[d.Kind] {
		return fmt.Errorf("%s: invalid kind %q (must be valve, pump or motor)", d.Name, d.Kind)
	}
	if d.CToken == "" {
		return fmt.Errorf("%s: c_token is required", d.Name)
	}
	if d.LuaHandle == "" {
		return fmt.Errorf("%s: lua_handle is required", d.Name)
	}
	return nil
}

// DecodeYAML reads a device list from YAML:
//
//	- name: SV13
//	  kind: valve
//	  c_token: VALVE_SV13
//	  lua_handle: valve.sv13
//
// Unknown fields are rejected.
func DecodeYAML(r io.Reader) ([]Device, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read device table: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}

	var devs []Device
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&devs); err != nil {
		return nil, fmt.Errorf("parse device table: %w", err)
	}
	return devs, nil
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(norm.NFC.String(name)))
}
