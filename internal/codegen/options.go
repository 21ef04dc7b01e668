package codegen

import (
	"time"

	"go.uber.org/zap"

	"github.com/roach88/liqgen/internal/devices"
)

// FaultPolicy names the controller fault macros used by C fault checks.
type FaultPolicy struct {
	Group  string `yaml:"group" json:"group"`   // FAULT_CHECK_DEAL first argument
	Level  string `yaml:"level" json:"level"`   // fault level for START and DEAL
	Module string `yaml:"module" json:"module"` // default module when a device names none
}

// DefaultFaultPolicy is the policy of the sample needle module.
var DefaultFaultPolicy = FaultPolicy{
	Group:  "FAULT_NEEDLE_S",
	Level:  "MODULE_FAULT_LEVEL2",
	Module: "MODULE_FAULT_NEEDLE_S_PUMP",
}

// withDefaults fills empty fields from DefaultFaultPolicy.
func (p FaultPolicy) withDefaults() FaultPolicy {
	if p.Group == "" {
		p.Group = DefaultFaultPolicy.Group
	}
	if p.Level == "" {
		p.Level = DefaultFaultPolicy.Level
	}
	if p.Module == "" {
		p.Module = DefaultFaultPolicy.Module
	}
	return p
}

// Option configures a Renderer.
type Option func(*options)

type options struct {
	registry *devices.Registry
	fault    FaultPolicy
	clock    func() time.Time
	logger   *zap.Logger
	indent   string
}

func defaultOptions() options {
	return options{
		registry: devices.Builtin(),
		fault:    DefaultFaultPolicy,
		clock:    time.Now,
		logger:   zap.NewNop(),
		indent:   "    ",
	}
}

// WithRegistry sets the device table used to resolve identifiers.
func WithRegistry(r *devices.Registry) Option {
	return func(o *options) {
		if r != nil {
			o.registry = r
		}
	}
}

// WithFaultPolicy sets the fault macros used by C fault checks.
// Empty fields keep their defaults.
func WithFaultPolicy(p FaultPolicy) Option {
	return func(o *options) {
		o.fault = p.withDefaults()
	}
}

// WithClock sets the clock used for the generation timestamp in Lua headers.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.clock = now
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}
