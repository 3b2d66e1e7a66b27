// Package config holds the process-wide tunables of the array runtime.
//
// The tunables decide when elementwise loops are spread over a goroutine
// pool and how much memory a single heap store may claim. They are read
// once, from the environment, the first time Current is called; a host
// program may instead install its own set with Set during startup, usually
// loaded from a YAML file with Load.
package config

import (
	"fmt"
	"os"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/xyproto/env/v2"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/sbl8/arraycore/core"
)

// Environment variables consulted by FromEnv.
const (
	EnvNThreads     = "ARRAYCORE_NTHREADS"
	EnvMinElts      = "ARRAYCORE_TPOOL_MIN_ELTS"
	EnvMaxElts      = "ARRAYCORE_TPOOL_MAX_ELTS"
	EnvMaxHeapBytes = "ARRAYCORE_MAX_HEAP_BYTES"
)

// DefaultMinElts is the element count below which parallel dispatch costs
// more than it saves.
const DefaultMinElts = 100000

// Tunables configures elementwise loop dispatch and heap limits.
type Tunables struct {
	NCPU     int `yaml:"ncpu"`           // hardware threads detected
	NThreads int `yaml:"tpool_nthreads"` // goroutines per parallel loop
	MinElts  int `yaml:"tpool_min_elts"` // smallest loop worth parallelizing
	MaxElts  int `yaml:"tpool_max_elts"` // largest loop to parallelize, 0 = unbounded

	// MaxHeapBytes caps a single heap store. 0 means the platform limit.
	MaxHeapBytes uint64 `yaml:"max_heap_bytes"`
}

// Defaults returns tunables sized to the current machine.
func Defaults() Tunables {
	n := runtime.NumCPU()
	return Tunables{
		NCPU:     n,
		NThreads: n,
		MinElts:  DefaultMinElts,
		MaxElts:  0,
	}
}

// FromEnv returns Defaults overridden by the ARRAYCORE_* variables.
func FromEnv() Tunables {
	t := Defaults()
	t.NThreads = env.Int(EnvNThreads, t.NThreads)
	t.MinElts = env.Int(EnvMinElts, t.MinElts)
	t.MaxElts = env.Int(EnvMaxElts, t.MaxElts)
	if v := env.Int(EnvMaxHeapBytes, 0); v > 0 {
		t.MaxHeapBytes = uint64(v)
	}
	return t
}

// Load reads tunables from a YAML file. Keys absent from the file keep their
// Defaults value.
func Load(path string) (Tunables, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Tunables{}, fmt.Errorf("read tunables: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML tunables over Defaults and validates the result.
func Parse(data []byte) (Tunables, error) {
	t := Defaults()
	if err := yaml.Unmarshal(data, &t); err != nil {
		return Tunables{}, fmt.Errorf("decode tunables: %w", err)
	}
	if err := t.Validate(); err != nil {
		return Tunables{}, err
	}
	return t, nil
}

// Validate reports tunables that cannot drive a loop.
func (t Tunables) Validate() error {
	switch {
	case t.NThreads < 1:
		return &core.Error{Kind: core.KindInvalidInput, Op: "config.Validate",
			Detail: fmt.Sprintf("tpool_nthreads must be at least 1, got %d", t.NThreads)}
	case t.MinElts < 0:
		return &core.Error{Kind: core.KindInvalidInput, Op: "config.Validate",
			Detail: fmt.Sprintf("tpool_min_elts must not be negative, got %d", t.MinElts)}
	case t.MaxElts < 0:
		return &core.Error{Kind: core.KindInvalidInput, Op: "config.Validate",
			Detail: fmt.Sprintf("tpool_max_elts must not be negative, got %d", t.MaxElts)}
	}
	return nil
}

var (
	current     atomic.Pointer[Tunables]
	currentOnce sync.Once
)

// Current returns the process-wide tunables, reading the environment on
// first use.
func Current() Tunables {
	currentOnce.Do(func() {
		if current.Load() != nil {
			return
		}
		t := FromEnv()
		if err := t.Validate(); err != nil {
			core.Logger().Warn("ignoring invalid tunables from environment", zap.Error(err))
			t = Defaults()
		}
		current.Store(&t)
	})
	return *current.Load()
}

// Set installs t as the process-wide tunables.
func Set(t Tunables) error {
	if err := t.Validate(); err != nil {
		return err
	}
	current.Store(&t)
	core.Logger().Debug("tunables installed",
		zap.Int("nthreads", t.NThreads),
		zap.Int("min_elts", t.MinElts),
		zap.Int("max_elts", t.MaxElts),
		zap.Uint64("max_heap_bytes", t.MaxHeapBytes))
	return nil
}
