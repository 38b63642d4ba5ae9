package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Limits carries every resource budget the core honors. Zero values are
// replaced with defaults by Normalize, so a partial YAML file only overrides
// what it names.
type Limits struct {
	InferenceWorkBudget   int `yaml:"inference_work_budget"`
	MaxCallDepth          int `yaml:"max_call_depth"`
	GCAllocationThreshold int `yaml:"gc_allocation_threshold"`
	GCWorkLimit           int `yaml:"gc_work_limit"`
	GCIterationCap        int `yaml:"gc_iteration_cap"`
	MemoryBudgetBytes     int `yaml:"memory_budget_bytes"`
}

// DefaultLimits returns the built-in budgets.
func DefaultLimits() Limits {
	return Limits{
		InferenceWorkBudget:   DefaultInferenceWorkBudget,
		MaxCallDepth:          DefaultMaxCallDepth,
		GCAllocationThreshold: DefaultGCAllocationThreshold,
		GCWorkLimit:           DefaultGCWorkLimit,
		GCIterationCap:        DefaultGCIterationCap,
		MemoryBudgetBytes:     DefaultMemoryBudgetBytes,
	}
}

// Normalize fills unset fields with defaults and rejects negative budgets.
func (l Limits) Normalize() (Limits, error) {
	def := DefaultLimits()
	if l.InferenceWorkBudget < 0 || l.MaxCallDepth < 0 || l.GCAllocationThreshold < 0 ||
		l.GCWorkLimit < 0 || l.GCIterationCap < 0 || l.MemoryBudgetBytes < 0 {
		return Limits{}, fmt.Errorf("config: limits must not be negative: %+v", l)
	}
	if l.InferenceWorkBudget == 0 {
		l.InferenceWorkBudget = def.InferenceWorkBudget
	}
	if l.MaxCallDepth == 0 {
		l.MaxCallDepth = def.MaxCallDepth
	}
	if l.GCAllocationThreshold == 0 {
		l.GCAllocationThreshold = def.GCAllocationThreshold
	}
	if l.GCWorkLimit == 0 {
		l.GCWorkLimit = def.GCWorkLimit
	}
	if l.GCIterationCap == 0 {
		l.GCIterationCap = def.GCIterationCap
	}
	if l.MemoryBudgetBytes == 0 {
		l.MemoryBudgetBytes = def.MemoryBudgetBytes
	}
	return l, nil
}

// ParseLimits reads budgets from YAML.
func ParseLimits(data []byte) (Limits, error) {
	var l Limits
	if err := yaml.Unmarshal(data, &l); err != nil {
		return Limits{}, fmt.Errorf("config: parsing limits: %w", err)
	}
	return l.Normalize()
}

// LoadLimits reads budgets from a YAML file.
func LoadLimits(path string) (Limits, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Limits{}, fmt.Errorf("config: reading limits: %w", err)
	}
	return ParseLimits(data)
}
