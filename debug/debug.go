// Package debug exposes env-gated debug switches for noisy
// subsystems.  Set PARAM_DEBUG_TOKENS, PARAM_DEBUG_ADMIT, or
// PARAM_DEBUG_BUS to a non-empty value other than "0" or "false" to
// enable the corresponding trace.
package debug

import "os"

type debug struct {
	Tokens bool
	Admit  bool
	Bus    bool
}

var d *debug

func init() {
	d = &debug{
		Tokens: boolEnv("PARAM_DEBUG_TOKENS"),
		Admit:  boolEnv("PARAM_DEBUG_ADMIT"),
		Bus:    boolEnv("PARAM_DEBUG_BUS"),
	}
}

func boolEnv(name string) bool {
	switch os.Getenv(name) {
	case "", "0", "false":
		return false
	}
	return true
}

// Tokens reports whether token-stream tracing is on.
func Tokens() bool { return d.Tokens }

// Admit reports whether update-admission tracing is on.
func Admit() bool { return d.Admit }

// Bus reports whether in-process bus tracing is on.
func Bus() bool { return d.Bus }
