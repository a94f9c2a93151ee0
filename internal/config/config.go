// Package config holds the compile-time configuration record that crosses
// the boundary between the driver and the core, plus the process-wide
// logger that replaces the original tool's global mutable logging sink.
package config

import (
	"fmt"
	"io"
	"os"

	env "github.com/xyproto/env/v2"
)

// MathType selects how aggressively floating-point lowering may trade
// precision for fewer instructions.
type MathType int

const (
	MathStrict MathType = iota
	MathFast
	MathFull
)

func ParseMathType(s string) (MathType, error) {
	switch s {
	case "strict", "":
		return MathStrict, nil
	case "fast":
		return MathFast, nil
	case "full":
		return MathFull, nil
	default:
		return MathStrict, fmt.Errorf("unknown math type %q", s)
	}
}

// OutputMode selects the serialization of the emitted module.
type OutputMode int

const (
	OutputBinary OutputMode = iota
	OutputHex
	OutputAssembler
)

func ParseOutputMode(s string) (OutputMode, error) {
	switch s {
	case "bin", "binary", "":
		return OutputBinary, nil
	case "hex":
		return OutputHex, nil
	case "asm", "assembler":
		return OutputAssembler, nil
	default:
		return OutputBinary, fmt.Errorf("unknown output mode %q", s)
	}
}

// Frontend selects which high-level IR the (out-of-core) front-end consumed
// to build the Module passed to the core.
type Frontend int

const (
	FrontendAuto Frontend = iota
	FrontendLLVM
	FrontendSPIRV
)

func ParseFrontend(s string) (Frontend, error) {
	switch s {
	case "auto", "":
		return FrontendAuto, nil
	case "llvm":
		return FrontendLLVM, nil
	case "spirv":
		return FrontendSPIRV, nil
	default:
		return FrontendAuto, fmt.Errorf("unknown frontend %q", s)
	}
}

// Config is the contract between the driver and the core: everything the
// core needs to know beyond the Module itself.
type Config struct {
	MathType     MathType
	OutputMode   OutputMode
	Frontend     Frontend
	VerifyOutput bool
	Logger       *Logger
}

// FromEnvironment builds a Config seeded from VC4C_* environment variables,
// overridable by whatever the driver then applies on top from flags.
func FromEnvironment() Config {
	mt, _ := ParseMathType(env.Str("VC4C_MATH_TYPE", "strict"))
	om, _ := ParseOutputMode(env.Str("VC4C_OUTPUT_MODE", "binary"))
	fe, _ := ParseFrontend(env.Str("VC4C_FRONTEND", "auto"))
	return Config{
		MathType:     mt,
		OutputMode:   om,
		Frontend:     fe,
		VerifyOutput: env.Bool("VC4C_VERIFY"),
		Logger:       NewLogger(os.Stderr, env.Bool("VC4C_VERBOSE")),
	}
}

// Level is the severity of a single log line.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warning"
	case LevelError:
		return "error"
	default:
		return "unknown"
	}
}

// Logger is a tiny sink passed explicitly through the Config record instead
// of living as a package-level global, so that concurrent per-method
// optimization has one append-only point of contention instead of a shared
// mutable global.
type Logger struct {
	out     io.Writer
	verbose bool
}

func NewLogger(out io.Writer, verbose bool) *Logger {
	if out == nil {
		out = io.Discard
	}
	return &Logger{out: out, verbose: verbose}
}

func (l *Logger) log(level Level, format string, args ...any) {
	if l == nil {
		return
	}
	if level == LevelDebug && !l.verbose {
		return
	}
	fmt.Fprintf(l.out, "%s: %s\n", level, fmt.Sprintf(format, args...))
}

func (l *Logger) Debug(format string, args ...any) { l.log(LevelDebug, format, args...) }
func (l *Logger) Info(format string, args ...any)  { l.log(LevelInfo, format, args...) }
func (l *Logger) Warn(format string, args ...any)  { l.log(LevelWarn, format, args...) }
func (l *Logger) Error(format string, args ...any) { l.log(LevelError, format, args...) }
