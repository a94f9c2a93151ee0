// Package frontend is the narrow boundary between raw kernel source
// (LLVM-IR bitcode or a SPIR-V binary) and the typed ir.Module the core
// operates on. Decoding either format is out of scope for this core: both
// branches report which front-end was requested and that it is
// unavailable, so the driver can surface that as a local, recoverable
// failure rather than a panic.
package frontend

import (
	"github.com/xyproto/vc4c/internal/cerror"
	"github.com/xyproto/vc4c/internal/config"
	"github.com/xyproto/vc4c/internal/ir"
)

// Parse would decode data (LLVM-IR bitcode or a SPIR-V binary, per kind)
// into a Module. Neither decoder is implemented here; every call reports
// a StepParser error naming the front-end that was requested.
func Parse(data []byte, kind config.Frontend) (*ir.Module, error) {
	switch kind {
	case config.FrontendLLVM:
		return nil, cerror.New(cerror.StepParser, "LLVM-IR ingestion is not available in this build")
	case config.FrontendSPIRV:
		return nil, cerror.New(cerror.StepParser, "SPIR-V ingestion is not available in this build")
	default:
		return nil, cerror.New(cerror.StepParser, "no front-end available to auto-detect the input format")
	}
}
