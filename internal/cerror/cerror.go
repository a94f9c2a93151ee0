// Package cerror defines the single failure type shared across every
// compilation step, from LLVM/SPIR-V ingestion down to assembly emission.
package cerror

import "fmt"

// Step tags the pipeline stage that raised a CompilationError.
type Step int

const (
	StepGeneral Step = iota
	StepScanner
	StepParser
	StepLLVMToIR
	StepOptimizer
	StepCodeGeneration
	StepLinker
	StepVerifier
	StepPrecompilation
)

func (s Step) String() string {
	switch s {
	case StepGeneral:
		return "general"
	case StepScanner:
		return "scanner"
	case StepParser:
		return "parser"
	case StepLLVMToIR:
		return "llvm_to_ir"
	case StepOptimizer:
		return "optimizer"
	case StepCodeGeneration:
		return "code_generation"
	case StepLinker:
		return "linker"
	case StepVerifier:
		return "verifier"
	case StepPrecompilation:
		return "precompilation"
	default:
		return "unknown"
	}
}

// CompilationError is the single error type raised from anywhere in the
// core. The taxonomy is intentionally coarse: a step tag, a message, and an
// optional rendering of the value that triggered it.
type CompilationError struct {
	Step          Step
	Message       string
	OffendingText string
}

func New(step Step, message string) *CompilationError {
	return &CompilationError{Step: step, Message: message}
}

func Newf(step Step, format string, args ...any) *CompilationError {
	return &CompilationError{Step: step, Message: fmt.Sprintf(format, args...)}
}

// WithOffending attaches the textual form of the instruction or value that
// triggered the error, mirroring the offending-value rendering required of
// every fatal, non-recoverable condition.
func (e *CompilationError) WithOffending(text string) *CompilationError {
	e.OffendingText = text
	return e
}

func (e *CompilationError) Error() string {
	if e.OffendingText == "" {
		return fmt.Sprintf("%s: %s", e.Step, e.Message)
	}
	return fmt.Sprintf("%s: %s (%s)", e.Step, e.Message, e.OffendingText)
}
