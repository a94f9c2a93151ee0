package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/xyproto/vc4c/internal/asm"
	"github.com/xyproto/vc4c/internal/compiler"
	"github.com/xyproto/vc4c/internal/config"
	"github.com/xyproto/vc4c/internal/frontend"
	"github.com/xyproto/vc4c/internal/ir"
)

type options struct {
	outputPath string
	bin, hex, asmMode bool
	llvm, spirv       bool
	kernelInfo        bool
	verify            bool
}

func newRootCommand() *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:   "vc4c <input>",
		Short: "Compile an ingested OpenCL-C kernel module to VC4 machine code",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(args[0], opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.outputPath, "output", "o", "", "output file path (default: stdout)")
	flags.BoolVar(&opts.bin, "bin", false, "emit raw binary machine code (default)")
	flags.BoolVar(&opts.hex, "hex", false, "emit hex-pair source listing")
	flags.BoolVar(&opts.asmMode, "asm", false, "emit human-readable assembler listing")
	flags.BoolVar(&opts.llvm, "llvm", false, "force the LLVM-IR front-end")
	flags.BoolVar(&opts.spirv, "spirv", false, "force the SPIR-V front-end")
	flags.BoolVar(&opts.kernelInfo, "kernel-info", false, "print kernel records and exit without emitting code")
	flags.BoolVar(&opts.verify, "verify", false, "verify scheduling hazard invariants after legalization")
	cmd.MarkFlagsMutuallyExclusive("bin", "hex", "asm")
	cmd.MarkFlagsMutuallyExclusive("llvm", "spirv")

	return cmd
}

func run(inputPath string, opts options) error {
	data, err := os.ReadFile(inputPath)
	if err != nil {
		return err
	}

	cfg := config.FromEnvironment()
	cfg.VerifyOutput = cfg.VerifyOutput || opts.verify
	switch {
	case opts.llvm:
		cfg.Frontend = config.FrontendLLVM
	case opts.spirv:
		cfg.Frontend = config.FrontendSPIRV
	}
	switch {
	case opts.hex:
		cfg.OutputMode = config.OutputHex
	case opts.asmMode:
		cfg.OutputMode = config.OutputAssembler
	case opts.bin:
		cfg.OutputMode = config.OutputBinary
	}

	mod, err := frontend.Parse(data, cfg.Frontend)
	if err != nil {
		return err
	}

	if err := compiler.Compile(mod, cfg); err != nil {
		return err
	}

	if opts.kernelInfo {
		return printKernelInfo(mod)
	}

	out := os.Stdout
	if opts.outputPath != "" {
		f, err := os.Create(opts.outputPath)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}
	return asm.Emit(mod, outputModeToAsmMode(cfg.OutputMode), out)
}

func outputModeToAsmMode(m config.OutputMode) asm.Mode {
	switch m {
	case config.OutputHex:
		return asm.ModeHex
	case config.OutputAssembler:
		return asm.ModeAssembler
	default:
		return asm.ModeBinary
	}
}

func printKernelInfo(mod *ir.Module) error {
	for _, k := range mod.Kernels() {
		fmt.Printf("kernel %s (%d parameter(s), %d instruction(s))\n", k.Name, len(k.Parameters), k.CountInstructions())
		for _, p := range k.Parameters {
			fmt.Printf("  %s %s\n", p.Local.Type, p.Local.Name)
		}
	}
	return nil
}
