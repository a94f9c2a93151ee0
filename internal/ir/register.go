package ir

import "fmt"

// RegisterFile names which of the hardware register files a Register
// belongs to.
type RegisterFile int

const (
	FileA RegisterFile = iota
	FileB
	FileAccumulator
	FilePeripheral
)

func (f RegisterFile) String() string {
	switch f {
	case FileA:
		return "ra"
	case FileB:
		return "rb"
	case FileAccumulator:
		return "acc"
	case FilePeripheral:
		return "per"
	default:
		return "?"
	}
}

// Register is a (file, index) pair. A handful of indices in the
// accumulator and peripheral files are distinguished special registers
// with hard-wired read/write behaviour.
type Register struct {
	File  RegisterFile
	Index int
	Name  string
}

func (r Register) String() string {
	if r.Name != "" {
		return r.Name
	}
	return fmt.Sprintf("%s%d", r.File, r.Index)
}

func (r Register) Equal(o Register) bool { return r.File == o.File && r.Index == o.Index }

// Distinguished special registers. Accumulators r0-r3 are general purpose;
// r4 carries the SFU/TMU result, r5 is the replicate/rotation register.
var (
	RegElementNumber = Register{File: FilePeripheral, Index: 0, Name: "elem_num"}
	RegQPUNumber     = Register{File: FilePeripheral, Index: 1, Name: "qpu_num"}
	RegReplicateAll  = Register{File: FileAccumulator, Index: 5, Name: "r5"}
	RegRotation      = Register{File: FileAccumulator, Index: 5, Name: "r5"}
	RegNOP           = Register{File: FilePeripheral, Index: 2, Name: "nop"}
	RegSFUOutput     = Register{File: FileAccumulator, Index: 4, Name: "r4"}

	// SFU input registers: writing one triggers the corresponding unit.
	RegSFURecip      = Register{File: FilePeripheral, Index: 10, Name: "sfu_recip"}
	RegSFURecipSqrt  = Register{File: FilePeripheral, Index: 11, Name: "sfu_rsqrt"}
	RegSFUExp2       = Register{File: FilePeripheral, Index: 12, Name: "sfu_exp2"}
	RegSFULog2       = Register{File: FilePeripheral, Index: 13, Name: "sfu_log2"}

	RegVPM   = Register{File: FilePeripheral, Index: 20, Name: "vpm"}
	RegVPMRD = Register{File: FilePeripheral, Index: 21, Name: "vpm_rd_setup"}
	RegVPMWR = Register{File: FilePeripheral, Index: 22, Name: "vpm_wr_setup"}
	RegDMARD = Register{File: FilePeripheral, Index: 23, Name: "dma_rd_setup"}
	RegDMAWR = Register{File: FilePeripheral, Index: 24, Name: "dma_wr_setup"}
	RegDMAWait = Register{File: FilePeripheral, Index: 25, Name: "dma_wait"}
	RegTMU0S = Register{File: FilePeripheral, Index: 26, Name: "tmu0_s"}

	RegSemaphore = Register{File: FilePeripheral, Index: 30, Name: "sema"}
	RegMutex     = Register{File: FilePeripheral, Index: 31, Name: "mutex"}

	RegAccumulator = [4]Register{
		{File: FileAccumulator, Index: 0, Name: "r0"},
		{File: FileAccumulator, Index: 1, Name: "r1"},
		{File: FileAccumulator, Index: 2, Name: "r2"},
		{File: FileAccumulator, Index: 3, Name: "r3"},
	}
)

// IsAccumulator reports whether the register is one of r0-r5.
func (r Register) IsAccumulator() bool { return r.File == FileAccumulator }
