// Command vc4c compiles a pre-ingested OpenCL-C kernel module down to the
// fixed VC4 machine encoding.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
