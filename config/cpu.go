package config

import (
	"runtime"

	"golang.org/x/sys/cpu"
)

// Features lists the vector extensions available to elementwise loops on
// this machine, for diagnostics.
func Features() []string {
	var fs []string
	switch runtime.GOARCH {
	case "amd64", "386":
		if cpu.X86.HasSSE41 {
			fs = append(fs, "sse4.1")
		}
		if cpu.X86.HasAVX {
			fs = append(fs, "avx")
		}
		if cpu.X86.HasAVX2 {
			fs = append(fs, "avx2")
		}
		if cpu.X86.HasAVX512F {
			fs = append(fs, "avx512f")
		}
	case "arm64":
		if cpu.ARM64.HasASIMD {
			fs = append(fs, "asimd")
		}
		if cpu.ARM64.HasSVE {
			fs = append(fs, "sve")
		}
	}
	return fs
}
