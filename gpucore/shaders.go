package gpucore

import (
	"fmt"

	"github.com/gogpu/naga"
)

// CompileToSPIRV compiles WGSL source to a SPIR-V word stream via
// github.com/gogpu/naga, the same compile step the teacher's
// internal/native/shader_helper.go used for every one of its rasterizer
// backends (CompileShaderToSPIRV). Kept as a package-level function here
// rather than a method since compilation doesn't depend on adapter state.
func CompileToSPIRV(wgslSource string) ([]uint32, error) {
	spirvBytes, err := naga.Compile(wgslSource)
	if err != nil {
		return nil, fmt.Errorf("gpucore: compile shader: %w", err)
	}

	spirvCode := make([]uint32, len(spirvBytes)/4)
	for i := range spirvCode {
		spirvCode[i] = uint32(spirvBytes[i*4]) |
			uint32(spirvBytes[i*4+1])<<8 |
			uint32(spirvBytes[i*4+2])<<16 |
			uint32(spirvBytes[i*4+3])<<24
	}
	return spirvCode, nil
}

// AssembleShader concatenates a shared prelude (the read_byte/write_byte
// storage-buffer accessors every kernel shader needs) with an
// operation-specific compute body, so each kernel's .wgsl file only has to
// contain its own @compute entry point.
func AssembleShader(prelude, body string) string {
	return prelude + "\n" + body
}
