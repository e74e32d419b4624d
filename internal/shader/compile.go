package shader

import (
	"github.com/gogpu/naga"
)

// Compiler turns WGSL source into SPIR-V bytes.
type Compiler interface {
	Compile(source string) ([]byte, error)
}

// CompilerFunc adapts a function to Compiler.
type CompilerFunc func(source string) ([]byte, error)

// Compile calls f(source).
func (f CompilerFunc) Compile(source string) ([]byte, error) { return f(source) }

// Naga compiles with github.com/gogpu/naga. Errors are returned as naga
// reports them.
var Naga Compiler = CompilerFunc(func(source string) ([]byte, error) {
	return naga.Compile(source)
})

// Program is a compiled shader program.
type Program struct {
	Key      uint64
	Source   string
	SPIRV    []byte
	Bindings []Binding
}

// Words returns the SPIR-V module as little-endian 32-bit words.
func (p *Program) Words() []uint32 {
	words := make([]uint32, len(p.SPIRV)/4)
	for i := range words {
		words[i] = uint32(p.SPIRV[i*4]) |
			uint32(p.SPIRV[i*4+1])<<8 |
			uint32(p.SPIRV[i*4+2])<<16 |
			uint32(p.SPIRV[i*4+3])<<24
	}
	return words
}
