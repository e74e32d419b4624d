package shader

import (
	"testing"

	"github.com/gogpu/dof/internal/filter"
)

func TestNagaCompilesKernelBlur(t *testing.T) {
	taps := filter.LinearSamplingTaps(filter.BuildTaps(filter.NearestBestKernel(15)))

	for _, tt := range []struct {
		name    string
		defines []Define
	}{
		{"plain", nil},
		{"depth aware", []Define{{Name: DefineDOF, Value: "1"}}},
	} {
		t.Run(tt.name, func(t *testing.T) {
			src, err := KernelBlur(tt.defines, taps)
			if err != nil {
				t.Fatalf("KernelBlur: %v", err)
			}

			spirv, err := Naga.Compile(src)
			if err != nil {
				t.Fatalf("naga.Compile: %v\n%s", err, src)
			}

			p := &Program{SPIRV: spirv}
			words := p.Words()
			if len(words) == 0 || words[0] != 0x07230203 {
				t.Errorf("output does not start with the SPIR-V magic number")
			}
		})
	}
}
