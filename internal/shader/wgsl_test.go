package shader

import (
	"strings"
	"testing"

	"github.com/gogpu/dof/internal/filter"
)

func testTaps() []filter.Tap {
	return filter.LinearSamplingTaps(filter.BuildTaps(9))
}

func TestKernelBlurPlain(t *testing.T) {
	src, err := KernelBlur(nil, testTaps())
	if err != nil {
		t.Fatalf("KernelBlur: %v", err)
	}

	if strings.Contains(src, "circleOfConfusionSampler") {
		t.Error("plain program should not declare circleOfConfusionSampler")
	}
	if got, want := strings.Count(src, "let coord ="), len(testTaps()); got != want {
		t.Errorf("tap blocks = %d, want %d", got, want)
	}
	if !strings.Contains(src, "@fragment") || !strings.Contains(src, "@vertex") {
		t.Error("program is missing an entry point")
	}
}

func TestKernelBlurDepthAware(t *testing.T) {
	taps := testTaps()
	src, err := KernelBlur([]Define{{Name: DefineDOF, Value: "1"}}, taps)
	if err != nil {
		t.Fatalf("KernelBlur: %v", err)
	}

	for _, want := range []string{
		"// #define DOF 1",
		"const DOF: f32 = 1.00000000;",
		"var circleOfConfusionSampler: texture_2d<f32>",
		"fn depthAttenuation",
		"sumOfWeights",
	} {
		if !strings.Contains(src, want) {
			t.Errorf("program missing %q", want)
		}
	}

	// Every tap except the center one is attenuated.
	if got, want := strings.Count(src, "* depthAttenuation("), len(taps)-1; got != want {
		t.Errorf("attenuated taps = %d, want %d", got, want)
	}
}

func TestKernelBlurSkipsNonNumericConsts(t *testing.T) {
	src, err := KernelBlur([]Define{
		{Name: "PACKEDFLOAT"},
		{Name: "lower", Value: "1"},
		{Name: "LEVEL", Value: "2"},
	}, testTaps())
	if err != nil {
		t.Fatalf("KernelBlur: %v", err)
	}

	if strings.Contains(src, "const PACKEDFLOAT") || strings.Contains(src, "const lower") {
		t.Error("only upper-case numeric defines become constants")
	}
	if !strings.Contains(src, "const LEVEL: f32 = 2.00000000;") {
		t.Error("numeric define LEVEL should become a constant")
	}
	if !strings.Contains(src, "// #define PACKEDFLOAT\n") {
		t.Error("value-less define should still be recorded")
	}
}

func TestFormatFloatHasDecimalPoint(t *testing.T) {
	for _, v := range []float32{0, 1, -2, 0.5} {
		if s := formatFloat(v); !strings.Contains(s, ".") {
			t.Errorf("formatFloat(%v) = %q, want a decimal point", v, s)
		}
	}
}

func TestKernelBlurFallsBackToCenter(t *testing.T) {
	src, err := KernelBlur([]Define{{Name: DefineDOF, Value: "1"}}, testTaps())
	if err != nil {
		t.Fatalf("KernelBlur: %v", err)
	}

	if strings.Contains(src, "max(sumOfWeights") {
		t.Error("rejected taps must not divide by a clamped weight sum")
	}
	want := "if (sumOfWeights <= 0.0) {\n        return textureSampleLevel(textureSampler, linearSampler, input.uv, 0.0);"
	if !strings.Contains(src, want) {
		t.Errorf("program missing center fallback %q", want)
	}
}
