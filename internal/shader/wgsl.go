// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package shader

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"text/template"

	"github.com/gogpu/dof/internal/filter"
)

// DefineDOF switches the program to depth-aware weighting.
const DefineDOF = "DOF"

// Define is one preprocessor-style definition. WGSL has no preprocessor, so
// definitions are recorded as comments and, when the name is an upper-case
// identifier with a numeric value, also emitted as an f32 constant.
type Define struct {
	Name  string
	Value string
}

var constName = regexp.MustCompile(`^[A-Z][A-Z0-9_]*$`)

type wgslConst struct {
	Name  string
	Value string
}

type wgslTap struct {
	Offset     string
	Weight     string
	Attenuated bool
}

type kernelBlurData struct {
	Defines      []Define
	Consts       []wgslConst
	MinThreshold string
	DOF          bool
	Taps         []wgslTap
}

var kernelBlurTemplate = template.Must(template.New("kernelBlur").Parse(`// kernel blur
{{- range .Defines}}
// #define {{.Name}}{{with .Value}} {{.}}{{end}}
{{- end}}
{{range .Consts}}
const {{.Name}}: f32 = {{.Value}};
{{- end}}

const MIN_COC_THRESHOLD: f32 = {{.MinThreshold}};

struct BlurUniforms {
    delta: vec2<f32>,
    padding: vec2<f32>,
}

struct VertexOutput {
    @builtin(position) position: vec4<f32>,
    @location(0) uv: vec2<f32>,
}

@group(0) @binding(0) var<uniform> uniforms: BlurUniforms;
@group(0) @binding(1) var textureSampler: texture_2d<f32>;
@group(0) @binding(2) var linearSampler: sampler;
{{- if .DOF}}
@group(0) @binding(3) var circleOfConfusionSampler: texture_2d<f32>;
{{- end}}

@vertex
fn vs_main(@builtin(vertex_index) index: u32) -> VertexOutput {
    var corners = array<vec2<f32>, 3>(
        vec2<f32>(-1.0, -1.0),
        vec2<f32>(3.0, -1.0),
        vec2<f32>(-1.0, 3.0),
    );
    let p = corners[index];
    var result: VertexOutput;
    result.position = vec4<f32>(p, 0.0, 1.0);
    result.uv = vec2<f32>(p.x * 0.5 + 0.5, 0.5 - p.y * 0.5);
    return result;
}
{{if .DOF}}
fn sampleCoC(uv: vec2<f32>) -> f32 {
    return textureSampleLevel(circleOfConfusionSampler, linearSampler, uv, 0.0).r;
}

fn depthAttenuation(centerCoC: f32, neighbourCoC: f32) -> f32 {
    let threshold = max(abs(centerCoC), MIN_COC_THRESHOLD);
    return 1.0 - smoothstep(0.0, threshold, abs(centerCoC - neighbourCoC));
}
{{end}}
@fragment
fn fs_main(input: VertexOutput) -> @location(0) vec4<f32> {
    var blend = vec4<f32>(0.0);
{{- if .DOF}}
    var sumOfWeights = 0.0;
    let centerCoC = sampleCoC(input.uv);
{{- end}}
{{- range .Taps}}
    {
        let coord = input.uv + uniforms.delta * ({{.Offset}});
{{- if $.DOF}}
        let w = {{.Weight}}{{if .Attenuated}} * depthAttenuation(centerCoC, sampleCoC(coord)){{end}};
        blend += textureSampleLevel(textureSampler, linearSampler, coord, 0.0) * w;
        sumOfWeights += w;
{{- else}}
        blend += textureSampleLevel(textureSampler, linearSampler, coord, 0.0) * {{.Weight}};
{{- end}}
    }
{{- end}}
{{- if .DOF}}
    if (sumOfWeights <= 0.0) {
        return textureSampleLevel(textureSampler, linearSampler, input.uv, 0.0);
    }
    return blend / sumOfWeights;
{{- else}}
    return blend;
{{- end}}
}
`))

// KernelBlur renders the WGSL source of a directional blur over taps.
// The DOF define selects the depth-aware variant.
func KernelBlur(defines []Define, taps []filter.Tap) (string, error) {
	data := kernelBlurData{
		Defines:      defines,
		MinThreshold: formatFloat(filter.MinCoCThreshold),
	}

	for _, d := range defines {
		if d.Name == DefineDOF {
			data.DOF = true
		}
		if !constName.MatchString(d.Name) {
			continue
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(d.Value), 32)
		if err != nil {
			continue
		}
		data.Consts = append(data.Consts, wgslConst{Name: d.Name, Value: formatFloat(float32(v))})
	}

	for _, t := range taps {
		data.Taps = append(data.Taps, wgslTap{
			Offset:     formatFloat(t.Offset),
			Weight:     formatFloat(t.Weight),
			Attenuated: t.Offset != 0,
		})
	}

	var sb strings.Builder
	if err := kernelBlurTemplate.Execute(&sb, data); err != nil {
		return "", fmt.Errorf("shader: render kernel blur: %w", err)
	}
	return sb.String(), nil
}

// formatFloat always prints a decimal point so WGSL infers f32.
func formatFloat(v float32) string {
	return strconv.FormatFloat(float64(v), 'f', 8, 32)
}
