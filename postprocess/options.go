package postprocess

import (
	"github.com/gogpu/gputypes"
)

// Options configures a post-process. Zero-valued fields are "unset": they
// take the package defaults and never override another layer when merged.
type Options struct {
	// Ratio scales the camera viewport, or the pass input when no camera
	// is set, to get the output size. Unset means 1.
	Ratio float64

	// Width and Height give an explicit output size and take precedence
	// over Ratio when both are positive.
	Width, Height int

	// Camera the pass is attached to.
	Camera *Camera

	// Engine that compiles and executes the pass. Unset means DefaultEngine.
	Engine *Engine

	// Reusable keeps two output targets and alternates between them, so the
	// pass can read its own previous output within a frame.
	Reusable bool

	// TextureType is the channel storage of the output target.
	TextureType TextureType

	// TextureFormat is the pixel format of the output target.
	// Unset means RGBA8Unorm.
	TextureFormat gputypes.TextureFormat

	// BlockCompilation defers program compilation from construction to the
	// first Apply or an explicit UpdateEffect.
	BlockCompilation bool

	// SamplingMode filters reads of the pass input. Anything other than
	// FilterModeLinear samples the nearest texel.
	SamplingMode gputypes.FilterMode

	// Defines are shader definitions passed to the pass program.
	Defines Defines
}

// OptionsSource supplies post-process options. Options and Ratio implement it.
type OptionsSource interface {
	PostProcessOptions() Options
}

// PostProcessOptions returns a copy of o.
func (o Options) PostProcessOptions() Options {
	o.Defines = o.Defines.Clone()
	return o
}

// Ratio is the shorthand for options that only set a downscale ratio.
type Ratio float64

// PostProcessOptions returns Options{Ratio: r}.
func (r Ratio) PostProcessOptions() Options {
	return Options{Ratio: float64(r)}
}

// Overlay returns o with every set field of top applied over it. Define
// sets are unioned, with top's values winning on name clashes.
func (o Options) Overlay(top Options) Options {
	var zeroFormat gputypes.TextureFormat
	var zeroMode gputypes.FilterMode

	out := o
	out.Defines = o.Defines.Union(top.Defines)

	if top.Ratio > 0 {
		out.Ratio = top.Ratio
	}
	if top.Width > 0 && top.Height > 0 {
		out.Width, out.Height = top.Width, top.Height
	}
	if top.Camera != nil {
		out.Camera = top.Camera
	}
	if top.Engine != nil {
		out.Engine = top.Engine
	}
	if top.Reusable {
		out.Reusable = true
	}
	if top.TextureType != TextureTypeUnsignedByte {
		out.TextureType = top.TextureType
	}
	if top.TextureFormat != zeroFormat {
		out.TextureFormat = top.TextureFormat
	}
	if top.BlockCompilation {
		out.BlockCompilation = true
	}
	if top.SamplingMode != zeroMode {
		out.SamplingMode = top.SamplingMode
	}

	return out
}

// normalized fills unset fields with their defaults.
func (o Options) normalized() Options {
	if o.Ratio <= 0 {
		o.Ratio = 1
	}
	if o.Engine == nil {
		o.Engine = DefaultEngine()
	}
	if o.TextureFormat == gputypes.TextureFormatUndefined {
		o.TextureFormat = gputypes.TextureFormatRGBA8Unorm
	}
	if o.SamplingMode != gputypes.FilterModeLinear {
		o.SamplingMode = gputypes.FilterModeNearest
	}
	o.Defines = o.Defines.Clone()
	return o
}

// OptionsBuilder merges options in two phases. Layers are overlaid in order,
// so later layers win for every field they set. Forced overrides then run on
// the merged result and cannot be undone by any layer.
//
// Forcing is a deliberate departure from "the caller always wins": it is how
// a stage pins fields its kernel depends on.
type OptionsBuilder struct {
	base   Options
	layers []Options
	forced []func(*Options)
}

// NewOptionsBuilder starts a merge from base.
func NewOptionsBuilder(base Options) *OptionsBuilder {
	return &OptionsBuilder{base: base.PostProcessOptions()}
}

// Layer overlays src on the options merged so far. A nil src is skipped.
func (b *OptionsBuilder) Layer(src OptionsSource) *OptionsBuilder {
	if src != nil {
		b.layers = append(b.layers, src.PostProcessOptions())
	}
	return b
}

// Force registers an override applied after every layer.
func (b *OptionsBuilder) Force(fn func(*Options)) *OptionsBuilder {
	if fn != nil {
		b.forced = append(b.forced, fn)
	}
	return b
}

// Build returns the merged options.
func (b *OptionsBuilder) Build() Options {
	out := b.base
	for _, l := range b.layers {
		out = out.Overlay(l)
	}
	out.Defines = out.Defines.Clone()
	for _, fn := range b.forced {
		fn(&out)
	}
	return out
}

// ForceDefine returns an override that always defines name with value.
func ForceDefine(name, value string) func(*Options) {
	return func(o *Options) {
		o.Defines.Set(name, value)
	}
}

// ForceSamplingMode returns an override that pins the sampling mode.
func ForceSamplingMode(mode gputypes.FilterMode) func(*Options) {
	return func(o *Options) {
		o.SamplingMode = mode
	}
}
