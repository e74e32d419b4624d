package postprocess

// TextureSource is anything that can name the texture a sampler should read
// for the current draw. Implementations are resolved at bind time, every
// draw, so a source may return a different texture from one frame to the
// next (after a resize, for example).
type TextureSource interface {
	// OutputTexture returns the current texture, or nil if none exists yet.
	OutputTexture() *Texture
}

// SourceFunc adapts a function to TextureSource.
type SourceFunc func() *Texture

// OutputTexture calls f.
func (f SourceFunc) OutputTexture() *Texture { return f() }

// Slot is a settable TextureSource. It lets a frame driver hand per-frame
// inputs (the rendered scene, a depth map) to passes that bind them.
type Slot struct {
	tex *Texture
}

// NewSlot returns a slot holding t.
func NewSlot(t *Texture) *Slot {
	return &Slot{tex: t}
}

// Set replaces the held texture.
func (s *Slot) Set(t *Texture) { s.tex = t }

// OutputTexture returns the held texture.
func (s *Slot) OutputTexture() *Texture { return s.tex }
