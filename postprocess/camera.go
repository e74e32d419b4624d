package postprocess

// Camera is a viewport post-processes attach to. Attached passes size
// their targets from the viewport, so ratios stay relative to the screen
// along a chain of downscaling passes.
type Camera struct {
	name          string
	width, height int
	postProcesses []*PostProcess
}

// NewCamera creates a camera with the given viewport size.
func NewCamera(name string, width, height int) *Camera {
	return &Camera{name: name, width: width, height: height}
}

// Name returns the camera name.
func (c *Camera) Name() string { return c.name }

// Width returns the viewport width.
func (c *Camera) Width() int { return c.width }

// Height returns the viewport height.
func (c *Camera) Height() int { return c.height }

// Resize changes the viewport size. Attached passes pick the new size up
// on their next draw.
func (c *Camera) Resize(width, height int) {
	c.width, c.height = width, height
}

// PostProcesses returns the attached post-processes in attach order.
func (c *Camera) PostProcesses() []*PostProcess {
	return append([]*PostProcess(nil), c.postProcesses...)
}

func (c *Camera) attach(pp *PostProcess) {
	c.postProcesses = append(c.postProcesses, pp)
}

func (c *Camera) detach(pp *PostProcess) {
	for i, cur := range c.postProcesses {
		if cur == pp {
			c.postProcesses = append(c.postProcesses[:i:i], c.postProcesses[i+1:]...)
			return
		}
	}
}

// Scene groups cameras. Stages accept a scene for signature uniformity;
// none of them reads it.
type Scene struct {
	name    string
	cameras []*Camera
}

// NewScene creates an empty scene.
func NewScene(name string) *Scene {
	return &Scene{name: name}
}

// Name returns the scene name.
func (s *Scene) Name() string { return s.name }

// AddCamera adds c to the scene. The first camera added is the active one.
func (s *Scene) AddCamera(c *Camera) {
	s.cameras = append(s.cameras, c)
}

// ActiveCamera returns the first camera, or nil.
func (s *Scene) ActiveCamera() *Camera {
	if len(s.cameras) == 0 {
		return nil
	}
	return s.cameras[0]
}
