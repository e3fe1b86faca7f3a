package graphics

import (
	"fmt"
	"os"
)

// HeadlessBackend implements the Backend interface without opening a window;
// `nesium run --snapshot-frame` uses it for CI-friendly frame-dump runs
// where no display is available.
type HeadlessBackend struct {
	initialized bool
	config      Config
}

// HeadlessWindow implements the Window interface for headless operation. It
// dumps specific frames to disk as PPM images instead of presenting them, so
// a run can be diffed against a golden image in a test.
type HeadlessWindow struct {
	title      string
	width      int
	height     int
	running    bool
	frameCount int
	outputDir  string
	snapshotAt map[int]bool
}

// NewHeadlessBackend creates a new headless graphics backend
func NewHeadlessBackend() Backend {
	return &HeadlessBackend{}
}

// Initialize initializes the headless backend
func (b *HeadlessBackend) Initialize(config Config) error {
	if b.initialized {
		return fmt.Errorf("headless backend already initialized")
	}

	b.config = config
	b.initialized = true

	return nil
}

// CreateWindow creates a headless "window" (no actual window)
func (b *HeadlessBackend) CreateWindow(title string, width, height int) (Window, error) {
	if !b.initialized {
		return nil, fmt.Errorf("backend not initialized")
	}

	return &HeadlessWindow{
		title:     title,
		width:     width,
		height:    height,
		running:   true,
		outputDir: ".",
	}, nil
}

// Cleanup releases all headless resources
func (b *HeadlessBackend) Cleanup() error {
	b.initialized = false
	return nil
}

// IsHeadless returns true (this is a headless backend)
func (b *HeadlessBackend) IsHeadless() bool {
	return true
}

// GetName returns the backend name
func (b *HeadlessBackend) GetName() string {
	return "Headless"
}

// HeadlessWindow implementation

// SetTitle sets the window title (for logging purposes)
func (w *HeadlessWindow) SetTitle(title string) {
	w.title = title
}

// GetSize returns window dimensions
func (w *HeadlessWindow) GetSize() (width, height int) {
	return w.width, w.height
}

// ShouldClose returns true if window should close
func (w *HeadlessWindow) ShouldClose() bool {
	return !w.running
}

// SwapBuffers does nothing in headless mode
func (w *HeadlessWindow) SwapBuffers() {
	// No-op for headless
}

// PollEvents returns empty events list (no input in headless mode)
func (w *HeadlessWindow) PollEvents() []InputEvent {
	return nil
}

// RenderFrame saves the frame to disk as a PPM image if its number was
// requested via ConfigureSnapshots, otherwise it's a no-op.
func (w *HeadlessWindow) RenderFrame(frameBuffer [NativeWidth * NativeHeight]uint32) error {
	w.frameCount++

	if w.snapshotAt[w.frameCount] {
		filename := fmt.Sprintf("%s/frame_%03d.ppm", w.outputDir, w.frameCount)
		return WritePPM(frameBuffer, filename)
	}

	return nil
}

// WritePPM encodes a frame buffer as a plain PPM (P3) image, the format the
// headless backend uses for its frame dumps.
func WritePPM(frameBuffer [NativeWidth * NativeHeight]uint32, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer file.Close()

	fmt.Fprintf(file, "P3\n%d %d\n255\n", NativeWidth, NativeHeight)

	for y := 0; y < NativeHeight; y++ {
		for x := 0; x < NativeWidth; x++ {
			pixel := frameBuffer[y*NativeWidth+x]
			r := (pixel >> 16) & 0xFF
			g := (pixel >> 8) & 0xFF
			b := pixel & 0xFF
			fmt.Fprintf(file, "%d %d %d ", r, g, b)
		}
		fmt.Fprintf(file, "\n")
	}

	return nil
}

// Cleanup releases window resources
func (w *HeadlessWindow) Cleanup() error {
	w.running = false
	return nil
}

// ConfigureSnapshots sets the output directory and the 1-indexed frame
// numbers RenderFrame should dump as PPM images.
func (w *HeadlessWindow) ConfigureSnapshots(dir string, frames ...int) {
	w.outputDir = dir
	w.snapshotAt = make(map[int]bool, len(frames))
	for _, f := range frames {
		w.snapshotAt[f] = true
	}
}

// GetFrameCount returns the current frame count
func (w *HeadlessWindow) GetFrameCount() int {
	return w.frameCount
}