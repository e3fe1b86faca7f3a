package main

import "context"

// audioSink consumes drained sample batches handed to it by the emulation
// goroutine over samples. It never touches internal/nes itself: that
// facade is single-threaded and cooperative, so only the goroutine already
// calling RunFrame/RenderRGB is allowed to call AudioSamplesDrain.
//
// It does not yet feed a real output device: the teacher's GUI layer
// explicitly deferred audio output pending a backend decision, and
// nesium-gui keeps that deferral rather than wiring a one-off player for
// this exercise. Consuming still matters: an unread channel would make
// the emulation goroutine's non-blocking send drop samples silently
// forever, which is fine today but would not be if a real sink cared.
type audioSink struct {
	samples chan []float32
}

func newAudioSink() *audioSink {
	return &audioSink{samples: make(chan []float32, 4)}
}

// offer hands one frame's drained samples to the sink without blocking the
// emulation goroutine; a full channel means the sink is behind and the
// batch is dropped rather than backing up the render loop.
func (a *audioSink) offer(batch []float32) {
	select {
	case a.samples <- batch:
	default:
	}
}

func (a *audioSink) run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-a.samples:
		}
	}
}
