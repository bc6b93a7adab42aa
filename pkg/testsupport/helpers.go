// Package testsupport provides shared helpers for exercising the
// asynchronous cache in tests: condition polling, deterministic test images
// and a recording notifier.
package testsupport

import (
	"image"
	"image/color"
	"image/draw"
	"sync"
	"testing"
	"time"
)

// Eventually polls cond until it returns true or the timeout elapses, then
// fails the test with msg. Used instead of bare sleeps so tests stay fast on
// the happy path and deterministic under load.
func Eventually(t *testing.T, timeout time.Duration, cond func() bool, msg string) {
	t.Helper()

	deadline := time.Now().Add(timeout)
	for {
		if cond() {
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("condition not met within %v: %s", timeout, msg)
		}
		time.Sleep(2 * time.Millisecond)
	}
}

// Never verifies cond stays false for the full duration. Used to assert the
// absence of an asynchronous effect (e.g. no redundant fetch was issued).
func Never(t *testing.T, duration time.Duration, cond func() bool, msg string) {
	t.Helper()

	deadline := time.Now().Add(duration)
	for time.Now().Before(deadline) {
		if cond() {
			t.Fatalf("condition unexpectedly met: %s", msg)
		}
		time.Sleep(2 * time.Millisecond)
	}
}

// NewTestImage returns a solid-color RGBA image of the given size.
func NewTestImage(width, height int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
	return img
}

// NewGrayImage returns a solid mid-gray *image.Gray, handy for verifying
// color-space normalization.
func NewGrayImage(width, height int) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, width, height))
	for i := range img.Pix {
		img.Pix[i] = 0x80
	}
	return img
}

// RecordingNotifier captures warnings and infos for assertions. Safe for
// concurrent use; implements the cache's notifier port.
type RecordingNotifier struct {
	mu    sync.Mutex
	warns []string
	infos []string
}

// Warn records a warning message.
func (n *RecordingNotifier) Warn(message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.warns = append(n.warns, message)
}

// Info records an info message.
func (n *RecordingNotifier) Info(message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.infos = append(n.infos, message)
}

// Warnings returns a copy of the recorded warning messages.
func (n *RecordingNotifier) Warnings() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.warns...)
}

// Infos returns a copy of the recorded info messages.
func (n *RecordingNotifier) Infos() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.infos...)
}
