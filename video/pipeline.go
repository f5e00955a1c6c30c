// This file is part of Retrace.
//
// Retrace is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Retrace is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Retrace.  If not, see <https://www.gnu.org/licenses/>.

package video

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/jetsetilly/retrace/curated"
	"github.com/jetsetilly/retrace/logger"
	"github.com/jetsetilly/retrace/notifications"
	"github.com/jetsetilly/retrace/prefs"
	"github.com/jetsetilly/retrace/video/compositor"
	"github.com/jetsetilly/retrace/video/device"
	"github.com/jetsetilly/retrace/video/mode"
	"github.com/jetsetilly/retrace/video/pixels"
	"github.com/jetsetilly/retrace/video/scheduler"
	"github.com/jetsetilly/retrace/video/specification"
	"github.com/jetsetilly/retrace/video/transition"
)

// Terminated is the pattern of the error returned by Frame() once the exit
// fade has completed or the pipeline has been shut down.
const Terminated = "video: terminated"

// AudioSync is implemented by the audio system. The refresh rate is sent
// every time a new display mode is committed.
type AudioSync interface {
	SetRefreshRate(hz float32)
}

// SwapControl is implemented by a window that can present with or without
// waiting for the vertical retrace.
type SwapControl interface {
	SetNonBlocking(nonBlocking bool)
}

// Pipeline owns every part of the video output for a single device.
type Pipeline struct {
	dev    device.Device
	prefs  *Preferences
	notify notifications.Notify

	modes *mode.Manager
	sched *scheduler.Scheduler
	comp  *compositor.Compositor
	fade  *transition.Controller

	conv pixels.Converter

	// the most recently converted frame is in the main texture. the frame
	// before that is in the blend texture if blendValid is true
	main       *pixels.Texture
	blend      *pixels.Texture
	blendValid bool
	hasFrame   bool

	overlay       *pixels.Texture
	overlayActive bool
	overlayFull   bool
	overlayAlpha  float32

	// tiled dimensions of the most recent frame
	frameWidth  int
	frameHeight int

	// rotation used for the current viewport
	rotation specification.Rotation

	// flags set by preference hooks and requests from other goroutines.
	// they are acted upon at the start of the next frame
	renegotiate  atomic.Bool
	reconfigure  atomic.Bool
	retune       atomic.Bool
	requestReset atomic.Bool
	requestExit  atomic.Bool
	isTerminated atomic.Bool
	isShutdown   bool

	// critical section protects the following fields
	crit       sync.Mutex
	mode       mode.DisplayMode
	viewport   mode.Viewport
	reqWidth   int
	reqHeight  int
	coreAspect float64
	audio      AudioSync
	swap       SwapControl
}

// NewPipeline is the preferred method of initialisation for the Pipeline
// type. The preferences and notify arguments can be nil.
func NewPipeline(dev device.Device, probe mode.Probe, p *Preferences, notify notifications.Notify) (*Pipeline, error) {
	if p == nil {
		var err error
		p, err = NewPreferences("")
		if err != nil {
			return nil, curated.Errorf("pipeline: %v", err)
		}
	}

	pl := &Pipeline{
		dev:          dev,
		prefs:        p,
		notify:       notify,
		modes:        mode.NewManager(probe),
		sched:        scheduler.NewScheduler(dev, notify),
		comp:         compositor.NewCompositor(dev),
		fade:         transition.NewController(p.FadeSteps.Get().(int), notify),
		overlayAlpha: 1.0,
		reqWidth:     p.Width.Get().(int),
		reqHeight:    p.Height.Get().(int),
	}

	pl.tune()
	pl.sched.NonBlocking.Store(p.NonBlocking.Get().(bool))

	pl.configure()

	scale := pl.scale(0, 0)
	pl.main = pixels.NewTexture(pixels.TexelRGB565, scale)
	pl.blend = pixels.NewTexture(pixels.TexelRGB565, scale)
	pl.overlay = pixels.NewTexture(pixels.TexelRGB5A3, scale)

	if err := pl.negotiate(); err != nil {
		return nil, err
	}

	pl.hooks()

	if p.FadeIn.Get().(bool) {
		pl.fade.Start()
	}

	return pl, nil
}

// hooks connects the preferences to the pipeline
func (pl *Pipeline) hooks() {
	renegotiate := func(_ prefs.Value) error {
		pl.renegotiate.Store(true)
		return nil
	}
	for _, p := range []*prefs.Int{
		&pl.prefs.Aspect, &pl.prefs.Rotation,
		&pl.prefs.CustomX, &pl.prefs.CustomY, &pl.prefs.CustomWidth, &pl.prefs.CustomHeight,
	} {
		p.SetHookPost(renegotiate)
	}
	pl.prefs.DeviceWide.SetHookPost(renegotiate)
	pl.prefs.Progressive.SetHookPost(renegotiate)
	pl.prefs.Standard.SetHookPost(renegotiate)
	pl.prefs.AutoResolution.SetHookPost(renegotiate)

	resolution := func(_ prefs.Value) error {
		pl.crit.Lock()
		pl.reqWidth = pl.prefs.Width.Get().(int)
		pl.reqHeight = pl.prefs.Height.Get().(int)
		pl.crit.Unlock()
		pl.renegotiate.Store(true)
		return nil
	}
	pl.prefs.Width.SetHookPost(resolution)
	pl.prefs.Height.SetHookPost(resolution)

	pl.prefs.Converter.SetHookPost(func(_ prefs.Value) error {
		pl.reconfigure.Store(true)
		return nil
	})

	pl.prefs.NonBlocking.SetHookPost(func(v prefs.Value) error {
		pl.sched.NonBlocking.Store(v.(bool))
		pl.crit.Lock()
		swap := pl.swap
		pl.crit.Unlock()
		if swap != nil {
			swap.SetNonBlocking(v.(bool))
		}
		return nil
	})

	retune := func(_ prefs.Value) error {
		pl.retune.Store(true)
		return nil
	}
	pl.prefs.RetraceTimeout.SetHookPost(retune)
	pl.prefs.FadeSteps.SetHookPost(retune)
	pl.prefs.FadeIn.SetHookPost(retune)
}

// tune the scheduler and fade controller from the preferences
func (pl *Pipeline) tune() {
	if t := pl.prefs.RetraceTimeout.Get().(int); t > 0 {
		pl.sched.Timeout = time.Duration(t) * time.Millisecond
	} else {
		pl.sched.Timeout = scheduler.DefaultTimeout
	}
	pl.fade.SetSteps(pl.prefs.FadeSteps.Get().(int))
	pl.fade.FadeInAfterReset = pl.prefs.FadeIn.Get().(bool)
}

// configure the pixel converter from the preferences
func (pl *Pipeline) configure() {
	kind, err := pixels.ParseConverterKind(pl.prefs.Converter.Get().(string))
	if err != nil {
		logger.Logf(logger.Allow, "pipeline", "%v. using %v converter", err, kind)
	}
	pl.conv = pixels.NewConverter(kind)
}

// scale returns the texture scale needed for a frame of the specified size.
// the scale preference is the smallest scale that will be used
func (pl *Pipeline) scale(width, height int) int {
	s := pl.prefs.Scale.Get().(int)
	if s < 1 || s > pixels.MaxScale {
		logger.Logf(logger.Allow, "pipeline", "texture scale of %d is not supported. using 1", s)
		s = 1
	}

	// frames too large for any texture are left for the converter to refuse
	return min(max(s, pixels.ScaleFor(width, height)), pixels.MaxScale)
}

// negotiate the display mode and viewport
func (pl *Pipeline) negotiate() error {
	pl.crit.Lock()
	w, h := pl.reqWidth, pl.reqHeight
	coreAspect := pl.coreAspect
	pl.crit.Unlock()

	pl.modes.PreferProgressive = pl.prefs.Progressive.Get().(bool)
	m := pl.modes.Negotiate(w, h, pl.prefs.Standard.Get().(string))

	if err := pl.dev.SetMode(m); err != nil {
		return curated.Errorf("pipeline: %v", err)
	}

	rot := specification.Rotation(pl.prefs.Rotation.Get().(int))
	if !rot.Valid() {
		logger.Logf(logger.Allow, "pipeline", "rotation value of %d is not valid", int(rot))
		rot = specification.NormalRotation
	}

	desired, custom := mode.ResolveAspect(pl.prefs.Aspect.Get().(int), coreAspect, pl.frameWidth, pl.frameHeight)
	if custom {
		pl.modes.SetCustomViewport(pl.prefs.customViewport())
	}

	req := mode.ViewportRequest{
		DesiredAspect: desired,
		DeviceAspect:  mode.DeviceAspectNormal,
		Rotation:      rot,
		Custom:        custom,
	}
	if pl.prefs.DeviceWide.Get().(bool) {
		req.DeviceAspect = mode.DeviceAspectWide
	}
	vp := pl.modes.Viewport(m, req)

	pl.rotation = rot

	pl.crit.Lock()
	changed := pl.mode != m
	pl.mode = m
	pl.viewport = vp
	audio := pl.audio
	pl.crit.Unlock()

	logger.Logf(logger.Allow, "pipeline", "%v: viewport %v", m, vp)

	if changed {
		if audio != nil {
			audio.SetRefreshRate(m.RefreshRate)
		}
		pl.send(notifications.NotifyModeChange)
	}

	return nil
}

func (pl *Pipeline) send(notice notifications.Notice) {
	if pl.notify == nil {
		return
	}
	if err := pl.notify.Notify(notice); err != nil {
		logger.Logf(logger.Allow, "pipeline", "%v: %v", notice, err)
	}
}

// allocate the main and blend textures for the source frame. the textures
// grow to hold larger frames. the content of the textures is lost if the
// texel format or scale has changed
func (pl *Pipeline) allocate(raw pixels.RawFrame) {
	tf := pixels.TexelFormatFor(raw.Format, pl.prefs.Reduced.Get().(bool))
	scale := pl.scale(raw.TiledSize())
	if pl.main.Allocate(tf, scale) {
		pl.blend.Allocate(tf, scale)
		pl.blendValid = false
		pl.hasFrame = false
		logger.Logf(logger.Allow, "pipeline", "textures allocated: %v at scale %d", tf, scale)
	}
}

// Frame presents a raw frame. The function will block until the frame can be
// drawn without tearing, unless the NonBlocking preference is set.
//
// A RawFrame with nil data will cause the previous frame to be presented
// again.
func (pl *Pipeline) Frame(raw pixels.RawFrame) error {
	if pl.isTerminated.Load() {
		return curated.Errorf(Terminated)
	}

	if pl.reconfigure.Swap(false) {
		pl.configure()
	}

	if pl.retune.Swap(false) {
		pl.tune()
	}

	if pl.renegotiate.Swap(false) {
		if err := pl.negotiate(); err != nil {
			return err
		}
	}

	if pl.requestExit.Swap(false) {
		pl.fade.RequestExit()
	}
	if pl.requestReset.Swap(false) {
		pl.fade.RequestReset()
	}

	blending := pl.prefs.Blend.Get().(bool)

	if !raw.Duplicate() {
		pl.allocate(raw)

		if blending {
			pl.main, pl.blend = pl.blend, pl.main
			pl.blendValid = pl.hasFrame
		}
		pl.conv.Convert(raw, pl.main)
		pl.hasFrame = true

		w, h := raw.TiledSize()
		if w != pl.frameWidth || h != pl.frameHeight {
			pl.frameChanged(w, h)
		}
	}

	if !blending {
		pl.blendValid = false
	}

	intensity := pl.fade.Tick()

	pl.crit.Lock()
	vp := pl.viewport
	pl.crit.Unlock()

	params := compositor.Params{
		Viewport:             vp,
		Rotation:             pl.rotation,
		SmoothMain:           pl.prefs.Smooth.Get().(bool),
		SmoothOverlay:        pl.prefs.OverlaySmooth.Get().(bool),
		Intensity:            float32(intensity),
		OverscanLines:        pl.prefs.Overscan.Get().(int),
		OverlayShareViewport: !pl.overlayFull,
		OverlayAlpha:         pl.overlayAlpha * float32(pl.prefs.OverlayAlpha.Get().(float64)),
	}

	var blend *pixels.Texture
	if pl.blendValid {
		blend = pl.blend
	}
	var overlay *pixels.Texture
	if pl.overlayActive {
		overlay = pl.overlay
	}

	if _, err := pl.comp.Composite(pl.main, blend, overlay, params); err != nil {
		return curated.Errorf("pipeline: %v", err)
	}

	// the overlay is always presented in sync with the retrace
	if err := pl.sched.PresentAndWait(pl.overlayActive); err != nil {
		return curated.Errorf("pipeline: %v", err)
	}

	if pl.fade.State() == transition.Terminated {
		pl.isTerminated.Store(true)
	}

	return nil
}

// frameChanged records the new dimensions of the incoming frames. the display
// mode is renegotiated at the start of the next frame
func (pl *Pipeline) frameChanged(w, h int) {
	logger.Logf(logger.Allow, "pipeline", "frame size changed to %dx%d", w, h)

	pl.frameWidth = w
	pl.frameHeight = h

	if pl.prefs.AutoResolution.Get().(bool) {
		r := mode.ClosestResolution(w, h)
		pl.crit.Lock()
		pl.reqWidth = r.Width
		pl.reqHeight = r.Height
		pl.crit.Unlock()
	}

	// some aspect ratio policies depend on the frame size so the viewport
	// may need to change even if the resolution does not
	pl.renegotiate.Store(true)
}

// SetOverlay sets the frame to be drawn over the main frame. The format of the
// frame must be pixels.FormatRGBA4444. A nil frame removes the overlay.
//
// If fullScreen is false the overlay is drawn in the same viewport as the
// main frame. The alpha value is the transparency of the entire overlay.
//
// Must be called from the same goroutine as Frame().
func (pl *Pipeline) SetOverlay(frame *pixels.RawFrame, fullScreen bool, alpha float32) {
	if frame == nil {
		pl.overlayActive = false
		return
	}

	if pl.overlay.Allocate(pixels.TexelRGB5A3, pl.scale(frame.TiledSize())) {
		logger.Logf(logger.Allow, "pipeline", "overlay texture allocated at scale %d", pl.overlay.Scale())
	}
	if !frame.Duplicate() {
		pl.conv.Convert(*frame, pl.overlay)
	}

	pl.overlayActive = true
	pl.overlayFull = fullScreen
	pl.overlayAlpha = alpha
}

// OnRetrace should be called by the retrace source with a count that
// increases by one for every retrace.
func (pl *Pipeline) OnRetrace(count uint32) {
	pl.sched.OnRetrace(count)
}

// SetResolution requests a new output resolution. A zero value for either
// dimension selects the default resolution. Resolutions that are not in the
// mode.Resolutions table are allowed but are logged.
func (pl *Pipeline) SetResolution(width int, height int) {
	if width != 0 && height != 0 && mode.FindResolution(width, height) == -1 {
		logger.Logf(logger.Allow, "pipeline", "%dx%d is not in the resolution table", width, height)
	}
	pl.crit.Lock()
	pl.reqWidth = width
	pl.reqHeight = height
	pl.crit.Unlock()
	pl.renegotiate.Store(true)
}

// SetCoreGeometry sets the aspect ratio of the frames produced by the
// emulation core. It is used when the "core provided" aspect ratio is
// selected.
func (pl *Pipeline) SetCoreGeometry(aspect float64) {
	pl.crit.Lock()
	pl.coreAspect = aspect
	pl.crit.Unlock()
	pl.renegotiate.Store(true)
}

// SetAudioSync sets the audio system that will receive changes to the refresh
// rate. The current refresh rate is sent immediately.
func (pl *Pipeline) SetAudioSync(audio AudioSync) {
	pl.crit.Lock()
	pl.audio = audio
	rate := pl.mode.RefreshRate
	pl.crit.Unlock()
	if audio != nil {
		audio.SetRefreshRate(rate)
	}
}

// SetSwapControl sets the window that will be told about changes to the
// NonBlocking preference. The current value is sent immediately.
func (pl *Pipeline) SetSwapControl(swap SwapControl) {
	pl.crit.Lock()
	pl.swap = swap
	pl.crit.Unlock()
	if swap != nil {
		swap.SetNonBlocking(pl.prefs.NonBlocking.Get().(bool))
	}
}

// Mode returns the current display mode.
func (pl *Pipeline) Mode() mode.DisplayMode {
	pl.crit.Lock()
	defer pl.crit.Unlock()
	return pl.mode
}

// Viewport returns the current viewport.
func (pl *Pipeline) Viewport() mode.Viewport {
	pl.crit.Lock()
	defer pl.crit.Unlock()
	return pl.viewport
}

// RefreshRate returns the refresh rate derived from the display mode and the
// rate at which frames are being presented.
func (pl *Pipeline) RefreshRate() (float32, float32) {
	pl.crit.Lock()
	defer pl.crit.Unlock()
	return pl.mode.RefreshRate, pl.sched.Measured()
}

// Presented returns the number of frames presented.
func (pl *Pipeline) Presented() uint64 {
	return pl.sched.Presented()
}

// FadeState returns the state of the fade controller. Must be called from the
// same goroutine as Frame().
func (pl *Pipeline) FadeState() transition.State {
	return pl.fade.State()
}

// RequestReset starts the fade out that ends with a reset notification.
func (pl *Pipeline) RequestReset() {
	pl.requestReset.Store(true)
}

// RequestExit starts the fade out that ends with an exit notification. Frame()
// will return the Terminated error once the fade has completed.
func (pl *Pipeline) RequestExit() {
	pl.requestExit.Store(true)
}

// Release causes a blocked call to Frame() to return. It can be called from
// any goroutine. Shutdown() should still be called to release all resources.
func (pl *Pipeline) Release() {
	pl.isTerminated.Store(true)
	pl.sched.Release()
}

// Shutdown waits for the most recent frame to be displayed, then blanks the
// display and releases the device. There is no wait in non-blocking mode.
//
// Must be called from the same goroutine as Frame().
func (pl *Pipeline) Shutdown() error {
	if pl.isShutdown {
		return nil
	}
	pl.isShutdown = true
	pl.isTerminated.Store(true)

	// a closed scheduler is not an error when draining
	if !pl.sched.NonBlocking.Load() {
		if err := pl.sched.Drain(); err != nil && !curated.Is(err, scheduler.Closed) {
			logger.Logf(logger.Allow, "pipeline", "%v", err)
		}
	}

	var err error
	if cerr := pl.sched.Close(); cerr != nil {
		err = curated.Errorf("pipeline: %v", cerr)
	}
	if derr := pl.dev.Destroy(); derr != nil && err == nil {
		err = curated.Errorf("pipeline: %v", derr)
	}

	logger.Logf(logger.Allow, "pipeline", "shutdown after %d frames", pl.sched.Presented())

	return err
}
