// Package camera turns a scene into an image by sampling rays over a sphere
// of directions around a viewpoint, one pass at a time.
package camera

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"runtime"
	"sync"
	"time"

	"github.com/golang/glog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"lumen/accumimage"
	"lumen/affinetransform"
	"lumen/medium"
	"lumen/outputsink"
	"lumen/ray"
	"lumen/rendermetrics"
	"lumen/rng"
	"lumen/scene"
	"lumen/skybox"
	"lumen/vmath/vec3"
)

// Config is the part of a camera's setup that may change between passes.
type Config struct {
	Transform affinetransform.AffineTransform

	// FOV is the angular extent of the image, [vertical, horizontal], in
	// radians.
	FOV [2]float64

	Up vec3.T
}

// Progress describes a completed pass.
type Progress struct {
	Updates uint64
	Elapsed time.Duration
}

// Camera is a spherical camera: pixel rows and columns are equal steps of
// polar and azimuthal angle around the viewing direction.  The camera looks
// along the +y axis of its transform.
//
// Raytrace, Update, Reset, the Accumulate family, Write, Checkpoint and
// Resume must be called from one goroutine.  SetUp, SetTransform, Zoom and
// ZoomTo may be called from anywhere at any time; they only take effect at
// the next Update.
type Camera struct {
	Filename   string
	SubPixels  [2]int
	MaxBounces int
	Gamma      float64
	Media      ray.MediumList
	Sky        skybox.Skybox
	Image      *accumimage.Image
	Seed       uint64
	Lanes      int

	media      []ray.Medium
	sink       *outputsink.Sink
	onProgress func(context.Context, Progress)

	active Config

	pendingLock sync.Mutex
	pending     Config

	origin     vec3.T
	direction  vec3.T
	horizontal vec3.T
	vertical   vec3.T

	streams []rng.Stream
}

type Opt func(*Camera)

// WithFilename sets where Write puts the image.  It may be a gs:// name.
func WithFilename(name string) Opt {
	return func(c *Camera) {
		c.Filename = name
	}
}

func WithUp(up vec3.T) Opt {
	return func(c *Camera) {
		c.pending.Up = up
	}
}

// WithFOV sets the [vertical, horizontal] field of view in radians.
func WithFOV(fov [2]float64) Opt {
	return func(c *Camera) {
		c.pending.FOV = fov
	}
}

// WithSubPixels sets the [vertical, horizontal] size of the jittered grid
// sampled within each pixel.
func WithSubPixels(subPixels [2]int) Opt {
	return func(c *Camera) {
		c.SubPixels = subPixels
	}
}

func WithMaxBounces(n int) Opt {
	return func(c *Camera) {
		c.MaxBounces = n
	}
}

func WithGamma(gamma float64) Opt {
	return func(c *Camera) {
		c.Gamma = gamma
	}
}

// WithMedia sets the media the camera sits in.  The default is a vacuum.
func WithMedia(media ...ray.Medium) Opt {
	return func(c *Camera) {
		c.media = media
	}
}

func WithSeed(seed uint64) Opt {
	return func(c *Camera) {
		c.Seed = seed
	}
}

// WithLanes bounds how many pixel rows are traced concurrently.
func WithLanes(lanes int) Opt {
	return func(c *Camera) {
		c.Lanes = lanes
	}
}

// WithSink sets how outputs are opened.  The default handles local paths
// only.
func WithSink(sink *outputsink.Sink) Opt {
	return func(c *Camera) {
		c.sink = sink
	}
}

// WithProgress registers a function called after every pass of the
// Accumulate family.
func WithProgress(f func(context.Context, Progress)) Opt {
	return func(c *Camera) {
		c.onProgress = f
	}
}

// New returns a camera rendering into image.
func New(transform affinetransform.AffineTransform, image *accumimage.Image, sky skybox.Skybox, opts ...Opt) (*Camera, error) {
	c := &Camera{
		Filename:   "image.png",
		SubPixels:  [2]int{1, 1},
		MaxBounces: 8,
		Gamma:      1.0,
		media:      []ray.Medium{medium.NewNonAbsorber(1.0, 0)},
		Sky:        sky,
		Image:      image,
		Seed:       1,
		Lanes:      runtime.NumCPU(),
		sink:       outputsink.New(nil),
		pending: Config{
			Transform: transform,
			FOV:       [2]float64{math.Pi / 3, math.Pi / 2},
			Up:        vec3.T{0, 0, 1},
		},
	}

	for _, opt := range opts {
		opt(c)
	}

	switch {
	case image == nil:
		return nil, errors.New("camera needs an image")
	case image.SizeX <= 0 || image.SizeY <= 0:
		return nil, fmt.Errorf("bad image size %dx%d", image.SizeX, image.SizeY)
	case sky == nil:
		return nil, errors.New("camera needs a skybox")
	case c.SubPixels[0] <= 0 || c.SubPixels[1] <= 0:
		return nil, fmt.Errorf("bad sub-pixel grid %v", c.SubPixels)
	case len(c.media) == 0 || len(c.media) > ray.MaxMedia:
		return nil, fmt.Errorf("camera needs between 1 and %d media", ray.MaxMedia)
	case c.MaxBounces <= 0:
		return nil, fmt.Errorf("bad bounce limit %d", c.MaxBounces)
	case c.Lanes <= 0:
		return nil, fmt.Errorf("bad lane count %d", c.Lanes)
	case !(c.pending.FOV[0] > 0) || !(c.pending.FOV[1] > 0):
		return nil, fmt.Errorf("bad field of view %v", c.pending.FOV)
	}

	if _, _, ok := basis(c.pending); !ok {
		return nil, fmt.Errorf("up vector %v is parallel to the view direction", c.pending.Up)
	}

	c.Media = ray.NewMediumList(c.media...)
	c.streams = make([]rng.Stream, image.SizeX*image.SizeY)
	c.reseed()
	c.Update()

	return c, nil
}

// basis returns the viewing direction and the unit horizontal and vertical
// vectors that complete it into a frame.  ok is false if cfg.Up is parallel
// to the viewing direction.
func basis(cfg Config) (direction, horizontal vec3.T, ok bool) {
	direction = vec3.Normalize(affinetransform.TransformDirection(cfg.Transform, vec3.T{0, 1, 0}))
	cross := vec3.CProd(direction, cfg.Up)
	if !(cross.Norm() > 1e-12) {
		return direction, vec3.T{}, false
	}
	return direction, vec3.Normalize(cross), true
}

// reseed restarts every pixel stream.  The streams depend on the image's pass
// count so that a resumed render does not replay the samples it already has.
func (c *Camera) reseed() {
	rng.Fill(c.streams, uint64(rng.Derive(c.Seed, c.Image.Updates)))
}

// Update applies configuration changes made since the last call.
func (c *Camera) Update() {
	c.pendingLock.Lock()
	next := c.pending
	c.pendingLock.Unlock()

	direction, horizontal, ok := basis(next)
	if !ok {
		glog.Warningf("Ignoring up vector %v, which is parallel to the view direction", next.Up)
		next.Up = c.active.Up
		c.pendingLock.Lock()
		c.pending.Up = c.active.Up
		c.pendingLock.Unlock()
		direction, horizontal, _ = basis(next)
	}

	c.active = next
	c.origin = affinetransform.TransformPoint(next.Transform, vec3.Zero)
	c.direction = direction
	c.horizontal = horizontal
	c.vertical = vec3.Normalize(vec3.CProd(horizontal, direction))
}

// Active returns the configuration the next pass will use.
func (c *Camera) Active() Config {
	return c.active
}

// Basis returns the orthonormal frame of the next pass: the viewing
// direction, and the horizontal and vertical image axes.
func (c *Camera) Basis() (direction, horizontal, vertical vec3.T) {
	return c.direction, c.horizontal, c.vertical
}

// Origin is the position rays are cast from.
func (c *Camera) Origin() vec3.T {
	return c.origin
}

func (c *Camera) SetUp(up vec3.T) {
	c.pendingLock.Lock()
	defer c.pendingLock.Unlock()
	c.pending.Up = up
}

func (c *Camera) SetTransform(t affinetransform.AffineTransform) {
	c.pendingLock.Lock()
	defer c.pendingLock.Unlock()
	c.pending.Transform = t
}

// Zoom multiplies the field of view by factor.  Factors below one zoom in.
func (c *Camera) Zoom(factor float64) {
	c.pendingLock.Lock()
	defer c.pendingLock.Unlock()
	c.pending.FOV[0] *= factor
	c.pending.FOV[1] *= factor
}

// ZoomTo sets the [vertical, horizontal] field of view.
func (c *Camera) ZoomTo(fov [2]float64) {
	c.pendingLock.Lock()
	defer c.pendingLock.Unlock()
	c.pending.FOV = fov
}

// Reset discards every sample taken so far and restarts the random streams.
// The camera's configuration is unchanged.
func (c *Camera) Reset() {
	c.Image.Reset()
	c.reseed()
}

// Raytrace runs one pass: every pixel gets the average of one jittered sample
// per sub-pixel cell added to it, then the image's pass count goes up by one.
//
// ctx is only consulted before the pass starts.  A pass that has started runs
// to completion, so the image never holds a partial pass.
func (c *Camera) Raytrace(ctx context.Context, sc *scene.Scene) error {
	tracer := otel.Tracer("lumen/camera")
	var span trace.Span
	ctx, span = tracer.Start(ctx, "Camera.Raytrace")
	defer span.End()

	if err := ctx.Err(); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	span.SetAttributes(
		attribute.Int64("pass", int64(c.Image.Updates)+1),
		attribute.Int("size_x", c.Image.SizeX),
		attribute.Int("size_y", c.Image.SizeY),
	)

	start := time.Now()

	eg, passCtx := errgroup.WithContext(context.WithoutCancel(ctx))
	sem := semaphore.NewWeighted(int64(c.Lanes))

	for y := 0; y < c.Image.SizeY; y++ {
		if err := sem.Acquire(passCtx, 1); err != nil {
			err = fmt.Errorf("while acquiring concurrency limiter semaphore: %w", err)
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return err
		}

		y := y
		eg.Go(func() error {
			defer sem.Release(1)
			c.traceRow(sc, y)
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		err = fmt.Errorf("while waiting for completion of errgroup: %w", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	c.Image.Update()

	elapsed := time.Since(start)
	samples := int64(c.Image.SizeX) * int64(c.Image.SizeY) * int64(c.SubPixels[0]) * int64(c.SubPixels[1])
	rendermetrics.RecordPass(ctx, elapsed, samples)
	glog.V(1).Infof("Pass %d took %v (%d samples)", c.Image.Updates, elapsed, samples)

	span.SetStatus(codes.Ok, "")
	return nil
}

// traceRow samples every pixel of row y.  It touches only that row's pixels
// and random streams.
func (c *Camera) traceRow(sc *scene.Scene, y int) {
	sizeX := float64(c.Image.SizeX)
	sizeY := float64(c.Image.SizeY)

	spanY := c.active.FOV[0] / sizeY
	spanX := c.active.FOV[1] / sizeX
	subSpanY := spanY / float64(c.SubPixels[0])
	subSpanX := spanX / float64(c.SubPixels[1])
	weight := 1.0 / float64(c.SubPixels[0]*c.SubPixels[1])

	for x := 0; x < c.Image.SizeX; x++ {
		rnd := rng.New(&c.streams[y*c.Image.SizeX+x])

		colour := vec3.Zero
		for k := 0; k < c.SubPixels[0]; k++ {
			for l := 0; l < c.SubPixels[1]; l++ {
				theta := math.Pi/2 + (float64(y)-sizeY/2+0.5)*spanY - spanY/2 + (float64(k)+rnd.Float64())*subSpanY
				phi := (float64(x)-sizeX/2+0.5)*spanX - spanX/2 + (float64(l)+rnd.Float64())*subSpanX

				dir := vec3.SphericalOffset(1, theta, phi, c.direction, c.horizontal, c.vertical)
				r := ray.New(c.origin, dir, c.Media)
				sc.Raycast(rnd, &r, c.MaxBounces, c.Sky)
				colour = vec3.AddVV(colour, r.Colour)
			}
		}

		c.Image.UpdatePixel(x, y, vec3.MulVS(colour, weight))
	}
}

func (c *Camera) pass(ctx context.Context, sc *scene.Scene) error {
	start := time.Now()
	if err := c.Raytrace(ctx, sc); err != nil {
		return err
	}
	c.Update()

	if c.onProgress != nil {
		c.onProgress(ctx, Progress{Updates: c.Image.Updates, Elapsed: time.Since(start)})
	}
	return nil
}

// Accumulate runs n passes, applying configuration changes between them.
func (c *Camera) Accumulate(ctx context.Context, sc *scene.Scene, n int) error {
	for i := 0; i < n; i++ {
		if err := c.pass(ctx, sc); err != nil {
			return err
		}
	}
	return nil
}

// AccumulateForever runs passes until ctx is done, and returns ctx.Err().
func (c *Camera) AccumulateForever(ctx context.Context, sc *scene.Scene) error {
	for {
		if err := c.pass(ctx, sc); err != nil {
			return err
		}
	}
}

// AccumulateWrite runs n passes, writing the image after every interval-th
// pass and after the last one.  An interval of zero writes after every pass.
func (c *Camera) AccumulateWrite(ctx context.Context, sc *scene.Scene, n, interval int) error {
	written := true
	for i := 1; i <= n; i++ {
		if err := c.pass(ctx, sc); err != nil {
			return err
		}
		written = false

		if interval == 0 || i%interval == 0 {
			if err := c.Write(ctx); err != nil {
				return err
			}
			written = true
		}
	}

	if !written {
		return c.Write(ctx)
	}
	return nil
}

// AccumulateWriteForever runs passes until ctx is done, writing the image
// after every interval-th pass.  An interval of zero writes after every pass.
func (c *Camera) AccumulateWriteForever(ctx context.Context, sc *scene.Scene, interval int) error {
	for i := 1; ; i++ {
		if err := c.pass(ctx, sc); err != nil {
			return err
		}

		if interval == 0 || i%interval == 0 {
			if err := c.Write(ctx); err != nil {
				return err
			}
		}
	}
}

// Write writes the image to the camera's filename.
func (c *Camera) Write(ctx context.Context) error {
	return c.WriteTo(ctx, c.Filename)
}

// WriteTo writes the image, encoded with the camera's gamma, to name.
func (c *Camera) WriteTo(ctx context.Context, name string) error {
	tracer := otel.Tracer("lumen/camera")
	var span trace.Span
	ctx, span = tracer.Start(ctx, "Camera.WriteTo")
	defer span.End()

	span.SetAttributes(attribute.String("name", name))

	err := c.sinkWrite(ctx, name, func(w io.Writer) error {
		return c.Image.Write(w, c.Gamma)
	})
	rendermetrics.RecordWrite(ctx, "image", err)
	if err != nil {
		err = fmt.Errorf("while writing image to %s: %w", name, err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	glog.V(1).Infof("Wrote %s after %d passes", name, c.Image.Updates)
	span.SetStatus(codes.Ok, "")
	return nil
}

// sinkWrite publishes whatever encode writes to name, or nothing if encode
// fails.
func (c *Camera) sinkWrite(ctx context.Context, name string, encode func(io.Writer) error) error {
	w, err := c.sink.Create(ctx, name)
	if err != nil {
		return fmt.Errorf("while opening output: %w", err)
	}

	if err := encode(w); err != nil {
		w.Abort()
		return err
	}

	if err := w.Close(); err != nil {
		return fmt.Errorf("while publishing output: %w", err)
	}
	return nil
}

// Checkpoint writes the raw accumulator to name, for a later Resume.
func (c *Camera) Checkpoint(ctx context.Context, name string) error {
	tracer := otel.Tracer("lumen/camera")
	var span trace.Span
	ctx, span = tracer.Start(ctx, "Camera.Checkpoint")
	defer span.End()

	span.SetAttributes(attribute.String("name", name))

	err := c.sinkWrite(ctx, name, func(w io.Writer) error {
		return accumimage.WriteAccumulator(c.Image, w)
	})
	rendermetrics.RecordWrite(ctx, "checkpoint", err)
	if err != nil {
		err = fmt.Errorf("while writing checkpoint to %s: %w", name, err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	glog.V(1).Infof("Checkpointed %s after %d passes", name, c.Image.Updates)
	span.SetStatus(codes.Ok, "")
	return nil
}

// Resume replaces the camera's samples with the checkpoint at name.  The
// checkpoint must have the same dimensions as the camera's image.  A missing
// checkpoint yields an error wrapping outputsink.ErrNotExist.
func (c *Camera) Resume(ctx context.Context, name string) error {
	tracer := otel.Tracer("lumen/camera")
	var span trace.Span
	ctx, span = tracer.Start(ctx, "Camera.Resume")
	defer span.End()

	span.SetAttributes(attribute.String("name", name))

	im, err := c.readCheckpoint(ctx, name)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	copy(c.Image.Sums, im.Sums)
	c.Image.Updates = im.Updates
	c.reseed()

	glog.Infof("Resumed %s with %d passes", name, im.Updates)
	span.SetStatus(codes.Ok, "")
	return nil
}

func (c *Camera) readCheckpoint(ctx context.Context, name string) (*accumimage.Image, error) {
	r, err := c.sink.Open(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("while opening checkpoint: %w", err)
	}
	defer r.Close()

	im, err := accumimage.ReadAccumulator(r)
	if err != nil {
		return nil, fmt.Errorf("while reading checkpoint %s: %w", name, err)
	}

	if im.SizeX != c.Image.SizeX || im.SizeY != c.Image.SizeY {
		return nil, fmt.Errorf("checkpoint %s is %dx%d, want %dx%d", name, im.SizeX, im.SizeY, c.Image.SizeX, c.Image.SizeY)
	}
	return im, nil
}
