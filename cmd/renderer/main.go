// renderer is a progressive path tracer.  It renders one of its built-in
// scenes pass by pass, writing the image as it goes, and can checkpoint the
// raw samples so that a later run picks up where it stopped.
package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"runtime/pprof"
	"syscall"
	"time"

	"lumen/accumimage"
	"lumen/affinetransform"
	"lumen/camera"
	"lumen/outputsink"
	"lumen/rendermetrics"
	"lumen/scene"
	"lumen/vmath/vec3"

	"cloud.google.com/go/storage"
	"contrib.go.opencensus.io/exporter/stackdriver"
	cloudtrace "github.com/GoogleCloudPlatform/opentelemetry-operations-go/exporter/trace"
	"github.com/golang/glog"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"golang.org/x/time/rate"
	googleopt "google.golang.org/api/option"
)

var (
	outputFile     = flag.String("output-file", "images/default.png", "Output image.  May be a gs://bucket/object name.")
	checkpointFile = flag.String("checkpoint-file", "", "Raw sample checkpoint, written alongside the image.  May be a gs://bucket/object name.")
	resume         = flag.Bool("resume", false, "Should we re-open the checkpoint file to add more samples?")

	sceneName  = flag.String("scene", "triangles", "Built-in scene to render: triangles or showcase")
	sizeX      = flag.Int("size-x", 600, "Output image columns")
	sizeY      = flag.Int("size-y", 400, "Output image rows")
	fovY       = flag.Float64("fov-y", 0.93084, "Vertical field of view, in radians")
	fovX       = flag.Float64("fov-x", 1.3963, "Horizontal field of view, in radians")
	subPixelsY = flag.Int("subpixels-y", 1, "Sub-pixel grid rows")
	subPixelsX = flag.Int("subpixels-x", 1, "Sub-pixel grid columns")
	maxBounces = flag.Int("max-bounces", 8, "Maximum number of bounces to consider")
	gamma      = flag.Float64("gamma", 1.0, "Exponent applied to pixel values when writing")
	maskCutoff = flag.Float64("mask-cutoff", 0, "Stop following a ray once its throughput falls below this; 0 disables")
	seed       = flag.Uint64("seed", 1, "Seed for the per-pixel random streams")
	lanes      = flag.Int("lanes", 0, "Pixel rows traced concurrently; 0 means one per CPU")

	passes           = flag.Int("passes", 100, "Number of passes to render; 0 renders until interrupted")
	writeInterval    = flag.Int("write-interval", 10, "Write the image every this many passes; 0 writes every pass")
	progressInterval = flag.Duration("progress-interval", 10*time.Second, "Minimum time between progress log lines")

	gcsCredentialsFile = flag.String("gcs-credentials-file", "", "Service account key for gs:// outputs.  If not specified, Application Default Credentials are used.")

	monitoring           = flag.Bool("monitoring", false, "Enable monitoring?")
	monitoringProject    = flag.String("monitoring-project", "", "Override project used for monitoring integration.  If not specified, the project associated with Application Default Credentials is used.")
	monitoringTraceRatio = flag.Float64("monitoring-trace-ratio", 1.0, "What ratio of traces should be exported?")
	monitoringInterval   = flag.Duration("monitoring-interval", 60*time.Second, "How often render metrics are exported")

	cpuprofile = flag.String("cpu-profile", "", "write cpu profile to `file`")
	memprofile = flag.String("mem-profile", "", "write memory profile to `file`")
)

func main() {
	flag.Parse()
	defer glog.Flush()

	glog.CopyStandardLogTo("INFO")

	glog.Infof("flags:")
	glog.Infof("output-file: %q", *outputFile)
	glog.Infof("checkpoint-file: %q", *checkpointFile)
	glog.Infof("resume: %v", *resume)
	glog.Infof("scene: %q", *sceneName)
	glog.Infof("size: %dx%d", *sizeX, *sizeY)
	glog.Infof("fov: [%v, %v]", *fovY, *fovX)
	glog.Infof("subpixels: [%d, %d]", *subPixelsY, *subPixelsX)
	glog.Infof("max-bounces: %d", *maxBounces)
	glog.Infof("gamma: %v", *gamma)
	glog.Infof("mask-cutoff: %v", *maskCutoff)
	glog.Infof("seed: %d", *seed)
	glog.Infof("passes: %d", *passes)
	glog.Infof("write-interval: %d", *writeInterval)

	if *cpuprofile != "" {
		f, err := os.Create(*cpuprofile)
		if err != nil {
			glog.Fatalf("Could not create CPU profile: %v", err)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			glog.Fatalf("Could not start CPU profile: %v", err)
		}
		defer pprof.StopCPUProfile()
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if *monitoring {
		traceOpts := []cloudtrace.Option{}
		if *monitoringProject != "" {
			traceOpts = append(traceOpts, cloudtrace.WithProjectID(*monitoringProject))
		}

		_, traceShutdown, err := cloudtrace.InstallNewPipeline(traceOpts, sdktrace.WithSampler(sdktrace.TraceIDRatioBased(*monitoringTraceRatio)))
		if err != nil {
			glog.Fatalf("Failed to install Cloud Trace OpenTelemetry trace pipeline: %v", err)
		}
		defer traceShutdown()

		exporter, err := stackdriver.NewExporter(stackdriver.Options{
			ProjectID:         *monitoringProject,
			MetricPrefix:      "lumen",
			ReportingInterval: *monitoringInterval,
		})
		if err != nil {
			glog.Fatalf("Failed to create Stackdriver metrics exporter: %v", err)
		}
		if err := exporter.StartMetricsExporter(); err != nil {
			glog.Fatalf("Failed to start Stackdriver metrics exporter: %v", err)
		}
		defer exporter.Flush()
		defer exporter.StopMetricsExporter()
	}

	if err := rendermetrics.RegisterViews(); err != nil {
		glog.Fatalf("Failed to register render metric views: %v", err)
	}

	sink, err := newSink(ctx)
	if err != nil {
		glog.Fatalf("Failed to set up output sink: %v", err)
	}

	if err := do(ctx, sink); err != nil {
		glog.Fatalf("Error: %v", err)
	}

	if *memprofile != "" {
		f, err := os.Create(*memprofile)
		if err != nil {
			glog.Fatalf("Could not create memory profile: %v", err)
		}
		defer f.Close()
		if err := pprof.WriteHeapProfile(f); err != nil {
			glog.Fatalf("Could not write memory profile: %v", err)
		}
	}
}

// newSink returns a sink that can reach Cloud Storage if any output needs it.
func newSink(ctx context.Context) (*outputsink.Sink, error) {
	if !outputsink.IsGCSName(*outputFile) && !outputsink.IsGCSName(*checkpointFile) {
		return outputsink.New(nil), nil
	}

	opts := []googleopt.ClientOption{googleopt.WithUserAgent("lumen/renderer")}
	if *gcsCredentialsFile != "" {
		opts = append(opts, googleopt.WithCredentialsFile(*gcsCredentialsFile))
	}

	gcs, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, err
	}
	return outputsink.New(gcs), nil
}

func do(ctx context.Context, sink *outputsink.Sink) error {
	sc, sky, err := buildScene(*sceneName)
	if err != nil {
		return err
	}
	sc.MaskCutoff = *maskCutoff
	sc.Crush(0.0)

	limiter := rate.NewLimiter(rate.Every(*progressInterval), 1)
	progress := func(ctx context.Context, p camera.Progress) {
		if !limiter.Allow() {
			return
		}
		glog.Infof("Pass %d done, last took %v", p.Updates, p.Elapsed)
	}

	opts := []camera.Opt{
		camera.WithFilename(*outputFile),
		camera.WithUp(vec3.T{0, 0, 1}),
		camera.WithFOV([2]float64{*fovY, *fovX}),
		camera.WithSubPixels([2]int{*subPixelsY, *subPixelsX}),
		camera.WithMaxBounces(*maxBounces),
		camera.WithGamma(*gamma),
		camera.WithSeed(*seed),
		camera.WithSink(sink),
		camera.WithProgress(progress),
	}
	if *lanes != 0 {
		opts = append(opts, camera.WithLanes(*lanes))
	}

	cam, err := camera.New(affinetransform.Translate(vec3.T{0, -2, 0}), accumimage.New(*sizeX, *sizeY), sky, opts...)
	if err != nil {
		return err
	}

	if *checkpointFile != "" {
		if *resume {
			if err := cam.Resume(ctx, *checkpointFile); err != nil {
				return err
			}
		} else if r, err := sink.Open(ctx, *checkpointFile); err == nil {
			// Refuse to blow away hours of render time.
			r.Close()
			return errors.New("resumption not requested, but checkpoint file exists")
		} else if !errors.Is(err, outputsink.ErrNotExist) {
			return err
		}
	}

	glog.Infof("Initialization finished")

	err = render(ctx, cam, sc)
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	if errors.Is(err, context.Canceled) {
		glog.Infof("Interrupted after %d passes", cam.Image.Updates)
		if cam.Image.Updates == 0 {
			return nil
		}

		// The render context is gone; give the final writes their own.
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		if err := cam.Write(ctx); err != nil {
			return err
		}
		if *checkpointFile != "" {
			if err := cam.Checkpoint(ctx, *checkpointFile); err != nil {
				return err
			}
		}
	}

	glog.Infof("Finished after %d passes", cam.Image.Updates)
	return nil
}

// render runs the configured number of passes.  When checkpointing, the image
// and checkpoint are written together.
func render(ctx context.Context, cam *camera.Camera, sc *scene.Scene) error {
	if *checkpointFile == "" {
		if *passes == 0 {
			return cam.AccumulateWriteForever(ctx, sc, *writeInterval)
		}
		return cam.AccumulateWrite(ctx, sc, *passes, *writeInterval)
	}

	chunk := *writeInterval
	if chunk == 0 {
		chunk = 1
	}

	for done := 0; *passes == 0 || done < *passes; done += chunk {
		n := chunk
		if *passes != 0 && *passes-done < n {
			n = *passes - done
		}

		if err := cam.AccumulateWrite(ctx, sc, n, n); err != nil {
			return err
		}
		if err := cam.Checkpoint(ctx, *checkpointFile); err != nil {
			return err
		}
	}
	return nil
}
