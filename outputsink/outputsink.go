// Package outputsink opens render outputs by name.  Names of the form
// gs://bucket/object refer to Cloud Storage objects; anything else is a local
// file path.
package outputsink

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"cloud.google.com/go/storage"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const gcsScheme = "gs://"

// ErrNoGCSClient is returned for gs:// names when the sink has no storage
// client.
var ErrNoGCSClient = errors.New("no Cloud Storage client configured")

// ErrNotExist is returned by Open when the named output does not exist.
var ErrNotExist = errors.New("output does not exist")

type Sink struct {
	gcs *storage.Client
}

// New returns a sink.  gcs may be nil if only local paths will be used.
func New(gcs *storage.Client) *Sink {
	return &Sink{gcs: gcs}
}

// ParseGCSName splits gs://bucket/object into its parts.
func ParseGCSName(name string) (bucket, object string, ok bool) {
	if !strings.HasPrefix(name, gcsScheme) {
		return "", "", false
	}
	parts := strings.SplitN(strings.TrimPrefix(name, gcsScheme), "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", false
	}
	return parts[0], parts[1], true
}

// IsGCSName reports whether name should be handled by Cloud Storage.
func IsGCSName(name string) bool {
	return strings.HasPrefix(name, gcsScheme)
}

// Writer is an output being written.  Close publishes it; Abort discards it.
// Until Close returns without error, a previous output of the same name is
// left untouched.
type Writer struct {
	w      io.Writer
	commit func() error
	abort  func()
}

func (w *Writer) Write(p []byte) (int, error) {
	return w.w.Write(p)
}

func (w *Writer) Close() error {
	return w.commit()
}

func (w *Writer) Abort() {
	w.abort()
}

// Create opens name for writing.
func (s *Sink) Create(ctx context.Context, name string) (*Writer, error) {
	tracer := otel.Tracer("lumen/outputsink")
	var span trace.Span
	ctx, span = tracer.Start(ctx, "Sink.Create")
	defer span.End()

	span.SetAttributes(attribute.String("name", name))

	w, err := s.create(ctx, name)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetStatus(codes.Ok, "")
	return w, nil
}

func (s *Sink) create(ctx context.Context, name string) (*Writer, error) {
	if IsGCSName(name) {
		obj, err := s.object(name)
		if err != nil {
			return nil, err
		}

		// Cancelling the writer's context is the only way to stop an upload
		// from being published.
		ctx, cancel := context.WithCancel(ctx)
		ow := obj.NewWriter(ctx)
		ow.ContentType = contentType(name)
		return &Writer{
			w: ow,
			commit: func() error {
				defer cancel()
				if err := ow.Close(); err != nil {
					return fmt.Errorf("while closing object writer: %w", err)
				}
				return nil
			},
			abort: func() {
				cancel()
				ow.Close()
			},
		}, nil
	}

	f, err := os.CreateTemp(filepath.Dir(name), "."+filepath.Base(name)+".*")
	if err != nil {
		return nil, fmt.Errorf("while creating temporary file: %w", err)
	}
	return &Writer{
		w: f,
		commit: func() error {
			if err := f.Close(); err != nil {
				os.Remove(f.Name())
				return fmt.Errorf("while closing temporary file: %w", err)
			}
			if err := os.Chmod(f.Name(), 0644); err != nil {
				os.Remove(f.Name())
				return fmt.Errorf("while setting output file mode: %w", err)
			}
			if err := os.Rename(f.Name(), name); err != nil {
				os.Remove(f.Name())
				return fmt.Errorf("while renaming temporary file into place: %w", err)
			}
			return nil
		},
		abort: func() {
			f.Close()
			os.Remove(f.Name())
		},
	}, nil
}

// Open opens name for reading.
func (s *Sink) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	tracer := otel.Tracer("lumen/outputsink")
	var span trace.Span
	ctx, span = tracer.Start(ctx, "Sink.Open")
	defer span.End()

	span.SetAttributes(attribute.String("name", name))

	r, err := s.open(ctx, name)
	if err != nil {
		if errors.Is(err, ErrNotExist) {
			span.SetStatus(codes.Ok, "")
			return nil, err
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetStatus(codes.Ok, "")
	return r, nil
}

func (s *Sink) open(ctx context.Context, name string) (io.ReadCloser, error) {
	if IsGCSName(name) {
		obj, err := s.object(name)
		if err != nil {
			return nil, err
		}
		r, err := obj.NewReader(ctx)
		if err != nil {
			if errors.Is(err, storage.ErrObjectNotExist) {
				return nil, fmt.Errorf("while opening %s: %w", name, ErrNotExist)
			}
			return nil, fmt.Errorf("while opening reader for object: %w", err)
		}
		return r, nil
	}

	f, err := os.Open(name)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("while opening %s: %w", name, ErrNotExist)
		}
		return nil, fmt.Errorf("while opening file: %w", err)
	}
	return f, nil
}

func (s *Sink) object(name string) (*storage.ObjectHandle, error) {
	if s.gcs == nil {
		return nil, ErrNoGCSClient
	}
	bucket, object, ok := ParseGCSName(name)
	if !ok {
		return nil, fmt.Errorf("malformed Cloud Storage name %q", name)
	}
	return s.gcs.Bucket(bucket).Object(object), nil
}

func contentType(name string) string {
	if strings.HasSuffix(name, ".png") {
		return "image/png"
	}
	return "application/octet-stream"
}
