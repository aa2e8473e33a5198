package outputsink

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseGCSName(t *testing.T) {
	testCases := []struct {
		name       string
		wantBucket string
		wantObject string
		wantOK     bool
	}{
		{"gs://renders/frames/0001.png", "renders", "frames/0001.png", true},
		{"gs://renders/a", "renders", "a", true},
		{"gs://renders", "", "", false},
		{"gs://renders/", "", "", false},
		{"gs:///a.png", "", "", false},
		{"images/a.png", "", "", false},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			bucket, object, ok := ParseGCSName(tc.name)
			if diff := cmp.Diff([]interface{}{bucket, object, ok}, []interface{}{tc.wantBucket, tc.wantObject, tc.wantOK}); diff != "" {
				t.Errorf("Bad parse; diff (-got +want)\n%s", diff)
			}
		})
	}
}

func TestLocalCommit(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	name := filepath.Join(dir, "out.png")

	if err := os.WriteFile(name, []byte("old"), 0644); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	s := New(nil)
	w, err := s.Create(ctx, name)
	if err != nil {
		t.Fatalf("Unexpected error creating: %v", err)
	}
	if _, err := w.Write([]byte("new")); err != nil {
		t.Fatalf("Unexpected error writing: %v", err)
	}

	// Nothing is visible until Close.
	if got, _ := os.ReadFile(name); string(got) != "old" {
		t.Errorf("Before Close, file holds %q, want %q", got, "old")
	}

	if err := w.Close(); err != nil {
		t.Fatalf("Unexpected error closing: %v", err)
	}

	r, err := s.Open(ctx, name)
	if err != nil {
		t.Fatalf("Unexpected error opening: %v", err)
	}
	defer r.Close()
	got, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("Unexpected error reading: %v", err)
	}
	if diff := cmp.Diff(string(got), "new"); diff != "" {
		t.Errorf("Bad contents; diff (-got +want)\n%s", diff)
	}

	info, err := os.Stat(name)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if diff := cmp.Diff(info.Mode().Perm(), os.FileMode(0644)); diff != "" {
		t.Errorf("Bad file mode; diff (-got +want)\n%s", diff)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("Directory holds %d entries, want only the output", len(entries))
	}
}

func TestLocalAbort(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	name := filepath.Join(dir, "out.png")

	s := New(nil)
	w, err := s.Create(ctx, name)
	if err != nil {
		t.Fatalf("Unexpected error creating: %v", err)
	}
	if _, err := w.Write([]byte("partial")); err != nil {
		t.Fatalf("Unexpected error writing: %v", err)
	}
	w.Abort()

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("Abort left %d entries behind", len(entries))
	}
	if _, err := s.Open(ctx, name); !errors.Is(err, ErrNotExist) {
		t.Errorf("Open() error = %v, want ErrNotExist", err)
	}
}

func TestGCSWithoutClient(t *testing.T) {
	ctx := context.Background()
	s := New(nil)

	if _, err := s.Create(ctx, "gs://renders/out.png"); !errors.Is(err, ErrNoGCSClient) {
		t.Errorf("Create() error = %v, want ErrNoGCSClient", err)
	}
	if _, err := s.Open(ctx, "gs://renders/out.png"); !errors.Is(err, ErrNoGCSClient) {
		t.Errorf("Open() error = %v, want ErrNoGCSClient", err)
	}
}

func TestCreateInMissingDirectory(t *testing.T) {
	s := New(nil)
	if _, err := s.Create(context.Background(), filepath.Join(t.TempDir(), "missing", "out.png")); err == nil {
		t.Errorf("Create succeeded in a missing directory")
	}
}
