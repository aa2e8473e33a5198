package accumimage

import (
	"bytes"
	"encoding/binary"
	"testing"

	"lumen/vmath/vec3"

	"github.com/google/go-cmp/cmp"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

func TestAccumulatorRoundTrip(t *testing.T) {
	im := New(3, 2)
	for i := range im.Sums {
		im.Sums[i] = vec3.T{float64(i), float64(i) * 0.5, -float64(i)}
	}
	im.Updates = 17

	buf := &bytes.Buffer{}
	if err := WriteAccumulator(im, buf); err != nil {
		t.Fatalf("Unexpected error writing: %v", err)
	}

	got, err := ReadAccumulator(buf)
	if err != nil {
		t.Fatalf("Unexpected error reading: %v", err)
	}

	if diff := cmp.Diff(got, im); diff != "" {
		t.Errorf("Image changed across checkpoint; diff (-got +want)\n%s", diff)
	}
}

func TestReadAccumulatorRejectsBadInput(t *testing.T) {
	good := &bytes.Buffer{}
	if err := WriteAccumulator(New(2, 2), good); err != nil {
		t.Fatalf("Unexpected error writing: %v", err)
	}

	header := func(sizeX, sizeY, version int) []byte {
		hdr, err := structpb.NewStruct(map[string]interface{}{
			"size_x":              sizeX,
			"size_y":              sizeY,
			"updates":             0,
			"data_layout_version": version,
		})
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		hdrBytes, err := proto.Marshal(hdr)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		buf := &bytes.Buffer{}
		binary.Write(buf, binary.LittleEndian, uint64(len(hdrBytes)))
		buf.Write(hdrBytes)
		return buf.Bytes()
	}

	sumsAt := 8 + int(binary.LittleEndian.Uint64(good.Bytes()[:8]))

	hugeImage := append(header(1<<20, 1<<20, dataLayoutVersion), good.Bytes()[sumsAt:]...)

	hugeHeader := make([]byte, 8)
	binary.LittleEndian.PutUint64(hugeHeader, 1<<40)

	testCases := []struct {
		desc string
		data []byte
	}{
		{"empty", nil},
		{"missing sums", good.Bytes()[:sumsAt]},
		{"truncated sums", good.Bytes()[:sumsAt+3]},
		{"truncated header", good.Bytes()[:10]},
		{"bad version", header(2, 2, 99)},
		{"huge image", hugeImage},
		{"huge header", hugeHeader},
	}
	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			if _, err := ReadAccumulator(bytes.NewReader(tc.data)); err == nil {
				t.Errorf("ReadAccumulator succeeded, want an error")
			}
		})
	}
}
