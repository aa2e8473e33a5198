package accumimage

import (
	"compress/zlib"
	"encoding/binary"
	"fmt"
	"io"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	dataLayoutVersion = 1

	// maxHeaderLength bounds the header allocation when reading untrusted
	// input.
	maxHeaderLength = 1 << 16

	// maxPixels bounds the sums allocation when reading untrusted input.
	maxPixels = 1 << 26
)

// WriteAccumulator writes the raw sums and pass count, so that a later run can
// pick the render up where it stopped.
//
// The format is the little-endian uint64 length of a protobuf header, the
// header, then the zlib-compressed little-endian float64 sums.
func WriteAccumulator(im *Image, w io.Writer) error {
	hdr, err := structpb.NewStruct(map[string]interface{}{
		"size_x":              im.SizeX,
		"size_y":              im.SizeY,
		"updates":             float64(im.Updates),
		"data_layout_version": dataLayoutVersion,
	})
	if err != nil {
		return fmt.Errorf("while building header: %w", err)
	}

	hdrBytes, err := proto.Marshal(hdr)
	if err != nil {
		return fmt.Errorf("while marshaling header: %w", err)
	}

	if err := binary.Write(w, binary.LittleEndian, uint64(len(hdrBytes))); err != nil {
		return fmt.Errorf("while writing header length: %w", err)
	}

	if _, err := w.Write(hdrBytes); err != nil {
		return fmt.Errorf("while writing header: %w", err)
	}

	zipWriter := zlib.NewWriter(w)

	if err := binary.Write(zipWriter, binary.LittleEndian, im.Sums); err != nil {
		return fmt.Errorf("while writing sums: %w", err)
	}

	if err := zipWriter.Close(); err != nil {
		return fmt.Errorf("while closing zip writer: %w", err)
	}

	return nil
}

func headerInt(hdr *structpb.Struct, key string) (int, error) {
	v, ok := hdr.GetFields()[key]
	if !ok {
		return 0, fmt.Errorf("header is missing %q", key)
	}
	n, ok := v.GetKind().(*structpb.Value_NumberValue)
	if !ok {
		return 0, fmt.Errorf("header field %q is not a number", key)
	}
	if n.NumberValue < 0 || n.NumberValue != float64(int(n.NumberValue)) {
		return 0, fmt.Errorf("header field %q has bad value %v", key, n.NumberValue)
	}
	return int(n.NumberValue), nil
}

func ReadAccumulator(in io.Reader) (*Image, error) {
	var headerLength uint64
	if err := binary.Read(in, binary.LittleEndian, &headerLength); err != nil {
		return nil, fmt.Errorf("while reading header length: %w", err)
	}
	if headerLength > maxHeaderLength {
		return nil, fmt.Errorf("header length %d is too large", headerLength)
	}

	headerBytes := make([]byte, int(headerLength))
	if _, err := io.ReadFull(in, headerBytes); err != nil {
		return nil, fmt.Errorf("while reading header bytes: %w", err)
	}

	hdr := &structpb.Struct{}
	if err := proto.Unmarshal(headerBytes, hdr); err != nil {
		return nil, fmt.Errorf("while unmarshaling header: %w", err)
	}

	version, err := headerInt(hdr, "data_layout_version")
	if err != nil {
		return nil, err
	}
	if version != dataLayoutVersion {
		return nil, fmt.Errorf("bad data layout version: %v", version)
	}

	sizeX, err := headerInt(hdr, "size_x")
	if err != nil {
		return nil, err
	}
	sizeY, err := headerInt(hdr, "size_y")
	if err != nil {
		return nil, err
	}
	updates, err := headerInt(hdr, "updates")
	if err != nil {
		return nil, err
	}

	if sizeY != 0 && sizeX > maxPixels/sizeY {
		return nil, fmt.Errorf("image size %dx%d is too large", sizeX, sizeY)
	}

	im := New(sizeX, sizeY)
	im.Updates = uint64(updates)

	zipReader, err := zlib.NewReader(in)
	if err != nil {
		return nil, fmt.Errorf("while opening zip reader: %w", err)
	}
	defer zipReader.Close()

	if err := binary.Read(zipReader, binary.LittleEndian, im.Sums); err != nil {
		return nil, fmt.Errorf("while reading sums: %w", err)
	}

	return im, nil
}
