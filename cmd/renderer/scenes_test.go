package main

import (
	"context"
	"testing"

	"lumen/accumimage"
	"lumen/affinetransform"
	"lumen/camera"
	"lumen/vmath/vec3"
)

func TestBuiltinScenesRender(t *testing.T) {
	for _, name := range []string{"triangles", "showcase"} {
		t.Run(name, func(t *testing.T) {
			sc, sky, err := buildScene(name)
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			sc.Crush(0)

			for i, element := range sc.Elements {
				if element.MaterialIndex < 0 || element.MaterialIndex >= len(sc.Materials) {
					t.Errorf("Element %d uses missing material %d", i, element.MaterialIndex)
				}
			}

			im := accumimage.New(8, 6)
			cam, err := camera.New(affinetransform.Translate(vec3.T{0, -2, 0}), im, sky, camera.WithLanes(2))
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if err := cam.Accumulate(context.Background(), sc, 2); err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}

			pix, err := im.Quantize(1)
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			lit := 0
			for _, p := range pix {
				if p != 0 {
					lit++
				}
			}
			if lit == 0 {
				t.Errorf("Scene %s rendered completely black", name)
			}
		})
	}
}

func TestUnknownScene(t *testing.T) {
	if _, _, err := buildScene("nope"); err == nil {
		t.Errorf("buildScene succeeded for an unknown scene")
	}
}
