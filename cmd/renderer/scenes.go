package main

import (
	"fmt"

	"lumen/affinetransform"
	"lumen/material"
	"lumen/medium"
	"lumen/scene"
	"lumen/shape"
	"lumen/skybox"
	"lumen/vmath/vec3"
)

// buildScene returns one of the built-in scenes and the skybox that goes with
// it.
func buildScene(name string) (*scene.Scene, skybox.Skybox, error) {
	switch name {
	case "triangles":
		return trianglesScene(), skybox.NewFlat(vec3.T{0.75, 0.75, 0.99}), nil
	case "showcase":
		return showcaseScene(), &skybox.Gradient{
			Up:      vec3.T{0, 0, 1},
			Ground:  vec3.T{0.2, 0.2, 0.2},
			Horizon: vec3.T{0.9, 0.9, 1.0},
			Zenith:  vec3.T{0.35, 0.5, 0.9},
		}, nil
	default:
		return nil, nil, fmt.Errorf("unknown scene %q", name)
	}
}

func addDiffuseMaterials(sc *scene.Scene) {
	sc.AddMaterial(material.NewDiffuse(vec3.T{0, 0, 0}, vec3.T{0.98, 0.7, 0.85}, 1))
	sc.AddMaterial(material.NewDiffuse(vec3.T{2, 2, 2}, vec3.T{1, 1, 1}, 1))
	sc.AddMaterial(material.NewDiffuse(vec3.T{0, 0, 0}, vec3.T{0.8, 0.95, 0.6}, 1))
	sc.AddMaterial(material.NewDiffuse(vec3.T{0, 0, 0}, vec3.T{0.98, 1.0, 0.9}, 0))
	sc.AddMaterial(material.NewDiffuse(vec3.T{0, 0, 0}, vec3.T{1, 1, 1}, 0.5))
}

// trianglesScene is a handful of loose triangles and a unit cube, lit by one
// emissive material and the sky.
func trianglesScene() *scene.Scene {
	sc := &scene.Scene{}
	addDiffuseMaterials(sc)

	triangles := []struct {
		material int
		points   [3]vec3.T
	}{
		{0, [3]vec3.T{{-2, 4, 2}, {-2, 4, 0}, {0, 4, 0}}},
		{1, [3]vec3.T{{-3, 3, -1}, {-3, 3, -3}, {0, 3, -1}}},
		{2, [3]vec3.T{{-3, 4, -3}, {0, 4, -3}, {0, 4, -1}}},
		{3, [3]vec3.T{{0, 5, 0}, {0, 5, -4}, {4, 5, -4}}},
		{4, [3]vec3.T{{1, 2, 0}, {0, 2, 0}, {0, 3, 0}}},
		{0, [3]vec3.T{{0, 3, 0}, {1, 3, 0}, {1, 2, 0}}},
		{1, [3]vec3.T{{0, 3, 1}, {0, 2, 1}, {1, 2, 1}}},
		{2, [3]vec3.T{{1, 2, 1}, {1, 3, 1}, {0, 3, 1}}},
		{3, [3]vec3.T{{1, 3, 1}, {1, 2, 1}, {1, 2, 0}}},
		{4, [3]vec3.T{{1, 2, 0}, {1, 3, 0}, {1, 3, 1}}},
		{0, [3]vec3.T{{0, 2, 0}, {0, 2, 1}, {0, 3, 1}}},
		{1, [3]vec3.T{{0, 3, 1}, {0, 3, 0}, {0, 2, 0}}},
	}
	for _, t := range triangles {
		sc.Add(shape.NewTriangle(affinetransform.Identity(), t.points), t.material)
	}

	return sc
}

// showcaseScene puts a glass ball, a mirror ball and a ball of coloured fog on
// a checkered floor under an emissive panel.
func showcaseScene() *scene.Scene {
	sc := trianglesScene()

	glassMedium := medium.NewAbsorber(vec3.Zero, vec3.T{0.95, 0.98, 0.95}, 1e9, 8, 1.5, 10)
	fogMedium := medium.NewScatterer(vec3.Zero, vec3.T{0.9, 0.6, 0.6}, 1e9, 4, 1.0, 5, vec3.Zero, vec3.T{0.95, 0.8, 0.8}, 0.5)
	sc.AddMedium(glassMedium)
	sc.AddMedium(fogMedium)

	glass := sc.AddMaterial(&material.Refractive{Colour: vec3.One, Medium: glassMedium})
	fog := sc.AddMaterial(&material.Refractive{Colour: vec3.One, Medium: fogMedium})
	mirror := sc.AddMaterial(&material.Reflective{Colour: vec3.T{0.9, 0.9, 0.9}, Roughness: 0.02})
	floor := sc.AddMaterial(&material.TexturedDiffuse{
		Texture: material.SwitchBetween(0.5, material.CheckerboardSurface(0.1),
			material.ConstantColour(vec3.T{0.9, 0.9, 0.9}),
			material.ConstantColour(vec3.T{0.2, 0.2, 0.25})),
		Roughness: 1,
	})
	panel := sc.AddMaterial(material.NewDiffuse(vec3.T{4, 4, 3.6}, vec3.Zero, 1))

	sc.Add(shape.NewSphere(vec3.T{-1.2, 1.2, -0.9}, 0.5), glass)
	sc.Add(shape.NewSphere(vec3.T{2.0, 3.0, -0.8}, 0.7), mirror)
	sc.Add(shape.NewSphere(vec3.T{-2.2, 2.0, 0.8}, 0.5), fog)

	floorTransform := affinetransform.Compose(affinetransform.Translate(vec3.T{0, 3, -1.5}), affinetransform.Scale(10))
	sc.Add(shape.NewTriangle(floorTransform, [3]vec3.T{{-1, -1, 0}, {1, -1, 0}, {1, 1, 0}}), floor)
	sc.Add(shape.NewTriangle(floorTransform, [3]vec3.T{{1, 1, 0}, {-1, 1, 0}, {-1, -1, 0}}), floor)

	sc.Add(shape.NewTriangle(affinetransform.Identity(), [3]vec3.T{{-1, 2, 3.5}, {1, 2, 3.5}, {1, 4, 3.5}}), panel)
	sc.Add(shape.NewTriangle(affinetransform.Identity(), [3]vec3.T{{1, 4, 3.5}, {-1, 4, 3.5}, {-1, 2, 3.5}}), panel)

	return sc
}
