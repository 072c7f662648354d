package mesh

// Triangle returns a screen-space triangle centered on the origin, half a
// clip unit tall. UVs map the bounding box of the triangle.
//
// Returns:
//   - Mesh: the triangle mesh
func Triangle() Mesh {
	vertices := []GPUVertex2D{
		{Position: [2]float32{0.0, 0.5}, TexCoord: [2]float32{0.5, 0.0}},
		{Position: [2]float32{-0.5, -0.5}, TexCoord: [2]float32{0.0, 1.0}},
		{Position: [2]float32{0.5, -0.5}, TexCoord: [2]float32{1.0, 1.0}},
	}
	return NewMesh2D("triangle", vertices, []uint16{0, 1, 2})
}

// Quad returns a unit quad spanning [-0.5, 0.5] in both axes, wound
// counter-clockwise, with UV (0,0) at the top-left corner.
//
// Returns:
//   - Mesh: the quad mesh
func Quad() Mesh {
	vertices := []GPUVertex2D{
		{Position: [2]float32{-0.5, -0.5}, TexCoord: [2]float32{0.0, 1.0}},
		{Position: [2]float32{0.5, -0.5}, TexCoord: [2]float32{1.0, 1.0}},
		{Position: [2]float32{-0.5, 0.5}, TexCoord: [2]float32{0.0, 0.0}},
		{Position: [2]float32{0.5, 0.5}, TexCoord: [2]float32{1.0, 0.0}},
	}
	return NewMesh2D("quad", vertices, []uint16{0, 1, 3, 0, 3, 2})
}

// Cube returns a unit cube spanning [-0.5, 0.5] on each axis with four
// vertices per face so every face gets the full UV range.
//
// Returns:
//   - Mesh: the cube mesh
func Cube() Mesh {
	faces := [6][4][3]float32{
		// +Z front
		{{-0.5, -0.5, 0.5}, {0.5, -0.5, 0.5}, {0.5, 0.5, 0.5}, {-0.5, 0.5, 0.5}},
		// -Z back
		{{0.5, -0.5, -0.5}, {-0.5, -0.5, -0.5}, {-0.5, 0.5, -0.5}, {0.5, 0.5, -0.5}},
		// +X right
		{{0.5, -0.5, 0.5}, {0.5, -0.5, -0.5}, {0.5, 0.5, -0.5}, {0.5, 0.5, 0.5}},
		// -X left
		{{-0.5, -0.5, -0.5}, {-0.5, -0.5, 0.5}, {-0.5, 0.5, 0.5}, {-0.5, 0.5, -0.5}},
		// +Y top
		{{-0.5, 0.5, 0.5}, {0.5, 0.5, 0.5}, {0.5, 0.5, -0.5}, {-0.5, 0.5, -0.5}},
		// -Y bottom
		{{-0.5, -0.5, -0.5}, {0.5, -0.5, -0.5}, {0.5, -0.5, 0.5}, {-0.5, -0.5, 0.5}},
	}
	uvs := [4][2]float32{{0, 1}, {1, 1}, {1, 0}, {0, 0}}

	vertices := make([]GPUVertex3D, 0, 24)
	indices := make([]uint16, 0, 36)
	for f, corners := range faces {
		base := uint16(f * 4)
		for i, pos := range corners {
			vertices = append(vertices, GPUVertex3D{Position: pos, TexCoord: uvs[i]})
		}
		indices = append(indices, base, base+1, base+2, base, base+2, base+3)
	}
	return NewMesh3D("cube", vertices, indices)
}
