package assets

import (
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
)

func writePNG(t *testing.T, dir, name string, w, h int) {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, 0, color.NRGBA{255, 0, 0, 255}) // top row red
		img.Set(x, h-1, color.NRGBA{0, 0, 255, 255})
	}
	f, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
}

var tetraPositions = [][3]float32{
	{0, 1, 0}, {-1, -1, 1}, {1, -1, 1}, {0, -1, -1},
}

var tetraIndices = []uint32{0, 1, 2, 0, 2, 3, 0, 3, 1, 1, 3, 2}

// writeGLB saves a binary glTF with the given number of top-level nodes.
// Only the first node gets a mesh when withMesh is set.
func writeGLB(t *testing.T, dir, name string, roots int, withMesh, withNormals bool) {
	t.Helper()
	saveGLB(t, dir, name, tetraDocument(roots, withMesh, withNormals))
}

func saveGLB(t *testing.T, dir, name string, doc *gltf.Document) {
	t.Helper()
	if err := gltf.SaveBinary(doc, filepath.Join(dir, name)); err != nil {
		t.Fatal(err)
	}
}

func tetraDocument(roots int, withMesh, withNormals bool) *gltf.Document {
	doc := gltf.NewDocument()

	attrs := gltf.Attribute{
		gltf.POSITION: modeler.WritePosition(doc, tetraPositions),
	}
	if withNormals {
		attrs[gltf.NORMAL] = modeler.WriteNormal(doc, [][3]float32{
			{0, 1, 0}, {0, 1, 0}, {0, 1, 0}, {0, 1, 0},
		})
	}
	doc.Meshes = []*gltf.Mesh{{
		Name: "Diamond",
		Primitives: []*gltf.Primitive{{
			Indices:    gltf.Index(modeler.WriteIndices(doc, tetraIndices)),
			Attributes: attrs,
		}},
	}}

	for i := 0; i < roots; i++ {
		node := &gltf.Node{Name: "node", Translation: [3]float64{0, 0.5, 0}}
		if i == 0 && withMesh {
			node.Mesh = gltf.Index(0)
		}
		doc.Nodes = append(doc.Nodes, node)
		doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, uint32(i))
	}
	return doc
}

func TestLoadTexture(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, dir, "bg.png", 4, 3)

	img, err := NewLoader(dir).LoadTexture(context.Background(), "bg.png")
	if err != nil {
		t.Fatalf("LoadTexture: %v", err)
	}
	if img.Width != 4 || img.Height != 3 {
		t.Fatalf("size = %dx%d, want 4x3", img.Width, img.Height)
	}
	if len(img.Pix) != 4*3*4 {
		t.Fatalf("len(Pix) = %d", len(img.Pix))
	}
	// the red top row of the source ends up last
	last := img.Pix[len(img.Pix)-4:]
	if last[0] != 255 || last[2] != 0 {
		t.Errorf("rows not flipped, last pixel = %v", last)
	}
	if img.Pix[2] != 255 || img.Pix[0] != 0 {
		t.Errorf("rows not flipped, first pixel = %v", img.Pix[:4])
	}
}

func TestLoadTexture_Missing(t *testing.T) {
	_, err := NewLoader(t.TempDir()).LoadTexture(context.Background(), "texture.jpg")

	var loadErr *AssetLoadError
	if !errors.As(err, &loadErr) {
		t.Fatalf("err = %v, want *AssetLoadError", err)
	}
	if filepath.Base(loadErr.URL) != "texture.jpg" {
		t.Errorf("URL = %q", loadErr.URL)
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("cause should unwrap to ErrNotExist: %v", loadErr.Cause)
	}
}

func TestLoadTexture_NotAnImage(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "bad.jpg"), []byte("not a jpeg"), 0644); err != nil {
		t.Fatal(err)
	}
	_, err := NewLoader(dir).LoadTexture(context.Background(), "bad.jpg")

	var loadErr *AssetLoadError
	if !errors.As(err, &loadErr) {
		t.Fatalf("err = %v, want *AssetLoadError", err)
	}
}

func TestLoadModel(t *testing.T) {
	dir := t.TempDir()
	writeGLB(t, dir, "diamond.glb", 1, true, true)

	m, err := NewLoader(dir).LoadModel(context.Background(), "diamond.glb")
	if err != nil {
		t.Fatalf("LoadModel: %v", err)
	}
	if m.Mesh.VertexCount() != 4 {
		t.Errorf("vertices = %d, want 4", m.Mesh.VertexCount())
	}
	if len(m.Mesh.Indices) != len(tetraIndices) {
		t.Errorf("indices = %d, want %d", len(m.Mesh.Indices), len(tetraIndices))
	}
	if m.Mesh.Normals[0] != [3]float32{0, 1, 0} {
		t.Errorf("normals not read: %v", m.Mesh.Normals[0])
	}
	if m.Translation != [3]float32{0, 0.5, 0} {
		t.Errorf("translation = %v", m.Translation)
	}
	if m.Scale != [3]float32{1, 1, 1} || m.Rotation != [4]float32{0, 0, 0, 1} {
		t.Errorf("default transform not applied: scale %v rotation %v", m.Scale, m.Rotation)
	}
}

func TestLoadModel_ComputesMissingNormals(t *testing.T) {
	dir := t.TempDir()
	writeGLB(t, dir, "flat.glb", 1, true, false)

	m, err := NewLoader(dir).LoadModel(context.Background(), "flat.glb")
	if err != nil {
		t.Fatalf("LoadModel: %v", err)
	}
	if len(m.Mesh.Normals) != 4 {
		t.Fatalf("normals = %d, want 4", len(m.Mesh.Normals))
	}
	// apex normal points up
	if m.Mesh.Normals[0][1] <= 0 {
		t.Errorf("apex normal = %v", m.Mesh.Normals[0])
	}
}

func TestLoadModel_Invalid(t *testing.T) {
	tests := []struct {
		name     string
		roots    int
		withMesh bool
		mutate   func(doc *gltf.Document)
	}{
		{"no top-level node", 0, true, nil},
		{"two top-level nodes", 2, true, nil},
		{"node without mesh", 1, false, nil},
		{"mesh index out of range", 1, true, func(doc *gltf.Document) {
			doc.Nodes[0].Mesh = gltf.Index(9)
		}},
		{"indices accessor out of range", 1, true, func(doc *gltf.Document) {
			doc.Meshes[0].Primitives[0].Indices = gltf.Index(42)
		}},
		{"position accessor out of range", 1, true, func(doc *gltf.Document) {
			doc.Meshes[0].Primitives[0].Attributes[gltf.POSITION] = 42
		}},
		{"normal accessor out of range", 1, true, func(doc *gltf.Document) {
			doc.Meshes[0].Primitives[0].Attributes[gltf.NORMAL] = 42
		}},
		{"buffer view offset past the data", 1, true, func(doc *gltf.Document) {
			doc.Accessors[0].ByteOffset = 1 << 20
		}},
	}

	for _, tc := range tests {
		dir := t.TempDir()
		doc := tetraDocument(tc.roots, tc.withMesh, true)
		if tc.mutate != nil {
			tc.mutate(doc)
		}
		saveGLB(t, dir, "m.glb", doc)

		_, err := NewLoader(dir).LoadModel(context.Background(), "m.glb")
		var invalid *InvalidAssetError
		if !errors.As(err, &invalid) {
			t.Errorf("%s: err = %v, want *InvalidAssetError", tc.name, err)
		}
	}
}

func TestLoadAll(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, dir, "texture.png", 2, 2)
	writeGLB(t, dir, "diamond.glb", 1, true, true)

	b, err := NewLoader(dir).LoadAll(context.Background(), "texture.png", "diamond.glb")
	if err != nil {
		t.Fatalf("LoadAll: %v", err)
	}
	if b.Background == nil || b.Model == nil {
		t.Fatalf("incomplete bundle: %+v", b)
	}
}

func TestLoadAll_FailureIsReported(t *testing.T) {
	dir := t.TempDir()
	writeGLB(t, dir, "diamond.glb", 1, true, true)

	b, err := NewLoader(dir).LoadAll(context.Background(), "texture.jpg", "diamond.glb")
	if b != nil {
		t.Errorf("bundle should be nil on failure")
	}
	var loadErr *AssetLoadError
	if !errors.As(err, &loadErr) {
		t.Fatalf("err = %v, want *AssetLoadError", err)
	}
}

func TestLoadAll_Cancelled(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, dir, "texture.png", 2, 2)
	writeGLB(t, dir, "diamond.glb", 1, true, true)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewLoader(dir).LoadAll(ctx, "texture.png", "diamond.glb")
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}
