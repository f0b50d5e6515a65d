package assets

import (
	"context"
	"fmt"
	"image"
	"image/draw"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"golang.org/x/sync/errgroup"
)

// Image is decoded RGBA pixel data with row 0 at the bottom, the way GL
// expects it.
type Image struct {
	Width  int
	Height int
	Pix    []uint8
}

// Model is the single mesh node extracted from a glTF scene
type Model struct {
	Name        string
	Mesh        *Mesh
	Translation [3]float32
	Rotation    [4]float32 // quaternion x, y, z, w
	Scale       [3]float32
}

// Bundle holds everything the viewer needs before its first frame
type Bundle struct {
	Background *Image
	Model      *Model
}

// Loader resolves asset names against a directory
type Loader struct {
	Dir string
}

// NewLoader creates a loader rooted at dir
func NewLoader(dir string) *Loader {
	return &Loader{Dir: dir}
}

func (l *Loader) path(name string) string {
	if l.Dir == "" || filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(l.Dir, name)
}

// LoadAll loads the background texture and the model concurrently. It only
// returns once both have finished; the first failure cancels the other.
func (l *Loader) LoadAll(ctx context.Context, texture, model string) (*Bundle, error) {
	g, ctx := errgroup.WithContext(ctx)

	var bundle Bundle
	g.Go(func() error {
		img, err := l.LoadTexture(ctx, texture)
		if err != nil {
			return err
		}
		bundle.Background = img
		return nil
	})
	g.Go(func() error {
		m, err := l.LoadModel(ctx, model)
		if err != nil {
			return err
		}
		bundle.Model = m
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &bundle, nil
}

// LoadTexture decodes a JPEG or PNG file into bottom-up RGBA
func (l *Loader) LoadTexture(ctx context.Context, name string) (*Image, error) {
	path := l.path(name)
	if err := ctx.Err(); err != nil {
		return nil, &AssetLoadError{URL: path, Cause: err}
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, &AssetLoadError{URL: path, Cause: err}
	}
	defer file.Close()

	im, _, err := image.Decode(file)
	if err != nil {
		return nil, &AssetLoadError{URL: path, Cause: err}
	}
	if err := ctx.Err(); err != nil {
		return nil, &AssetLoadError{URL: path, Cause: err}
	}

	bounds := im.Bounds()
	rgba, ok := im.(*image.RGBA)
	if !ok || rgba.Stride != bounds.Dx()*4 {
		rgba = image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
		draw.Draw(rgba, rgba.Bounds(), im, bounds.Min, draw.Src)
	}

	return &Image{
		Width:  bounds.Dx(),
		Height: bounds.Dy(),
		Pix:    flipRows(rgba.Pix, bounds.Dx()*4),
	}, nil
}

func flipRows(pix []uint8, stride int) []uint8 {
	out := make([]uint8, len(pix))
	rows := len(pix) / stride
	for y := 0; y < rows; y++ {
		copy(out[(rows-1-y)*stride:(rows-y)*stride], pix[y*stride:(y+1)*stride])
	}
	return out
}

// LoadModel reads a glTF or GLB file. The default scene must contain
// exactly one top-level node and that node must carry a mesh.
func (l *Loader) LoadModel(ctx context.Context, name string) (*Model, error) {
	path := l.path(name)
	if err := ctx.Err(); err != nil {
		return nil, &AssetLoadError{URL: path, Cause: err}
	}

	doc, err := gltf.Open(path)
	if err != nil {
		return nil, &AssetLoadError{URL: path, Cause: err}
	}
	if err := ctx.Err(); err != nil {
		return nil, &AssetLoadError{URL: path, Cause: err}
	}

	return extractModel(path, doc)
}

func extractModel(path string, doc *gltf.Document) (*Model, error) {
	invalid := func(format string, v ...interface{}) error {
		return &InvalidAssetError{URL: path, Reason: fmt.Sprintf(format, v...)}
	}

	sceneIndex := 0
	if doc.Scene != nil {
		sceneIndex = int(*doc.Scene)
	}
	if sceneIndex >= len(doc.Scenes) {
		return nil, invalid("scene %d not found", sceneIndex)
	}

	roots := doc.Scenes[sceneIndex].Nodes
	if len(roots) != 1 {
		return nil, invalid("expected exactly one top-level node, found %d", len(roots))
	}
	if int(roots[0]) >= len(doc.Nodes) {
		return nil, invalid("node %d out of range", roots[0])
	}

	node := doc.Nodes[roots[0]]
	if node.Mesh == nil || int(*node.Mesh) >= len(doc.Meshes) {
		return nil, invalid("top-level node %q has no mesh", node.Name)
	}

	mesh, err := readMesh(doc, doc.Meshes[*node.Mesh])
	if err != nil {
		return nil, &InvalidAssetError{URL: path, Reason: err.Error()}
	}

	t := node.TranslationOrDefault()
	r := node.RotationOrDefault()
	s := node.ScaleOrDefault()

	return &Model{
		Name:        node.Name,
		Mesh:        mesh,
		Translation: [3]float32{float32(t[0]), float32(t[1]), float32(t[2])},
		Rotation:    [4]float32{float32(r[0]), float32(r[1]), float32(r[2]), float32(r[3])},
		Scale:       [3]float32{float32(s[0]), float32(s[1]), float32(s[2])},
	}, nil
}

// readMesh merges every triangle primitive of m into one indexed mesh
func readMesh(doc *gltf.Document, m *gltf.Mesh) (out *Mesh, err error) {
	// the accessor readers slice raw buffers by stored offsets and panic on bad ones
	defer func() {
		if r := recover(); r != nil {
			out, err = nil, fmt.Errorf("malformed accessor data: %v", r)
		}
	}()

	out = &Mesh{}
	missingNormals := false

	for i, prim := range m.Primitives {
		if prim.Mode != gltf.PrimitiveTriangles {
			return nil, fmt.Errorf("primitive %d is not a triangle list", i)
		}

		posIndex, ok := prim.Attributes[gltf.POSITION]
		if !ok {
			return nil, fmt.Errorf("primitive %d has no positions", i)
		}
		posAccessor, err := accessor(doc, posIndex)
		if err != nil {
			return nil, fmt.Errorf("positions of primitive %d: %w", i, err)
		}
		positions, err := modeler.ReadPosition(doc, posAccessor, nil)
		if err != nil {
			return nil, fmt.Errorf("reading positions of primitive %d: %w", i, err)
		}

		var normals [][3]float32
		if normIndex, ok := prim.Attributes[gltf.NORMAL]; ok {
			normAccessor, err := accessor(doc, normIndex)
			if err != nil {
				return nil, fmt.Errorf("normals of primitive %d: %w", i, err)
			}
			normals, err = modeler.ReadNormal(doc, normAccessor, nil)
			if err != nil {
				return nil, fmt.Errorf("reading normals of primitive %d: %w", i, err)
			}
		}
		if len(normals) != len(positions) {
			missingNormals = true
		}

		var indices []uint32
		if prim.Indices != nil {
			idxAccessor, err := accessor(doc, *prim.Indices)
			if err != nil {
				return nil, fmt.Errorf("indices of primitive %d: %w", i, err)
			}
			indices, err = modeler.ReadIndices(doc, idxAccessor, nil)
			if err != nil {
				return nil, fmt.Errorf("reading indices of primitive %d: %w", i, err)
			}
		} else {
			indices = make([]uint32, len(positions))
			for j := range indices {
				indices[j] = uint32(j)
			}
		}

		base := uint32(len(out.Positions))
		out.Positions = append(out.Positions, positions...)
		if len(normals) == len(positions) {
			out.Normals = append(out.Normals, normals...)
		} else {
			out.Normals = append(out.Normals, make([][3]float32, len(positions))...)
		}
		for _, idx := range indices {
			if int(idx) >= len(positions) {
				return nil, fmt.Errorf("primitive %d index %d out of range", i, idx)
			}
			out.Indices = append(out.Indices, base+idx)
		}
	}

	if len(out.Positions) == 0 {
		return nil, fmt.Errorf("mesh %q has no vertices", m.Name)
	}
	if missingNormals {
		out.ComputeNormals()
	}
	return out, nil
}

func accessor(doc *gltf.Document, index uint32) (*gltf.Accessor, error) {
	if int(index) >= len(doc.Accessors) || doc.Accessors[index] == nil {
		return nil, fmt.Errorf("accessor %d out of range", index)
	}
	return doc.Accessors[index], nil
}
