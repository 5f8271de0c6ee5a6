package scene

import (
	"bytes"
	"fmt"
	"image"
	"log/slog"
	"path/filepath"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"farmscene/core"
	"farmscene/math"
)

// LoadGLTF opens a .glb or .gltf file and flattens its default scene into
// a Model, baking node transforms into the vertices. PBR metallic-roughness
// is approximated to Phong.
func LoadGLTF(name, path string) (*Model, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("gltf open %q: %w", path, err)
	}
	dir := filepath.Dir(path)
	model := &Model{Name: name, Images: map[string]*Texture{}}

	// Texture index → path or embedded image key.
	texRefs := make([]string, len(doc.Textures))
	for i, gt := range doc.Textures {
		if gt.Source == nil || *gt.Source >= len(doc.Images) {
			continue
		}
		img := doc.Images[*gt.Source]

		switch {
		case img.BufferView != nil:
			raw, err := modeler.ReadBufferView(doc, doc.BufferViews[*img.BufferView])
			if err != nil {
				slog.Warn("gltf image", "model", name, "image", *gt.Source, "err", err)
				continue
			}
			key := fmt.Sprintf("%s#image%d", path, *gt.Source)
			tex, err := decodeImageBytes(key, raw)
			if err != nil {
				slog.Warn("gltf image", "model", name, "image", *gt.Source, "err", err)
				continue
			}
			model.Images[key] = tex
			texRefs[i] = key
		case img.URI != "" && !img.IsEmbeddedResource():
			texRefs[i] = filepath.Join(dir, img.URI)
		}
	}

	materials := make([]*Material, len(doc.Materials))
	for i, gm := range doc.Materials {
		mat := DefaultMaterial()
		mat.Name = gm.Name

		if pbr := gm.PBRMetallicRoughness; pbr != nil {
			cf := pbr.BaseColorFactorOrDefault()
			mat.Diffuse = core.Color{
				R: float32(cf[0]), G: float32(cf[1]),
				B: float32(cf[2]), A: float32(cf[3]),
			}
			if pbr.BaseColorTexture != nil && pbr.BaseColorTexture.Index < len(texRefs) {
				mat.DiffuseTexture = texRefs[pbr.BaseColorTexture.Index]
			}
			if pbr.MetallicRoughnessTexture != nil && pbr.MetallicRoughnessTexture.Index < len(texRefs) {
				mat.SpecularTexture = texRefs[pbr.MetallicRoughnessTexture.Index]
			}
			// Smooth surfaces get tight highlights, metals bright ones.
			roughness := float32(pbr.RoughnessFactorOrDefault())
			metallic := float32(pbr.MetallicFactorOrDefault())
			mat.Shininess = (1.0-roughness)*(1.0-roughness)*128.0 + 1.0
			s := metallic * 0.7
			mat.Specular = core.Color{R: s, G: s, B: s, A: 1}
		}
		materials[i] = mat
	}

	meshPrims := make([][]*Mesh, len(doc.Meshes))
	for mi, gm := range doc.Meshes {
		for pi, prim := range gm.Primitives {
			m, err := loadGLTFPrimitive(doc, gm.Name, pi, *prim)
			if err != nil {
				slog.Warn("gltf primitive", "model", name, "mesh", mi, "primitive", pi, "err", err)
				continue
			}
			if prim.Material != nil && *prim.Material < len(materials) {
				m.Material = materials[*prim.Material]
			}
			meshPrims[mi] = append(meshPrims[mi], m)
		}
	}

	nodes := make([]*Node, len(doc.Nodes))
	for i, gn := range doc.Nodes {
		n := NewNode(gn.Name)
		n.Local = nodeMatrix(gn)
		if gn.Mesh != nil && *gn.Mesh < len(meshPrims) {
			n.Meshes = meshPrims[*gn.Mesh]
		}
		nodes[i] = n
	}
	hasParent := make([]bool, len(nodes))
	for i, gn := range doc.Nodes {
		for _, c := range gn.Children {
			if c < len(nodes) {
				nodes[i].AddChild(nodes[c])
				hasParent[c] = true
			}
		}
	}

	var roots []*Node
	if doc.Scene != nil && *doc.Scene < len(doc.Scenes) {
		for _, r := range doc.Scenes[*doc.Scene].Nodes {
			if r < len(nodes) {
				roots = append(roots, nodes[r])
			}
		}
	} else {
		for i, n := range nodes {
			if !hasParent[i] {
				roots = append(roots, n)
			}
		}
	}
	for _, r := range roots {
		model.Meshes = append(model.Meshes, r.Flatten()...)
	}
	if len(model.Meshes) == 0 {
		return nil, fmt.Errorf("no geometry found in %q", path)
	}
	model.Bounds = MeshBounds(model.Meshes)
	return model, nil
}

// nodeMatrix returns the node's local transform. An explicit matrix wins
// over translation/rotation/scale.
func nodeMatrix(gn *gltf.Node) math.Mat4 {
	mat := gn.MatrixOrDefault()
	identity := true
	for i, v := range mat {
		want := 0.0
		if i%5 == 0 {
			want = 1
		}
		if v != want {
			identity = false
			break
		}
	}
	if !identity {
		// glTF stores column-major matrices for column vectors; the same
		// array read row by row is the row-vector form.
		var m math.Mat4
		for i := 0; i < 4; i++ {
			for j := 0; j < 4; j++ {
				m[i][j] = float32(mat[i*4+j])
			}
		}
		return m
	}

	t := gn.TranslationOrDefault()
	r := gn.RotationOrDefault()
	s := gn.ScaleOrDefault()
	rot := math.Quaternion{X: float32(r[0]), Y: float32(r[1]), Z: float32(r[2]), W: float32(r[3])}
	return math.Mat4Scale(math.Vec3{X: float32(s[0]), Y: float32(s[1]), Z: float32(s[2])}).
		Mul(rot.Normalize().ToMat4()).
		Mul(math.Mat4Translation(math.Vec3{X: float32(t[0]), Y: float32(t[1]), Z: float32(t[2])}))
}

// loadGLTFPrimitive converts one glTF mesh primitive into a Mesh.
func loadGLTFPrimitive(doc *gltf.Document, meshName string, primIdx int, prim gltf.Primitive) (*Mesh, error) {
	name := fmt.Sprintf("%s_p%d", meshName, primIdx)
	if meshName == "" {
		name = fmt.Sprintf("prim_%d", primIdx)
	}

	posIdx, ok := prim.Attributes["POSITION"]
	if !ok {
		return nil, fmt.Errorf("no POSITION attribute")
	}
	positions, err := modeler.ReadPosition(doc, doc.Accessors[posIdx], nil)
	if err != nil {
		return nil, fmt.Errorf("positions: %w", err)
	}

	var normals [][3]float32
	var uvs [][2]float32
	if idx, ok := prim.Attributes["NORMAL"]; ok {
		normals, _ = modeler.ReadNormal(doc, doc.Accessors[idx], nil)
	}
	if idx, ok := prim.Attributes["TEXCOORD_0"]; ok {
		uvs, _ = modeler.ReadTextureCoord(doc, doc.Accessors[idx], nil)
	}

	verts := make([]core.Vertex, len(positions))
	for i, p := range positions {
		v := core.Vertex{
			Position: math.Vec3{X: p[0], Y: p[1], Z: p[2]},
			Normal:   math.Vec3Up,
		}
		if i < len(normals) {
			n := normals[i]
			v.Normal = math.Vec3{X: n[0], Y: n[1], Z: n[2]}
		}
		if i < len(uvs) {
			v.UV = math.Vec2{X: uvs[i][0], Y: uvs[i][1]}
		}
		verts[i] = v
	}

	var indices []uint32
	if prim.Indices != nil {
		indices, err = modeler.ReadIndices(doc, doc.Accessors[*prim.Indices], nil)
		if err != nil {
			return nil, fmt.Errorf("indices: %w", err)
		}
	} else {
		indices = make([]uint32, len(verts))
		for i := range indices {
			indices[i] = uint32(i)
		}
	}

	return NewMesh(name, verts, indices), nil
}

func decodeImageBytes(name string, data []byte) (*Texture, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return NewTextureFromImage(name, img), nil
}
