package scene

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/chewxy/math32"

	"farmscene/core"
	fmath "farmscene/math"
)

// objRef points into the position/UV/normal pools, 0-based (-1 = absent).
type objRef struct{ v, vt, vn int }

type objGroup struct {
	name    string
	matName string
	tris    [][3]objRef
}

// LoadOBJ parses a Wavefront .obj file and returns one Mesh per object/group
// and material. A companion .mtl file is loaded when referenced via "mtllib".
// Texture V coordinates are flipped so the first image row is v = 0.
func LoadOBJ(path string) ([]*Mesh, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open obj %q: %w", path, err)
	}
	defer f.Close()

	meshes, err := ParseOBJ(f, filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("obj %q: %w", path, err)
	}
	return meshes, nil
}

// ParseOBJ reads OBJ data from r. Material libraries are resolved relative
// to dir.
func ParseOBJ(r io.Reader, dir string) ([]*Mesh, error) {
	var positions, normals []fmath.Vec3
	var uvs []fmath.Vec2
	materials := map[string]*Material{}

	var groups []*objGroup
	cur := &objGroup{name: "default"}
	// usemtl switches start a new group so every mesh has one material.
	startGroup := func(name, mat string) {
		if len(cur.tris) > 0 {
			groups = append(groups, cur)
		}
		cur = &objGroup{name: name, matName: mat}
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}

		switch fields[0] {
		case "v":
			p, err := parseFloats(fields[1:], 3)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			positions = append(positions, fmath.Vec3{X: p[0], Y: p[1], Z: p[2]})

		case "vn":
			n, err := parseFloats(fields[1:], 3)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			normals = append(normals, fmath.Vec3{X: n[0], Y: n[1], Z: n[2]})

		case "vt":
			t, err := parseFloats(fields[1:], 2)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			uvs = append(uvs, fmath.Vec2{X: t[0], Y: 1 - t[1]})

		case "o", "g":
			name := "default"
			if len(fields) > 1 {
				name = strings.Join(fields[1:], " ")
			}
			startGroup(name, cur.matName)

		case "usemtl":
			if len(fields) > 1 {
				startGroup(cur.name, fields[1])
			}

		case "mtllib":
			if len(fields) > 1 {
				mtlPath := filepath.Join(dir, strings.Join(fields[1:], " "))
				loaded, err := loadMTL(mtlPath, dir)
				if err != nil {
					slog.Warn("material library", "path", mtlPath, "err", err)
					continue
				}
				for k, m := range loaded {
					materials[k] = m
				}
			}

		case "f":
			if len(fields) < 4 {
				continue
			}
			refs := make([]objRef, 0, len(fields)-1)
			for _, tok := range fields[1:] {
				ref, err := parseFaceVertex(tok, len(positions), len(uvs), len(normals))
				if err != nil {
					return nil, fmt.Errorf("line %d: %w", lineNo, err)
				}
				refs = append(refs, ref)
			}
			// Fan triangulation: 0-1-2, 0-2-3, 0-3-4, ...
			for i := 1; i+1 < len(refs); i++ {
				cur.tris = append(cur.tris, [3]objRef{refs[0], refs[i], refs[i+1]})
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan obj: %w", err)
	}
	if len(cur.tris) > 0 {
		groups = append(groups, cur)
	}
	if len(groups) == 0 {
		return nil, fmt.Errorf("no geometry found")
	}

	meshes := make([]*Mesh, 0, len(groups))
	for _, g := range groups {
		mesh := buildMeshFromOBJ(g, positions, normals, uvs)
		if mat, ok := materials[g.matName]; ok {
			mesh.Material = mat
		}
		meshes = append(meshes, mesh)
	}
	return meshes, nil
}

func parseFloats(fields []string, n int) ([]float32, error) {
	if len(fields) < n {
		return nil, fmt.Errorf("want %d values, got %d", n, len(fields))
	}
	out := make([]float32, n)
	for i := 0; i < n; i++ {
		f, err := strconv.ParseFloat(fields[i], 32)
		if err != nil {
			return nil, err
		}
		out[i] = float32(f)
	}
	return out, nil
}

// parseFaceVertex parses one face vertex token: "v", "v/vt", "v//vn", "v/vt/vn".
// OBJ indices are 1-based; negative ones count back from the latest element.
func parseFaceVertex(tok string, nv, nvt, nvn int) (objRef, error) {
	ref := objRef{v: -1, vt: -1, vn: -1}
	parts := strings.Split(tok, "/")
	counts := [3]int{nv, nvt, nvn}
	out := [3]*int{&ref.v, &ref.vt, &ref.vn}
	for i := 0; i < len(parts) && i < 3; i++ {
		if parts[i] == "" {
			continue
		}
		n, err := strconv.Atoi(parts[i])
		if err != nil {
			return ref, fmt.Errorf("face index %q: %w", tok, err)
		}
		switch {
		case n > 0:
			*out[i] = n - 1
		case n < 0:
			*out[i] = counts[i] + n
		}
	}
	if ref.v < 0 || ref.v >= nv {
		return ref, fmt.Errorf("face index %q out of range", tok)
	}
	return ref, nil
}

// buildMeshFromOBJ converts triangles into a mesh, sharing identical
// position/UV/normal combinations.
func buildMeshFromOBJ(g *objGroup, positions, normals []fmath.Vec3, uvs []fmath.Vec2) *Mesh {
	vertMap := map[objRef]uint32{}
	var vertices []core.Vertex
	var indices []uint32
	missingNormals := false

	for _, tri := range g.tris {
		for _, ref := range tri {
			if idx, ok := vertMap[ref]; ok {
				indices = append(indices, idx)
				continue
			}
			v := core.Vertex{Position: positions[ref.v]}
			if ref.vt >= 0 && ref.vt < len(uvs) {
				v.UV = uvs[ref.vt]
			}
			if ref.vn >= 0 && ref.vn < len(normals) {
				v.Normal = normals[ref.vn]
			} else {
				missingNormals = true
			}
			idx := uint32(len(vertices))
			vertices = append(vertices, v)
			vertMap[ref] = idx
			indices = append(indices, idx)
		}
	}

	if missingNormals {
		generateNormals(vertices, indices)
	}
	return NewMesh(g.name, vertices, indices)
}

// generateNormals fills zero normals with area-weighted face normals.
func generateNormals(vertices []core.Vertex, indices []uint32) {
	accum := make([]fmath.Vec3, len(vertices))
	for i := 0; i+2 < len(indices); i += 3 {
		i0, i1, i2 := indices[i], indices[i+1], indices[i+2]
		v0 := vertices[i0].Position
		n := vertices[i1].Position.Sub(v0).Cross(vertices[i2].Position.Sub(v0))
		accum[i0] = accum[i0].Add(n)
		accum[i1] = accum[i1].Add(n)
		accum[i2] = accum[i2].Add(n)
	}
	for i := range vertices {
		if vertices[i].Normal.LengthSqr() == 0 {
			vertices[i].Normal = accum[i].Normalize()
		}
	}
}

func loadMTL(path, dir string) (map[string]*Material, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return parseMTL(f, dir)
}

// parseMTL reads the Phong subset of MTL. Texture paths are resolved
// relative to dir but not loaded.
func parseMTL(r io.Reader, dir string) (map[string]*Material, error) {
	mats := map[string]*Material{}
	var cur *Material

	texPath := func(fields []string) string {
		p := strings.ReplaceAll(strings.Join(fields, " "), `\`, "/")
		return filepath.Join(dir, filepath.FromSlash(p))
	}

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}
		if fields[0] == "newmtl" {
			if len(fields) > 1 {
				cur = DefaultMaterial()
				cur.Name = fields[1]
				mats[cur.Name] = cur
			}
			continue
		}
		if cur == nil || len(fields) < 2 {
			continue
		}

		switch fields[0] {
		case "Kd":
			if c, err := parseFloats(fields[1:], 3); err == nil {
				cur.Diffuse = core.Color{R: c[0], G: c[1], B: c[2], A: 1}
			}
		case "Ks":
			if c, err := parseFloats(fields[1:], 3); err == nil {
				cur.Specular = core.Color{R: c[0], G: c[1], B: c[2], A: 1}
			}
		case "Ns":
			if ns, err := parseFloats(fields[1:], 1); err == nil {
				cur.Shininess = math32.Max(1, ns[0])
			}
		case "map_Kd":
			cur.DiffuseTexture = texPath(fields[1:])
		case "map_Ks":
			cur.SpecularTexture = texPath(fields[1:])
		}
	}
	return mats, scanner.Err()
}
