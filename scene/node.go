package scene

import "farmscene/math"

// Node is one entry of a glTF node hierarchy. Meshes are in node-local space.
type Node struct {
	Name     string
	Local    math.Mat4
	Parent   *Node
	Children []*Node
	Meshes   []*Mesh
}

func NewNode(name string) *Node {
	return &Node{Name: name, Local: math.Mat4Identity()}
}

func (n *Node) AddChild(child *Node) {
	child.Parent = n
	n.Children = append(n.Children, child)
}

// WorldMatrix applies the node's local transform, then every ancestor's.
func (n *Node) WorldMatrix() math.Mat4 {
	m := n.Local
	for p := n.Parent; p != nil; p = p.Parent {
		m = m.Mul(p.Local)
	}
	return m
}

// Traverse visits n and its descendants depth-first.
func (n *Node) Traverse(callback func(*Node)) {
	callback(n)
	for _, child := range n.Children {
		child.Traverse(callback)
	}
}

// Flatten returns copies of every mesh under n with the world transform
// baked into the vertices.
func (n *Node) Flatten() []*Mesh {
	var out []*Mesh
	n.Traverse(func(node *Node) {
		world := node.WorldMatrix()
		for _, m := range node.Meshes {
			baked := &Mesh{
				Name:     m.Name,
				Vertices: append(m.Vertices[:0:0], m.Vertices...),
				Indices:  m.Indices,
				Material: m.Material,
			}
			baked.Transform(world)
			out = append(out, baked)
		}
	})
	return out
}
