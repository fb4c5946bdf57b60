// Package achievements is a read-only display tree of medal groups.
// It is independent of the medals the rewards engine actually grants.
package achievements

// Component is either a single medal or a group of components.
type Component interface {
	Name() string
	TotalMedals() int
	ListMedals() []string
}

// Medal is a leaf.
type Medal struct {
	title string
}

func NewMedal(title string) *Medal { return &Medal{title: title} }

func (m *Medal) Name() string         { return m.title }
func (m *Medal) TotalMedals() int     { return 1 }
func (m *Medal) ListMedals() []string { return []string{m.title} }

// Set groups components in insertion order.
type Set struct {
	title    string
	children []Component
}

func NewSet(title string, children ...Component) *Set {
	return &Set{title: title, children: children}
}

// Add appends a child and returns the set for chaining.
func (s *Set) Add(c Component) *Set {
	s.children = append(s.children, c)
	return s
}

func (s *Set) Name() string { return s.title }

func (s *Set) TotalMedals() int {
	total := 0
	for _, c := range s.children {
		total += c.TotalMedals()
	}
	return total
}

// ListMedals flattens leaves depth-first.
func (s *Set) ListMedals() []string {
	medals := []string{}
	for _, c := range s.children {
		medals = append(medals, c.ListMedals()...)
	}
	return medals
}

// Node is the declarative form of a tree, as read from config.
// A node without children is a medal.
type Node struct {
	Name     string `yaml:"name"`
	Children []Node `yaml:"children,omitempty"`
}

// Build turns a Node into a Component.
func Build(n Node) Component {
	if len(n.Children) == 0 {
		return NewMedal(n.Name)
	}
	set := NewSet(n.Name)
	for _, child := range n.Children {
		set.Add(Build(child))
	}
	return set
}

// DefaultTaxonomy mirrors the engine's default auto-medals.
func DefaultTaxonomy() Node {
	return Node{
		Name: "Achievements",
		Children: []Node{
			{Name: "Beginner", Children: []Node{{Name: "Iniciante 100+"}}},
			{Name: "Intermediate", Children: []Node{{Name: "Intermediário 500+"}}},
		},
	}
}

// Default builds the tree from DefaultTaxonomy.
func Default() Component {
	return Build(DefaultTaxonomy())
}
