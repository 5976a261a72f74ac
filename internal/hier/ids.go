package hier

// ClassID identifies a class node inside the graph arena.
type ClassID uint32

const (
	// NoClassID marks the absence of a class reference.
	NoClassID ClassID = 0
)

// IsValid reports whether the class ID refers to an allocated class.
func (id ClassID) IsValid() bool { return id != NoClassID }

// MethodID identifies a method declaration inside the graph arena.
type MethodID uint32

const (
	// NoMethodID marks the absence of a method reference.
	NoMethodID MethodID = 0
)

// IsValid reports whether the method ID refers to an allocated method.
func (id MethodID) IsValid() bool { return id != NoMethodID }

// FamilyID identifies an override-equivalence class: the set of method
// declarations connected by override edges, transitively closed.
type FamilyID uint32

const (
	// NoFamilyID marks a method that has not been assigned to a family yet.
	NoFamilyID FamilyID = 0
)

// IsValid reports whether the family ID refers to an assigned family.
func (id FamilyID) IsValid() bool { return id != NoFamilyID }
