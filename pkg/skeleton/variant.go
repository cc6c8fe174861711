// Package skeleton defines the annotated entity model: skeleton variants with
// their fixed part topologies, and skeleton instances holding named keypoint
// positions in image space.
//
// A variant is the fixed topology of one firearm class. It determines the
// ordered part list (the order is the wire-format index order), the adjacency
// pairs used to draw connective lines, and the class index written to label
// files. Both variants are resolved once into lookup tables at package init;
// no string comparison happens at use sites.
package skeleton

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownVariant is returned by ParseVariant for unrecognized names.
var ErrUnknownVariant = errors.New("unknown skeleton variant")

// Variant identifies a fixed skeleton topology.
type Variant int

const (
	// Lmg is the light machine gun skeleton (class index 0).
	Lmg Variant = iota
	// Rifle is the rifle skeleton (class index 1).
	Rifle
)

// Connection is an undirected adjacency between two parts, used only for
// rendering connective lines. Both endpoints reference valid part names.
type Connection struct {
	A, B string
}

// Offset is a default keypoint position relative to an anchor point.
type Offset struct {
	Part string
	DX   float64
	DY   float64
}

// Topology is the resolved lookup table for one variant.
type Topology struct {
	// Parts is the ordered part list. The order is significant: it is the
	// fixed index order of keypoint pairs in the label format.
	Parts []string

	// Connections are the adjacency pairs drawn as skeleton lines.
	Connections []Connection

	// ClassIndex is the class written as the first label-file field.
	ClassIndex int

	// DefaultOffsets position a freshly added skeleton's keypoints around
	// an anchor, in part order.
	DefaultOffsets []Offset

	partSet map[string]struct{}
}

var topologies = map[Variant]*Topology{
	Lmg: {
		Parts: []string{
			"butt", "pistol grip", "trigger", "cover", "rear sight",
			"barrel jacket", "left bipod", "right bipod",
		},
		Connections: []Connection{
			{"butt", "cover"},
			{"cover", "pistol grip"},
			{"cover", "trigger"},
			{"cover", "rear sight"},
			{"rear sight", "barrel jacket"},
			{"barrel jacket", "left bipod"},
			{"barrel jacket", "right bipod"},
		},
		ClassIndex: 0,
		DefaultOffsets: []Offset{
			{"butt", -100, 0},
			{"pistol grip", -50, 50},
			{"trigger", 0, 20},
			{"cover", 0, 0},
			{"rear sight", 50, -30},
			{"barrel jacket", 100, 0},
			{"left bipod", 150, 50},
			{"right bipod", 150, -50},
		},
	},
	Rifle: {
		Parts: []string{
			"butt", "rear sight", "pistol grip", "trigger",
			"front handguard", "barrel",
		},
		Connections: []Connection{
			{"butt", "rear sight"},
			{"rear sight", "pistol grip"},
			{"rear sight", "trigger"},
			{"rear sight", "front handguard"},
			{"front handguard", "barrel"},
		},
		ClassIndex: 1,
		DefaultOffsets: []Offset{
			{"butt", -100, 0},
			{"rear sight", -50, -30},
			{"pistol grip", -10, 50},
			{"trigger", 0, 20},
			{"front handguard", 50, 0},
			{"barrel", 100, 0},
		},
	},
}

func init() {
	for _, t := range topologies {
		t.partSet = make(map[string]struct{}, len(t.Parts))
		for _, p := range t.Parts {
			t.partSet[p] = struct{}{}
		}
	}
}

// Variants returns all defined variants in class-index order.
func Variants() []Variant {
	return []Variant{Lmg, Rifle}
}

// Topology returns the resolved lookup table for the variant.
func (v Variant) Topology() *Topology {
	return topologies[v]
}

// Parts returns the ordered part list for the variant.
func (v Variant) Parts() []string {
	return topologies[v].Parts
}

// Connections returns the adjacency pairs for the variant.
func (v Variant) Connections() []Connection {
	return topologies[v].Connections
}

// ClassIndex returns the label-file class index for the variant.
func (v Variant) ClassIndex() int {
	return topologies[v].ClassIndex
}

// HasPart reports whether the part name belongs to the variant's part list.
func (v Variant) HasPart(part string) bool {
	_, ok := topologies[v].partSet[part]
	return ok
}

// String returns the display name of the variant.
func (v Variant) String() string {
	switch v {
	case Lmg:
		return "LMG"
	case Rifle:
		return "Rifle"
	default:
		return fmt.Sprintf("Variant(%d)", int(v))
	}
}

// VariantForClass maps a label-file class index to a variant. Class 0 is LMG;
// every other value reads as Rifle, matching the label format's decoder
// contract.
func VariantForClass(class int) Variant {
	if class == 0 {
		return Lmg
	}
	return Rifle
}

// ParseVariant resolves a case-insensitive variant name ("lmg" or "rifle").
func ParseVariant(name string) (Variant, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "lmg":
		return Lmg, nil
	case "rifle":
		return Rifle, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownVariant, name)
	}
}
