package skeleton

import (
	"strings"
	"testing"
)

func TestTopologyTables(t *testing.T) {
	tests := []struct {
		name       string
		variant    Variant
		wantParts  int
		wantConns  int
		wantClass  int
		firstPart  string
	}{
		{name: "Lmg", variant: Lmg, wantParts: 8, wantConns: 7, wantClass: 0, firstPart: "butt"},
		{name: "Rifle", variant: Rifle, wantParts: 6, wantConns: 5, wantClass: 1, firstPart: "butt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			top := tt.variant.Topology()
			if got := len(top.Parts); got != tt.wantParts {
				t.Errorf("parts = %d, want %d", got, tt.wantParts)
			}
			if got := len(top.Connections); got != tt.wantConns {
				t.Errorf("connections = %d, want %d", got, tt.wantConns)
			}
			if got := tt.variant.ClassIndex(); got != tt.wantClass {
				t.Errorf("class = %d, want %d", got, tt.wantClass)
			}
			if top.Parts[0] != tt.firstPart {
				t.Errorf("first part = %q, want %q", top.Parts[0], tt.firstPart)
			}

			// Every connection endpoint and default offset must reference a
			// part from the variant's own part list.
			for _, c := range top.Connections {
				if !tt.variant.HasPart(c.A) || !tt.variant.HasPart(c.B) {
					t.Errorf("connection %q--%q references unknown part", c.A, c.B)
				}
			}
			if got := len(top.DefaultOffsets); got != tt.wantParts {
				t.Errorf("default offsets = %d, want %d", got, tt.wantParts)
			}
			for _, o := range top.DefaultOffsets {
				if !tt.variant.HasPart(o.Part) {
					t.Errorf("default offset references unknown part %q", o.Part)
				}
			}
		})
	}
}

func TestVariantForClass(t *testing.T) {
	if got := VariantForClass(0); got != Lmg {
		t.Errorf("class 0 = %v, want Lmg", got)
	}
	// Any non-zero class reads as Rifle.
	for _, class := range []int{1, 2, 7} {
		if got := VariantForClass(class); got != Rifle {
			t.Errorf("class %d = %v, want Rifle", class, got)
		}
	}
}

func TestParseVariant(t *testing.T) {
	tests := []struct {
		in      string
		want    Variant
		wantErr bool
	}{
		{in: "lmg", want: Lmg},
		{in: "LMG", want: Lmg},
		{in: " Rifle ", want: Rifle},
		{in: "shotgun", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		got, err := ParseVariant(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseVariant(%q): expected error", tt.in)
			}
			continue
		}
		if err != nil {
			t.Fatalf("ParseVariant(%q): %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ParseVariant(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNewDefaults(t *testing.T) {
	anchor := Point{X: 320, Y: 240}
	s := New(1, Lmg, anchor)

	if got := len(s.Keypoints); got != 8 {
		t.Fatalf("keypoints = %d, want 8", got)
	}
	butt, ok := s.Keypoint("butt")
	if !ok {
		t.Fatal("butt should be present")
	}
	if butt.X != 220 || butt.Y != 240 {
		t.Errorf("butt = (%v,%v), want (220,240)", butt.X, butt.Y)
	}
	if _, ok := s.Keypoints["barrel"]; ok {
		t.Error("LMG skeleton must not carry rifle-only parts")
	}
}

func TestNewEmpty(t *testing.T) {
	s := NewEmpty(3, Rifle)
	if got := len(s.Keypoints); got != 6 {
		t.Fatalf("keypoints = %d, want 6", got)
	}
	if got := s.PresentCount(); got != 0 {
		t.Errorf("present = %d, want 0", got)
	}
}

func TestCloneIsDeep(t *testing.T) {
	s := New(1, Rifle, Point{X: 100, Y: 100})
	s.Keypoints["barrel"] = nil

	c := s.Clone()
	c.Keypoints["butt"].X = 999
	c.Keypoints["barrel"] = &Point{X: 1, Y: 1}

	if butt, _ := s.Keypoint("butt"); butt.X == 999 {
		t.Error("mutating clone leaked into original")
	}
	if s.Keypoints["barrel"] != nil {
		t.Error("clone must not restore absent keypoints on the original")
	}
}

func TestToDOT(t *testing.T) {
	dot := ToDOT(Rifle)
	if !strings.HasPrefix(dot, "graph G {") {
		t.Fatalf("unexpected DOT prefix: %q", dot[:20])
	}
	for _, want := range []string{`"butt"`, `"front handguard" -- "barrel"`} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %s", want)
		}
	}
}
