package core

import (
	"math"
	"testing"
)

func TestAABB_HitThroughCentroidAlongEachAxis(t *testing.T) {
	box := NewAABB(NewVec3(-1, -2, -3), NewVec3(1, 2, 3))
	center := box.Center()

	directions := []Vec3{
		NewVec3(1, 0, 0), NewVec3(-1, 0, 0),
		NewVec3(0, 1, 0), NewVec3(0, -1, 0),
		NewVec3(0, 0, 1), NewVec3(0, 0, -1),
	}

	for _, dir := range directions {
		// Start 10 units behind the centroid so entry and exit are at positive t
		origin := center.Subtract(dir.Multiply(10))
		ray := NewRay(origin, dir, 0)
		if !box.Hit(ray, 0.001, math.Inf(1)) {
			t.Errorf("Expected hit for ray through centroid with direction %v", dir)
		}
		if !box.Hit(ray, 5, 20) {
			t.Errorf("Expected hit for window [5, 20] with direction %v", dir)
		}
	}
}

func TestAABB_ZeroDirectionComponent(t *testing.T) {
	box := NewAABB(NewVec3(0, 0, 0), NewVec3(1, 1, 1))

	tests := []struct {
		name     string
		origin   Vec3
		dir      Vec3
		expected bool
	}{
		{"parallel inside slab", NewVec3(-1, 0.5, 0.5), NewVec3(1, 0, 0), true},
		{"parallel above slab", NewVec3(-1, 2, 0.5), NewVec3(1, 0, 0), false},
		{"parallel below slab", NewVec3(-1, -1, 0.5), NewVec3(1, 0, 0), false},
		{"parallel outside z slab", NewVec3(-1, 0.5, 5), NewVec3(1, 0, 0), false},
		{"negative zero component", NewVec3(-1, 0.5, 0.5), NewVec3(1, math.Copysign(0, -1), 0), true},
		{"negative zero outside", NewVec3(-1, 3, 0.5), NewVec3(1, math.Copysign(0, -1), 0), false},
		{"origin on slab plane", NewVec3(-1, 0, 0.5), NewVec3(1, 0, 0), true},
		{"pointing away", NewVec3(-1, 0.5, 0.5), NewVec3(-1, 0, 0), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ray := NewRay(tt.origin, tt.dir, 0)
			if got := box.Hit(ray, 0.001, math.Inf(1)); got != tt.expected {
				t.Errorf("Expected hit=%t, got %t", tt.expected, got)
			}
		})
	}
}

func TestAABB_HitRespectsInterval(t *testing.T) {
	box := NewAABB(NewVec3(4, -1, -1), NewVec3(6, 1, 1))
	ray := NewRay(NewVec3(0, 0, 0), NewVec3(1, 0, 0), 0)

	if box.Hit(ray, 0.001, 3.9) {
		t.Error("Expected miss when tMax ends before entry")
	}
	if box.Hit(ray, 6.1, 100) {
		t.Error("Expected miss when tMin starts after exit")
	}
	if !box.Hit(ray, 5, 5.5) {
		t.Error("Expected hit when window lies inside the box")
	}
}

func TestAABB_Union(t *testing.T) {
	a := NewAABB(NewVec3(-1, 0, 2), NewVec3(1, 1, 3))
	b := NewAABB(NewVec3(0, -2, 1), NewVec3(0.5, 4, 2.5))

	u := a.Union(b)
	expected := NewAABB(NewVec3(-1, -2, 1), NewVec3(1, 4, 3))
	if u != expected {
		t.Errorf("Expected %v, got %v", expected, u)
	}
	if !u.IsValid() {
		t.Error("Union of valid boxes should be valid")
	}
}
