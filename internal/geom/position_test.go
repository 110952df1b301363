package geom

import "testing"

func TestNewPositionDerivesFixedPoint(t *testing.T) {
	p := NewPosition(12.3456789, -4.5)
	if p.X != 123456789 {
		t.Errorf("X = %d, want 123456789", p.X)
	}
	if p.Y != -45000000 {
		t.Errorf("Y = %d, want -45000000", p.Y)
	}
}

func TestPositionEqualUsesIntegerRepresentation(t *testing.T) {
	a := NewPosition(1.00000001, 2.0)
	b := NewPosition(1.00000002, 2.0)
	if !a.Equal(b) {
		t.Errorf("%v and %v should be equal after rounding to 1e-7", a, b)
	}

	c := NewPosition(1.0000001, 2.0)
	if a.Equal(c) {
		t.Errorf("%v and %v should not be equal, they differ by 1e-7", a, c)
	}
}

func TestPositionLessOrdersByXThenY(t *testing.T) {
	a := NewPosition(1.0, 5.0)
	b := NewPosition(2.0, 0.0)
	c := NewPosition(1.0, 6.0)

	if !a.Less(b) {
		t.Error("a should be less than b (smaller x)")
	}
	if b.Less(a) {
		t.Error("b should not be less than a")
	}
	if !a.Less(c) {
		t.Error("a should be less than c (same x, smaller y)")
	}
}

func TestPositionDistance(t *testing.T) {
	a := NewPosition(0, 0)
	b := NewPosition(3, 4)
	if d := a.Distance(b); d != 5 {
		t.Errorf("Distance = %v, want 5", d)
	}
}
