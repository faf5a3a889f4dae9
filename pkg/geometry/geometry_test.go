package geometry

import "testing"

func TestRectIntersection(t *testing.T) {
	a := RectFromLTWH(0, 0, 10, 10)
	b := RectFromLTWH(5, 5, 10, 10)
	got := a.Intersection(b)
	want := RectFromLTWH(5, 5, 5, 5)
	if got != want {
		t.Fatalf("Intersection() = %+v, want %+v", got, want)
	}

	c := RectFromLTWH(20, 20, 5, 5)
	if got := a.Intersection(c); !got.IsEmpty() {
		t.Fatalf("Intersection() of disjoint rects = %+v, want empty", got)
	}
}

func TestRectJoin(t *testing.T) {
	a := RectFromLTWH(0, 0, 10, 10)
	b := RectFromLTWH(20, 20, 10, 10)
	got := a.Join(b)
	want := RectFromLTWH(0, 0, 30, 30)
	if got != want {
		t.Fatalf("Join() = %+v, want %+v", got, want)
	}
	if got := a.Join(Rect{}); got != a {
		t.Fatalf("Join(empty) = %+v, want %+v", got, a)
	}
}

func TestRectContains(t *testing.T) {
	r := RectFromLTWH(0, 0, 10, 10)
	if !r.Contains(Offset{X: 5, Y: 5}) {
		t.Fatal("expected point inside rect to be contained")
	}
	if r.Contains(Offset{X: 15, Y: 15}) {
		t.Fatal("expected point outside rect to not be contained")
	}
}

func TestMatrixIsIdentityOrTranslate(t *testing.T) {
	if !MakeTranslate(10, 20).IsIdentityOrTranslate() {
		t.Fatal("pure translation should be identity-or-translate")
	}
	if MakeScale(2, 2).IsIdentityOrTranslate() {
		t.Fatal("scale should not be identity-or-translate")
	}
}

func TestMatrixMapRectTranslate(t *testing.T) {
	m := MakeTranslate(5, 5)
	got := m.MapRect(RectFromLTWH(0, 0, 10, 10))
	want := RectFromLTWH(5, 5, 10, 10)
	if got != want {
		t.Fatalf("MapRect() = %+v, want %+v", got, want)
	}
}

func TestMatrixPreConcat(t *testing.T) {
	scale := MakeScale(2, 2)
	translate := MakeTranslate(10, 0)
	m := scale.PreConcat(translate)
	got := m.MapPoint(Offset{X: 1, Y: 1})
	want := Offset{X: 22, Y: 2}
	if got != want {
		t.Fatalf("MapPoint() = %+v, want %+v", got, want)
	}
}

func TestBorderRadiusEmptyDegradesToRect(t *testing.T) {
	br := BorderRadius{}
	path := br.GetPath(RectFromLTWH(0, 0, 10, 10))
	if path.IsEmpty() {
		t.Fatal("expected rect contour, got empty path")
	}
}

func TestPathIntersectionBounds(t *testing.T) {
	a := NewPath()
	a.AddRect(RectFromLTWH(0, 0, 10, 10), true)
	b := NewPath()
	b.AddRect(RectFromLTWH(5, 5, 10, 10), true)

	result := a.Intersection(*b)
	bounds := result.GetBounds()
	if bounds == nil {
		t.Fatal("expected non-empty intersection bounds")
	}
	want := RectFromLTWH(5, 5, 5, 5)
	if *bounds != want {
		t.Fatalf("GetBounds() = %+v, want %+v", *bounds, want)
	}
}

func TestColorWithAlpha(t *testing.T) {
	c := ColorRed.WithAlpha(0x80)
	if c.Alpha() != 0x80 {
		t.Fatalf("Alpha() = %x, want 0x80", c.Alpha())
	}
}
