package coords

import (
	"math"
	"strings"
	"testing"
)

func TestNew_NormalizesCorners(t *testing.T) {
	// Corners given bottom-right first must come out swapped.
	b := New(48.0, 2.5, 49.0, 2.0)

	tl := b.TopLeft()
	br := b.BottomRight()
	if tl.Lat != 49.0 || tl.Long != 2.0 {
		t.Fatalf("top left = %v, want lat=49 long=2", tl)
	}
	if br.Lat != 48.0 || br.Long != 2.5 {
		t.Fatalf("bottom right = %v, want lat=48 long=2.5", br)
	}
}

func TestNew_DegenerateBoxAllowed(t *testing.T) {
	b := New(48.0, 2.0, 48.0, 2.0)
	w, h := b.SphericSizes()
	if w != 0 || h != 0 {
		t.Fatalf("degenerate box sizes = (%f, %f), want zeros", w, h)
	}
	if !b.Contains(NewPoint(48.0, 2.0)) {
		t.Fatalf("degenerate box must contain its own corner")
	}
}

func TestParseLatLongPair(t *testing.T) {
	b, err := ParseLatLongPair("48.7268, 2.2571", "48.6801, 2.3270")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got := b.TopLeft().Lat; got != 48.7268 {
		t.Fatalf("top lat = %f, want 48.7268", got)
	}
	if got := b.BottomRight().Long; got != 2.3270 {
		t.Fatalf("right long = %f, want 2.3270", got)
	}

	if _, err := ParseLatLongPair("48.7268", "48.6801, 2.3270"); err == nil {
		t.Fatalf("expected error for malformed pair")
	}
}

func TestParseLatLongPair_RejectsAntimeridian(t *testing.T) {
	if _, err := ParseLatLongPair("10, 170", "5, -170"); err == nil {
		t.Fatalf("expected error for a box wrapping the antimeridian")
	}
}

func TestAsWKT_RoundTrip(t *testing.T) {
	b := New(48.7268, 2.2571, 48.6801, 2.3270)
	s := b.AsWKT()
	if !strings.HasPrefix(s, "POLYGON((") {
		t.Fatalf("wkt = %q, want POLYGON prefix", s)
	}

	got, err := ParseWKT(s)
	if err != nil {
		t.Fatalf("reparse: %v", err)
	}
	if d := math.Abs(got.TopLeft().Lat - b.TopLeft().Lat); d > 1e-6 {
		t.Fatalf("round trip drifted top lat by %g", d)
	}
	if d := math.Abs(got.BottomRight().Long - b.BottomRight().Long); d > 1e-6 {
		t.Fatalf("round trip drifted right long by %g", d)
	}
}

func TestSphericSizes_OneDegreeAtEquator(t *testing.T) {
	b := New(0.5, 0, -0.5, 1)
	w, h := b.SphericSizes()

	// One degree of a great circle on the reference sphere.
	oneDeg := EarthRadius * math.Pi / 180
	if math.Abs(h-oneDeg) > 1 {
		t.Fatalf("height = %f, want about %f", h, oneDeg)
	}
	// Width is measured at the top latitude, so slightly under a degree.
	if w >= oneDeg || w < oneDeg*math.Cos(math.Pi/360)-1 {
		t.Fatalf("width = %f, want just under %f", w, oneDeg)
	}
}

func TestPixelSize_DoublesPerZoomLevel(t *testing.T) {
	b := New(48.7268, 2.2571, 48.6801, 2.3270)
	w16, h16 := b.PixelSize(16)
	w17, h17 := b.PixelSize(17)

	if w16 <= 0 || h16 <= 0 {
		t.Fatalf("zoom 16 size = (%d, %d), want positive", w16, h16)
	}
	if w17 < 2*w16-2 || w17 > 2*w16+2 {
		t.Fatalf("width did not double: z16=%d z17=%d", w16, w17)
	}
	if h17 < 2*h16-2 || h17 > 2*h16+2 {
		t.Fatalf("height did not double: z16=%d z17=%d", h16, h17)
	}
}

func TestMerge_CoversBoth(t *testing.T) {
	a := New(49, 2, 48, 3)
	b := New(48.5, 1, 47, 2.5)
	m := a.Merge(b)

	for _, p := range []Point{a.TopLeft(), a.BottomRight(), b.TopLeft(), b.BottomRight()} {
		if !m.Contains(p) {
			t.Fatalf("merged box %v does not contain %v", m, p)
		}
	}
}

func TestExtend_GrowsEverySide(t *testing.T) {
	b := New(49, 2, 48, 3)
	e := b.Extend(0.1)

	if e.TopLeft().Lat != 49.1 || e.BottomRight().Lat != 47.9 {
		t.Fatalf("lat span after extend: %v", e)
	}
	if e.TopLeft().Long != 1.9 || e.BottomRight().Long != 3.1 {
		t.Fatalf("long span after extend: %v", e)
	}
}

func TestParsePointWKT(t *testing.T) {
	p, err := ParsePointWKT("POINT(2.0333 48.7062)")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if p.Long != 2.0333 || p.Lat != 48.7062 {
		t.Fatalf("point = %v", p)
	}
}
