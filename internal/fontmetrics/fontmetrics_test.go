package fontmetrics

import (
	"math"
	"testing"
)

func TestAFMOracle_TextWidth(t *testing.T) {
	o, err := NewStandardOracle()
	if err != nil {
		t.Fatalf("NewStandardOracle: %v", err)
	}

	w, err := o.TextWidth("Helvetica", 10, "Moulin (Rue du)")
	if err != nil {
		t.Fatalf("TextWidth: %v", err)
	}
	if w <= 0 {
		t.Fatalf("width = %f, want > 0", w)
	}

	// Widths scale linearly with the font size.
	w2, err := o.TextWidth("Helvetica", 20, "Moulin (Rue du)")
	if err != nil {
		t.Fatalf("TextWidth at 20pt: %v", err)
	}
	if math.Abs(w2-2*w) > 1e-9 {
		t.Fatalf("width at 20pt = %f, want %f", w2, 2*w)
	}

	// A bold face runs wider than the regular one.
	wb, err := o.TextWidth("Helvetica-Bold", 10, "Moulin (Rue du)")
	if err != nil {
		t.Fatalf("TextWidth bold: %v", err)
	}
	if wb <= w {
		t.Fatalf("bold width = %f, regular = %f, want bold wider", wb, w)
	}
}

func TestAFMOracle_Extents(t *testing.T) {
	o, err := NewStandardOracle()
	if err != nil {
		t.Fatalf("NewStandardOracle: %v", err)
	}

	ascent, height, em, err := o.Extents("Times-Bold", 12)
	if err != nil {
		t.Fatalf("Extents: %v", err)
	}
	if ascent <= 0 || em <= 0 {
		t.Fatalf("ascent = %f, em = %f, want both > 0", ascent, em)
	}
	if height <= ascent {
		t.Fatalf("line height = %f, ascent = %f, want height above ascent", height, ascent)
	}
}

func TestAFMOracle_UnknownFont(t *testing.T) {
	o, err := NewStandardOracle()
	if err != nil {
		t.Fatalf("NewStandardOracle: %v", err)
	}
	if _, err := o.TextWidth("Comic-Sans", 10, "x"); err == nil {
		t.Fatal("want an error for a font outside the built-in set")
	}
}

func TestFixed(t *testing.T) {
	f := Fixed{CharWidth: 0.5, LineHeight: 1.2}
	w, err := f.TextWidth("whatever", 10, "abcd")
	if err != nil {
		t.Fatalf("TextWidth: %v", err)
	}
	if w != 20 {
		t.Fatalf("width = %f, want 20", w)
	}
}
