// Package paper holds the catalogue of printable paper formats and the
// page layout constants shared by the renderers.
package paper

import (
	"errors"
	"fmt"
	"strings"

	"github.com/maposmatic/ocitysmap-go/internal/coords"
)

// Layout constants, in points or as ratios of the page.
const (
	// Margin left on every page border so that printers eating up the
	// edges do not clip the map.
	PrintSafeMarginPt = 15

	GridLegendMarginRatio = 0.02
	TitleMarginRatio      = 0.05
	CopyrightMarginRatio  = 0.02

	// Largest share of the usable page area the street index may take.
	MaxIndexOccupationRatio = 1.0 / 3.0

	// Minimum acceptable size of a rendered kilometer, in millimeters.
	DefaultKmInMM = 100
)

// BestFit is the synthetic catalogue entry computed from the bounding
// box instead of a fixed sheet.
const BestFit = "Best fit"

// Size is a portrait paper format in millimeters.
type Size struct {
	Name     string
	WidthMM  int
	HeightMM int
}

// Sizes lists the supported formats, smaller sheets first. BestFit has
// no fixed dimensions.
var Sizes = []Size{
	{"A5", 148, 210},
	{"A4", 210, 297},
	{"A3", 297, 420},
	{"A2", 420, 594},
	{"A1", 594, 841},
	{"A0", 841, 1189},

	{"US letter", 216, 279},

	{"100x75cm", 750, 1000},
	{"80x60cm", 600, 800},
	{"60x45cm", 450, 600},
	{"40x30cm", 300, 400},

	{"60x60cm", 600, 600},
	{"50x50cm", 500, 500},
	{"40x40cm", 400, 400},

	{BestFit, 0, 0},
}

var ErrNoSuchPaper = errors.New("unknown paper size")

// Lookup finds a catalogue entry by name, case-insensitively.
func Lookup(name string) (Size, error) {
	for _, s := range Sizes {
		if strings.EqualFold(s.Name, name) {
			return s, nil
		}
	}
	return Size{}, fmt.Errorf("%w: %q", ErrNoSuchPaper, name)
}

// IndexPosition says where the street index goes on a single page.
type IndexPosition string

const (
	IndexNone   IndexPosition = ""
	IndexSide   IndexPosition = "side"
	IndexBottom IndexPosition = "bottom"
)

// Compatible is a catalogue entry annotated with the orientations in
// which a given map fits on it.
type Compatible struct {
	Size
	Portrait  bool
	Landscape bool
}

// CompatibleSizes returns the formats able to carry the bounding box at
// the given resolution (millimeters of paper per geographic kilometer),
// smaller sheets first, with a Best fit entry matching the box exactly
// appended at the end. When the index is displayed, the dimension it
// occupies is inflated by the index occupation ratio.
func CompatibleSizes(bbox coords.BoundingBox, kmInMM float64, pos IndexPosition) []Compatible {
	geoWidthM, geoHeightM := bbox.SphericSizes()
	widthMM := geoWidthM / 1000 * kmInMM
	heightMM := geoHeightM / 1000 * kmInMM

	switch pos {
	case IndexSide:
		widthMM /= 1 - MaxIndexOccupationRatio
	case IndexBottom:
		heightMM /= 1 - MaxIndexOccupationRatio
	}

	var out []Compatible
	for _, s := range Sizes {
		if s.Name == BestFit {
			continue
		}
		portrait := widthMM <= float64(s.WidthMM) && heightMM <= float64(s.HeightMM)
		landscape := widthMM <= float64(s.HeightMM) && heightMM <= float64(s.WidthMM)
		if portrait || landscape {
			out = append(out, Compatible{Size: s, Portrait: portrait, Landscape: landscape})
		}
	}

	out = append(out, Compatible{
		Size: Size{
			Name:     BestFit,
			WidthMM:  int(min(widthMM, heightMM)),
			HeightMM: int(max(widthMM, heightMM)),
		},
		Portrait:  widthMM < heightMM,
		Landscape: widthMM > heightMM,
	})
	return out
}

// MMToPt converts millimeters to PDF points (1 inch = 25.4 mm = 72 pt).
func MMToPt(mm float64) float64 { return mm / 25.4 * 72 }

// PtToMM converts PDF points to millimeters.
func PtToMM(pt float64) float64 { return pt * 25.4 / 72 }
