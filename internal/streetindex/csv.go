package streetindex

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"
)

// WriteCSV exports the index, one row per category name and one row
// per item. The leading comment row carries the map title and the
// copyright notice.
func (ix *Index) WriteCSV(w io.Writer, title string) error {
	cw := csv.NewWriter(w)

	year := time.Now().Year()
	copyright := fmt.Sprintf("© %d MapOSMatic/ocitysmap authors. "+
		"Map data © %d OpenStreetMap.org and contributors (CC-BY-SA)",
		year, year)

	if err := cw.Write([]string{"# (UTF-8)", title, copyright}); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, c := range ix.Categories {
		if err := cw.Write([]string{c.Name}); err != nil {
			return fmt.Errorf("write csv category: %w", err)
		}
		for _, it := range c.Items {
			loc := it.Location
			if loc == "" {
				loc = UnknownLocation
			}
			if err := cw.Write([]string{"", it.Label, loc}); err != nil {
				return fmt.Errorf("write csv item: %w", err)
			}
		}
	}
	cw.Flush()
	return cw.Error()
}
