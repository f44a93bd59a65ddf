package stubserver

import "fmt"

// Page size the service serves drilldown panels with.
const expectedPageSize = 5

// verifyDrilldown checks the paging invariants over the collected pages:
// descending order across the concatenation, no page over the page size,
// and no short page before the last one.
func verifyDrilldown(pages [][]drilldownRow, stats *Stats) error {
	var all []drilldownRow
	for i, page := range pages {
		if len(page) > expectedPageSize {
			return fmt.Errorf("page %d holds %d rows, page size is %d", i, len(page), expectedPageSize)
		}
		if i < len(pages)-1 && len(page) < expectedPageSize {
			return fmt.Errorf("non-final page %d holds only %d rows", i, len(page))
		}
		all = append(all, page...)
	}

	seen := map[string]bool{}
	for i, row := range all {
		if i > 0 && row.Percentage > all[i-1].Percentage {
			return fmt.Errorf("rows not sorted descending at %d: %s %.1f after %.1f",
				i, row.Name, row.Percentage, all[i-1].Percentage)
		}
		if seen[row.Name] {
			return fmt.Errorf("row %q appears on more than one page", row.Name)
		}
		seen[row.Name] = true
	}

	stats.RowsSeen = len(all)
	stats.PanelsVerified++
	return nil
}
