package tuple

import (
	"fmt"

	"github.com/sushant-115/relicdb/core/storage/page"
)

// RID is the stable physical locator of one tuple: the page it lives on
// and its slot index within that page. Buffer evictions change residency,
// never RIDs.
type RID struct {
	PageID page.PageID
	Slot   uint16
}

func (r RID) String() string {
	return fmt.Sprintf("(%d,%d)", r.PageID, r.Slot)
}
