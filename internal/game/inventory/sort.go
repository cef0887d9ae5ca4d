package inventory

import (
	"sort"

	"github.com/duskhollow/emberfall/internal/game/item"
)

// Sort stable-orders the bag by item type (weapon < armor < accessory <
// consumable < material < quest), then by rarity with legendary first, then
// by item ID, compacting occupied slots to the front of the bag.
//
// Postcondition: bag length is unchanged; total quantities per item are
// unchanged; all empty slots trail the occupied ones.
func (inv *Inventory) Sort(lookup *item.Catalog) {
	occupied := make([]Slot, 0, len(inv.bag))
	for _, s := range inv.bag {
		if !s.Empty() {
			occupied = append(occupied, s)
		}
	}

	sort.SliceStable(occupied, func(i, j int) bool {
		a, aOK := lookup.Item(occupied[i].ItemID)
		b, bOK := lookup.Item(occupied[j].ItemID)
		// Unknown items sink to the end of their relative order.
		if aOK != bOK {
			return aOK
		}
		if !aOK {
			return occupied[i].ItemID < occupied[j].ItemID
		}
		if ta, tb := item.TypeSortOrder(a.Type), item.TypeSortOrder(b.Type); ta != tb {
			return ta < tb
		}
		if ra, rb := item.RarityRank(a.Rarity), item.RarityRank(b.Rarity); ra != rb {
			return ra > rb
		}
		return a.ID < b.ID
	})

	bag := make([]Slot, inv.capacity)
	copy(bag, occupied)
	inv.bag = bag
}
