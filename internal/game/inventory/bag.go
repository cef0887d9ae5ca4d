// Package inventory owns a character's fixed-capacity bag and equipment
// slots: stacking, equip/unequip swaps, and slot-compatibility validation.
// Item definitions are consulted through an injected catalog lookup; the
// package holds no static data of its own.
package inventory

import (
	"github.com/duskhollow/emberfall/internal/game/item"
)

// DefaultCapacity is the standard bag size.
const DefaultCapacity = 28

// Slot is one bag entry. The zero value is an empty slot.
type Slot struct {
	ItemID   string `json:"item_id,omitempty"`
	Quantity int    `json:"quantity,omitempty"`
}

// Empty reports whether the slot holds nothing.
func (s Slot) Empty() bool {
	return s.ItemID == "" || s.Quantity <= 0
}

// State is the serializable inventory state: the ordered bag plus the
// partial equip-slot mapping.
type State struct {
	Bag      []Slot                    `json:"bag"`
	Equipped map[item.EquipSlot]string `json:"equipped,omitempty"`
}

// Inventory owns one character's bag and equipment slots.
// Not safe for concurrent use.
type Inventory struct {
	capacity int
	bag      []Slot
	equipped map[item.EquipSlot]string
}

// New constructs an Inventory from a serializable state. The incoming bag is
// deep-copied and padded with empty slots (or truncated) to exactly capacity
// entries; capacities below 1 use DefaultCapacity.
//
// Postcondition: len of the bag is exactly the configured capacity.
func New(state State, capacity int) *Inventory {
	if capacity < 1 {
		capacity = DefaultCapacity
	}
	inv := &Inventory{
		capacity: capacity,
		bag:      make([]Slot, capacity),
		equipped: make(map[item.EquipSlot]string),
	}
	for i, s := range state.Bag {
		if i >= capacity {
			break
		}
		if !s.Empty() {
			inv.bag[i] = s
		}
	}
	for slot, id := range state.Equipped {
		if id != "" {
			inv.equipped[slot] = id
		}
	}
	return inv
}

// GetState returns a deep, independent copy of the inventory state.
func (inv *Inventory) GetState() State {
	st := State{Bag: make([]Slot, len(inv.bag))}
	copy(st.Bag, inv.bag)
	if len(inv.equipped) > 0 {
		st.Equipped = make(map[item.EquipSlot]string, len(inv.equipped))
		for k, v := range inv.equipped {
			st.Equipped[k] = v
		}
	}
	return st
}

// Capacity returns the fixed bag capacity.
func (inv *Inventory) Capacity() int { return inv.capacity }

// BagSlots returns a snapshot copy of the bag.
func (inv *Inventory) BagSlots() []Slot {
	out := make([]Slot, len(inv.bag))
	copy(out, inv.bag)
	return out
}

// CountItem returns the total quantity of itemID across all bag slots.
func (inv *Inventory) CountItem(itemID string) int {
	total := 0
	for _, s := range inv.bag {
		if s.ItemID == itemID {
			total += s.Quantity
		}
	}
	return total
}

// FreeSlots returns the number of empty bag slots.
func (inv *Inventory) FreeSlots() int {
	n := 0
	for _, s := range inv.bag {
		if s.Empty() {
			n++
		}
	}
	return n
}

// AddItem places qty units of itemID into the bag. Stackable items first top
// off existing under-full stacks in bag order, then open new stacks in the
// first empty slots; non-stackable items take one slot per unit.
//
// Postcondition: returns the quantity that could not be placed (0 on full
// success); unknown items place nothing and return qty.
func (inv *Inventory) AddItem(itemID string, qty int, lookup *item.Catalog) int {
	if qty <= 0 {
		return 0
	}
	def, ok := lookup.Item(itemID)
	if !ok {
		return qty
	}
	return addToBag(inv.bag, def, qty)
}

// addToBag performs the placement against the given bag slice in place and
// returns the overflow.
func addToBag(bag []Slot, def *item.ItemDef, qty int) int {
	remaining := qty
	limit := def.StackLimit()

	if def.Stackable {
		for i := range bag {
			if remaining == 0 {
				break
			}
			if bag[i].ItemID == def.ID && bag[i].Quantity < limit {
				take := min(remaining, limit-bag[i].Quantity)
				bag[i].Quantity += take
				remaining -= take
			}
		}
	}

	for i := range bag {
		if remaining == 0 {
			break
		}
		if bag[i].Empty() {
			take := min(remaining, limit)
			bag[i] = Slot{ItemID: def.ID, Quantity: take}
			remaining -= take
		}
	}
	return remaining
}

// RemoveItem consumes up to qty units of itemID from the bag in slot order,
// clearing slots that reach zero.
//
// Postcondition: returns the quantity actually removed, which may be less
// than requested.
func (inv *Inventory) RemoveItem(itemID string, qty int) int {
	if qty <= 0 {
		return 0
	}
	removed := 0
	for i := range inv.bag {
		if removed == qty {
			break
		}
		if inv.bag[i].ItemID != itemID {
			continue
		}
		take := min(qty-removed, inv.bag[i].Quantity)
		inv.bag[i].Quantity -= take
		removed += take
		if inv.bag[i].Quantity == 0 {
			inv.bag[i] = Slot{}
		}
	}
	return removed
}
