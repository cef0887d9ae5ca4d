package inventory

import (
	"github.com/duskhollow/emberfall/internal/game/item"
)

// EquipProfile carries the character facts needed for equip eligibility.
type EquipProfile struct {
	ClassID            string
	Level              int
	AllowedWeaponTypes []string
	AllowedArmorTypes  []string
}

// EquippedItems returns a snapshot copy of the equip-slot mapping.
func (inv *Inventory) EquippedItems() map[item.EquipSlot]string {
	out := make(map[item.EquipSlot]string, len(inv.equipped))
	for k, v := range inv.equipped {
		out[k] = v
	}
	return out
}

// Equipped returns the item ID in the given slot, or "" when empty.
func (inv *Inventory) Equipped(slot item.EquipSlot) string {
	return inv.equipped[slot]
}

// EquipmentBonuses aggregates the flat stat bonuses of every equipped item.
func (inv *Inventory) EquipmentBonuses(lookup *item.Catalog) item.StatBonuses {
	defs := make([]*item.ItemDef, 0, len(inv.equipped))
	for _, id := range inv.equipped {
		if def, ok := lookup.Item(id); ok {
			defs = append(defs, def)
		}
	}
	return item.SumBonuses(defs)
}

// Equip moves the item at bagIndex into the target equip slot. Two-handed
// weapons force-unequip any off-hand item first; equipping into the off-hand
// while a two-handed weapon is held fails outright; an occupied target slot
// is unequipped back to the bag before the swap.
//
// Postcondition: returns false and leaves all state unchanged on any failure
// (bad index, ineligible item, slot mismatch, bag full for a displaced item).
func (inv *Inventory) Equip(bagIndex int, target item.EquipSlot, profile EquipProfile, lookup *item.Catalog) bool {
	if bagIndex < 0 || bagIndex >= len(inv.bag) {
		return false
	}
	src := inv.bag[bagIndex]
	if src.Empty() {
		return false
	}
	def, ok := lookup.Item(src.ItemID)
	if !ok || def.EquipSlot != target {
		return false
	}
	if !item.CanEquip(def, profile.ClassID, profile.Level, profile.AllowedWeaponTypes, profile.AllowedArmorTypes) {
		return false
	}

	// Off-hand is blocked entirely while a two-handed weapon is held.
	if target == item.SlotOffhand {
		if heldID := inv.equipped[item.SlotWeapon]; heldID != "" {
			if held, ok := lookup.Item(heldID); ok && held.TwoHanded {
				return false
			}
		}
	}

	// Stage every change against copies so failures leave no partial state.
	bag := make([]Slot, len(inv.bag))
	copy(bag, inv.bag)
	equipped := make(map[item.EquipSlot]string, len(inv.equipped))
	for k, v := range inv.equipped {
		equipped[k] = v
	}

	if def.TwoHanded && target == item.SlotWeapon {
		if offID := equipped[item.SlotOffhand]; offID != "" {
			offDef, ok := lookup.Item(offID)
			if !ok || addToBag(bag, offDef, 1) > 0 {
				return false
			}
			delete(equipped, item.SlotOffhand)
		}
	}

	if occupantID := equipped[target]; occupantID != "" {
		occDef, ok := lookup.Item(occupantID)
		if !ok || addToBag(bag, occDef, 1) > 0 {
			return false
		}
		delete(equipped, target)
	}

	bag[bagIndex].Quantity--
	if bag[bagIndex].Quantity <= 0 {
		bag[bagIndex] = Slot{}
	}
	equipped[target] = def.ID

	inv.bag = bag
	inv.equipped = equipped
	return true
}

// Unequip moves the item in the given equip slot back into the bag.
//
// Postcondition: returns false and leaves the item equipped when the slot is
// empty, the item is unknown, or the bag has no room.
func (inv *Inventory) Unequip(slot item.EquipSlot, lookup *item.Catalog) bool {
	id := inv.equipped[slot]
	if id == "" {
		return false
	}
	def, ok := lookup.Item(id)
	if !ok {
		return false
	}

	bag := make([]Slot, len(inv.bag))
	copy(bag, inv.bag)
	if addToBag(bag, def, 1) > 0 {
		return false
	}
	inv.bag = bag
	delete(inv.equipped, slot)
	return true
}
