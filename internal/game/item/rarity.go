package item

// Rarity constants for ItemDef.Rarity, lowest to highest.
const (
	RarityCommon    = "common"
	RarityUncommon  = "uncommon"
	RarityRare      = "rare"
	RarityEpic      = "epic"
	RarityLegendary = "legendary"
)

// rarityRank maps each rarity to its rank; higher is rarer.
var rarityRank = map[string]int{
	RarityCommon:    0,
	RarityUncommon:  1,
	RarityRare:      2,
	RarityEpic:      3,
	RarityLegendary: 4,
}

// rarityColors maps each rarity to the hex color the UI renders it with.
var rarityColors = map[string]string{
	RarityCommon:    "#9d9d9d",
	RarityUncommon:  "#1eff00",
	RarityRare:      "#0070dd",
	RarityEpic:      "#a335ee",
	RarityLegendary: "#ff8000",
}

// RarityRank returns the numeric rank for a rarity; unknown rarities rank
// below common.
func RarityRank(rarity string) int {
	if rank, ok := rarityRank[rarity]; ok {
		return rank
	}
	return -1
}

// RarityColor returns the display hex color for a rarity, defaulting to the
// common color for unknown values.
func RarityColor(rarity string) string {
	if color, ok := rarityColors[rarity]; ok {
		return color
	}
	return rarityColors[RarityCommon]
}
