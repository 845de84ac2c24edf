package assets

import (
	"testing"

	"deadlock-tracker/internal/api"
)

func TestBuildHeroTable(t *testing.T) {
	rows := []api.RawAsset{
		{
			"id":   float64(1),
			"name": "Abrams",
			"abilities": []interface{}{
				map[string]interface{}{"id": float64(11), "name": "Siphon Life"},
				map[string]interface{}{"ability_id": float64(12), "class_name": "shoulder_charge"},
				map[string]interface{}{"name": "no id, skipped"},
			},
			"images": map[string]interface{}{"icon": "/heroes/abrams.png"},
		},
		{"hero_id": float64(2), "localized_name": "Bebop"},
		{"name": "missing id, dropped"},
		{"id": float64(-3), "name": "negative id, dropped"},
	}

	table := buildHeroTable(rows, testBaseURL)

	if len(table) != 2 {
		t.Fatalf("table size = %d, want 2", len(table))
	}
	abrams := table[1]
	if abrams.Name != "Abrams" {
		t.Errorf("hero 1 name = %q", abrams.Name)
	}
	if len(abrams.Abilities) != 2 {
		t.Errorf("hero 1 abilities = %d, want 2", len(abrams.Abilities))
	}
	if abrams.Abilities[11] != "Siphon Life" {
		t.Errorf("ability 11 = %q", abrams.Abilities[11])
	}
	if abrams.Abilities[12] != "shoulder_charge" {
		t.Errorf("ability 12 = %q, want class_name fallback", abrams.Abilities[12])
	}
	if abrams.IconURL == nil || *abrams.IconURL != testBaseURL+"/heroes/abrams.png" {
		t.Errorf("hero 1 icon = %v", abrams.IconURL)
	}
	if table[2].Name != "Bebop" {
		t.Errorf("hero 2 name = %q, want localized_name fallback", table[2].Name)
	}
}

func TestBuildItemTable(t *testing.T) {
	rows := []api.RawAsset{
		{"id": float64(100), "name": "Basic Magazine", "cost": float64(500), "tier": float64(1)},
		{"item_id": float64(200), "display_name": "Improved Cooldown", "shop_cost": float64(3000)},
		{"id": float64(300), "name": "Costless"},
		{"name": "no id"},
	}

	table := buildItemTable(rows, testBaseURL)

	if len(table) != 3 {
		t.Fatalf("table size = %d, want 3", len(table))
	}
	if table[100].Tier != 1 || table[100].Cost != 500 {
		t.Errorf("item 100 = tier %d cost %d", table[100].Tier, table[100].Cost)
	}
	// Tier omitted upstream is inferred from cost.
	if table[200].Tier != 3 {
		t.Errorf("item 200 tier = %d, want 3 inferred from cost 3000", table[200].Tier)
	}
	if table[300].Tier != 1 || table[300].Cost != 0 {
		t.Errorf("item 300 = tier %d cost %d, want tier 1 cost 0", table[300].Tier, table[300].Cost)
	}
}

func TestBuildRankTable(t *testing.T) {
	rows := []api.RawAsset{
		{"badge_level": float64(87), "name": "Phantom I", "images": map[string]interface{}{"badge": "/ranks/phantom1.webp"}},
		{"rank": float64(90), "name": "Phantom IV"},
		{"name": "no level"},
	}

	table := buildRankTable(rows, testBaseURL)

	if len(table) != 2 {
		t.Fatalf("table size = %d, want 2", len(table))
	}
	if table[87].Name != "Phantom I" {
		t.Errorf("badge 87 name = %q", table[87].Name)
	}
	if table[87].IconURL == nil {
		t.Error("badge 87 icon missing")
	}
	if table[90].BadgeLevel != 90 {
		t.Errorf("badge 90 level = %d", table[90].BadgeLevel)
	}
}

func TestInferTierFromCost(t *testing.T) {
	cases := []struct {
		cost int
		want int
	}{
		{0, 1}, {500, 1}, {1199, 1},
		{1200, 2}, {2999, 2},
		{3000, 3}, {5999, 3},
		{6000, 4}, {9000, 4},
	}
	for _, tc := range cases {
		if got := InferTierFromCost(tc.cost); got != tc.want {
			t.Errorf("InferTierFromCost(%d) = %d, want %d", tc.cost, got, tc.want)
		}
	}
}

func TestCatalogHelpers(t *testing.T) {
	catalog := &Catalog{
		HeroesByID: map[int]HeroRecord{1: {ID: 1, Name: "Abrams"}},
		ItemsByID:  map[int]ItemRecord{100: {ID: 100, Name: "Basic Magazine"}},
	}

	if got := catalog.HeroName(1); got != "Abrams" {
		t.Errorf("HeroName(1) = %q", got)
	}
	if got := catalog.HeroName(999); got != "Hero 999" {
		t.Errorf("HeroName(999) = %q, want placeholder", got)
	}
	if got := catalog.ItemName(100); got != "Basic Magazine" {
		t.Errorf("ItemName(100) = %q", got)
	}
	if got := catalog.ItemName(999); got != "Item 999" {
		t.Errorf("ItemName(999) = %q, want placeholder", got)
	}
}

func TestCatalogClone(t *testing.T) {
	icon := "/heroes/abrams.png"
	original := &Catalog{
		HeroesByID:        map[int]HeroRecord{1: {ID: 1, Name: "Abrams", Abilities: map[int]string{11: "Siphon Life"}, IconURL: &icon}},
		ItemsByID:         map[int]ItemRecord{},
		RanksByBadgeLevel: map[int]RankRecord{},
	}

	clone := original.Clone()
	clone.HeroesByID[1] = HeroRecord{ID: 1, Name: "Changed"}

	if original.HeroesByID[1].Name != "Abrams" {
		t.Error("mutating the clone leaked into the original")
	}

	clone2 := original.Clone()
	clone2.HeroesByID[1].Abilities[11] = "Changed"
	if original.HeroesByID[1].Abilities[11] != "Siphon Life" {
		t.Error("ability maps shared between clone and original")
	}
}
