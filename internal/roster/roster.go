// Package roster holds the fixed pool of draftable resonators and the
// sequence-level scoring used by the equilibration engine.
package roster

// Resonator describes one draftable unit. Draft state refers to resonators by
// display name; the remaining fields exist for clients and for roster-level
// validation.
type Resonator struct {
	Name    string   `json:"name"`
	Rarity  int      `json:"rarity"`
	Limited bool     `json:"isLimited"`
	Element []string `json:"element"`
	Weapon  string   `json:"weapon"`
}

var catalog = []Resonator{
	{Name: "Jiyan", Rarity: 5, Limited: true, Element: []string{"Aero"}, Weapon: "Broadblade"},
	{Name: "Lingyang", Rarity: 5, Element: []string{"Glacio"}, Weapon: "Gauntlets"},
	{Name: "Rover", Rarity: 5, Element: []string{"Havoc", "Aero", "Spectro"}, Weapon: "Sword"},
	{Name: "Yangyang", Rarity: 4, Element: []string{"Aero"}, Weapon: "Sword"},
	{Name: "Chixia", Rarity: 4, Element: []string{"Fusion"}, Weapon: "Pistols"},
	{Name: "Baizhi", Rarity: 4, Element: []string{"Glacio"}, Weapon: "Rectifier"},
	{Name: "Sanhua", Rarity: 4, Element: []string{"Glacio"}, Weapon: "Sword"},
	{Name: "Yuanwu", Rarity: 4, Element: []string{"Electro"}, Weapon: "Gauntlets"},
	{Name: "Aalto", Rarity: 4, Element: []string{"Aero"}, Weapon: "Pistols"},
	{Name: "Danjin", Rarity: 4, Element: []string{"Havoc"}, Weapon: "Sword"},
	{Name: "Mortefi", Rarity: 4, Element: []string{"Fusion"}, Weapon: "Pistols"},
	{Name: "Taoqi", Rarity: 4, Element: []string{"Havoc"}, Weapon: "Broadblade"},
	{Name: "Calcharo", Rarity: 5, Element: []string{"Electro"}, Weapon: "Broadblade"},
	{Name: "Encore", Rarity: 5, Element: []string{"Fusion"}, Weapon: "Rectifier"},
	{Name: "Jianxin", Rarity: 5, Element: []string{"Aero"}, Weapon: "Gauntlets"},
	{Name: "Verina", Rarity: 5, Element: []string{"Spectro"}, Weapon: "Rectifier"},
	{Name: "Yinlin", Rarity: 5, Limited: true, Element: []string{"Electro"}, Weapon: "Rectifier"},
	{Name: "Jinhsi", Rarity: 5, Limited: true, Element: []string{"Spectro"}, Weapon: "Broadblade"},
	{Name: "Changli", Rarity: 5, Limited: true, Element: []string{"Fusion"}, Weapon: "Sword"},
	{Name: "Zhezhi", Rarity: 5, Limited: true, Element: []string{"Glacio"}, Weapon: "Rectifier"},
	{Name: "Xiangli Yao", Rarity: 5, Limited: true, Element: []string{"Electro"}, Weapon: "Gauntlets"},
	{Name: "The Shorekeeper", Rarity: 5, Limited: true, Element: []string{"Spectro"}, Weapon: "Rectifier"},
	{Name: "Youhu", Rarity: 4, Element: []string{"Glacio"}, Weapon: "Gauntlets"},
	{Name: "Camellya", Rarity: 5, Limited: true, Element: []string{"Havoc"}, Weapon: "Sword"},
	{Name: "Lumi", Rarity: 4, Element: []string{"Electro"}, Weapon: "Broadblade"},
	{Name: "Carlotta", Rarity: 5, Limited: true, Element: []string{"Glacio"}, Weapon: "Pistols"},
	{Name: "Roccia", Rarity: 5, Limited: true, Element: []string{"Havoc"}, Weapon: "Broadblade"},
	{Name: "Brant", Rarity: 5, Limited: true, Element: []string{"Fusion"}, Weapon: "Sword"},
	{Name: "Cantarella", Rarity: 5, Limited: true, Element: []string{"Havoc"}, Weapon: "Rectifier"},
	{Name: "Phoebe", Rarity: 5, Limited: true, Element: []string{"Spectro"}, Weapon: "Rectifier"},
	{Name: "Zani", Rarity: 5, Limited: true, Element: []string{"Spectro"}, Weapon: "Broadblade"},
	{Name: "Ciaconna", Rarity: 5, Limited: true, Element: []string{"Aero"}, Weapon: "Pistols"},
}

var byName = func() map[string]Resonator {
	m := make(map[string]Resonator, len(catalog))
	for _, r := range catalog {
		m[r.Name] = r
	}
	return m
}()

// Names returns the full draftable pool in catalog order. The slice is fresh
// on every call; lobbies store it as their initial availableResonators set.
func Names() []string {
	out := make([]string, len(catalog))
	for i, r := range catalog {
		out[i] = r.Name
	}
	return out
}

// Size is the number of draftable resonators.
func Size() int { return len(catalog) }

// Known reports whether name is part of the catalog.
func Known(name string) bool {
	_, ok := byName[name]
	return ok
}

// Get looks up a resonator by display name.
func Get(name string) (Resonator, bool) {
	r, ok := byName[name]
	return r, ok
}
