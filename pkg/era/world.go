package era

// Location is a place on the map. Display names and descriptions live in
// the locale catalogs under era.location.<key>.
type Location int

const (
	HakureiShrine Location = iota
	ScarletManor
	HumanVillage
	MagicForest
	MoriyaShrine
	Eientei
	Underground
	Netherworld
)

var locationKeys = [...]string{
	"hakurei_shrine",
	"scarlet_manor",
	"human_village",
	"magic_forest",
	"moriya_shrine",
	"eientei",
	"underground",
	"netherworld",
}

var locationEmoji = [...]string{"⛩️", "🏰", "🏘️", "🌲", "🏔️", "🏥", "🕳️", "👻"}

// AllLocations in map order.
var AllLocations = []Location{
	HakureiShrine, ScarletManor, HumanVillage, MagicForest,
	MoriyaShrine, Eientei, Underground, Netherworld,
}

func (l Location) Valid() bool { return l >= HakureiShrine && l <= Netherworld }

func (l Location) Key() string {
	if !l.Valid() {
		return "unknown"
	}
	return locationKeys[l]
}

func (l Location) Emoji() string {
	if !l.Valid() {
		return "❔"
	}
	return locationEmoji[l]
}

// ParseLocation is the inverse of Key.
func ParseLocation(key string) (Location, bool) {
	for i, k := range locationKeys {
		if k == key {
			return Location(i), true
		}
	}
	return 0, false
}

// Connections are one-way: the list is where you can walk to from a place.
var Connections = map[Location][]Location{
	HakureiShrine: {HumanVillage, MagicForest},
	HumanVillage:  {HakureiShrine, ScarletManor, MagicForest},
	ScarletManor:  {HumanVillage},
	MagicForest:   {HakureiShrine, HumanVillage, MoriyaShrine},
	MoriyaShrine:  {MagicForest},
	Eientei:       {HumanVillage},
	Underground:   {MoriyaShrine},
	Netherworld:   {HakureiShrine},
}

func Connected(from, to Location) bool {
	for _, l := range Connections[from] {
		if l == to {
			return true
		}
	}
	return false
}

// Character is someone the player can meet. Names live in the catalogs
// under era.character.<key>.
type Character struct {
	ID    int
	Key   string
	Emoji string
	Homes []Location
}

var Characters = []Character{
	{ID: 1, Key: "reimu", Emoji: "🎀", Homes: []Location{HakureiShrine}},
	{ID: 11, Key: "marisa", Emoji: "⭐", Homes: []Location{MagicForest, HakureiShrine}},
	{ID: 15, Key: "sakuya", Emoji: "🔪", Homes: []Location{ScarletManor}},
	{ID: 16, Key: "remilia", Emoji: "🦇", Homes: []Location{ScarletManor}},
	{ID: 50, Key: "flandre", Emoji: "💎", Homes: []Location{ScarletManor}},
	{ID: 26, Key: "yukari", Emoji: "💜", Homes: []Location{HakureiShrine, Netherworld}},
	{ID: 23, Key: "youmu", Emoji: "⚔️", Homes: []Location{Netherworld}},
	{ID: 31, Key: "sanae", Emoji: "🐍", Homes: []Location{MoriyaShrine}},
	{ID: 38, Key: "koishi", Emoji: "💚", Homes: []Location{Underground}},
	{ID: 54, Key: "patchouli", Emoji: "📚", Homes: []Location{ScarletManor}},
}

func CharacterByID(id int) (Character, bool) {
	for _, c := range Characters {
		if c.ID == id {
			return c, true
		}
	}
	return Character{}, false
}

// CharactersAt lists who can be met at l.
func CharactersAt(l Location) []Character {
	var out []Character
	for _, c := range Characters {
		for _, home := range c.Homes {
			if home == l {
				out = append(out, c)
				break
			}
		}
	}
	return out
}
