package era

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
)

// CharacterTable renders the player's affection towards every character
// they have met. label turns a catalog key into display text.
func CharacterTable(p *Player, label func(key string) string) string {
	t := table.NewWriter()
	t.AppendHeader(table.Row{"", label("era.table.character"), label("era.table.affection"), label("era.table.relationship")})

	rows := 0
	for _, c := range Characters {
		aff, met := p.Affection[c.ID]
		if !met {
			continue
		}
		rel := RelationshipFor(aff)
		name := label("era.character." + c.Key)
		if p.IsLover(c.ID) {
			name += " 💕"
		}
		t.AppendRow(table.Row{c.Emoji, name, aff, fmt.Sprintf("%s %s", rel.Emoji(), label("era.relationship."+rel.Key()))})
		rows++
	}
	if rows == 0 {
		return label("era.table.empty")
	}

	t.SetStyle(table.StyleLight)
	return t.Render()
}
