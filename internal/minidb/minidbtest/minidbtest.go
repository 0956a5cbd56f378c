package minidbtest

import (
	"github.com/brianvoe/gofakeit/v6"

	"github.com/RichardKnop/minidb/internal/minidb"
)

type DataGen struct {
	*gofakeit.Faker
}

func NewDataGen(seed int64) *DataGen {
	g := DataGen{
		Faker: gofakeit.New(seed),
	}

	return &g
}

// Rows generates a number of rows with unique IDs.
func (g *DataGen) Rows(number int) []minidb.Row {
	rows := make([]minidb.Row, 0, number)
	seen := make(map[uint32]struct{}, number)
	for len(rows) < number {
		aRow := g.Row()
		if _, ok := seen[aRow.ID]; ok {
			continue
		}
		seen[aRow.ID] = struct{}{}
		rows = append(rows, aRow)
	}
	return rows
}

func (g *DataGen) Row() minidb.Row {
	username := g.Username()
	if len(username) > minidb.UsernameSize {
		username = username[:minidb.UsernameSize]
	}
	return minidb.Row{
		ID:       uint32(g.IntRange(1, 1<<31)),
		Username: username,
		Email:    g.Email(),
	}
}
