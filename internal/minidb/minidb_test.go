package minidb

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/RichardKnop/minidb/internal/pkg/logging"
)

var (
	gen = newDataGen(time.Now().Unix())

	testLogger *zap.Logger
)

func init() {
	logConf := logging.DefaultConfig()

	level := os.Getenv("LOG_LEVEL")
	if level == "" {
		level = "info"
	}

	l, err := logging.ParseLevel(level)
	if err != nil {
		panic(err)
	}
	logConf.Level = zap.NewAtomicLevelAt(l)

	testLogger, err = logConf.Build()
	if err != nil {
		panic(err)
	}
}

type dataGen struct {
	*gofakeit.Faker
}

func newDataGen(seed int64) *dataGen {
	g := dataGen{
		Faker: gofakeit.New(seed),
	}

	return &g
}

func (g *dataGen) Row() Row {
	username := g.Username()
	if len(username) > UsernameSize {
		username = username[:UsernameSize]
	}
	return Row{
		ID:       uint32(g.IntRange(1, 1<<31)),
		Username: username,
		Email:    g.Email(),
	}
}

func (g *dataGen) Rows(number int) []Row {
	// Make sure all rows will have unique ID, this is important in some tests
	idMap := map[uint32]struct{}{}
	rows := make([]Row, 0, number)
	for len(rows) < number {
		aRow := g.Row()
		if _, ok := idMap[aRow.ID]; ok {
			continue
		}
		idMap[aRow.ID] = struct{}{}
		rows = append(rows, aRow)
	}
	return rows
}

// newTestTable opens a table over a temporary database file, the file is
// removed when the test finishes.
func newTestTable(t *testing.T) *Table {
	t.Helper()

	dbFile, err := os.CreateTemp(t.TempDir(), "db")
	require.NoError(t, err)

	aTable, err := Open(context.Background(), testLogger, dbFile)
	require.NoError(t, err)

	return aTable
}

// selectAllRows drains a full table scan into a slice.
func selectAllRows(ctx context.Context, t *testing.T, aTable *Table) []Row {
	t.Helper()

	aResult, err := aTable.Select(ctx, Statement{Kind: Select})
	require.NoError(t, err)

	rows := make([]Row, 0)
	aRow, err := aResult.Rows(ctx)
	for ; err == nil; aRow, err = aResult.Rows(ctx) {
		rows = append(rows, aRow)
	}
	require.ErrorIs(t, err, ErrNoMoreRows)

	return rows
}
