package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/RichardKnop/minidb/internal/minidb"
	"github.com/RichardKnop/minidb/internal/minidb/minidbtest"
	"github.com/RichardKnop/minidb/internal/pkg/logging"
)

func main() {
	var (
		fileName = flag.String("file", "db", "database file to insert rows into")
		numRows  = flag.Int("rows", 100, "number of random rows to insert")
		seed     = flag.Int64("seed", time.Now().Unix(), "random data seed")
	)
	flag.Parse()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	level := os.Getenv("LOG_LEVEL")
	if level == "" {
		level = "info"
	}
	logger, err := logging.New(level)
	if err != nil {
		panic(err)
	}
	defer logger.Sync() // flushes buffer, if any

	dbFile, err := os.OpenFile(*fileName, os.O_RDWR|os.O_CREATE, 0600)
	if err != nil {
		panic(err)
	}

	aTable, err := minidb.Open(ctx, logger, dbFile)
	if err != nil {
		panic(err)
	}

	gen := minidbtest.NewDataGen(*seed)
	inserted := 0
	for _, aRow := range gen.Rows(*numRows) {
		_, err := aTable.Insert(ctx, minidb.Statement{Kind: minidb.Insert, Row: aRow})
		if err != nil {
			fmt.Printf("insert %d: %s\n", aRow.ID, err)
			continue
		}
		inserted++
	}

	if err := aTable.Close(ctx); err != nil {
		panic(err)
	}

	fmt.Printf("inserted %d rows into %s\n", inserted, *fileName)
}
