package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/RichardKnop/minidb/internal/minidb"
	"github.com/RichardKnop/minidb/internal/parser"
	"github.com/RichardKnop/minidb/internal/pkg/logging"
)

const cliName = "minidb"

func printPrompt() {
	fmt.Print(cliName, "> ")
}

type metaCommand int

const (
	Unknown metaCommand = iota + 1
	Help
	Exit
	Btree
	Constants
)

func isMetaCommand(inputBuffer string) bool {
	return len(inputBuffer) > 0 && inputBuffer[:1] == "."
}

func doMetaCommand(inputBuffer string) metaCommand {
	switch inputBuffer {
	case "help":
		return Help
	case "exit":
		return Exit
	case "btree":
		return Btree
	case "constants":
		return Constants
	default:
		return Unknown
	}
}

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Must supply a database filename.")
		os.Exit(1)
	}

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

	dbFile, err := os.OpenFile(os.Args[1], os.O_RDWR|os.O_CREATE, 0600)
	if err != nil {
		fmt.Printf("Unable to open file: %s\n", err)
		os.Exit(1)
	}

	aTable, err := minidb.Open(ctx, logger, dbFile)
	if err != nil {
		fmt.Printf("Error opening database: %s\n", err)
		os.Exit(1)
	}

	aParser := parser.New()

	reader := bufio.NewScanner(os.Stdin)
	printPrompt()

	// REPL (Read-eval-print loop) start
	for reader.Scan() {
		inputBuffer := strings.TrimSpace(reader.Text())

		if isMetaCommand(inputBuffer) {
			switch doMetaCommand(inputBuffer[1:]) {
			case Help:
				fmt.Println(".help       - Show available commands")
				fmt.Println(".exit       - Flushes all pages and closes program")
				fmt.Println(".btree      - Print the B-tree structure")
				fmt.Println(".constants  - Print page layout constants")
			case Exit:
				if err := aTable.Close(ctx); err != nil {
					fmt.Printf("Error closing database: %s\n", err)
					os.Exit(1)
				}
				os.Exit(0)
			case Btree:
				fmt.Println("Tree:")
				if err := aTable.PrintTree(ctx, os.Stdout); err != nil {
					fmt.Printf("Error printing tree: %s\n", err)
				}
			case Constants:
				minidb.PrintConstants(os.Stdout)
			case Unknown:
				fmt.Printf("Unrecognized command '%s'\n", inputBuffer)
			}
			printPrompt()
			continue
		}

		stmt, err := aParser.Parse(ctx, inputBuffer)
		if err != nil {
			fmt.Println(err)
			printPrompt()
			continue
		}

		executeStatement(ctx, aTable, stmt)
		printPrompt()
	}

	// EOF on stdin, flush before exiting
	fmt.Println()
	if err := aTable.Close(ctx); err != nil {
		fmt.Printf("Error closing database: %s\n", err)
		os.Exit(1)
	}
}

func executeStatement(ctx context.Context, aTable *minidb.Table, stmt minidb.Statement) {
	aResult, err := aTable.ExecuteStatement(ctx, stmt)
	if err != nil {
		if errors.Is(err, minidb.ErrDuplicateKey) {
			fmt.Println("Error: Duplicate key.")
		} else if errors.Is(err, minidb.ErrMaxPagesReached) {
			fmt.Println("Error: Table full.")
			os.Exit(1)
		} else {
			fmt.Printf("Error executing statement: %s\n", err)
		}
		return
	}

	if stmt.Kind == minidb.Select {
		aRow, err := aResult.Rows(ctx)
		for ; err == nil; aRow, err = aResult.Rows(ctx) {
			fmt.Printf("(%d, %s, %s)\n", aRow.ID, aRow.Username, aRow.Email)
		}
		if !errors.Is(err, minidb.ErrNoMoreRows) {
			fmt.Printf("Error fetching rows: %s\n", err)
			return
		}
	}

	fmt.Println("Executed.")
}
