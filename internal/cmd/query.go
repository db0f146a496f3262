package cmd

import (
	"fmt"

	"github.com/koskimas/norppa/internal/sqlite"
)

type QueryCmd struct {
	SQL      string `arg:"" name:"sql" help:"Query to execute."`
	Database string `help:"Database file. Defaults to an in-memory database." default:":memory:"`
	Format   string `help:"Output format." enum:"table,json" default:"table"`
}

func (c *QueryCmd) Run(ctx *Context) error {
	db, err := sqlite.Open(c.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	rows, err := db.Query(c.SQL)
	if err != nil {
		return fmt.Errorf(`failed to execute query: %w`, err)
	}
	defer rows.Close()

	return renderRows(ctx.Out, rows, c.Format)
}
