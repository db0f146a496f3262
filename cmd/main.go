package main

import (
	"log"
	"os"

	"github.com/alecthomas/kong"

	"github.com/koskimas/norppa/internal/cmd"
)

func main() {
	wd, err := os.Getwd()
	if err != nil {
		log.Fatal("failed to determine working directory")
	}

	var cli cmd.CLI
	k := kong.Parse(&cli,
		kong.Name("norppa"),
		kong.Description("SQL parser introspection as table and scalar functions."),
	)

	err = k.Run(&cmd.Context{
		WorkingDir: wd,
		Out:        os.Stdout,
	})

	if err != nil {
		log.Fatal(err.Error())
	}
}
