package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/koskimas/norppa/internal/config"
	"github.com/koskimas/norppa/internal/pg"
)

// Context is passed to every command's Run method.
type Context struct {
	WorkingDir string
	Out        io.Writer
}

type CLI struct {
	Extract ExtractCmd `cmd:"" help:"Run the parser extractors over SQL files and print a YAML report."`
	Query   QueryCmd   `cmd:"" help:"Execute a query with the parser functions registered."`
}

type ExtractCmd struct {
	Config string   `help:"Config file path." default:"norppa.yaml"`
	Files  []string `arg:"" optional:"" name:"file" help:"SQL files or globs. Overrides the config file globs."`
}

func (c *ExtractCmd) Run(ctx *Context) error {
	var extract config.Extract
	globs := c.Files

	cfg, err := config.Read(filepath.Join(ctx.WorkingDir, c.Config))
	if err != nil {
		// A missing config file is fine when files are given on the
		// command line.
		if !errors.Is(err, os.ErrNotExist) || len(globs) == 0 {
			return err
		}
	} else {
		extract = cfg.Extract

		if len(globs) == 0 {
			for _, q := range cfg.Queries {
				globs = append(globs, q.Path)
			}
		}
	}

	if len(globs) == 0 {
		return errors.New("no SQL files to extract from")
	}

	report, err := buildReport(ctx.WorkingDir, globs, extract)
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(report)
	if err != nil {
		return fmt.Errorf(`failed to marshal report: %w`, err)
	}

	_, err = ctx.Out.Write(data)
	return err
}

// Report is the output of the extract command.
type Report struct {
	Files []FileReport `yaml:"files"`
}

type FileReport struct {
	Path          string                            `yaml:"path"`
	Statements    []pg.StatementResult              `yaml:"statements,omitempty"`
	Tables        []pg.TableReferenceResult         `yaml:"tables,omitempty"`
	Where         []pg.WhereConditionResult         `yaml:"where,omitempty"`
	WhereDetailed []pg.DetailedWhereConditionResult `yaml:"whereDetailed,omitempty"`
	Functions     []pg.FunctionResult               `yaml:"functions,omitempty"`
}

func buildReport(wd string, globs []string, extract config.Extract) (*Report, error) {
	report := &Report{Files: make([]FileReport, 0)}

	for _, g := range globs {
		pattern := g
		if !filepath.IsAbs(pattern) {
			pattern = filepath.Join(wd, pattern)
		}

		files, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf(`failed to resolve sql files using glob "%s": %w`, g, err)
		}

		for _, f := range files {
			data, err := os.ReadFile(f)
			if err != nil {
				return nil, fmt.Errorf(`failed to read sql file "%s": %w`, f, err)
			}

			report.Files = append(report.Files, extractFile(f, string(data), extract))
		}
	}

	return report, nil
}

func extractFile(path string, sql string, extract config.Extract) FileReport {
	all := extract.All()
	fr := FileReport{Path: path}

	if all || extract.Statements {
		fr.Statements = pg.Statements(sql)
	}

	if all || extract.Tables {
		fr.Tables = pg.Tables(sql)
	}

	if all || extract.Where {
		fr.Where = pg.WhereConditions(sql)
	}

	if all || extract.WhereDetailed {
		fr.WhereDetailed = pg.WhereConditionsDetailed(sql)
	}

	if all || extract.Functions {
		fr.Functions = pg.FunctionCalls(sql)
	}

	return fr
}
