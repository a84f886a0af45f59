package main

import (
	"context"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/scott-cotton/cli"

	"github.com/yamlkit/yls/ir"
	"github.com/yamlkit/yls/language"
	"github.com/yamlkit/yls/parse"
)

var (
	errorColor = color.New(color.FgRed, color.Bold)
	warnColor  = color.New(color.FgYellow)
	infoColor  = color.New(color.FgCyan)
	fileColor  = color.New(color.Bold)
)

func (cfg *MainConfig) setupColor() {
	if cfg.NoColor || !isatty.IsTerminal(os.Stdout.Fd()) {
		color.NoColor = true
	}
}

func (cfg *MainConfig) service() (*language.Service, error) {
	svc := language.NewService(fetchSchema)
	settings := language.DefaultSettings()
	if cfg.Schema != "" {
		settings.Schemas = []language.SchemaSetting{{
			URI:       cfg.Schema,
			FileMatch: []string{"*"},
		}}
	}
	settings.IsKubernetes = cfg.Kubernetes
	if err := svc.Configure(settings); err != nil {
		return nil, err
	}
	return svc, nil
}

func runCheck(cfg *CheckConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Check.Parse(cc, args)
	if err != nil {
		return err
	}
	if len(args) == 0 {
		return fmt.Errorf("%w: no input files", cli.ErrUsage)
	}
	cfg.setupColor()
	svc, err := cfg.service()
	if err != nil {
		return err
	}

	total := 0
	for _, path := range args {
		src, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		doc, _ := svc.Parse(src)
		diags := svc.Validate(context.Background(), path, doc)
		for _, d := range diags {
			if cfg.Quiet && d.Severity == ir.SeverityInfo {
				continue
			}
			if d.Severity == ir.SeverityError {
				total++
			}
			printDiagnostic(cc, path, doc, d)
		}
	}
	if total > 0 {
		return fmt.Errorf("%d errors", total)
	}
	return nil
}

func printDiagnostic(cc *cli.Context, path string, doc *parse.Document, d language.Diagnostic) {
	line, col := doc.Pos.LineCol(d.Range.Start)
	label := severityLabel(d.Severity)
	fmt.Fprintf(cc.Out, "%s:%d:%d: %s: %s [%s]\n",
		fileColor.Sprint(path), line+1, col+1, label, d.Message, d.Code)
}

func severityLabel(sev ir.Severity) string {
	switch sev {
	case ir.SeverityError:
		return errorColor.Sprint("error")
	case ir.SeverityWarning:
		return warnColor.Sprint("warning")
	default:
		return infoColor.Sprint("info")
	}
}
