package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/scott-cotton/cli"

	"github.com/yamlkit/yls/language"
	"github.com/yamlkit/yls/parse"
)

func runOutline(cfg *OutlineConfig, cc *cli.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: no input files", cli.ErrUsage)
	}
	for _, path := range args {
		src, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		doc, err := parse.Parse(src)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		if len(args) > 1 {
			fmt.Fprintf(cc.Out, "%s:\n", path)
		}
		printSymbols(cc, language.Symbols(doc), 0)
	}
	return nil
}

func printSymbols(cc *cli.Context, syms []language.Symbol, depth int) {
	indent := strings.Repeat("  ", depth)
	for _, sym := range syms {
		if sym.Detail != "" {
			fmt.Fprintf(cc.Out, "%s%s: %s\n", indent, sym.Name, sym.Detail)
		} else {
			fmt.Fprintf(cc.Out, "%s%s (%s)\n", indent, sym.Name, strings.ToLower(sym.Kind.String()))
		}
		printSymbols(cc, sym.Children, depth+1)
	}
}
