package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/scott-cotton/cli"

	"github.com/yamlkit/yls/language"
)

func runFmt(cfg *FmtConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Fmt.Parse(cc, args)
	if err != nil {
		return err
	}
	if len(args) == 0 {
		return fmt.Errorf("%w: no input files", cli.ErrUsage)
	}
	svc, err := cfg.service()
	if err != nil {
		return err
	}

	for _, path := range args {
		src, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		doc, perr := svc.Parse(src)
		if perr != nil {
			return fmt.Errorf("%s: %w", path, perr)
		}
		edits, err := svc.Format(doc)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		out := applyEdits(string(src), edits)
		if cfg.Write {
			if out != string(src) {
				if err := os.WriteFile(path, []byte(out), 0644); err != nil {
					return err
				}
			}
			continue
		}
		fmt.Fprint(cc.Out, out)
	}
	return nil
}

// applyEdits assumes ascending, non-overlapping edits, which Format
// guarantees.
func applyEdits(src string, edits []language.TextEdit) string {
	var b strings.Builder
	last := 0
	for _, e := range edits {
		b.WriteString(src[last:e.Range.Start])
		b.WriteString(e.NewText)
		last = e.Range.End
	}
	b.WriteString(src[last:])
	return b.String()
}
