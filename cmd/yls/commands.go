package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/scott-cotton/cli"
)

type MainConfig struct {
	Schema     string `cli:"name=schema desc='schema URI applied to all inputs'"`
	Kubernetes bool   `cli:"name=kubernetes aliases=k8s desc='enable kubernetes content-based association'"`
	NoColor    bool   `cli:"name=no-color desc='disable colored output'"`

	Main *cli.Command
}

func MainCommand() *cli.Command {
	cfg := &MainConfig{}
	opts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	return cli.NewCommandAt(&cfg.Main, "yls").
		WithSynopsis("yls [opts] command [opts] [files]").
		WithDescription("yls validates and formats YAML documents against JSON Schemas.").
		WithOpts(opts...).
		WithRun(func(cc *cli.Context, args []string) error {
			return ylsMain(cfg, cc, args)
		}).
		WithSubs(
			CheckCommand(cfg),
			FmtCommand(cfg),
			OutlineCommand(cfg))
}

func ylsMain(cfg *MainConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Main.Parse(cc, args)
	if err != nil {
		return err
	}
	if len(args) == 0 {
		return cli.ErrNoCommandProvided
	}
	sub := cfg.Main.FindSub(cc, args[0])
	if sub == nil {
		return fmt.Errorf("%w: %q not found", cli.ErrNoSuchCommand, args[0])
	}
	err = sub.Run(cc, args[1:])
	if errors.Is(err, cli.ErrUsage) {
		sub.Usage(cc, err)
		os.Exit(sub.Exit(cc, err))
	}
	return err
}

func CheckCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &CheckConfig{MainConfig: mainCfg}
	opts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	cmd := cli.NewCommand("check").
		WithAliases("c", "lint").
		WithSynopsis("check [-q] files...").
		WithDescription("Validate YAML files against their associated schemas.").
		WithOpts(opts...).
		WithRun(func(cc *cli.Context, args []string) error {
			return runCheck(cfg, cc, args)
		})
	cfg.Check = cmd
	return cmd
}

type CheckConfig struct {
	*MainConfig
	Quiet bool `cli:"name=q aliases=quiet desc='suppress informational diagnostics'"`

	Check *cli.Command
}

func FmtCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &FmtConfig{MainConfig: mainCfg}
	opts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	cmd := cli.NewCommand("fmt").
		WithAliases("f", "format").
		WithSynopsis("fmt [-w] files...").
		WithDescription("Reformat YAML files, printing the result or rewriting in place.").
		WithOpts(opts...).
		WithRun(func(cc *cli.Context, args []string) error {
			return runFmt(cfg, cc, args)
		})
	cfg.Fmt = cmd
	return cmd
}

type FmtConfig struct {
	*MainConfig
	Write bool `cli:"name=w aliases=write desc='rewrite files in place'"`

	Fmt *cli.Command
}

func OutlineCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &OutlineConfig{MainConfig: mainCfg}
	cmd := cli.NewCommand("outline").
		WithAliases("o", "symbols").
		WithSynopsis("outline files...").
		WithDescription("Print the document symbol outline of YAML files.").
		WithRun(func(cc *cli.Context, args []string) error {
			return runOutline(cfg, cc, args)
		})
	cfg.Outline = cmd
	return cmd
}

type OutlineConfig struct {
	*MainConfig
	Outline *cli.Command
}
