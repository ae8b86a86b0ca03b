package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/AutoScout24/serverless-plugin-aws-alerts/internal/cfn"
	"github.com/AutoScout24/serverless-plugin-aws-alerts/internal/compiler"
	"github.com/AutoScout24/serverless-plugin-aws-alerts/internal/definition"
	"github.com/AutoScout24/serverless-plugin-aws-alerts/internal/project"
)

const (
	exitOK      = 0
	exitCompile = 1
	exitUsage   = 2
)

type options struct {
	project         string
	template        string
	out             string
	stage           string
	format          string
	listDefinitions bool
	requireConfig   bool
	verbose         bool
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	var opts options

	fs := flag.NewFlagSet("alertsc", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.project, "project", "serverless.yml", "serverless project file")
	fs.StringVar(&opts.template, "template", "", "compiled CloudFormation template (JSON); empty starts from a blank template")
	fs.StringVar(&opts.out, "out", "", "output file (default stdout)")
	fs.StringVar(&opts.stage, "stage", "", "stage to compile for (default provider.stage)")
	fs.StringVar(&opts.format, "format", "json", "output format: json or yaml")
	fs.BoolVar(&opts.listDefinitions, "list-definitions", false, "print the alarm definitions and exit")
	fs.BoolVar(&opts.requireConfig, "require-config", false, "fail when the project has no custom.alerts section")
	fs.BoolVar(&opts.verbose, "v", false, "verbose logging")

	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	if opts.format != "json" && opts.format != "yaml" {
		fmt.Fprintf(stderr, "alertsc: FAIL: unknown format %q\n", opts.format)
		return exitUsage
	}

	level := slog.LevelInfo
	if opts.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	p, err := project.Load(opts.project, opts.stage)
	if err != nil {
		fmt.Fprintf(stderr, "alertsc: FAIL: %v\n", err)
		return exitUsage
	}

	if opts.listDefinitions {
		if err := listDefinitions(stdout, p); err != nil {
			fmt.Fprintf(stderr, "alertsc: FAIL: %v\n", err)
			return exitUsage
		}
		return exitOK
	}

	if p.Alerts() == nil && opts.requireConfig {
		fmt.Fprintf(stderr, "alertsc: FAIL: %s has no custom.alerts section\n", opts.project)
		return exitCompile
	}

	tpl, err := readTemplate(opts.template)
	if err != nil {
		fmt.Fprintf(stderr, "alertsc: FAIL: %v\n", err)
		return exitUsage
	}

	c := compiler.New(p, logger)
	result, err := c.Compile(context.Background(), p.Alerts(), p.Stage, tpl)
	if err != nil {
		logger.Error("cannot compile alerts", slog.String("error", err.Error()))
		return exitCompile
	}

	if err := writeTemplate(tpl, opts.out, opts.format, stdout); err != nil {
		fmt.Fprintf(stderr, "alertsc: FAIL: %v\n", err)
		return exitUsage
	}

	logger.Debug("done", slog.String("outcome", string(result.Outcome)))
	return exitOK
}

func readTemplate(path string) (*cfn.Template, error) {
	if path == "" {
		return cfn.NewTemplate(), nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cannot open template: %w", err)
	}
	defer f.Close()

	return cfn.ReadTemplate(f)
}

func writeTemplate(tpl *cfn.Template, path, format string, stdout io.Writer) (err error) {
	w := stdout
	if path != "" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("cannot create output: %w", err)
		}
		defer func() {
			err = errors.Join(err, f.Close())
		}()
		w = f
	}

	if format == "yaml" {
		return tpl.WriteYAML(w)
	}
	return tpl.WriteJSON(w)
}

func listDefinitions(w io.Writer, p *project.Project) error {
	reg := definition.Defaults()
	if cfg := p.Alerts(); cfg != nil {
		reg = definition.BuildRegistry(cfg.Definitions)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tNAMESPACE\tMETRIC\tSTATISTIC\tTHRESHOLD\tPATTERN")
	for _, name := range reg.Names() {
		d := reg[name]
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%g\t%s\n", name, d.Namespace, d.Metric, d.Statistic, d.Threshold, d.Pattern)
	}
	return tw.Flush()
}
