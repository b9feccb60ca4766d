package main

import (
	"github.com/spf13/pflag"

	"github.com/gnana997/tsxify/pkg/config"
	"github.com/gnana997/tsxify/pkg/scanner"
)

// globalFlags holds the flags shared by every command.
type globalFlags struct {
	configPath string
	logLevel   string
	logFormat  string
	workers    int

	level      string
	preserve   bool
	docs       bool
	customName bool
	prefix     string
	suffix     string

	include []string
	exclude []string
}

func (g *globalFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&g.configPath, "config", config.DefaultPath, "project configuration file")
	fs.StringVar(&g.logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	fs.StringVar(&g.logFormat, "log-format", "text", "log format (text, json)")
	fs.IntVar(&g.workers, "workers", 0, "parallel conversions (0 = based on CPU count)")

	fs.StringVarP(&g.level, "level", "l", "standard", "conversion level (basic, standard, advanced)")
	fs.BoolVar(&g.preserve, "preserve-formatting", false, "keep the original layout, only insert declarations and annotations")
	fs.BoolVar(&g.docs, "doc-comments", false, "copy component doc comments onto generated declarations")
	fs.BoolVar(&g.customName, "custom-naming", false, "name declarations <prefix><Component><suffix>")
	fs.StringVar(&g.prefix, "prefix", "", "declaration name prefix (with --custom-naming)")
	fs.StringVar(&g.suffix, "suffix", config.DefaultSuffix, "declaration name suffix (with --custom-naming)")

	fs.StringSliceVar(&g.include, "include", nil, "glob patterns of files to convert in directories")
	fs.StringSliceVar(&g.exclude, "exclude", nil, "glob patterns of files to skip in directories")
}

// resolveConversion starts from the project file (or the defaults) and
// applies every flag the user set explicitly.
func resolveConversion(fs *pflag.FlagSet, g *globalFlags, project *config.File) (config.ConversionConfig, error) {
	cfg := config.Default()
	if project != nil {
		cfg = project.Conversion
	}

	if fs.Changed("level") {
		level, err := config.ParseLevel(g.level)
		if err != nil {
			return cfg, err
		}
		cfg.Level = level
	}
	if fs.Changed("preserve-formatting") {
		cfg.PreserveFormatting = g.preserve
	}
	if fs.Changed("doc-comments") {
		cfg.IncludeDocComments = g.docs
	}
	if fs.Changed("custom-naming") {
		cfg.CustomDeclarationNaming = g.customName
	}
	if fs.Changed("prefix") {
		cfg.DeclarationPrefix = g.prefix
	}
	if fs.Changed("suffix") {
		cfg.DeclarationSuffix = g.suffix
	}

	return cfg, cfg.Validate()
}

// resolveScan layers project and flag patterns over the default globs.
func resolveScan(g *globalFlags, project *config.File) scanner.ScanConfig {
	cfg := scanner.DefaultScanConfig()
	if project != nil {
		cfg = cfg.WithOverrides(project.Include, project.Exclude)
	}
	return cfg.WithOverrides(g.include, g.exclude)
}
