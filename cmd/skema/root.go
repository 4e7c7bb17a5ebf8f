package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/reoring/skema"
	drvgojson "github.com/reoring/skema/source/gojson"
)

// inputFlags are shared by every command that reads a data file.
type inputFlags struct {
	format        string
	dupKeys       bool
	maxDepth      int
	maxBytes      int64
	preserveOrder bool
	floatNums     bool
	goJSON        bool
}

func (f *inputFlags) register(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.StringVarP(&f.format, "format", "f", "", "input format: json, yaml or toml (default: from extension, else json)")
	fl.BoolVar(&f.dupKeys, "reject-duplicate-keys", true, "fail on duplicate object keys")
	fl.IntVar(&f.maxDepth, "max-depth", 0, "maximum nesting depth (0: unlimited)")
	fl.Int64Var(&f.maxBytes, "max-bytes", 0, "maximum input size in bytes (0: unlimited)")
	fl.BoolVar(&f.preserveOrder, "preserve-order", false, "keep object keys in input order")
	fl.BoolVar(&f.floatNums, "float64", false, "decode JSON numbers as float64 instead of json.Number")
	fl.BoolVar(&f.goJSON, "go-json", false, "use the goccy/go-json token driver")
}

func (f *inputFlags) opt() skema.ParseOpt {
	o := skema.ParseOpt{
		MaxDepth:      f.maxDepth,
		MaxBytes:      f.maxBytes,
		PreserveOrder: f.preserveOrder,
	}
	if f.dupKeys {
		o.Strictness.OnDuplicateKey = skema.Error
	}
	return o
}

// read decodes the file named by args (or stdin when args is empty or "-").
func (f *inputFlags) read(ctx context.Context, cmd *cobra.Command, args []string) (any, error) {
	name := "-"
	if len(args) > 0 {
		name = args[0]
	}
	var data []byte
	var err error
	if name == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(name)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	opt := f.opt()
	if opt.MaxBytes > 0 && int64(len(data)) > opt.MaxBytes {
		return nil, fmt.Errorf("read %s: %w", name, skema.ErrMaxBytes)
	}

	format := strings.ToLower(f.format)
	if format == "" {
		format = formatFromExt(name)
	}
	var src skema.Source
	switch format {
	case "json":
		if f.goJSON {
			src = drvgojson.Driver().NewBytes(data)
		} else {
			src = skema.JSONBytes(data)
		}
		if f.floatNums {
			src = skema.WithNumberMode(src, skema.NumberFloat64)
		}
	case "yaml", "yml":
		src = skema.YAMLBytes(data)
	case "toml":
		src = skema.TOMLBytes(data)
	default:
		return nil, fmt.Errorf("unknown format %q", format)
	}
	skema.Logger(ctx).Debug().Str("file", name).Str("format", format).Int("bytes", len(data)).Msg("decoding input")
	return skema.DecodeFrom(ctx, src, opt)
}

func formatFromExt(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
		return "yaml"
	case ".toml":
		return "toml"
	}
	return "json"
}

func newRootCmd() *cobra.Command {
	var verbose bool
	root := &cobra.Command{
		Use:           "skema",
		Short:         "Decode and check JSON, YAML and TOML documents",
		Long:          `skema decodes data files with duplicate-key, depth and size enforcement and checks them against JSON Schema documents.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := zerolog.WarnLevel
			if verbose {
				level = zerolog.DebugLevel
			}
			l := zerolog.New(zerolog.ConsoleWriter{Out: cmd.ErrOrStderr(), NoColor: true}).Level(level).With().Timestamp().Logger()
			cmd.SetContext(skema.WithLogger(cmd.Context(), l))
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logs")
	root.AddCommand(newDecodeCmd(), newCheckCmd())
	return root
}
