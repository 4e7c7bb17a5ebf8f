package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	jschema "github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/spf13/cobra"
)

var errCheckFailed = errors.New("document does not match schema")

func newCheckCmd() *cobra.Command {
	var in inputFlags
	var schemaFile string
	cmd := &cobra.Command{
		Use:   "check --schema schema.json [file]",
		Short: "Check a document against a JSON Schema",
		Long:  `Decodes a JSON, YAML or TOML document and validates it against a JSON Schema document. Every violation is printed as "<pointer>: <message>".`,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sch, err := compileSchema(schemaFile)
			if err != nil {
				return err
			}
			in.preserveOrder = false
			v, err := in.read(cmd.Context(), cmd, args)
			if err != nil {
				return err
			}
			err = sch.Validate(v)
			var ve *jschema.ValidationError
			if errors.As(err, &ve) {
				printLeaves(cmd.OutOrStdout(), ve)
				return errCheckFailed
			}
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "ok")
			return nil
		},
	}
	in.register(cmd)
	cmd.Flags().StringVarP(&schemaFile, "schema", "s", "", "JSON Schema document")
	_ = cmd.MarkFlagRequired("schema")
	return cmd
}

func compileSchema(name string) (*jschema.Schema, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, fmt.Errorf("open schema: %w", err)
	}
	defer f.Close()
	abs, err := filepath.Abs(name)
	if err != nil {
		return nil, err
	}
	url := "file://" + filepath.ToSlash(abs)
	c := jschema.NewCompiler()
	if err := c.AddResource(url, f); err != nil {
		return nil, fmt.Errorf("load schema: %w", err)
	}
	sch, err := c.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return sch, nil
}

func printLeaves(w io.Writer, ve *jschema.ValidationError) {
	if len(ve.Causes) == 0 {
		loc := ve.InstanceLocation
		if loc == "" {
			loc = "/"
		}
		fmt.Fprintf(w, "%s: %s\n", loc, ve.Message)
		return
	}
	for _, c := range ve.Causes {
		printLeaves(w, c)
	}
}
