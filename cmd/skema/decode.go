package main

import (
	j "github.com/goccy/go-json"
	"github.com/spf13/cobra"
)

func newDecodeCmd() *cobra.Command {
	var in inputFlags
	var compact bool
	cmd := &cobra.Command{
		Use:   "decode [file]",
		Short: "Decode a document and print it as JSON",
		Long:  `Decodes a JSON, YAML or TOML document under the enforcement flags and writes the normalized value as JSON. Reads stdin when file is omitted or "-".`,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := in.read(cmd.Context(), cmd, args)
			if err != nil {
				return err
			}
			var out []byte
			if compact {
				out, err = j.Marshal(v)
			} else {
				out, err = j.MarshalIndent(v, "", "  ")
			}
			if err != nil {
				return err
			}
			out = append(out, '\n')
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}
	in.register(cmd)
	cmd.Flags().BoolVarP(&compact, "compact", "c", false, "print without indentation")
	return cmd
}
