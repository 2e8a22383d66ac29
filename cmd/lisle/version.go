package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"lisle/internal/version"
)

const versionTagline = "one line at a time"

type versionPayload struct {
	Tool    string `json:"tool"`
	Tagline string `json:"tagline"`
	version.Info
}

func (a *app) newVersionCmd() *cobra.Command {
	var (
		format string
		full   bool
	)
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show lisle build information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			switch strings.ToLower(format) {
			case "json":
				return renderVersionJSON(cmd.OutOrStdout())
			case "pretty":
				renderVersionPretty(cmd.OutOrStdout(), full)
				return nil
			default:
				return fmt.Errorf("unsupported format %q (must be pretty or json)", format)
			}
		},
	}
	cmd.Flags().StringVar(&format, "format", "pretty", "output format (pretty|json)")
	cmd.Flags().BoolVar(&full, "full", false, "show commit, build date and toolchain")
	return cmd
}

func renderVersionPretty(w io.Writer, full bool) {
	if full {
		fmt.Fprint(w, version.Full())
		return
	}
	fmt.Fprintf(w, "lisle %s (%s)\n", version.Pretty(), versionTagline)
}

func renderVersionJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(versionPayload{Tool: "lisle", Tagline: versionTagline, Info: version.Current()})
}
