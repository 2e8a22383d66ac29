package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"lisle/internal/diag"
	"lisle/internal/format"
	"lisle/internal/linestore"
	"lisle/internal/source"
	"lisle/internal/token"
)

const imageExt = ".lisc"

func (a *app) newEncodeCmd() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "encode [flags] file.lis",
		Short: "Write the binary token image of a program",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			res, err := a.load(cmd, path, a.lexOnlyOptions())
			if err != nil {
				return err
			}
			img, err := token.EncodeImage(res.Tokens)
			if err != nil {
				return err
			}
			if output == "" {
				output = strings.TrimSuffix(path, ".lis") + imageExt
			}
			if output == "-" {
				_, err = cmd.OutOrStdout().Write(img)
				return err
			}
			if err := os.WriteFile(output, img, 0o600); err != nil {
				return err
			}
			if !a.opts.quiet {
				fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s (%d lines, %d bytes)\n", output, len(res.Tokens), len(img))
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output path (default: <file>.lisc, - for stdout)")
	return cmd
}

func (a *app) newDecodeCmd() *cobra.Command {
	var indent int
	cmd := &cobra.Command{
		Use:   "decode [flags] file.lisc",
		Short: "Print the source text of a binary token image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			lines, err := token.DecodeImage(data)
			if err != nil {
				if errors.Is(err, token.ErrBadImage) {
					bag := diag.NewBag(1)
					bag.Add(diag.NewError(diag.IOBadImage, 0, source.Span{}, err.Error()).WithPath(args[0]))
					a.printDiagnostics(cmd.ErrOrStderr(), bag, nil)
					return silentExit(cmd, 1)
				}
				return err
			}
			store := linestore.FromTokens(format.Options{IndentWidth: indent}, lines)
			fmt.Fprint(cmd.OutOrStdout(), store.Render())
			return nil
		},
	}
	cmd.Flags().IntVar(&indent, "indent", 4, "spaces per nesting level")
	return cmd
}
