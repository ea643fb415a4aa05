package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jcorbin/coursemark/internal/socutil"
	"github.com/jcorbin/coursemark/render"
	"github.com/jcorbin/coursemark/scandown"
)

func newBlocksCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "blocks [FILE]",
		Short: "Dump the parsed blocks and spans of a Markdown document",
		Long: `Prints one numbered entry per parsed block, followed by the inline spans
of each of its lines. With --verbose, entries also carry source line ranges
and block text.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := inputArg(cmd, args).read()
			if err != nil {
				return err
			}
			return dumpBlocks(cmd.OutOrStdout(), src, a.verbose)
		},
	}
}

func dumpBlocks(out io.Writer, src string, verbose bool) error {
	blocks := scandown.Parse(src)
	i := 0
	return socutil.WriteLines(out, func(w io.Writer) bool {
		if i >= len(blocks) {
			return false
		}
		block := blocks[i]
		i++

		width, _ := fmt.Fprintf(w, "%v. ", i)
		if verbose {
			fmt.Fprintf(w, "%+v\n", block)
		} else {
			fmt.Fprintf(w, "%v\n", block)
		}

		item := socutil.PrefixWriter(strings.Repeat(" ", width), w)
		defer item.Close()
		for _, spans := range render.BlockSpans(block) {
			for j, span := range spans {
				if j > 0 {
					io.WriteString(item, " ")
				}
				fmt.Fprintf(item, "%+v", span)
			}
			io.WriteString(item, "\n")
		}
		return true
	})
}

func newDetectCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "detect [FILE]",
		Short: "Report whether a document would be rendered as Markdown or plain text",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := inputArg(cmd, args).read()
			if err != nil {
				return err
			}
			kind := "plain"
			if scandown.IsMarkdown(src) {
				kind = "markdown"
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), kind)
			return err
		},
	}
}
