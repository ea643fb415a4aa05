package main

import (
	"fmt"
	"io"
	"io/ioutil"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/net/html"

	"github.com/jcorbin/coursemark/render"
	"github.com/jcorbin/coursemark/render/pdf"
	"github.com/jcorbin/coursemark/render/screen"
	"github.com/jcorbin/coursemark/render/term"
)

func newHTMLCmd(a *app) *cobra.Command {
	var (
		out      output
		page     bool
		title    string
		asCourse bool
	)
	cmd := &cobra.Command{
		Use:   "html [FILE]",
		Short: "Render a document as an HTML fragment or page",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := inputArg(cmd, args)
			var (
				root *html.Node
				name = in.title(title)
			)
			if in.isCourse(asCourse) {
				c, err := in.course()
				if err != nil {
					return err
				}
				images, err := a.images(cmd.Context(), c)
				if err != nil {
					return err
				}
				if root, err = screen.RenderCourse(c, images); err != nil {
					return err
				}
				if title == "" {
					name = c.Title
				}
			} else {
				src, err := in.read()
				if err != nil {
					return err
				}
				root = screen.Render(src)
			}
			if page {
				root = screen.Page(name, root)
			}
			return out.write(cmd, func(w io.Writer) error {
				if err := screen.WriteHTML(w, root); err != nil {
					return err
				}
				_, err := io.WriteString(w, "\n")
				return err
			})
		},
	}
	out.flags(cmd)
	cmd.Flags().BoolVar(&page, "page", false, "wrap the output in a complete HTML document")
	cmd.Flags().StringVar(&title, "title", "", "page title (default: course title or file name)")
	cmd.Flags().BoolVar(&asCourse, "course", false, "read input as a course document")
	return cmd
}

func newTermCmd(a *app) *cobra.Command {
	var (
		width    int
		asCourse bool
	)
	cmd := &cobra.Command{
		Use:   "term [FILE]",
		Short: "Render a document as styled terminal text",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := inputArg(cmd, args)
			if width < 1 {
				width = a.cfg.Term.Width
			}
			r := term.New(cmd.OutOrStdout(), width)
			if in.isCourse(asCourse) {
				c, err := in.course()
				if err != nil {
					return err
				}
				images, err := a.images(cmd.Context(), c)
				if err != nil {
					return err
				}
				return render.Course(r, c, images)
			}
			src, err := in.read()
			if err != nil {
				return err
			}
			return render.Markdown(r, src)
		},
	}
	cmd.Flags().IntVarP(&width, "width", "w", 0, "wrap width in columns (default from config)")
	cmd.Flags().BoolVar(&asCourse, "course", false, "read input as a course document")
	return cmd
}

func newPDFCmd(a *app) *cobra.Command {
	var (
		out      output
		title    string
		asCourse bool
		dryRun   bool
	)
	cmd := &cobra.Command{
		Use:   "pdf [FILE]",
		Short: "Export a document as a paginated PDF",
		Long: `Exports Markdown or a course document as PDF. Course chapters each start
a new page; chapter images that cannot be decoded are drawn as placeholders.
Page geometry and typography come from the pdf section of the config.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := inputArg(cmd, args)
			id := uuid.New()
			log := a.log.With(zap.Stringer("export", id), zap.String("input", in.name))
			opts := []pdf.Option{
				pdf.WithConfig(a.cfg.PDF),
				pdf.WithLogger(log),
				pdf.WithWorkers(a.cfg.Workers),
			}

			var export func(w io.Writer) (pdf.Stats, error)
			if in.isCourse(asCourse) {
				c, err := in.course()
				if err != nil {
					return err
				}
				if title != "" {
					c.Title = title
				}
				export = func(w io.Writer) (pdf.Stats, error) {
					return pdf.Export(cmd.Context(), w, c, opts...)
				}
			} else {
				src, err := in.read()
				if err != nil {
					return err
				}
				export = func(w io.Writer) (pdf.Stats, error) {
					return pdf.ExportMarkdown(w, in.title(title), src, opts...)
				}
			}

			var stats pdf.Stats
			write := func(w io.Writer) (err error) {
				stats, err = export(w)
				return err
			}
			dest := out.name
			if dryRun {
				dest = "nowhere"
				if err := write(ioutil.Discard); err != nil {
					return err
				}
			} else if err := out.write(cmd, write); err != nil {
				return err
			}

			log.Info("exported",
				zap.Int("pages", stats.Pages),
				zap.Int64("bytes", stats.Bytes),
				zap.String("output", dest))
			if dest == "-" || dest == "" {
				dest = "stdout"
			}
			_, err := fmt.Fprintf(cmd.ErrOrStderr(), "%v: %v %v, %v to %v\n",
				in.name, stats.Pages, pluralPages(stats.Pages),
				humanize.Bytes(uint64(stats.Bytes)), dest)
			return err
		},
	}
	out.flags(cmd)
	cmd.Flags().StringVar(&title, "title", "", "document title (default: course title or file name)")
	cmd.Flags().BoolVar(&asCourse, "course", false, "read input as a course document")
	cmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "lay out and report without writing")
	return cmd
}

func pluralPages(n int) string {
	if n == 1 {
		return "page"
	}
	return "pages"
}
