// Command coursemark parses Markdown and course documents, rendering them as
// HTML, styled terminal text, or paginated PDF.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jcorbin/coursemark/course"
	"github.com/jcorbin/coursemark/internal/config"
	"github.com/jcorbin/coursemark/internal/logging"
	"github.com/jcorbin/coursemark/internal/socutil"
	"github.com/jcorbin/coursemark/internal/store"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := newRootCmd(&app{}).ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

// app holds the state shared by all subcommands.
type app struct {
	configPath string
	verbose    bool

	cfg config.Config
	log *zap.Logger
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "coursemark",
		Short: "Render Markdown and courses to HTML, terminal text, or PDF",
		Long: `coursemark parses a small Markdown dialect (headings, paragraphs,
blockquotes, fenced code, lists, and bold/italic/code spans) and renders it.

Input files ending in .yaml, .yml, or .json are read as course documents:
a title, a description, and a tree of chapters with Markdown content and
optional base64 images. Other input is read as Markdown.

Settings are read from .coursemark.yaml in the working directory or any
parent, unless --config names a file.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.log != nil {
				_ = a.log.Sync()
			}
		},
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "config file (default: search for "+config.FileName+")")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "verbose output and debug logging")

	root.AddCommand(
		newBlocksCmd(a),
		newDetectCmd(a),
		newHTMLCmd(a),
		newTermCmd(a),
		newPDFCmd(a),
	)
	return root
}

func (a *app) setup() error {
	cfg, path, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	a.cfg = cfg
	if a.log == nil {
		log, err := logging.New(cfg.Log, a.verbose)
		if err != nil {
			return err
		}
		a.log = log
	}
	a.log.Debug("starting",
		zap.String("args", socutil.QuotedArgs(os.Args)),
		zap.String("config", path))
	return nil
}

// input is the source named by an optional FILE argument.
type input struct {
	store.Store
	name string
}

func inputArg(cmd *cobra.Command, args []string) input {
	name := "-"
	if len(args) > 0 && args[0] != "" {
		name = args[0]
	}
	return input{Store: store.For(name, cmd.InOrStdin(), nil), name: name}
}

func (in input) read() (string, error) {
	b, err := store.ReadAll(in.Store)
	if err != nil {
		return "", fmt.Errorf("unable to read %v: %w", in.name, err)
	}
	return string(b), nil
}

// isCourse reports whether the input should be read as a course document.
func (in input) isCourse(forced bool) bool {
	if forced {
		return true
	}
	switch strings.ToLower(filepath.Ext(in.name)) {
	case ".yaml", ".yml", ".json":
		return true
	}
	return false
}

func (in input) course() (*course.Course, error) {
	r, err := in.Open()
	if err != nil {
		return nil, fmt.Errorf("unable to read %v: %w", in.name, err)
	}
	defer r.Close()
	c, err := course.Load(r)
	if err != nil {
		return nil, fmt.Errorf("%v: %w", in.name, err)
	}
	return c, nil
}

// title returns the document title for Markdown input.
func (in input) title(flag string) string {
	if flag != "" {
		return flag
	}
	if in.name == "-" {
		return "Untitled"
	}
	base := filepath.Base(in.name)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// output is the destination named by an -o flag.
type output struct {
	name      string
	overwrite bool
}

func (out *output) flags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&out.name, "output", "o", "-", "output file, - for stdout")
	cmd.Flags().BoolVarP(&out.overwrite, "force", "f", false, "replace an existing output file")
}

func (out *output) write(cmd *cobra.Command, fn func(w io.Writer) error) error {
	s := store.For(out.name, nil, cmd.OutOrStdout())
	if err := store.Write(s, out.overwrite, fn); err != nil {
		return fmt.Errorf("unable to write %v: %w", s, err)
	}
	return nil
}

func (a *app) images(ctx context.Context, c *course.Course) (course.Images, error) {
	return course.DecodeImages(ctx, c, a.cfg.Workers, a.log)
}
