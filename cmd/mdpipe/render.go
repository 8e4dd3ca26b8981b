package main

import (
	"fmt"
	"html/template"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var renderCmd = &cobra.Command{
	Use:   "render [files...]",
	Short: "Renders Markdown files to HTML",
	Long: `Renders each file and prints the HTML to stdout in argument order.
With no files, or with "-", the document is read from stdin.

With --out every input is written to <out>/<name>.html instead. Files are
rendered concurrently, up to --jobs at a time.`,
	RunE: runRender,
}

func init() {
	rootCmd.AddCommand(renderCmd)

	renderCmd.Flags().StringP("out", "o", "", "output directory (one .html file per input)")
	renderCmd.Flags().Int("jobs", runtime.NumCPU(), "number of files rendered concurrently")
}

func runRender(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	renderer, err := newRenderer(cfg.Render, logger)
	if err != nil {
		return err
	}

	outDir, _ := cmd.Flags().GetString("out")
	jobs, _ := cmd.Flags().GetInt("jobs")

	if len(args) == 0 || (len(args) == 1 && args[0] == "-") {
		src, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("read stdin: %w", err)
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), renderer.Render(string(src)))
		return err
	}

	if outDir != "" {
		if err := os.MkdirAll(outDir, 0o755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}

	results := make([]template.HTML, len(args))
	g, ctx := errgroup.WithContext(cmd.Context())
	g.SetLimit(max(jobs, 1))
	for i, path := range args {
		i, path := i, path
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			src, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("read %q: %w", path, err)
			}
			html := renderer.Render(string(src))

			if outDir == "" {
				results[i] = html
				return nil
			}
			dst := filepath.Join(outDir, outputName(path))
			if err := os.WriteFile(dst, []byte(html), 0o644); err != nil {
				return fmt.Errorf("write %q: %w", dst, err)
			}
			logger.Info("rendered file", "src", path, "dst", dst)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	if outDir != "" {
		return nil
	}
	w := cmd.OutOrStdout()
	for _, html := range results {
		if _, err := fmt.Fprintln(w, html); err != nil {
			return err
		}
	}
	return nil
}

// outputName maps notes/today.md to today.html.
func outputName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base)) + ".html"
}
