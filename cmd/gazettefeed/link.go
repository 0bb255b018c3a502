package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/guarzo/gazettefeed/modules/linker"
)

var (
	linkKeyword  string
	linkMaxLinks int
	linkDatabase string
)

var linkCmd = &cobra.Command{
	Use:   "link <file>",
	Short: "Insert internal links into a markdown file",
	Long: `Scores the link database against the document, inserts up to
--max-links links and writes the result to stdout. A summary of the
links considered, and the keyword density when --keyword is given,
goes to stderr.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db := linkDatabase
		if db == "" {
			db = cfg.LinkDatabasePath
		}
		return runLink(cmd.OutOrStdout(), cmd.ErrOrStderr(), args[0], db)
	},
}

func init() {
	linkCmd.Flags().StringVar(&linkKeyword, "keyword", "", "primary keyword to report density for")
	linkCmd.Flags().IntVar(&linkMaxLinks, "max-links", linker.DefaultMaxLinks, "maximum links to insert")
	linkCmd.Flags().StringVar(&linkDatabase, "db", "", "link database (JSON or YAML); defaults to LINK_DATABASE_PATH")
}

func runLink(out, summary io.Writer, path, db string) error {
	doc, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read document: %w", err)
	}
	links, err := linker.LoadDatabase(db)
	if err != nil {
		return err
	}

	res, err := linker.InsertLinks(string(doc), links, linkMaxLinks)
	if err != nil {
		return err
	}
	logger.Debug("links inserted", zap.String("file", path), zap.Int("added", res.LinksAdded))

	fmt.Fprint(out, res.Document)

	fmt.Fprintf(summary, "links added: %d\n", res.LinksAdded)
	for _, c := range res.Considered {
		fmt.Fprintf(summary, "  %3d  %s  %s\n", c.Score, c.PrimaryKeyword(), c.URL)
	}
	if linkKeyword != "" {
		d := linker.KeywordDensity(res.Document, linkKeyword)
		fmt.Fprintf(summary, "keyword %q: %d of %d words, %s%% (target %.1f-%.1f%%)\n",
			linkKeyword, d.Count, d.Words, d.Formatted, d.TargetRange[0], d.TargetRange[1])
	}
	return nil
}
