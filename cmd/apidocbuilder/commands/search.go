package commands

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"git.home.luguber.info/inful/apidocbuilder/internal/config"
	"git.home.luguber.info/inful/apidocbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/apidocbuilder/internal/search"
)

// SearchCmd implements the 'search' command.
type SearchCmd struct {
	Query string `arg:"" help:"Symbol name or fragment, e.g. Vec\\map"`
	Limit int    `short:"n" help:"Maximum number of results" default:"20"`
}

func (s *SearchCmd) Run(_ *Global, root *CLI) error {
	cfg, err := config.Load(root.Config)
	if err != nil {
		return err
	}
	if _, err := os.Stat(cfg.Output.SearchDB); err != nil {
		return errors.ConfigError("search index not found; run 'apidocbuilder build' first").
			WithContext("path", cfg.Output.SearchDB).
			Build()
	}

	store, err := search.Open(cfg.Output.SearchDB)
	if err != nil {
		return errors.WrapError(err, errors.CategoryStorage, "open search index").Build()
	}
	defer func() { _ = store.Close() }()

	results, err := store.Search(context.Background(), s.Query, s.Limit)
	if err != nil {
		return errors.WrapError(err, errors.CategoryStorage, "search symbols").Build()
	}
	if len(results) == 0 {
		fmt.Println("no matches")
		return nil
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	for _, r := range results {
		name := r.Name
		if r.ClassName != "" {
			name = r.ClassName + "::" + r.Name
		}
		dep := ""
		if r.Deprecation != "" {
			dep = "deprecated"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", r.Product, r.Kind, name, r.URLPath, dep)
	}
	return tw.Flush()
}
