package commands

import (
	"fmt"

	"git.home.luguber.info/inful/apidocbuilder/internal/config"
	"git.home.luguber.info/inful/apidocbuilder/internal/definition"
	"git.home.luguber.info/inful/apidocbuilder/internal/discovery"
)

// DiscoverCmd implements the 'discover' command.
type DiscoverCmd struct {
	Product string `short:"p" help:"Only list this product (hack, hsl, hsl-experimental)"`
	Count   bool   `help:"Print only the number of files per product"`
}

func (d *DiscoverCmd) Run(_ *Global, root *CLI) error {
	cfg, err := config.Load(root.Config)
	if err != nil {
		return err
	}

	var only definition.Product
	if d.Product != "" {
		if only, err = definition.ParseProduct(d.Product); err != nil {
			return err
		}
	}

	for _, p := range definition.Products() {
		pc, ok := cfg.Product(p)
		if !ok || (only != "" && p != only) {
			continue
		}
		files, err := discovery.ForProduct(pc, cfg.Extensions)
		if err != nil {
			return err
		}
		fmt.Printf("%s: %d files\n", p, len(files))
		if d.Count {
			continue
		}
		for _, f := range files {
			fmt.Printf("  %s\n", f)
		}
	}
	return nil
}
