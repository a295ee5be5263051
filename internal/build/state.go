package build

import (
	"git.home.luguber.info/inful/apidocbuilder/internal/config"
	"git.home.luguber.info/inful/apidocbuilder/internal/definition"
	"git.home.luguber.info/inful/apidocbuilder/internal/emit"
	"git.home.luguber.info/inful/apidocbuilder/internal/incremental"
	"git.home.luguber.info/inful/apidocbuilder/internal/metrics"
	"git.home.luguber.info/inful/apidocbuilder/internal/navindex"
	"git.home.luguber.info/inful/apidocbuilder/internal/xref"
)

// State is the in-memory data of one run, handed from stage to stage.
// Nothing in it outlives the run.
type State struct {
	Config   *config.Config
	Report   *BuildReport
	Force    bool
	Recorder metrics.Recorder

	// Products lists the configured products in build order.
	Products []definition.Product

	Fingerprint incremental.Fingerprint
	// Skip is set by the gate when the persisted outputs are current.
	Skip bool

	Sources   map[definition.Product][]string
	Parsed    map[definition.Product][]definition.Documentable
	Merged    map[definition.Product][]definition.Documentable
	Index     *xref.Index
	Nav       navindex.NavigationIndex
	Documents []emit.Document
}

func newState(cfg *config.Config, report *BuildReport, rec metrics.Recorder, force bool) *State {
	st := &State{
		Config:   cfg,
		Report:   report,
		Force:    force,
		Recorder: rec,
		Sources:  make(map[definition.Product][]string),
		Parsed:   make(map[definition.Product][]definition.Documentable),
		Merged:   make(map[definition.Product][]definition.Documentable),
		Nav:      make(navindex.NavigationIndex),
	}
	for _, p := range definition.Products() {
		if _, ok := cfg.Product(p); ok {
			st.Products = append(st.Products, p)
		}
	}
	return st
}
