package plugins

import (
	"github.com/rotaops/rota/core/availability"
	"github.com/rotaops/rota/core/journal"
	"github.com/rotaops/rota/core/store"
)

// SourceFactory builds an availability source from a raw configuration map.
// The directory is passed so sources can match calendar events against the
// roster.
type SourceFactory func(name string, conf map[string]any, dir store.Directory) (availability.Source, error)

// JournalFactory builds a decision journal store from a raw configuration map.
type JournalFactory func(name string, conf map[string]any) (journal.Store, error)

var (
	Sources  = map[string]SourceFactory{}
	Journals = map[string]JournalFactory{}
)

func RegisterSource(name string, f SourceFactory)   { Sources[name] = f }
func RegisterJournal(name string, f JournalFactory) { Journals[name] = f }
