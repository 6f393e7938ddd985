package plugins

import (
	"context"
	"fmt"
	"time"

	"github.com/rotaops/rota/core/availability"
	corefactory "github.com/rotaops/rota/core/factory"
	"github.com/rotaops/rota/core/journal"
	"github.com/rotaops/rota/core/model"
	"github.com/rotaops/rota/core/store"
	"github.com/rotaops/rota/infra/calendar"
)

// journalConf covers the file-backed journal variants.
type journalConf struct {
	Path       string `json:"path"`
	MaxSizeMB  int    `json:"max_size_mb"`
	MaxBackups int    `json:"max_backups"`
	MaxAgeDays int    `json:"max_age_days"`
}

// staticConf is a fixed out-of-office table, keyed by engineer email.
type staticConf struct {
	Intervals map[string][]struct {
		Start string `json:"start"`
		End   string `json:"end"`
	} `json:"intervals"`
}

func init() {
	RegisterSource("none", func(string, map[string]any, store.Directory) (availability.Source, error) {
		return nil, nil
	})
	RegisterSource("google", newGoogleSource)
	RegisterSource("static", newStaticSource)

	RegisterJournal("none", func(string, map[string]any) (journal.Store, error) {
		return journal.NopStore{}, nil
	})
	RegisterJournal("jsonl", func(_ string, conf map[string]any) (journal.Store, error) {
		var jc journalConf
		if err := corefactory.Decode(conf, &jc); err != nil {
			return nil, err
		}
		return journal.NewJSONLStore(jc.Path)
	})
	RegisterJournal("jsonl-rotating", func(_ string, conf map[string]any) (journal.Store, error) {
		var jc journalConf
		if err := corefactory.Decode(conf, &jc); err != nil {
			return nil, err
		}
		return journal.NewRotatingJSONLStore(jc.Path, jc.MaxSizeMB, jc.MaxBackups, jc.MaxAgeDays)
	})
	RegisterJournal("sqlite", func(_ string, conf map[string]any) (journal.Store, error) {
		var jc journalConf
		if err := corefactory.Decode(conf, &jc); err != nil {
			return nil, err
		}
		return journal.NewSQLiteStore(jc.Path)
	})
}

func newGoogleSource(name string, conf map[string]any, dir store.Directory) (availability.Source, error) {
	var cfg calendar.Config
	if err := corefactory.Decode(conf, &cfg); err != nil {
		return nil, fmt.Errorf("source %s: %w", name, err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	engineers, err := dir.Engineers(ctx)
	if err != nil {
		return nil, fmt.Errorf("source %s: directory: %w", name, err)
	}
	// The service client refreshes tokens for the process lifetime, so it
	// must not inherit the bounded directory-fetch context.
	return calendar.NewGoogleSource(context.Background(), cfg, engineers)
}

func newStaticSource(name string, conf map[string]any, _ store.Directory) (availability.Source, error) {
	var sc staticConf
	if err := corefactory.Decode(conf, &sc); err != nil {
		return nil, fmt.Errorf("source %s: %w", name, err)
	}
	src := availability.StaticSource{}
	for email, spans := range sc.Intervals {
		for _, sp := range spans {
			start, err := model.ParseDate(sp.Start)
			if err != nil {
				return nil, fmt.Errorf("source %s: %s: %w", name, email, err)
			}
			end, err := model.ParseDate(sp.End)
			if err != nil {
				return nil, fmt.Errorf("source %s: %s: %w", name, email, err)
			}
			src[email] = append(src[email], availability.Interval{Start: start, End: end})
		}
	}
	return src, nil
}
