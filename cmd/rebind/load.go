package main

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/rebind-dev/rebind/internal/config"
	"github.com/rebind-dev/rebind/internal/errors"
	"github.com/rebind-dev/rebind/pkg/bind"
	"github.com/rebind-dev/rebind/pkg/dom"
)

// loadConfig loads rebind.json from the given file, or discovers it by
// walking up from the working directory when the path is empty.
func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFile(path)
	}
	return config.LoadFromWorkingDir()
}

// loadDocument reads and parses the configured HTML document.
func loadDocument(cfg *config.Config) (*dom.Node, error) {
	path := cfg.Document
	if !filepath.IsAbs(path) && cfg.Dir() != "" {
		path = filepath.Join(cfg.Dir(), path)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.New(errors.CategoryDocument, "cannot open document").
			WithDetail(path).
			Wrap(err)
	}
	defer f.Close()

	root, err := dom.Parse(f)
	if err != nil {
		return nil, errors.New(errors.CategoryDocument, "cannot parse document").
			WithDetail(path).
			Wrap(err)
	}
	return root, nil
}

// loadGraph reads the configured initial reference graph. Without a
// configured file the graph starts empty.
func loadGraph(cfg *config.Config) (map[string]any, error) {
	if cfg.Graph == "" {
		return map[string]any{}, nil
	}
	path := cfg.Graph
	if !filepath.IsAbs(path) && cfg.Dir() != "" {
		path = filepath.Join(cfg.Dir(), path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.New(errors.CategoryDocument, "cannot read graph").
			WithDetail(path).
			Wrap(err)
	}
	graph := map[string]any{}
	if err := json.Unmarshal(data, &graph); err != nil {
		return nil, errors.New(errors.CategoryDocument, "cannot parse graph").
			WithDetail(path).
			Wrap(err).
			WithSuggestion("the graph file must hold a JSON object")
	}
	return graph, nil
}

// bindConfig maps directive grammar overrides onto the binder defaults.
func bindConfig(cfg *config.Config) *bind.Config {
	bc := bind.DefaultConfig()
	d := cfg.Directives
	if d.AttrSuffix != "" {
		bc.AttrSuffix = d.AttrSuffix
	}
	if d.PropSuffix != "" {
		bc.PropSuffix = d.PropSuffix
	}
	if d.TextAttr != "" {
		bc.TextAttr = d.TextAttr
	}
	if d.RefAttr != "" {
		bc.RefAttr = d.RefAttr
	}
	if d.ListAttr != "" {
		bc.ListAttr = d.ListAttr
	}
	if d.ClosedAttr != "" {
		bc.ClosedAttr = d.ClosedAttr
	}
	if d.PathSep != "" {
		bc.PathSep = d.PathSep
	}
	if d.MultiSep != "" {
		bc.MultiSep = d.MultiSep
	}
	if d.CalcMark != "" {
		bc.CalcMark = d.CalcMark
	}
	return bc
}
