package main

import (
	"encoding/json"
	"io"

	"github.com/xavierca1/sitm-outreach/internal/content"
	"github.com/xavierca1/sitm-outreach/internal/identity"
)

type appEnv struct {
	catalogPath *string
}

func (e *appEnv) engine() (*content.Engine, error) {
	var (
		cat *content.Catalog
		err error
	)
	if *e.catalogPath == "" {
		cat, err = content.DefaultCatalog()
	} else {
		cat, err = content.LoadCatalog(*e.catalogPath)
	}
	if err != nil {
		return nil, err
	}
	return content.NewEngine(cat, nil)
}

func identities(seed uint64) *identity.Provider {
	if seed == 0 {
		return identity.New()
	}
	return identity.NewSeeded(seed)
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
