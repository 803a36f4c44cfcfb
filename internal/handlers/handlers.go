package handlers

import (
	"filefinder/internal/database"
	"filefinder/internal/indexer"
	"filefinder/internal/startup"
)

type Handlers struct {
	store   *database.Store
	indexer *indexer.Indexer
	roots   []string
}

func New(store *database.Store, idx *indexer.Indexer, config *startup.Config) *Handlers {
	return &Handlers{
		store:   store,
		indexer: idx,
		roots:   config.Roots,
	}
}
