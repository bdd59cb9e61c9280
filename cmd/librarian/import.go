package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/w-h-a/librarian/importer"
)

type importCmd struct {
	CSV     string `help:"Catalog CSV file" required:"" type:"existingfile"`
	Shelves string `help:"YAML genre to shelf rules replacing the defaults" default:"" type:"path"`
	Prune   bool   `help:"Delete books whose ISBN is not in the CSV"`
	Watch   bool   `help:"Keep running and re-import whenever the CSV changes"`

	StoreFlags    `embed:""`
	EmbedderFlags `embed:""`
}

func (c *importCmd) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cat := newCatalog(c.StoreFlags)
	defer cat.Close()

	emb, err := newEmbedder(ctx, c.EmbedderFlags)
	if err != nil {
		return err
	}

	opts := []importer.Option{
		importer.WithPrune(c.Prune),
	}

	if len(c.Shelves) > 0 {
		rules, err := importer.LoadShelves(c.Shelves)
		if err != nil {
			return err
		}
		opts = append(opts, importer.WithShelves(rules))
	}

	imp := importer.NewImporter(cat, emb, opts...)

	if _, err := imp.ImportFile(ctx, c.CSV); err != nil {
		return err
	}

	if !c.Watch {
		return nil
	}

	return imp.Watch(ctx, c.CSV)
}
