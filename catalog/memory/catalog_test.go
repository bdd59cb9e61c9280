package memory

import (
	"testing"

	"github.com/w-h-a/librarian/catalog"
	"github.com/w-h-a/librarian/catalog/catalogtest"
)

func TestMemoryCatalog(t *testing.T) {
	catalogtest.Run(t, func(t *testing.T) catalog.Catalog {
		return NewCatalog()
	})
}
