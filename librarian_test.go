package librarian

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/w-h-a/librarian/catalog"
	"github.com/w-h-a/librarian/catalog/memory"
	historymemory "github.com/w-h-a/librarian/conversation/memory"
	"github.com/w-h-a/librarian/embedder/hash"
	"github.com/w-h-a/librarian/generator"
	"github.com/w-h-a/librarian/retrieval"
	"github.com/w-h-a/librarian/tool_handler/books"
)

type titleCaller struct {
	title string
}

func (c *titleCaller) Call(ctx context.Context, system string, messages []generator.Message, tools []generator.Tool) (generator.Reply, error) {
	return generator.Reply{ToolCalls: []generator.ToolCall{{
		Id:        "c1",
		Name:      books.SearchByTitle,
		Arguments: map[string]any{"title": c.title},
	}}}, nil
}

type echoFormatter struct {
	prompt string
}

func (f *echoFormatter) Generate(ctx context.Context, prompt string) (string, error) {
	f.prompt = prompt
	return "Sí, está en Ficción.", nil
}

func TestAskEndToEnd(t *testing.T) {
	ctx := context.Background()

	cat := memory.NewCatalog()
	emb := hash.NewEmbedder()

	book := catalog.Book{
		Title:     "Cien años de soledad",
		Author:    "Gabriel García Márquez",
		Genre:     "Realismo mágico",
		Isbn:      "9780307474728",
		Available: true,
		Shelf:     "Ficción",
	}
	vec, err := emb.Embed(ctx, book.Title+" "+book.Synopsis)
	require.NoError(t, err)
	_, err = cat.Upsert(ctx, book, vec, catalog.ContentHash(book.Title, book.Synopsis))
	require.NoError(t, err)

	engine := retrieval.NewEngine(cat, emb)
	formatter := &echoFormatter{}

	l := New(
		&titleCaller{title: "CIEN AÑOS DE SOLEDAD"},
		formatter,
		historymemory.NewHistory(),
		books.NewToolHandlers(books.WithEngine(engine)),
		0,
	)
	defer l.Close()

	assert.Len(t, l.Tools().ListSpecs(), 4)

	sessionId, answer, err := l.Ask(ctx, "", "¿tienes cien años de soledad?")
	require.NoError(t, err)
	assert.NotEmpty(t, sessionId)
	assert.Equal(t, "Sí, está en Ficción.", answer)
	assert.Contains(t, formatter.prompt, `"titulo":"Cien años de soledad"`)
	assert.Contains(t, formatter.prompt, `"estante":"Ficción"`)

	turns, err := l.Recent(ctx, sessionId)
	require.NoError(t, err)
	assert.Len(t, turns, 2)

	assert.Contains(t, l.ListSessionIds(ctx), sessionId)
	l.End(ctx, sessionId)
	assert.NotContains(t, l.ListSessionIds(ctx), sessionId)
}
