package importer

import (
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

const DefaultShelf = "Novedad"

// ShelfRule maps books whose genre contains Genre to Shelf. Rules are tried
// in order and the first hit wins.
type ShelfRule struct {
	Genre string `yaml:"genre"`
	Shelf string `yaml:"shelf"`
}

func DefaultShelves() []ShelfRule {
	return []ShelfRule{
		{Genre: "infantiles", Shelf: "Infantil"},
		{Genre: "infantiles de 3 a 6 años", Shelf: "Infantil"},
		{Genre: "juveniles", Shelf: "Infantil"},
		{Genre: "autoayuda", Shelf: "General"},
		{Genre: "crecimiento personal", Shelf: "General"},
		{Genre: "filosofía", Shelf: "General"},
		{Genre: "familia", Shelf: "General"},
		{Genre: "literatura", Shelf: "Ficción"},
		{Genre: "literatura histórica", Shelf: "Ficción"},
		{Genre: "literatura policíaca", Shelf: "Ficción"},
		{Genre: "biografía novelada", Shelf: "Ficción"},
		{Genre: "libros para todos", Shelf: "Bestsellers"},
		{Genre: "novela", Shelf: "Ficción"},
	}
}

// ReadShelves decodes a YAML list of {genre, shelf} rules.
func ReadShelves(r io.Reader) ([]ShelfRule, error) {
	var rules []ShelfRule
	if err := yaml.NewDecoder(r).Decode(&rules); err != nil {
		return nil, fmt.Errorf("shelf rules: %w", err)
	}

	out := make([]ShelfRule, 0, len(rules))
	for i, rule := range rules {
		rule.Genre = strings.ToLower(strings.TrimSpace(rule.Genre))
		rule.Shelf = strings.TrimSpace(rule.Shelf)
		if len(rule.Genre) == 0 || len(rule.Shelf) == 0 {
			return nil, fmt.Errorf("shelf rule %d: genre and shelf are required", i)
		}
		out = append(out, rule)
	}

	return out, nil
}

func LoadShelves(path string) ([]ShelfRule, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return ReadShelves(f)
}

func assignShelf(rules []ShelfRule, genre string) string {
	lower := strings.ToLower(genre)
	for _, rule := range rules {
		if strings.Contains(lower, rule.Genre) {
			return rule.Shelf
		}
	}
	return DefaultShelf
}
