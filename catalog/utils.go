package catalog

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"math"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
)

// Fold returns the case-folded form of s. Casers are not safe for concurrent
// use, so one is built per call.
func Fold(s string) string {
	return cases.Fold().String(s)
}

// ContainsFold reports whether substr is within s under Unicode case folding.
func ContainsFold(s, substr string) bool {
	return strings.Contains(Fold(s), Fold(substr))
}

// SplitGenres splits a compound genre label on commas.
func SplitGenres(label string) []string {
	var out []string
	for _, g := range strings.Split(label, ",") {
		if g = strings.TrimSpace(g); len(g) > 0 {
			out = append(out, g)
		}
	}
	return out
}

// AuthorWords splits an author query into whitespace-separated words,
// dropping punctuation so "ALLENDE, ISABEL" and "Isabel Allende" agree.
func AuthorWords(author string) []string {
	return strings.FieldsFunc(author, func(r rune) bool {
		return unicode.IsSpace(r) || r == ',' || r == ';'
	})
}

func ContentHash(title, synopsis string) string {
	sum := sha256.Sum256([]byte(title + "\n" + synopsis))
	return hex.EncodeToString(sum[:])
}

// Fingerprint is the change marker stored with a book: the hash of its
// embedding text, ':', then a hash over every stored column.
func Fingerprint(book Book) string {
	row := strings.Join([]string{
		book.Title,
		book.Author,
		book.Genre,
		book.Synopsis,
		book.Isbn,
		fmt.Sprint(book.Available),
		book.Shelf,
	}, "\x1f")
	sum := sha256.Sum256([]byte(row))
	return ContentHash(book.Title, book.Synopsis) + ":" + hex.EncodeToString(sum[:])
}

// SameEmbedding reports whether fingerprint was taken over the same
// embedding text as book.
func SameEmbedding(fingerprint string, book Book) bool {
	return strings.HasPrefix(fingerprint, ContentHash(book.Title, book.Synopsis)+":")
}

func EncodeVector(vec []float32) []byte {
	buf := &bytes.Buffer{}
	if err := binary.Write(buf, binary.LittleEndian, vec); err != nil {
		return nil
	}
	return buf.Bytes()
}

func DecodeVector(blob []byte) ([]float32, error) {
	if len(blob)%4 != 0 {
		return nil, fmt.Errorf("vector blob length %d not multiple of 4", len(blob))
	}
	out := make([]float32, len(blob)/4)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(blob[i*4:]))
	}
	return out, nil
}

func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 || len(b) == 0 {
		return 0.0
	}

	var dotProduct, normA, normB float64
	for i := range a {
		dotProduct += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0.0
	}

	return dotProduct / (math.Sqrt(normA) * math.Sqrt(normB))
}

// CosineDistance is 1 - cosine similarity, so 0 is identical and 2 is opposite.
func CosineDistance(a, b []float32) float64 {
	return 1 - CosineSimilarity(a, b)
}

// Intersect keeps the neighbors whose id is in allowed, in neighbor order.
func Intersect(neighbors []Neighbor, allowed []int64) []Neighbor {
	set := make(map[int64]struct{}, len(allowed))
	for _, id := range allowed {
		set[id] = struct{}{}
	}
	out := make([]Neighbor, 0, len(neighbors))
	for _, n := range neighbors {
		if _, ok := set[n.Id]; ok {
			out = append(out, n)
		}
	}
	return out
}

// OrderByIds reorders books to follow ids. Ids without a book are skipped.
func OrderByIds(books []Book, ids []int64) []Book {
	byId := make(map[int64]Book, len(books))
	for _, b := range books {
		byId[b.Id] = b
	}
	out := make([]Book, 0, len(ids))
	for _, id := range ids {
		if b, ok := byId[id]; ok {
			out = append(out, b)
		}
	}
	return out
}
