package hash

import (
	"context"
	"hash/fnv"
	"math"
	"strings"
	"unicode"

	"github.com/w-h-a/librarian/catalog"
	"github.com/w-h-a/librarian/embedder"
)

const (
	DefaultDimension = 384
)

// hashEmbedder is a deterministic, model-free embedder. Words and character
// trigrams are hashed into signed buckets, so texts that share vocabulary land
// close together. It needs no download, which makes it the offline and test
// provider.
type hashEmbedder struct {
	options embedder.Options
	dim     int
}

func (e *hashEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	vec := make([]float32, e.dim)

	folded := catalog.Fold(text)
	words := strings.FieldsFunc(folded, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})

	for _, w := range words {
		e.add(vec, "w:"+w, 0.6)
		runes := []rune(" " + w + " ")
		for i := 0; i+3 <= len(runes); i++ {
			e.add(vec, "t:"+string(runes[i:i+3]), 0.4)
		}
	}

	normalize(vec)

	return vec, nil
}

func (e *hashEmbedder) add(vec []float32, feature string, weight float32) {
	h := fnv.New64a()
	h.Write([]byte(feature))
	sum := h.Sum64()

	idx := int(sum % uint64(e.dim))
	sign := float32(1)
	if (sum>>63)&1 == 1 {
		sign = -1
	}

	vec[idx] += sign * weight
}

func normalize(vec []float32) {
	var mag float64
	for _, v := range vec {
		mag += float64(v) * float64(v)
	}
	if mag == 0 {
		return
	}
	inv := float32(1 / math.Sqrt(mag))
	for i := range vec {
		vec[i] *= inv
	}
}

func NewEmbedder(opts ...embedder.Option) embedder.Embedder {
	options := embedder.NewOptions(opts...)

	dim := options.Dimension
	if dim <= 0 {
		dim = DefaultDimension
	}

	return &hashEmbedder{
		options: options,
		dim:     dim,
	}
}
