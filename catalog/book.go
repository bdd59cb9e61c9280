package catalog

// Book is one catalog row. The JSON tags are the wire shape handed to the
// agent and, ultimately, to the user-facing shell.
type Book struct {
	Id        int64  `json:"-"`
	Title     string `json:"titulo"`
	Author    string `json:"autor"`
	Genre     string `json:"genero"`
	Synopsis  string `json:"synopsis"`
	Isbn      string `json:"-"`
	Available bool   `json:"disponibilidad"`
	Shelf     string `json:"estante"`
}

// Neighbor is a nearest-neighbor hit. Distance is cosine distance.
type Neighbor struct {
	Id       int64
	Distance float64
}

func Ids(neighbors []Neighbor) []int64 {
	ids := make([]int64, 0, len(neighbors))
	for _, n := range neighbors {
		ids = append(ids, n.Id)
	}
	return ids
}
