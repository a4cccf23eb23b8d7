package models

// Illustration is the outcome of one image synthesis run. SketchURL is set
// only when the child uploaded a sketch that seeded the generation.
type Illustration struct {
	ImageURL  string
	SketchURL string
}
