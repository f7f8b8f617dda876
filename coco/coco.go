// Package coco reads, builds, and writes object-detection annotation sets in
// the COCO JSON format consumed by the training framework.
//
// Identifier assignment goes through a Builder, which owns the monotonic
// image and annotation id counters. Parallel producers should either share a
// single Builder behind their merge step or assign ids locally and remap
// deterministically when merging; ids never come from global mutable state.
package coco

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/tsawler/formula/model"
)

// Info describes a dataset.
type Info struct {
	Description string `json:"description"`
	Version     string `json:"version,omitempty"`
	Year        int    `json:"year,omitempty"`
}

// License is a dataset license entry. Emitted as an empty list by default.
type License struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	URL  string `json:"url,omitempty"`
}

// Image is one image record. Annotations reference it by ID.
type Image struct {
	ID       int    `json:"id"`
	FileName string `json:"file_name"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
}

// Annotation is one bounding-box record. BBox is [x, y, width, height] in
// the owning image's own pixel space.
type Annotation struct {
	ID           int         `json:"id"`
	ImageID      int         `json:"image_id"`
	CategoryID   int         `json:"category_id"`
	BBox         [4]float64  `json:"bbox"`
	Area         float64     `json:"area"`
	IsCrowd      int         `json:"iscrowd"`
	Segmentation [][]float64 `json:"segmentation"`
}

// Rect returns the annotation box in corner form.
func (a Annotation) Rect() model.Rect {
	return model.Rect{
		X0: a.BBox[0],
		Y0: a.BBox[1],
		X1: a.BBox[0] + a.BBox[2],
		Y1: a.BBox[1] + a.BBox[3],
	}
}

// Category is one object category.
type Category struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// DefaultCategories returns the equation categories used throughout the
// pipeline: displayed equations and inline expressions.
func DefaultCategories() []Category {
	return []Category{
		{ID: 1, Name: "display"},
		{ID: 2, Name: "inline"},
	}
}

// Dataset is a complete COCO annotation document.
type Dataset struct {
	Info        Info         `json:"info"`
	Licenses    []License    `json:"licenses"`
	Images      []Image      `json:"images"`
	Annotations []Annotation `json:"annotations"`
	Categories  []Category   `json:"categories"`
}

// AnnotationsByImage groups the dataset's annotations by owning image id.
func (d *Dataset) AnnotationsByImage() map[int][]Annotation {
	byImage := make(map[int][]Annotation)
	for _, a := range d.Annotations {
		byImage[a.ImageID] = append(byImage[a.ImageID], a)
	}
	return byImage
}

// CategoryID resolves a category name to its id; falls back to the first
// category when the name is unknown or empty.
func (d *Dataset) CategoryID(name string) int {
	for _, c := range d.Categories {
		if c.Name == name {
			return c.ID
		}
	}
	if len(d.Categories) > 0 {
		return d.Categories[0].ID
	}
	return 1
}

// Load reads a COCO dataset from a JSON file.
func Load(path string) (*Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading annotations: %w", err)
	}
	var d Dataset
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("parsing annotations %s: %w", path, err)
	}
	return &d, nil
}

// WriteFile writes the dataset as pretty-printed JSON, creating parent
// directories as needed.
func (d *Dataset) WriteFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding annotations: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing annotations: %w", err)
	}
	return nil
}

// Builder assembles a dataset, owning the monotonic id counters. Image
// records are deduplicated by file name so annotations from several sources
// can target the same image.
type Builder struct {
	dataset    Dataset
	nextImage  int
	nextAnn    int
	imageByKey map[string]int
}

// NewBuilder creates a builder with the given description and categories.
// Counters start at 1.
func NewBuilder(description string, categories []Category) *Builder {
	return &Builder{
		dataset: Dataset{
			Info:        Info{Description: description, Version: "1.0", Year: time.Now().Year()},
			Licenses:    []License{},
			Images:      []Image{},
			Annotations: []Annotation{},
			Categories:  categories,
		},
		nextImage:  1,
		nextAnn:    1,
		imageByKey: make(map[string]int),
	}
}

// AddImage registers an image and returns its id. A file name seen before
// returns the existing id.
func (b *Builder) AddImage(fileName string, width, height int) int {
	if id, ok := b.imageByKey[fileName]; ok {
		return id
	}
	id := b.nextImage
	b.nextImage++
	b.dataset.Images = append(b.dataset.Images, Image{
		ID:       id,
		FileName: fileName,
		Width:    width,
		Height:   height,
	})
	b.imageByKey[fileName] = id
	return id
}

// ImageID returns the id previously assigned to a file name.
func (b *Builder) ImageID(fileName string) (int, bool) {
	id, ok := b.imageByKey[fileName]
	return id, ok
}

// AddAnnotation adds a bounding box for an image and returns the annotation
// id. Invalid boxes are rejected.
func (b *Builder) AddAnnotation(imageID, categoryID int, box model.Rect) (int, error) {
	if !box.IsValid() {
		return 0, fmt.Errorf("coco: invalid annotation box %+v", box)
	}
	id := b.nextAnn
	b.nextAnn++
	w, h := box.Width(), box.Height()
	b.dataset.Annotations = append(b.dataset.Annotations, Annotation{
		ID:           id,
		ImageID:      imageID,
		CategoryID:   categoryID,
		BBox:         [4]float64{box.X0, box.Y0, w, h},
		Area:         w * h,
		IsCrowd:      0,
		Segmentation: [][]float64{},
	})
	return id, nil
}

// CategoryID resolves a category name against the builder's categories,
// falling back to the first category for unknown names.
func (b *Builder) CategoryID(name string) int {
	return b.dataset.CategoryID(name)
}

// Dataset returns the assembled dataset.
func (b *Builder) Dataset() *Dataset {
	return &b.dataset
}
