package coco

import (
	"fmt"
	"math/rand"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
)

// pageStemPattern matches file names like "paperA_page_0001.png".
var pageStemPattern = regexp.MustCompile(`^(.+?)_page_\d{1,4}\.`)

// DocumentID infers the source document identifier from an image file name.
// It tries the "<doc>_page_NNNN.<ext>" convention first, then the parent
// directory name, then the stem before its first underscore.
func DocumentID(fileName string) string {
	base := filepath.Base(fileName)
	if m := pageStemPattern.FindStringSubmatch(base); m != nil {
		return m[1]
	}
	if dir := filepath.Base(filepath.Dir(fileName)); dir != "." && dir != string(filepath.Separator) {
		return dir
	}
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	if i := strings.Index(stem, "_"); i > 0 {
		return stem[:i]
	}
	return stem
}

// SplitByDocument partitions a dataset into train and validation subsets so
// that no document contributes images to both sides. Documents are shuffled
// with the given seed; at least one document goes to validation.
func SplitByDocument(d *Dataset, valFrac float64, seed int64) (train, val *Dataset, err error) {
	if len(d.Images) == 0 {
		return nil, nil, fmt.Errorf("coco: dataset has no images to split")
	}
	if valFrac < 0 || valFrac > 1 {
		return nil, nil, fmt.Errorf("coco: validation fraction must be in [0,1], got %g", valFrac)
	}

	imagesByDoc := make(map[string][]Image)
	for _, img := range d.Images {
		doc := DocumentID(img.FileName)
		imagesByDoc[doc] = append(imagesByDoc[doc], img)
	}

	docs := make([]string, 0, len(imagesByDoc))
	for doc := range imagesByDoc {
		docs = append(docs, doc)
	}
	sort.Strings(docs) // fixed order before the seeded shuffle

	rng := rand.New(rand.NewSource(seed))
	rng.Shuffle(len(docs), func(i, j int) {
		docs[i], docs[j] = docs[j], docs[i]
	})

	nVal := int(float64(len(docs)) * valFrac)
	if nVal < 1 {
		nVal = 1
	}
	valDocs := docs[:nVal]
	trainDocs := docs[nVal:]

	return d.subset(trainDocs, imagesByDoc), d.subset(valDocs, imagesByDoc), nil
}

// subset builds a dataset containing only the images of the given documents
// and the annotations referencing them.
func (d *Dataset) subset(docs []string, imagesByDoc map[string][]Image) *Dataset {
	out := &Dataset{
		Info:        d.Info,
		Licenses:    d.Licenses,
		Images:      []Image{},
		Annotations: []Annotation{},
		Categories:  d.Categories,
	}
	if out.Licenses == nil {
		out.Licenses = []License{}
	}

	keep := make(map[int]bool)
	for _, doc := range docs {
		for _, img := range imagesByDoc[doc] {
			out.Images = append(out.Images, img)
			keep[img.ID] = true
		}
	}
	sort.Slice(out.Images, func(i, j int) bool { return out.Images[i].ID < out.Images[j].ID })

	for _, ann := range d.Annotations {
		if keep[ann.ImageID] {
			out.Annotations = append(out.Annotations, ann)
		}
	}
	return out
}
