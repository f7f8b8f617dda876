package coco

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tsawler/formula/model"
)

func TestBuilderCountersStartAtOne(t *testing.T) {
	b := NewBuilder("test", DefaultCategories())

	imgID := b.AddImage("page_0000.png", 800, 1200)
	assert.Equal(t, 1, imgID)

	annID, err := b.AddAnnotation(imgID, 1, model.Rect{X0: 10, Y0: 20, X1: 110, Y1: 70})
	require.NoError(t, err)
	assert.Equal(t, 1, annID)

	annID, err = b.AddAnnotation(imgID, 1, model.Rect{X0: 5, Y0: 5, X1: 15, Y1: 15})
	require.NoError(t, err)
	assert.Equal(t, 2, annID)
}

func TestBuilderDeduplicatesImagesByFileName(t *testing.T) {
	b := NewBuilder("test", DefaultCategories())

	first := b.AddImage("page_0000.png", 800, 1200)
	second := b.AddImage("page_0000.png", 800, 1200)
	third := b.AddImage("page_0001.png", 800, 1200)

	assert.Equal(t, first, second)
	assert.NotEqual(t, first, third)
	assert.Len(t, b.Dataset().Images, 2)

	id, ok := b.ImageID("page_0000.png")
	assert.True(t, ok)
	assert.Equal(t, first, id)
}

func TestAddAnnotationComputesBBoxAndArea(t *testing.T) {
	b := NewBuilder("test", DefaultCategories())
	imgID := b.AddImage("p.png", 800, 1200)

	_, err := b.AddAnnotation(imgID, 1, model.Rect{X0: 100, Y0: 200, X1: 200, Y1: 300})
	require.NoError(t, err)

	ann := b.Dataset().Annotations[0]
	assert.Equal(t, [4]float64{100, 200, 100, 100}, ann.BBox)
	assert.Equal(t, 10000.0, ann.Area)
	assert.Equal(t, 0, ann.IsCrowd)
	assert.NotNil(t, ann.Segmentation)
	assert.Equal(t, model.Rect{X0: 100, Y0: 200, X1: 200, Y1: 300}, ann.Rect())
}

func TestAddAnnotationRejectsInvalidBox(t *testing.T) {
	b := NewBuilder("test", DefaultCategories())
	imgID := b.AddImage("p.png", 800, 1200)

	_, err := b.AddAnnotation(imgID, 1, model.Rect{X0: 200, Y0: 200, X1: 100, Y1: 300})
	assert.Error(t, err)
	assert.Empty(t, b.Dataset().Annotations)
}

func TestWriteAndLoadRoundTrip(t *testing.T) {
	b := NewBuilder("equation detector dataset", DefaultCategories())
	imgID := b.AddImage("paperA_page_0001.png", 800, 1200)
	_, err := b.AddAnnotation(imgID, 1, model.Rect{X0: 100, Y0: 200, X1: 200, Y1: 300})
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "out", "instances.json")
	require.NoError(t, b.Dataset().WriteFile(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, b.Dataset().Images, loaded.Images)
	assert.Equal(t, b.Dataset().Annotations, loaded.Annotations)
	assert.Equal(t, b.Dataset().Categories, loaded.Categories)
	assert.NotNil(t, loaded.Licenses)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}

func TestCategoryID(t *testing.T) {
	d := &Dataset{Categories: DefaultCategories()}

	assert.Equal(t, 1, d.CategoryID("display"))
	assert.Equal(t, 2, d.CategoryID("inline"))
	assert.Equal(t, 1, d.CategoryID("unknown"))
	assert.Equal(t, 1, d.CategoryID(""))
}

func TestAnnotationsByImage(t *testing.T) {
	b := NewBuilder("test", DefaultCategories())
	a := b.AddImage("a.png", 100, 100)
	bID := b.AddImage("b.png", 100, 100)
	_, err := b.AddAnnotation(a, 1, model.Rect{X0: 1, Y0: 1, X1: 2, Y1: 2})
	require.NoError(t, err)
	_, err = b.AddAnnotation(a, 1, model.Rect{X0: 3, Y0: 3, X1: 4, Y1: 4})
	require.NoError(t, err)
	_, err = b.AddAnnotation(bID, 2, model.Rect{X0: 5, Y0: 5, X1: 6, Y1: 6})
	require.NoError(t, err)

	byImage := b.Dataset().AnnotationsByImage()
	assert.Len(t, byImage[a], 2)
	assert.Len(t, byImage[bID], 1)
}
