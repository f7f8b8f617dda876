// Package dataset assembles training data for the equation detector: it
// turns candidate records and rendered page rasters into page-level COCO
// datasets, cuts those into overlapping tiles with clipped annotations, and
// provides the preprocessing and QA-overlay helpers that surround a labeling
// run. Per-item failures are collected into a Report rather than aborting
// the batch.
package dataset

import (
	"bufio"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tsawler/formula/model"
)

// Equation classes. Display equations are the detector's primary target;
// inline boxes may be carried for context.
const (
	ClassDisplay = "display"
	ClassInline  = "inline"
)

// PlacedBox locates one equation occurrence on a page, in point space.
type PlacedBox struct {
	Page  int        `json:"page"`
	BBox  model.Rect `json:"bbox_pdf"`
	Class string     `json:"cls,omitempty"`
}

// Record is one labeled equation: its source text, the document it came
// from, and every page box it occupies. Records are the durable form of
// detector output and the input to COCO assembly.
type Record struct {
	EqUID string      `json:"eq_uid"`
	DocID string      `json:"doc_id"`
	Latex string      `json:"latex"`
	Notes string      `json:"notes,omitempty"`
	Boxes []PlacedBox `json:"boxes"`
}

// CanonicalHash returns a stable 16-hex-digit id for equation text. The text
// is whitespace-collapsed first so trivially reformatted copies of the same
// equation share an id.
func CanonicalHash(latex string) string {
	canonical := strings.Join(strings.Fields(latex), " ")
	sum := sha256.Sum256([]byte(canonical))
	return hex.EncodeToString(sum[:])[:16]
}

// NewRecord builds a record for docID with the uid derived from the text.
func NewRecord(docID, latex string, boxes ...PlacedBox) Record {
	return Record{
		EqUID: CanonicalHash(latex),
		DocID: docID,
		Latex: latex,
		Boxes: boxes,
	}
}

// WriteRecords writes records as JSON Lines, one record per line, creating
// parent directories as needed.
func WriteRecords(path string, records []Record) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating record directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating record file: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	enc := json.NewEncoder(w)
	for i, rec := range records {
		if err := enc.Encode(rec); err != nil {
			return fmt.Errorf("encoding record %d: %w", i, err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("writing record file: %w", err)
	}
	return nil
}

// ReadRecords loads a JSON Lines record file. Blank lines are skipped and
// box corners are normalized on read.
func ReadRecords(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening record file: %w", err)
	}
	defer f.Close()

	var records []Record
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var rec Record
		if err := json.Unmarshal(line, &rec); err != nil {
			return nil, fmt.Errorf("record file %s line %d: %w", path, lineNo, err)
		}
		for i := range rec.Boxes {
			b := rec.Boxes[i].BBox
			rec.Boxes[i].BBox = model.NormalizedRect(b.X0, b.Y0, b.X1, b.Y1)
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading record file %s: %w", path, err)
	}
	return records, nil
}
