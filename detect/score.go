package detect

import (
	"strings"
	"unicode"
)

// Character classes counted toward the mathiness score. Greek letters appear
// both here and in the alphabetic tally, matching how prose normalization
// treats them.
const (
	mathGlyphs    = "∑∫∂∇±≈≠≤≥∞√→←×•°≃≅≡⊂⊃⊆⊇∈∉∪∩∧∨¬⇒⇔⊗⊕…"
	greekLetters  = "αβγδεζηθικλμνξοπρστυφχψωΑΒΓΔΕΖΗΘΙΚΛΜΝΞΟΠΡΣΤΥΦΧΨΩ"
	operatorChars = "=+-/*^_|()[]{}<>"
)

// markupHints are math-markup tokens whose presence strongly suggests an
// equation; each occurrence in the text adds HintWeight to the raw tally.
var markupHints = []string{
	`\frac`, `\cdot`, `\nabla`, `\sum`, `\int`,
	`\partial`, `\sqrt`, `\leq`, `\geq`,
}

// mathiness scores a line of text for equation-likeness: the count of math
// glyph, Greek, and operator characters plus a fixed weight per markup hint,
// normalized by the alphabetic character count so that long prose lines with
// a stray symbol score low. The smoothing constants (+1, +5) keep short
// all-symbol lines from scoring infinitely and empty-ish lines near zero.
func (d *Detector) mathiness(text string) float64 {
	if len(text) == 0 {
		return 0
	}

	var mathy, alpha int
	for _, ch := range text {
		if strings.ContainsRune(mathGlyphs, ch) ||
			strings.ContainsRune(greekLetters, ch) ||
			strings.ContainsRune(operatorChars, ch) {
			mathy++
		}
		if unicode.IsLetter(ch) {
			alpha++
		}
	}

	for _, hint := range markupHints {
		mathy += strings.Count(text, hint) * d.config.HintWeight
	}

	return float64(mathy+1) / float64(alpha+5)
}
