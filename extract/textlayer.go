package extract

import (
	"strings"

	"github.com/ledongthuc/pdf"
)

// Pages below this many embedded-text characters are assumed to be scans
// without a usable text layer.
const minTextLayerChars = 64

// textLayerMatches tries the document's embedded text layer before falling
// back to rasterization and OCR. It reports ok=false when the document cannot
// be read or carries too little embedded text to be trusted.
func (e *Extractor) textLayerMatches(path string) ([]Match, bool) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, false
	}
	defer f.Close()

	var matches []Match
	total := 0
	for i := 1; i <= r.NumPage(); i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		text, err := p.GetPlainText(nil)
		if err != nil {
			return nil, false
		}
		total += len(strings.TrimSpace(text))
		for _, line := range FilterLines(text, e.opts.Marker, e.opts.MarkerIgnoreCase) {
			matches = append(matches, Match{Source: path, Page: i, Text: line})
		}
	}

	if total < minTextLayerChars {
		return nil, false
	}
	return matches, true
}
