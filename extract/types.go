package extract

// Match is one marker-containing line found in a document. Immutable once
// created.
type Match struct {
	// Source is the path of the PDF the line came from.
	Source string
	// Page is the 1-based page number the line was recognized on.
	Page int
	// Text is the matched line, trimmed of surrounding whitespace. It always
	// contains the configured marker.
	Text string
}

// Result aggregates one extraction run.
type Result struct {
	// Documents lists successfully processed documents in input order,
	// including those with zero matches.
	Documents []string
	// PerDocument maps each successfully processed document to its matches in
	// page order then line order. Zero matches is an empty entry, not an
	// absence.
	PerDocument map[string][]Match
	// AllMatches holds every match in document input order, then page order,
	// then line order. The ordering is deterministic regardless of worker
	// count.
	AllMatches []Match
	// Failed lists documents that could not be rasterized.
	Failed []string
	// Skipped lists documents skipped because the journal already recorded
	// them as done.
	Skipped []string
}
