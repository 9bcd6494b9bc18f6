package domain

// RawRecord is one row of a source file: original column header to cell
// value, plus the zero-based data-row index within the file. Records are
// consumed within a single processing iteration and never persisted verbatim.
type RawRecord struct {
	Index  int
	Fields map[string]string
}

// Field returns the cell value for a source column, blank when absent.
func (r RawRecord) Field(name string) string {
	return r.Fields[name]
}

// RecordSet is the ordered contents of one loaded source file.
type RecordSet struct {
	Headers []string
	Records []RawRecord
}

// ColumnMapping names the source columns feeding each document field. Exact
// names vary by deployment; RecordID is optional and falls back to the row
// index when the column is absent or not numeric.
type ColumnMapping struct {
	Heading  string
	Body     string
	Date     string
	Tags     string
	RecordID string
}

// Provenance identifies which worker ingested a document and from where.
type Provenance struct {
	WorkerID   string `json:"worker_id"`
	SourceFile string `json:"source_file"`
}

// Document is the persistence unit produced for one source record. Ownership
// transfers to the document store on insert; it is never mutated afterwards.
type Document struct {
	RecordID   int        `json:"record_id"`
	Heading    string     `json:"heading"`
	Body       string     `json:"body"`
	Date       *string    `json:"date"` // ISO calendar date, nil when unparseable
	Tags       []string   `json:"tags"`
	Nouns      []string   `json:"nouns"`
	NounCount  int        `json:"noun_count"`
	Provenance Provenance `json:"provenance"`
}
