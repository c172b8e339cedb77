package lexicon

// RawRecord is one raw record produced by a source extractor, before any
// transformation. Ordinal is the record's position within the source, used
// for error reporting; Payload is the untouched source bytes.
type RawRecord struct {
	Ordinal int
	Payload []byte
}

// RecordIterator streams raw records from a source. It follows the
// bufio.Scanner shape: Next advances and reports whether a record is
// available, Record returns the current record, and Err reports the first
// error encountered once Next has returned false.
type RecordIterator interface {
	Next() bool
	Record() RawRecord
	Err() error
}

// SliceIterator is a RecordIterator over an in-memory record slice.
type SliceIterator struct {
	records []RawRecord
	pos     int
}

// NewSliceIterator returns an iterator over the given records.
func NewSliceIterator(records []RawRecord) *SliceIterator {
	return &SliceIterator{records: records}
}

func (it *SliceIterator) Next() bool {
	if it.pos >= len(it.records) {
		return false
	}
	it.pos++
	return true
}

func (it *SliceIterator) Record() RawRecord {
	return it.records[it.pos-1]
}

func (it *SliceIterator) Err() error {
	return nil
}
