package sources

import (
	"bufio"
	"bytes"
	"io"

	"github.com/ankitdsmb/DictionaryImporter-sub008/lexicon"
)

// maxLineBytes bounds one record line. Wiktionary extracts occasionally
// carry multi-hundred-KB lines; 4MB covers the observed worst case.
const maxLineBytes = 4 << 20

// lineIterator yields one RawRecord per non-empty line. Ordinals count
// every physical line, blank ones included, so they match editor line
// numbers in error reports.
type lineIterator struct {
	scanner *bufio.Scanner
	ordinal int
	record  lexicon.RawRecord
}

func newLineIterator(r io.Reader) *lineIterator {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineBytes)
	return &lineIterator{scanner: scanner}
}

func (it *lineIterator) Next() bool {
	for it.scanner.Scan() {
		it.ordinal++
		line := it.scanner.Bytes()
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}
		// Scanner reuses its buffer on the next Scan.
		payload := make([]byte, len(line))
		copy(payload, line)
		it.record = lexicon.RawRecord{Ordinal: it.ordinal, Payload: payload}
		return true
	}
	return false
}

func (it *lineIterator) Record() lexicon.RawRecord { return it.record }

func (it *lineIterator) Err() error { return it.scanner.Err() }
