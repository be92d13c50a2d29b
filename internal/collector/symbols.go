package collector

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// LoadSymbols reads a one-column CSV of exchange symbols. The first row is a
// header; blank rows are dropped.
func LoadSymbols(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open symbols: %w", err)
	}
	defer f.Close()
	return ReadSymbols(f)
}

// ReadSymbols parses the symbol list format from r.
func ReadSymbols(r io.Reader) ([]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	var symbols []string
	header := true
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read symbols: %w", err)
		}
		if header {
			header = false
			continue
		}
		if len(rec) == 0 {
			continue
		}
		sym := strings.ToUpper(strings.TrimSpace(rec[0]))
		if sym == "" {
			continue
		}
		symbols = append(symbols, sym)
	}
	return symbols, nil
}
