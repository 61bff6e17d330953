package ingestion

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"wallet-credit-lab/internal/domain"
)

// LoadTransactions reads a JSON array of transactions from path.
// Returns ErrInputNotFound if the file does not exist and ErrInvalidInputSchema
// if the content is not a non-empty array of objects.
func LoadTransactions(path string) ([]domain.Transaction, error) {
	data, err := ReadInput(path)
	if err != nil {
		return nil, err
	}
	return DecodeTransactions(bytes.NewReader(data))
}

// ReadInput reads the raw input file, mapping a missing file to ErrInputNotFound.
func ReadInput(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrInputNotFound, path)
		}
		return nil, fmt.Errorf("read input %s: %w", path, err)
	}
	return data, nil
}

// DecodeTransactions decodes a JSON array of transaction objects.
// Elements are decoded one by one so that a malformed element is reported by index.
func DecodeTransactions(r io.Reader) ([]domain.Transaction, error) {
	dec := json.NewDecoder(r)

	var raw []json.RawMessage
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInputSchema, err)
	}
	// The array must be the whole document.
	if err := dec.Decode(&json.RawMessage{}); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: trailing data after top-level array", ErrInvalidInputSchema)
	}
	if len(raw) == 0 {
		return nil, ErrInvalidInputSchema
	}

	txs := make([]domain.Transaction, len(raw))
	for i, elem := range raw {
		elem = bytes.TrimSpace(elem)
		if len(elem) == 0 || elem[0] != '{' {
			return nil, fmt.Errorf("%w: element %d is not an object", ErrInvalidInputSchema, i)
		}
		if err := json.Unmarshal(elem, &txs[i]); err != nil {
			return nil, fmt.Errorf("%w: element %d: %v", ErrInvalidInputSchema, i, err)
		}
	}

	return txs, nil
}
