package ingestion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"wallet-credit-lab/internal/domain"
	"wallet-credit-lab/internal/idhash"
)

// Batch is one loaded transaction log together with its data version.
type Batch struct {
	Transactions []domain.Transaction
	DataVersion  string // sha256 hex of the source content
}

// TransactionSource provides the raw transaction log for one batch run.
type TransactionSource interface {
	// Load returns all transactions in input order.
	Load(ctx context.Context) (*Batch, error)
}

// FileSource reads transactions from a JSON file on disk.
type FileSource struct {
	Path string
}

// NewFileSource creates a source backed by the JSON file at path.
func NewFileSource(path string) *FileSource {
	return &FileSource{Path: path}
}

// Load reads and decodes the whole file. The data version is the hash of the
// file bytes, so any edit to the input yields a new version.
func (s *FileSource) Load(ctx context.Context) (*Batch, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := ReadInput(s.Path)
	if err != nil {
		return nil, err
	}

	txs, err := DecodeTransactions(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	return &Batch{
		Transactions: txs,
		DataVersion:  idhash.ComputeDataVersion(data),
	}, nil
}

// StaticSource serves a fixed, in-memory transaction slice.
type StaticSource struct {
	Transactions []domain.Transaction
}

// Load returns a copy of the configured transactions.
// An empty slice is rejected the same way an empty file is.
func (s *StaticSource) Load(_ context.Context) (*Batch, error) {
	if len(s.Transactions) == 0 {
		return nil, ErrInvalidInputSchema
	}

	out := make([]domain.Transaction, len(s.Transactions))
	copy(out, s.Transactions)

	encoded, err := json.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("encode static transactions: %w", err)
	}

	return &Batch{
		Transactions: out,
		DataVersion:  idhash.ComputeDataVersion(encoded),
	}, nil
}

// Verify interface compliance at compile time.
var (
	_ TransactionSource = (*FileSource)(nil)
	_ TransactionSource = (*StaticSource)(nil)
)
