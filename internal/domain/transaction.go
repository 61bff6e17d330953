package domain

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// Transaction is one recorded protocol event from the input log.
// Transactions are never mutated after loading.
type Transaction struct {
	UserWallet string     `json:"userWallet"`
	Action     string     `json:"action"`
	Timestamp  Timestamp  `json:"timestamp"`
	ActionData ActionData `json:"actionData"`
}

// ActionData is the nested action payload.
type ActionData struct {
	UserID        string              `json:"userId"`
	Amount        decimal.NullDecimal `json:"amount"`        // numeric string or number
	AssetPriceUSD decimal.NullDecimal `json:"assetPriceUSD"` // numeric string or number
}

// Timestamp keeps the textual form of a timestamp exactly as it appeared
// in the input. It is only used for day bucketing, never parsed as time.
type Timestamp struct {
	Text  string
	Valid bool
}

// NewTimestamp creates a valid timestamp from its textual form.
func NewTimestamp(text string) Timestamp {
	return Timestamp{Text: text, Valid: text != ""}
}

// UnmarshalJSON accepts strings and numbers. Numbers keep their literal text.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*t = Timestamp{}
		return nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("timestamp: %w", err)
		}
		*t = NewTimestamp(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("timestamp: expected string or number, got %s", string(data))
	}
	*t = NewTimestamp(n.String())
	return nil
}

// MarshalJSON writes the timestamp back as a string.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	if !t.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(t.Text)
}
