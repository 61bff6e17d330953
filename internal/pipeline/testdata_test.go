package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

var fixedTime = time.Date(2025, 1, 4, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedTime }

// writeInput writes a transaction log with the given number of wallets whose
// action mix varies with the wallet index, plus one transaction without a wallet.
func writeInput(t *testing.T, wallets int) string {
	t.Helper()

	var txs []string
	add := func(wallet, action string, ts int) {
		txs = append(txs, fmt.Sprintf(
			`{"userWallet":%q,"action":%q,"timestamp":%d,"actionData":{"amount":"1000000","assetPriceUSD":"1.0"}}`,
			wallet, action, 1629178166+ts*86400))
	}

	for i := 0; i < wallets; i++ {
		w := fmt.Sprintf("0x%040x", i+1)
		for j := 0; j <= i%4; j++ {
			add(w, "deposit", j)
		}
		for j := 0; j < i%3; j++ {
			add(w, "borrow", j)
		}
		for j := 0; j < i%2; j++ {
			add(w, "Repay", j)
		}
		if i%5 == 0 {
			add(w, "liquidationcall", 0)
		}
		if i%6 == 0 {
			add(w, "redeemunderlying", 1)
		}
	}
	txs = append(txs, `{"action":"deposit","actionData":{"amount":"5"}}`)

	path := filepath.Join(t.TempDir(), "transactions.json")
	if err := os.WriteFile(path, []byte("["+strings.Join(txs, ",\n")+"]"), 0644); err != nil {
		t.Fatalf("write input: %v", err)
	}
	return path
}

func testOptions(input, outputDir string) Options {
	opts := DefaultOptions()
	opts.InputPath = input
	opts.OutputDir = outputDir
	return opts
}

func readFile(t *testing.T, dir, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		t.Fatalf("read %s: %v", name, err)
	}
	return string(data)
}
