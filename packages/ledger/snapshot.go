package ledger

import (
	"bufio"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/iotaledger/iota.go/trinary"

	"github.com/iotaledger/tanglenode/packages/tangle"
	"github.com/iotaledger/tanglenode/packages/ternary"
	"github.com/iotaledger/tanglenode/packages/transaction"
)

// ErrInvalidSnapshot is returned when a snapshot file can not be parsed or exceeds the supply.
var ErrInvalidSnapshot = errors.New("invalid snapshot")

// LoadSnapshotFile reads the initial balances from a file that contains one "ADDRESS;BALANCE" line per address.
func LoadSnapshotFile(path string) (tangle.StateDiff, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Errorf("failed to open snapshot file %s: %w", path, err)
	}
	defer file.Close()

	return ReadSnapshot(file)
}

// ReadSnapshot parses initial balances in the format of LoadSnapshotFile.
func ReadSnapshot(reader io.Reader) (balances tangle.StateDiff, err error) {
	balances = make(tangle.StateDiff)
	var total int64

	scanner := bufio.NewScanner(reader)
	for line := 1; scanner.Scan(); line++ {
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}

		parts := strings.Split(text, ";")
		if len(parts) != 2 {
			return nil, errors.Wrapf(ErrInvalidSnapshot, "line %d: expected ADDRESS;BALANCE", line)
		}

		address, err := ternary.HashFromTrytes(trinary.Trytes(parts[0]))
		if err != nil {
			return nil, errors.Wrapf(ErrInvalidSnapshot, "line %d: %s", line, err)
		}
		balance, err := strconv.ParseInt(parts[1], 10, 64)
		if err != nil || balance < 0 {
			return nil, errors.Wrapf(ErrInvalidSnapshot, "line %d: invalid balance '%s'", line, parts[1])
		}

		if total += balance; total > transaction.Supply {
			return nil, errors.Wrapf(ErrInvalidSnapshot, "line %d: balances exceed the supply", line)
		}
		balances.Add(tangle.StateDiff{address: balance})
	}
	if err = scanner.Err(); err != nil {
		return nil, errors.Errorf("failed to read snapshot: %w", err)
	}

	return balances, nil
}
