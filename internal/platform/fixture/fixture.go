package fixture

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
)

// ErrInvalidFixture is returned when a fixture file cannot be decoded.
var ErrInvalidFixture = errors.New("invalid fixture")

// listEnvelope is the `{"items": [...]}` form of a fixture file.
type listEnvelope[T any] struct {
	Items []T `json:"items"`
}

// decodeList accepts either a bare JSON array or an object with an "items"
// array, matching both shapes the fixtures are published in.
func decodeList[T any](data []byte) ([]T, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("%w: empty document", ErrInvalidFixture)
	}

	if trimmed[0] == '[' {
		var items []T
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidFixture, err)
		}
		return items, nil
	}

	var env listEnvelope[T]
	if err := json.Unmarshal(trimmed, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFixture, err)
	}
	return env.Items, nil
}

// readList reads and decodes a fixture file. A missing file is reported
// with an error wrapping fs.ErrNotExist.
func readList[T any](path string) ([]T, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	items, err := decodeList[T](data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return items, nil
}

func isNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}
