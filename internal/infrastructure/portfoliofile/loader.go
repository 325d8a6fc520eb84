package portfoliofile

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ErrCreated is returned when the file did not exist and an empty template was written in its place.
var ErrCreated = errors.New("portfolio file created, fill it and restart")

const template = `# Tracked ETFs.
# etfs:
#   - name: MSCI World
#     isin: IE00B4L5Y983
#     transactions:
#       - amount: 10
#         purchase_price: 75.20
#         purchase_date: "2023-01-02"
etfs: []
`

// Load reads the YAML portfolio document into a generic mapping.
// A missing file is replaced by an empty template and reported as ErrCreated.
func Load(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		if err := writeTemplate(path); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("%s: %w", path, ErrCreated)
	}
	if err != nil {
		return nil, err
	}
	return Decode(data)
}

// Decode parses a YAML document. An empty document yields an empty mapping.
func Decode(data []byte) (map[string]any, error) {
	doc := map[string]any{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode portfolio: %w", err)
	}
	if doc == nil {
		doc = map[string]any{}
	}
	return doc, nil
}

func writeTemplate(path string) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, []byte(template), 0o644)
}
