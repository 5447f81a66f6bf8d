package optimize

import (
	"encoding/json"
	"fmt"
	"os"
)

// ParseAnalysis reads the skeleton analyzer's output file: a JSON
// array of per-animation usage records.
func ParseAnalysis(path string) ([]AnimationAnalysis, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("optimize: read %s: %w", path, err)
	}
	return DecodeAnalysis(raw)
}

// DecodeAnalysis decodes analysis records from raw JSON.
func DecodeAnalysis(raw []byte) ([]AnimationAnalysis, error) {
	var results []AnimationAnalysis
	if err := json.Unmarshal(raw, &results); err != nil {
		return nil, fmt.Errorf("optimize: parse analysis: %w", err)
	}
	return results, nil
}
