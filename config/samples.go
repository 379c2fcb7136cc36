package config

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"

	"github.com/weave-labs/gepa/types"
)

// LoadSamplesJSONL reads one types.Sample per line from r. This is the
// minimal concrete reader the CLI needs to be runnable; a host with a
// richer persistence layer supplies samples directly instead.
func LoadSamplesJSONL(r io.Reader) ([]types.Sample, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	var samples []types.Sample
	line := 0
	for scanner.Scan() {
		line++
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}
		var sample types.Sample
		if err := json.Unmarshal(raw, &sample); err != nil {
			return nil, fmt.Errorf("line %d: decode sample: %w", line, err)
		}
		if err := sample.Validate(); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		samples = append(samples, sample)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read samples: %w", err)
	}
	return samples, nil
}
