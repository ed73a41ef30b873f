package compare

import (
	"fmt"
	"os"

	"github.com/titanous/json5"

	"github.com/joseph-ayodele/extraction-bench/constants"
	"github.com/joseph-ayodele/extraction-bench/internal/common"
	"github.com/joseph-ayodele/extraction-bench/internal/entity"
	"github.com/joseph-ayodele/extraction-bench/internal/normalize"
)

// LoadGroundTruth reads a JSON5 file mapping document ID to a field object and runs
// every entry through n, so truth and extractions are compared in the same form.
func LoadGroundTruth(path string, n *normalize.Normalizer) (map[string]entity.NormalizedRecord, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read ground truth: %w", err)
	}
	return ParseGroundTruth(b, n)
}

// ParseGroundTruth is LoadGroundTruth over in-memory bytes.
func ParseGroundTruth(data []byte, n *normalize.Normalizer) (map[string]entity.NormalizedRecord, error) {
	if n == nil {
		n = normalize.NewNormalizer(normalize.Options{})
	}
	var raw map[string]map[string]any
	if err := json5.Unmarshal(data, &raw); err != nil {
		return nil, common.NewAppError(common.CodeConfig, "ground truth is not a JSON5 object of objects", fmt.Errorf("%w: %v", common.ErrInvalidInput, err))
	}

	out := make(map[string]entity.NormalizedRecord, len(raw))
	for id, fields := range raw {
		out[id] = n.Normalize(entity.RawExtraction{
			DocumentID: id,
			Fields:     fields,
			Metadata:   entity.RawMetadata{Method: constants.MethodGroundTruth},
		})
	}
	return out, nil
}
