package dice

import "go.uber.org/zap"

// Picker wraps a Source and logger to provide logged weighted selection.
// Every selection is logged at debug level with the weights and the chosen index.
type Picker struct {
	src    Source
	logger *zap.Logger
}

// NewPicker creates a Picker that draws from src and logs to logger.
//
// Precondition: src must be non-nil. A nil logger is replaced with zap.NewNop.
func NewPicker(src Source, logger *zap.Logger) *Picker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Picker{src: src, logger: logger}
}

// Pick selects an index from weights and logs the result.
//
// Postcondition: identical to WeightedIndex.
func (p *Picker) Pick(label string, weights []float64) (int, error) {
	idx, err := WeightedIndex(weights, p.src)
	if err != nil {
		return 0, err
	}
	p.logger.Debug("weighted pick",
		zap.String("label", label),
		zap.Float64s("weights", weights),
		zap.Int("index", idx),
	)
	return idx, nil
}
