package generate

import "context"

// Model is the contract a trained sequence model fulfils for generation.
//
// Predict receives a window of exactly InputLength() values in [0, 1] and returns one
// score per symbol id, OutputLength() in total. The window is only valid for the
// duration of the call. Implementations used with WithParallelism must tolerate
// concurrent Predict calls.
type Model interface {
	InputLength() int
	OutputLength() int
	Predict(ctx context.Context, window []float64) ([]float64, error)
}
