// Package generate drives a trained sequence model to synthesize new sequences.
//
// Generation is greedy and autoregressive. A buffer of W warm-up values drawn
// uniformly from [0, 1) is handed to the model, the argmax of the returned scores is
// converted back into the continuous domain and shifted into the buffer, and the loop
// repeats for L + W steps. Values produced from step W onwards form the result.
//
// The loop is an explicit state machine with three phases:
//
//	warmup ──(step == W)──▶ recording ──(step == L+W)──▶ done
//
// The model is consulted exactly L + W times. Any model failure aborts the call and no
// partial result is returned. The context is checked before every step.
//
// The model must declare an input length equal to the window size the codec windows
// were built with, and an output length equal to the codec size; both are checked
// before the first query.
package generate
