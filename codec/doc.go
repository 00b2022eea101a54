// Package codec converts between symbol sequences and the numeric representations a
// sequence model consumes.
//
// A Codec is built once from a corpus of sequences. Every distinct symbol receives a
// dense integer id in first-occurrence order (scanning sequences in order, symbols in
// order), so building twice from the same corpus yields the same ids.
//
// Three representations are derived from an id:
//
//   - A normalized scalar in [0, 1]: id/(size-1), or 0 when the vocabulary holds a
//     single symbol. Denormalize inverts it with round-half-up.
//   - A one-hot vector of length Size(). Decategorize inverts it (and any score vector)
//     by argmax, resolving ties to the lowest index.
//   - Training windows: W consecutive normalized values as input and the one-hot vector
//     of the symbol that follows them as target.
//
// Once built, a Codec never changes and is safe for concurrent use.
//
// # Example
//
//	c, err := codec.Build([][]string{{"a", "b", "c", "d", "e"}})
//	if err != nil {
//	    return err
//	}
//
//	windows, err := c.Windows(3)
//	if err != nil {
//	    return err
//	}
//	for w := range windows {
//	    fmt.Println(w.Input, w.Target)
//	}
package codec
