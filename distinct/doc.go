// Package distinct estimates the number of unique elements in a data stream
// using memory that stays fixed no matter how long the stream runs. It
// implements the sampling algorithm from "Distinct Elements in Streams: An
// Algorithm for the (Text) Book" by Chakraborti, Vinodchandran and Meel
// (ESA 2022), also described by Knuth as the CVM algorithm.
//
// The idea: keep a small random sample of the elements seen so far, each
// retained with the current probability p (starting at 1). Whenever the
// sample fills up, flip a fair coin for every held element, discard the
// losers, and halve p. The number of retained elements divided by p is then
// an unbiased estimate of the true distinct count. Sizing the sample with
// CapacityForAccuracy makes the estimate land within a relative error eps of
// the truth with probability at least 1-delta.
//
// Unlike HyperLogLog-style sketches this keeps actual elements, so it needs
// no hash function of its own and works for any comparable element type,
// but two independently built estimators cannot be merged.
package distinct
