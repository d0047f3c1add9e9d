// Package wave implements the cleaning and analysis stages for a single
// burst of wave-sensor samples: quality scanning, gap repair, detrending
// with optional smoothing, and zero-up-crossing wave parameter extraction.
//
// The scanner and gap filler mutate the SeriesBuffer they are given; the
// conditioning and extraction stages are pure and produce derived data.
package wave
