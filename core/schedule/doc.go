// Package schedule locates time windows in generation series: sliding-window
// search for spans that deliver a required energy quantity, and contiguous
// runs where generation covers the load.
package schedule
