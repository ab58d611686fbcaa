// Package curate cleans and filters ingested samples.
//
// Every function is pure: it returns a new slice holding a subsequence of its
// input, in input order, and never mutates a Sample. CleanAndFilter
// composes the stages the way a dataset config asks for them.
package curate
