// Package semantic implements core.Matcher over an embedded lexicon of
// database vocabulary.
//
// Identifiers are normalized (NFKC, case fold, camel/snake/kebab split) and
// resolved to lexicon concepts. A candidate is scored by its relation to the
// query concept:
//   - equivalent: same concept or same normalized key
//   - narrower: the candidate is a hyponym of the query
//   - broader: the candidate is a hypernym of the query
//   - sibling: both share a parent concept
//
// A normalized Levenshtein similarity gives typo tolerance on top of the
// concept relations.
//
// Match picks a single winner or fails with a *core.MatchError when nothing
// scores high enough or when two candidates are too close to call.
package semantic
