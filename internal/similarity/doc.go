// Package similarity scores how alike two vehicle identifiers are.
//
// Scores blend a normalized Levenshtein edit similarity with Jaro-Winkler
// (both from matchr) after case folding and accent stripping. Identifiers
// that only differ by a configured separator ("CX-3" vs "CX3") receive a
// fixed boost score. Veto reports whether two identifiers carry numerals
// that diverge enough to name different models no matter how similar the
// letters are.
package similarity
