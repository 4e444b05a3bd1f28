// Package reconcile maps the place names used in the survey onto the canonical
// names of a boundary document.
//
// Names already present in the canonical set are left alone. Every other name
// is looked up in a manual override table first and then matched by sequence
// similarity (the ratio of Python's difflib.SequenceMatcher, computed on
// case-folded NFKC text). The best candidate is accepted only when its ratio
// reaches the configured threshold; ties go to the candidate that comes first
// in the canonical order. Anything else stays unmatched.
package reconcile
