// Package validate checks datasets against the structural limits of a transport
// version and, in ModeFDA, against the FDA submission constraints.
//
// Validation collects every finding instead of stopping at the first one. Each
// Finding carries a machine-readable Code, a Severity and a message. Writers refuse
// to emit bytes when a Result has error-level findings, unless validation is skipped.
//
// Standard rules cover the hard format constraints: name, label and length limits of
// the version, unique column names (compared case-insensitively), observation
// length, and per-value type and range checks. FDA mode adds: version 5 only, dataset
// names of at most 8 characters, ASCII-only names, labels and data, one dataset per
// file, no split files, no compression and only built-in SAS formats.
//
// Truncation of over-length character values is not an error: the writer truncates
// silently and the validator reports a VALUE_TRUNCATED warning.
package validate
