// Package sanitizer normalizes free text and URLs before validation and
// storage.
//
// Every function is idempotent and never fails: unusable input comes back
// as an empty string so the validator can report it.
//
//   - Titles and addresses: trimmed, inner whitespace collapsed to one space
//   - Descriptions: trimmed, line breaks kept, runs of blank lines collapsed
//   - Image URLs: https enforced, host lowercased, tracking parameters dropped,
//     path and query case preserved
package sanitizer
