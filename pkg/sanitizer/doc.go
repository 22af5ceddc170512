// Package sanitizer normalizes user input before validation and storage.
//
// All functions are idempotent and total: bad input degrades to an empty or
// unchanged value instead of an error, and validation decides what to reject.
//
// Normalization includes:
//   - Phone numbers: the studio display form "+7 (XXX) XXX-XX-XX" via pkg/phone
//   - Names: collapse whitespace, trim
//   - Emails: trim, lowercase
//   - VINs: uppercase, drop separators
//   - Slices: drop empties and duplicates after normalization
package sanitizer
