// Package phone canonicalizes and formats Russian phone numbers.
//
// The package is the single formatting policy shared by the API services,
// the studioctl CLI and interactive input masks:
//   - Normalize: digits only, leading 8 -> 7 for 11 digits, 7 prepended to 10 digits
//   - Format: strict display form +7 (XXX) XXX-XX-XX, used on submit and blur
//   - FormatPartial: as-you-type rendering for 1-11 digits, used on every keystroke
//
// All functions are total: they never panic and fall back to the original
// text when it cannot be recognised as a phone number.
package phone
