// Package constants centralizes configuration defaults shared across the CLI.
//
// Storing file permissions and capture limits in one place prevents magic
// numbers from scattering across cmd/ and internal/, and the values can be
// referenced from multiple packages without introducing import cycles.
package constants
