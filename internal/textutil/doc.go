// Package textutil provides text processing utilities for filename
// sanitization and description shaping.
//
// The primary use cases are:
//   - Sanitizing episode titles for safe filesystem use in video output names
//   - Collapsing and truncating generated descriptions at line boundaries
package textutil
