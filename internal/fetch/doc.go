// Package fetch downloads campaign pages. Two strategies exist: a plain
// HTTP GET of the static markup, and a headless-browser render for pages
// that only show funding progress after JavaScript runs. The monitor
// compares both captures independently.
package fetch
