// Package goalline extracts fundraising-related text from campaign pages
// and condenses it into a comparable summary.
//
// Extraction works on raw or browser-rendered markup: non-content elements
// are stripped, then three strategies collect candidate lines (elements
// whose class, id, or data-testid hints at fundraising, free-text lines
// matching a keyword pattern, and numeric tokens carrying a currency or
// percent unit). The deduplicated, sorted, capped line set feeds Summarize,
// which cleans the text and derives the campaign goal and current donation
// total. Summaries compare as plain strings; two snapshots with equal
// summaries count as unchanged.
package goalline
