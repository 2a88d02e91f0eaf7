// Package pickup defines the normalized output unit of a scrape, the Record, together
// with the two pure helpers every source relies on: Normalize, which folds umlauts and
// strips noise from human-readable labels, and the date extractors, which turn German
// day.month(.year) tokens into calendar dates.
package pickup
