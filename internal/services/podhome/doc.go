// Package podhome wraps the PodHome host API: listing planned episodes and
// moving their publish times. The monitor reschedules the earliest planned
// episode whenever the campaign total changes.
package podhome
