// Package analysis computes the state, age and episode-mention studies over
// the scraped contestants and renders their tables and charts.
package analysis
