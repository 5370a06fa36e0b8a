// Package survivor holds the data model for scraped Survivor seasons and the
// small interfaces the pipeline, store and API packages are written against.
package survivor
