// Package pipeline wires fetchers, scrapers, repositories and artifact
// stores into the batch jobs run by the CLI: building the season dataset,
// scraping the CBS cast list and running the analyses.
package pipeline
