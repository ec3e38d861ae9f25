// Package model defines the core data structures shared across onefilellm.
//
// This package contains the following main types:
//   - SourceKind: The category of one aggregated input (crawl, repo, PDF, ...)
//   - PageRecord: One crawled page's outcome within a web-crawl source
//   - RunRecord: One aggregation run, persisted to the history database
//
// Design decision: models live in their own package to avoid circular
// dependencies. The crawler, dispatcher, report, and database packages all
// consume these types, so centralizing them prevents import cycles.
package model
