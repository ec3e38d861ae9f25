// Package github fetches repository trees, pull requests, and issues
// through the GitHub REST API and renders them as source blocks.
//
// All three handlers are failure-containing: they always return a
// block, degrading to in-band error markers when the API misbehaves.
// Repository walks skip non-text files and excluded directories, fetch
// the rest through each entry's download URL, and convert notebooks to
// plain scripts. Pull requests and issues carry their description,
// metadata, merged comment threads in creation order, and the
// repository content of the base branch.
//
// The Client takes an injectable HTTP client and API base URL so tests
// can point it at a local server. Authentication is a plain header bag;
// callers pass whatever Authorization header their token warrants.
package github
