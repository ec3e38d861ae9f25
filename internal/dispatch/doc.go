// Package dispatch classifies input strings and routes each one to the
// handler that renders it as a tagged source block.
//
// # Architecture
//
// The Dispatcher walks an ordered rule table. Each rule pairs a
// predicate with a handler; the first predicate that accepts the input
// wins, so rule order is part of the contract. URLs are tested before
// filesystem paths, and the specific URL shapes (GitHub, YouTube,
// arXiv, direct file extensions) are tested before the general crawl
// catch-all.
//
// # Components
//
//   - Dispatcher: holds the configuration, the shared HTTP client, and
//     the service clients for crawling, GitHub, and YouTube.
//   - rule: one (kind, predicate, handler) row of the dispatch table.
//   - Result: the rendered block for one input, plus the visited URL
//     list when the input was crawled.
//
// # Failure containment
//
// Handlers degrade inside their own block: a download or parse failure
// becomes an inline error marker and the block is still emitted. Only
// two things surface as errors from Process: an input no rule accepts,
// and context cancellation. ProcessAll converts the former into an
// error block and keeps going, so one bad input never costs the batch.
//
// # Usage
//
//	d := dispatch.NewDispatcher(cfg)
//	rec := model.NewRunRecord()
//	results := d.ProcessAll(ctx, inputs, rec)
//	doc := report.Combine(contents(results))
package dispatch
