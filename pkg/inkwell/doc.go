// Package inkwell provides the caching and fault-tolerance core for LLM
// text-processing backends.
//
// inkwell sits between an application and a language-model service. Every
// request is deterministically keyed, looked up in a two-tier cache (a
// bounded in-process hot tier backed by Redis), and only sent to the model
// on a miss. Calls to the model run under per-operation circuit breakers
// with retry and optional fallbacks, so a flaky or down model degrades the
// service instead of breaking it.
//
// # Quick Start
//
// Wrap your model client and create a processor:
//
//	client := inkwell.LLMClientFunc(func(ctx context.Context, req *inkwell.Request) ([]byte, error) {
//	    return callModel(ctx, req)
//	})
//
//	proc, err := inkwell.New(client)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer proc.Close()
//
//	resp, err := proc.Process(ctx, inkwell.NewRequest(inkwell.OpSummarize, document))
//
// A repeated request with the same operation, text, question, and options
// is served from cache; resp.FromCache tells them apart.
//
// # Operations
//
// Five operations are supported: summarize, sentiment, key_points,
// questions, and qa. Question-answering requests carry the question
// alongside the text:
//
//	resp, err := proc.Process(ctx, inkwell.NewQARequest(document, "Who signed it?"))
//
// # Batching
//
// ProcessBatch runs many requests with bounded concurrency, preserving
// input order and isolating failures per item:
//
//	items, err := proc.ProcessBatch(ctx, reqs)
//	for _, item := range items {
//	    if item.Err != nil {
//	        // this item failed; the rest are unaffected
//	    }
//	}
//
// # Degradation
//
// Redis going down never fails a read: lookups degrade to misses and
// results are served uncached. Repeated model failures open that
// operation's breaker and calls fail fast with ErrServiceUnavailable until
// a recovery trial succeeds. Health() reports tier and breaker state.
package inkwell
