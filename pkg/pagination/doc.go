// Package pagination maps catalog page numbers onto upstream library pages and
// fetches each page's batch concurrently.
//
// The first catalog page is a light front page backed by a single upstream page.
// Every later catalog page is backed by two consecutive upstream pages:
//
//	catalog 1 -> upstream [1]
//	catalog 2 -> upstream [2 3]
//	catalog 3 -> upstream [4 5]
//	catalog N -> upstream [(N-2)*2+2, (N-2)*2+3]
//
// Example usage:
//
//	fetcher := pagination.NewBatchFetcher(comicClient, pagination.DefaultConfig())
//	batch, err := fetcher.FetchBatch(ctx, 3)
//
// The batch fetcher:
//   - Issues every upstream request of the batch concurrently
//   - Waits for all of them before returning
//   - Concatenates records in request order
//   - Fails the whole batch on the first error and cancels the rest
//
// The upstream API gives no total page count, so the end of the catalog is detected
// empirically: a batch in which no request returned any record.
package pagination
