// Package handoff stores the state passed from a listing to the detail view.
//
// A browser hands the selected comic to the detail route as navigation state.
// Over HTTP the same state is parked in Redis under a random token for a short
// time, so a detail page can be opened from a link that only carries the token:
//
//	store := handoff.NewStore(redisClient, handoff.DefaultTTL)
//
//	token, err := store.Put(ctx, card.Detail)
//	// redirect to /detail-comic/{slug}?state={token}
//
//	route, err := store.Get(ctx, token)
//	if errors.Is(err, handoff.ErrNotFound) {
//		// expired or never issued - the detail view has no state
//	}
//
// Entries expire on their own; nothing else is written to Redis by this package.
// The route's processed link, not its slug, identifies the comic, since slugs of
// distinct titles can collide.
//
// # Metrics
//
//   - comic_handoff_stored_total - Handoffs stored
//   - comic_handoff_resolved_total - Handoffs resolved
//   - comic_handoff_misses_total - Unknown or expired tokens
//   - comic_handoff_errors_total{operation} - Redis or encoding failures
package handoff
