// Package currency converts base-currency amounts for display.
//
// A Converter holds the rate currently in effect. Selecting a new display
// currency is split in three steps so callers can run the fetch wherever
// suits them (a bubbletea Cmd, an HTTP handler, a CLI spinner):
//
//	req, done, err := conv.Request("USD") // record the selection
//	rate, err := conv.Resolve(ctx, req)   // talk to the provider, no state change
//	applied := conv.Apply(req, rate)      // only the latest request wins
//
// Every Request bumps a generation counter. Apply discards a response whose
// generation is no longer current, so a slow reply for an earlier selection
// can never overwrite a newer one.
package currency
