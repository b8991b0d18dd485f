/*
Package resilience guards calls to unreliable dependencies with a circuit
breaker.

The compiler routes every background-traffic lookup through a Breaker so a
placement service that keeps failing is skipped quickly instead of being
retried on every compilation.

	breaker := resilience.New("placement", resilience.Settings{
		Threshold: 3,
		Timeout:   30 * time.Second,
	})

	cands, err := resilience.Do(ctx, breaker, func(ctx context.Context) ([]placement.Candidate, error) {
		return source.Candidates(ctx, road, anchor, density)
	})

States:

	Closed --[failures]-> Open --[timeout]-> Half-Open --[successes]-> Closed
	                                           |
	                                       [failure]
	                                           v
	                                         Open
*/
package resilience
