// Package fetch retrieves listing pages from a server that fails often.
//
// A request succeeds only when it answers 200. In bounded mode the Fetcher
// makes up to MaxAttempts attempts, sleeping RetryDelay between them, and
// then gives up with an error matching errors.ErrFetchExhausted. In wait
// mode it retries the same URL forever, blocking after every failure until
// the configured Acknowledger lets it continue.
//
// Every failed attempt is logged with the URL, the status code (0 when no
// response arrived) and the number of attempts left.
package fetch
