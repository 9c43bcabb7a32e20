// Package stripe provides the types, interfaces, and helpers for a
// non-blocking client of the Stripe REST API.
//
// # Overview
//
// Every operation that talks to the network returns a *Future immediately.
// The call runs in its own goroutine and the caller decides when to wait for
// it with Await. Once dispatched a call always runs to completion; the context
// passed to Await only bounds how long the caller waits.
//
// The package defines the dynamically-shaped object model (Object, List and
// the typed resources embedding Object), the registry that turns JSON
// payloads into typed object graphs, the error taxonomy, and the resource
// client interfaces. A concrete implementation of the clients is provided by
// the stripeclient package.
//
// Getting a client
//
//	import (
//	  "context"
//	  "log"
//
//	  "github.com/fivetwenty-io/asyncstripe/pkg/stripe"
//	  "github.com/fivetwenty-io/asyncstripe/pkg/stripeclient"
//	)
//
//	func example() {
//	  ctx := context.Background()
//	  cli, err := stripeclient.New(ctx, &stripe.Config{APIKey: "sk_test_123"})
//	  if err != nil { log.Fatal(err) }
//
//	  customer, err := cli.Customers().Retrieve(ctx, "cus_123").Await(ctx)
//	  if err != nil { log.Fatal(err) }
//
//	  if err := customer.Set("description", "VIP"); err != nil { log.Fatal(err) }
//	  if _, err := cli.Customers().Save(ctx, customer).Await(ctx); err != nil { log.Fatal(err) }
//	}
//
// Calls on the same object are sequenced by awaiting each step before
// starting the next one. Independent calls can be issued together and awaited
// in any order.
//
// # Errors
//
// A failed call resolves to exactly one of AuthenticationError,
// InvalidRequestError, CardError, APIError or APIConnectionError. The choice
// depends only on the HTTP status code and on whether the response body
// carries an "error" record. Helpers such as IsCardError make it easy to
// branch on them.
//
// # Configuration
//
// Config holds the credential, base URLs, API version pin and TLS toggle.
// Each call snapshots the client's settings once when it starts, so changing
// the API key on a client affects calls issued afterwards only.
package stripe
