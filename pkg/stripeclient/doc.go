// Package stripeclient provides the entry point for constructing a Stripe API
// client that implements the stripe.Client interface.
//
// Most applications build a client with New and pass it around explicitly:
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
//
//	  cli, err := stripeclient.NewWithAPIKey(ctx, "sk_test_123")
//	  if err != nil { log.Fatal(err) }
//
//	  charge, err := cli.Charges().Create(ctx, stripe.Params{
//	    "amount":   1000,
//	    "currency": "usd",
//	    "source":   "tok_visa",
//	  }).Await(ctx)
//	  if err != nil { log.Fatal(err) }
//	  _ = charge
//	}
//
// # Process-wide client
//
// Scripts that prefer module-level settings can use Default together with
// SetAPIKey, SetAPIBase, SetUploadAPIBase and SetAPIVersion. Default is built
// lazily from the STRIPE_* environment variables. Changing a setting affects
// calls started afterwards only.
//
// # TLS and development mode
//
// Config.SkipTLSVerify is refused unless STRIPE_DEV_MODE is "true" or "1".
package stripeclient
