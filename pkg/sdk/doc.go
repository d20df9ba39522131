// Package sdk provides the high-level entry point for working with a service
// hosting platform: browsing namespaces and services, calling endpoints, and
// registering new services from a source tree.
//
// # Quick Start
//
// Create a Root from a configuration, then walk down to an endpoint:
//
//	import (
//		"github.com/shamank/adama-sdk-go/pkg/config"
//		"github.com/shamank/adama-sdk-go/pkg/sdk"
//	)
//
//	func main() {
//		cfg, err := config.Load("adama.yaml")
//		if err != nil {
//			log.Fatal(err)
//		}
//
//		root, err := sdk.New(cfg)
//		if err != nil {
//			log.Fatal(err)
//		}
//
//		search := root.Namespace("araport").Service("locus_gene_report").At("1.0").Endpoint("search")
//		res, err := search.Call(ctx, url.Values{"locus": {"AT2G26230"}})
//		if err != nil {
//			log.Fatal(err)
//		}
//		fmt.Println(string(res.Value))
//	}
//
// # Handles
//
// The resource chain is Root → Namespace → Service (at a version) →
// Endpoint. Creating a handle never touches the network:
//
//   - Root.Namespace, Namespace.Service and Service.Endpoint return handles
//     directly.
//   - Root.Resolve, Namespace.Resolve and Service.Resolve return the same
//     handles wrapped in a Resource tagged with its Kind.
//   - Name, Version, ID and Path are pure accessors.
//
// Descriptive info is fetched the first time Info, Type or Field is called on
// a handle and cached for the handle's lifetime. Field keys starting with an
// underscore never trigger a fetch. Only Service.At and Service.Delete drop
// the cache.
//
// Root.Namespaces and Namespace.Services always query the platform and
// return fresh handles.
//
// # Versions
//
// A service handle starts at version "0.1". At switches the same handle to
// another version:
//
//	svc := ns.Service("genes")
//	svc.At("2.0")         // svc now addresses genes_v2.0
//	t, _ := svc.Type(ctx) // fetched for 2.0
//
// # Endpoint Results
//
// Services of type "query" and "map_filter" answer with a JSON envelope;
// Endpoint.Call checks the envelope status and exposes its result as
// Result.Value. For any other type the raw response is returned and only the
// HTTP status is checked.
//
// # Registration
//
// Namespace.Register submits an artifact built by package artifact:
//
//	art, err := artifact.Package("./services/genes")
//	if err != nil {
//		log.Fatal(err)
//	}
//	svc, err := root.Namespace("demo").Register(ctx, art, sdk.WithTimeout(2*time.Minute))
//
// Register polls the new service until it is ready, the platform reports an
// error (apierr.ErrRegistrationFailed) or the timeout elapses
// (apierr.ErrRegistrationTimeout). Pass NonBlocking to get the pending
// handle back immediately.
//
// # Errors
//
// Platform failures are *apierr.Error values carrying the message and the
// decoded response envelope:
//
//	if e, ok := apierr.As(err); ok {
//		fmt.Println(e.Message, e.Payload)
//	}
//
// # Logging
//
// The package installs a console zap logger at info level on init. Its level
// is process-wide and set by every New: config.Config.Debug selects debug,
// which logs every request, otherwise info is restored.
// Applications may replace it with zap.ReplaceGlobals.
//
// # Concurrency
//
// Handles are not safe for concurrent use. The only blocking wait inside the
// SDK is the registration poll, which honours context cancellation.
package sdk
