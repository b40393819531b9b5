// Package style scopes component stylesheets to their host element and
// collects the scoped results for a request.
//
// Scope rewrites every selector of a stylesheet so it only matches inside
// the host element:
//
//	css, _ := style.Scope("h1{color:red;}", "my-header")
//	// my-header h1 {
//	//   color: red;
//	// }
//
// Scoping is idempotent. Selectors that already name the host are left
// alone, so a fragment can be scoped any number of times.
//
// An Aggregator gathers scoped fragments from any number of render calls
// and emits them once each, in first-seen order, as a single style block.
package style
