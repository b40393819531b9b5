// Package errors provides coded, human-readable errors for the enhance
// command and its supporting packages.
//
// Each error code maps to a category, a short message and a longer
// explanation:
//
//	err := errors.New("E201").
//	    WithLocation("components/my-header.lua", 3, 0).
//	    WithSuggestion("Return a function from the chunk or define a global render function.").
//	    Wrap(cause)
//
//	fmt.Fprint(os.Stderr, err.Format())
//	// ERROR E201: Component failed to compile
//	//
//	//   components/my-header.lua:3
//	//   ...
//
// # Codes
//
//   - E1xx: configuration
//   - E2xx: component sources and registration
//   - E3xx: rendering and pages
//   - E4xx: command line
package errors
