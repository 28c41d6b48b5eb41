// Package errors provides structured, coded errors for the reactive runtime
// and the tools built on it.
//
// Every error carries a short code that maps to a registered template:
//
//   - R0xx: runtime errors raised by the reactive core (cascade depth, disposal)
//   - C1xx: configuration errors (missing or invalid reactive.json)
//   - P06x: protocol errors from the live websocket host
//   - S08x: snapshot storage errors
//
// # Usage
//
//	err := errors.New("R001").
//	    WithDetail("effect \"render\" re-entered 65 times").
//	    WithSuggestion("Break the write cycle between the two effects")
//
//	fmt.Println(err.Format())
//	// Output:
//	// ERROR R001: Cascade depth exceeded
//	//
//	//   effect "render" re-entered 65 times
//	//
//	//   Hint: Break the write cycle between the two effects
package errors
