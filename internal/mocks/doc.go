// Package mocks provides centralized mock implementations for testing.
//
// Each mock has function fields for customising behaviour per test, default
// return values used when no function is set, and call tracking for
// verification:
//
//	assistant := &mocks.MockAssistant{
//	    ExplainFn: func(ctx context.Context, topic, about string) string {
//	        return "Water is polar."
//	    },
//	}
//
// When adding a new mock to this package:
//  1. Create a new file named after the interface being mocked
//  2. Implement the mock struct with function fields for each interface method
//  3. Document any helper methods or special functionality
package mocks
