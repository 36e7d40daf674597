package tests

import (
	"testing"

	"scriptrt/pkg/driver"
	"scriptrt/pkg/vm"
)

func TestThisKeyword(t *testing.T) {
	tests := []struct {
		name     string
		code     string
		expected interface{}
	}{
		{
			name:     "this in global context returns undefined",
			code:     "this;",
			expected: nil, // undefined
		},
		{
			name: "this in regular function returns undefined",
			code: `
				function regularFunc() {
					return this;
				}
				regularFunc();
			`,
			expected: nil, // undefined
		},
		{
			name: "this in method call refers to object",
			code: `
				let obj = {
					name: "test",
					getName: function() {
						return this.name;
					}
				};
				obj.getName();
			`,
			expected: "test",
		},
		{
			name: "this in nested method call refers to immediate object",
			code: `
				let obj = {
					value: 42,
					nested: {
						value: 100,
						getValue: function() {
							return this.value;
						}
					}
				};
				obj.nested.getValue();
			`,
			expected: float64(100),
		},
		{
			name: "this works with multiple properties",
			code: `
				let person = {
					firstName: "John",
					lastName: "Doe",
					getFullName: function() {
						return this.firstName + " " + this.lastName;
					}
				};
				person.getFullName();
			`,
			expected: "John Doe",
		},
		{
			name: "this works with method that modifies object",
			code: `
				let counter = {
					count: 0,
					increment: function() {
						return (this.count = this.count + 1);
					}
				};
				counter.increment();
			`,
			expected: float64(1),
		},
		{
			name: "this works with chained method calls",
			code: `
				let obj = {
					value: 10,
					double: function() {
						this.value = this.value * 2;
						return this;
					},
					getValue: function() {
						return this.value;
					}
				};
				obj.double().getValue();
			`,
			expected: float64(20),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// FIXME: In ES modules (strict mode), `this` at top level should be undefined.
			// Currently scriptrt returns the global object. Skip until fixed.
			if tt.name == "this in global context returns undefined" {
				t.Skip("FIXME: this at global scope returns global object instead of undefined")
			}

			// Create a Scriptrt instance and use its RunCode method
			p := driver.NewScriptrt()
			result, errs := p.RunCode(tt.code, driver.RunOptions{})
			if len(errs) > 0 {
				t.Fatalf("Unexpected error: %v", errs)
			}

			// Convert VM Value to Go value for comparison
			var actualValue interface{}
			switch result.Type() {
			case vm.TypeUndefined:
				actualValue = nil
			case vm.TypeNull:
				actualValue = nil
			case vm.TypeString:
				actualValue = result.AsString()
			case vm.TypeFloatNumber, vm.TypeIntegerNumber:
				actualValue = result.ToFloat()
			case vm.TypeBoolean:
				actualValue = result.AsBoolean()
			default:
				// For other types like objects, we could inspect the string representation
				actualValue = result.Inspect()
			}

			if actualValue != tt.expected {
				t.Errorf("Expected %v (%T), got %v (%T)", tt.expected, tt.expected, actualValue, actualValue)
			}
		})
	}
}
