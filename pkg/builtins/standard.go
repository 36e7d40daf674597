package builtins

import "sort"

// GetStandardInitializers returns every built-in module the runtime ships,
// sorted by Priority() so that a module's dependencies (its prototype chain
// parent, the well-known symbols it reads, ...) are always initialized first.
func GetStandardInitializers() []BuiltinInitializer {
	initializers := []BuiltinInitializer{
		// Utility/compile-time types and global constants.
		&UtilityTypesInitializer{},
		&GlobalsInitializer{},

		// Core prototype chain: Object -> Function -> Array, plus Symbol
		// (needed early for the well-known iterator protocol) and Reflect.
		&ObjectInitializer{},
		&SymbolInitializer{},
		&FunctionInitializer{},
		&ReflectInitializer{},
		&IteratorInitializer{},
		&ArrayInitializer{},
		&ArgumentsInitializer{},
		&GeneratorInitializer{},
		&AsyncGeneratorInitializer{},

		// Error family.
		&ErrorInitializer{},
		&ReferenceErrorInitializer{},
		&SyntaxErrorInitializer{},
		&TypeErrorInitializer{},

		// Primitive wrapper objects.
		&BooleanInitializer{},
		&StringInitializer{},
		&NumberInitializer{},
		&BigIntInitializer{},
		&RegExpInitializer{},

		// Library objects.
		&MathInitializer{},
		&JSONInitializer{},
		&ConsoleInitializer{},
		&DateInitializer{},
		&PerformanceInitializer{},
		&TemporalInitializer{},

		// Keyed collections and weak references.
		&MapInitializer{},
		&SetInitializer{},
		&WeakMapInitializer{},
		&WeakSetInitializer{},
		&WeakRefInitializer{},

		// Binary data.
		&ArrayBufferInitializer{},
		&SharedArrayBufferInitializer{},
		&DataViewInitializer{},
		&TypedArrayInitializer{},
		&Int8ArrayInitializer{},
		&Uint8ArrayInitializer{},
		&Uint8ClampedArrayInitializer{},
		&Uint16ArrayInitializer{},
		&Int32ArrayInitializer{},
		&Uint32ArrayInitializer{},
		&Float32ArrayInitializer{},
		&Float64ArrayInitializer{},
		&BigInt64ArrayInitializer{},
		&BigUint64ArrayInitializer{},
		&AtomicsInitializer{},

		// Control-flow and metaprogramming.
		&PromiseInitializer{},
		&ProxyInitializer{},

		// Host-platform-ish conveniences the pack's other examples lean on
		// (fetch/Blob/FormData/AbortController skeletons, see SPEC_FULL.md).
		&AbortControllerInitializer{},
		&BlobInitializer{},
		&FormDataInitializer{},
		&FetchInitializer{},

		// Non-standard engine reflection namespace, see DESIGN.md.
		&EngineInitializer{},
	}

	sort.SliceStable(initializers, func(i, j int) bool {
		return initializers[i].Priority() < initializers[j].Priority()
	})

	return initializers
}
