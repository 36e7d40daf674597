package builtins

import (
	"scriptrt/pkg/types"
	"scriptrt/pkg/vm"
)

// Priority for the non-standard $engine reflection namespace (after standard globals).
const PriorityEngine = 700

// EngineInitializer installs the non-standard `$engine` object host embedders
// and debugging tools can use to introspect the running realm without
// reaching for process-level APIs. It is not part of ECMA-262; see
// SPEC_FULL.md's host-extensions section.
type EngineInitializer struct{}

func (p *EngineInitializer) Name() string {
	return "$engine"
}

func (p *EngineInitializer) Priority() int {
	return PriorityEngine
}

func (p *EngineInitializer) InitTypes(ctx *TypeContext) error {
	typeInterface := types.NewObjectType().
		WithProperty("kind", types.String).
		WithOptionalProperty("name", types.String).
		WithOptionalProperty("properties", types.Any).
		WithOptionalProperty("elementType", types.Any).
		WithOptionalProperty("types", types.Any).
		WithOptionalProperty("parameters", types.Any).
		WithOptionalProperty("returnType", types.Any)

	if err := ctx.DefineTypeAlias("Type", typeInterface); err != nil {
		return err
	}

	reflectMethodType := types.NewObjectType().WithCallSignature(&types.Signature{
		ParameterTypes: []types.Type{},
		ReturnType:     typeInterface,
	})
	reflectMethodType.IsReflectIntrinsic = true

	engineType := types.NewObjectType().
		WithProperty("reflect", reflectMethodType)

	return ctx.DefineGlobal("$engine", engineType)
}

func (p *EngineInitializer) InitRuntime(ctx *RuntimeContext) error {
	vmInstance := ctx.VM

	engineObj := vm.NewObject(vmInstance.ObjectPrototype).AsPlainObject()

	// Reserved for a future compile-time `$engine.reflect<T>()` intrinsic;
	// the checker/compiler do not currently lower calls to it, so a direct
	// call just returns undefined rather than a type descriptor.
	engineObj.SetOwnNonEnumerable("reflect", vm.NewNativeFunction(0, false, "reflect", func(args []vm.Value) (vm.Value, error) {
		return vm.Undefined, nil
	}))

	return ctx.DefineGlobal("$engine", vm.NewValueFromPlainObject(engineObj))
}
