package specs

import (
	"fmt"

	"github.com/tokenscript-lang/tsi/internal/ast"
	"github.com/tokenscript-lang/tsi/internal/interpreter"
	"github.com/tokenscript-lang/tsi/internal/lexer"
	"github.com/tokenscript-lang/tsi/internal/managers"
	"github.com/tokenscript-lang/tsi/internal/parser"
	"github.com/tokenscript-lang/tsi/internal/values"
)

// compileScript parses src once in inline mode (spec §4.6: scripts are
// parsed once and their AST cached), the same mode used for a single token
// body.
func compileScript(src string) (*ast.Program, error) {
	l := lexer.New(src)
	p := parser.New(l)
	prog, err := p.ParseInline()
	if err != nil {
		return nil, err
	}
	if errs := l.Errors(); len(errs) > 0 {
		return nil, &errs[0]
	}
	return prog, nil
}

// ApplyPack registers every unit, color subtype, and scripted function in
// pack against it's managers (spec §6 "Manager registration"). Units
// register directly (§4.6.3's factor model needs no script); colors and
// functions whose docs carry a script body are compiled once here and
// evaluated against it on every call/conversion, matching spec §4.6.2's
// "initializer script... evaluated with input = arguments" and §4.6.4's
// "calls parse the script once, cache the AST".
func ApplyPack(pack *Pack, it *interpreter.Interpreter) error {
	for _, u := range pack.Units {
		kind := managers.UnitAbsolute
		if u.Kind == "relative" {
			kind = managers.UnitRelative
		}
		if err := it.Units.RegisterUnit(u.Name, u.Version, kind, u.ToBase); err != nil {
			return fmt.Errorf("registering unit %q: %w", u.Name, err)
		}
	}

	for _, f := range pack.Functions {
		if f.Script == "" {
			continue // arity-only spec with no body: nothing callable yet
		}
		prog, err := compileScript(f.Script)
		if err != nil {
			return fmt.Errorf("compiling function %q: %w", f.Name, err)
		}
		def := managers.FunctionDef{
			MinArgs: f.MinArgs,
			MaxArgs: f.MaxArgs,
			Fn:      scriptedFunctionBody(it, prog),
		}
		if err := it.Functions.RegisterFunction(f.Name, f.Version, def); err != nil {
			return fmt.Errorf("registering function %q: %w", f.Name, err)
		}
	}

	for _, spec := range pack.Colors {
		if err := it.Colors.RegisterSpecWithSchema(spec.Name, spec.Version, spec.Attrs,
			colorSchema(spec), scriptedColorInitializer(it, spec), genericColorFormatter); err != nil {
			return fmt.Errorf("registering color %q: %w", spec.Name, err)
		}
		// Colors and the type registry live in separate packages (symtable
		// doesn't import managers), so a spec pack is the one place that
		// sees both and can keep `variable x: Color.<Subtype>` declarations
		// in sync with what ColorManager actually knows.
		it.Types.RegisterColorSubtype(spec.Name)
		for _, conv := range spec.Conversions {
			prog, err := compileScript(conv.Script)
			if err != nil {
				return fmt.Errorf("compiling %s->%s conversion for %q: %w", conv.Source, conv.Target, spec.Name, err)
			}
			source := resolveSelfURI(conv.Source, spec.Name)
			target := resolveSelfURI(conv.Target, spec.Name)
			it.Colors.RegisterConversion(source, target, scriptedColorConversion(it, prog))
		}
	}

	return nil
}

// colorSchema returns spec's declared attribute-type schema, defaulting
// every Attrs entry to "number" when the pack declared none (see
// ColorSpecDoc.Schema's doc comment).
func colorSchema(spec ColorSpecDoc) map[string]string {
	if spec.Schema != nil {
		return spec.Schema
	}
	if len(spec.Attrs) == 0 {
		return nil
	}
	schema := make(map[string]string, len(spec.Attrs))
	for _, name := range spec.Attrs {
		schema[name] = "number"
	}
	return schema
}

// resolveSelfURI resolves the "$self" placeholder used by a ColorSpec's own
// conversion edges to the spec's own subtype name (spec §4.6.2).
func resolveSelfURI(uri, self string) string {
	if uri == "$self" {
		return self
	}
	return uri
}

// scriptedFunctionBody evaluates prog with `input` bound to the call's
// arguments as an (explicit) List (spec §4.6.4). Every call gets a fresh
// root scope (Interpreter.Run), but shares it's References map, managers,
// and type registry, so a user function's body can itself reference
// already-resolved tokens and call other registered functions/colors.
func scriptedFunctionBody(it *interpreter.Interpreter, prog *ast.Program) func([]values.Value) (values.Value, error) {
	return func(args []values.Value) (values.Value, error) {
		prevInput, hadInput := it.References["input"]
		it.References["input"] = &values.List{Elements: args, Implicit: false}
		defer restoreInput(it, prevInput, hadInput)
		return it.Run(prog)
	}
}

// scriptedColorInitializer builds a ColorInitializer that finds the
// Initializers entry matching the call keyword (the spec's `name`, since a
// ColorSpecDoc's constructor keyword is its own registered subtype name)
// and evaluates that entry's script, compiled once when the initializer is
// built, with `input` bound to args (spec §4.6.2). A Color result is
// returned as is and a Dictionary result is wrapped into
// Color.Dynamic(name, ...) by asColor; any other result is an error.
func scriptedColorInitializer(it *interpreter.Interpreter, spec ColorSpecDoc) managers.ColorInitializer {
	var prog *ast.Program
	var compileErr error
	scripted := false
	for _, initDoc := range spec.Initializers {
		if initDoc.Keyword == spec.Name {
			prog, compileErr = compileScript(initDoc.Script)
			scripted = true
			break
		}
	}
	return func(args []values.Value) (values.Color, error) {
		if !scripted {
			// No scripted initializer: fall back to a generic positional
			// constructor, attrs[i] = args[i] in declared order.
			return genericColorInitializer(spec.Attrs, spec.Name, args)
		}
		if compileErr != nil {
			return values.Color{}, fmt.Errorf("compiling %q initializer: %w", spec.Name, compileErr)
		}
		prevInput, hadInput := it.References["input"]
		it.References["input"] = &values.List{Elements: args, Implicit: false}
		result, err := it.Run(prog)
		restoreInput(it, prevInput, hadInput)
		if err != nil {
			return values.Color{}, err
		}
		return asColor(result, spec.Name, spec.Attrs)
	}
}

// scriptedColorConversion evaluates a conversion edge's script with `input`
// bound to the source Color (spec §4.6.2). The script's result is returned
// only if it is a Color; any other result is an error and is not wrapped
// into the target subtype.
func scriptedColorConversion(it *interpreter.Interpreter, prog *ast.Program) managers.ColorConversion {
	return func(c values.Color) (values.Color, error) {
		prevInput, hadInput := it.References["input"]
		it.References["input"] = c
		result, err := it.Run(prog)
		restoreInput(it, prevInput, hadInput)
		if err != nil {
			return values.Color{}, err
		}
		if col, ok := result.(values.Color); ok {
			return col, nil
		}
		return values.Color{}, fmt.Errorf("conversion script did not return a Color, got %s", result.TypeName())
	}
}

func restoreInput(it *interpreter.Interpreter, prev values.Value, had bool) {
	if had {
		it.References["input"] = prev
	} else {
		delete(it.References, "input")
	}
}

// genericColorInitializer builds a Color.Dynamic by binding args
// positionally to attrs, used when a ColorSpecDoc declares no scripted
// initializer for its own keyword.
func genericColorInitializer(attrs []string, subtype string, args []values.Value) (values.Color, error) {
	if len(args) != len(attrs) {
		return values.Color{}, fmt.Errorf("%s expects %d argument(s), got %d", subtype, len(attrs), len(args))
	}
	m := values.NewOrderedMap()
	for i, name := range attrs {
		m.Set(name, args[i])
	}
	return values.NewDynamicColor(subtype, m), nil
}

// asColor coerces an initializer script's result into a Color.Dynamic of
// the expected subtype: a script may directly construct one, or may return
// a Dictionary-shaped value that needs wrapping attribute-by-attribute.
func asColor(v values.Value, subtype string, attrs []string) (values.Color, error) {
	if c, ok := v.(values.Color); ok {
		return c, nil
	}
	dict, ok := v.(*values.Dictionary)
	if !ok {
		return values.Color{}, fmt.Errorf("%s initializer must return a Color or Dictionary, got %s", subtype, v.TypeName())
	}
	m := values.NewOrderedMap()
	for _, name := range attrs {
		val, _ := dict.Map.Get(name)
		if val == nil {
			val = values.Null{}
		}
		m.Set(name, val)
	}
	return values.NewDynamicColor(subtype, m), nil
}

// genericColorFormatter renders a Color.Dynamic as `<subtype>(v1, v2, ...)`
// in the spec's declared attribute order (spec §4.6.2 format_color_method),
// falling back to Color.String for anything else (e.g. Color.Hex).
func genericColorFormatter(c values.Color) string {
	return c.String()
}
