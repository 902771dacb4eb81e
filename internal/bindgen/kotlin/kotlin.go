// Package kotlin is the built-in renderer: it turns one component's interface
// description into Kotlin binding text, one blob per source set, plus the
// cinterop header for Kotlin/Native.
package kotlin

import (
	"fmt"
	"strings"

	"github.com/ktbind-build/ktbind/internal/bindgen"
)

type Renderer struct{}

func New() *Renderer { return &Renderer{} }

func (r *Renderer) Render(cfg *bindgen.Config, ci *bindgen.ComponentInterface) (*bindgen.Bundle, error) {
	if err := validateTypes(cfg, ci); err != nil {
		return nil, err
	}

	bundle := new(bindgen.Bundle)

	if !cfg.Multiplatform {
		bundle.Common = renderSource(cfg, ci, modeSingle)
		return bundle, nil
	}

	bundle.Common = renderSource(cfg, ci, modeExpect)
	if cfg.HasTarget(bindgen.TargetJvm) {
		bundle.Jvm = renderActual(cfg, ci, "jvm")
	}
	if cfg.HasTarget(bindgen.TargetAndroid) {
		bundle.Android = renderActual(cfg, ci, "android")
	}
	if cfg.HasTarget(bindgen.TargetNative) {
		bundle.Native = renderActual(cfg, ci, "native")
		bundle.Header = renderHeader(ci)
	}
	if cfg.GenerateStub {
		bundle.Stub = renderStub(cfg, ci)
	}

	return bundle, nil
}

// validateTypes checks every type reference of the interface up front, so the
// render paths below cannot hit an unresolvable name and leak it into the
// output as uncompilable Kotlin.
func validateTypes(cfg *bindgen.Config, ci *bindgen.ComponentInterface) error {
	checkFn := func(owner string, fn bindgen.Function) error {
		for _, arg := range fn.Args {
			if _, err := kotlinType(cfg, arg.Type); err != nil {
				return fmt.Errorf("%s: argument %s: %w", owner, arg.Name, err)
			}
		}
		if fn.Return != "" {
			if _, err := kotlinType(cfg, fn.Return); err != nil {
				return fmt.Errorf("%s: return type: %w", owner, err)
			}
		}
		return nil
	}

	for _, rec := range ci.Records {
		for _, f := range rec.Fields {
			if _, err := kotlinType(cfg, f.Type); err != nil {
				return fmt.Errorf("record %s: field %s: %w", rec.Name, f.Name, err)
			}
		}
	}
	for _, obj := range ci.Objects {
		for _, m := range obj.Methods {
			if err := checkFn("method "+obj.Name+"."+m.Name, m); err != nil {
				return err
			}
		}
	}
	for _, fn := range ci.Functions {
		if err := checkFn("function "+fn.Name, fn); err != nil {
			return err
		}
	}
	return nil
}

type renderMode int

const (
	modeSingle renderMode = iota // one flat source set, concrete declarations
	modeExpect                   // commonMain, expect declarations
)

func header(sb *strings.Builder, cfg *bindgen.Config, ci *bindgen.ComponentInterface) {
	writeln(sb, "// Generated by ktbind from the ", ci.Namespace, " interface description. Do not edit.")
	writeln(sb, "package ", cfg.EffectivePackage(ci.Namespace))
	writeln(sb)
}

// renderSource emits the shared core: records, enums, and the API surface
// (expect declarations in multiplatform mode, concrete JNI-backed ones in
// single-target mode).
func renderSource(cfg *bindgen.Config, ci *bindgen.ComponentInterface, mode renderMode) string {
	var sb strings.Builder
	header(&sb, cfg, ci)

	for _, rec := range ci.Records {
		write(&sb, "data class ", rec.Name, "(")
		for i, f := range rec.Fields {
			if i > 0 {
				write(&sb, ", ")
			}
			write(&sb, "val ", f.Name, ": ", mustKotlinType(cfg, f.Type))
		}
		writeln(&sb, ")")
	}
	if len(ci.Records) > 0 {
		writeln(&sb)
	}

	for _, en := range ci.Enums {
		write(&sb, "enum class ", en.Name, " { ")
		write(&sb, strings.Join(en.Variants, ", "))
		writeln(&sb, " }")
	}
	if len(ci.Enums) > 0 {
		writeln(&sb)
	}

	prefix := ""
	if mode == modeExpect {
		prefix = "expect "
	}

	for _, obj := range ci.Objects {
		writeln(&sb, prefix, "class ", obj.Name, " {")
		for _, m := range obj.Methods {
			write(&sb, "    ", prefix, "fun ", m.Name, signature(cfg, m))
			if mode == modeSingle {
				write(&sb, " = ", runtimeObject(ci), ".", nativeName(ci, obj.Name+"_"+m.Name), callArgs(m, "handle"))
			}
			writeln(&sb)
		}
		if mode == modeSingle {
			writeln(&sb, "    private val handle: Long = 0L")
		}
		writeln(&sb, "}")
	}
	if len(ci.Objects) > 0 {
		writeln(&sb)
	}

	for _, fn := range ci.Functions {
		write(&sb, prefix, "fun ", fn.Name, signature(cfg, fn))
		if mode == modeSingle {
			write(&sb, " = ", runtimeObject(ci), ".", nativeName(ci, fn.Name), callArgs(fn, ""))
		}
		writeln(&sb)
	}

	if mode == modeSingle {
		writeln(&sb)
		runtimeDecl(&sb, cfg, ci)
	}

	return sb.String()
}

// renderActual emits one platform source set: the actual declarations backing
// the common expects, delegating into the native library.
func renderActual(cfg *bindgen.Config, ci *bindgen.ComponentInterface, target string) string {
	var sb strings.Builder
	header(&sb, cfg, ci)

	native := target == "native"
	if native {
		writeln(&sb, "import kotlinx.cinterop.*")
		writeln(&sb)
	}

	for _, obj := range ci.Objects {
		writeln(&sb, "actual class ", obj.Name, " {")
		writeln(&sb, "    private val handle: Long = 0L")
		for _, m := range obj.Methods {
			write(&sb, "    actual fun ", m.Name, signature(cfg, m), " = ")
			if native {
				writeln(&sb, nativeName(ci, obj.Name+"_"+m.Name), callArgs(m, "handle"))
			} else {
				writeln(&sb, runtimeObject(ci), ".", nativeName(ci, obj.Name+"_"+m.Name), callArgs(m, "handle"))
			}
		}
		writeln(&sb, "}")
	}
	if len(ci.Objects) > 0 {
		writeln(&sb)
	}

	for _, fn := range ci.Functions {
		write(&sb, "actual fun ", fn.Name, signature(cfg, fn), " = ")
		if native {
			writeln(&sb, nativeName(ci, fn.Name), callArgs(fn, ""))
		} else {
			writeln(&sb, runtimeObject(ci), ".", nativeName(ci, fn.Name), callArgs(fn, ""))
		}
	}

	if !native {
		writeln(&sb)
		runtimeDecl(&sb, cfg, ci)
	}

	return sb.String()
}

// renderStub emits actuals that fail at runtime, for source sets covering
// platforms the native library does not support.
func renderStub(cfg *bindgen.Config, ci *bindgen.ComponentInterface) string {
	var sb strings.Builder
	header(&sb, cfg, ci)

	fail := `throw NotImplementedError("` + ci.Namespace + ` bindings are not available on this platform")`

	for _, obj := range ci.Objects {
		writeln(&sb, "actual class ", obj.Name, " {")
		for _, m := range obj.Methods {
			writeln(&sb, "    actual fun ", m.Name, signature(cfg, m), " = ", fail)
		}
		writeln(&sb, "}")
	}

	for _, fn := range ci.Functions {
		writeln(&sb, "actual fun ", fn.Name, signature(cfg, fn), " = ", fail)
	}

	return sb.String()
}

// runtimeDecl emits the JNI loader object the JVM-flavored source sets
// delegate to.
func runtimeDecl(sb *strings.Builder, cfg *bindgen.Config, ci *bindgen.ComponentInterface) {
	writeln(sb, "internal object ", runtimeObject(ci), " {")
	writeln(sb, "    init {")
	writef(sb, "        System.loadLibrary(%q)\n", cfg.CdylibName)
	writeln(sb, "    }")
	writeln(sb)
	for _, obj := range ci.Objects {
		for _, m := range obj.Methods {
			writeln(sb, "    external fun ", nativeName(ci, obj.Name+"_"+m.Name), externSignature(cfg, m, true))
		}
	}
	for _, fn := range ci.Functions {
		writeln(sb, "    external fun ", nativeName(ci, fn.Name), externSignature(cfg, fn, false))
	}
	writeln(sb, "}")
}

// renderHeader emits the C declarations the Kotlin/Native cinterop tool
// compiles against.
func renderHeader(ci *bindgen.ComponentInterface) string {
	var sb strings.Builder
	writeln(&sb, "// Generated by ktbind for the ", ci.Namespace, " component. Do not edit.")
	writeln(&sb, "#pragma once")
	writeln(&sb)
	writeln(&sb, "#include <stdint.h>")
	writeln(&sb)

	for _, obj := range ci.Objects {
		for _, m := range obj.Methods {
			writeln(&sb, cPrototype(ci, obj.Name+"_"+m.Name, m, true))
		}
	}
	for _, fn := range ci.Functions {
		writeln(&sb, cPrototype(ci, fn.Name, fn, false))
	}

	return sb.String()
}

func runtimeObject(ci *bindgen.ComponentInterface) string {
	ns := ci.Namespace
	if ns != "" {
		ns = strings.ToUpper(ns[:1]) + ns[1:]
	}
	return ns + "Runtime"
}

func nativeName(ci *bindgen.ComponentInterface, name string) string {
	return ci.CrateName + "_" + strings.ToLower(name)
}

// signature renders `(a: Int, b: Int): Int`, with an empty return type for
// Unit functions.
func signature(cfg *bindgen.Config, fn bindgen.Function) string {
	var sb strings.Builder
	write(&sb, "(")
	for i, arg := range fn.Args {
		if i > 0 {
			write(&sb, ", ")
		}
		write(&sb, arg.Name, ": ", mustKotlinType(cfg, arg.Type))
	}
	write(&sb, ")")
	if fn.Return != "" {
		write(&sb, ": ", mustKotlinType(cfg, fn.Return))
	}
	return sb.String()
}

func externSignature(cfg *bindgen.Config, fn bindgen.Function, withHandle bool) string {
	var sb strings.Builder
	write(&sb, "(")
	if withHandle {
		write(&sb, "handle: Long")
	}
	for i, arg := range fn.Args {
		if i > 0 || withHandle {
			write(&sb, ", ")
		}
		write(&sb, arg.Name, ": ", mustKotlinType(cfg, arg.Type))
	}
	write(&sb, ")")
	if fn.Return != "" {
		write(&sb, ": ", mustKotlinType(cfg, fn.Return))
	}
	return sb.String()
}

func callArgs(fn bindgen.Function, extra string) string {
	args := make([]string, 0, len(fn.Args)+1)
	if extra != "" {
		args = append(args, extra)
	}
	for _, arg := range fn.Args {
		args = append(args, arg.Name)
	}
	return "(" + strings.Join(args, ", ") + ")"
}

func cPrototype(ci *bindgen.ComponentInterface, name string, fn bindgen.Function, withHandle bool) string {
	var sb strings.Builder
	write(&sb, cType(fn.Return), " ", nativeName(ci, name), "(")
	if withHandle {
		write(&sb, "int64_t handle")
	}
	for i, arg := range fn.Args {
		if i > 0 || withHandle {
			write(&sb, ", ")
		}
		write(&sb, cType(arg.Type), " ", arg.Name)
	}
	write(&sb, ");")
	return sb.String()
}

var kotlinScalars = map[string]string{
	"bool":   "Boolean",
	"string": "String",
	"bytes":  "ByteArray",
	"i8":     "Byte",
	"u8":     "UByte",
	"i16":    "Short",
	"u16":    "UShort",
	"i32":    "Int",
	"u32":    "UInt",
	"i64":    "Long",
	"u64":    "ULong",
	"f32":    "Float",
	"f64":    "Double",
}

// kotlinType maps an interface-description type name to Kotlin. A dotted name
// refers to a type owned by another component and resolves through the
// external package map populated by the linker.
func kotlinType(cfg *bindgen.Config, t string) (string, error) {
	if kt, ok := kotlinScalars[t]; ok {
		return kt, nil
	}
	if crate, name, ok := strings.Cut(t, "."); ok {
		pkg, ok := cfg.ExternalPackages[crate]
		if !ok {
			return "", fmt.Errorf("type %q refers to unknown crate %q", t, crate)
		}
		return pkg + "." + name, nil
	}
	return t, nil // a type of this component
}

// mustKotlinType is for render paths that run after validateTypes, where
// resolution cannot fail anymore.
func mustKotlinType(cfg *bindgen.Config, t string) string {
	kt, err := kotlinType(cfg, t)
	if err != nil {
		panic(err)
	}
	return kt
}

var cScalars = map[string]string{
	"":       "void",
	"bool":   "int8_t",
	"string": "const char*",
	"bytes":  "RustBuffer",
	"i8":     "int8_t",
	"u8":     "uint8_t",
	"i16":    "int16_t",
	"u16":    "uint16_t",
	"i32":    "int32_t",
	"u32":    "uint32_t",
	"i64":    "int64_t",
	"u64":    "uint64_t",
	"f32":    "float",
	"f64":    "double",
}

func cType(t string) string {
	if ct, ok := cScalars[t]; ok {
		return ct
	}
	return "int64_t" // records, enums and objects pass by handle over the ABI
}
