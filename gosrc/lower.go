// Package gosrc lowers type-checked Go packages to the program model.
//
// Struct types become struct declarations with one field member per struct
// field. A package-level function whose first result is T or *T is a
// constructor of T; keyed composite literals of T and assignments to T's
// fields inside its body are assignment evidence. Every function or method with
// a body contributes its calls, including the calls of nested closures.
//
// Doc comment directives carry the markers the analyzers look for:
//
//	//rulecheck:constructor
//	//rulecheck:sensitive "reason"
package gosrc

import (
	"go/ast"
	"go/token"
	"go/types"

	"golang.org/x/tools/go/ast/inspector"
	"golang.org/x/tools/go/types/typeutil"

	"github.com/SergeiSkv/rulecheck/analyzer"
	"github.com/SergeiSkv/rulecheck/models"
	"github.com/SergeiSkv/rulecheck/program"
)

// Target describes Go: a variadic call without variadic arguments passes a nil slice.
var Target = program.Target{Runtime: "go", EmptyArraySingleton: true}

// Package is a type-checked package. Inspector is optional and is built from
// Files when nil.
type Package struct {
	Fset      *token.FileSet
	Types     *types.Package
	Info      *types.Info
	Files     []*ast.File
	Inspector *inspector.Inspector
}

// Lower converts p to a program unit
func Lower(p Package) *program.Unit {
	l := &lowerer{
		p:     p,
		qual:  types.RelativeTo(p.Types),
		unit:  &program.Unit{Name: packageName(p), Target: Target},
		types: make(map[*types.TypeName]*program.TypeDecl),
		funcs: make(map[*ast.FuncDecl]*program.Function),
		ctors: make(map[*ast.FuncDecl]*ctorScope),
	}
	l.lowerDecls()
	l.lowerBodies()
	return l.unit
}

func packageName(p Package) string {
	if p.Types != nil {
		return p.Types.Path()
	}
	if len(p.Files) > 0 {
		return p.Files[0].Name.Name
	}
	return "main"
}

type lowerer struct {
	p     Package
	qual  types.Qualifier
	unit  *program.Unit
	types map[*types.TypeName]*program.TypeDecl
	funcs map[*ast.FuncDecl]*program.Function
	ctors map[*ast.FuncDecl]*ctorScope
}

type ctorScope struct {
	obj    *types.TypeName
	ctor   *program.Constructor
	params map[types.Object]string
}

func (l *lowerer) span(pos, end token.Pos) models.Span {
	return models.SpanOf(l.p.Fset, pos, end)
}

func (l *lowerer) typeString(t types.Type) string {
	return types.TypeString(t, l.qual)
}

// lowerDecls collects types before functions so constructors in other files
// of the package resolve.
func (l *lowerer) lowerDecls() {
	for _, file := range l.p.Files {
		l.unit.Suppressions = append(l.unit.Suppressions, analyzer.FileSuppressions(l.p.Fset, file)...)
		for _, decl := range file.Decls {
			gen, ok := decl.(*ast.GenDecl)
			if !ok || gen.Tok != token.TYPE {
				continue
			}
			for _, spec := range gen.Specs {
				if ts, ok := spec.(*ast.TypeSpec); ok {
					l.lowerTypeSpec(ts)
				}
			}
		}
	}

	for _, file := range l.p.Files {
		for _, decl := range file.Decls {
			if fn, ok := decl.(*ast.FuncDecl); ok {
				l.lowerFuncDecl(fn)
			}
		}
	}
}

func (l *lowerer) lowerTypeSpec(spec *ast.TypeSpec) {
	obj, ok := l.p.Info.Defs[spec.Name].(*types.TypeName)
	if !ok || obj.IsAlias() {
		return
	}
	st, ok := obj.Type().Underlying().(*types.Struct)
	if !ok {
		return
	}

	decl := &program.TypeDecl{
		Name: obj.Name(),
		Kind: program.TypeStruct,
		Span: l.span(spec.Name.Pos(), spec.Name.End()),
	}
	for i := range st.NumFields() {
		f := st.Field(i)
		if f.Name() == "_" {
			continue
		}
		decl.Members = append(decl.Members, &program.Member{
			Name:       f.Name(),
			Kind:       program.MemberField,
			Visibility: visibility(f.Exported()),
			Span:       l.span(f.Pos(), f.Pos()+token.Pos(len(f.Name()))),
		})
	}

	l.types[obj] = decl
	l.unit.Types = append(l.unit.Types, decl)
}

func visibility(exported bool) program.Visibility {
	if exported {
		return program.VisibilityPublic
	}
	return program.VisibilityNonPublic
}

func (l *lowerer) lowerFuncDecl(fn *ast.FuncDecl) {
	if fn.Body == nil {
		return
	}
	obj, ok := l.p.Info.Defs[fn.Name].(*types.Func)
	if !ok {
		return
	}

	attrs := attributes(fn.Doc)
	l.funcs[fn] = &program.Function{
		Name:       funcName(obj),
		Attributes: attrs,
		Span:       l.span(fn.Name.Pos(), fn.Name.End()),
	}
	l.unit.Functions = append(l.unit.Functions, l.funcs[fn])

	if fn.Recv == nil {
		l.lowerConstructor(fn, obj, attrs)
	}
}

func funcName(obj *types.Func) string {
	sig, _ := obj.Type().(*types.Signature)
	if sig != nil && sig.Recv() != nil {
		if tn := namedObject(sig.Recv().Type()); tn != nil {
			return tn.Name() + "." + obj.Name()
		}
	}
	return obj.Name()
}

func (l *lowerer) lowerConstructor(fn *ast.FuncDecl, obj *types.Func, attrs []program.Attribute) {
	sig, ok := obj.Type().(*types.Signature)
	if !ok || sig.Results().Len() == 0 {
		return
	}
	tn := namedObject(sig.Results().At(0).Type())
	decl, ok := l.types[tn]
	if !ok {
		return
	}

	scope := &ctorScope{
		obj:    tn,
		ctor:   &program.Constructor{Attributes: attrs, Span: l.span(fn.Name.Pos(), fn.Name.End())},
		params: make(map[types.Object]string, sig.Params().Len()),
	}
	params := sig.Params()
	for i := range params.Len() {
		v := params.At(i)
		if v.Name() == "" || v.Name() == "_" {
			continue
		}
		scope.ctor.Params = append(scope.ctor.Params, &program.Parameter{
			Name: v.Name(),
			Type: l.typeString(v.Type()),
			Span: l.span(v.Pos(), v.Pos()+token.Pos(len(v.Name()))),
		})
		scope.params[v] = v.Name()
	}

	decl.Constructors = append(decl.Constructors, scope.ctor)
	l.ctors[fn] = scope
}

// namedObject returns the declaring type name of T or *T
func namedObject(t types.Type) *types.TypeName {
	if t == nil {
		return nil
	}
	t = types.Unalias(t)
	if ptr, ok := t.(*types.Pointer); ok {
		t = types.Unalias(ptr.Elem())
	}
	if named, ok := t.(*types.Named); ok {
		return named.Origin().Obj()
	}
	return nil
}

func (l *lowerer) lowerBodies() {
	ins := l.p.Inspector
	if ins == nil {
		ins = inspector.New(l.p.Files)
	}

	filter := []ast.Node{(*ast.CallExpr)(nil), (*ast.CompositeLit)(nil), (*ast.AssignStmt)(nil)}
	ins.WithStack(filter, func(n ast.Node, push bool, stack []ast.Node) bool {
		if !push {
			return true
		}
		fn := enclosingFunc(stack)
		if fn == nil {
			return true
		}

		switch n := n.(type) {
		case *ast.CallExpr:
			if f := l.funcs[fn]; f != nil {
				if cs := l.lowerCall(n); cs != nil {
					f.Calls = append(f.Calls, cs)
				}
			}
		case *ast.CompositeLit:
			if scope := l.ctors[fn]; scope != nil {
				l.compositeEvidence(scope, n)
			}
		case *ast.AssignStmt:
			if scope := l.ctors[fn]; scope != nil {
				l.assignEvidence(scope, n)
			}
		}
		return true
	})
}

// enclosingFunc returns the top-level function declaration of the stack
func enclosingFunc(stack []ast.Node) *ast.FuncDecl {
	if len(stack) < 2 {
		return nil
	}
	fn, _ := stack[1].(*ast.FuncDecl)
	return fn
}

func (l *lowerer) paramRef(scope *ctorScope, expr ast.Expr) (string, bool) {
	ident, ok := ast.Unparen(expr).(*ast.Ident)
	if !ok {
		return "", false
	}
	name, ok := scope.params[l.p.Info.Uses[ident]]
	return name, ok
}

// compositeEvidence records T{Field: param} elements
func (l *lowerer) compositeEvidence(scope *ctorScope, lit *ast.CompositeLit) {
	if namedObject(l.p.Info.TypeOf(lit)) != scope.obj {
		return
	}
	for _, elt := range lit.Elts {
		kv, ok := elt.(*ast.KeyValueExpr)
		if !ok {
			continue
		}
		key, ok := kv.Key.(*ast.Ident)
		if !ok {
			continue
		}
		if param, ok := l.paramRef(scope, kv.Value); ok {
			scope.ctor.Assignments = append(scope.ctor.Assignments, program.Assignment{Member: key.Name, Parameter: param})
		}
	}
}

// assignEvidence records x.Field = param, including parallel assignments
func (l *lowerer) assignEvidence(scope *ctorScope, as *ast.AssignStmt) {
	if len(as.Lhs) != len(as.Rhs) {
		return
	}
	for i, lhs := range as.Lhs {
		sel, ok := ast.Unparen(lhs).(*ast.SelectorExpr)
		if !ok {
			continue
		}
		selection := l.p.Info.Selections[sel]
		if selection == nil || selection.Kind() != types.FieldVal || namedObject(selection.Recv()) != scope.obj {
			continue
		}
		if param, ok := l.paramRef(scope, as.Rhs[i]); ok {
			scope.ctor.Assignments = append(scope.ctor.Assignments, program.Assignment{Member: sel.Sel.Name, Parameter: param})
		}
	}
}

// lowerCall returns nil for conversions and builtins
func (l *lowerer) lowerCall(call *ast.CallExpr) *program.CallSite {
	info := l.p.Info
	fun := ast.Unparen(call.Fun)
	if tv, ok := info.Types[fun]; ok && (tv.IsType() || tv.IsBuiltin()) {
		return nil
	}

	cs := &program.CallSite{Span: l.span(call.Pos(), call.End())}
	t := info.TypeOf(fun)
	if t == nil {
		return cs
	}
	sig, ok := t.Underlying().(*types.Signature)
	if !ok {
		return cs
	}

	callee := &program.Callee{
		Name:     types.ExprString(fun),
		Dispatch: program.DispatchStatic,
		Params:   l.formals(sig),
	}
	if obj := typeutil.Callee(info, call); obj != nil {
		callee.Name = obj.Name()
	}
	if sel, ok := fun.(*ast.SelectorExpr); ok {
		if selection := info.Selections[sel]; selection != nil && selection.Kind() == types.MethodVal {
			cs.Receiver = l.lowerMethod(callee, selection)
		}
	}

	for i, arg := range call.Args {
		cs.Args = append(cs.Args, program.Argument{
			Spread: call.Ellipsis.IsValid() && i == len(call.Args)-1,
			Span:   l.span(arg.Pos(), arg.End()),
		})
	}

	cs.Resolved = true
	cs.Callee = callee
	return cs
}

func (l *lowerer) formals(sig *types.Signature) []program.FormalParam {
	params := sig.Params()
	if params.Len() == 0 {
		return nil
	}
	out := make([]program.FormalParam, params.Len())
	for i := range params.Len() {
		v := params.At(i)
		out[i] = program.FormalParam{Name: v.Name(), Type: l.typeString(v.Type())}
	}
	if sig.Variadic() {
		out[len(out)-1].Variadic = true
	}
	return out
}

// lowerMethod fills dispatch and declaring type of a method value call. A
// method promoted from an embedded interface dispatches dynamically even when
// the receiver is a struct value.
func (l *lowerer) lowerMethod(callee *program.Callee, selection *types.Selection) *program.Receiver {
	recvType := selection.Recv()
	recv := &program.Receiver{Type: l.typeString(recvType), ValueType: isValueType(recvType)}

	callee.Dispatch = program.DispatchDirect
	method, ok := selection.Obj().(*types.Func)
	if !ok {
		return recv
	}
	callee.Name = method.Name()

	sig, _ := method.Type().(*types.Signature)
	var declType types.Type
	if sig != nil && sig.Recv() != nil {
		declType = sig.Recv().Type()
		callee.DeclaringType = l.typeString(declType)
		callee.DeclaringValueType = isValueType(declType)
	}

	if types.IsInterface(recvType) || (declType != nil && types.IsInterface(declType)) {
		callee.Dispatch = program.DispatchVirtual
	}
	return recv
}

func isValueType(t types.Type) bool {
	switch t.Underlying().(type) {
	case *types.Struct, *types.Basic, *types.Array:
		return true
	}
	return false
}
