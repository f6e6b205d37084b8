package gen

import (
	"errors"
	"fmt"
	"go/ast"
	"go/build/constraint"
	"go/parser"
	"go/token"
	"go/types"
	"runtime"
	"strconv"
	"strings"

	"github.com/hengadev/errsx"
	"github.com/saylorsolutions/xorlit/pkg/xorlit"
)

const (
	ImportPath = "github.com/saylorsolutions/xorlit/pkg/xorlit"

	litFunc    = "Lit"
	litKeyFunc = "LitKey"
)

var (
	ErrInvalidManifest = errors.New("invalid manifest")
)

// Literal is a single xorlit.Lit or xorlit.LitKey declaration found in a manifest.
type Literal struct {
	Name  string
	Value string
	Pos   token.Position
	// Key is set when the declaration gives its own key with LitKey.
	Key *xorlit.Key
}

// Manifest is a Go source file declaring the literals to be screened.
type Manifest struct {
	Path     string
	Package  string
	Literals []Literal
	// Excluded is true if a build constraint keeps the manifest out of normal builds.
	Excluded bool
}

// ParseManifest reads and validates the manifest at path.
// Every invalid declaration is reported in the returned error, not just the first.
func ParseManifest(path string) (*Manifest, error) {
	return parseManifest(token.NewFileSet(), path, nil)
}

func parseManifest(fset *token.FileSet, path string, src any) (*Manifest, error) {
	f, err := parser.ParseFile(fset, path, src, parser.ParseComments)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidManifest, err)
	}
	alias, err := importAlias(f)
	if err != nil {
		return nil, err
	}

	m := &Manifest{
		Path:     path,
		Package:  f.Name.Name,
		Excluded: excludedFromBuild(f),
	}
	var (
		errs = make(errsx.Map)
		seen = map[string]token.Position{}
	)
	for _, decl := range f.Decls {
		gd, ok := decl.(*ast.GenDecl)
		if !ok || gd.Tok != token.VAR {
			continue
		}
		for _, spec := range gd.Specs {
			vs := spec.(*ast.ValueSpec)
			for i, name := range vs.Names {
				if i >= len(vs.Values) {
					break
				}
				call, ok := litCall(vs.Values[i], alias)
				if !ok {
					continue
				}
				pos := fset.Position(call.Pos())
				lit, err := parseLiteral(name.Name, call, pos)
				if err != nil {
					errs.Set(pos.String(), err)
					continue
				}
				if prev, ok := seen[lit.Name]; ok {
					errs.Set(pos.String(), fmt.Errorf("literal '%s' already declared at %s", lit.Name, prev))
					continue
				}
				seen[lit.Name] = pos
				m.Literals = append(m.Literals, lit)
			}
		}
	}
	if !errs.IsEmpty() {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidManifest, path, errs.AsError())
	}
	if len(m.Literals) == 0 {
		return nil, fmt.Errorf("%w: %s: no %s.%s or %s.%s declarations found", ErrInvalidManifest, path, alias, litFunc, alias, litKeyFunc)
	}
	return m, nil
}

func importAlias(f *ast.File) (string, error) {
	for _, imp := range f.Imports {
		path, err := strconv.Unquote(imp.Path.Value)
		if err != nil || path != ImportPath {
			continue
		}
		if imp.Name == nil {
			return "xorlit", nil
		}
		switch imp.Name.Name {
		case ".", "_":
			return "", fmt.Errorf("%w: %s must be imported by name, not as '%s'", ErrInvalidManifest, ImportPath, imp.Name.Name)
		}
		return imp.Name.Name, nil
	}
	return "", fmt.Errorf("%w: %s is not imported", ErrInvalidManifest, ImportPath)
}

func litCall(expr ast.Expr, alias string) (*ast.CallExpr, bool) {
	call, ok := expr.(*ast.CallExpr)
	if !ok {
		return nil, false
	}
	sel, ok := call.Fun.(*ast.SelectorExpr)
	if !ok {
		return nil, false
	}
	pkg, ok := sel.X.(*ast.Ident)
	if !ok || pkg.Name != alias {
		return nil, false
	}
	return call, sel.Sel.Name == litFunc || sel.Sel.Name == litKeyFunc
}

func parseLiteral(name string, call *ast.CallExpr, pos token.Position) (Literal, error) {
	lit := Literal{Name: name, Pos: pos}
	switch name {
	case "_":
		return lit, errors.New("literal must be assigned to a named variable")
	case "xorlit":
		return lit, errors.New("literal name 'xorlit' conflicts with the generated import")
	case "init", "main":
		return lit, fmt.Errorf("literal name '%s' can't be used for a generated accessor function", name)
	}
	if types.Universe.Lookup(name) != nil {
		return lit, fmt.Errorf("literal name '%s' shadows a predeclared identifier, which breaks the generated accessor", name)
	}

	fn := call.Fun.(*ast.SelectorExpr).Sel.Name
	want := 1
	if fn == litKeyFunc {
		want = 2
	}
	if len(call.Args) != want {
		return lit, fmt.Errorf("%s expects %d argument(s), got %d", fn, want, len(call.Args))
	}

	str, ok := call.Args[0].(*ast.BasicLit)
	if !ok || str.Kind != token.STRING {
		return lit, fmt.Errorf("%s requires a string literal as its first argument", fn)
	}
	value, err := strconv.Unquote(str.Value)
	if err != nil {
		return lit, fmt.Errorf("unable to unquote string literal: %w", err)
	}
	lit.Value = value

	if fn == litKeyFunc {
		num, ok := call.Args[1].(*ast.BasicLit)
		if !ok || num.Kind != token.INT {
			return lit, fmt.Errorf("%s requires an integer literal key", fn)
		}
		n, err := strconv.ParseUint(strings.ReplaceAll(num.Value, "_", ""), 0, 8)
		if err != nil {
			return lit, fmt.Errorf("key %s doesn't fit in a byte: %w", num.Value, err)
		}
		key := xorlit.Key(n)
		lit.Key = &key
	}
	return lit, nil
}

// excludedFromBuild reports whether a //go:build constraint keeps the file out of a plain build for this platform.
// Tags other than the platform, compiler, and release tags are treated as unset.
func excludedFromBuild(f *ast.File) bool {
	for _, group := range f.Comments {
		if group.Pos() >= f.Package {
			break
		}
		for _, c := range group.List {
			if !constraint.IsGoBuild(c.Text) {
				continue
			}
			expr, err := constraint.Parse(c.Text)
			if err != nil {
				continue
			}
			return !expr.Eval(defaultTag)
		}
	}
	return false
}

func defaultTag(tag string) bool {
	switch tag {
	case runtime.GOOS, runtime.GOARCH, runtime.Compiler:
		return true
	}
	return strings.HasPrefix(tag, "go1.")
}
