package gosrc

import (
	"context"
	"errors"
	"fmt"
	"go/ast"
	"go/importer"
	"go/token"
	"go/types"
	"log/slog"
	"strings"

	"golang.org/x/tools/go/packages"

	"github.com/SergeiSkv/rulecheck/program"
)

// ErrNoPackages is returned when patterns match no type-checked package
var ErrNoPackages = errors.New("no packages matched")

// LoadConfig tunes package loading
type LoadConfig struct {
	Dir        string
	Tests      bool
	BuildFlags []string
}

const loadMode = packages.NeedName | packages.NeedFiles | packages.NeedCompiledGoFiles |
	packages.NeedSyntax | packages.NeedTypes | packages.NeedTypesInfo

// Load type-checks the packages matching patterns and lowers each of them.
// Packages with errors are lowered as far as type information allows.
func Load(ctx context.Context, patterns []string, cfg LoadConfig) ([]*program.Unit, error) {
	if len(patterns) == 0 {
		patterns = []string{"./..."}
	}

	fset := token.NewFileSet()
	pcfg := &packages.Config{
		Context:    ctx,
		Dir:        cfg.Dir,
		Tests:      cfg.Tests,
		BuildFlags: cfg.BuildFlags,
		Fset:       fset,
		Mode:       loadMode,
	}

	pkgs, err := packages.Load(pcfg, patterns...)
	if err != nil {
		return nil, fmt.Errorf("failed to load packages: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	pkgs = dropTestDuplicates(pkgs)
	units := make([]*program.Unit, 0, len(pkgs))
	for _, pkg := range pkgs {
		for _, e := range pkg.Errors {
			slog.Warn("package error", "package", pkg.ID, "error", e.Error())
		}
		if pkg.Types == nil || pkg.TypesInfo == nil || len(pkg.Syntax) == 0 {
			continue
		}
		units = append(units, LowerPackage(fset, pkg))
	}

	if len(units) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoPackages, strings.Join(patterns, " "))
	}
	slog.Debug("packages lowered", "patterns", patterns, "units", len(units))
	return units, nil
}

// dropTestDuplicates keeps the test variant "p [p.test]" of a package instead
// of p, and drops generated test mains.
func dropTestDuplicates(pkgs []*packages.Package) []*packages.Package {
	withVariant := make(map[string]bool)
	for _, pkg := range pkgs {
		if pkg.ID != pkg.PkgPath && !strings.HasSuffix(pkg.PkgPath, ".test") {
			withVariant[pkg.PkgPath] = true
		}
	}

	out := pkgs[:0:0]
	for _, pkg := range pkgs {
		switch {
		case strings.HasSuffix(pkg.PkgPath, ".test"):
		case pkg.ID == pkg.PkgPath && withVariant[pkg.PkgPath]:
		default:
			out = append(out, pkg)
		}
	}
	return out
}

// LowerPackage lowers a package loaded with syntax and type information
func LowerPackage(fset *token.FileSet, pkg *packages.Package) *program.Unit {
	unit := Lower(Package{
		Fset:  fset,
		Types: pkg.Types,
		Info:  pkg.TypesInfo,
		Files: pkg.Syntax,
	})
	unit.Name = pkg.ID
	return unit
}

// CheckFiles type-checks parsed files of a single package without the go
// command, importing dependencies from compiler export data.
func CheckFiles(fset *token.FileSet, path string, files []*ast.File) (*program.Unit, error) {
	info := &types.Info{
		Types:      make(map[ast.Expr]types.TypeAndValue),
		Defs:       make(map[*ast.Ident]types.Object),
		Uses:       make(map[*ast.Ident]types.Object),
		Selections: make(map[*ast.SelectorExpr]*types.Selection),
		Instances:  make(map[*ast.Ident]types.Instance),
	}

	conf := types.Config{
		FakeImportC: true,
		Importer:    importer.Default(),
	}
	pkg, err := conf.Check(path, fset, files, info)
	if err != nil {
		return nil, fmt.Errorf("failed to type check %s: %w", path, err)
	}

	return Lower(Package{Fset: fset, Types: pkg, Info: info, Files: files}), nil
}
