// Command enumstr generates String methods for integer enum types.
//
// Mark a type declaration with a `//go:generate enumstr` directive and run
// go generate; the tool writes <file>_string.go next to the source file with
// a switch-based String method per marked type, naming each declared
// constant of that type.
package main

import (
	"bytes"
	"errors"
	"flag"
	"fmt"
	"go/ast"
	"go/constant"
	"go/format"
	"go/parser"
	"go/token"
	"go/types"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/tools/go/packages"
)

type enumType struct {
	Name   string
	Values []enumValue
}

type enumValue struct {
	Name  string
	Value int64
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "enumstr: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	fileFlag := flag.String("file", "", "go file containing //go:generate enumstr")
	flag.Parse()

	fileName := strings.TrimSpace(*fileFlag)
	if fileName == "" && flag.NArg() > 0 {
		fileName = strings.TrimSpace(flag.Arg(0))
	}
	if fileName == "" {
		fileName = strings.TrimSpace(os.Getenv("GOFILE"))
	}
	if fileName == "" {
		return errors.New("missing source file; set GOFILE or pass -file")
	}
	fileName = filepath.Base(fileName)
	if filepath.Ext(fileName) != ".go" {
		return fmt.Errorf("source file must be a .go file: %s", fileName)
	}

	dir, err := os.Getwd()
	if err != nil {
		return err
	}

	cfg := &packages.Config{
		Mode: packages.NeedName |
			packages.NeedSyntax |
			packages.NeedTypes |
			packages.NeedTypesInfo |
			packages.NeedFiles |
			packages.NeedCompiledGoFiles,
		Dir: dir,
		ParseFile: func(fset *token.FileSet, filename string, src []byte) (*ast.File, error) {
			return parser.ParseFile(fset, filename, src, parser.ParseComments)
		},
	}
	pkgs, err := packages.Load(cfg, ".")
	if err != nil {
		return err
	}
	if len(pkgs) == 0 {
		return errors.New("no packages found")
	}
	pkg := pkgs[0]
	if len(pkg.Errors) > 0 {
		return fmt.Errorf("type check failed: %s", pkg.Errors[0])
	}
	if len(pkg.Syntax) == 0 {
		return errors.New("no go files found in package")
	}

	var targetFile *ast.File
	for i, file := range pkg.Syntax {
		var name string
		if i < len(pkg.CompiledGoFiles) {
			name = pkg.CompiledGoFiles[i]
		} else if i < len(pkg.GoFiles) {
			name = pkg.GoFiles[i]
		}
		if filepath.Base(name) == fileName {
			targetFile = file
			break
		}
	}
	if targetFile == nil {
		return fmt.Errorf("file %s not found in package", fileName)
	}

	enums, err := collectEnumTypes(targetFile, pkg, fileName)
	if err != nil {
		return err
	}
	if len(enums) == 0 {
		return fmt.Errorf("no enum types found in %s", fileName)
	}

	out, err := render(pkg.Name, enums)
	if err != nil {
		return err
	}

	base := strings.TrimSuffix(fileName, ".go")
	outPath := filepath.Join(dir, base+"_string.go")
	return os.WriteFile(outPath, out, 0o644)
}

func collectEnumTypes(file *ast.File, pkg *packages.Package, fileName string) ([]enumType, error) {
	var results []enumType
	for _, decl := range file.Decls {
		gen, ok := decl.(*ast.GenDecl)
		if !ok || gen.Tok != token.TYPE {
			continue
		}
		for _, spec := range gen.Specs {
			typeSpec, ok := spec.(*ast.TypeSpec)
			if !ok {
				continue
			}
			if !commentGroupHasEnumstr(typeSpec.Doc) && !commentGroupHasEnumstr(gen.Doc) {
				continue
			}

			obj := pkg.TypesInfo.Defs[typeSpec.Name]
			if obj == nil {
				pos := pkg.Fset.Position(typeSpec.Pos())
				return nil, fmt.Errorf("missing type info for %s at %s", typeSpec.Name.Name, pos)
			}
			name, ok := obj.(*types.TypeName)
			if !ok {
				pos := pkg.Fset.Position(typeSpec.Pos())
				return nil, fmt.Errorf("expected type name for %s at %s", typeSpec.Name.Name, pos)
			}
			basic, ok := name.Type().Underlying().(*types.Basic)
			if !ok || basic.Info()&types.IsInteger == 0 {
				pos := pkg.Fset.Position(typeSpec.Pos())
				return nil, fmt.Errorf("enumstr requires integer type at %s", pos)
			}

			values, err := collectEnumValues(pkg, name.Type())
			if err != nil {
				return nil, err
			}
			if len(values) == 0 {
				return nil, fmt.Errorf("no constants of type %s in %s", typeSpec.Name.Name, fileName)
			}
			results = append(results, enumType{Name: typeSpec.Name.Name, Values: values})
		}
	}
	return results, nil
}

// collectEnumValues gathers the package-scope constants of the enum type.
// When several names share a value the first declared one wins.
func collectEnumValues(pkg *packages.Package, enum types.Type) ([]enumValue, error) {
	scope := pkg.Types.Scope()
	byValue := make(map[int64]enumValue)
	for _, name := range scope.Names() {
		obj := scope.Lookup(name)
		c, ok := obj.(*types.Const)
		if !ok || !types.Identical(c.Type(), enum) {
			continue
		}
		v, ok := constant.Int64Val(c.Val())
		if !ok {
			return nil, fmt.Errorf("constant %s does not fit in int64", name)
		}
		existing, seen := byValue[v]
		if seen && existing.pos(pkg) <= positionOf(pkg, c) {
			continue
		}
		byValue[v] = enumValue{Name: name, Value: v}
	}

	values := make([]enumValue, 0, len(byValue))
	for _, v := range byValue {
		values = append(values, v)
	}
	sort.Slice(values, func(i, j int) bool { return values[i].Value < values[j].Value })
	return values, nil
}

func (v enumValue) pos(pkg *packages.Package) int {
	obj := pkg.Types.Scope().Lookup(v.Name)
	if obj == nil {
		return 0
	}
	return positionOf(pkg, obj)
}

func positionOf(pkg *packages.Package, obj types.Object) int {
	return pkg.Fset.Position(obj.Pos()).Offset
}

func commentGroupHasEnumstr(group *ast.CommentGroup) bool {
	if group == nil {
		return false
	}
	for _, comment := range group.List {
		line := strings.TrimSpace(strings.TrimPrefix(comment.Text, "//"))
		if !strings.HasPrefix(line, "go:generate") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) >= 2 && fields[1] == "enumstr" {
			return true
		}
	}
	return false
}

func render(pkgName string, enums []enumType) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString("// Code generated by enumstr; DO NOT EDIT.\n\n")
	fmt.Fprintf(&buf, "package %s\n\n", pkgName)
	buf.WriteString("import \"strconv\"\n")

	for _, enum := range enums {
		fmt.Fprintf(&buf, "\nfunc (v %s) String() string {\n", enum.Name)
		buf.WriteString("\tswitch v {\n")
		for _, value := range enum.Values {
			fmt.Fprintf(&buf, "\tcase %s:\n\t\treturn %q\n", value.Name, displayName(enum.Name, value.Name))
		}
		buf.WriteString("\t}\n")
		fmt.Fprintf(&buf, "\treturn \"%s(\" + strconv.FormatInt(int64(v), 10) + \")\"\n", enum.Name)
		buf.WriteString("}\n")
	}

	return format.Source(buf.Bytes())
}

// displayName strips the type-name prefix convention from a constant name,
// so EventOrderCreated renders as "OrderCreated".
func displayName(typeName, constName string) string {
	for _, prefix := range []string{typeName, strings.TrimSuffix(typeName, "Type")} {
		if trimmed := strings.TrimPrefix(constName, prefix); trimmed != "" && trimmed != constName {
			return trimmed
		}
	}
	return constName
}
