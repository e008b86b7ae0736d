// Package nosecretlog reports log calls that pass a variable or field whose
// name suggests a credential: a password, a token, a hash or a signing secret.
package nosecretlog

import (
	"go/ast"
	"go/types"
	"path/filepath"
	"strings"

	"golang.org/x/tools/go/analysis"
)

// Analyzer flags credentials handed to the project logger, the standard log
// package or zap field constructors.
var Analyzer = &analysis.Analyzer{
	Name: "nosecretlog",
	Doc:  "prohibits logging passwords, tokens, hashes and signing secrets",
	Run:  run,
}

var sensitiveNames = []string{"password", "secret", "token", "hash", "signingkey"}

var logMethods = map[string]bool{
	"Debug": true, "Debugf": true, "Debugw": true, "Debugln": true,
	"Info": true, "Infof": true, "Infow": true, "Infoln": true,
	"Warn": true, "Warnf": true, "Warnw": true, "Warnln": true,
	"Error": true, "Errorf": true, "Errorw": true, "Errorln": true,
	"Fatal": true, "Fatalf": true, "Fatalw": true, "Fatalln": true,
	"Panic": true, "Panicf": true, "Panicw": true, "Panicln": true,
	"Print": true, "Printf": true, "Println": true,
}

var zapFields = map[string]bool{
	"String": true, "Strings": true, "ByteString": true, "Binary": true,
	"Any": true, "Stringer": true, "Reflect": true,
}

func run(pass *analysis.Pass) (interface{}, error) {
	for _, file := range pass.Files {
		// Exclude go-build cache files
		filename := pass.Fset.File(file.Pos()).Name()
		if isGoBuildCacheFile(filename) {
			continue
		}

		ast.Inspect(file, func(n ast.Node) bool {
			call, ok := n.(*ast.CallExpr)
			if !ok || !isLogCall(pass, call) {
				return true
			}

			for _, arg := range call.Args {
				if name, found := sensitiveName(arg); found {
					pass.Reportf(arg.Pos(), "%s must not be logged", name)
				}
			}

			return true
		})
	}
	return nil, nil
}

func isLogCall(pass *analysis.Pass, call *ast.CallExpr) bool {
	sel, ok := call.Fun.(*ast.SelectorExpr)
	if !ok {
		return false
	}

	switch receiver := sel.X.(type) {
	case *ast.Ident:
		// log.Printf(...), zap.String(...)
		switch importedPath(pass, receiver) {
		case "log":
			return logMethods[sel.Sel.Name]
		case "go.uber.org/zap":
			return zapFields[sel.Sel.Name]
		}

	case *ast.SelectorExpr:
		// logger.Log.Infow(...)
		pkg, ok := receiver.X.(*ast.Ident)
		if !ok || receiver.Sel.Name != "Log" {
			return false
		}
		path := importedPath(pass, pkg)
		return (path == "logger" || strings.HasSuffix(path, "/logger")) && logMethods[sel.Sel.Name]
	}

	return false
}

func importedPath(pass *analysis.Pass, ident *ast.Ident) string {
	pkgName, ok := pass.TypesInfo.Uses[ident].(*types.PkgName)
	if !ok {
		return ""
	}

	return pkgName.Imported().Path()
}

func sensitiveName(expr ast.Expr) (string, bool) {
	var name string

	switch e := expr.(type) {
	case *ast.Ident:
		name = e.Name
	case *ast.SelectorExpr:
		name = e.Sel.Name
	case *ast.StarExpr:
		return sensitiveName(e.X)
	case *ast.UnaryExpr:
		return sensitiveName(e.X)
	case *ast.CallExpr:
		// string(secret), []byte(token)
		if len(e.Args) == 1 {
			if _, isConversion := e.Fun.(*ast.ArrayType); isConversion {
				return sensitiveName(e.Args[0])
			}
			if ident, isIdent := e.Fun.(*ast.Ident); isIdent && ident.Name == "string" {
				return sensitiveName(e.Args[0])
			}
		}
		return "", false
	default:
		return "", false
	}

	lowered := strings.ToLower(name)
	for _, sensitive := range sensitiveNames {
		if strings.Contains(lowered, sensitive) {
			return name, true
		}
	}

	return "", false
}

func isGoBuildCacheFile(path string) bool {
	path = filepath.ToSlash(path)
	return strings.Contains(path, "/go-build/") || strings.Contains(path, `\go-build\`)
}
