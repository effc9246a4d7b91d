/*
Package gclplugin provides golangci-lint plugin integration for the [rulecheck] analyzers.

# Usage

1. Add a file `.custom-gcl.yaml` to your source with:

	---
	version: v2.7.0

	name: golangci-lint
	destination: .

	plugins:
	  - module: github.com/SergeiSkv/rulecheck
	    import: github.com/SergeiSkv/rulecheck/gclplugin
	    version: v0.1.0

2. Run `golangci-lint custom` from your project root.

3. Configure the linter in `.golangci.yaml`:

	---
	version: "2"
	linters:
	  default: none
	  enable:
	    - rulecheck
	  settings:
	    custom:
	      rulecheck:
	        type: module
	        description: "rulecheck checks constructor parameter names and hot path allocations."
	        settings:
	          disable: [callsitealloc]
	          empty-variadic: report
	          backing-prefixes: ["_", "m_"]

4. Run the linter:

	./golangci-lint run .

[rulecheck]: https://pkg.go.dev/github.com/SergeiSkv/rulecheck/lint
*/
package gclplugin
