package extractor

import (
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"
)

// PythonExtractor implements LanguageExtractor for Python import statements.
type PythonExtractor struct{}

func (p *PythonExtractor) GetLanguage() *sitter.Language {
	return python.GetLanguage()
}

func (p *PythonExtractor) GetQuery() string {
	return `
		(import_statement) @import
		(import_from_statement) @from
		(future_import_statement) @future
	`
}

func (p *PythonExtractor) ExtractUnit(captureName string, node *sitter.Node, sourceCode []byte, filepath string) *ImportUnit {
	var unit *ImportUnit
	switch captureName {
	case "import":
		unit = p.extractImport(node, sourceCode)
	case "from":
		unit = p.extractFrom(node, sourceCode)
	case "future":
		unit = p.extractFuture(node, sourceCode)
	}
	if unit == nil {
		return nil
	}

	unit.ID = fmt.Sprintf("%s:%s:%d", filepath, unit.Kind, node.StartPoint().Row+1)
	unit.Filepath = filepath
	unit.Language = "python"
	unit.StartLine = int(node.StartPoint().Row + 1)
	unit.EndLine = int(node.EndPoint().Row + 1)
	unit.Content = node.Content(sourceCode)
	unit.Scope = enclosingScope(node, sourceCode)
	unit.offset = node.StartByte()
	return unit
}

// Extraction Logic

func (p *PythonExtractor) extractImport(node *sitter.Node, sourceCode []byte) *ImportUnit {
	names := importNames(node, nil, sourceCode)
	if len(names) == 0 {
		return nil
	}
	return &ImportUnit{Kind: KindImport, Names: names}
}

func (p *PythonExtractor) extractFrom(node *sitter.Node, sourceCode []byte) *ImportUnit {
	moduleNode := node.ChildByFieldName("module_name")
	if moduleNode == nil {
		return nil
	}

	unit := &ImportUnit{Kind: KindFrom}
	switch moduleNode.Type() {
	case "relative_import":
		for i := 0; i < int(moduleNode.NamedChildCount()); i++ {
			child := moduleNode.NamedChild(i)
			switch child.Type() {
			case "import_prefix":
				unit.Level = strings.Count(child.Content(sourceCode), ".")
			case "dotted_name":
				unit.Module = dottedName(child, sourceCode)
			}
		}
		if unit.Level == 0 {
			// Older grammars expose the dots as anonymous children.
			unit.Level = strings.Count(moduleNode.Content(sourceCode), ".") - strings.Count(unit.Module, ".")
		}
	default:
		unit.Module = dottedName(moduleNode, sourceCode)
	}

	for i := 0; i < int(node.NamedChildCount()); i++ {
		if node.NamedChild(i).Type() == "wildcard_import" {
			unit.Kind = KindWildcard
			return unit
		}
	}

	unit.Names = importNames(node, moduleNode, sourceCode)
	if len(unit.Names) == 0 {
		return nil
	}
	return unit
}

func (p *PythonExtractor) extractFuture(node *sitter.Node, sourceCode []byte) *ImportUnit {
	names := importNames(node, nil, sourceCode)
	if len(names) == 0 {
		return nil
	}
	return &ImportUnit{Kind: KindFuture, Module: "__future__", Names: names}
}

// importNames collects the dotted_name and aliased_import children of an
// import node, skipping the module_name child of a from-import.
func importNames(node, skip *sitter.Node, sourceCode []byte) []ImportName {
	var names []ImportName
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		if skip != nil && child.StartByte() == skip.StartByte() && child.EndByte() == skip.EndByte() {
			continue
		}
		switch child.Type() {
		case "dotted_name":
			names = append(names, ImportName{Name: dottedName(child, sourceCode)})
		case "aliased_import":
			nameNode := child.ChildByFieldName("name")
			aliasNode := child.ChildByFieldName("alias")
			if nameNode == nil {
				continue
			}
			n := ImportName{Name: dottedName(nameNode, sourceCode)}
			if aliasNode != nil {
				n.Alias = aliasNode.Content(sourceCode)
			}
			names = append(names, n)
		}
	}
	return names
}

func dottedName(node *sitter.Node, sourceCode []byte) string {
	return strings.Join(strings.Fields(node.Content(sourceCode)), "")
}

// enclosingScope returns the dotted path of the functions and classes
// containing node.
func enclosingScope(node *sitter.Node, sourceCode []byte) string {
	var parts []string
	for n := node.Parent(); n != nil; n = n.Parent() {
		switch n.Type() {
		case "function_definition", "class_definition":
			if nameNode := n.ChildByFieldName("name"); nameNode != nil {
				parts = append([]string{nameNode.Content(sourceCode)}, parts...)
			}
		}
	}
	return strings.Join(parts, ".")
}

func (p *PythonExtractor) DefinedScopes(root *sitter.Node, sourceCode []byte) []string {
	var scopes []string
	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		switch n.Type() {
		case "function_definition", "class_definition":
			if nameNode := n.ChildByFieldName("name"); nameNode != nil {
				name := nameNode.Content(sourceCode)
				if outer := enclosingScope(n, sourceCode); outer != "" {
					name = outer + "." + name
				}
				scopes = append(scopes, name)
			}
		}
		for i := 0; i < int(n.NamedChildCount()); i++ {
			walk(n.NamedChild(i))
		}
	}
	walk(root)
	return scopes
}
