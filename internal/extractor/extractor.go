package extractor

import (
	"context"
	"fmt"
	"os"
	"sort"

	sitter "github.com/smacker/go-tree-sitter"
)

// LanguageExtractor defines the interface that each language parser must implement.
type LanguageExtractor interface {
	GetLanguage() *sitter.Language
	GetQuery() string
	ExtractUnit(captureName string, node *sitter.Node, sourceCode []byte, filepath string) *ImportUnit
	// DefinedScopes lists the dotted paths of every def and class in root.
	DefinedScopes(root *sitter.Node, sourceCode []byte) []string
}

// Extractor orchestrates the extraction process using language-specific extractors.
type Extractor struct {
	langExtractor LanguageExtractor
	langName      string
}

// NewExtractor creates a new extractor for a given language.
func NewExtractor(lang string) (*Extractor, error) {
	var langExt LanguageExtractor
	switch lang {
	case "python":
		langExt = &PythonExtractor{}
	default:
		return nil, fmt.Errorf("unsupported language: %s", lang)
	}
	return &Extractor{langExtractor: langExt, langName: lang}, nil
}

// Language returns the language this extractor parses.
func (e *Extractor) Language() string {
	return e.langName
}

// ExtractFromFile parses a single source file and extracts its import statements.
func (e *Extractor) ExtractFromFile(filepath string) ([]*ImportUnit, error) {
	sourceCode, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", filepath, err)
	}
	return e.ExtractFromSource(filepath, sourceCode)
}

func (e *Extractor) parse(filepath string, sourceCode []byte) (*sitter.Tree, error) {
	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(e.langExtractor.GetLanguage())
	tree, err := parser.ParseCtx(context.Background(), nil, sourceCode)
	if err != nil {
		return nil, fmt.Errorf("failed to parse file %s: %w", filepath, err)
	}
	return tree, nil
}

// ScopesFromFile returns the dotted paths of the defs and classes declared
// in a source file, e.g. "Model" and "Model.fit".
func (e *Extractor) ScopesFromFile(filepath string) ([]string, error) {
	sourceCode, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", filepath, err)
	}
	tree, err := e.parse(filepath, sourceCode)
	if err != nil {
		return nil, err
	}
	defer tree.Close()
	return e.langExtractor.DefinedScopes(tree.RootNode(), sourceCode), nil
}

// ExtractFromSource extracts import statements from in-memory source.
// Units are returned in source order.
func (e *Extractor) ExtractFromSource(filepath string, sourceCode []byte) ([]*ImportUnit, error) {
	tree, err := e.parse(filepath, sourceCode)
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	query, err := sitter.NewQuery([]byte(e.langExtractor.GetQuery()), e.langExtractor.GetLanguage())
	if err != nil {
		return nil, fmt.Errorf("failed to create query: %w", err)
	}
	defer query.Close()

	qc := sitter.NewQueryCursor()
	defer qc.Close()
	qc.Exec(query, tree.RootNode())

	var units []*ImportUnit
	for {
		m, ok := qc.NextMatch()
		if !ok {
			break
		}
		for _, c := range m.Captures {
			captureName := query.CaptureNameForId(c.Index)
			unit := e.langExtractor.ExtractUnit(captureName, c.Node, sourceCode, filepath)
			if unit != nil {
				units = append(units, unit)
			}
		}
	}

	sort.SliceStable(units, func(i, j int) bool {
		return units[i].offset < units[j].offset
	})
	return units, nil
}
