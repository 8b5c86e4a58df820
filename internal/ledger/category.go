package ledger

import "strings"

// Category classifies a ledger entry by the area of the codebase it touches.
// The set is closed: tags observed in ledger documents that do not match a
// known category fall back to CategoryOther rather than being carried as
// untyped strings.
type Category int

const (
	CategoryOther Category = iota
	CategoryModel
	CategoryParser
	CategorySerializer
	CategoryConvert
	CategoryTests
	CategoryDocs
)

// ParseCategory maps a bracketed tag (without brackets) to a Category.
// Matching is case-insensitive. Unknown tags map to CategoryOther.
func ParseCategory(tag string) Category {
	switch strings.ToLower(strings.TrimSpace(tag)) {
	case "model":
		return CategoryModel
	case "parser":
		return CategoryParser
	case "serializer":
		return CategorySerializer
	case "convert", "conversion":
		return CategoryConvert
	case "tests", "test":
		return CategoryTests
	case "docs", "doc":
		return CategoryDocs
	default:
		return CategoryOther
	}
}

// String returns the canonical tag text for the category.
func (c Category) String() string {
	switch c {
	case CategoryModel:
		return "model"
	case CategoryParser:
		return "parser"
	case CategorySerializer:
		return "serializer"
	case CategoryConvert:
		return "convert"
	case CategoryTests:
		return "tests"
	case CategoryDocs:
		return "docs"
	default:
		return "other"
	}
}
