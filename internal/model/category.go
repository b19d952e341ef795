package model

// BasicRuleName marks moves that were routed by the category table rather than a user rule.
const BasicRuleName = "basic"

// Category is one entry of the built-in extension table.
type Category struct {
	Name       string
	Extensions []string
}

// CategoryTable maps file extensions to category folder names.
// Categories are consulted in declaration order.
type CategoryTable struct {
	byExt      map[string]string
	categories []Category
}

// NewCategoryTable builds a table from an ordered list of categories.
// When an extension appears in more than one category the first one wins.
func NewCategoryTable(categories ...Category) *CategoryTable {
	t := &CategoryTable{
		byExt:      make(map[string]string),
		categories: make([]Category, 0, len(categories)),
	}
	for _, c := range categories {
		exts := NormalizeExtensions(c.Extensions)
		t.categories = append(t.categories, Category{Name: c.Name, Extensions: exts})
		for _, ext := range exts {
			if _, exists := t.byExt[ext]; !exists {
				t.byExt[ext] = c.Name
			}
		}
	}
	return t
}

// Lookup returns the category for an extension ("PDF", ".pdf" and "pdf" are equivalent).
func (t *CategoryTable) Lookup(ext string) (string, bool) {
	if t == nil {
		return "", false
	}
	ext = NormalizeExtension(ext)
	if ext == "" {
		return "", false
	}
	name, ok := t.byExt[ext]
	return name, ok
}

// Categories returns a copy of the table contents in declaration order.
func (t *CategoryTable) Categories() []Category {
	if t == nil {
		return nil
	}
	out := make([]Category, len(t.categories))
	for i, c := range t.categories {
		out[i] = Category{Name: c.Name, Extensions: append([]string(nil), c.Extensions...)}
	}
	return out
}

// DefaultCategories is the built-in extension table used for basic classification.
var DefaultCategories = NewCategoryTable(
	Category{Name: "documentos_pdf", Extensions: []string{"pdf"}},
	Category{Name: "documentos_word", Extensions: []string{"doc", "docx"}},
	Category{Name: "documentos_texto", Extensions: []string{"txt", "rtf"}},
	Category{Name: "hojas_calculo", Extensions: []string{"xls", "xlsx", "csv"}},
	Category{Name: "presentaciones", Extensions: []string{"ppt", "pptx"}},
	Category{Name: "imagenes", Extensions: []string{"jpg", "jpeg", "png", "gif", "bmp", "tiff", "webp"}},
	Category{Name: "videos", Extensions: []string{"mp4", "mkv", "avi", "mov", "wmv", "flv"}},
	Category{Name: "audios", Extensions: []string{"mp3", "wav", "aac", "flac", "ogg"}},
	Category{Name: "comprimidos", Extensions: []string{"zip", "rar", "7z", "tar", "gz"}},
	Category{Name: "ejecutables", Extensions: []string{"exe", "msi", "bat", "sh", "apk"}},
)
