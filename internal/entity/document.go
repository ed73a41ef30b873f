package entity

// Document is one plain-text input handed to the extraction backends.
type Document struct {
	ID          string `json:"id"`
	Path        string `json:"path,omitempty"`
	Text        string `json:"-"`
	TypeHint    string `json:"type_hint,omitempty"`
	ContentHash string `json:"content_hash,omitempty"`
}
