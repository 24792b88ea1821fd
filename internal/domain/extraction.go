package domain

// Extraction is what the extraction service reports for an uploaded document.
type Extraction struct {
	FileID           string   `json:"file_id"`
	AvailableColumns []string `json:"available_columns"`
}
