package domain

import "net/url"

const (
	downloadPath         = "/download/"
	filteredDownloadPath = "/download_filtered/"
)

// Snapshot is a point-in-time copy of a workflow session used for display.
type Snapshot struct {
	State          State    `json:"state"`
	FileName       string   `json:"file_name,omitempty"`
	FileID         string   `json:"file_id,omitempty"`
	Catalog        []string `json:"available_columns"`
	Selection      []string `json:"selected_columns"`
	ErrorMessage   string   `json:"error_message,omitempty"`
	DownloadTarget string   `json:"download_target,omitempty"`
	Busy           bool     `json:"busy"`
}

// DownloadTarget returns the service path of the CSV artifact for fileID, or
// an empty string when there is no uploaded file yet.
func DownloadTarget(fileID string, filtered bool) string {
	if fileID == "" {
		return ""
	}

	if filtered {
		return filteredDownloadPath + url.PathEscape(fileID)
	}

	return downloadPath + url.PathEscape(fileID)
}
