package response

type Error struct {
	Error  string `json:"error"`
	Status int    `json:"status"`
}

type UploadURL struct {
	ImageID   string `json:"imageId"`
	UploadURL string `json:"uploadUrl"`
	ExpiresAt string `json:"expiresAt"`
}

type ImageStatus struct {
	ImageID     string   `json:"imageId"`
	Status      string   `json:"status"`
	Keywords    []string `json:"keywords,omitempty"`
	ErrorDetail *string  `json:"errorDetail,omitempty"`
}

type SearchResult struct {
	ImageID   string   `json:"imageId"`
	Keywords  []string `json:"keywords"`
	ObjectKey string   `json:"objectKey"`
}

type Search struct {
	Results []SearchResult `json:"results"`
}
