package transport

type ScrapeRequest struct {
	URL string `json:"url" validate:"required,url,max=2000"`
}

// ScrapeResponse lists candidate leads found on a page. Nothing is stored.
type ScrapeResponse struct {
	SourceURL string      `json:"source_url"`
	Leads     []LeadInput `json:"leads"`
}

type ScrapeImportRequest struct {
	Leads []LeadInput `json:"leads" validate:"required,min=1,max=500,dive"`
}
