package types

// Campaign is the persisted bundle of a roadmap and its generated images.
// Images[i] belongs to Roadmap[i]; an empty string marks an image that could not be generated.
type Campaign struct {
	ID         string         `json:"id"`
	Roadmap    []RoadmapStage `json:"roadmap"`
	Images     []string       `json:"images"`
	Vibe       string         `json:"vibe"`
	Color      string         `json:"color"`
	Designer   string         `json:"designer"`
	Goal       string         `json:"goal,omitempty"`
	TargetDate string         `json:"target_date,omitempty"`
	CreatedAt  int64          `json:"created_at"`
}

// CampaignSummary is the listing view of a stored campaign.
type CampaignSummary struct {
	ID        string `json:"id"`
	Goal      string `json:"goal,omitempty"`
	Designer  string `json:"designer"`
	CreatedAt int64  `json:"created_at"`
}

// InspirationImage is a decoded client upload. It is never persisted.
type InspirationImage struct {
	Data     []byte
	MIMEType string
}

// GenerateRunwayRequest is the payload for creating a new campaign.
type GenerateRunwayRequest struct {
	Goal                   string `json:"goal"`
	Designer               string `json:"designer"`
	Color                  string `json:"color"`
	Vibe                   string `json:"vibe"`
	TargetDate             string `json:"target_date"`
	InspirationImageBase64 string `json:"inspiration_image_base64"`
}

// GenerateRunwayResponse only carries the id; the campaign is fetched separately.
type GenerateRunwayResponse struct {
	CampaignID string `json:"campaign_id"`
}

// FinalLookRequest is the payload for generating the composite look of a campaign.
type FinalLookRequest struct {
	CampaignID string `json:"campaign_id"`
}

// FinalLookResponse carries the composite image, or "" when generation failed.
type FinalLookResponse struct {
	Image string `json:"image"`
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error  string `json:"error"`
	Detail string `json:"detail"`
}
