package models

const EventNewPhoto = "new_photo"

// PhotoEvent is pushed to live viewers after an upload completes.
type PhotoEvent struct {
	Type     string `json:"type"`
	ID       int    `json:"id"`
	ThumbURL string `json:"thumb_url"`
	Title    string `json:"title"`
}

func NewPhotoEvent(p *Photo) PhotoEvent {
	return PhotoEvent{
		Type:     EventNewPhoto,
		ID:       p.ID,
		ThumbURL: p.ThumbURL(),
		Title:    p.Title,
	}
}

// UploadResponse is the acknowledgement returned to partial-page (htmx) uploads.
type UploadResponse struct {
	OK bool `json:"ok"`
	ID int  `json:"id"`
}
