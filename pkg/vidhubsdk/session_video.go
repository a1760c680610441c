package vidhubsdk

import (
	"context"
	"net/http"
	"net/url"
)

// PublishVideo uploads a video with its thumbnail.
func (s *Session) PublishVideo(ctx context.Context, req PublishVideoRequest) (*Video, error) {
	body, contentType, err := multipartForm(
		map[string]string{
			"title":       req.Title,
			"description": req.Description,
			"duration":    formatFloat(req.Duration),
		},
		map[string]*FileUpload{
			"videoFile": req.VideoFile,
			"thumbnail": req.Thumbnail,
		},
	)
	if err != nil {
		return nil, err
	}

	resp, err := s.doAuthRequest(ctx, http.MethodPost, "/api/v1/videos", body, contentType)
	if err != nil {
		return nil, err
	}

	var v Video
	if err := decodeEnvelope(resp, &v, http.StatusCreated); err != nil {
		return nil, err
	}
	return &v, nil
}

// GetVideo fetches a video. Each call counts as a view.
func (s *Session) GetVideo(ctx context.Context, id string) (*Video, error) {
	resp, err := s.doAuthRequest(ctx, http.MethodGet, "/api/v1/videos/"+url.PathEscape(id), nil, "")
	if err != nil {
		return nil, err
	}

	var v Video
	if err := decodeEnvelope(resp, &v, http.StatusOK); err != nil {
		return nil, err
	}
	return &v, nil
}

// TogglePublish flips the publish flag of a video the session owns.
func (s *Session) TogglePublish(ctx context.Context, id string) (*Video, error) {
	resp, err := s.doAuthRequest(ctx, http.MethodPatch, "/api/v1/videos/"+url.PathEscape(id)+"/publish", nil, "")
	if err != nil {
		return nil, err
	}

	var v Video
	if err := decodeEnvelope(resp, &v, http.StatusOK); err != nil {
		return nil, err
	}
	return &v, nil
}
