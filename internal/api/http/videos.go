package http

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/aussiebroadwan/vidhub/internal/api/service"
	"github.com/aussiebroadwan/vidhub/pkg/httpx"
)

type VideosHandler struct {
	VideoService *service.VideoService
	MaxBytes     int64
}

// HandlePublish godoc
//
//	@Summary		Publish a video
//	@Description	Uploads the video and thumbnail and stores the metadata. The video is published immediately.
//	@Tags			Videos
//	@Security		BearerAuth
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			title		formData	string											true	"Title"
//	@Param			description	formData	string											true	"Description"
//	@Param			duration	formData	number											false	"Duration in seconds"
//	@Param			videoFile	formData	file											true	"Video file"
//	@Param			thumbnail	formData	file											true	"Thumbnail image"
//	@Success		201			{object}	httpx.SuccessResponse{data=vidhubsdk.Video}	"Created video"
//	@Failure		400			{object}	httpx.ErrorResponse								"Missing field or file"
//	@Failure		401			{object}	httpx.ErrorResponse								"Missing or invalid access token"
//	@Failure		500			{object}	httpx.ErrorResponse								"Upload or server error"
//	@Router			/api/v1/videos [post].
func (h *VideosHandler) HandlePublish(w http.ResponseWriter, r *http.Request) {
	userID, _ := httpx.UserIDFromContext(r.Context())

	if !parseMultipart(w, r, h.MaxBytes) {
		return
	}
	defer cleanupMultipart(r)

	var duration float64
	if raw := strings.TrimSpace(r.FormValue("duration")); raw != "" {
		d, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			httpx.WriteFailure(w, http.StatusBadRequest, "Duration must be a number")
			return
		}
		duration = d
	}

	video, closeVideo, err := formFile(r, "videoFile")
	if err != nil {
		httpx.WriteFailure(w, http.StatusBadRequest, "Invalid video file")
		return
	}
	defer closeVideo()

	thumb, closeThumb, err := formFile(r, "thumbnail")
	if err != nil {
		httpx.WriteFailure(w, http.StatusBadRequest, "Invalid thumbnail file")
		return
	}
	defer closeThumb()

	v, err := h.VideoService.Publish(r.Context(), userID, service.PublishInput{
		Title:       r.FormValue("title"),
		Description: r.FormValue("description"),
		Duration:    duration,
		VideoFile:   video,
		Thumbnail:   thumb,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	httpx.WriteSuccess(w, http.StatusCreated, toVideo(v), "Video published successfully")
}

// HandleGet godoc
//
//	@Summary		Get a video
//	@Description	Returns a video and counts the view. Unpublished videos are only visible to their owner.
//	@Tags			Videos
//	@Security		BearerAuth
//	@Produce		json
//	@Param			id	path		string											true	"Video ID"
//	@Success		200	{object}	httpx.SuccessResponse{data=vidhubsdk.Video}	"Video"
//	@Failure		401	{object}	httpx.ErrorResponse								"Missing or invalid access token"
//	@Failure		404	{object}	httpx.ErrorResponse								"Unknown or hidden video"
//	@Router			/api/v1/videos/{id} [get].
func (h *VideosHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	userID, _ := httpx.UserIDFromContext(r.Context())

	v, err := h.VideoService.Get(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	httpx.WriteSuccess(w, http.StatusOK, toVideo(v), "Video fetched successfully")
}

// HandleTogglePublish godoc
//
//	@Summary		Toggle publish status
//	@Description	Flips whether the video is publicly visible. Owner only.
//	@Tags			Videos
//	@Security		BearerAuth
//	@Produce		json
//	@Param			id	path		string											true	"Video ID"
//	@Success		200	{object}	httpx.SuccessResponse{data=vidhubsdk.Video}	"Updated video"
//	@Failure		401	{object}	httpx.ErrorResponse								"Missing or invalid access token"
//	@Failure		403	{object}	httpx.ErrorResponse								"Not the owner"
//	@Failure		404	{object}	httpx.ErrorResponse								"Unknown video"
//	@Router			/api/v1/videos/{id}/publish [patch].
func (h *VideosHandler) HandleTogglePublish(w http.ResponseWriter, r *http.Request) {
	userID, _ := httpx.UserIDFromContext(r.Context())

	v, err := h.VideoService.TogglePublish(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	httpx.WriteSuccess(w, http.StatusOK, toVideo(v), "Publish status toggled")
}
