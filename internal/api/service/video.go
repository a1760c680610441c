package service

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/aussiebroadwan/vidhub/internal/api/domain"
	"github.com/aussiebroadwan/vidhub/internal/api/store"
	"github.com/aussiebroadwan/vidhub/internal/api/upload"
	"github.com/aussiebroadwan/vidhub/pkg/idx"
	"github.com/aussiebroadwan/vidhub/pkg/slogx"
)

// PublishInput describes a new video. Both files are required.
type PublishInput struct {
	Title       string
	Description string
	Duration    float64
	VideoFile   *upload.File
	Thumbnail   *upload.File
}

type VideoService struct {
	Videos   store.Videos
	Uploader upload.Uploader
	Now      func() time.Time
}

func (s *VideoService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC().Truncate(time.Millisecond)
	}
	return time.Now().UTC().Truncate(time.Millisecond)
}

// Publish uploads the media and stores the metadata owned by ownerID.
func (s *VideoService) Publish(ctx context.Context, ownerID string, in PublishInput) (domain.Video, error) {
	log := slogx.FromContext(ctx)

	if strings.TrimSpace(in.Title) == "" || strings.TrimSpace(in.Description) == "" {
		return domain.Video{}, validationError("Title and description are required")
	}
	if math.IsNaN(in.Duration) || math.IsInf(in.Duration, 0) {
		return domain.Video{}, validationError("Duration must be a finite number")
	}
	if in.Duration < 0 {
		return domain.Video{}, validationError("Duration must not be negative")
	}
	if in.VideoFile == nil {
		return domain.Video{}, validationError("Video file is required")
	}
	if in.Thumbnail == nil {
		return domain.Video{}, validationError("Thumbnail is required")
	}

	video, err := s.Uploader.Upload(ctx, upload.FolderVideos, *in.VideoFile)
	if err != nil {
		log.Error("video upload failed", slog.Any("error", err))
		return domain.Video{}, uploadError("Error while uploading video", err)
	}
	thumb, err := s.Uploader.Upload(ctx, upload.FolderThumbnails, *in.Thumbnail)
	if err != nil {
		log.Error("thumbnail upload failed", slog.Any("error", err))
		discardUploads(ctx, s.Uploader, video)
		return domain.Video{}, uploadError("Error while uploading thumbnail", err)
	}

	now := s.now()
	v := domain.Video{
		ID:          idx.New().String(),
		OwnerID:     ownerID,
		VideoFile:   video.URL,
		Thumbnail:   thumb.URL,
		Title:       strings.TrimSpace(in.Title),
		Description: strings.TrimSpace(in.Description),
		Duration:    in.Duration,
		IsPublished: true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.Videos.CreateVideo(ctx, v); err != nil {
		discardUploads(ctx, s.Uploader, video, thumb)
		return domain.Video{}, internalError("Something went wrong while saving the video", err)
	}

	log.Info("video published", slog.String("video_id", v.ID), slog.String("owner_id", ownerID))
	return v, nil
}

// Get returns a video and counts the view. Unpublished videos are only
// visible to their owner; everyone else gets NotFound.
func (s *VideoService) Get(ctx context.Context, viewerID, id string) (domain.Video, error) {
	v, err := s.lookup(ctx, id)
	if err != nil {
		return domain.Video{}, err
	}
	if !v.IsPublished && v.OwnerID != viewerID {
		return domain.Video{}, notFoundError("Video not found")
	}

	if err := s.Videos.IncrementVideoViews(ctx, v.ID); err != nil {
		return domain.Video{}, internalError("Something went wrong while fetching the video", err)
	}
	v.Views++
	return v, nil
}

// TogglePublish flips the publish flag. Only the owner may do this.
func (s *VideoService) TogglePublish(ctx context.Context, userID, id string) (domain.Video, error) {
	v, err := s.lookup(ctx, id)
	if err != nil {
		return domain.Video{}, err
	}
	if v.OwnerID != userID {
		return domain.Video{}, forbiddenError("Only the owner can change this video")
	}

	now := s.now()
	if err := s.Videos.SetVideoPublished(ctx, v.ID, !v.IsPublished, now); err != nil {
		return domain.Video{}, internalError("Something went wrong while updating the video", err)
	}
	v.IsPublished = !v.IsPublished
	v.UpdatedAt = now
	return v, nil
}

func (s *VideoService) lookup(ctx context.Context, id string) (domain.Video, error) {
	if _, err := idx.Parse(id); err != nil {
		return domain.Video{}, notFoundError("Video not found")
	}
	v, err := s.Videos.GetVideoByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Video{}, notFoundError("Video not found")
		}
		return domain.Video{}, internalError("Something went wrong while fetching the video", err)
	}
	return v, nil
}
