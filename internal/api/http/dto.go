package http

import (
	"github.com/aussiebroadwan/vidhub/internal/api/domain"
	"github.com/aussiebroadwan/vidhub/pkg/vidhubsdk"
)

func toUser(p domain.Profile) vidhubsdk.User {
	return vidhubsdk.User{
		ID:         p.ID,
		Username:   p.Username,
		Email:      p.Email,
		Fullname:   p.Fullname,
		Avatar:     p.Avatar,
		CoverImage: p.CoverImage,
		CreatedAt:  p.CreatedAt,
		UpdatedAt:  p.UpdatedAt,
	}
}

func toVideo(v domain.Video) vidhubsdk.Video {
	return vidhubsdk.Video{
		ID:          v.ID,
		Owner:       v.OwnerID,
		VideoFile:   v.VideoFile,
		Thumbnail:   v.Thumbnail,
		Title:       v.Title,
		Description: v.Description,
		Duration:    v.Duration,
		Views:       v.Views,
		IsPublished: v.IsPublished,
		CreatedAt:   v.CreatedAt,
		UpdatedAt:   v.UpdatedAt,
	}
}
