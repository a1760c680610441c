package api_test

import (
	"io"
	"net/http"
	"testing"

	"github.com/aussiebroadwan/vidhub/pkg/vidhubsdk"
	"github.com/stretchr/testify/require"
)

func TestVideoPublishAndVisibility(t *testing.T) {
	client := vidhubsdk.NewSDKClient(setupAPIServer(t, baseConfig(t)))
	registerUser(t, client, "ana")
	registerUser(t, client, "bob")
	ana := performLogin(t, client, "ana")
	bob := performLogin(t, client, "bob")

	video, err := ana.PublishVideo(t.Context(), vidhubsdk.PublishVideoRequest{
		Title:       "First",
		Description: "hello",
		Duration:    42.5,
		VideoFile:   fileUpload("clip.mp4"),
		Thumbnail:   fileUpload("thumb.jpg"),
	})
	require.NoError(t, err)
	require.Equal(t, ana.User().ID, video.Owner)
	require.True(t, video.IsPublished)
	require.Zero(t, video.Views)

	seen, err := bob.GetVideo(t.Context(), video.ID)
	require.NoError(t, err)
	require.EqualValues(t, 1, seen.Views)

	_, err = bob.TogglePublish(t.Context(), video.ID)
	requireStatus(t, err, http.StatusForbidden)

	hidden, err := ana.TogglePublish(t.Context(), video.ID)
	require.NoError(t, err)
	require.False(t, hidden.IsPublished)

	_, err = bob.GetVideo(t.Context(), video.ID)
	requireStatus(t, err, http.StatusNotFound)

	_, err = ana.GetVideo(t.Context(), video.ID)
	require.NoError(t, err)
}

func TestVideoPublishValidation(t *testing.T) {
	client := vidhubsdk.NewSDKClient(setupAPIServer(t, baseConfig(t)))
	registerUser(t, client, "ana")
	ana := performLogin(t, client, "ana")

	_, err := ana.PublishVideo(t.Context(), vidhubsdk.PublishVideoRequest{
		Title: "First", Description: "hello", VideoFile: fileUpload("clip.mp4"),
	})
	requireStatus(t, err, http.StatusBadRequest)
}

func TestUploadedMediaIsServed(t *testing.T) {
	client := vidhubsdk.NewSDKClient(setupAPIServer(t, baseConfig(t)))
	user := registerUser(t, client, "ana")

	resp, err := http.Get(user.Avatar)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Equal(t, "bytes of ana.png", string(body))
}
