package handlers_test

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/example/tillpoint/internal/models"
)

func TestUploadImage(t *testing.T) {
	app, db, cfg := newTestApp(t)
	_, token := createStaff(t, db, cfg, "manager1", models.RoleManager, "4321")

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("image", "menu.png")
	require.NoError(t, err)
	_, err = part.Write([]byte("png-bytes"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/upload/image", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	url := decodeBody(t, resp)["url"].(string)
	require.True(t, strings.HasPrefix(url, cfg.UploadBaseURL+"/"))
	require.True(t, strings.HasSuffix(url, ".png"))
}

func TestUploadImageRequiresFile(t *testing.T) {
	app, db, cfg := newTestApp(t)
	_, token := createStaff(t, db, cfg, "manager1", models.RoleManager, "4321")

	resp := doJSON(t, app, http.MethodPost, "/api/upload/image", token, map[string]interface{}{})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
