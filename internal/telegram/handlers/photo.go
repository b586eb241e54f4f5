package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	neturl "net/url"
	"strings"
	"time"

	"github.com/go-telegram/bot"
)

const (
	photoDownloadTimeout = 30 * time.Second
	maxPhotoBytes        = 10 << 20
)

// DownloadPhoto fetches the bytes of a Telegram file.
func DownloadPhoto(ctx context.Context, b *bot.Bot, deps HandlerDeps, fileID string) (data []byte, err error) {
	if deps.Token == "" {
		return nil, fmt.Errorf("empty token provided for photo download")
	}
	if fileID == "" {
		return nil, fmt.Errorf("empty fileID provided for photo download")
	}

	downloadCtx, cancel := context.WithTimeout(ctx, photoDownloadTimeout)
	defer cancel()

	fileObj, err := b.GetFile(downloadCtx, &bot.GetFileParams{FileID: fileID})
	if err != nil {
		return nil, fmt.Errorf("failed to get file info from Telegram: %w", err)
	}
	if fileObj.FilePath == "" {
		return nil, fmt.Errorf("empty file path returned from Telegram for file ID %s", fileID)
	}

	base := strings.TrimRight(deps.FileBaseURL, "/")
	if base == "" {
		base = DefaultFileBaseURL
	}
	url := fmt.Sprintf("%s/file/bot%s/%s", base, deps.Token, fileObj.FilePath)
	req, err := http.NewRequestWithContext(downloadCtx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create download request: %w", err)
	}

	client := deps.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		// The URL embeds the token; keep it out of the error.
		return nil, fmt.Errorf("failed to download file %s: %w", fileObj.FilePath, unwrapURLError(err))
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("failed to close response body: %w", closeErr)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code %d downloading %s", resp.StatusCode, fileObj.FilePath)
	}

	data, err = io.ReadAll(io.LimitReader(resp.Body, maxPhotoBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read file data: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("received empty file data for %s", fileObj.FilePath)
	}
	return data, nil
}

func unwrapURLError(err error) error {
	var urlErr *neturl.Error
	if errors.As(err, &urlErr) {
		return urlErr.Err
	}
	return err
}
