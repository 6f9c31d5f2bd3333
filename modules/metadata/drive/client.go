// Package drive resolves Google Drive file metadata for the shadow
// synchronization engine via the Drive v3 REST API.
package drive

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/okkema/linkshade/internal/metadata"
)

const (
	defaultBaseURL   = "https://www.googleapis.com/drive/v3"
	metadataFields   = "name,webViewLink,mimeType,modifiedTime"
	maxResponseBytes = 1 << 20
)

// file is the Drive v3 file resource, reduced to the requested fields.
type file struct {
	Name         string `json:"name"`
	WebViewLink  string `json:"webViewLink"`
	MIMEType     string `json:"mimeType"`
	ModifiedTime string `json:"modifiedTime"`
}

// apiError is the Drive v3 error envelope.
type apiError struct {
	Err struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Client is a thin HTTP wrapper around the Drive v3 files API.
type Client struct {
	apiKey      string
	accessToken string
	baseURL     string
	http        *http.Client
}

// NewClient creates a Drive client. Exactly one of apiKey or accessToken
// should be set; an API key covers link-shared files, an OAuth access
// token additionally covers files shared with the bot's account.
func NewClient(apiKey, accessToken, baseURL string) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		apiKey:      apiKey,
		accessToken: accessToken,
		baseURL:     baseURL,
		http: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// GetFileMetadata implements metadata.Provider. Files that do not exist
// or are not visible to the bot's credentials map to metadata.ErrNotFound;
// Drive reports both cases as 404 to avoid leaking file existence.
func (c *Client) GetFileMetadata(ctx context.Context, fileID string) (*metadata.FileMetadata, error) {
	q := url.Values{}
	q.Set("fields", metadataFields)
	q.Set("supportsAllDrives", "true")
	if c.apiKey != "" {
		q.Set("key", c.apiKey)
	}
	reqURL := c.baseURL + "/files/" + url.PathEscape(fileID) + "?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("drive: create request for file %s: %w", fileID, err)
	}
	if c.accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.accessToken)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("drive: fetch file %s: %w", fileID, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("drive: read response for file %s: %w", fileID, err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("drive: file %s: %w", fileID, metadata.ErrNotFound)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		var apiErr apiError
		_ = json.Unmarshal(body, &apiErr)
		if apiErr.Err.Message != "" {
			return nil, fmt.Errorf("drive: file %s: API error %d: %s", fileID, resp.StatusCode, apiErr.Err.Message)
		}
		return nil, fmt.Errorf("drive: file %s: unexpected status %d", fileID, resp.StatusCode)
	}

	var f file
	if err := json.Unmarshal(body, &f); err != nil {
		return nil, fmt.Errorf("drive: decode file %s: %w", fileID, err)
	}

	return &metadata.FileMetadata{
		Name:         f.Name,
		ViewURL:      f.WebViewLink,
		MIMEType:     f.MIMEType,
		ModifiedTime: f.ModifiedTime,
	}, nil
}
