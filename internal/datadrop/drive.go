package datadrop

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/covid19trackerph/tracker/internal/contracts"
	"github.com/covid19trackerph/tracker/pkg/config"
	"github.com/covid19trackerph/tracker/pkg/httputil"
)

// File is one entry of a remote folder listing.
type File struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Drive is the remote file store the data drop is published on.
type Drive interface {
	// List returns every file matching query, following pagination.
	List(ctx context.Context, query string) ([]File, error)
	// Download streams the content of fileID into w.
	Download(ctx context.Context, fileID string, w io.Writer) error
	// ResolveRedirect expands a shortened link to its target.
	ResolveRedirect(ctx context.Context, link string) (string, error)
}

// DriveClient talks to the Drive v3 REST API.
// ⭐ SSOT: remote folder access goes through this client
type DriveClient struct {
	http    *httputil.Client
	baseURL string
	apiKey  string
}

// NewDriveClient creates a client from the remote folder settings.
func NewDriveClient(hc *httputil.Client, cfg config.DriveConfig) *DriveClient {
	return &DriveClient{
		http:    hc,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
	}
}

// listResponse is the files.list payload
type listResponse struct {
	NextPageToken string `json:"nextPageToken"`
	Files         []File `json:"files"`
}

// List implements Drive.
func (c *DriveClient) List(ctx context.Context, query string) ([]File, error) {
	var files []File
	pageToken := ""

	for {
		params := url.Values{}
		params.Set("q", query)
		params.Set("fields", "nextPageToken,files(id,name)")
		params.Set("supportsAllDrives", "true")
		params.Set("includeItemsFromAllDrives", "true")
		if pageToken != "" {
			params.Set("pageToken", pageToken)
		}
		c.addKey(params)

		body, err := c.http.GetBody(ctx, c.baseURL+"/files?"+params.Encode())
		if err != nil {
			return nil, fmt.Errorf("list files: %w", err)
		}

		var page listResponse
		if err := json.Unmarshal(body, &page); err != nil {
			return nil, fmt.Errorf("decode file list: %w", err)
		}
		files = append(files, page.Files...)

		if page.NextPageToken == "" {
			return files, nil
		}
		pageToken = page.NextPageToken
	}
}

// Download implements Drive. A missing file is reported as ErrRemoteNotFound.
func (c *DriveClient) Download(ctx context.Context, fileID string, w io.Writer) error {
	params := url.Values{}
	params.Set("alt", "media")
	params.Set("supportsAllDrives", "true")
	c.addKey(params)

	link := fmt.Sprintf("%s/files/%s?%s", c.baseURL, url.PathEscape(fileID), params.Encode())
	resp, err := c.http.Get(ctx, link)
	if err != nil {
		return fmt.Errorf("download %s: %w", fileID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("download %s: %w", fileID, contracts.ErrRemoteNotFound)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("download %s: %w", fileID, &httputil.StatusError{URL: link, StatusCode: resp.StatusCode})
	}

	if _, err := io.Copy(w, resp.Body); err != nil {
		return fmt.Errorf("download %s: %w", fileID, err)
	}
	return nil
}

// ResolveRedirect implements Drive.
func (c *DriveClient) ResolveRedirect(ctx context.Context, link string) (string, error) {
	location, err := c.http.ResolveRedirect(ctx, link)
	if errors.Is(err, httputil.ErrNoRedirect) {
		return "", fmt.Errorf("%w: %v", contracts.ErrLinkExtraction, err)
	}
	return location, err
}

func (c *DriveClient) addKey(params url.Values) {
	if c.apiKey != "" {
		params.Set("key", c.apiKey)
	}
}

// readmeQuery finds the published readme in folderID.
func readmeQuery(folderID string) string {
	return fmt.Sprintf("mimeType='application/pdf' and name contains 'READ ME' and parents in '%s' and trashed = false", folderID)
}

// folderQuery lists every file in folderID.
func folderQuery(folderID string) string {
	return fmt.Sprintf("parents in '%s' and trashed = false", folderID)
}
