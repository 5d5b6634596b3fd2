// Package source fetches the event log from Google Drive (or any plain URL)
// onto local disk.
package source

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html"
	"io"
	"net"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

// ErrNotAFile is returned when the server answers with a web page instead of
// file content, which is how Drive reports unknown or revoked file ids.
var ErrNotAFile = errors.New("response is not a file download")

const driveDownloadURL = "https://drive.google.com/uc?export=download&id="

// maxPageBytes bounds how much of an HTML interstitial is read.
const maxPageBytes = 1 << 20

var (
	confirmParam   = regexp.MustCompile(`confirm=([0-9A-Za-z_\-]+)`)
	downloadForm   = regexp.MustCompile(`(?s)<form[^>]*id="download-form"[^>]*action="([^"]+)"[^>]*>(.*?)</form>`)
	hiddenInput    = regexp.MustCompile(`<input[^>]*type="hidden"[^>]*name="([^"]+)"[^>]*value="([^"]*)"`)
	errNoDownloads = errors.New("no download link on page")
)

// DriveURL returns the direct-download URL for a Drive file id.
func DriveURL(fileID string) string {
	return driveDownloadURL + url.QueryEscape(fileID)
}

// Result describes a completed download.
type Result struct {
	URL      string
	Path     string
	Bytes    int64
	Duration time.Duration
}

// Client downloads files over HTTP.
type Client struct {
	httpClient *http.Client
	userAgent  string
}

// NewClient builds a download client. A zero timeout means none.
func NewClient(timeout time.Duration, userAgent string) *Client {
	tr := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		DialContext:         (&net.Dialer{Timeout: 10 * time.Second, KeepAlive: 60 * time.Second}).DialContext,
		MaxIdleConns:        10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	}
	// Drive pairs the legacy confirm token with a download_warning cookie.
	jar, _ := cookiejar.New(nil)
	return &Client{
		httpClient: &http.Client{Timeout: timeout, Transport: tr, Jar: jar},
		userAgent:  userAgent,
	}
}

// Download fetches rawURL and writes the body to path, replacing any
// existing file. The file only appears once the body has been fully written.
func (c *Client) Download(ctx context.Context, rawURL, path string) (*Result, error) {
	start := time.Now()

	resp, err := c.get(ctx, rawURL)
	if err != nil {
		return nil, err
	}

	if isHTML(resp) {
		next, err := confirmURL(resp)
		resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrNotAFile, rawURL, err)
		}
		resp, err = c.get(ctx, next)
		if err != nil {
			return nil, err
		}
		if isHTML(resp) {
			resp.Body.Close()
			return nil, fmt.Errorf("%w: %s", ErrNotAFile, rawURL)
		}
	}
	defer resp.Body.Close()

	n, err := writeFile(path, resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to write %s: %w", path, err)
	}

	return &Result{
		URL:      rawURL,
		Path:     path,
		Bytes:    n,
		Duration: time.Since(start),
	}, nil
}

func (c *Client) get(ctx context.Context, rawURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", rawURL, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, fmt.Errorf("failed to fetch %s: unexpected status %d", rawURL, resp.StatusCode)
	}
	return resp, nil
}

func isHTML(resp *http.Response) bool {
	return strings.HasPrefix(strings.ToLower(resp.Header.Get("Content-Type")), "text/html")
}

// confirmURL extracts the follow-up link from Drive's "can't scan this file
// for viruses" page. Both the form-based page and the older confirm=<token>
// link are understood.
func confirmURL(resp *http.Response) (string, error) {
	page, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return "", err
	}
	base := resp.Request.URL

	if m := downloadForm.FindSubmatch(page); m != nil {
		action, err := base.Parse(html.UnescapeString(string(m[1])))
		if err != nil {
			return "", err
		}
		q := action.Query()
		for _, in := range hiddenInput.FindAllSubmatch(m[2], -1) {
			q.Set(html.UnescapeString(string(in[1])), html.UnescapeString(string(in[2])))
		}
		action.RawQuery = q.Encode()
		return action.String(), nil
	}

	if m := confirmParam.FindSubmatch(bytes.ReplaceAll(page, []byte("&amp;"), []byte("&"))); m != nil {
		next := *base
		q := next.Query()
		q.Set("confirm", string(m[1]))
		next.RawQuery = q.Encode()
		return next.String(), nil
	}

	return "", errNoDownloads
}

func writeFile(path string, body io.Reader) (int64, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, err
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return 0, err
	}
	tmpName := tmp.Name()

	n, err := io.Copy(tmp, body)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(tmpName)
		return 0, err
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return 0, err
	}
	return n, nil
}
