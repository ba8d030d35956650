package download

import (
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/schollz/progressbar/v3"
)

// Client downloads artifacts over HTTP with retries.
type Client struct {
	http         *http.Client
	showProgress bool
}

// Options configures a download Client.
type Options struct {
	// Retries is the number of retry attempts on failed requests.
	Retries int
	// VerifySSL disables certificate verification when false.
	VerifySSL bool
	// ShowProgress draws a progress bar on stderr while downloading.
	ShowProgress bool
}

// NewClient creates a Client.
func NewClient(opts Options) *Client {
	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = opts.Retries
	if retryClient.RetryMax <= 0 {
		retryClient.RetryMax = 3
	}
	retryClient.Logger = nil
	if !opts.VerifySSL {
		retryClient.HTTPClient.Transport = &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		}
	}
	return &Client{
		http:         retryClient.StandardClient(),
		showProgress: opts.ShowProgress,
	}
}

// IsURL reports whether the given source is an http(s) url.
func IsURL(source string) bool {
	return strings.HasPrefix(source, "http:") || strings.HasPrefix(source, "https:")
}

// FileName extracts the artifact file name from a url. A trailing slash is an
// error, there is no name to guess the package from.
func FileName(url string) (string, error) {
	name := url[strings.LastIndex(url, "/")+1:]
	if name == "" {
		return "", fmt.Errorf("trailing slash in url %s, unable to guess package name", url)
	}
	return name, nil
}

// ToFile downloads url into destDir, keeping the url's file name, and
// returns the downloaded path.
func (c *Client) ToFile(url, destDir string) (string, error) {
	name, err := FileName(url)
	if err != nil {
		return "", err
	}
	dest := filepath.Join(destDir, name)

	resp, err := c.http.Get(url)
	if err != nil {
		return "", fmt.Errorf("download %s: %w", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("download %s: status %s", url, resp.Status)
	}

	out, err := os.Create(dest)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", dest, err)
	}

	var target io.Writer = out
	if c.showProgress {
		bar := progressbar.DefaultBytes(resp.ContentLength, "downloading "+name)
		target = io.MultiWriter(out, bar)
	}
	if _, err := io.Copy(target, resp.Body); err != nil {
		out.Close()
		os.Remove(dest)
		return "", fmt.Errorf("download %s: %w", url, err)
	}
	if err := out.Close(); err != nil {
		return "", err
	}
	return dest, nil
}
