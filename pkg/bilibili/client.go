package bilibili

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"bilifetch/pkg/config"
	"bilifetch/pkg/errors"
	"bilifetch/pkg/logger"
)

// Client represents a Bilibili web API client
type Client struct {
	httpClient *http.Client
	headers    map[string]string
	logger     logger.Logger
}

// NewClient creates a new API client with browser-like headers
func NewClient(timeout time.Duration, log logger.Logger) *Client {
	if log == nil {
		log = logger.GetLogger()
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		headers: map[string]string{
			"Accept":          "*/*",
			"Accept-Language": "zh-CN,zh;q=0.9,en;q=0.8",
			"Cache-Control":   "no-cache",
			"Pragma":          "no-cache",
			"Origin":          "https://space.bilibili.com",
			"User-Agent":      "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/101.0.4951.64 Safari/537.36",
		},
		logger: log,
	}
}

// NewClientWithSession creates a client carrying the session cookies from
// the configuration
func NewClientWithSession(cfg *config.Config, log logger.Logger) *Client {
	client := NewClient(cfg.Download.DownloadTimeout, log)

	var cookies []string
	if cfg.Bilibili.SESSDATA != "" {
		cookies = append(cookies, fmt.Sprintf("SESSDATA=%s", cfg.Bilibili.SESSDATA))
	}
	if cfg.Bilibili.BiliJct != "" {
		cookies = append(cookies, fmt.Sprintf("bili_jct=%s", cfg.Bilibili.BiliJct))
	}
	if cfg.Bilibili.Buvid3 != "" {
		cookies = append(cookies, fmt.Sprintf("buvid3=%s", cfg.Bilibili.Buvid3))
	}
	if cfg.Bilibili.DedeUserID != "" {
		cookies = append(cookies, fmt.Sprintf("DedeUserID=%s", cfg.Bilibili.DedeUserID))
	}
	if len(cookies) > 0 {
		client.SetHeader("Cookie", strings.Join(cookies, "; "))
	}

	if cfg.Bilibili.UserAgent != "" {
		client.SetHeader("User-Agent", cfg.Bilibili.UserAgent)
	}

	return client
}

// SetHeader sets a custom header for the client
func (c *Client) SetHeader(key, value string) {
	c.headers[key] = value
}

// doRequest performs an HTTP request with the configured headers
func (c *Client) doRequest(req *http.Request) (*http.Response, error) {
	for key, value := range c.headers {
		req.Header.Set(key, value)
	}

	start := time.Now()
	c.logger.DebugWithFields("sending HTTP request", map[string]interface{}{
		"method": req.Method,
		"url":    req.URL.String(),
	})

	resp, err := c.httpClient.Do(req)
	duration := time.Since(start)

	if err != nil {
		c.logger.ErrorWithFields("HTTP request failed", map[string]interface{}{
			"method":   req.Method,
			"url":      req.URL.String(),
			"error":    err.Error(),
			"duration": duration,
		})
		return nil, &errors.Error{
			Type:    errors.ErrorTypeNetwork,
			Message: fmt.Sprintf("network error: %v", err),
			Code:    0,
		}
	}

	c.logger.DebugWithFields("HTTP request completed", map[string]interface{}{
		"method":   req.Method,
		"url":      req.URL.String(),
		"status":   resp.StatusCode,
		"duration": duration,
	})

	return resp, nil
}

// Get performs a GET request to the specified URL
func (c *Client) Get(url string) (*http.Response, error) {
	req, err := http.NewRequest("GET", url, nil)
	if err != nil {
		return nil, &errors.Error{
			Type:    errors.ErrorTypeUnknown,
			Message: fmt.Sprintf("failed to create request: %v", err),
			Code:    0,
		}
	}

	return c.doRequest(req)
}

// GetJSON performs a GET request and decodes the JSON response
func (c *Client) GetJSON(url string, target interface{}) error {
	resp, err := c.Get(url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := c.checkResponseStatus(resp); err != nil {
		return err
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &errors.Error{
			Type:    errors.ErrorTypeNetwork,
			Message: fmt.Sprintf("failed to read response body: %v", err),
			Code:    resp.StatusCode,
		}
	}

	if err := json.Unmarshal(body, target); err != nil {
		bodyPreview := string(body)
		if len(bodyPreview) > 200 {
			bodyPreview = bodyPreview[:200] + "..."
		}

		c.logger.ErrorWithFields("failed to parse JSON response", map[string]interface{}{
			"url":          url,
			"status":       resp.StatusCode,
			"error":        err.Error(),
			"body_preview": bodyPreview,
		})
		return &errors.Error{
			Type:    errors.ErrorTypeParsing,
			Message: fmt.Sprintf("failed to parse JSON: %v", err),
			Code:    resp.StatusCode,
		}
	}

	return nil
}

// checkResponseStatus checks the HTTP response status and returns typed errors
func (c *Client) checkResponseStatus(resp *http.Response) error {
	switch {
	case resp.StatusCode == http.StatusOK:
		return nil
	case resp.StatusCode == http.StatusUnauthorized, resp.StatusCode == http.StatusForbidden:
		return &errors.Error{
			Type:    errors.ErrorTypeAuth,
			Message: "authentication required",
			Code:    resp.StatusCode,
		}
	case resp.StatusCode == http.StatusNotFound:
		return &errors.Error{
			Type:    errors.ErrorTypeNotFound,
			Message: "resource not found",
			Code:    resp.StatusCode,
		}
	case resp.StatusCode == http.StatusTooManyRequests:
		return &errors.Error{
			Type:    errors.ErrorTypeRateLimit,
			Message: "rate limit exceeded",
			Code:    resp.StatusCode,
		}
	case resp.StatusCode >= 500:
		return &errors.Error{
			Type:    errors.ErrorTypeServerError,
			Message: "server error",
			Code:    resp.StatusCode,
		}
	case resp.StatusCode >= 400:
		return &errors.Error{
			Type:    errors.ErrorTypeUnknown,
			Message: fmt.Sprintf("unexpected status code: %d", resp.StatusCode),
			Code:    resp.StatusCode,
		}
	default:
		return nil
	}
}

// checkEnvelope turns a non-zero API envelope code into a typed error
func checkEnvelope(code int, message string) error {
	if code == 0 {
		return nil
	}

	errType := errors.ErrorTypeAPI
	switch code {
	case -101:
		errType = errors.ErrorTypeAuth
	case -352, -412:
		errType = errors.ErrorTypeRateLimit
	case -404:
		errType = errors.ErrorTypeNotFound
	}

	return &errors.Error{
		Type:    errType,
		Message: fmt.Sprintf("api returned code %d: %s", code, message),
		Code:    code,
	}
}

// FetchDynamicsPage fetches one page of a user's dynamics history.
// An offset of 0 requests the first page.
func (c *Client) FetchDynamicsPage(hostUID uint64, offset uint64) (*DynamicsPage, error) {
	url := GetSpaceHistoryURL(hostUID, offset)

	c.logger.DebugWithFields("fetching dynamics page", map[string]interface{}{
		"host_uid": hostUID,
		"offset":   offset,
	})

	var response DynamicsResponse
	if err := c.GetJSON(url, &response); err != nil {
		return nil, err
	}
	if err := checkEnvelope(response.Code, response.Message); err != nil {
		return nil, err
	}

	return &response.Data, nil
}

// FetchOpusFeedPage fetches one page of a user's opus feed.
// An empty offset requests the first page.
func (c *Client) FetchOpusFeedPage(hostUID uint64, offset string) (*OpusFeedPage, error) {
	url := GetOpusFeedURL(hostUID, offset)

	c.logger.DebugWithFields("fetching opus feed page", map[string]interface{}{
		"host_uid": hostUID,
		"offset":   offset,
	})

	var response OpusFeedResponse
	if err := c.GetJSON(url, &response); err != nil {
		return nil, err
	}
	if err := checkEnvelope(response.Code, response.Message); err != nil {
		return nil, err
	}

	return &response.Data, nil
}

// FetchOpusDetail fetches the structured detail document for one opus
func (c *Client) FetchOpusDetail(opusID string) (*OpusItem, error) {
	url := GetOpusDetailURL(opusID)

	var response OpusDetailResponse
	if err := c.GetJSON(url, &response); err != nil {
		return nil, err
	}
	if err := checkEnvelope(response.Code, response.Message); err != nil {
		return nil, err
	}

	return &response.Data.Item, nil
}

// DownloadImage downloads an image from the given URL
func (c *Client) DownloadImage(imageURL string) ([]byte, error) {
	resp, err := c.Get(imageURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if err := c.checkResponseStatus(resp); err != nil {
		return nil, err
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &errors.Error{
			Type:    errors.ErrorTypeNetwork,
			Message: fmt.Sprintf("failed to read image data: %v", err),
			Code:    0,
		}
	}

	c.logger.DebugWithFields("downloaded image", map[string]interface{}{
		"url":  imageURL,
		"size": len(data),
	})

	return data, nil
}
