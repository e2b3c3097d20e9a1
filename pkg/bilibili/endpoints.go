package bilibili

import (
	"fmt"
	"net/url"
)

const (
	// APIBaseURL is the base URL for the main Bilibili API host
	APIBaseURL = "https://api.bilibili.com"

	// VCAPIBaseURL is the base URL for the legacy dynamics API host
	VCAPIBaseURL = "https://api.vc.bilibili.com"

	// SpaceHistoryEndpoint is the endpoint for a user's dynamics history
	SpaceHistoryEndpoint = "/dynamic_svr/v1/dynamic_svr/space_history"

	// OpusFeedEndpoint is the endpoint for a user's opus feed
	OpusFeedEndpoint = "/x/polymer/web-dynamic/v1/opus/feed/space"

	// OpusDetailEndpoint is the endpoint for a single opus document
	OpusDetailEndpoint = "/x/polymer/web-dynamic/v1/opus/detail"
)

// GetSpaceHistoryURL constructs the URL for one dynamics history page.
// An offset of 0 requests the first page.
func GetSpaceHistoryURL(hostUID uint64, offset uint64) string {
	params := url.Values{}
	params.Set("host_uid", fmt.Sprintf("%d", hostUID))
	params.Set("offset_dynamic_id", fmt.Sprintf("%d", offset))
	params.Set("need_top", "1")

	return fmt.Sprintf("%s%s?%s", VCAPIBaseURL, SpaceHistoryEndpoint, params.Encode())
}

// GetOpusFeedURL constructs the URL for one opus feed page.
// An empty offset requests the first page.
func GetOpusFeedURL(hostUID uint64, offset string) string {
	params := url.Values{}
	params.Set("host_mid", fmt.Sprintf("%d", hostUID))
	params.Set("page", "1")
	params.Set("offset", offset)
	params.Set("web_location", "0.0")

	return fmt.Sprintf("%s%s?%s", APIBaseURL, OpusFeedEndpoint, params.Encode())
}

// GetOpusDetailURL constructs the URL for a single opus detail document
func GetOpusDetailURL(opusID string) string {
	params := url.Values{}
	params.Set("id", opusID)
	params.Set("timezone_offset", "-480")

	return fmt.Sprintf("%s%s?%s", APIBaseURL, OpusDetailEndpoint, params.Encode())
}

// GetSpaceRefererURL returns the Referer header value for requests made on
// behalf of a user's dynamics page
func GetSpaceRefererURL(hostUID uint64) string {
	return fmt.Sprintf("https://space.bilibili.com/%d/dynamic", hostUID)
}
