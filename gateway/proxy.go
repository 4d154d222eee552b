package main

import (
	"bytes"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/communityos/community-platform/shared/middleware"
	"github.com/communityos/community-platform/shared/utils"
)

// ServiceClient handles HTTP communication with backing services
type ServiceClient struct {
	baseURL    string
	httpClient *http.Client
}

// ServiceClients holds all service clients
type ServiceClients struct {
	AuthService      *ServiceClient
	CommunityService *ServiceClient
	PagesService     *ServiceClient
	SyncService      *ServiceClient
	RendererService  *ServiceClient
}

// NewServiceClient creates a new service client
func NewServiceClient(baseURL string) *ServiceClient {
	return &ServiceClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// ProxyRequest proxies requests to the appropriate backing service
func (sc *ServiceClient) ProxyRequest(c *gin.Context) {
	// Build target URL
	targetURL := sc.baseURL + c.Request.URL.Path
	if c.Request.URL.RawQuery != "" {
		targetURL += "?" + c.Request.URL.RawQuery
	}

	// Create request
	var body io.Reader
	if c.Request.Body != nil {
		bodyBytes, err := io.ReadAll(c.Request.Body)
		if err != nil {
			utils.InternalServerErrorResponse(c, "Failed to read request body")
			return
		}
		body = bytes.NewBuffer(bodyBytes)
	}

	req, err := http.NewRequest(c.Request.Method, targetURL, body)
	if err != nil {
		utils.InternalServerErrorResponse(c, "Failed to create request")
		return
	}

	// Copy headers
	for key, values := range c.Request.Header {
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}

	// Forward the authenticated identity to the backing service
	if identity, ok := middleware.GetIdentity(c); ok {
		req.Header.Set("X-User-ID", strconv.FormatUint(uint64(identity.UserID), 10))
		req.Header.Set("X-User-Email", identity.Email)
		req.Header.Set("X-User-Admin", strconv.FormatBool(identity.Admin))
		if identity.CommunityID != nil {
			req.Header.Set("X-Community-ID", strconv.FormatUint(uint64(*identity.CommunityID), 10))
		}
	}

	// Send request
	resp, err := sc.httpClient.Do(req)
	if err != nil {
		utils.InternalServerErrorResponse(c, "Failed to communicate with service")
		return
	}
	defer resp.Body.Close()

	// Read response body
	responseBody, err := io.ReadAll(resp.Body)
	if err != nil {
		utils.InternalServerErrorResponse(c, "Failed to read response")
		return
	}

	// Copy response headers
	for key, values := range resp.Header {
		for _, value := range values {
			c.Header(key, value)
		}
	}

	c.Data(resp.StatusCode, resp.Header.Get("Content-Type"), responseBody)
}
