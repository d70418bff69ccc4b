package request

import "strings"

const (
	ClientTypeWeb    = "web"
	ClientTypeMobile = "mobile"
	ClientTypeAPI    = "api"
)

// ResolveClientType prefers the explicit X-Client-Type header and falls
// back to sniffing the User-Agent.
func ResolveClientType(clientHeader, userAgent string) string {
	switch strings.ToLower(strings.TrimSpace(clientHeader)) {
	case ClientTypeWeb:
		return ClientTypeWeb
	case ClientTypeMobile:
		return ClientTypeMobile
	case ClientTypeAPI:
		return ClientTypeAPI
	}

	ua := strings.ToLower(userAgent)
	if strings.Contains(ua, "mozilla") || strings.Contains(ua, "chrome") || strings.Contains(ua, "safari") {
		return ClientTypeWeb
	}
	return ClientTypeAPI
}

func IsWebClient(clientType string) bool {
	return clientType == ClientTypeWeb
}
