package utils

import (
	"strings"

	ua "github.com/mssola/user_agent"
)

// DeviceInfo describes the browser a web session was opened from
type DeviceInfo struct {
	DeviceType string `json:"deviceType"` // mobile, tablet, desktop, unknown
	OS         string `json:"os"`
	Browser    string `json:"browser"`
	IsBot      bool   `json:"isBot"`
}

// Label is a short human description, e.g. "Chrome on Android 13"
func (d DeviceInfo) Label() string {
	if d.Browser == "Unknown" && d.OS == "Unknown" {
		return "Unknown device"
	}
	return d.Browser + " on " + d.OS
}

var tabletHints = []string{"ipad", "tablet", "kindle", "playbook", "nexus 7", "nexus 9", "nexus 10", "sm-t"}

// ParseUserAgent extracts device information from a User-Agent header
func ParseUserAgent(userAgent string) DeviceInfo {
	if strings.TrimSpace(userAgent) == "" {
		return DeviceInfo{DeviceType: "unknown", OS: "Unknown", Browser: "Unknown"}
	}

	parser := ua.New(userAgent)
	info := DeviceInfo{
		DeviceType: "desktop",
		OS:         "Unknown",
		Browser:    "Unknown",
		IsBot:      parser.Bot(),
	}

	if os := parser.OSInfo(); os.Name != "" {
		info.OS = strings.TrimSpace(os.Name + " " + os.Version)
	}
	if name, _ := parser.Browser(); name != "" {
		info.Browser = name
	}

	lower := strings.ToLower(userAgent)
	for _, hint := range tabletHints {
		if strings.Contains(lower, hint) {
			info.DeviceType = "tablet"
			return info
		}
	}
	if parser.Mobile() {
		info.DeviceType = "mobile"
	}
	return info
}
