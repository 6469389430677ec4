// Package device turns a User-Agent header into a short display label.
package device

import (
	"strings"

	"github.com/mssola/useragent"
)

const unknown = "Unknown Device"

// Label returns "<browser> on <os>", or "Unknown Device" for an empty header.
func Label(userAgent string) string {
	userAgent = strings.TrimSpace(userAgent)
	if userAgent == "" {
		return unknown
	}
	ua := useragent.New(userAgent)

	browser, _ := ua.Browser()
	if browser == "" {
		browser = "Unknown Browser"
	}
	os := ua.OS()
	if os == "" {
		os = ua.Platform()
	}
	if os == "" {
		os = "Unknown OS"
	}
	label := strings.Join(strings.Fields(browser+" on "+os), " ")
	if ua.Mobile() && !strings.Contains(label, "Mobile") {
		label += " (mobile)"
	}
	return label
}
