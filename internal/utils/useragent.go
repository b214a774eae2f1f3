package utils

import (
	"fmt"

	"github.com/mssola/user_agent"
)

// DeviceInfo describes the client device behind a login, shown on the
// security dashboard
type DeviceInfo struct {
	DeviceType string // mobile, desktop or bot
	DeviceName string // OS name and version
	Browser    string // browser name and version
}

// DescribeDevice classifies a raw User-Agent string
func DescribeDevice(rawUA string) DeviceInfo {
	ua := user_agent.New(rawUA)

	deviceType := "desktop"
	if ua.Bot() {
		deviceType = "bot"
	} else if ua.Mobile() {
		deviceType = "mobile"
	}

	deviceName := ua.OS()
	if deviceName == "" {
		deviceName = "Unknown"
	}

	name, version := ua.Browser()
	browser := name
	if version != "" {
		browser = fmt.Sprintf("%s %s", name, version)
	}
	if browser == "" {
		browser = "Unknown"
	}

	return DeviceInfo{
		DeviceType: deviceType,
		DeviceName: deviceName,
		Browser:    browser,
	}
}
