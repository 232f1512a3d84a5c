package widget

import (
	"net/http"
	"regexp"

	"checkout-flow/models"
)

// DeviceDetector classifies the client that is checking out
type DeviceDetector interface {
	Detect(r *http.Request) models.DeviceClass
}

var mobileUserAgent = regexp.MustCompile(`(?i)iPhone|iPad|iPod|Android`)

// UserAgentDetector treats iOS and Android user agents as mobile
type UserAgentDetector struct{}

func (UserAgentDetector) Detect(r *http.Request) models.DeviceClass {
	if mobileUserAgent.MatchString(r.UserAgent()) {
		return models.DeviceMobile
	}
	return models.DeviceDesktop
}

// FixedDetector always reports the same class
type FixedDetector models.DeviceClass

func (f FixedDetector) Detect(*http.Request) models.DeviceClass {
	return models.DeviceClass(f)
}
