package sharing

import (
	"fmt"
	"strconv"
	"strings"

	"sosapp/internal/models"
)

const (
	MsgSharingStarted   = "Live location sharing started."
	MsgSharingStopped   = "Live location sharing stopped."
	MsgLocationSent     = "Live location has been sent!"
	MsgSMSUnavailable   = "SMS is not available on this device."
	MsgLocationDenied   = "Permission to access location was denied"
	failurePrefix       = "Failed to send location to: "
	DefaultMapsLinkBase = "https://www.google.com/maps?q="
)

// LocationMessage renders the text sent to every recipient.
func LocationMessage(linkBase string, coord models.Coordinate) string {
	if linkBase == "" {
		linkBase = DefaultMapsLinkBase
	}

	lat := formatDegrees(coord.Latitude)
	lng := formatDegrees(coord.Longitude)

	return fmt.Sprintf("My live location is:\nLatitude: %s, Longitude: %s\n%s%s,%s", lat, lng, linkBase, lat, lng)
}

// MapLink points a maps app at coord.
func MapLink(linkBase string, coord models.Coordinate) string {
	if linkBase == "" {
		linkBase = DefaultMapsLinkBase
	}
	return linkBase + formatDegrees(coord.Latitude) + "," + formatDegrees(coord.Longitude)
}

// FailureMessage lists failed recipients in the order they were attempted.
func FailureMessage(failed []string) string {
	return failurePrefix + strings.Join(failed, ", ")
}

// OutcomeMessage picks the single notification for a finished round.
func OutcomeMessage(failed []string) string {
	if len(failed) > 0 {
		return FailureMessage(failed)
	}
	return MsgLocationSent
}

func formatDegrees(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
