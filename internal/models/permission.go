package models

type PermissionKind string

const (
	PermissionLocation      PermissionKind = "location"
	PermissionCamera        PermissionKind = "camera"
	PermissionNotifications PermissionKind = "notifications"
	PermissionMediaLibrary  PermissionKind = "media_library"
)

type PermissionStatus string

const (
	PermissionUndetermined PermissionStatus = "undetermined"
	PermissionGranted      PermissionStatus = "granted"
	PermissionDenied       PermissionStatus = "denied"
)

func (k PermissionKind) IsValid() bool {
	switch k {
	case PermissionLocation, PermissionCamera, PermissionNotifications, PermissionMediaLibrary:
		return true
	}
	return false
}
