package utils

// API response statuses
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Error messages
const (
	ErrInternalServer        = "internal server error"
	ErrValidationFailed      = "validation failed"
	ErrLocationPermission    = "Permission to access location was denied"
	ErrLocationUnavailable   = "Current location is not available yet"
	ErrInvalidPermissionKind = "Unknown permission kind"
)

// Error codes
const (
	CodeBadRequest        = "BAD_REQUEST"
	CodeValidation        = "VALIDATION_ERROR"
	CodeInternal          = "INTERNAL_ERROR"
	CodeNotFound          = "NOT_FOUND"
	CodePermissionDenied  = "PERMISSION_DENIED"
	CodeInvalidTransition = "INVALID_STATE_TRANSITION"
	CodeSharingFailed     = "SHARING_START_FAILED"
	CodeRecordingFailed   = "RECORDING_FAILED"
	CodeRecordingLimit    = "RECORDING_LIMIT_REACHED"
)

// Geography
const (
	EarthRadiusKM     = 6371.0
	EarthRadiusMeters = EarthRadiusKM * 1000
)
