package domain

// Session identifies the traveler on whose behalf an operation runs.
// It is passed explicitly into service operations rather than looked up.
type Session struct {
	UserID      string
	DisplayName string
	// Locale is a BCP 47 tag such as "en" or "ko-KR"; empty means "en".
	Locale string
}

// Name returns the display name, falling back to the user ID.
func (s Session) Name() string {
	if s.DisplayName != "" {
		return s.DisplayName
	}
	return s.UserID
}
