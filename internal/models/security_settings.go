package models

// SecuritySettings holds per-user security preferences.
type SecuritySettings struct {
	TwoFactorEnabled   bool     `json:"two_factor_enabled"`  // Whether login requires an OTP step.
	TrustedDevices     []string `json:"trusted_devices"`     // Device identifiers exempt from 2FA.
	SessionTimeout     int      `json:"session_timeout"`     // Session lifetime in minutes.
	LoginNotifications bool     `json:"login_notifications"` // Whether to notify on new logins.
}

// DefaultSecuritySettings returns the settings applied to users who have
// never written any.
func DefaultSecuritySettings() SecuritySettings {
	return SecuritySettings{
		TwoFactorEnabled:   true,
		TrustedDevices:     []string{},
		SessionTimeout:     30,
		LoginNotifications: true,
	}
}

// SecuritySettingsPatch is a partial update; nil fields are left untouched.
type SecuritySettingsPatch struct {
	TwoFactorEnabled   *bool     `json:"two_factor_enabled"`
	TrustedDevices     *[]string `json:"trusted_devices"`
	SessionTimeout     *int      `json:"session_timeout"`
	LoginNotifications *bool     `json:"login_notifications"`
}

// Apply merges the patch into s field by field.
func (p SecuritySettingsPatch) Apply(s SecuritySettings) SecuritySettings {
	if p.TwoFactorEnabled != nil {
		s.TwoFactorEnabled = *p.TwoFactorEnabled
	}
	if p.TrustedDevices != nil {
		s.TrustedDevices = append([]string(nil), (*p.TrustedDevices)...)
	}
	if p.SessionTimeout != nil {
		s.SessionTimeout = *p.SessionTimeout
	}
	if p.LoginNotifications != nil {
		s.LoginNotifications = *p.LoginNotifications
	}
	return s
}
