package models

// SettingsID is the fixed id of the singleton settings document.
const SettingsID = "default"

type GeneralSettings struct {
	SiteTitle    string `bson:"siteTitle" json:"siteTitle" validate:"required,max=100"`
	SupportEmail string `bson:"supportEmail" json:"supportEmail" validate:"required,email"`
	Timezone     string `bson:"timezone" json:"timezone" validate:"required"`
	DateFormat   string `bson:"dateFormat" json:"dateFormat" validate:"required,oneof=MM/DD/YYYY DD/MM/YYYY YYYY-MM-DD"`
}

type MaintenanceSettings struct {
	Enabled bool   `bson:"enabled" json:"enabled"`
	Message string `bson:"message" json:"message" validate:"max=300"`
}

type SecuritySettings struct {
	TwoFactorAuth  bool `bson:"twoFactorAuth" json:"twoFactorAuth"`
	PasswordExpiry int  `bson:"passwordExpiry" json:"passwordExpiry" validate:"min=0,max=365"`
	FailedAttempts int  `bson:"failedAttempts" json:"failedAttempts" validate:"min=1,max=10"`
}

type NotificationSettings struct {
	EmailAdmin       bool `bson:"emailAdmin" json:"emailAdmin"`
	EmailUsers       bool `bson:"emailUsers" json:"emailUsers"`
	SlackIntegration bool `bson:"slackIntegration" json:"slackIntegration"`
}

// Settings is the site-wide configuration edited from the admin panel
type Settings struct {
	ID            string               `bson:"_id" json:"-"`
	General       GeneralSettings      `bson:"general" json:"general"`
	Maintenance   MaintenanceSettings  `bson:"maintenance" json:"maintenance"`
	Security      SecuritySettings     `bson:"security" json:"security"`
	Notifications NotificationSettings `bson:"notifications" json:"notifications"`
}

// DefaultSettings returns the settings used before an admin saves any.
func DefaultSettings() Settings {
	return Settings{
		ID: SettingsID,
		General: GeneralSettings{
			SiteTitle:    "Forever Admin",
			SupportEmail: "support@forever.com",
			Timezone:     "UTC",
			DateFormat:   "MM/DD/YYYY",
		},
		Maintenance: MaintenanceSettings{
			Message: "We're undergoing maintenance. Please check back soon.",
		},
		Security: SecuritySettings{
			TwoFactorAuth:  true,
			PasswordExpiry: 90,
			FailedAttempts: 5,
		},
		Notifications: NotificationSettings{
			EmailAdmin: true,
		},
	}
}
