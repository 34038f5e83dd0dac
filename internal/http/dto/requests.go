package dto

type AuthDeviceRequest struct {
	DeviceKey string `json:"device_key"`
}

type CreateClientRequest struct {
	CompanyName  string  `json:"company_name"`
	ContactName  *string `json:"contact_name,omitempty"`
	ContactEmail *string `json:"contact_email,omitempty"`
	ContactPhone *string `json:"contact_phone,omitempty"`
	Address      *string `json:"address,omitempty"`
	City         *string `json:"city,omitempty"`
	State        *string `json:"state,omitempty"`
	Zip          *string `json:"zip,omitempty"`
	Status       string  `json:"status,omitempty"`
}

type UpdateClientRequest struct {
	CompanyName  string  `json:"company_name"`
	ContactName  *string `json:"contact_name,omitempty"`
	ContactEmail *string `json:"contact_email,omitempty"`
	ContactPhone *string `json:"contact_phone,omitempty"`
	Address      *string `json:"address,omitempty"`
	City         *string `json:"city,omitempty"`
	State        *string `json:"state,omitempty"`
	Zip          *string `json:"zip,omitempty"`
	Status       string  `json:"status,omitempty"`
}

type DownloadDocumentRequest struct {
	FileName string `json:"file_name"`
}

type QueueDailyLogUpdateRequest struct {
	DailyLogID  string   `json:"daily_log_id"`
	ProjectID   string   `json:"project_id"`
	LogDate     string   `json:"log_date,omitempty"`
	Notes       *string  `json:"notes,omitempty"`
	Weather     *string  `json:"weather,omitempty"`
	CrewCount   *int     `json:"crew_count,omitempty"`
	HoursWorked *float64 `json:"hours_worked,omitempty"`
}

type RetryPendingActionRequest struct {
	Notes       *string  `json:"notes,omitempty"`
	Weather     *string  `json:"weather,omitempty"`
	CrewCount   *int     `json:"crew_count,omitempty"`
	HoursWorked *float64 `json:"hours_worked,omitempty"`
}

type UpdateCacheSettingsRequest struct {
	MaxSizeMB  int `json:"max_size_mb"`
	MaxAgeDays int `json:"max_age_days"`
}
