package dto

// RegisterRequest starts email registration
type RegisterRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// VerifyRequest confirms the emailed 6-digit code
type VerifyRequest struct {
	Email string `json:"email" binding:"required,email"`
	Code  string `json:"code" binding:"required,len=6"`
}

// SetPasswordRequest consumes a verification token to set the password
type SetPasswordRequest struct {
	Token    string `json:"token" binding:"required"`
	Password string `json:"password" binding:"required,min=8"`
}

// LoginRequest authenticates with email and password
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// UpdateProfileRequest changes the caller's profile
type UpdateProfileRequest struct {
	Nickname string `json:"nickname" binding:"required,min=1,max=50"`
}

// AddFavoriteRequest favorites a company
type AddFavoriteRequest struct {
	CompanyID string `json:"company_id" binding:"required"`
}

// SubscribeRequest subscribes to a company or indicator
type SubscribeRequest struct {
	TargetType string `json:"target_type" binding:"required,oneof=company indicator"`
	TargetID   string `json:"target_id" binding:"required"`
}

// NotificationSettingsRequest saves delivery preferences
type NotificationSettingsRequest struct {
	EmailEnabled *bool `json:"email_enabled" binding:"required"`
	DigestHour   *int  `json:"digest_hour" binding:"required,min=0,max=23"`
}
