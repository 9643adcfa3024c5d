package dto

// LoginRequest is the 4-digit personal code login.
type LoginRequest struct {
	Code       string `json:"code" binding:"required,len=4,numeric"`
	RememberMe bool   `json:"remember_me"`
}

// RefreshRequest carries the refresh token to rotate.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// TokenResponse is the token pair issued at login/refresh.
type TokenResponse struct {
	AccessToken  string         `json:"access_token"`
	RefreshToken string         `json:"refresh_token"`
	ExpiresIn    int            `json:"expires_in"` // access token lifetime in seconds
	Member       MemberResponse `json:"member"`
}

// ChangeCodeRequest changes the caller's own login code.
type ChangeCodeRequest struct {
	OldCode string `json:"old_code" binding:"required,len=4,numeric"`
	NewCode string `json:"new_code" binding:"required,len=4,numeric"`
}
