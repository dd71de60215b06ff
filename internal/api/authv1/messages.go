// Package authv1 declares the bliss.auth.v1.ClientAuth gRPC service: its
// messages, service descriptor and client.
package authv1

// RegisterBasicRequest starts a password registration.
type RegisterBasicRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// OAuthCallbackRequest completes an OAuth consent with the code returned to the callback.
type OAuthCallbackRequest struct {
	Provider string `json:"provider"`
	Code     string `json:"code"`
}

// ReissueTransientRequest asks for a fresh transient token.
type ReissueTransientRequest struct {
	Email string `json:"email"`
}

// CompleteProfileRequest carries the durable profile. Authenticated by a transient bearer.
type CompleteProfileRequest struct {
	Category      string `json:"client_category"`
	DateOfBirth   string `json:"client_dob"` // YYYY-MM-DD
	ContactNumber *int64 `json:"client_contact_number,omitempty"`
	OriginCountry string `json:"client_origin_country"`
	Bio           string `json:"client_bio,omitempty"`
}

// PromoteRequest is empty; the transient token travels as bearer metadata.
type PromoteRequest struct{}

// RotateRequest is empty; the permanent token travels as bearer metadata.
type RotateRequest struct{}

// Response statuses.
const (
	StatusSuccess = "SUCCESS"
	StatusFailed  = "FAILED"
)

// AuthResponse is the single response shape of every method.
type AuthResponse struct {
	Status     string `json:"status"`
	Code       string `json:"code,omitempty"`
	Message    string `json:"message,omitempty"`
	Token      string `json:"token,omitempty"`
	TokenType  string `json:"token_type,omitempty"`
	ExpiresAt  int64  `json:"expires_at,omitempty"`  // unix seconds
	RevokeTime int64  `json:"revoke_time,omitempty"` // unix millis
	Email      string `json:"email,omitempty"`
	Name       string `json:"name,omitempty"`
	PhotoURL   string `json:"photo_url,omitempty"`
	ImageLink  string `json:"image_link,omitempty"`
}
