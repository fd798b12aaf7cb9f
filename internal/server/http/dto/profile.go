package dto

// PushTokenRequest registers the device push token of the current user.
type PushTokenRequest struct {
	PushToken string `json:"pushToken"`
}

// CookResponse is the public view of a cook.
type CookResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
