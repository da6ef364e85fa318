package dto

// DeviceTokenRequest registers a customer's push token.
type DeviceTokenRequest struct {
	Token string `json:"token"`
}

// PushResponse reports the FCM message name of a sent push.
type PushResponse struct {
	Name string `json:"name"`
}
