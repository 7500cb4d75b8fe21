package authapimodels

type TokenRequest struct {
	// Name identifies the operator or integration in audit logs
	Name string `json:"name"`
	Key  string `json:"key"`
}

type TokenResponse struct {
	Token string `json:"token"`
}
