package models

// ExternalIdentityClaim is what a federated provider asserted about a user.
// It is transient and never persisted as-is.
type ExternalIdentityClaim struct {
	// Provider is the lowercase provider name ("google", "github").
	Provider string
	// Subject is the provider's stable user id.
	Subject string
	// Login is the provider handle, when the provider has one (GitHub).
	Login string
	// Email may be empty when the provider withholds it.
	Email string
	// Name is the display name.
	Name string
}

// FederatedProvider describes a configured provider on the login page.
type FederatedProvider struct {
	Name             string `json:"name"`
	AuthorizationURL string `json:"authorizationUrl"`
}
