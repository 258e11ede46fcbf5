package domain

// RegisterRequest is the body of POST /register.
type RegisterRequest struct {
	Username     string `json:"username"`
	FullName     string `json:"full_name"`
	Email        string `json:"email"`
	PhoneNumber  string `json:"phone_number,omitempty"`
	Organization string `json:"organization,omitempty"`
	Password     string `json:"password"`
}

// LoginRequest is the body of POST /login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse is the part of the /login response the client relies on.
type LoginResponse struct {
	Token string `json:"token"`
}

// RegistrationForm is what the user fills in. ConfirmPassword never leaves
// the client.
type RegistrationForm struct {
	Username        string
	FullName        string
	Email           string
	PhoneNumber     string
	Organization    string
	Password        string
	ConfirmPassword string
}

// Request converts the form into the wire body.
func (f RegistrationForm) Request() RegisterRequest {
	return RegisterRequest{
		Username:     f.Username,
		FullName:     f.FullName,
		Email:        f.Email,
		PhoneNumber:  f.PhoneNumber,
		Organization: f.Organization,
		Password:     f.Password,
	}
}
