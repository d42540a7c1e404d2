package models

// Credentials is the login form payload.
type Credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// Registration is the signup form payload. Confirm is checked locally and
// never sent.
type Registration struct {
	Name     string `json:"name" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Confirm  string `json:"-" validate:"required,eqfield=Password"`
	UserType string `json:"user_type"`
}

// PasswordReset is the forgot-password form payload.
type PasswordReset struct {
	Email string `json:"email" validate:"required,email"`
}
