package handler

const (
	errInternalServer     = "Internal server error"
	errInvalidCredentials = "Email or password is wrong!"
	errEmailTaken         = "Email already exists!"
	errEmailNotFound      = "Email not found"
	errTokenInvalid       = "Invalid token!"
	errStoreNotFound      = "Store not found!"
	errProductNotFound    = "Product not found!"
	errVariantNotFound    = "Variant not found!"
	errUnauthorized       = "Unauthorized"
)
