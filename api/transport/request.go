package transport

// Form field names accepted by the session and account endpoints. Requests
// are application/x-www-form-urlencoded (or multipart) bodies.
const (
	FieldEmail       = "email"
	FieldPassword    = "password"
	FieldResetToken  = "reset_token"
	FieldNewPassword = "new_password"
)

// HeaderUserID carries the id of the authenticated user from the gate
// middleware to the handlers. Client supplied values are discarded.
const HeaderUserID = "X-User-ID"
