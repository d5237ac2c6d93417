package auth

// CurrentDriver is the identity attached to requests that passed the passcode
// gate. There is no per-driver account; every token represents the same shared
// operator role.
type CurrentDriver struct {
	IssuedAtUnix int64
}

const ContextDriverKey = "currentDriver"
