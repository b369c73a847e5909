package user

// User represents a user entity in the system.
type User struct {
	ID       int64  // ID is the unique identifier assigned by storage
	Name     string // Name is the full name of the user
	Email    string // Email is the unique email address of the user
	Password string // Password is stored as provided
}
