// Package user defines the user record shared by the storage backends,
// the service layer and the transports.
package user

// Profile defaults assigned at registration when the client omits a field.
const (
	DefaultName   = "Жак-Ив Кусто"
	DefaultAbout  = "Исследователь"
	DefaultAvatar = "https://pictures.s3.yandex.net/resources/jacques-cousteau_1604399756.png"
)

// User represents a registered account.
type User struct {
	// ID is the unique identifier of the user, meaning a UUID.
	ID string `json:"_id"`

	// Email is unique across all users and used as the login.
	Email string `json:"email"`

	// PasswordHash is the bcrypt hash of the password. It is never serialized.
	PasswordHash string `json:"-"`

	Name   string `json:"name"`
	About  string `json:"about"`
	Avatar string `json:"avatar"`
}

// Public returns a copy of the user that is safe to hand to a client.
func (u *User) Public() *User {
	return &User{
		ID:     u.ID,
		Email:  u.Email,
		Name:   u.Name,
		About:  u.About,
		Avatar: u.Avatar,
	}
}
