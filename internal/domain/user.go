package domain

import "time"

// User es el registro completo de una cuenta, incluyendo el hash de la
// contraseña. Solo circula dentro de repository y service.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// PublicUser es la proyección segura de User que cruza el borde HTTP.
// No tiene campo para el hash, así que no puede filtrarlo por accidente.
type PublicUser struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// Public devuelve la proyección sin credenciales del usuario.
func (u User) Public() PublicUser {
	return PublicUser{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
	}
}
