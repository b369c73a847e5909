package user

import domain "user-rest-service/internal/domain/user"

// UserDTO is the wire representation of a user.
// Password is write-only: it is read from request bodies and never filled by FromEntity.
type UserDTO struct {
	ID       int64  `json:"id"`
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required"`
	Password string `json:"password,omitempty" validate:"required"`
}

// ToEntity copies every field of the DTO into a domain user.
func (d UserDTO) ToEntity() *domain.User {
	return &domain.User{
		ID:       d.ID,
		Name:     d.Name,
		Email:    d.Email,
		Password: d.Password,
	}
}

// FromEntity builds the outbound DTO for a user, leaving the password empty.
func FromEntity(u *domain.User) UserDTO {
	return UserDTO{
		ID:    u.ID,
		Name:  u.Name,
		Email: u.Email,
	}
}

// FromEntities converts a slice of users. The result is never nil.
func FromEntities(users []domain.User) []UserDTO {
	out := make([]UserDTO, len(users))
	for i := range users {
		out[i] = FromEntity(&users[i])
	}
	return out
}
