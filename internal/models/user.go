package models

import "time"

// User is the profile document. Credentials live with the identity provider
// under the same id.
type User struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"displayName"`
	CreatedAt   time.Time `json:"createdAt"`
}
