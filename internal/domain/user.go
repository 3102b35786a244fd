package domain

type Role string

const (
	RoleRegular Role = "regular"
	RoleManager Role = "manager"
	RoleAdmin   Role = "admin"
)

type PurchaserSummary struct {
	ID        int64   `json:"id"`
	Email     string  `json:"email"`
	FirstName *string `json:"first_name,omitempty"`
	LastName  *string `json:"last_name,omitempty"`
	IsActive  bool    `json:"is_active"`
}
