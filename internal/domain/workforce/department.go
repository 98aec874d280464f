package workforce

import (
	"strings"

	"github.com/rosterly/backend/internal/domain/shared"
)

// Department is a lookup aggregate referenced by employees and exports
type Department struct {
	shared.BaseEntity
	Name string `gorm:"type:varchar(100);not null;uniqueIndex"`
}

// NewDepartment creates a department
func NewDepartment(name string) (*Department, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "department name is required")
	}
	return &Department{
		BaseEntity: shared.NewBaseEntity(),
		Name:       name,
	}, nil
}
