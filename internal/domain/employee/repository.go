package employee

import "context"

type EmployeeRepository interface {
	GetByEmpCode(ctx context.Context, empCode string) (Employee, error)
	GetByPhone(ctx context.Context, phone string) (Employee, error)
	Create(ctx context.Context, newEmployee Employee) (Employee, error)
	ListActive(ctx context.Context) ([]Employee, error)
}

type ShiftRepository interface {
	GetByID(ctx context.Context, id int) (Shift, error)
	GetDefault(ctx context.Context) (Shift, error)
}
