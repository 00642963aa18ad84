package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/fieldforce-hq/attendance-backend-go/internal/domain/employee"
	"github.com/fieldforce-hq/attendance-backend-go/internal/pkg/database"
)

type employeeRepositoryImpl struct {
	db *database.DB
}

func NewEmployeeRepository(db *database.DB) employee.EmployeeRepository {
	return &employeeRepositoryImpl{db: db}
}

const employeeColumns = `id, emp_code, name, email, phone, role, manager_code, informing_manager_code, shift_id, is_active, created_at`

func scanEmployee(row pgx.Row) (employee.Employee, error) {
	var e employee.Employee
	err := row.Scan(
		&e.ID,
		&e.EmpCode,
		&e.Name,
		&e.Email,
		&e.Phone,
		&e.Role,
		&e.ManagerCode,
		&e.InformingManagerCode,
		&e.ShiftID,
		&e.IsActive,
		&e.CreatedAt,
	)
	return e, err
}

func (r *employeeRepositoryImpl) GetByEmpCode(ctx context.Context, empCode string) (employee.Employee, error) {
	q := GetQuerier(ctx, r.db)
	query := `SELECT ` + employeeColumns + ` FROM employees WHERE emp_code = $1`

	e, err := scanEmployee(q.QueryRow(ctx, query, empCode))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return employee.Employee{}, employee.ErrEmployeeNotFound
		}
		return employee.Employee{}, fmt.Errorf("get employee by emp_code: %w", err)
	}
	return e, nil
}

func (r *employeeRepositoryImpl) GetByPhone(ctx context.Context, phone string) (employee.Employee, error) {
	q := GetQuerier(ctx, r.db)
	query := `SELECT ` + employeeColumns + ` FROM employees WHERE phone = $1`

	e, err := scanEmployee(q.QueryRow(ctx, query, phone))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return employee.Employee{}, employee.ErrEmployeeNotFound
		}
		return employee.Employee{}, fmt.Errorf("get employee by phone: %w", err)
	}
	return e, nil
}

func (r *employeeRepositoryImpl) Create(ctx context.Context, newEmployee employee.Employee) (employee.Employee, error) {
	q := GetQuerier(ctx, r.db)
	query := `
		INSERT INTO employees (emp_code, name, email, phone, role, manager_code, informing_manager_code, shift_id, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at
	`

	err := q.QueryRow(ctx, query,
		newEmployee.EmpCode,
		newEmployee.Name,
		newEmployee.Email,
		newEmployee.Phone,
		newEmployee.Role,
		newEmployee.ManagerCode,
		newEmployee.InformingManagerCode,
		newEmployee.ShiftID,
		newEmployee.IsActive,
	).Scan(&newEmployee.ID, &newEmployee.CreatedAt)
	if err != nil {
		if isUniqueViolation(err, "employees_emp_code_key") {
			return employee.Employee{}, employee.ErrEmpCodeExists
		}
		if isUniqueViolation(err, "employees_phone_key") {
			return employee.Employee{}, employee.ErrPhoneExists
		}
		return employee.Employee{}, fmt.Errorf("create employee: %w", err)
	}
	return newEmployee, nil
}

func (r *employeeRepositoryImpl) ListActive(ctx context.Context) ([]employee.Employee, error) {
	q := GetQuerier(ctx, r.db)
	query := `SELECT ` + employeeColumns + ` FROM employees WHERE is_active ORDER BY emp_code`

	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list active employees: %w", err)
	}
	defer rows.Close()

	var employees []employee.Employee
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, fmt.Errorf("scan employee: %w", err)
		}
		employees = append(employees, e)
	}
	return employees, rows.Err()
}

type shiftRepositoryImpl struct {
	db *database.DB
}

func NewShiftRepository(db *database.DB) employee.ShiftRepository {
	return &shiftRepositoryImpl{db: db}
}

func (r *shiftRepositoryImpl) GetByID(ctx context.Context, id int) (employee.Shift, error) {
	q := GetQuerier(ctx, r.db)
	query := `
		SELECT id, name, to_char(start_time, 'HH24:MI'), to_char(end_time, 'HH24:MI'), to_char(saturday_end_time, 'HH24:MI'), created_at
		FROM shifts WHERE id = $1
	`

	var s employee.Shift
	err := q.QueryRow(ctx, query, id).Scan(&s.ID, &s.Name, &s.StartTime, &s.EndTime, &s.SaturdayEndTime, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return employee.Shift{}, employee.ErrShiftNotFound
		}
		return employee.Shift{}, fmt.Errorf("get shift: %w", err)
	}
	return s, nil
}

func (r *shiftRepositoryImpl) GetDefault(ctx context.Context) (employee.Shift, error) {
	q := GetQuerier(ctx, r.db)
	query := `
		SELECT id, name, to_char(start_time, 'HH24:MI'), to_char(end_time, 'HH24:MI'), to_char(saturday_end_time, 'HH24:MI'), created_at
		FROM shifts ORDER BY id LIMIT 1
	`

	var s employee.Shift
	err := q.QueryRow(ctx, query).Scan(&s.ID, &s.Name, &s.StartTime, &s.EndTime, &s.SaturdayEndTime, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return employee.Shift{}, employee.ErrShiftNotFound
		}
		return employee.Shift{}, fmt.Errorf("get default shift: %w", err)
	}
	return s, nil
}
