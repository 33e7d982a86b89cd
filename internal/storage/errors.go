package storage

import "errors"

var (
	ErrTemplateNotFound = errors.New("template not found")
	ErrBudgetNotFound   = errors.New("budget not found")
	ErrCompanyNotFound  = errors.New("company not found")
	ErrCompanyExists    = errors.New("company already exists")
	ErrVersionConflict  = errors.New("budget was modified concurrently")
	ErrBudgetLocked     = errors.New("budget is being updated by another request")
)
