package repository

import "errors"

var (
	// ErrReportNotFound indicates no report is stored under the requested id
	ErrReportNotFound = errors.New("report not found")

	// ErrPromptNotFound indicates no prompt has been saved yet
	ErrPromptNotFound = errors.New("prompt not found")

	// ErrRepositoryUnavailable indicates the backing store could not be reached
	ErrRepositoryUnavailable = errors.New("repository unavailable")
)
