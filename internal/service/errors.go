package service

import "errors"

var (
	ErrBoardNotFound      = errors.New("board not found")
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidProject     = errors.New("invalid project")
)
