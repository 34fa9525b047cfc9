package marionette

import "errors"

var (
	ErrUnknownEasing   = errors.New("marionette: unknown easing")
	ErrMissingNode     = errors.New("marionette: template lacks a required node")
	ErrInvalidSections = errors.New("marionette: rope needs at least one section")
)
