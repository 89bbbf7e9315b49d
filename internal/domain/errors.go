package domain

import "errors"

var (
	ErrRecordNotFound       = errors.New("record not found")
	ErrEditConflict         = errors.New("edit conflict")
	ErrUserAlreadyExists    = errors.New("user already exists")
	ErrDuplicatePayment     = errors.New("payment already recorded for this checkout session")
	ErrAlreadyEnrolled      = errors.New("user is already enrolled in this course")
	ErrCourseNotPurchasable = errors.New("course does not exist or is not published")
	ErrUnknownTier          = errors.New("unknown membership tier")
	ErrUnknownProgram       = errors.New("unknown program")
	ErrInvalidInstallments  = errors.New("installment count must be 2 or 3")
	ErrGiftItemMissing      = errors.New("a gift requires a course, a program, or a membership tier")
)
