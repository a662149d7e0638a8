package domain

import "errors"

var (
	ErrInvalidSchedule       = errors.New("invalid transition schedule")
	ErrInvalidCategory       = errors.New("invalid selective tax category")
	ErrRulePackNotFound      = errors.New("rule pack not found")
	ErrRuleExecutionFailed   = errors.New("rule execution failed")
	ErrInvalidPatch          = errors.New("invalid invoice patch")
	ErrCalculatorUnavailable = errors.New("calculadora RTC indisponível")
	ErrCalculatorRejected    = errors.New("calculadora RTC rejeitou a requisição")
)
