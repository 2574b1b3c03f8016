package api

import (
	"errors"
	"math"
)

// Validator - интерфейс, который могут реализовать DTO
type Validator interface {
	Validate() error
}

func (p TargetPayload) Validate() error {
	if math.IsNaN(p.X) || math.IsNaN(p.Y) || math.IsInf(p.X, 0) || math.IsInf(p.Y, 0) {
		return errors.New("target must be a finite point")
	}
	return nil
}

func (c ClientCommand) Validate() error {
	if c.Action == "" {
		return errors.New("action is required")
	}
	return nil
}
