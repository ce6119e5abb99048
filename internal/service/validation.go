package service

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

var (
	ErrValidation              = errors.New("invalid task")
	ErrTemplateHasNoCompletion = errors.New("recurring templates cannot be completed")
)

// PointsStep is the granularity of task points.
const PointsStep = 0.5

// ValidateName trims name and rejects empty values.
func ValidateName(name string) (string, error) {
	clean := strings.TrimSpace(name)
	if clean == "" {
		return "", fmt.Errorf("%w: name is required", ErrValidation)
	}
	return clean, nil
}

// ValidatePoints accepts positive multiples of PointsStep.
func ValidatePoints(points float64) error {
	if math.IsNaN(points) || math.IsInf(points, 0) || points <= 0 {
		return fmt.Errorf("%w: points must be positive", ErrValidation)
	}
	steps := points / PointsStep
	if steps != math.Trunc(steps) {
		return fmt.Errorf("%w: points must be a multiple of %.1f", ErrValidation, PointsStep)
	}
	return nil
}
