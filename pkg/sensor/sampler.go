// Package sensor implements the analog front end of the thermometer.
package sensor

import (
	"context"
	"errors"
	"fmt"
	"time"
)

const (
	// DefaultPollInterval is the delay between two ready checks.
	DefaultPollInterval = time.Millisecond
	// DefaultMaxPolls bounds the wait for a conversion to complete.
	DefaultMaxPolls = 50
)

var (
	// ErrConversionTimeout is returned when the converter does not become
	// ready within the poll budget.
	ErrConversionTimeout = errors.New("sensor: conversion timed out")
	// ErrNotEnabled is returned when a conversion is requested from a
	// disabled converter.
	ErrNotEnabled = errors.New("sensor: converter not enabled")
)

// Sampler takes single readings from an ADC, waiting for completion with
// a bounded number of polls.
type Sampler struct {
	adc          ADC
	pollInterval time.Duration
	maxPolls     int
}

// NewSampler creates a Sampler. A negative poll interval or a non-positive
// poll limit selects the default; a zero poll interval polls without
// sleeping.
func NewSampler(adc ADC, pollInterval time.Duration, maxPolls int) *Sampler {
	if pollInterval < 0 {
		pollInterval = DefaultPollInterval
	}
	if maxPolls <= 0 {
		maxPolls = DefaultMaxPolls
	}
	return &Sampler{
		adc:          adc,
		pollInterval: pollInterval,
		maxPolls:     maxPolls,
	}
}

// Sample powers the converter up, starts a conversion and returns its
// result. The converter is left enabled; call Disable once the reading has
// been consumed.
func (s *Sampler) Sample(ctx context.Context) (int, error) {
	if err := s.adc.Enable(); err != nil {
		return 0, fmt.Errorf("enable converter: %w", err)
	}
	if err := s.adc.StartConversion(); err != nil {
		return 0, fmt.Errorf("start conversion: %w", err)
	}
	if err := s.wait(ctx); err != nil {
		return 0, err
	}
	v, err := s.adc.Result()
	if err != nil {
		return 0, fmt.Errorf("read result: %w", err)
	}
	return int(v), nil
}

// Disable powers the converter down.
func (s *Sampler) Disable() error {
	return s.adc.Disable()
}

func (s *Sampler) wait(ctx context.Context) error {
	for polls := 0; ; polls++ {
		ready, err := s.adc.Ready()
		if err != nil {
			return fmt.Errorf("poll ready: %w", err)
		}
		if ready {
			return nil
		}
		if polls >= s.maxPolls {
			return fmt.Errorf("%w after %d polls", ErrConversionTimeout, polls)
		}
		if s.pollInterval == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
			continue
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(s.pollInterval):
		}
	}
}
