// =============================
// File: internal/dex/factory.go
// =============================
package dex

import (
	"errors"
	"strings"
)

// ClassifyVenue сопоставляет метку площадки с исполнителем: любая метка,
// содержащая "raydium" без учёта регистра, уходит в Raydium, остальные в Jupiter.
func ClassifyVenue(label string) Venue {
	if strings.Contains(strings.ToLower(label), "raydium") {
		return VenueRaydium
	}
	return VenueJupiter
}

// Selector хранит ровно два исполнителя и выбирает один по метке.
type Selector struct {
	jupiter Executor
	raydium Executor
}

// NewSelector создаёт селектор; оба исполнителя обязательны.
func NewSelector(jupiter, raydium Executor) (*Selector, error) {
	if jupiter == nil {
		return nil, errors.New("jupiter executor cannot be nil")
	}
	if raydium == nil {
		return nil, errors.New("raydium executor cannot be nil")
	}
	return &Selector{jupiter: jupiter, raydium: raydium}, nil
}

// Select возвращает площадку и исполнителя для метки.
func (s *Selector) Select(label string) (Venue, Executor) {
	venue := ClassifyVenue(label)
	if venue == VenueRaydium {
		return venue, s.raydium
	}
	return venue, s.jupiter
}
