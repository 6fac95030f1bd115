package tui

import (
	"strings"
	"time"
)

type Option func(*Model)

// WithDevTypes overrides the dev-type filter cycle and edit options.
func WithDevTypes(devTypes []string) Option {
	return func(m *Model) {
		cleaned := make([]string, 0, len(devTypes))
		for _, d := range devTypes {
			if d = strings.TrimSpace(d); d != "" {
				cleaned = append(cleaned, d)
			}
		}
		if len(cleaned) > 0 {
			m.devTypes = cleaned
		}
	}
}

// WithSpendColumns toggles the planned/actual spend columns.
func WithSpendColumns(show bool) Option {
	return func(m *Model) {
		m.showSpend = show
	}
}

// WithHighlightDuration sets how long a jumped-to row stays highlighted.
func WithHighlightDuration(d time.Duration) Option {
	return func(m *Model) {
		if d >= 0 {
			m.highlightFor = d
		}
	}
}

// WithLinkBase sets the base URL used when copying a row link.
func WithLinkBase(base string) Option {
	return func(m *Model) {
		m.linkBase = strings.TrimRight(strings.TrimSpace(base), "/")
	}
}
