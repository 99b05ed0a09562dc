//go:build !ebiten

package gui

import (
	"context"

	"go.uber.org/zap"

	"github.com/san-kum/pidsim/internal/sim"
)

// Run always fails in builds without the ebiten tag.
func Run(context.Context, *sim.Loop, *zap.Logger) error {
	return ErrNoGUI
}
