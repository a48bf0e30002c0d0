package tools

import (
	"context"
	"fmt"

	"morph-bang/internal/morph"
)

// DesktopNotifier posts notifications into a user's desktop session by running
// notify-send as that user against their session bus.
type DesktopNotifier struct {
	runner   *Runner
	identity morph.IdentityResolver
	logger   morph.Logger
}

func NewDesktopNotifier(runner *Runner, identity morph.IdentityResolver, logger morph.Logger) *DesktopNotifier {
	return &DesktopNotifier{runner: runner, identity: identity, logger: logger}
}

// Notify is best-effort; failures are logged at debug level only.
func (n *DesktopNotifier) Notify(ctx context.Context, uid uint32, body string) {
	username, err := n.identity.Username(uid)
	if err != nil {
		n.logger.Debug("notification skipped", "uid", uid, "error", err)
		return
	}
	err = n.runner.Run(ctx, "sudo",
		"-u", username,
		"env", fmt.Sprintf("DBUS_SESSION_BUS_ADDRESS=unix:path=/run/user/%d/bus", uid),
		n.runner.Binary("notify-send"),
		"-a", "Morph Bang",
		"-i", "document-export",
		"Morphing Data",
		body,
	)
	if err != nil {
		n.logger.Debug("notification failed", "uid", uid, "error", err)
	}
}
