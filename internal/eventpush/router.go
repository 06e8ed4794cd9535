package eventpush

import (
	"slices"
	"strings"

	"casino-wallet/internal/notify"
)

func matchTargets(targets []Target, ev notify.BalanceChanged) []Target {
	if len(targets) == 0 {
		return nil
	}
	out := make([]Target, 0, len(targets))
	for _, target := range targets {
		if !target.Enabled {
			continue
		}
		if len(target.Players) > 0 && !slices.Contains(target.Players, ev.PlayerID) {
			continue
		}
		if !kindAllowed(target.Kinds, string(ev.Kind)) {
			continue
		}
		out = append(out, target)
	}
	return out
}

func kindAllowed(allowlist []string, kind string) bool {
	if len(allowlist) == 0 {
		return true
	}
	kind = strings.ToLower(kind)
	for _, v := range allowlist {
		if v != "" && strings.ToLower(strings.TrimSpace(v)) == kind {
			return true
		}
	}
	return false
}
