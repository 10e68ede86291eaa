package registry

import "time"

// CooldownWindow is the shared-credential cooldown period (§4.5).
const CooldownWindow = 20 * time.Minute

// CheckCooldown implements the shared-credential cooldown rule of §4.5.
// shared reports whether this start request is "shared-credential" (at
// least one LLM side omits both custom endpoint and credential); bypass
// reports whether a valid bypass password was supplied.
//
// A non-shared start, or a bypassed one, is always allowed and never
// updates the recorded timestamp. Otherwise: if this is the first
// shared-credential start for token, or the prior one was more than
// CooldownWindow ago, it is allowed and the timestamp is (re)recorded.
// A start inside the window is rejected, reporting the remaining wait.
func (r *Registry) CheckCooldown(token string, shared, bypass bool) (remaining time.Duration, blocked bool) {
	if !shared || bypass {
		return 0, false
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	if last, ok := r.cooldowns[token]; ok {
		if elapsed := now.Sub(last); elapsed < CooldownWindow {
			return CooldownWindow - elapsed, true
		}
	}

	r.cooldowns[token] = now
	return 0, false
}
